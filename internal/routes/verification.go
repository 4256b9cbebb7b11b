package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/airbounty/airbounty/internal/middleware"
	"github.com/airbounty/airbounty/internal/verification"
)

type verifyReportRequest struct {
	IsValid bool `json:"is_valid"`
}

// RegisterVerificationRoutes wires the community verification engine.
func RegisterVerificationRoutes(r fiber.Router, verifications *verification.Service) {
	r.Get("/verification/pending", func(c *fiber.Ctx) error {
		who, ok := middleware.CurrentIdentity(c)
		if !ok {
			return c.SendStatus(http.StatusUnauthorized)
		}
		pending, err := verifications.ListPending(c.UserContext(), who)
		if err != nil {
			return fiber.NewError(http.StatusBadGateway, "could not reach the report store")
		}
		return c.JSON(fiber.Map{"reports": pending})
	})

	r.Post("/verification/:id", func(c *fiber.Ctx) error {
		who, ok := middleware.CurrentIdentity(c)
		if !ok {
			return c.SendStatus(http.StatusUnauthorized)
		}
		reportID := c.Params("id")
		if reportID == "" {
			return fiber.NewError(http.StatusBadRequest, "report id is required")
		}
		var req verifyReportRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		res, err := verifications.Verify(c.UserContext(), reportID, who, req.IsValid)
		if err != nil {
			if errors.Is(err, verification.ErrAlreadyVerified) {
				return fiber.NewError(http.StatusConflict, "you already verified this report")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		resp := fiber.Map{"rewarded": res.Rewarded}
		if res.Rewarded {
			resp["reward"] = res.Reward
			resp["ledger"] = toLedgerResponse(res.Ledger)
		}
		return c.JSON(resp)
	})
}

// RegisterStatsRoute exposes the display-only aggregate counters.
func RegisterStatsRoute(r fiber.Router, verifications *verification.Service) {
	r.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := verifications.RefreshStats(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusBadGateway, "could not reach the report store")
		}
		return c.JSON(stats)
	})
}
