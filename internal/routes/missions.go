package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/airbounty/airbounty/internal/geo"
	"github.com/airbounty/airbounty/internal/middleware"
	"github.com/airbounty/airbounty/internal/mission"
	"github.com/airbounty/airbounty/internal/screening"
)

type screenRequest struct {
	Image string `json:"image"`
}

type submitRequest struct {
	ScreeningToken string  `json:"screening_token"`
	HazardType     string  `json:"hazard_type"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
}

// RegisterMissionRoutes wires the screening gate and submission pipeline.
func RegisterMissionRoutes(r fiber.Router, missions *mission.Service, cache *redis.Client, logger *slog.Logger) {
	r.Post("/missions/screen", func(c *fiber.Ctx) error {
		who, ok := middleware.CurrentIdentity(c)
		if !ok {
			return c.SendStatus(http.StatusUnauthorized)
		}
		var req screenRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.Image == "" {
			return fiber.NewError(http.StatusBadRequest, "an image is required")
		}

		outcome, err := missions.Screen(c.UserContext(), who, req.Image)
		if err != nil {
			switch {
			case errors.Is(err, mission.ErrScreeningRejected):
				return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
					"verdict":     outcome.Verdict,
					"confidence":  outcome.Classification.Confidence,
					"description": outcome.Classification.Description,
					"message":     "this photo does not show an environmental hazard",
				})
			case errors.Is(err, screening.ErrTransport), errors.Is(err, screening.ErrUpstreamStatus):
				return fiber.NewError(http.StatusBadGateway, "screening unavailable, check your connection and retry")
			case errors.Is(err, screening.ErrUnparsable):
				return fiber.NewError(http.StatusBadGateway, "screening could not read this photo, try another one")
			case errors.Is(err, mission.ErrNotScreened):
				return fiber.NewError(http.StatusConflict, "screening was cancelled")
			default:
				return fiber.NewError(http.StatusInternalServerError, err.Error())
			}
		}

		return c.JSON(fiber.Map{
			"screening_token": outcome.Token,
			"verdict":         outcome.Verdict,
			"hazard_type":     outcome.Classification.HazardType,
			"confidence":      outcome.Classification.Confidence,
			"description":     outcome.Classification.Description,
		})
	})

	r.Post("/missions/screen/cancel", func(c *fiber.Ctx) error {
		who, ok := middleware.CurrentIdentity(c)
		if !ok {
			return c.SendStatus(http.StatusUnauthorized)
		}
		missions.CancelScreening(who)
		return c.SendStatus(http.StatusNoContent)
	})

	idem := middleware.Idempotency(cache, 24*time.Hour, logger)
	r.Post("/missions", idem, func(c *fiber.Ctx) error {
		who, ok := middleware.CurrentIdentity(c)
		if !ok {
			return c.SendStatus(http.StatusUnauthorized)
		}
		var req submitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		res, err := missions.Submit(c.UserContext(), who, mission.SubmitInput{
			ScreeningToken: req.ScreeningToken,
			HazardType:     req.HazardType,
			Coordinate:     geo.Coordinate{Lat: req.Lat, Lng: req.Lng},
		})
		if err != nil {
			switch {
			case errors.Is(err, mission.ErrNotScreened):
				return fiber.NewError(http.StatusConflict, "run the photo through screening first")
			case errors.Is(err, mission.ErrScreeningRejected):
				return fiber.NewError(http.StatusUnprocessableEntity, "this photo was rejected by screening")
			default:
				return fiber.NewError(http.StatusInternalServerError, err.Error())
			}
		}

		logger.Info("mission submitted",
			slog.String("report_id", res.Report.ID),
			slog.String("identity", who.Mask()),
			slog.Int("reward", res.Reward),
		)
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"reward":    res.Reward,
			"ledger":    toLedgerResponse(res.Ledger),
			"report_id": res.Report.ID,
		})
	})
}
