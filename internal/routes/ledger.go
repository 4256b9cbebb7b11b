package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/airbounty/airbounty/internal/ledger"
	"github.com/airbounty/airbounty/internal/middleware"
)

type redeemRequest struct {
	Amount int `json:"amount"`
}

// RegisterLedgerRoutes exposes the caller's own reward balance.
func RegisterLedgerRoutes(r fiber.Router, store ledger.Store) {
	r.Get("/me", func(c *fiber.Ctx) error {
		who, ok := middleware.CurrentIdentity(c)
		if !ok {
			return c.SendStatus(http.StatusUnauthorized)
		}
		l, err := store.Load(c.UserContext(), who.LedgerKey())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(toLedgerResponse(l))
	})

	r.Post("/me/redeem", func(c *fiber.Ctx) error {
		who, ok := middleware.CurrentIdentity(c)
		if !ok {
			return c.SendStatus(http.StatusUnauthorized)
		}
		var req redeemRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.Amount <= 0 {
			return fiber.NewError(http.StatusBadRequest, "amount must be positive")
		}

		l, err := store.Redeem(c.UserContext(), who.LedgerKey(), req.Amount)
		if err != nil {
			if errors.Is(err, ledger.ErrInsufficientTokens) {
				return fiber.NewError(http.StatusBadRequest, "not enough tokens")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(toLedgerResponse(l))
	})
}
