package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/airbounty/airbounty/internal/identity"
	"github.com/airbounty/airbounty/internal/ledger"
	"github.com/airbounty/airbounty/internal/session"
)

type challengeRequest struct {
	Identity string `json:"identity"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

type sessionResponse struct {
	Identity    string         `json:"identity"`
	Kind        string         `json:"kind"`
	Token       string         `json:"token"`
	TokenExpiry time.Time      `json:"token_expiry"`
	Ledger      ledgerResponse `json:"ledger"`
}

type ledgerResponse struct {
	Identity string `json:"identity"`
	Missions int    `json:"missions"`
	Tokens   int    `json:"tokens"`
	Email    string `json:"email,omitempty"`
}

func toSessionResponse(s session.Session) sessionResponse {
	return sessionResponse{
		Identity:    s.Identity.Key,
		Kind:        string(s.Identity.Kind),
		Token:       s.Token,
		TokenExpiry: s.TokenExpiry,
		Ledger:      toLedgerResponse(s.Ledger),
	}
}

func toLedgerResponse(l ledger.UserLedger) ledgerResponse {
	return ledgerResponse{Identity: l.Identity, Missions: l.Missions, Tokens: l.Tokens, Email: l.Email}
}

// RegisterSessionRoutes wires the one-time-code login flow.
func RegisterSessionRoutes(r fiber.Router, sessions *session.Service, rateLimiter fiber.Handler) {
	r.Post("/session/otp", rateLimiter, func(c *fiber.Ctx) error {
		var req challengeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		info, err := sessions.RequestChallenge(c.UserContext(), req.Identity)
		if err != nil {
			if errors.Is(err, identity.ErrInvalid) {
				return fiber.NewError(http.StatusBadRequest, "enter a valid phone number or email")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"masked_identity": info.MaskedIdentity,
			"expires_at":      info.ExpiresAt,
			"countdown":       sessions.ResendCountdown(),
		})
	})

	r.Post("/session/otp/resend", rateLimiter, func(c *fiber.Ctx) error {
		var req challengeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		info, err := sessions.ResendChallenge(c.UserContext(), req.Identity)
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrInvalid):
				return fiber.NewError(http.StatusBadRequest, "enter a valid phone number or email")
			case errors.Is(err, session.ErrCountdownActive):
				return fiber.NewError(http.StatusTooManyRequests, "wait for the countdown before resending")
			default:
				return fiber.NewError(http.StatusInternalServerError, err.Error())
			}
		}
		return c.JSON(fiber.Map{
			"masked_identity": info.MaskedIdentity,
			"expires_at":      info.ExpiresAt,
			"countdown":       sessions.ResendCountdown(),
		})
	})

	r.Get("/session/countdown", func(c *fiber.Ctx) error {
		return c.JSON(sessions.ResendCountdown())
	})

	r.Post("/session/verify", func(c *fiber.Ctx) error {
		var req verifyRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		sess, err := sessions.VerifyChallenge(c.UserContext(), req.Code)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrCodeLength):
				return fiber.NewError(http.StatusBadRequest, "enter the full 6 digit code")
			case errors.Is(err, session.ErrCodeExpired):
				return fiber.NewError(http.StatusUnauthorized, "the code expired, request a new one")
			case errors.Is(err, session.ErrCodeMismatch):
				return fiber.NewError(http.StatusUnauthorized, "incorrect code")
			case errors.Is(err, session.ErrNoChallenge):
				return fiber.NewError(http.StatusConflict, "no code was requested")
			default:
				return fiber.NewError(http.StatusInternalServerError, err.Error())
			}
		}
		return c.JSON(toSessionResponse(sess))
	})

	r.Post("/session/restore", func(c *fiber.Ctx) error {
		sess, err := sessions.RestoreSession(c.UserContext())
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return fiber.NewError(http.StatusUnauthorized, "no saved session")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(toSessionResponse(sess))
	})

	r.Post("/session/logout", func(c *fiber.Ctx) error {
		if err := sessions.Logout(c.UserContext()); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(http.StatusNoContent)
	})
}
