package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idem:v1:"
	inProgressMarker     = "__in_progress__"
)

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// Idempotency makes a mutating route replay-safe: a retried request with
// the same Idempotency-Key gets the stored response instead of, say, a
// second mission reward. Routes mount it individually; requests without
// the header pass through untouched, since the key is the client's
// opt-in.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		key := c.Get(idempotencyKeyHeader)
		if key == "" {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		cacheKey := idempotencyPrefix + key

		cached, err := cache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil && cached == inProgressMarker:
			return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
		case err == nil:
			var stored storedResponse
			if err := json.Unmarshal([]byte(cached), &stored); err != nil {
				logger.Warn("bad stored idempotent response", slog.String("key", key), slog.Any("error", err))
				return fiber.NewError(fiber.StatusConflict, "duplicate request")
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(stored.Status).SendString(stored.Body)
		case err != redis.Nil:
			// Fail open rather than block submissions on a cache outage.
			logger.Warn("idempotency lookup failed", slog.String("key", key), slog.Any("error", err))
			return c.Next()
		}

		if err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Err(); err != nil {
			logger.Warn("idempotency reservation failed", slog.String("key", key), slog.Any("error", err))
			return c.Next()
		}

		if err := c.Next(); err != nil {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			cache.Del(cleanupCtx, cacheKey)
			return err
		}

		stored := storedResponse{
			Status: c.Response().StatusCode(),
			Body:   string(c.Response().Body()),
		}
		payload, err := json.Marshal(stored)
		if err != nil {
			logger.Warn("encode idempotent response", slog.String("key", key), slog.Any("error", err))
			return nil
		}

		persistCtx, persistCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer persistCancel()
		if err := cache.Set(persistCtx, cacheKey, payload, ttl).Err(); err != nil {
			logger.Warn("persist idempotent response", slog.String("key", key), slog.Any("error", err))
		}
		return nil
	}
}
