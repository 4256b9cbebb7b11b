package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// OTPRateLimit limits code requests per contact identity (falling back to
// the caller IP) using Redis when available. Without Redis, or on cache
// errors, it fails open.
func OTPRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			Identity string `json:"identity"`
		}
		_ = c.BodyParser(&req)
		who := strings.TrimSpace(req.Identity)
		if who == "" {
			who = c.IP()
		}
		key := "rl:otp:" + who
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many code requests, try again later")
		}
		return c.Next()
	}
}
