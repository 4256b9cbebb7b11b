package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/airbounty/airbounty/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()

	calls := 0
	app.Post("/missions", Idempotency(cache, time.Minute, logging.Discard()), func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"calls": calls})
	})
	return app, mr
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	app, _ := setupTestApp(t)

	do := func() map[string]any {
		req := httptest.NewRequest("POST", "/missions", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "submit-1")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("unexpected status %d", resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		var out map[string]any
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	first := do()
	second := do()
	if first["calls"] != float64(1) || second["calls"] != float64(1) {
		t.Fatalf("handler should run once, got %v then %v", first, second)
	}
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	app, _ := setupTestApp(t)

	for want := 1; want <= 2; want++ {
		req := httptest.NewRequest("POST", "/missions", strings.NewReader("{}"))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		var out map[string]any
		json.Unmarshal(body, &out)
		if out["calls"] != float64(want) {
			t.Fatalf("expected call %d, got %v", want, out)
		}
	}
}
