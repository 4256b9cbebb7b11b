package routes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/airbounty/airbounty/internal/config"
	"github.com/airbounty/airbounty/internal/geo"
	"github.com/airbounty/airbounty/internal/ledger"
	"github.com/airbounty/airbounty/internal/middleware"
	"github.com/airbounty/airbounty/internal/mission"
	"github.com/airbounty/airbounty/internal/notification"
	"github.com/airbounty/airbounty/internal/reportstore"
	"github.com/airbounty/airbounty/internal/screening"
	"github.com/airbounty/airbounty/internal/session"
	"github.com/airbounty/airbounty/internal/verification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Missing
// backends fall back to in-memory implementations in development; outside
// development they are required.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cfg.ReportStoreURL == "" {
			return fmt.Errorf("REPORT_STORE_URL is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	RegisterHealthRoutes(app, d)

	var ledgerStore ledger.Store
	if d.DB != nil {
		ledgerStore = ledger.NewPostgresStore(d.DB)
	} else {
		ledgerStore = ledger.NewInMemory()
	}

	var store reportstore.Store
	if d.Cfg.ReportStoreURL != "" {
		store = reportstore.NewHTTPStore(d.Cfg.ReportStoreURL)
	} else {
		store = reportstore.NewMemoryStore()
	}

	var notifier notification.Notifier
	if d.Cfg.ReportStoreURL != "" {
		notifier = notification.NewStoreNotifier(store)
	} else {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	var classifier screening.Classifier
	if d.Cfg.VisionAPIURL != "" {
		classifier = screening.NewHTTPClassifier(d.Cfg.VisionAPIURL, d.Cfg.VisionAPIKey)
	} else {
		// Dev stub: confident hazard so the full pipeline is exercisable
		// without the vision endpoint.
		classifier = screening.StaticClassifier{Answer: screening.Classification{
			IsHazard:    true,
			HazardType:  d.Cfg.DefaultHazardType,
			Confidence:  85,
			Description: "dev classifier stub",
		}}
	}

	var pointers session.PointerStore
	if d.Cache != nil {
		pointers = session.NewRedisPointerStore(d.Cache)
	} else {
		pointers = session.NewMemoryPointerStore()
	}

	tokens := session.NewTokenCodec(d.Cfg.SessionSecret, d.Cfg.SessionTTL)
	sessions := session.NewService(ledgerStore, pointers, notifier, tokens, d.Logger, d.Cfg.OTPTTL)

	resolver := geo.NewResolver(geo.Coordinate{Lat: d.Cfg.FallbackLat, Lng: d.Cfg.FallbackLng})
	missions := mission.NewService(ledgerStore, store, classifier, resolver, d.Logger, mission.Config{
		RewardMin:         d.Cfg.RewardMin,
		RewardMax:         d.Cfg.RewardMax,
		DefaultHazardType: d.Cfg.DefaultHazardType,
	})

	var guard verification.Guard
	if d.Cache != nil {
		guard = verification.NewRedisGuard(d.Cache)
	}
	verifications := verification.NewService(ledgerStore, store, guard, d.Logger, verification.Config{
		VerifierReward: d.Cfg.VerifierReward,
		Quorum:         d.Cfg.VerificationQuorum,
	})

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDHeader).(string)
		return c.JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.OTPRateLimit(d.Cache, 5)
	RegisterSessionRoutes(api, sessions, rateLimiter)
	RegisterStatsRoute(api, verifications)

	// Protected routes
	protected := api.Group("", middleware.SessionAuth(sessions))
	RegisterMissionRoutes(protected, missions, d.Cache, d.Logger)
	RegisterVerificationRoutes(protected, verifications)
	RegisterLedgerRoutes(protected, ledgerStore)

	return nil
}
