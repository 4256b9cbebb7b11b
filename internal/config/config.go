package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName        = "AirBounty"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultOTPTTL         = 60 * time.Second
	defaultSessionTTL     = 30 * 24 * time.Hour
	defaultRewardMin      = 10
	defaultRewardMax      = 19
	defaultVerifierReward = 5
	defaultQuorum         = 2
	defaultHazardType     = "burning"

	// Default drop pin when geolocation is denied: central Bangkok.
	defaultFallbackLat = 13.7563
	defaultFallbackLng = 100.5018
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	ReportStoreURL string
	VisionAPIURL   string
	VisionAPIKey   string

	SessionSecret string
	SessionTTL    time.Duration

	OTPTTL time.Duration

	// Reward band for an accepted submission. The band is a product
	// decision: the base variant pays 10-19, the AI-gated variant 15-24.
	RewardMin      int
	RewardMax      int
	VerifierReward int

	// Number of positive verifications that confirm a report.
	VerificationQuorum int

	DefaultHazardType string
	FallbackLat       float64
	FallbackLng       float64

	ShutdownPeriod time.Duration
}

// Load reads configuration values from the environment and populates a
// Config instance. A .env file in the working directory is applied first
// when present; real environment variables win over it.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:            getEnv("APP_NAME", defaultAppName),
		AppEnv:             getEnv("APP_ENV", defaultAppEnv),
		Port:               getEnv("PORT", defaultPort),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		ReportStoreURL:     os.Getenv("REPORT_STORE_URL"),
		VisionAPIURL:       os.Getenv("VISION_API_URL"),
		VisionAPIKey:       os.Getenv("VISION_API_KEY"),
		SessionSecret:      getEnv("SESSION_SECRET", "dev-session-secret"),
		SessionTTL:         defaultSessionTTL,
		OTPTTL:             defaultOTPTTL,
		RewardMin:          defaultRewardMin,
		RewardMax:          defaultRewardMax,
		VerifierReward:     defaultVerifierReward,
		VerificationQuorum: defaultQuorum,
		DefaultHazardType:  getEnv("DEFAULT_HAZARD_TYPE", defaultHazardType),
		FallbackLat:        defaultFallbackLat,
		FallbackLng:        defaultFallbackLng,
		ShutdownPeriod:     defaultShutdownDelay,
	}

	var err error
	if cfg.OTPTTL, err = getDuration("OTP_TTL", cfg.OTPTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.RewardMin, err = getInt("REWARD_MIN", cfg.RewardMin); err != nil {
		return Config{}, err
	}
	if cfg.RewardMax, err = getInt("REWARD_MAX", cfg.RewardMax); err != nil {
		return Config{}, err
	}
	if cfg.VerifierReward, err = getInt("VERIFIER_REWARD", cfg.VerifierReward); err != nil {
		return Config{}, err
	}
	if cfg.VerificationQuorum, err = getInt("VERIFICATION_QUORUM", cfg.VerificationQuorum); err != nil {
		return Config{}, err
	}
	if cfg.FallbackLat, err = getFloat("FALLBACK_LAT", cfg.FallbackLat); err != nil {
		return Config{}, err
	}
	if cfg.FallbackLng, err = getFloat("FALLBACK_LNG", cfg.FallbackLng); err != nil {
		return Config{}, err
	}

	if cfg.RewardMin <= 0 || cfg.RewardMax < cfg.RewardMin {
		return Config{}, fmt.Errorf("invalid reward band %d-%d", cfg.RewardMin, cfg.RewardMax)
	}
	if cfg.VerificationQuorum < 1 {
		return Config{}, fmt.Errorf("VERIFICATION_QUORUM must be at least 1")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app is running in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(key + "_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s_SECONDS: %w", key, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}
