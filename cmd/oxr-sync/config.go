package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"service-exchangerates/internal"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL string
	HTTPPort    string
	LogLevel    string

	// OXRAppID is the Open Exchange Rates app_id. Never log it.
	OXRAppID   string
	OXRBaseURL string
	OXRTimeout time.Duration

	BaseCCY      internal.CurrencyCode
	LocalBaseCCY internal.CurrencyCode

	CronSpec string
	Location string

	BackfillDays    int
	BackfillWorkers int

	EncodingKey string
}

func LoadConfig() (Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Overload()

	cfg := Config{
		HTTPPort:        getEnv("PORT", DefaultHTTPPort),
		LogLevel:        getEnv("LOG_LEVEL", DefaultLogLevel),
		OXRBaseURL:      getEnv("OXR_BASE_URL", ""),
		CronSpec:        getEnv("CRON_SPEC", DefaultCronSpec),
		Location:        getEnv("LOCATION", DefaultLocation),
		OXRTimeout:      DefaultOXRTimeout,
		BackfillDays:    DefaultBackfillDays,
		BackfillWorkers: DefaultBackfillWorkers,
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is empty")
	}

	cfg.OXRAppID = getEnv("OXR_APP_ID", "")
	if cfg.OXRAppID == "" {
		return Config{}, fmt.Errorf("OXR_APP_ID is empty")
	}

	cfg.EncodingKey = getEnv("ENCODING_KEY", "")
	if cfg.EncodingKey == "" {
		return Config{}, fmt.Errorf("ENCODING_KEY is empty")
	}

	base, err := internal.NewCurrencyCode(getEnv("BASE_CCY", DefaultBaseCCY))
	if err != nil {
		return Config{}, fmt.Errorf("BASE_CCY: %w", err)
	}
	cfg.BaseCCY = base

	if v := getEnv("LOCAL_BASE_CCY", ""); v != "" {
		localBase, err := internal.NewCurrencyCode(v)
		if err != nil {
			return Config{}, fmt.Errorf("LOCAL_BASE_CCY: %w", err)
		}
		cfg.LocalBaseCCY = localBase
	}

	if v := getEnv("OXR_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("OXR_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.OXRTimeout = d
	}

	if cfg.BackfillDays, err = getEnvInt("BACKFILL_DAYS", DefaultBackfillDays); err != nil {
		return Config{}, err
	}
	if cfg.BackfillWorkers, err = getEnvInt("BACKFILL_WORKERS", DefaultBackfillWorkers); err != nil {
		return Config{}, err
	}
	if cfg.BackfillDays < 0 || cfg.BackfillWorkers < 1 {
		return Config{}, fmt.Errorf("BACKFILL_DAYS must be >= 0 and BACKFILL_WORKERS >= 1")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
