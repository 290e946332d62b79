package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port                  string
	LogLevel              string
	BaseCurrency          string
	HistoricalRatesPath   string
	AgenciesPath          string
	RatesAPIBaseURL       string
	RateLookupTimeout     time.Duration
	RateCacheTTL          time.Duration
	ReportCacheTTL        time.Duration
	MaxBodySizeBytes      int64
	DefaultForecastMonths int
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxBodySizeBytesStr := getEnv("MAX_BODY_SIZE_BYTES", "5242880")
	maxBodySizeBytes, err := strconv.ParseInt(maxBodySizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_BODY_SIZE_BYTES format '%s'. Using default 5MB. Error: %v", maxBodySizeBytesStr, err)
		maxBodySizeBytes = 5 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:                  getEnv("PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		BaseCurrency:          getEnv("BASE_CURRENCY", "EUR"),
		HistoricalRatesPath:   getEnv("HISTORICAL_RATES_PATH", "data/historicalExchangeRates.json"),
		AgenciesPath:          getEnv("AGENCIES_PATH", "data/agencies.json"),
		RatesAPIBaseURL:       getEnv("RATES_API_BASE_URL", "https://api.frankfurter.app"),
		RateLookupTimeout:     getEnvAsDuration("RATE_LOOKUP_TIMEOUT", 15*time.Second),
		RateCacheTTL:          getEnvAsDuration("RATE_CACHE_TTL", 12*time.Hour),
		ReportCacheTTL:        getEnvAsDuration("REPORT_CACHE_TTL", 15*time.Minute),
		MaxBodySizeBytes:      maxBodySizeBytes,
		DefaultForecastMonths: getEnvAsInt("DEFAULT_FORECAST_MONTHS", 6),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, BaseCurrency=%s, RatesAPI=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.BaseCurrency, Cfg.RatesAPIBaseURL)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
