package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/tourledger/src/config"
	"github.com/username/tourledger/src/handlers"
	"github.com/username/tourledger/src/logger"
	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/processors"
	"github.com/username/tourledger/src/services"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Tourledger backend server starting...")

	logger.L.Info("Initializing data loaders...")
	fileRates, err := services.NewFileRateSource(config.Cfg.HistoricalRatesPath)
	if err != nil {
		logger.L.Error("Failed to load historical rates, continuing with API lookups only", "error", err)
	}
	agencies, err := services.LoadAgencyDirectory(config.Cfg.AgenciesPath)
	if err != nil {
		logger.L.Error("Failed to load agency directory, commissions resolve to no agencies", "error", err)
		agencies = models.AgencyDirectory{}
	}

	logger.L.Info("Initializing rate service...")
	var fallback processors.RateSource
	if fileRates != nil {
		fallback = fileRates
	}
	rateService := services.NewHTTPRateService(
		config.Cfg.RatesAPIBaseURL,
		config.Cfg.RateLookupTimeout,
		config.Cfg.RateCacheTTL,
		fallback,
	)

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.ReportCacheTTL, 2*config.Cfg.ReportCacheTTL)

	logger.L.Info("Initializing services and handlers...")
	converter := processors.NewCurrencyConverter(rateService)
	resolver := processors.NewCommissionResolver()
	normalizer := processors.NewTransactionNormalizer(converter, resolver, config.Cfg.BaseCurrency, agencies)
	periodWindow := processors.NewPeriodWindow()
	analyzer := processors.NewProfitabilityAnalyzer()
	projector := processors.NewProjectionEngine()

	analysisService := services.NewAnalysisService(normalizer, periodWindow, analyzer, projector, reportCache)
	analysisHandler := handlers.NewAnalysisHandler(
		analysisService, periodWindow,
		config.Cfg.MaxBodySizeBytes, config.Cfg.DefaultForecastMonths,
	)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/analysis/normalize", analysisHandler.HandleNormalize)
	apiRouter.HandleFunc("POST /api/analysis/profitability", analysisHandler.HandleProfitability)
	apiRouter.HandleFunc("POST /api/analysis/projection", analysisHandler.HandleProjection)
	apiRouter.HandleFunc("GET /api/periods/resolve", analysisHandler.HandleResolvePeriod)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "TOURLEDGER Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
