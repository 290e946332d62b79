// src/services/rate_service.go
package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/net/publicsuffix"

	"github.com/username/tourledger/src/logger"
	"github.com/username/tourledger/src/processors"
	"github.com/username/tourledger/src/utils"
)

// historicalRatesFile is the on-disk shape of the historical rate data:
// dated from→to multipliers, values kept as strings with 4–6 decimals.
type historicalRatesFile struct {
	Rates []struct {
		Date string `json:"date"`
		From string `json:"from"`
		To   string `json:"to"`
		Rate string `json:"rate"`
	} `json:"rates"`
}

// FileRateSource serves exchange rates from a historical rates JSON file.
type FileRateSource struct {
	rates map[string]float64
}

// NewFileRateSource loads the historical rates file into memory.
func NewFileRateSource(filePath string) (*FileRateSource, error) {
	logger.L.Info("Loading historical exchange rates", "path", filePath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading historical exchange rate file %q: %w", filePath, err)
	}

	var file historicalRatesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error unmarshalling historical exchange rates from %q: %w", filePath, err)
	}

	source := &FileRateSource{rates: make(map[string]float64, len(file.Rates))}
	for _, obs := range file.Rates {
		rate, err := strconv.ParseFloat(obs.Rate, 64)
		if err != nil {
			logger.L.Warn("Invalid exchange rate value in data",
				"date", obs.Date, "from", obs.From, "to", obs.To, "value", obs.Rate, "error", err)
			continue
		}
		source.rates[rateKey(obs.Date, obs.From, obs.To)] = rate
	}

	logger.L.Info("Historical exchange rates loaded successfully.", "path", filePath, "observationCount", len(source.rates))
	return source, nil
}

// Rate returns the multiplier from → to effective on date.
func (s *FileRateSource) Rate(date time.Time, from, to string) (float64, error) {
	if from == to {
		return 1.0, nil
	}
	key := rateKey(date.Format(utils.DateLayout), from, to)
	if rate, ok := s.rates[key]; ok {
		return rate, nil
	}
	return 0, fmt.Errorf("no historical rate for %s to %s on %s", from, to, date.Format(utils.DateLayout))
}

func rateKey(date, from, to string) string {
	return date + "|" + from + "|" + to
}

// HTTPRateService resolves rates from a frankfurter-style HTTP API, caching
// results and optionally falling back to another source when the API has no
// answer. It owns no retry policy beyond the cache.
type HTTPRateService struct {
	httpClient *http.Client
	baseURL    string
	rateCache  *cache.Cache
	fallback   processors.RateSource
}

// NewHTTPRateService creates a rate service against the given API base URL.
// fallback may be nil.
func NewHTTPRateService(baseURL string, timeout, cacheTTL time.Duration, fallback processors.RateSource) *HTTPRateService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &HTTPRateService{
		httpClient: &http.Client{Jar: jar, Timeout: timeout},
		baseURL:    baseURL,
		rateCache:  cache.New(cacheTTL, 2*cacheTTL),
		fallback:   fallback,
	}
}

// Rate returns the multiplier from → to effective on date, consulting the
// cache, then the API, then the fallback source.
func (s *HTTPRateService) Rate(date time.Time, from, to string) (float64, error) {
	if from == to {
		return 1.0, nil
	}

	key := rateKey(date.Format(utils.DateLayout), from, to)
	if cached, found := s.rateCache.Get(key); found {
		return cached.(float64), nil
	}

	rate, err := s.fetchRate(date, from, to)
	if err != nil {
		logger.L.Warn("Rate API lookup failed",
			"from", from, "to", to, "date", date.Format(utils.DateLayout), "error", err)
		if s.fallback != nil {
			return s.fallback.Rate(date, from, to)
		}
		return 0, err
	}

	s.rateCache.Set(key, rate, cache.DefaultExpiration)
	return rate, nil
}

func (s *HTTPRateService) fetchRate(date time.Time, from, to string) (float64, error) {
	url := fmt.Sprintf("%s/%s?from=%s&to=%s", s.baseURL, date.Format(utils.DateLayout), from, to)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate API returned status %d for %s", resp.StatusCode, url)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decoding rate response: %w", err)
	}

	rate, ok := payload.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate API response has no usable rate for %s", to)
	}
	return rate, nil
}
