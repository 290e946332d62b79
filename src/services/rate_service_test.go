package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeRatesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing rates file: %v", err)
	}
	return path
}

func TestFileRateSource(t *testing.T) {
	path := writeRatesFile(t, `{"rates":[
		{"date":"2026-05-01","from":"USD","to":"EUR","rate":"0.9321"},
		{"date":"2026-05-01","from":"GBP","to":"EUR","rate":"not-a-number"}
	]}`)

	source, err := NewFileRateSource(path)
	if err != nil {
		t.Fatalf("NewFileRateSource() unexpected error: %v", err)
	}

	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	rate, err := source.Rate(day, "USD", "EUR")
	if err != nil {
		t.Fatalf("Rate() unexpected error: %v", err)
	}
	if rate != 0.9321 {
		t.Errorf("Rate() = %v, want 0.9321", rate)
	}

	if rate, err := source.Rate(day, "EUR", "EUR"); err != nil || rate != 1 {
		t.Errorf("same-currency Rate() = %v, %v; want 1, nil", rate, err)
	}

	// The malformed observation was skipped at load time.
	if _, err := source.Rate(day, "GBP", "EUR"); err == nil {
		t.Error("Rate() served a rate parsed from a malformed value")
	}

	if _, err := source.Rate(day.AddDate(0, 0, 1), "USD", "EUR"); err == nil {
		t.Error("Rate() served a rate for a date with no observation")
	}
}

func TestFileRateSource_MissingFile(t *testing.T) {
	if _, err := NewFileRateSource(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("NewFileRateSource() accepted a missing file")
	}
}

func TestHTTPRateService_FetchAndCache(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprintf(w, `{"amount":1.0,"base":"USD","date":"2026-05-01","rates":{"EUR":0.93}}`)
	}))
	defer server.Close()

	service := NewHTTPRateService(server.URL, 5*time.Second, time.Minute, nil)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	rate, err := service.Rate(day, "USD", "EUR")
	if err != nil {
		t.Fatalf("Rate() unexpected error: %v", err)
	}
	if rate != 0.93 {
		t.Errorf("Rate() = %v, want 0.93", rate)
	}

	if _, err := service.Rate(day, "USD", "EUR"); err != nil {
		t.Fatalf("cached Rate() unexpected error: %v", err)
	}
	if hits != 1 {
		t.Errorf("API hit %d times, want 1 (second lookup served from cache)", hits)
	}

	if _, err := service.Rate(day, "EUR", "EUR"); err != nil {
		t.Fatalf("same-currency Rate() unexpected error: %v", err)
	}
	if hits != 1 {
		t.Errorf("API hit %d times after same-currency lookup, want still 1", hits)
	}
}

func TestHTTPRateService_FallsBackToFileSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	path := writeRatesFile(t, `{"rates":[{"date":"2026-05-01","from":"USD","to":"EUR","rate":"0.9100"}]}`)
	fallback, err := NewFileRateSource(path)
	if err != nil {
		t.Fatalf("NewFileRateSource() unexpected error: %v", err)
	}

	service := NewHTTPRateService(server.URL, 5*time.Second, time.Minute, fallback)

	rate, err := service.Rate(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "USD", "EUR")
	if err != nil {
		t.Fatalf("Rate() unexpected error: %v", err)
	}
	if rate != 0.91 {
		t.Errorf("Rate() = %v, want the fallback's 0.91", rate)
	}
}

func TestHTTPRateService_NoFallbackPropagatesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	service := NewHTTPRateService(server.URL, 5*time.Second, time.Minute, nil)
	if _, err := service.Rate(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "USD", "EUR"); err == nil {
		t.Fatal("Rate() returned no error although the API failed and no fallback exists")
	}
}
