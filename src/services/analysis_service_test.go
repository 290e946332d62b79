package services

import (
	"testing"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/processors"
)

type staticRateSource struct {
	rates map[string]float64
}

func (s *staticRateSource) Rate(date time.Time, from, to string) (float64, error) {
	if rate, ok := s.rates[from+"|"+to]; ok {
		return rate, nil
	}
	return 0, processors.ErrRateUnavailable
}

func pct(v float64) *float64 { return &v }

func newTestService(reportCache *cache.Cache) AnalysisService {
	agencies := models.AgencyDirectory{
		"mgmt-1": {ID: "mgmt-1", Name: "Mgmt", Slot: models.SlotManagement, DefaultPct: 15},
	}
	converter := processors.NewCurrencyConverter(&staticRateSource{rates: map[string]float64{"USD|EUR": 0.9}})
	normalizer := processors.NewTransactionNormalizer(converter, processors.NewCommissionResolver(), "EUR", agencies)
	return NewAnalysisService(
		normalizer,
		processors.NewPeriodWindow(),
		processors.NewProfitabilityAnalyzer(),
		processors.NewProjectionEngine(),
		reportCache,
	)
}

func testRecords() []models.ShowRecord {
	return []models.ShowRecord{
		{
			ID: "show-1", Date: "2026-06-10", City: "Madrid", Country: "Spain",
			Fee: 10000, FeeCurrency: "EUR", Status: "paid",
			WHTPct: 15, ManagementAgencyID: "mgmt-1", ManagementPctOverride: pct(10),
			Costs: []models.CostLine{{Type: "travel", Description: "Flights", Amount: 1000}},
		},
		{
			ID: "show-2", Date: "2026-05-20", City: "Lisbon", Country: "Portugal",
			Fee: 5000, FeeCurrency: "EUR", Status: "paid",
		},
		{
			ID: "show-3", Date: "2026-06-25", City: "Paris", Country: "France",
			Fee: 4000, FeeCurrency: "EUR", Status: "pending",
		},
	}
}

func TestAnalysisService_NormalizeRecords(t *testing.T) {
	service := newTestService(nil)

	txs, err := service.NormalizeRecords(testRecords())
	if err != nil {
		t.Fatalf("NormalizeRecords() unexpected error: %v", err)
	}
	// show-1 yields an income and an expense; the others one income each.
	if len(txs) != 4 {
		t.Fatalf("NormalizeRecords() produced %d transactions, want 4", len(txs))
	}
}

func TestAnalysisService_GetProfitability(t *testing.T) {
	service := newTestService(nil)

	result, err := service.GetProfitability(ProfitabilityRequest{
		Records: testRecords(),
		Range:   models.PeriodRange{StartDate: "2026-06-01", EndDate: "2026-06-30"},
	})
	if err != nil {
		t.Fatalf("GetProfitability() unexpected error: %v", err)
	}

	// show-1 only: gross 10000, commission 1000, WHT 1500, expenses 1000.
	if result.Current.GrossIncome != 10000 {
		t.Errorf("gross income = %v, want 10000", result.Current.GrossIncome)
	}
	if result.Current.NetIncome != 7500 {
		t.Errorf("net income = %v, want 7500", result.Current.NetIncome)
	}
	if result.Current.NetProfit != 6500 {
		t.Errorf("net profit = %v, want 6500", result.Current.NetProfit)
	}
	// show-3 is pending and inside the window.
	if result.Pending.PendingIncome != 4000 || result.Pending.Count != 1 {
		t.Errorf("pending = %+v, want income 4000 count 1", result.Pending)
	}
	if result.Previous != nil || result.Deltas != nil {
		t.Error("comparison fields set without a comparison mode")
	}
}

func TestAnalysisService_GetProfitabilityWithComparison(t *testing.T) {
	service := newTestService(nil)

	result, err := service.GetProfitability(ProfitabilityRequest{
		Records:    testRecords(),
		Range:      models.PeriodRange{StartDate: "2026-06-01", EndDate: "2026-06-30"},
		Comparison: models.ComparePrevious,
	})
	if err != nil {
		t.Fatalf("GetProfitability() unexpected error: %v", err)
	}

	if result.Previous == nil || result.PreviousRange == nil || result.Deltas == nil {
		t.Fatal("comparison fields missing")
	}
	if result.PreviousRange.StartDate != "2026-05-02" || result.PreviousRange.EndDate != "2026-05-31" {
		t.Errorf("previous range = %+v, want 2026-05-02..2026-05-31", result.PreviousRange)
	}
	// Previous window holds show-2: gross 5000, no deductions.
	if result.Previous.GrossIncome != 5000 {
		t.Errorf("previous gross income = %v, want 5000", result.Previous.GrossIncome)
	}
	if result.Deltas.GrossIncome != 5000 {
		t.Errorf("gross income delta = %v, want 5000", result.Deltas.GrossIncome)
	}
	if result.Deltas.NetProfit != 1500 {
		t.Errorf("net profit delta = %v, want 6500−5000 = 1500", result.Deltas.NetProfit)
	}
}

func TestAnalysisService_GetProfitabilityRejectsInvalidRange(t *testing.T) {
	service := newTestService(nil)

	_, err := service.GetProfitability(ProfitabilityRequest{
		Records: testRecords(),
		Range:   models.PeriodRange{StartDate: "2026-06-30", EndDate: "2026-06-01"},
	})
	if err == nil {
		t.Fatal("GetProfitability() accepted an inverted range")
	}
}

func TestAnalysisService_GetProjection(t *testing.T) {
	service := newTestService(nil)

	projection, err := service.GetProjection(ProjectionRequest{
		Records:        testRecords(),
		ForecastMonths: 2,
		Scenario:       &models.Scenario{IncomeGrowth: 0.1},
	})
	if err != nil {
		t.Fatalf("GetProjection() unexpected error: %v", err)
	}
	if len(projection.Historical) != 2 {
		t.Fatalf("historical has %d months, want 2 (pending show excluded)", len(projection.Historical))
	}
	if len(projection.Forecast) != 2 {
		t.Errorf("forecast has %d points, want 2", len(projection.Forecast))
	}
	if len(projection.WhatIf) != 2 {
		t.Errorf("whatIf has %d points, want 2", len(projection.WhatIf))
	}
}

func TestAnalysisService_CachedResultsAreIdentical(t *testing.T) {
	service := newTestService(cache.New(time.Minute, time.Minute))

	req := ProfitabilityRequest{
		Records: testRecords(),
		Range:   models.PeriodRange{StartDate: "2026-06-01", EndDate: "2026-06-30"},
	}

	first, err := service.GetProfitability(req)
	if err != nil {
		t.Fatalf("GetProfitability() unexpected error: %v", err)
	}
	second, err := service.GetProfitability(req)
	if err != nil {
		t.Fatalf("GetProfitability() unexpected error: %v", err)
	}
	if first != second {
		// Same pointer proves the memoized result was reused.
		t.Error("second call did not reuse the cached analysis")
	}
}

func TestAnalysisService_FXUnresolvedFlagSurfaces(t *testing.T) {
	service := newTestService(nil)

	txs, err := service.NormalizeRecords([]models.ShowRecord{{
		ID: "show-fx", Date: "2026-06-01", City: "Oslo", Country: "Norway",
		Fee: 20000, FeeCurrency: "NOK", Status: "paid",
	}})
	if err != nil {
		t.Fatalf("NormalizeRecords() unexpected error: %v", err)
	}
	if !txs[0].FXUnresolved {
		t.Error("FXUnresolved not surfaced for a currency with no rate")
	}
}
