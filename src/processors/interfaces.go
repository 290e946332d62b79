package processors

import (
	"time"

	"github.com/username/tourledger/src/models"
)

// RateSource is the external rate-lookup collaborator: the multiplier
// from → to effective on the given date. The source owns its own retry and
// caching policy; the engine treats a failed lookup as "rate unavailable".
type RateSource interface {
	Rate(date time.Time, from, to string) (float64, error)
}

// CurrencyConverter resolves a rate for (amount, date, from, to) and
// converts. A missing rate is reported via ErrRateUnavailable, never as a
// silent 1:1 conversion.
type CurrencyConverter interface {
	Convert(amount float64, date time.Time, from, to string) (*models.Conversion, error)
}

// CommissionResolver computes the commissions owed to the 0–2 agencies a
// record selects, applying per-record overrides over agency defaults.
type CommissionResolver interface {
	Resolve(feeInBase float64, agencies models.AgencySelection, overrides models.CommissionOverrides) []models.Commission
}

// TransactionNormalizer turns one raw show record into canonical
// transactions: one net income transaction plus one expense transaction per
// cost line.
type TransactionNormalizer interface {
	Normalize(record models.ShowRecord) ([]models.Transaction, error)
}

// PeriodWindow resolves named presets and custom bounds into concrete
// inclusive date ranges, and derives comparison windows from them.
type PeriodWindow interface {
	ResolvePreset(preset models.PeriodPreset, reference time.Time) (models.PeriodRange, error)
	CustomRange(startDate, endDate string) (models.PeriodRange, error)
	DeriveComparison(r models.PeriodRange, mode models.ComparisonMode) (models.PeriodRange, error)
	FilterByRange(txs []models.Transaction, r models.PeriodRange) ([]models.Transaction, error)
}

// ProfitabilityAnalyzer aggregates canonical transactions into period KPIs.
type ProfitabilityAnalyzer interface {
	Analyze(txs []models.Transaction) models.ProfitabilityAnalysis
	PendingSummary(txs []models.Transaction) models.PendingSummary
}

// ProjectionEngine buckets history by month and produces trend-based
// forecasts with decaying confidence.
type ProjectionEngine interface {
	Project(txs []models.Transaction, forecastMonths int) models.Projection
	WhatIf(txs []models.Transaction, forecastMonths int, scenario models.Scenario) []models.ProjectionPoint
}
