package services

import (
	"github.com/username/tourledger/src/models"
)

// ProfitabilityRequest scopes a profitability analysis to a window, with an
// optional comparison mode.
type ProfitabilityRequest struct {
	Records    []models.ShowRecord
	Range      models.PeriodRange
	Comparison models.ComparisonMode // empty = no comparison
}

// ProjectionRequest asks for a forecast over the full record history.
type ProjectionRequest struct {
	Records        []models.ShowRecord
	ForecastMonths int
	Scenario       *models.Scenario // nil = no what-if forecast
}

// AnalysisService is the orchestration boundary: it normalizes raw records
// and runs the period and projection analyses over them. All results are
// recomputed from the supplied records on every call; the service-level
// cache is purely a memoization of identical requests.
type AnalysisService interface {
	NormalizeRecords(records []models.ShowRecord) ([]models.Transaction, error)
	GetProfitability(req ProfitabilityRequest) (*models.ComparisonAnalysis, error)
	GetProjection(req ProjectionRequest) (*models.Projection, error)
}
