// src/handlers/analysis_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/username/tourledger/src/logger"
	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/processors"
	"github.com/username/tourledger/src/services"
	"github.com/username/tourledger/src/utils"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
	periodWindow    processors.PeriodWindow
	maxBodyBytes    int64
	defaultMonths   int
}

func NewAnalysisHandler(service services.AnalysisService, window processors.PeriodWindow, maxBodyBytes int64, defaultForecastMonths int) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: service,
		periodWindow:    window,
		maxBodyBytes:    maxBodyBytes,
		defaultMonths:   defaultForecastMonths,
	}
}

type normalizeRequest struct {
	Records []models.ShowRecord `json:"records"`
}

type profitabilityRequest struct {
	Records       []models.ShowRecord `json:"records"`
	Preset        string              `json:"preset,omitempty"`
	StartDate     string              `json:"start_date,omitempty"`
	EndDate       string              `json:"end_date,omitempty"`
	ReferenceDate string              `json:"reference_date,omitempty"`
	Comparison    string              `json:"comparison,omitempty"`
}

type projectionRequest struct {
	Records        []models.ShowRecord `json:"records"`
	ForecastMonths int                 `json:"forecast_months,omitempty"`
	Scenario       *models.Scenario    `json:"scenario,omitempty"`
}

// HandleNormalize converts raw show records to canonical transactions.
func (h *AnalysisHandler) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	var req normalizeRequest
	if !h.decodeBody(w, r, &req, requestID) {
		return
	}
	logger.L.Info("Handling normalize", "requestID", requestID, "recordCount", len(req.Records))

	transactions, err := h.analysisService.NormalizeRecords(req.Records)
	if err != nil {
		logger.L.Error("Error normalizing records", "requestID", requestID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("error normalizing records: %v", err), http.StatusBadRequest)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	writeJSON(w, transactions, requestID)
}

// HandleProfitability runs the period-scoped profitability analysis.
func (h *AnalysisHandler) HandleProfitability(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	var req profitabilityRequest
	if !h.decodeBody(w, r, &req, requestID) {
		return
	}

	periodRange, err := h.resolveRange(req)
	if err != nil {
		logger.L.Warn("Rejecting profitability request with invalid range", "requestID", requestID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("Handling profitability analysis",
		"requestID", requestID, "recordCount", len(req.Records),
		"start", periodRange.StartDate, "end", periodRange.EndDate, "comparison", req.Comparison)

	analysis, err := h.analysisService.GetProfitability(services.ProfitabilityRequest{
		Records:    req.Records,
		Range:      periodRange,
		Comparison: models.ComparisonMode(req.Comparison),
	})
	if err != nil {
		logger.L.Error("Error computing profitability analysis", "requestID", requestID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("error computing profitability analysis: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, analysis, requestID)
}

// HandleProjection runs the monthly forecast over the full record history.
func (h *AnalysisHandler) HandleProjection(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	var req projectionRequest
	if !h.decodeBody(w, r, &req, requestID) {
		return
	}

	months := req.ForecastMonths
	if months <= 0 {
		months = h.defaultMonths
	}
	logger.L.Info("Handling projection",
		"requestID", requestID, "recordCount", len(req.Records),
		"forecastMonths", months, "hasScenario", req.Scenario != nil)

	projection, err := h.analysisService.GetProjection(services.ProjectionRequest{
		Records:        req.Records,
		ForecastMonths: months,
		Scenario:       req.Scenario,
	})
	if err != nil {
		logger.L.Error("Error computing projection", "requestID", requestID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("error computing projection: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, projection, requestID)
}

// HandleResolvePeriod resolves a preset (or custom bounds) to a concrete
// range: GET /api/periods/resolve?preset=thisMonth&reference=2026-08-28
func (h *AnalysisHandler) HandleResolvePeriod(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	query := r.URL.Query()

	reference := time.Now()
	if refStr := query.Get("reference"); refStr != "" {
		parsed, err := utils.ParseDate(refStr)
		if err != nil {
			utils.SendJSONError(w, fmt.Sprintf("invalid reference date: %v", err), http.StatusBadRequest)
			return
		}
		reference = parsed
	}

	var periodRange models.PeriodRange
	var err error
	preset := models.PeriodPreset(query.Get("preset"))
	if preset == models.PresetCustom {
		periodRange, err = h.periodWindow.CustomRange(query.Get("start_date"), query.Get("end_date"))
	} else {
		periodRange, err = h.periodWindow.ResolvePreset(preset, reference)
	}
	if err != nil {
		logger.L.Warn("Rejecting period resolve request", "requestID", requestID, "preset", preset, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, periodRange, requestID)
}

func (h *AnalysisHandler) resolveRange(req profitabilityRequest) (models.PeriodRange, error) {
	preset := models.PeriodPreset(req.Preset)
	if preset == "" || preset == models.PresetCustom {
		return h.periodWindow.CustomRange(req.StartDate, req.EndDate)
	}

	reference := time.Now()
	if req.ReferenceDate != "" {
		parsed, err := utils.ParseDate(req.ReferenceDate)
		if err != nil {
			return models.PeriodRange{}, fmt.Errorf("invalid reference date: %w", err)
		}
		reference = parsed
	}
	return h.periodWindow.ResolvePreset(preset, reference)
}

func (h *AnalysisHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, requestID string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			utils.SendJSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		logger.L.Warn("Rejecting malformed request body", "requestID", requestID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data interface{}, requestID string) {
	if etag, err := utils.GenerateETag(data); err == nil {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L.Error("Error encoding response to JSON", "requestID", requestID, "error", err)
	}
}
