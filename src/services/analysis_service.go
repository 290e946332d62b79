// src/services/analysis_service.go
package services

import (
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/username/tourledger/src/logger"
	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/processors"
	"github.com/username/tourledger/src/utils"
)

type analysisServiceImpl struct {
	normalizer  processors.TransactionNormalizer
	window      processors.PeriodWindow
	analyzer    processors.ProfitabilityAnalyzer
	projector   processors.ProjectionEngine
	reportCache *cache.Cache
}

// NewAnalysisService wires the engine components behind the orchestration
// boundary. reportCache may be nil to disable memoization.
func NewAnalysisService(
	normalizer processors.TransactionNormalizer,
	window processors.PeriodWindow,
	analyzer processors.ProfitabilityAnalyzer,
	projector processors.ProjectionEngine,
	reportCache *cache.Cache,
) AnalysisService {
	return &analysisServiceImpl{
		normalizer:  normalizer,
		window:      window,
		analyzer:    analyzer,
		projector:   projector,
		reportCache: reportCache,
	}
}

// NormalizeRecords converts raw show records into canonical transactions.
func (s *analysisServiceImpl) NormalizeRecords(records []models.ShowRecord) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0, len(records))
	for _, record := range records {
		txs, err := s.normalizer.Normalize(record)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txs...)
	}
	return transactions, nil
}

// GetProfitability analyzes the transactions inside the requested window
// and, when a comparison mode is given, the derived comparison window with
// current-minus-previous deltas.
func (s *analysisServiceImpl) GetProfitability(req ProfitabilityRequest) (*models.ComparisonAnalysis, error) {
	cacheKey, err := s.cacheKey("profitability", req)
	if err == nil && s.reportCache != nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			logger.L.Debug("Profitability analysis served from cache", "key", cacheKey)
			return cached.(*models.ComparisonAnalysis), nil
		}
	}

	transactions, err := s.NormalizeRecords(req.Records)
	if err != nil {
		return nil, err
	}

	windowTxs, err := s.window.FilterByRange(transactions, req.Range)
	if err != nil {
		return nil, err
	}

	result := &models.ComparisonAnalysis{
		Range:   req.Range,
		Current: s.analyzer.Analyze(windowTxs),
		Pending: s.analyzer.PendingSummary(windowTxs),
	}

	if req.Comparison != "" {
		previousRange, err := s.window.DeriveComparison(req.Range, req.Comparison)
		if err != nil {
			return nil, err
		}
		previousTxs, err := s.window.FilterByRange(transactions, previousRange)
		if err != nil {
			return nil, err
		}
		previous := s.analyzer.Analyze(previousTxs)
		result.Previous = &previous
		result.PreviousRange = &previousRange
		result.Deltas = &models.AnalysisDeltas{
			GrossIncome:   utils.RoundCurrency(result.Current.GrossIncome - previous.GrossIncome),
			NetIncome:     utils.RoundCurrency(result.Current.NetIncome - previous.NetIncome),
			TotalExpenses: utils.RoundCurrency(result.Current.TotalExpenses - previous.TotalExpenses),
			NetProfit:     utils.RoundCurrency(result.Current.NetProfit - previous.NetProfit),
		}
	}

	if s.reportCache != nil && cacheKey != "" {
		s.reportCache.Set(cacheKey, result, cache.DefaultExpiration)
	}
	return result, nil
}

// GetProjection forecasts from the full record history, attaching a what-if
// forecast when a scenario is supplied.
func (s *analysisServiceImpl) GetProjection(req ProjectionRequest) (*models.Projection, error) {
	cacheKey, err := s.cacheKey("projection", req)
	if err == nil && s.reportCache != nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			logger.L.Debug("Projection served from cache", "key", cacheKey)
			return cached.(*models.Projection), nil
		}
	}

	transactions, err := s.NormalizeRecords(req.Records)
	if err != nil {
		return nil, err
	}

	projection := s.projector.Project(transactions, req.ForecastMonths)
	if req.Scenario != nil {
		projection.WhatIf = s.projector.WhatIf(transactions, req.ForecastMonths, *req.Scenario)
	}

	if s.reportCache != nil && cacheKey != "" {
		s.reportCache.Set(cacheKey, &projection, cache.DefaultExpiration)
	}
	return &projection, nil
}

// cacheKey derives a deterministic key from the request payload.
func (s *analysisServiceImpl) cacheKey(kind string, req interface{}) (string, error) {
	digest, err := utils.GenerateETag(req)
	if err != nil {
		return "", fmt.Errorf("deriving cache key: %w", err)
	}
	return kind + ":" + digest, nil
}
