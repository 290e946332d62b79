// src/processors/projection_processor.go
package processors

import (
	"math"
	"sort"
	"time"

	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/utils"
)

const (
	movingAvgWindow = 3

	baseConfidenceFloor   = 0.5
	baseConfidenceDecay   = 0.08
	whatIfConfidenceFloor = 0.3
	whatIfConfidenceDecay = 0.1
)

type projectionEngineImpl struct{}

// NewProjectionEngine creates a new instance of ProjectionEngine.
func NewProjectionEngine() ProjectionEngine {
	return &projectionEngineImpl{}
}

// Project buckets paid transactions by calendar month and forecasts the next
// forecastMonths from the 3-month moving average plus the least-squares
// trend, with confidence decaying linearly to a 50% floor. Months without
// transactions are absent from the history, not zero-filled.
func (e *projectionEngineImpl) Project(txs []models.Transaction, forecastMonths int) models.Projection {
	historical := bucketByMonth(txs)
	projection := models.Projection{
		Historical: historical,
		Forecast:   []models.ProjectionPoint{},
	}
	if len(historical) == 0 {
		return projection
	}

	incomes := make([]float64, len(historical))
	expenses := make([]float64, len(historical))
	for i, m := range historical {
		incomes[i] = m.Income
		expenses[i] = m.Expenses
	}

	projection.IncomeMovingAvg = movingAverage(incomes, movingAvgWindow)
	projection.ExpensesMovingAvg = movingAverage(expenses, movingAvgWindow)
	projection.IncomeTrend = olsSlope(incomes)
	projection.ExpensesTrend = olsSlope(expenses)

	lastMonth, err := time.Parse(utils.MonthLayout, historical[len(historical)-1].Month)
	if err != nil {
		return projection
	}

	for i := 1; i <= forecastMonths; i++ {
		income := math.Max(0, projection.IncomeMovingAvg+projection.IncomeTrend*float64(i))
		expense := math.Max(0, projection.ExpensesMovingAvg+projection.ExpensesTrend*float64(i))
		projection.Forecast = append(projection.Forecast, models.ProjectionPoint{
			Month:             lastMonth.AddDate(0, i, 0).Format(utils.MonthLayout),
			ProjectedIncome:   utils.RoundCurrency(income),
			ProjectedExpenses: utils.RoundCurrency(expense),
			ProjectedBalance:  utils.RoundCurrency(income - expense),
			Confidence:        math.Max(baseConfidenceFloor, 1-baseConfidenceDecay*float64(i)),
		})
	}

	return projection
}

// WhatIf re-derives a forecast over the same trend+average baseline with
// compound monthly adjustments and a steeper confidence decay floored at
// 30%. It never mutates the baseline forecast. Zero history yields an empty
// slice unconditionally.
func (e *projectionEngineImpl) WhatIf(txs []models.Transaction, forecastMonths int, scenario models.Scenario) []models.ProjectionPoint {
	historical := bucketByMonth(txs)
	if len(historical) == 0 {
		return []models.ProjectionPoint{}
	}

	incomes := make([]float64, len(historical))
	expenses := make([]float64, len(historical))
	for i, m := range historical {
		incomes[i] = m.Income
		expenses[i] = m.Expenses
	}
	incomeAvg := movingAverage(incomes, movingAvgWindow)
	expensesAvg := movingAverage(expenses, movingAvgWindow)
	incomeTrend := olsSlope(incomes)
	expensesTrend := olsSlope(expenses)

	lastMonth, err := time.Parse(utils.MonthLayout, historical[len(historical)-1].Month)
	if err != nil {
		return []models.ProjectionPoint{}
	}

	points := []models.ProjectionPoint{}
	for i := 1; i <= forecastMonths; i++ {
		growthFactor := math.Pow(1+scenario.IncomeGrowth, float64(i))
		reductionFactor := math.Pow(1+scenario.ExpenseReduction, float64(i))
		income := math.Max(0, (incomeAvg+incomeTrend*float64(i))*growthFactor)
		expense := math.Max(0, (expensesAvg+expensesTrend*float64(i))*reductionFactor)
		points = append(points, models.ProjectionPoint{
			Month:             lastMonth.AddDate(0, i, 0).Format(utils.MonthLayout),
			ProjectedIncome:   utils.RoundCurrency(income),
			ProjectedExpenses: utils.RoundCurrency(expense),
			ProjectedBalance:  utils.RoundCurrency(income - expense),
			Confidence:        math.Max(whatIfConfidenceFloor, 1-whatIfConfidenceDecay*float64(i)),
		})
	}
	return points
}

// bucketByMonth aggregates paid transactions into chronologically sorted
// monthly totals. Map order never reaches the output; months are sorted by
// explicit key before accumulation-sensitive use.
func bucketByMonth(txs []models.Transaction) []models.MonthlyAggregate {
	buckets := make(map[string]*models.MonthlyAggregate)
	for _, tx := range txs {
		if tx.Status != models.StatusPaid {
			continue
		}
		key := utils.MonthKey(tx.Date)
		agg, ok := buckets[key]
		if !ok {
			agg = &models.MonthlyAggregate{Month: key}
			buckets[key] = agg
		}
		switch tx.Type {
		case models.TypeIncome:
			agg.Income += tx.Amount
		case models.TypeExpense:
			agg.Expenses += tx.Amount
		}
		agg.TransactionCount++
	}

	months := make([]string, 0, len(buckets))
	for key := range buckets {
		months = append(months, key)
	}
	sort.Strings(months)

	aggregates := make([]models.MonthlyAggregate, 0, len(months))
	for _, key := range months {
		agg := buckets[key]
		agg.Income = utils.RoundCurrency(agg.Income)
		agg.Expenses = utils.RoundCurrency(agg.Expenses)
		agg.Balance = utils.RoundCurrency(agg.Income - agg.Expenses)
		aggregates = append(aggregates, *agg)
	}
	return aggregates
}

// movingAverage is the arithmetic mean over the last window values, or over
// the full series when it is shorter than the window.
func movingAverage(values []float64, window int) float64 {
	if len(values) == 0 {
		return 0
	}
	n := utils.MinInt(window, len(values))
	var sum float64
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}

// olsSlope is the ordinary least-squares slope of values against their
// index. Degenerate series (fewer than 2 points) yield 0.
func olsSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
