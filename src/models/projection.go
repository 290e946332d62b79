// src/models/projection.go
package models

// MonthlyAggregate is one calendar month of paid activity. Months without
// transactions are absent, not zero-filled.
type MonthlyAggregate struct {
	Month            string  `json:"month"` // YYYY-MM
	Income           float64 `json:"income"`
	Expenses         float64 `json:"expenses"`
	Balance          float64 `json:"balance"`
	TransactionCount int     `json:"transaction_count"`
}

// ProjectionPoint is one forecast month with its confidence in [0,1].
type ProjectionPoint struct {
	Month             string  `json:"month"`
	ProjectedIncome   float64 `json:"projected_income"`
	ProjectedExpenses float64 `json:"projected_expenses"`
	ProjectedBalance  float64 `json:"projected_balance"`
	Confidence        float64 `json:"confidence"`
}

// Scenario parameterizes a what-if forecast. Values are monthly fractions:
// IncomeGrowth 0.05 compounds income 5% per month; a negative
// ExpenseReduction shrinks expenses.
type Scenario struct {
	IncomeGrowth     float64 `json:"income_growth"`
	ExpenseReduction float64 `json:"expense_reduction"`
}

// Projection is the historical monthly series plus the forward forecast.
type Projection struct {
	Historical        []MonthlyAggregate `json:"historical"`
	Forecast          []ProjectionPoint  `json:"forecast"`
	IncomeTrend       float64            `json:"income_trend"`
	ExpensesTrend     float64            `json:"expenses_trend"`
	IncomeMovingAvg   float64            `json:"income_moving_avg"`
	ExpensesMovingAvg float64            `json:"expenses_moving_avg"`
	WhatIf            []ProjectionPoint  `json:"what_if,omitempty"`
}
