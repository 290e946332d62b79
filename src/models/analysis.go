// src/models/analysis.go
package models

// CommissionerSummary aggregates all commissions paid to one payee.
// Percentage is the payee's share of total commissions.
type CommissionerSummary struct {
	Name       string  `json:"name"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

// CommissionsBreakdown groups commission totals by payee, sorted by total
// descending.
type CommissionsBreakdown struct {
	ByCommissioner []CommissionerSummary `json:"by_commissioner"`
}

// DistributionEntry is one grouped slice of the financial distribution.
// Percentage is relative to gross income.
type DistributionEntry struct {
	Key        string  `json:"key"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

// FinancialDistribution shows where the gross income went: commissions plus
// expenses grouped by category and by cost-line type. All percentages use
// gross income as denominator.
type FinancialDistribution struct {
	Commissions        []DistributionEntry `json:"commissions"`
	ExpensesByCategory []DistributionEntry `json:"expenses_by_category"`
	ExpensesByType     []DistributionEntry `json:"expenses_by_type"`
}

// Waterfall entry kinds. Subtotal entries carry the running total as their
// amount, not a delta.
type WaterfallEntryType string

const (
	WaterfallIncome    WaterfallEntryType = "income"
	WaterfallDeduction WaterfallEntryType = "deduction"
	WaterfallSubtotal  WaterfallEntryType = "subtotal"
)

// WaterfallEntry is one step in the gross-income → net-profit sequence.
type WaterfallEntry struct {
	Label        string             `json:"label"`
	Amount       float64            `json:"amount"`
	EntryType    WaterfallEntryType `json:"entry_type"`
	RunningTotal float64            `json:"running_total"`
}

// ProfitabilityAnalysis is the KPI result for one period window. Only paid
// transactions contribute; margins are zero-guarded, never NaN.
type ProfitabilityAnalysis struct {
	GrossIncome      float64 `json:"gross_income"`
	TotalCommissions float64 `json:"total_commissions"`
	TotalWHT         float64 `json:"total_wht"`
	NetIncome        float64 `json:"net_income"`
	TotalExpenses    float64 `json:"total_expenses"`
	NetProfit        float64 `json:"net_profit"`
	GrossMargin      float64 `json:"gross_margin"`
	NetMargin        float64 `json:"net_margin"`

	CommissionsBreakdown  CommissionsBreakdown  `json:"commissions_breakdown"`
	FinancialDistribution FinancialDistribution `json:"financial_distribution"`
	Waterfall             []WaterfallEntry      `json:"waterfall"`
}

// PendingSummary surfaces pending-status amounts excluded from the analysis.
type PendingSummary struct {
	PendingIncome   float64 `json:"pending_income"`
	PendingExpenses float64 `json:"pending_expenses"`
	Count           int     `json:"count"`
}

// AnalysisDeltas are current-minus-previous headline movements.
type AnalysisDeltas struct {
	GrossIncome   float64 `json:"gross_income"`
	NetIncome     float64 `json:"net_income"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
}

// ComparisonAnalysis bundles the current window's analysis with an optional
// comparison window and the deltas between them.
type ComparisonAnalysis struct {
	Range         PeriodRange            `json:"range"`
	Current       ProfitabilityAnalysis  `json:"current"`
	Pending       PendingSummary         `json:"pending"`
	Previous      *ProfitabilityAnalysis `json:"previous,omitempty"`
	PreviousRange *PeriodRange           `json:"previous_range,omitempty"`
	Deltas        *AnalysisDeltas        `json:"deltas,omitempty"`
}
