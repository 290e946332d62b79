// src/processors/profitability_processor.go
package processors

import (
	"math"
	"sort"

	"github.com/username/tourledger/src/logger"
	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/utils"
)

type profitabilityAnalyzerImpl struct{}

// NewProfitabilityAnalyzer creates a new instance of ProfitabilityAnalyzer.
func NewProfitabilityAnalyzer() ProfitabilityAnalyzer {
	return &profitabilityAnalyzerImpl{}
}

// Analyze aggregates paid transactions into the period KPI totals, the
// commission breakdown by payee, the financial distribution, and the
// waterfall sequence. Empty input yields an all-zero analysis; every ratio
// is denominator-guarded so margins are never NaN.
func (a *profitabilityAnalyzerImpl) Analyze(txs []models.Transaction) models.ProfitabilityAnalysis {
	var analysis models.ProfitabilityAnalysis

	commissionTotals := make(map[string]*models.CommissionerSummary)
	expensesByCategory := make(map[string]*models.DistributionEntry)
	expensesByType := make(map[string]*models.DistributionEntry)
	var netIncomeBottomUp float64

	for _, tx := range txs {
		if tx.Status != models.StatusPaid {
			continue
		}

		switch tx.Type {
		case models.TypeIncome:
			detail := tx.IncomeDetail
			if detail == nil {
				continue
			}
			analysis.GrossIncome += detail.GrossFee
			netIncomeBottomUp += detail.NetIncome
			for _, c := range detail.Commissions {
				analysis.TotalCommissions += c.Amount
				entry, ok := commissionTotals[c.Name]
				if !ok {
					entry = &models.CommissionerSummary{Name: c.Name}
					commissionTotals[c.Name] = entry
				}
				entry.Total += c.Amount
				entry.Count++
			}
			if detail.WithholdingTax != nil {
				analysis.TotalWHT += detail.WithholdingTax.Amount
			}
		case models.TypeExpense:
			analysis.TotalExpenses += tx.Amount
			accumulateDistribution(expensesByCategory, tx.Category, tx.Amount)
			accumulateDistribution(expensesByType, tx.CostType, tx.Amount)
		}
	}

	analysis.NetIncome = utils.RoundCurrency(analysis.GrossIncome - analysis.TotalCommissions - analysis.TotalWHT)
	analysis.NetProfit = utils.RoundCurrency(analysis.NetIncome - analysis.TotalExpenses)
	analysis.GrossIncome = utils.RoundCurrency(analysis.GrossIncome)
	analysis.TotalCommissions = utils.RoundCurrency(analysis.TotalCommissions)
	analysis.TotalWHT = utils.RoundCurrency(analysis.TotalWHT)
	analysis.TotalExpenses = utils.RoundCurrency(analysis.TotalExpenses)

	// Cross-check: the top-down net income must match the sum of the
	// per-transaction decompositions.
	if math.Abs(analysis.NetIncome-utils.RoundCurrency(netIncomeBottomUp)) > 0.01 && logger.L != nil {
		logger.L.Debug("Net income cross-check divergence",
			"topDown", analysis.NetIncome, "bottomUp", utils.RoundCurrency(netIncomeBottomUp))
	}

	analysis.GrossMargin = utils.ShareOf(analysis.NetProfit, analysis.GrossIncome)
	analysis.NetMargin = utils.ShareOf(analysis.NetProfit, analysis.NetIncome)

	analysis.CommissionsBreakdown = buildCommissionsBreakdown(commissionTotals, analysis.TotalCommissions)
	analysis.FinancialDistribution = models.FinancialDistribution{
		Commissions:        commissionDistribution(analysis.CommissionsBreakdown, analysis.GrossIncome),
		ExpensesByCategory: sortDistribution(expensesByCategory, analysis.GrossIncome),
		ExpensesByType:     sortDistribution(expensesByType, analysis.GrossIncome),
	}
	analysis.Waterfall = buildWaterfall(analysis)

	return analysis
}

// PendingSummary totals the pending-status transactions the analysis
// excludes, so callers can surface them as a separate KPI.
func (a *profitabilityAnalyzerImpl) PendingSummary(txs []models.Transaction) models.PendingSummary {
	var summary models.PendingSummary
	for _, tx := range txs {
		if tx.Status != models.StatusPending {
			continue
		}
		summary.Count++
		switch tx.Type {
		case models.TypeIncome:
			summary.PendingIncome += tx.Amount
		case models.TypeExpense:
			summary.PendingExpenses += tx.Amount
		}
	}
	summary.PendingIncome = utils.RoundCurrency(summary.PendingIncome)
	summary.PendingExpenses = utils.RoundCurrency(summary.PendingExpenses)
	return summary
}

func accumulateDistribution(groups map[string]*models.DistributionEntry, key string, amount float64) {
	if key == "" {
		key = "uncategorized"
	}
	entry, ok := groups[key]
	if !ok {
		entry = &models.DistributionEntry{Key: key}
		groups[key] = entry
	}
	entry.Amount += amount
	entry.Count++
}

// buildCommissionsBreakdown sorts payees by total descending; name ascending
// breaks ties so repeated runs order identically.
func buildCommissionsBreakdown(totals map[string]*models.CommissionerSummary, totalCommissions float64) models.CommissionsBreakdown {
	breakdown := models.CommissionsBreakdown{ByCommissioner: []models.CommissionerSummary{}}
	for _, entry := range totals {
		breakdown.ByCommissioner = append(breakdown.ByCommissioner, models.CommissionerSummary{
			Name:       entry.Name,
			Total:      utils.RoundCurrency(entry.Total),
			Percentage: utils.ShareOf(entry.Total, totalCommissions),
			Count:      entry.Count,
		})
	}
	sort.Slice(breakdown.ByCommissioner, func(i, j int) bool {
		if breakdown.ByCommissioner[i].Total != breakdown.ByCommissioner[j].Total {
			return breakdown.ByCommissioner[i].Total > breakdown.ByCommissioner[j].Total
		}
		return breakdown.ByCommissioner[i].Name < breakdown.ByCommissioner[j].Name
	})
	return breakdown
}

func commissionDistribution(breakdown models.CommissionsBreakdown, grossIncome float64) []models.DistributionEntry {
	entries := make([]models.DistributionEntry, 0, len(breakdown.ByCommissioner))
	for _, c := range breakdown.ByCommissioner {
		entries = append(entries, models.DistributionEntry{
			Key:        c.Name,
			Amount:     c.Total,
			Percentage: utils.ShareOf(c.Total, grossIncome),
			Count:      c.Count,
		})
	}
	return entries
}

func sortDistribution(groups map[string]*models.DistributionEntry, grossIncome float64) []models.DistributionEntry {
	entries := make([]models.DistributionEntry, 0, len(groups))
	for _, entry := range groups {
		entries = append(entries, models.DistributionEntry{
			Key:        entry.Key,
			Amount:     utils.RoundCurrency(entry.Amount),
			Percentage: utils.ShareOf(entry.Amount, grossIncome),
			Count:      entry.Count,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// buildWaterfall produces the ordered gross-income → net-profit sequence.
// Subtotal entries carry the running total as their amount, not a delta.
func buildWaterfall(a models.ProfitabilityAnalysis) []models.WaterfallEntry {
	running := a.GrossIncome
	entries := []models.WaterfallEntry{
		{Label: "Gross Income", Amount: a.GrossIncome, EntryType: models.WaterfallIncome, RunningTotal: running},
	}

	running = utils.RoundCurrency(running - a.TotalCommissions)
	entries = append(entries, models.WaterfallEntry{
		Label: "Commissions", Amount: a.TotalCommissions, EntryType: models.WaterfallDeduction, RunningTotal: running,
	})

	running = utils.RoundCurrency(running - a.TotalWHT)
	entries = append(entries, models.WaterfallEntry{
		Label: "Withholding Tax", Amount: a.TotalWHT, EntryType: models.WaterfallDeduction, RunningTotal: running,
	})

	entries = append(entries, models.WaterfallEntry{
		Label: "Net Income", Amount: a.NetIncome, EntryType: models.WaterfallSubtotal, RunningTotal: a.NetIncome,
	})

	running = utils.RoundCurrency(a.NetIncome - a.TotalExpenses)
	entries = append(entries, models.WaterfallEntry{
		Label: "Expenses", Amount: a.TotalExpenses, EntryType: models.WaterfallDeduction, RunningTotal: running,
	})

	entries = append(entries, models.WaterfallEntry{
		Label: "Net Profit", Amount: a.NetProfit, EntryType: models.WaterfallSubtotal, RunningTotal: a.NetProfit,
	})

	return entries
}
