// src/models/transaction.go
package models

import "time"

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type TransactionStatus string

const (
	StatusPaid    TransactionStatus = "paid"
	StatusPending TransactionStatus = "pending"
)

// CategoryShow tags the income transaction produced for a show record.
const CategoryShow = "show"

// Commission is one agency's cut of a gross fee. Percentage is the effective
// percentage after override resolution; Amount was computed from exactly that
// percentage and rounded to the currency minor unit.
type Commission struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

// WithholdingTax is tax retained at source, as a percentage of the gross fee.
type WithholdingTax struct {
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
	Country    string  `json:"country,omitempty"`
}

// VAT is added on top of the fee for invoicing and never reduces net income.
type VAT struct {
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

// IncomeDetail is the full decomposition of one show fee:
// gross fee → VAT → commissions → WHT → net.
type IncomeDetail struct {
	GrossFee       float64         `json:"gross_fee"` // base currency
	VAT            *VAT            `json:"vat,omitempty"`
	InvoiceTotal   float64         `json:"invoice_total"` // gross fee + VAT
	Commissions    []Commission    `json:"commissions"`
	WithholdingTax *WithholdingTax `json:"withholding_tax,omitempty"`
	NetIncome      float64         `json:"net_income"` // gross − commissions − WHT; VAT excluded
	Currency       string          `json:"currency"`   // original fee currency
}

// Conversion is the result of a currency conversion: Value = amount × Rate.
type Conversion struct {
	Value float64 `json:"value"`
	Rate  float64 `json:"rate"`
}

// Transaction is the canonical, immutable representation every analysis
// consumes. For income the top-level Amount is the net settlement
// (post-commission, post-WHT); for expenses it is the full cost.
type Transaction struct {
	ID          string            `json:"id"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Type        TransactionType   `json:"type"`
	Amount      float64           `json:"amount"` // base currency
	Status      TransactionStatus `json:"status"`

	// CostType is the cost-line type tag, set on expense transactions only.
	CostType string `json:"cost_type,omitempty"`

	// FXUnresolved marks a gross fee that could not be converted and was
	// treated as already-base. Distinct from a genuine 1:1 rate.
	FXUnresolved bool `json:"fx_unresolved,omitempty"`

	IncomeDetail *IncomeDetail `json:"income_detail,omitempty"`
	SourceID     string        `json:"source_id,omitempty"`
}
