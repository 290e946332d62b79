package processors

import (
	"reflect"
	"testing"

	"github.com/username/tourledger/src/models"
)

func testAgencies() models.AgencyDirectory {
	return models.AgencyDirectory{
		"mgmt-1": {ID: "mgmt-1", Name: "Mgmt", Slot: models.SlotManagement, DefaultPct: 15},
		"book-1": {ID: "book-1", Name: "Apex Booking", Slot: models.SlotBooking, DefaultPct: 10},
	}
}

func newTestNormalizer(rates map[string]float64) TransactionNormalizer {
	converter := NewCurrencyConverter(&stubRateSource{rates: rates})
	return NewTransactionNormalizer(converter, NewCommissionResolver(), "EUR", testAgencies())
}

func TestNormalize_FullDecomposition(t *testing.T) {
	normalizer := newTestNormalizer(nil)

	record := models.ShowRecord{
		ID:                    "show-1",
		Date:                  "2026-06-15",
		City:                  "Madrid",
		Country:               "Spain",
		Fee:                   10000,
		FeeCurrency:           "EUR",
		Status:                "paid",
		VATPct:                21,
		WHTPct:                15,
		ManagementAgencyID:    "mgmt-1",
		ManagementPctOverride: pctPtr(10),
	}

	txs, err := normalizer.Normalize(record)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("Normalize() produced %d transactions, want 1", len(txs))
	}

	tx := txs[0]
	if tx.Type != models.TypeIncome {
		t.Errorf("transaction type = %s, want income", tx.Type)
	}
	if tx.Status != models.StatusPaid {
		t.Errorf("transaction status = %s, want paid", tx.Status)
	}
	detail := tx.IncomeDetail
	if detail == nil {
		t.Fatal("income transaction has no IncomeDetail")
	}
	if detail.GrossFee != 10000 {
		t.Errorf("gross fee = %v, want 10000", detail.GrossFee)
	}
	if detail.VAT == nil || detail.VAT.Amount != 2100 {
		t.Errorf("VAT = %+v, want amount 2100", detail.VAT)
	}
	if detail.InvoiceTotal != 12100 {
		t.Errorf("invoice total = %v, want 12100", detail.InvoiceTotal)
	}
	wantCommissions := []models.Commission{{Name: "Mgmt", Percentage: 10, Amount: 1000}}
	if !reflect.DeepEqual(detail.Commissions, wantCommissions) {
		t.Errorf("commissions = %+v, want %+v", detail.Commissions, wantCommissions)
	}
	if detail.WithholdingTax == nil || detail.WithholdingTax.Amount != 1500 {
		t.Errorf("withholding tax = %+v, want amount 1500", detail.WithholdingTax)
	}
	if detail.WithholdingTax != nil && detail.WithholdingTax.Country != "Spain" {
		t.Errorf("withholding tax country = %q, want Spain", detail.WithholdingTax.Country)
	}
	if detail.NetIncome != 7500 {
		t.Errorf("net income = %v, want 7500", detail.NetIncome)
	}
	if tx.Amount != 7500 {
		t.Errorf("transaction amount = %v, want net income 7500", tx.Amount)
	}
	if tx.FXUnresolved {
		t.Error("FXUnresolved set on a base-currency record")
	}
}

func TestNormalize_CostLinesBecomeExpenses(t *testing.T) {
	normalizer := newTestNormalizer(nil)

	record := models.ShowRecord{
		ID:          "show-2",
		Date:        "2026-06-20",
		City:        "Lisbon",
		Country:     "Portugal",
		Fee:         5000,
		FeeCurrency: "EUR",
		Status:      "paid",
		Costs: []models.CostLine{
			{Type: "travel", Description: "Flights", Amount: 840.5},
			{Type: "production", Category: "crew", Description: "Sound engineer", Amount: 600},
		},
	}

	txs, err := normalizer.Normalize(record)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("Normalize() produced %d transactions, want 3", len(txs))
	}

	expenses := txs[1:]
	if expenses[0].Type != models.TypeExpense || expenses[1].Type != models.TypeExpense {
		t.Fatal("cost lines did not normalize to expense transactions")
	}
	// Cost lines carry their amounts untouched: treated as already-base,
	// never FX-converted.
	if expenses[0].Amount != 840.5 {
		t.Errorf("expense amount = %v, want 840.5", expenses[0].Amount)
	}
	if expenses[0].Category != "travel" {
		t.Errorf("expense category defaulted to %q, want cost type travel", expenses[0].Category)
	}
	if expenses[1].Category != "crew" {
		t.Errorf("expense category = %q, want crew", expenses[1].Category)
	}
	if expenses[1].CostType != "production" {
		t.Errorf("expense cost type = %q, want production", expenses[1].CostType)
	}
	for _, e := range expenses {
		if e.IncomeDetail != nil {
			t.Error("expense transaction carries IncomeDetail")
		}
	}
}

func TestNormalize_FXConversionApplied(t *testing.T) {
	normalizer := newTestNormalizer(map[string]float64{"USD|EUR": 0.9})

	record := models.ShowRecord{
		ID: "show-3", Date: "2026-07-01", City: "Austin", Country: "USA",
		Fee: 10000, FeeCurrency: "USD", Status: "paid",
	}

	txs, err := normalizer.Normalize(record)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	detail := txs[0].IncomeDetail
	if detail.GrossFee != 9000 {
		t.Errorf("gross fee = %v, want 9000 after conversion", detail.GrossFee)
	}
	if detail.Currency != "USD" {
		t.Errorf("detail currency = %q, want original USD", detail.Currency)
	}
	if txs[0].FXUnresolved {
		t.Error("FXUnresolved set although the rate resolved")
	}
}

func TestNormalize_MissingFXDegradesExplicitly(t *testing.T) {
	normalizer := newTestNormalizer(nil) // no rates at all

	record := models.ShowRecord{
		ID: "show-4", Date: "2026-07-02", City: "Austin", Country: "USA",
		Fee: 10000, FeeCurrency: "USD", Status: "paid",
	}

	txs, err := normalizer.Normalize(record)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if !txs[0].FXUnresolved {
		t.Error("FXUnresolved not set for a missing rate")
	}
	if txs[0].IncomeDetail.GrossFee != 10000 {
		t.Errorf("gross fee = %v, want 10000 carried as already-base", txs[0].IncomeDetail.GrossFee)
	}
}

func TestNormalize_UnknownAgencyOmitted(t *testing.T) {
	normalizer := newTestNormalizer(nil)

	record := models.ShowRecord{
		ID: "show-5", Date: "2026-07-03", City: "Berlin", Country: "Germany",
		Fee: 5000, FeeCurrency: "EUR", Status: "paid",
		ManagementAgencyID: "missing-agency",
	}

	txs, err := normalizer.Normalize(record)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if len(txs[0].IncomeDetail.Commissions) != 0 {
		t.Errorf("commissions = %+v, want none for an unknown agency", txs[0].IncomeDetail.Commissions)
	}
	if txs[0].IncomeDetail.NetIncome != 5000 {
		t.Errorf("net income = %v, want 5000", txs[0].IncomeDetail.NetIncome)
	}
}

func TestNormalize_InvalidDateRejected(t *testing.T) {
	normalizer := newTestNormalizer(nil)

	_, err := normalizer.Normalize(models.ShowRecord{ID: "bad", Date: "15-06-2026", Fee: 100, FeeCurrency: "EUR"})
	if err == nil {
		t.Fatal("Normalize() accepted a malformed date")
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	normalizer := newTestNormalizer(nil)
	record := models.ShowRecord{
		ID: "show-6", Date: "2026-07-04", City: "Paris", Country: "France",
		Fee: 7000, FeeCurrency: "EUR", Status: "pending",
		BookingAgencyID: "book-1",
		Costs:           []models.CostLine{{Type: "travel", Description: "Train", Amount: 120}},
	}

	first, err := normalizer.Normalize(record)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	second, err := normalizer.Normalize(record)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated normalization of the same record differs")
	}
	if first[0].ID == "" || first[0].ID == first[1].ID {
		t.Error("transaction IDs are empty or collide within one record")
	}
}
