// src/processors/transaction_processor.go
package processors

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/username/tourledger/src/logger"
	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/utils"
)

type transactionNormalizerImpl struct {
	converter    CurrencyConverter
	resolver     CommissionResolver
	baseCurrency string
	agencies     models.AgencyDirectory
}

// NewTransactionNormalizer creates a normalizer that decomposes raw show
// records into canonical transactions in the given base currency.
func NewTransactionNormalizer(converter CurrencyConverter, resolver CommissionResolver, baseCurrency string, agencies models.AgencyDirectory) TransactionNormalizer {
	return &transactionNormalizerImpl{
		converter:    converter,
		resolver:     resolver,
		baseCurrency: baseCurrency,
		agencies:     agencies,
	}
}

// Normalize emits one income transaction carrying the full fee decomposition
// (gross fee → VAT → commissions → WHT → net) plus one expense transaction
// per cost line. Cost lines are assumed to already be in the base currency.
func (n *transactionNormalizerImpl) Normalize(record models.ShowRecord) ([]models.Transaction, error) {
	date, err := utils.ParseDate(record.Date)
	if err != nil {
		return nil, fmt.Errorf("normalizing record %q: %w", record.ID, err)
	}

	status := models.StatusPending
	if record.Status == string(models.StatusPaid) {
		status = models.StatusPaid
	}

	currency := record.FeeCurrency
	if currency == "" {
		currency = n.baseCurrency
	}

	grossFee := record.Fee
	fxUnresolved := false
	if currency != n.baseCurrency {
		conv, convErr := n.converter.Convert(record.Fee, date, currency, n.baseCurrency)
		switch {
		case convErr == nil:
			grossFee = conv.Value
		case errors.Is(convErr, ErrRateUnavailable):
			// Degraded mode: the fee is carried as already-base and the
			// transaction is flagged so consumers can tell this apart from
			// a genuine 1:1 rate.
			fxUnresolved = true
			logger.L.Warn("Normalizing with unresolved FX rate",
				"recordID", record.ID, "currency", currency, "date", record.Date)
		default:
			return nil, fmt.Errorf("normalizing record %q: %w", record.ID, convErr)
		}
	}
	grossFee = utils.RoundCurrency(grossFee)

	detail := &models.IncomeDetail{
		GrossFee: grossFee,
		Currency: currency,
	}

	if record.VATPct > 0 {
		vatPct := utils.ClampPct(record.VATPct)
		detail.VAT = &models.VAT{
			Percentage: vatPct,
			Amount:     utils.PercentOf(grossFee, vatPct),
		}
	}
	detail.InvoiceTotal = grossFee
	if detail.VAT != nil {
		detail.InvoiceTotal = grossFee + detail.VAT.Amount
	}

	detail.Commissions = n.resolver.Resolve(grossFee, n.selectAgencies(record), clampOverrides(record))

	if record.WHTPct > 0 {
		whtPct := utils.ClampPct(record.WHTPct)
		detail.WithholdingTax = &models.WithholdingTax{
			Percentage: whtPct,
			Amount:     utils.PercentOf(grossFee, whtPct),
			Country:    record.Country,
		}
	}

	net := grossFee
	for _, c := range detail.Commissions {
		net -= c.Amount
	}
	if detail.WithholdingTax != nil {
		net -= detail.WithholdingTax.Amount
	}
	detail.NetIncome = utils.RoundCurrency(net)

	description := record.Description
	if description == "" {
		description = fmt.Sprintf("%s, %s", record.City, record.Country)
	}

	income := models.Transaction{
		ID:           generateTransactionID(record, "fee", 0),
		Date:         date,
		Description:  description,
		Category:     models.CategoryShow,
		Type:         models.TypeIncome,
		Amount:       detail.NetIncome,
		Status:       status,
		FXUnresolved: fxUnresolved,
		IncomeDetail: detail,
		SourceID:     record.ID,
	}

	transactions := []models.Transaction{income}
	for i, cost := range record.Costs {
		category := cost.Category
		if category == "" {
			category = cost.Type
		}
		transactions = append(transactions, models.Transaction{
			ID:          generateTransactionID(record, "cost", i),
			Date:        date,
			Description: cost.Description,
			Category:    category,
			CostType:    cost.Type,
			Type:        models.TypeExpense,
			Amount:      utils.RoundCurrency(cost.Amount),
			Status:      status,
			SourceID:    record.ID,
		})
	}

	return transactions, nil
}

// selectAgencies maps the record's agency IDs to configured agencies.
// Unknown IDs are logged and treated as absent slots.
func (n *transactionNormalizerImpl) selectAgencies(record models.ShowRecord) models.AgencySelection {
	selection := models.AgencySelection{
		Management: n.agencies.Lookup(record.ManagementAgencyID),
		Booking:    n.agencies.Lookup(record.BookingAgencyID),
	}
	if record.ManagementAgencyID != "" && selection.Management == nil {
		logger.L.Warn("Unknown management agency on record",
			"recordID", record.ID, "agencyID", record.ManagementAgencyID)
	}
	if record.BookingAgencyID != "" && selection.Booking == nil {
		logger.L.Warn("Unknown booking agency on record",
			"recordID", record.ID, "agencyID", record.BookingAgencyID)
	}
	return selection
}

// clampOverrides clamps override percentages into [0,100] once, at this
// boundary. The resolver itself does not re-validate.
func clampOverrides(record models.ShowRecord) models.CommissionOverrides {
	var overrides models.CommissionOverrides
	if record.ManagementPctOverride != nil {
		pct := utils.ClampPct(*record.ManagementPctOverride)
		overrides.ManagementPct = &pct
	}
	if record.BookingPctOverride != nil {
		pct := utils.ClampPct(*record.BookingPctOverride)
		overrides.BookingPct = &pct
	}
	return overrides
}

// generateTransactionID derives a deterministic ID from the source fields,
// so repeated normalization of the same record yields identical output.
func generateTransactionID(record models.ShowRecord, kind string, index int) string {
	input := fmt.Sprintf("%s|%s|%s|%d|%f|%s", record.ID, record.Date, kind, index, record.Fee, record.FeeCurrency)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}
