package processors

import (
	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/utils"
)

type commissionResolverImpl struct{}

// NewCommissionResolver creates a new instance of CommissionResolver.
func NewCommissionResolver() CommissionResolver {
	return &commissionResolverImpl{}
}

// Resolve computes one commission entry per present agency slot. The
// effective percentage is the override when set, else the agency default;
// the amount is rounded to the currency minor unit at this leaf. Management
// and booking commissions are independent and additive. Percentages are
// assumed pre-clamped to [0,100] by the caller.
func (r *commissionResolverImpl) Resolve(feeInBase float64, agencies models.AgencySelection, overrides models.CommissionOverrides) []models.Commission {
	var commissions []models.Commission

	if a := agencies.Management; a != nil {
		pct := a.DefaultPct
		if overrides.ManagementPct != nil {
			pct = *overrides.ManagementPct
		}
		commissions = append(commissions, models.Commission{
			Name:       a.Name,
			Percentage: pct,
			Amount:     utils.PercentOf(feeInBase, pct),
		})
	}

	if a := agencies.Booking; a != nil {
		pct := a.DefaultPct
		if overrides.BookingPct != nil {
			pct = *overrides.BookingPct
		}
		commissions = append(commissions, models.Commission{
			Name:       a.Name,
			Percentage: pct,
			Amount:     utils.PercentOf(feeInBase, pct),
		})
	}

	return commissions
}
