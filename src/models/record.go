// src/models/record.go
package models

// AgencySlot distinguishes the two commission slots a show can carry.
type AgencySlot string

const (
	SlotManagement AgencySlot = "management"
	SlotBooking    AgencySlot = "booking"
)

// Agency is a configured commission payee with its default percentage.
type Agency struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Slot       AgencySlot `json:"slot"`
	DefaultPct float64    `json:"default_pct"`
}

// AgencyDirectory holds the configured agencies keyed by ID. Callers own
// this configuration and pass it down; nothing in the engine keeps it as
// ambient state.
type AgencyDirectory map[string]Agency

// Lookup returns the agency for an ID, or nil when the ID is empty or
// unknown. An absent slot contributes no commission entry.
func (d AgencyDirectory) Lookup(id string) *Agency {
	if id == "" {
		return nil
	}
	if a, ok := d[id]; ok {
		return &a
	}
	return nil
}

// CostLine is one expense attached to a show record. Amounts are assumed to
// already be in the base currency; cost lines are never FX-converted.
type CostLine struct {
	Type        string  `json:"type"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// ShowRecord is a raw booking/show record as supplied by the caller, before
// normalization into canonical transactions.
type ShowRecord struct {
	ID          string `json:"id"`
	Date        string `json:"date"` // YYYY-MM-DD
	Description string `json:"description,omitempty"`
	City        string `json:"city"`
	Country     string `json:"country"`

	Fee         float64 `json:"fee"`
	FeeCurrency string  `json:"fee_currency"`
	Status      string  `json:"status"` // "paid" or "pending"

	VATPct float64 `json:"vat_pct,omitempty"`
	WHTPct float64 `json:"wht_pct,omitempty"`

	ManagementAgencyID string `json:"management_agency_id,omitempty"`
	BookingAgencyID    string `json:"booking_agency_id,omitempty"`

	// Per-record percentage overrides. nil means "use the agency default";
	// the distinction is resolved once at the commission boundary.
	ManagementPctOverride *float64 `json:"management_pct_override,omitempty"`
	BookingPctOverride    *float64 `json:"booking_pct_override,omitempty"`

	Costs []CostLine `json:"costs,omitempty"`
}

// AgencySelection carries the resolved agency for each slot of one record.
// A nil slot means the record uses no agency there.
type AgencySelection struct {
	Management *Agency
	Booking    *Agency
}

// CommissionOverrides carries the per-record percentage overrides, already
// clamped to [0,100] by the normalization boundary.
type CommissionOverrides struct {
	ManagementPct *float64
	BookingPct    *float64
}
