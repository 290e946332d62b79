// src/models/period.go
package models

// PeriodPreset names a supported date-window preset.
type PeriodPreset string

const (
	PresetLast7Days   PeriodPreset = "last7days"
	PresetLast30Days  PeriodPreset = "last30days"
	PresetThisMonth   PeriodPreset = "thisMonth"
	PresetLastMonth   PeriodPreset = "lastMonth"
	PresetThisQuarter PeriodPreset = "thisQuarter"
	PresetLastQuarter PeriodPreset = "lastQuarter"
	PresetThisYear    PeriodPreset = "thisYear"
	PresetYearToDate  PeriodPreset = "yearToDate"
	PresetAllTime     PeriodPreset = "allTime"
	PresetCustom      PeriodPreset = "custom"
)

// ComparisonMode selects how a comparison window is derived from a range.
type ComparisonMode string

const (
	ComparePrevious ComparisonMode = "previous"
	CompareYearAgo  ComparisonMode = "yearAgo"
)

// PeriodRange is an inclusive calendar-date window, YYYY-MM-DD bounds.
type PeriodRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
