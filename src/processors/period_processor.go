// src/processors/period_processor.go
package processors

import (
	"fmt"
	"time"

	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/utils"
)

// allTimeStart is the fixed lower bound of the allTime preset; the upper
// bound is ten years past the reference date so scheduled future shows are
// included.
var allTimeStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

type periodWindowImpl struct{}

// NewPeriodWindow creates a new instance of PeriodWindow.
func NewPeriodWindow() PeriodWindow {
	return &periodWindowImpl{}
}

// ResolvePreset resolves a named preset against a reference date. All
// returned ranges are inclusive on both ends.
func (p *periodWindowImpl) ResolvePreset(preset models.PeriodPreset, reference time.Time) (models.PeriodRange, error) {
	ref := truncateToDay(reference)

	switch preset {
	case models.PresetLast7Days:
		return makeRange(ref.AddDate(0, 0, -7), ref), nil
	case models.PresetLast30Days:
		return makeRange(ref.AddDate(0, 0, -30), ref), nil
	case models.PresetThisMonth:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		return makeRange(start, start.AddDate(0, 1, -1)), nil
	case models.PresetLastMonth:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, -1, 0)
		return makeRange(start, start.AddDate(0, 1, -1)), nil
	case models.PresetThisQuarter:
		start := quarterStart(ref)
		return makeRange(start, start.AddDate(0, 3, -1)), nil
	case models.PresetLastQuarter:
		start := quarterStart(ref).AddDate(0, -3, 0)
		return makeRange(start, start.AddDate(0, 3, -1)), nil
	case models.PresetThisYear:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
		return makeRange(start, time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, ref.Location())), nil
	case models.PresetYearToDate:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
		return makeRange(start, ref), nil
	case models.PresetAllTime:
		return makeRange(allTimeStart, ref.AddDate(10, 0, 0)), nil
	default:
		return models.PeriodRange{}, fmt.Errorf("unsupported period preset %q", preset)
	}
}

// CustomRange validates caller-supplied bounds. A start after the end is
// rejected, not silently swapped.
func (p *periodWindowImpl) CustomRange(startDate, endDate string) (models.PeriodRange, error) {
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return models.PeriodRange{}, fmt.Errorf("invalid custom range start: %w", err)
	}
	end, err := utils.ParseDate(endDate)
	if err != nil {
		return models.PeriodRange{}, fmt.Errorf("invalid custom range end: %w", err)
	}
	if start.After(end) {
		return models.PeriodRange{}, fmt.Errorf("invalid custom range: start %s is after end %s", startDate, endDate)
	}
	return makeRange(start, end), nil
}

// DeriveComparison derives the comparison window for a range. "previous"
// shifts the window back by its own length, ending the day before the
// current window starts; "yearAgo" shifts both bounds back one calendar
// year, preserving day-of-month.
func (p *periodWindowImpl) DeriveComparison(r models.PeriodRange, mode models.ComparisonMode) (models.PeriodRange, error) {
	start, end, err := rangeBounds(r)
	if err != nil {
		return models.PeriodRange{}, err
	}

	switch mode {
	case models.ComparePrevious:
		length := utils.DaysBetween(start, end)
		prevEnd := start.AddDate(0, 0, -1)
		prevStart := prevEnd.AddDate(0, 0, -(length - 1))
		return makeRange(prevStart, prevEnd), nil
	case models.CompareYearAgo:
		return makeRange(start.AddDate(-1, 0, 0), end.AddDate(-1, 0, 0)), nil
	default:
		return models.PeriodRange{}, fmt.Errorf("unsupported comparison mode %q", mode)
	}
}

// FilterByRange keeps the transactions dated within the inclusive range.
func (p *periodWindowImpl) FilterByRange(txs []models.Transaction, r models.PeriodRange) ([]models.Transaction, error) {
	start, end, err := rangeBounds(r)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		day := truncateToDay(tx.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered, nil
}

func makeRange(start, end time.Time) models.PeriodRange {
	return models.PeriodRange{
		StartDate: start.Format(utils.DateLayout),
		EndDate:   end.Format(utils.DateLayout),
	}
}

func rangeBounds(r models.PeriodRange) (time.Time, time.Time, error) {
	start, err := utils.ParseDate(r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range start: %w", err)
	}
	end, err := utils.ParseDate(r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range end: %w", err)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range: start %s is after end %s", r.StartDate, r.EndDate)
	}
	return start, end, nil
}

func quarterStart(ref time.Time) time.Time {
	startMonth := time.Month(((int(ref.Month())-1)/3)*3 + 1)
	return time.Date(ref.Year(), startMonth, 1, 0, 0, 0, 0, ref.Location())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
