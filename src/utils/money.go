package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RoundCurrency rounds a monetary value to the currency's minor unit (2 dp).
// Rounding always happens at the leaf amounts, before summation.
func RoundCurrency(value float64) float64 {
	f, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return f
}

// PercentOf returns base × pct/100, rounded to the currency minor unit.
func PercentOf(base float64, pct float64) float64 {
	f, _ := decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(pct)).
		Div(hundred).
		Round(2).
		Float64()
	return f
}

// ShareOf returns 100 × part/whole rounded to 2 dp, or 0 when whole is 0.
// Guards every ratio the analyzers report so they never emit NaN/Inf.
func ShareOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	f, _ := decimal.NewFromFloat(part).
		Mul(hundred).
		Div(decimal.NewFromFloat(whole)).
		Round(2).
		Float64()
	return f
}

// ClampPct clamps a percentage into [0,100]. Override values are clamped
// once at the normalization boundary; nothing downstream re-validates.
func ClampPct(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
