package models

import "github.com/shopspring/decimal"

// MinorUnitExponent is the number of decimal places between major and minor units.
const MinorUnitExponent = 2

// FormatMinor renders an amount held in minor units as a fixed two-place major-unit string.
func FormatMinor(amount int64) string {
	return decimal.New(amount, -MinorUnitExponent).StringFixed(MinorUnitExponent)
}
