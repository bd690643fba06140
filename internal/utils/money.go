package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	Hundred     = decimal.NewFromInt(100)
	DaysPerYear = decimal.NewFromInt(365)
)

// Round2 applies the repository-wide money rounding rule: two decimal
// places, half away from zero, at line-item boundaries only.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DaysBetween returns whole calendar days from start to end, truncating
// both to midnight UTC first. Negative spans collapse to zero.
func DaysBetween(start, end time.Time) int {
	s := start.UTC().Truncate(24 * time.Hour)
	e := end.UTC().Truncate(24 * time.Hour)
	days := int(e.Sub(s).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// SimpleInterest accrues amount × (annualRate/100) × (days/365) without
// rounding; callers round once after summing periods.
func SimpleInterest(amount, annualRate decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return amount.
		Mul(annualRate).
		Div(Hundred).
		Mul(decimal.NewFromInt(int64(days))).
		Div(DaysPerYear)
}

// Ptr returns a pointer to v; handy for optional DTO fields.
func Ptr[T any](v T) *T { return &v }
