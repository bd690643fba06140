package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/ca"
)

// create once at init
var ontarioCal = cal.NewBusinessCalendar()

func init() {
	ontarioCal.AddHoliday(
		ca.NewYear,
		ca.GoodFriday,
		ca.VictoriaDay,
		ca.CanadaDay,
		ca.CivicDay,
		ca.LabourDay,
		ca.ChristmasDay,
		ca.BoxingDay,
	)
}

// BusinessDaysUntil counts Ontario business days from `from` (exclusive)
// to `to` (inclusive). Returns 0 when `to` is not after `from`.
func BusinessDaysUntil(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	days := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if ontarioCal.IsWorkday(d) {
			days++
		}
	}
	return days
}
