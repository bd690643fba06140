package constants

import "time"

// Ontario land transfer tax brackets (residential, single unit).
// Each bracket taxes the slice of price above its floor at the given rate.
type LTTBracket struct {
	Floor float64
	Rate  float64
}

var OntarioLTTBrackets = []LTTBracket{
	{Floor: 0, Rate: 0.005},
	{Floor: 55_000, Rate: 0.010},
	{Floor: 250_000, Rate: 0.015},
	{Floor: 400_000, Rate: 0.020},
	{Floor: 2_000_000, Rate: 0.025},
}

// Toronto's municipal land transfer tax mirrors the provincial brackets
// and applies on top of them for projects inside the city.
var TorontoLTTBrackets = []LTTBracket{
	{Floor: 0, Rate: 0.005},
	{Floor: 55_000, Rate: 0.010},
	{Floor: 250_000, Rate: 0.015},
	{Floor: 400_000, Rate: 0.020},
	{Floor: 2_000_000, Rate: 0.025},
}

// Tarion warranty enrolment fee schedule: a flat fee per sale-price band.
// Prices at or below Ceiling pay Fee; the last entry covers everything above.
type TarionBand struct {
	Ceiling float64
	Fee     float64
}

var TarionFeeBands = []TarionBand{
	{Ceiling: 100_000, Fee: 385},
	{Ceiling: 150_000, Fee: 440},
	{Ceiling: 200_000, Fee: 495},
	{Ceiling: 250_000, Fee: 550},
	{Ceiling: 300_000, Fee: 605},
	{Ceiling: 350_000, Fee: 660},
	{Ceiling: 400_000, Fee: 715},
	{Ceiling: 450_000, Fee: 770},
	{Ceiling: 500_000, Fee: 825},
	{Ceiling: 550_000, Fee: 880},
	{Ceiling: 600_000, Fee: 935},
	{Ceiling: 650_000, Fee: 990},
	{Ceiling: 700_000, Fee: 1_045},
	{Ceiling: 750_000, Fee: 1_100},
	{Ceiling: 800_000, Fee: 1_155},
	{Ceiling: 850_000, Fee: 1_210},
	{Ceiling: 900_000, Fee: 1_265},
	{Ceiling: 950_000, Fee: 1_320},
	{Ceiling: 1_000_000, Fee: 1_375},
}

// TarionFeeCap applies to sale prices above the last band ceiling.
const TarionFeeCap = 1_430

// Recommendation threshold defaults. Shortfall percentage bands, tunable
// via env and optionally LaunchDarkly at runtime.
const (
	DefaultShortfallLowPct  = 10.0
	DefaultShortfallMidPct  = 20.0
	DefaultShortfallHighPct = 35.0

	// A closing inside this many Ontario business days counts as "near"
	// for the default-tier rules.
	DefaultClosingSoonBusinessDays = 20
)

// Scheduling
const (
	NightlyRefreshCronSpec = "0 7 * * *" // 07:00 UTC, before Toronto business hours
	RefreshJobTimeout      = 30 * time.Minute
	BusinessTimezone       = "America/Toronto"
)

// Email subjects and senders
const (
	EmailSubjectRecalcComplete = "Statement of Adjustments Updated"
	EmailSubjectRecalcFailed   = "URGENT: Closing Recalculation Failed for Unit %s"
	EmailSubjectHighRiskUnit   = "High Risk Closing Flagged for Unit %s"
	OperationsTeamEmail        = "closings@clearclose.ca"
	OperationsTeamName         = "ClearClose Operations"
)
