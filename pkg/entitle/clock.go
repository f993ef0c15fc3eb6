package entitle

import "time"

// Default fallback periods used when the provider's true period end cannot
// be determined.
const (
	// FallbackDays is the safe paid-until default for webhook events and
	// monthly receipts.
	FallbackDays = 30

	// YearlyDays is the validity window granted for yearly receipts.
	YearlyDays = 365
)

// DaysFromNow returns the current UTC time advanced by days.
func DaysFromNow(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days)
}

// ISO formats t as an ISO-8601 / RFC3339 timestamp in UTC.
func ISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
