package mining

import "time"

// Calendar-day policy: the platform day boundary is server-local midnight.
// Both the duplicate-claim gate and next-eligibility reporting use it.

// ClaimDay returns the calendar-day key for a manual claim timestamp.
func ClaimDay(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// StartOfNextDay returns the first instant a new manual claim becomes
// eligible after a claim at t.
func StartOfNextDay(t time.Time) time.Time {
	local := t.Local()
	year, month, day := local.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, local.Location())
}
