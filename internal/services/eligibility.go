package services

import (
	"time"

	"github.com/sparkmetric/citewatch-backend/internal/types"
)

const (
	dailyThreshold   = 24 * time.Hour
	weeklyThreshold  = 168 * time.Hour
	monthlyThreshold = 720 * time.Hour
)

func checkThreshold(frequency types.CheckFrequency) time.Duration {
	switch frequency {
	case types.FrequencyDaily:
		return dailyThreshold
	case types.FrequencyWeekly:
		return weeklyThreshold
	case types.FrequencyMonthly:
		return monthlyThreshold
	default:
		// unknown frequencies fall back to daily
		return dailyThreshold
	}
}

// EntryDueForCheck reports whether an entry is due for a recheck at now.
// A never-checked entry is always due. The boundary is inclusive: elapsed
// time exactly equal to the frequency threshold counts as due.
func EntryDueForCheck(entry *types.MonitoringEntry, now time.Time) bool {
	if entry == nil {
		return false
	}
	if entry.LastCheckedAt == nil {
		return true
	}
	return now.Sub(*entry.LastCheckedAt) >= checkThreshold(entry.CheckFrequency)
}
