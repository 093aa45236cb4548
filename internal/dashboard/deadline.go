// Package dashboard holds the campaign status rules: deadline math, status
// classification, role scoping, filtering and selection.
package dashboard

import (
	"time"

	"github.com/unclebandit/attestation-tracker/internal/model"
)

const day = 24 * time.Hour

// DaysElapsed returns the number of whole days between start and now.
// It is never negative.
func DaysElapsed(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	return int(now.Sub(start) / day)
}

// DaysLate returns how many days past the escalation threshold a record is.
// Completed records are never late.
func DaysLate(r model.AttestationRecord, c model.Campaign, now time.Time) int {
	if r.IsCompleted() {
		return 0
	}
	late := DaysElapsed(c.StartDate, now) - c.EscalationDays
	if late < 0 {
		return 0
	}
	return late
}

func IsOverdue(r model.AttestationRecord, c model.Campaign, now time.Time) bool {
	return !r.IsCompleted() && DaysLate(r, c, now) > 0
}
