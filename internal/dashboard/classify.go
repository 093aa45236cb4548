package dashboard

import (
	"fmt"
	"time"

	"github.com/unclebandit/attestation-tracker/internal/model"
)

// Classification is the display state derived for one record.
type Classification struct {
	Status   model.RecordStatus `json:"status"`
	Overdue  bool               `json:"overdue"`
	DaysLate int                `json:"days_late"`
	Label    string             `json:"label"`
}

// Classify derives the display lifecycle of r. The record's status is
// taken as-is; only the overdue decoration is computed.
func Classify(r model.AttestationRecord, c model.Campaign, now time.Time) Classification {
	late := DaysLate(r, c, now)
	cl := Classification{
		Status:   r.Status,
		Overdue:  !r.IsCompleted() && late > 0,
		DaysLate: late,
		Label:    r.Status.DisplayName(),
	}
	if cl.Overdue {
		cl.Label = fmt.Sprintf("%s (%s)", cl.Label, LateLabel(late))
	}
	return cl
}

// LateLabel renders a lateness badge such as "3d late".
func LateLabel(days int) string {
	return fmt.Sprintf("%dd late", days)
}
