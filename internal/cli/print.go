package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/unclebandit/attestation-tracker/internal/model"
	"github.com/unclebandit/attestation-tracker/internal/service"
)

const timeLayout = "2006-01-02 15:04"

// PrintView renders the dashboard header, badge counts and the visible
// records as a table.
func PrintView(w io.Writer, v *service.View) {
	title := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)

	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "%s %s\n", title.Sprint(v.Campaign.Name), faint.Sprintf("#%d %s, escalation after %dd", v.Campaign.ID, v.Campaign.Status, v.Campaign.EscalationDays))

	c := v.Counts
	_, _ = fmt.Fprintf(w, "Total %d | %s %d | Pending %d | In Progress %d | Completed %d | Unregistered %d\n",
		c.Total, color.New(color.FgRed).Sprint("Overdue"), c.Overdue, c.Pending, c.InProgress, c.Completed, c.Unregistered)
	if !v.LastRefreshed.IsZero() {
		_, _ = fmt.Fprintln(w, faint.Sprintf("Refreshed %s", v.LastRefreshed.Format(timeLayout)))
	}
	if v.Notice != nil {
		_, _ = fmt.Fprintln(w, color.New(color.FgYellow).Sprint(v.Notice.Message))
	}
	_, _ = fmt.Fprintln(w, "")

	if len(v.Records) == 0 {
		_, _ = fmt.Fprintln(w, faint.Sprint("No participants match the current filters."))
		return
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("KEY"), bold.Sprint("NAME"), bold.Sprint("EMAIL"), bold.Sprint("MANAGER"),
		bold.Sprint("COMPANIES"), bold.Sprint("STATUS"), bold.Sprint("LAST REMINDER"))
	for _, r := range v.Records {
		tbl.AddRow(r.Key, r.UserName, r.UserEmail, r.ManagerName, strings.Join(r.Companies, ", "),
			statusColor(r).Sprint(r.Classification.Label), lastReminder(r.AttestationRecord))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func statusColor(r service.RecordView) *color.Color {
	switch {
	case r.Classification.Overdue:
		return color.New(color.FgRed)
	case r.Status == model.StatusCompleted:
		return color.New(color.FgGreen)
	case r.Status == model.StatusInProgress:
		return color.New(color.FgYellow)
	case r.Status == model.StatusUnregistered:
		return color.New(color.Faint)
	}
	return color.New()
}

func lastReminder(r model.AttestationRecord) string {
	switch {
	case r.ReminderSentAt != nil:
		return r.ReminderSentAt.Format(timeLayout)
	case r.InviteSentAt != nil:
		return "invited " + r.InviteSentAt.Format(timeLayout)
	}
	return "-"
}

// PrintResult reports an action outcome, coloured by how much of it failed.
func PrintResult(w io.Writer, res *service.ActionResult) {
	c := color.New(color.FgGreen)
	switch {
	case res.Sent == 0 && res.Failed > 0:
		c = color.New(color.FgRed)
	case res.Failed > 0:
		c = color.New(color.FgYellow)
	case !res.Dispatched:
		c = color.New(color.Faint)
	}
	_, _ = fmt.Fprintln(w, c.Sprint(res.Message))
}
