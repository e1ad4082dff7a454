package lead

import (
	"errors"
	"fmt"

	"github.com/kalambet/leadbooth/internal/sheet"
)

// ErrInvalidRow is returned when a meeting update references the header row
// or an unparsable row number.
var ErrInvalidRow = errors.New("invalid row number")

// Scenario label stamped on every updated row.
const preBookedScenario = "Pre-Booked Meeting"

// MeetingUpdate describes the outcome of a pre-booked meeting for one
// existing row.
type MeetingUpdate struct {
	RowNumber     int
	Status        string // "completed", "no_show", anything else reads as rescheduled
	Notes         string
	DealPotential string
	UpdatedBy     string
	Timestamp     string
}

// MeetingUpdater rewrites the meeting-outcome columns of an existing row.
// Text cells accumulate: summary and next-steps get appended entries,
// deal potential is last-write-wins, the scenario cell is always restamped.
type MeetingUpdater struct {
	table sheet.Table
}

// NewMeetingUpdater creates a MeetingUpdater over the given table.
func NewMeetingUpdater(table sheet.Table) *MeetingUpdater {
	return &MeetingUpdater{table: table}
}

// StatusLabel normalizes a wire status into its sheet label.
func StatusLabel(status string) string {
	switch status {
	case "completed":
		return "SHOWED"
	case "no_show":
		return "NO-SHOW"
	default:
		return "RESCHEDULED"
	}
}

// Update applies the meeting outcome. Row 1 is the header; anything below
// row 2 is rejected. The cell updates are read-modify-write and not atomic
// with each other.
func (u *MeetingUpdater) Update(up MeetingUpdate) (string, error) {
	if up.RowNumber < 2 {
		return "", ErrInvalidRow
	}

	label := StatusLabel(up.Status)

	// Conversation summary: append a bracketed status+timestamp entry.
	summary, err := u.table.ReadCell(up.RowNumber, colSummary)
	if err != nil {
		return "", fmt.Errorf("reading summary: %w", err)
	}
	entry := "[Meeting " + label + " — " + up.Timestamp + "]"
	if up.Notes != "" {
		entry += " " + up.Notes
	}
	if summary != "" {
		entry = summary + "\n" + entry
	}
	if err := u.table.WriteCell(up.RowNumber, colSummary, entry); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}

	// Deal potential overwrites the quality cell only when supplied.
	if up.DealPotential != "" {
		if err := u.table.WriteCell(up.RowNumber, colMeetingQuality, up.DealPotential); err != nil {
			return "", fmt.Errorf("writing deal potential: %w", err)
		}
	}

	// Next steps: semicolon-append a status note naming the updater.
	steps, err := u.table.ReadCell(up.RowNumber, colNextSteps)
	if err != nil {
		return "", fmt.Errorf("reading next steps: %w", err)
	}
	updatedBy := up.UpdatedBy
	if updatedBy == "" {
		updatedBy = "unknown"
	}
	note := "Meeting status: " + label + " (updated by " + updatedBy + ")"
	if steps != "" {
		note = steps + "; " + note
	}
	if err := u.table.WriteCell(up.RowNumber, colNextSteps, note); err != nil {
		return "", fmt.Errorf("writing next steps: %w", err)
	}

	if err := u.table.WriteCell(up.RowNumber, colScenario, preBookedScenario); err != nil {
		return "", fmt.Errorf("writing scenario: %w", err)
	}

	return label, nil
}
