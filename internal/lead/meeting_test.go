package lead

import (
	"errors"
	"strings"
	"testing"
)

func TestMeetingUpdate_RejectsHeaderRow(t *testing.T) {
	schema := CoreSchema()
	table := setupTable(t, schema)
	u := NewMeetingUpdater(table)

	for _, row := range []int{1, 0, -3} {
		_, err := u.Update(MeetingUpdate{RowNumber: row, Status: "completed"})
		if !errors.Is(err, ErrInvalidRow) {
			t.Errorf("Update(row=%d) err = %v, want ErrInvalidRow", row, err)
		}
	}
}

func TestMeetingUpdate_AppendsToSummary(t *testing.T) {
	schema := ExtendedSchema()
	table := setupTable(t, schema)
	w := NewWriter(table, schema)
	u := NewMeetingUpdater(table)

	row, err := w.Append(Record{FirstName: "Anne", Summary: "Initial chat at booth"}, "", "")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if _, err := u.Update(MeetingUpdate{
		RowNumber: row,
		Status:    "completed",
		Notes:     "great demo",
		Timestamp: "2026-02-18T15:00:00Z",
	}); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	if _, err := u.Update(MeetingUpdate{
		RowNumber: row,
		Status:    "no_show",
		Notes:     "second meeting skipped",
		Timestamp: "2026-02-19T10:00:00Z",
	}); err != nil {
		t.Fatalf("second Update failed: %v", err)
	}

	summary, err := table.ReadCell(row, colSummary)
	if err != nil {
		t.Fatalf("ReadCell failed: %v", err)
	}

	lines := strings.Split(summary, "\n")
	if len(lines) != 3 {
		t.Fatalf("summary has %d lines, want 3:\n%s", len(lines), summary)
	}
	if lines[0] != "Initial chat at booth" {
		t.Errorf("original summary lost: %q", lines[0])
	}
	if !strings.Contains(lines[1], "[Meeting SHOWED") || !strings.Contains(lines[1], "great demo") {
		t.Errorf("first entry = %q", lines[1])
	}
	if !strings.Contains(lines[2], "[Meeting NO-SHOW") || !strings.Contains(lines[2], "second meeting skipped") {
		t.Errorf("second entry = %q", lines[2])
	}
}

func TestMeetingUpdate_NextStepsAndScenario(t *testing.T) {
	schema := CoreSchema()
	table := setupTable(t, schema)
	w := NewWriter(table, schema)
	u := NewMeetingUpdater(table)

	row, _ := w.Append(Record{NextSteps: "Send pricing"}, "", "")

	label, err := u.Update(MeetingUpdate{
		RowNumber: row,
		Status:    "rescheduled_later",
		UpdatedBy: "dana",
		Timestamp: "2026-02-18T15:00:00Z",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if label != "RESCHEDULED" {
		t.Errorf("label = %q, want RESCHEDULED", label)
	}

	steps, _ := table.ReadCell(row, colNextSteps)
	want := "Send pricing; Meeting status: RESCHEDULED (updated by dana)"
	if steps != want {
		t.Errorf("next steps = %q, want %q", steps, want)
	}

	scenario, _ := table.ReadCell(row, colScenario)
	if scenario != "Pre-Booked Meeting" {
		t.Errorf("scenario = %q, want %q", scenario, "Pre-Booked Meeting")
	}
}

func TestMeetingUpdate_DealPotential(t *testing.T) {
	schema := CoreSchema()
	table := setupTable(t, schema)
	w := NewWriter(table, schema)
	u := NewMeetingUpdater(table)

	row, _ := w.Append(Record{MeetingQuality: "3"}, "", "")

	// Empty deal potential leaves the quality cell alone.
	if _, err := u.Update(MeetingUpdate{RowNumber: row, Status: "completed", Timestamp: "t1"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	quality, _ := table.ReadCell(row, colMeetingQuality)
	if quality != "3" {
		t.Errorf("quality = %q, want untouched %q", quality, "3")
	}

	// Supplied deal potential overwrites outright.
	if _, err := u.Update(MeetingUpdate{RowNumber: row, Status: "completed", DealPotential: "5", Timestamp: "t2"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	quality, _ = table.ReadCell(row, colMeetingQuality)
	if quality != "5" {
		t.Errorf("quality = %q, want %q", quality, "5")
	}
}

func TestMeetingUpdate_MissingRow(t *testing.T) {
	schema := CoreSchema()
	table := setupTable(t, schema)
	u := NewMeetingUpdater(table)

	if _, err := u.Update(MeetingUpdate{RowNumber: 9, Status: "completed"}); err == nil {
		t.Fatal("expected error for nonexistent row")
	}
}

func TestWriter_DefaultsTimestamp(t *testing.T) {
	schema := CoreSchema()
	table := setupTable(t, schema)
	w := NewWriter(table, schema)

	row, err := w.Append(Record{FirstName: "Anne"}, "", "")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	ts, _ := table.ReadCell(row, colTimestamp)
	if ts == "" {
		t.Error("timestamp cell is empty, want current time default")
	}
}
