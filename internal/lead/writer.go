package lead

import (
	"fmt"
	"time"

	"github.com/kalambet/leadbooth/internal/sheet"
)

// Writer appends lead records to the tracking table. Appends are
// unconditional: no dedup, no validation.
type Writer struct {
	table  sheet.Table
	schema Schema
	now    func() time.Time
}

// NewWriter creates a Writer for the given table and schema.
func NewWriter(table sheet.Table, schema Schema) *Writer {
	return &Writer{table: table, schema: schema, now: time.Now}
}

// Append maps the record and appends it, returning the 1-indexed row
// number. A missing timestamp defaults to the current UTC time in ISO-8601.
func (w *Writer) Append(rec Record, cardPhotoURL, badgePhotoURL string) (int, error) {
	if rec.Timestamp == "" {
		rec.Timestamp = w.now().UTC().Format(time.RFC3339)
	}

	row, err := w.table.Append(MapRow(w.schema, rec, cardPhotoURL, badgePhotoURL))
	if err != nil {
		return 0, fmt.Errorf("appending lead row: %w", err)
	}
	return row, nil
}
