package lead

// MapRow maps a record and its two photo URLs to one cell per schema
// column, in schema order. Absent fields become empty strings. This is the
// single place that encodes the positional contract with the table header.
func MapRow(s Schema, rec Record, cardPhotoURL, badgePhotoURL string) []string {
	cells := make([]string, 0, len(s.Columns))
	cells = append(cells, rec.coreValues()...)
	if s.Extended {
		cells = append(cells, rec.qualificationValues()...)
	}
	cells = append(cells, cardPhotoURL, badgePhotoURL)
	return cells
}
