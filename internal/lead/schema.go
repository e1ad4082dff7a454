// Package lead implements the lead-record domain: the positional column
// contract, row mapping, append, search, and meeting-status updates.
package lead

import "fmt"

// Column positions (1-indexed) shared by both schema variants. The first 19
// data columns are identical; the extended variant inserts ten
// qualification columns before the two photo-link columns.
const (
	colTimestamp      = 1
	colOwner          = 2
	colFirstName      = 3
	colLastName       = 4
	colTitle          = 5
	colCompany        = 6
	colWebsite        = 7
	colEmail          = 8
	colPhone          = 9
	colProducts       = 10
	colDemoGiven      = 11
	colMeetingQuality = 12
	colSummary        = 13
	colPainPoints     = 14
	colNextSteps      = 15
	colCaptureMethod  = 16
	colIntentLevel    = 17
	colScenario       = 18
	colLifecycleStage = 19
)

// Schema is a fixed column layout for a deployed tracking table. Column
// order is the contract with the table header and must never change once a
// table is in production.
type Schema struct {
	Name     string
	Columns  []string
	Extended bool

	// DistributionChannelsCol is 0 when the variant has no such column.
	DistributionChannelsCol int
}

var coreColumns = []string{
	"Timestamp",
	"AE Owner",
	"First Name",
	"Last Name",
	"Title",
	"Company",
	"Website",
	"Email",
	"Phone",
	"Products Discussed",
	"Demo Given",
	"Meeting Quality (1-5)",
	"Conversation Summary",
	"Pain Points",
	"Next Steps",
	"Capture Method",
	"Intent Level",
	"Scenario",
	"Lifecycle Stage",
}

var qualificationColumns = []string{
	"Previous Interactions",
	"Organization Description",
	"Event Role",
	"Estimated Revenue Range",
	"Exhibitor Booth",
	"Distribution Channels",
	"Competitor Signals",
	"Donation Tools in Use",
	"Podcast Link",
	"Speaking Sessions",
}

var photoColumns = []string{
	"Card Photo Link",
	"Badge Photo Link",
}

// ExtendedSchema is the full layout: 29 data columns plus two photo links.
func ExtendedSchema() Schema {
	cols := make([]string, 0, len(coreColumns)+len(qualificationColumns)+len(photoColumns))
	cols = append(cols, coreColumns...)
	cols = append(cols, qualificationColumns...)
	cols = append(cols, photoColumns...)
	return Schema{
		Name:                    "extended",
		Columns:                 cols,
		Extended:                true,
		DistributionChannelsCol: len(coreColumns) + 6,
	}
}

// CoreSchema is the reduced layout: 19 data columns plus two photo links.
func CoreSchema() Schema {
	cols := make([]string, 0, len(coreColumns)+len(photoColumns))
	cols = append(cols, coreColumns...)
	cols = append(cols, photoColumns...)
	return Schema{Name: "core", Columns: cols}
}

// SchemaByName resolves a configured schema variant name.
func SchemaByName(name string) (Schema, error) {
	switch name {
	case "extended":
		return ExtendedSchema(), nil
	case "core":
		return CoreSchema(), nil
	}
	return Schema{}, fmt.Errorf("unknown sheet schema %q (want extended or core)", name)
}

// CardPhotoCol returns the 1-indexed card photo link column.
func (s Schema) CardPhotoCol() int { return len(s.Columns) - 1 }

// BadgePhotoCol returns the 1-indexed badge photo link column.
func (s Schema) BadgePhotoCol() int { return len(s.Columns) }
