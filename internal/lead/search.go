package lead

import (
	"fmt"
	"strings"

	"github.com/kalambet/leadbooth/internal/sheet"
)

// Result caps: the scan stops once this many rows match, so later matches
// are never found. First 10 in table order wins; there is no ranking.
const maxSearchResults = 10

// SearchResult is a read-only projection of a matching row plus its
// 1-indexed row number, used to target the row for a meeting update.
type SearchResult struct {
	RowNumber            int    `json:"row_number"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Title                string `json:"title"`
	Company              string `json:"company"`
	Email                string `json:"email"`
	Products             string `json:"products"`
	IntentLevel          string `json:"intent_level"`
	DistributionChannels string `json:"distribution_channels"`
}

// Searcher scans the tracking table for leads.
type Searcher struct {
	table  sheet.Table
	schema Schema
}

// NewSearcher creates a Searcher for the given table and schema.
func NewSearcher(table sheet.Table, schema Schema) *Searcher {
	return &Searcher{table: table, schema: schema}
}

// Search linear-scans all rows in table order, skipping the header, and
// returns rows where the query is a case-insensitive substring of the full
// name, first name, last name, email, or company.
func (s *Searcher) Search(query string) ([]SearchResult, error) {
	rows, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}

	q := strings.ToLower(query)
	results := []SearchResult{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		firstName := cell(row, colFirstName)
		lastName := cell(row, colLastName)
		email := cell(row, colEmail)
		company := cell(row, colCompany)
		fullName := firstName + " " + lastName

		if !matches(q, fullName, firstName, lastName, email, company) {
			continue
		}

		results = append(results, ProjectRow(s.schema, row, i+1))
		if len(results) >= maxSearchResults {
			break
		}
	}
	return results, nil
}

// ProjectRow builds the read-only projection of one table row under the
// given schema. rowNum is the row's 1-indexed position.
func ProjectRow(s Schema, row []string, rowNum int) SearchResult {
	return SearchResult{
		RowNumber:            rowNum,
		FirstName:            cell(row, colFirstName),
		LastName:             cell(row, colLastName),
		Title:                cell(row, colTitle),
		Company:              cell(row, colCompany),
		Email:                cell(row, colEmail),
		Products:             cell(row, colProducts),
		IntentLevel:          cell(row, colIntentLevel),
		DistributionChannels: cell(row, s.DistributionChannelsCol),
	}
}

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}
