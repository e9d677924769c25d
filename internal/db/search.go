package db

import "time"

// Column is a job column that has a normalized counterpart.
type Column string

// Lookup columns.
const (
	ColumnTitle    Column = "title"
	ColumnCompany  Column = "company"
	ColumnLocation Column = "location"
)

// IsValid reports whether c is a known lookup column.
func (c Column) IsValid() bool {
	return c == ColumnTitle || c == ColumnCompany || c == ColumnLocation
}

// JobRow is a job posting row plus the score of the lookup that produced it.
type JobRow struct {
	ID                 string
	Title              string
	Company            string
	Location           string
	TitleNormalized    string
	CompanyNormalized  string
	LocationNormalized string
	Description        string
	PostedAt           time.Time
	HasEmbedding       bool
	Score              float64
}

// EventRow is a search_events row.
type EventRow struct {
	ID              string
	Query           string
	NormalizedQuery string
	ResultCount     int
	ElapsedMs       int64
	Filters         map[string]any
	LayersUsed      []string
	FallbackUsed    bool
	UserID          string
	CreatedAt       time.Time
}

// ClickRow identifies the event a click attaches to.
type ClickRow struct {
	NormalizedQuery string
	JobID           string
	UserID          string
	ClickedAt       time.Time
	Since           time.Time
}
