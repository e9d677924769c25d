// Package suggestion holds the autocomplete request and response types.
package suggestion

import (
	"fmt"

	"github.com/kailas-cloud/jobsearch/internal/domain"
	"github.com/kailas-cloud/jobsearch/internal/domain/job"
)

// Category selects which suggestion lists are filled.
type Category string

// Categories.
const (
	CategoryAll      Category = "all"
	CategoryTitle    Category = "title"
	CategoryCompany  Category = "company"
	CategoryLocation Category = "location"
)

// ParseCategory parses a category; empty means all.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case "":
		return CategoryAll, nil
	case CategoryAll, CategoryTitle, CategoryCompany, CategoryLocation:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown suggestion type %q", domain.ErrInvalidQuery, s)
	}
}

// Fields returns the job fields looked up for c.
func (c Category) Fields() []job.Field {
	switch c {
	case CategoryTitle:
		return []job.Field{job.FieldTitle}
	case CategoryCompany:
		return []job.Field{job.FieldCompany}
	case CategoryLocation:
		return []job.Field{job.FieldLocation}
	default:
		return job.LookupFields
	}
}

// Suggestions is the result of one suggest call. Lists are never nil.
type Suggestions struct {
	Query        string
	Titles       []string
	Companies    []string
	Locations    []string
	DidYouMean   string
	FallbackUsed bool
}

// Empty returns suggestions with empty lists for query.
func Empty(query string) Suggestions {
	return Suggestions{
		Query:     query,
		Titles:    []string{},
		Companies: []string{},
		Locations: []string{},
	}
}

// Total returns the number of values across all lists.
func (s *Suggestions) Total() int {
	return len(s.Titles) + len(s.Companies) + len(s.Locations)
}

// Set stores values in the list for f.
func (s *Suggestions) Set(f job.Field, values []string) {
	if values == nil {
		values = []string{}
	}
	switch f {
	case job.FieldTitle:
		s.Titles = values
	case job.FieldCompany:
		s.Companies = values
	case job.FieldLocation:
		s.Locations = values
	}
}
