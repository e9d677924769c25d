package job

import (
	"strings"
	"time"
)

// Field names a matchable text attribute of a posting.
type Field string

// Matchable fields, in full-text weight order.
const (
	FieldTitle       Field = "title"
	FieldCompany     Field = "company"
	FieldLocation    Field = "location"
	FieldDescription Field = "description"
)

// LookupFields are the fields with normalized counterparts used by equality, prefix,
// trigram and token lookups.
var LookupFields = []Field{FieldTitle, FieldCompany, FieldLocation}

// Document is a job posting as read from the document store (immutable value object).
// Normalized fields are maintained by the store; the engine only reads them.
type Document struct {
	id           string
	title        string
	company      string
	location     string
	titleNorm    string
	companyNorm  string
	locationNorm string
	description  string
	postedAt     time.Time
	hasEmbedding bool
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, title, company, location string,
	titleNorm, companyNorm, locationNorm string,
	description string, postedAt time.Time, hasEmbedding bool,
) Document {
	return Document{
		id: id, title: title, company: company, location: location,
		titleNorm: titleNorm, companyNorm: companyNorm, locationNorm: locationNorm,
		description: description, postedAt: postedAt, hasEmbedding: hasEmbedding,
	}
}

// ID returns the posting identifier.
func (d *Document) ID() string { return d.id }

// Title returns the display title.
func (d *Document) Title() string { return d.title }

// Company returns the display company name.
func (d *Document) Company() string { return d.company }

// Location returns the display location.
func (d *Document) Location() string { return d.location }

// Description returns the full description text.
func (d *Document) Description() string { return d.description }

// PostedAt returns the posting timestamp.
func (d *Document) PostedAt() time.Time { return d.postedAt }

// HasEmbedding reports whether a precomputed embedding exists for the posting.
func (d *Document) HasEmbedding() bool { return d.hasEmbedding }

// Display returns the display value of f.
func (d *Document) Display(f Field) string {
	switch f {
	case FieldTitle:
		return d.title
	case FieldCompany:
		return d.company
	case FieldLocation:
		return d.location
	case FieldDescription:
		return d.description
	default:
		return ""
	}
}

// Normalized returns the normalized value of f. Description has no stored normalized
// form and is lowercased on the fly.
func (d *Document) Normalized(f Field) string {
	switch f {
	case FieldTitle:
		return d.titleNorm
	case FieldCompany:
		return d.companyNorm
	case FieldLocation:
		return d.locationNorm
	case FieldDescription:
		return strings.ToLower(d.description)
	default:
		return ""
	}
}

// Hit is a document with the raw signal a store lookup scored it with
// (relevance rank, trigram similarity or cosine similarity depending on the lookup).
type Hit struct {
	Doc    Document
	Signal float64
}
