package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/jobsearch/internal/domain/job"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
)

// DatePosted is a posting-age window.
type DatePosted string

// Supported posting-age windows.
const (
	DateAll       DatePosted = "all"
	DateLastWeek  DatePosted = "7d"
	DateLastMonth DatePosted = "30d"
)

// ParseDatePosted accepts "", "all", "7d" and "30d"; empty means all.
func ParseDatePosted(s string) (DatePosted, error) {
	switch DatePosted(strings.ToLower(strings.TrimSpace(s))) {
	case "", DateAll:
		return DateAll, nil
	case DateLastWeek:
		return DateLastWeek, nil
	case DateLastMonth:
		return DateLastMonth, nil
	default:
		return "", fmt.Errorf("datePosted must be one of all, 7d, 30d (got %q)", s)
	}
}

// Window returns the maximum posting age; zero means unbounded.
func (d DatePosted) Window() time.Duration {
	switch d {
	case DateLastWeek:
		return 7 * 24 * time.Hour
	case DateLastMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// remoteMarker is the normalized token that flags a remote posting.
const remoteMarker = "remote"

// Filters are structural post-filters applied to every layer's raw candidates.
// They never change which layer runs, only which candidates are admissible.
type Filters struct {
	location   string
	remoteOnly bool
	datePosted DatePosted
}

// New creates Filters; location is normalized the same way query text is.
func New(location string, remoteOnly bool, datePosted DatePosted) Filters {
	if datePosted == "" {
		datePosted = DateAll
	}
	return Filters{
		location:   normalize.Field(location),
		remoteOnly: remoteOnly,
		datePosted: datePosted,
	}
}

// Location returns the normalized location substring filter.
func (f Filters) Location() string { return f.location }

// RemoteOnly reports whether only remote postings are admissible.
func (f Filters) RemoteOnly() bool { return f.remoteOnly }

// DatePosted returns the posting-age window.
func (f Filters) DatePosted() DatePosted {
	if f.datePosted == "" {
		return DateAll
	}
	return f.datePosted
}

// IsEmpty reports whether every posting is admissible.
func (f Filters) IsEmpty() bool {
	return f.location == "" && !f.remoteOnly && f.DatePosted() == DateAll
}

// Admits reports whether doc passes every filter at time now.
func (f Filters) Admits(doc *job.Document, now time.Time) bool {
	if f.location != "" && !strings.Contains(doc.Normalized(job.FieldLocation), f.location) {
		return false
	}
	if f.remoteOnly && !isRemote(doc) {
		return false
	}
	if w := f.DatePosted().Window(); w > 0 && doc.PostedAt().Before(now.Add(-w)) {
		return false
	}
	return true
}

// Map renders the active filters for analytics.
func (f Filters) Map() map[string]any {
	m := make(map[string]any, 3)
	if f.location != "" {
		m["location"] = f.location
	}
	if f.remoteOnly {
		m["remoteOnly"] = true
	}
	if d := f.DatePosted(); d != DateAll {
		m["datePosted"] = string(d)
	}
	return m
}

func isRemote(doc *job.Document) bool {
	return containsWord(doc.Normalized(job.FieldLocation), remoteMarker) ||
		containsWord(doc.Normalized(job.FieldTitle), remoteMarker)
}

func containsWord(text, word string) bool {
	for _, w := range strings.FieldsFunc(text, func(r rune) bool { return r == ' ' || r == '-' }) {
		if w == word {
			return true
		}
	}
	return false
}
