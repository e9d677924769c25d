package analytics

import (
	"testing"
	"time"
)

func TestNewSearchEvent(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	e, err := NewSearchEvent("ev-1", "Go Dev", "go dev", 12, 35*time.Millisecond,
		nil, []string{"exact_prefix"}, false, "u-9", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID() != "ev-1" || e.Query() != "Go Dev" || e.NormalizedQuery() != "go dev" {
		t.Errorf("identity fields = %q %q %q", e.ID(), e.Query(), e.NormalizedQuery())
	}
	if e.ResultCount() != 12 || e.Elapsed() != 35*time.Millisecond {
		t.Errorf("count/elapsed = %d %v", e.ResultCount(), e.Elapsed())
	}
	if e.Filters() == nil {
		t.Error("nil filters should become an empty map")
	}
	if e.FallbackUsed() || e.UserID() != "u-9" || !e.CreatedAt().Equal(at) {
		t.Errorf("fallback/user/created = %v %q %v", e.FallbackUsed(), e.UserID(), e.CreatedAt())
	}
	if len(e.LayersUsed()) != 1 {
		t.Errorf("LayersUsed() = %v", e.LayersUsed())
	}
}

func TestNewSearchEvent_Validation(t *testing.T) {
	if _, err := NewSearchEvent("", "q", "q", 0, 0, nil, nil, false, "", time.Now()); err == nil {
		t.Error("expected error for missing id")
	}
	if _, err := NewSearchEvent("id", "q", "q", -1, 0, nil, nil, false, "", time.Now()); err == nil {
		t.Error("expected error for negative result count")
	}
}
