package mode

// Mode selects how much of the retrieval cascade a search may use.
type Mode string

// Search mode constants.
const (
	// Enhanced runs every retrieval layer in priority order.
	Enhanced Mode = "enhanced"
	// Basic runs only exact/prefix, full-text and the recency fallback.
	Basic Mode = "basic"
)

// FromFlag maps the API's useEnhanced flag to a mode.
func FromFlag(useEnhanced bool) Mode {
	if useEnhanced {
		return Enhanced
	}
	return Basic
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Enhanced || m == Basic
}
