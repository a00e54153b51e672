package history

import (
	"fmt"

	"github.com/bilisan-cli/bilisan/media"
)

// SavedResolution represents a single resolved page preserved in the user's history.
type SavedResolution struct {
	URL       string `json:"url"`
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Extractor string `json:"extractor"`
	Parts     int    `json:"parts"`
	// Resolutions counts how many times this page was resolved.
	Resolutions int   `json:"resolutions"`
	ResolvedAt  int64 `json:"resolved_at"`
}

func (s *SavedResolution) encode() string {
	return fmt.Sprintf("%s (%s)", s.URL, s.Extractor)
}

func (s *SavedResolution) String() string {
	if s.Title != "" {
		return fmt.Sprintf("%s : %s", s.Title, s.URL)
	}
	return s.URL
}

func newSavedResolution(rawURL, extractorName string, result media.Result) *SavedResolution {
	saved := &SavedResolution{
		URL:       rawURL,
		ID:        result.ResultID(),
		Extractor: extractorName,
	}

	switch r := result.(type) {
	case *media.Entry:
		saved.Title = r.Title
		saved.Parts = 1
	case *media.Composite:
		saved.Title = r.Title
		saved.Parts = len(r.Entries)
	case *media.Playlist:
		saved.Title = r.Title
		saved.Parts = len(r.Links)
	}

	return saved
}
