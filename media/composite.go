// Package media defines the domain models for resolved streams: formats, entries, and composite results.
package media

import "fmt"

// Result is the outcome of one resolution: a single Entry, a Composite of
// already-resolved entries, or a Playlist of lazily resolvable links.
type Result interface {
	ResultID() string
}

// ResultID implements Result.
func (e *Entry) ResultID() string { return e.ID }

// Composite is an ordered collection of resolved entries sharing one parent identity.
type Composite struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Entries     []*Entry `json:"entries"`
}

// ResultID implements Result.
func (c *Composite) ResultID() string { return c.ID }

// Compose shapes a resolved entry list into its caller-visible result.
// A single entry is returned directly under the parent id, never wrapped,
// so callers need no special case for one-element composites. Multiple
// entries receive "<id>_part<n>" identifiers (1-based) and are wrapped.
func Compose(id, title, description string, entries []*Entry) Result {
	if len(entries) == 1 {
		entries[0].ID = id
		return entries[0]
	}

	for idx, entry := range entries {
		entry.ID = fmt.Sprintf("%s_part%d", id, idx+1)
	}

	return &Composite{
		ID:          id,
		Title:       title,
		Description: description,
		Entries:     entries,
	}
}
