// Package media defines the domain models for resolved streams: formats, entries, and composite results.
package media

// Entry represents one playable unit with its ranked format candidates.
type Entry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
	// Timestamp is the upload time in epoch seconds.
	Timestamp  *int64 `json:"timestamp,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Uploader   string `json:"uploader,omitempty"`
	UploaderID string `json:"uploader_id,omitempty"`

	// Formats is ordered best-first (see SortFormats).
	Formats []*Format `json:"formats"`
}

func (e *Entry) String() string {
	if e.Title != "" {
		return e.Title
	}
	return e.ID
}

// Metadata carries page-level fields shared by every entry of a resolution.
type Metadata struct {
	Title       string
	Description string
	Duration    *float64
	Timestamp   *int64
	Thumbnail   string
	Uploader    string
	UploaderID  string
}

// Apply merges the shared metadata into an entry, returning the updated copy.
// Scalar fields are overwritten; Duration is only overwritten when known, so
// per-part durations survive a metadata pass that has none.
func (m Metadata) Apply(e Entry) Entry {
	e.Title = m.Title
	e.Description = m.Description
	e.Timestamp = m.Timestamp
	e.Thumbnail = m.Thumbnail
	e.Uploader = m.Uploader
	e.UploaderID = m.UploaderID
	if m.Duration != nil {
		e.Duration = m.Duration
	}
	return e
}
