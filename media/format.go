// Package media defines the domain models for resolved streams: formats, entries, and composite results.
package media

// CodecNone marks the absent track of a single-track format. A video-only
// format carries AudioCodec == CodecNone and vice versa; a muxed format
// carries neither.
const CodecNone = "none"

// Format represents one retrievable stream variant of an entry.
//
// Numeric fields are pointers so that "unknown" stays distinguishable from
// zero: provider payloads omit most of them most of the time.
type Format struct {
	// Direct URL to the stream or, for fragmented formats, to the fragment manifest.
	URL string `json:"url"`
	// Identifier unique within one entry's format list.
	ID string `json:"format_id"`
	// Container hint (e.g. "mp4", "m4a", "flv").
	Ext string `json:"ext,omitempty"`

	VideoCodec string `json:"vcodec,omitempty"`
	AudioCodec string `json:"acodec,omitempty"`

	// Bitrates in kbps.
	VideoBitrate *float64 `json:"vbr,omitempty"`
	AudioBitrate *float64 `json:"abr,omitempty"`

	Width     *int `json:"width,omitempty"`
	Height    *int `json:"height,omitempty"`
	FrameRate *int `json:"fps,omitempty"`

	// FileSize is exact, FileSizeApprox is derived from bitrate and duration.
	// When both are set they describe the same byte count within rounding.
	FileSize       *int64 `json:"filesize,omitempty"`
	FileSizeApprox *int64 `json:"filesize_approx,omitempty"`

	// Human-readable quality label (e.g. "高清 1080P").
	Note string `json:"format_note,omitempty"`

	// Preference shifts ranking independently of quality: backups and
	// mirrors carry negative values so they sort after primaries.
	Preference int `json:"preference,omitempty"`

	// HTTP headers required to fetch the stream.
	Headers map[string]string `json:"http_headers,omitempty"`

	// Fragments holds the ordered segment list of a fragmented stream.
	Fragments []*Fragment `json:"fragments,omitempty"`
}

// Fragment is one segment of a fragmented stream.
type Fragment struct {
	URL      string   `json:"url"`
	FileSize *int64   `json:"filesize,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
}

// HasVideo reports whether the format carries a video track.
func (f *Format) HasVideo() bool {
	return f.VideoCodec != CodecNone
}

// HasAudio reports whether the format carries an audio track.
func (f *Format) HasAudio() bool {
	return f.AudioCodec != CodecNone
}

// Pixels returns width*height, or 0 when the resolution is unknown.
func (f *Format) Pixels() int {
	if f.Width == nil || f.Height == nil {
		return 0
	}
	return *f.Width * *f.Height
}

// Bitrate returns the dominant bitrate of the format: video when present, audio otherwise.
func (f *Format) Bitrate() float64 {
	if f.VideoBitrate != nil {
		return *f.VideoBitrate
	}
	if f.AudioBitrate != nil {
		return *f.AudioBitrate
	}
	return 0
}

func (f *Format) String() string {
	if f.Note != "" {
		return f.Note
	}
	return f.ID
}
