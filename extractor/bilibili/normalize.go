package bilibili

import (
	"fmt"
	"math"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/bilisan-cli/bilisan/media"
	"github.com/bilisan-cli/bilisan/util"
	"github.com/samber/lo"
)

// payloadKind tags the provider payload shapes this resolver understands.
// Detection is a single explicit classification, not key probing scattered
// through the normalizers.
type payloadKind int

const (
	kindUnknown payloadKind = iota
	kindDashManifest
	kindLegacyMultiPart
	kindLiveFragmentList
)

// playInfo is the superset schema shared by the page-embedded player info
// and the legacy playurl API. Which fields are populated depends on the
// source; classify() decides the normalization path.
type playInfo struct {
	Code    *int   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	// Duration in milliseconds.
	Timelength *int64 `json:"timelength,omitempty"`

	AcceptQuality     []int    `json:"accept_quality,omitempty"`
	AcceptDescription []string `json:"accept_description,omitempty"`

	Dash *dashManifest `json:"dash,omitempty"`
	Durl []durlPart    `json:"durl,omitempty"`
}

// classify tags the payload by the data it actually carries. Legacy
// multi-part data wins over an embedded manifest: when both are present the
// durl structure is authoritative for part boundaries.
func (p *playInfo) classify() payloadKind {
	switch {
	case p == nil:
		return kindUnknown
	case len(p.Durl) > 0:
		return kindLegacyMultiPart
	case p.Dash != nil:
		return kindDashManifest
	default:
		return kindUnknown
	}
}

// apiError surfaces a structured provider error, or nil when the payload carries none.
func (p *playInfo) apiError() error {
	if p == nil {
		return nil
	}
	if p.Message != "" {
		return &APIError{Message: p.Message}
	}
	if p.Code != nil {
		return &APIError{Code: *p.Code}
	}
	return nil
}

// duration converts the millisecond field to seconds. Units never cross the
// normalization boundary mixed.
func (p *playInfo) duration() *float64 {
	if p.Timelength == nil {
		return nil
	}
	return lo.ToPtr(float64(*p.Timelength) / 1000)
}

type dashManifest struct {
	Video []dashTrack `json:"video"`
	Audio []dashTrack `json:"audio"`
}

type dashTrack struct {
	BaseURL      string   `json:"baseUrl,omitempty"`
	BaseURLSnake string   `json:"base_url,omitempty"`
	ID           *int     `json:"id,omitempty"`
	CodecID      int      `json:"codecid,omitempty"`
	Codecs       string   `json:"codecs,omitempty"`
	Bandwidth    *float64 `json:"bandwidth,omitempty"`
	FrameRate    string   `json:"frameRate,omitempty"`
	FrameRateAlt string   `json:"frame_rate,omitempty"`
	Width        *int     `json:"width,omitempty"`
	Height       *int     `json:"height,omitempty"`
}

// url returns whichever URL spelling the manifest used.
func (t dashTrack) url() string {
	if t.BaseURL != "" {
		return t.BaseURL
	}
	return t.BaseURLSnake
}

func (t dashTrack) frameRate() string {
	if t.FrameRate != "" {
		return t.FrameRate
	}
	return t.FrameRateAlt
}

type durlPart struct {
	URL  string `json:"url"`
	Size *int64 `json:"size,omitempty"`
	// Length in milliseconds.
	Length     *int64   `json:"length,omitempty"`
	BackupURLs []string `json:"backup_url,omitempty"`
}

// normalizeDash converts a DASH-style manifest into a single entry holding
// separate video and audio candidates. Manifests missing either track array
// yield nothing: muxing info is considered incomplete without both.
func normalizeDash(p *playInfo) *media.Entry {
	if p.classify() != kindDashManifest {
		return nil
	}
	if len(p.Dash.Video) == 0 || len(p.Dash.Audio) == 0 {
		return nil
	}

	qualityDesc := make(map[int]string, len(p.AcceptQuality))
	for idx, quality := range p.AcceptQuality {
		if idx < len(p.AcceptDescription) {
			qualityDesc[quality] = p.AcceptDescription[idx]
		}
	}

	duration := p.duration()
	formats := dashFormats(p.Dash.Video, true, duration, qualityDesc)
	formats = append(formats, dashFormats(p.Dash.Audio, false, duration, qualityDesc)...)
	if len(formats) == 0 {
		return nil
	}

	media.SortFormats(formats)
	return &media.Entry{
		Duration: duration,
		Formats:  formats,
	}
}

// dashFormats maps one track array to stream candidates.
func dashFormats(tracks []dashTrack, isVideo bool, duration *float64, qualityDesc map[int]string) []*media.Format {
	var formats []*media.Format
	for _, track := range tracks {
		trackURL := track.url()
		if trackURL == "" || track.ID == nil {
			continue
		}

		id := strconv.Itoa(*track.ID)
		if track.CodecID != 0 {
			id += "_" + strconv.Itoa(track.CodecID)
		}

		var bitrate *float64
		if track.Bandwidth != nil {
			bitrate = lo.ToPtr(*track.Bandwidth / 1000)
		}

		format := &media.Format{
			URL:            trackURL,
			ID:             id,
			FrameRate:      parseFrameRate(track.frameRate()),
			Note:           qualityDesc[*track.ID],
			FileSizeApprox: approxFileSize(bitrate, duration),
		}

		if isVideo {
			format.Ext = "mp4"
			format.VideoCodec = track.Codecs
			format.AudioCodec = media.CodecNone
			format.VideoBitrate = bitrate
			format.Width = track.Width
			format.Height = track.Height
		} else {
			format.Ext = "m4a"
			format.AudioCodec = track.Codecs
			format.VideoCodec = media.CodecNone
			format.AudioBitrate = bitrate
		}

		formats = append(formats, format)
	}
	return formats
}

// normalizeDurl converts a legacy multi-part payload into one entry per
// physical part. Each part carries the primary URL plus de-prioritized
// backup mirrors, all requiring a Referer of the originating page.
func normalizeDurl(p *playInfo, pageURL string) []*media.Entry {
	if p.classify() != kindLegacyMultiPart {
		return nil
	}

	entries := make([]*media.Entry, 0, len(p.Durl))
	for _, part := range p.Durl {
		formats := []*media.Format{{
			URL:      part.URL,
			ID:       "durl",
			FileSize: part.Size,
		}}

		for idx, backup := range part.BackupURLs {
			// HD backups outrank the rest, and every backup sinks below the primary.
			preference := -3
			if strings.Contains(backup, "hd.mp4") {
				preference = -2
			}
			formats = append(formats, &media.Format{
				URL:        backup,
				ID:         fmt.Sprintf("durl-backup%d", idx+1),
				Preference: preference,
			})
		}

		for _, format := range formats {
			format.Headers = map[string]string{"Referer": pageURL}
		}

		media.SortFormats(formats)

		var duration *float64
		if part.Length != nil {
			duration = lo.ToPtr(float64(*part.Length) / 1000)
		}

		entries = append(entries, &media.Entry{
			Duration: duration,
			Formats:  formats,
		})
	}
	return entries
}

// recordPlay is the fragment-list payload of the live-recording API.
type recordPlay struct {
	List []recordFragment `json:"list"`
	// Length in milliseconds.
	Length    *int64   `json:"length,omitempty"`
	CurrentQn *int     `json:"current_qn,omitempty"`
	QnDesc    []qnDesc `json:"qn_desc,omitempty"`
}

type recordFragment struct {
	URL  string `json:"url"`
	Size *int64 `json:"size,omitempty"`
	// Length in milliseconds.
	Length *int64 `json:"length,omitempty"`
}

type qnDesc struct {
	Qn   int    `json:"qn"`
	Desc string `json:"desc"`
}

func (r *recordPlay) classify() payloadKind {
	if r == nil || len(r.List) == 0 {
		return kindUnknown
	}
	return kindLiveFragmentList
}

// qualityLabel resolves the active quality id against the descriptor table.
func (r *recordPlay) qualityLabel() string {
	if r.CurrentQn == nil {
		return ""
	}
	for _, desc := range r.QnDesc {
		if desc.Qn == *r.CurrentQn {
			return desc.Desc
		}
	}
	return ""
}

// normalizeRecording converts a fragment-list payload into the single
// candidate of a segmented stream. The quality id doubles as a relative
// bitrate proxy; the container hint comes from the first fragment.
func normalizeRecording(r *recordPlay, manifestURL string) *media.Format {
	if r.classify() != kindLiveFragmentList {
		return nil
	}

	fragments := lo.Map(r.List, func(f recordFragment, _ int) *media.Fragment {
		var duration *float64
		if f.Length != nil {
			duration = lo.ToPtr(float64(*f.Length) / 1000)
		}
		return &media.Fragment{
			URL:      f.URL,
			FileSize: f.Size,
			Duration: duration,
		}
	})

	format := &media.Format{
		URL:       manifestURL,
		ID:        "fragments",
		Ext:       determineExt(fragments[0].URL),
		Note:      r.qualityLabel(),
		Fragments: fragments,
	}
	if r.CurrentQn != nil {
		format.VideoBitrate = lo.ToPtr(float64(*r.CurrentQn))
	}
	return format
}

// parseFrameRate handles both spellings the manifests use: a plain integer
// or a "numerator/denominator" fraction, rounded to the nearest integer.
// Absent or unparsable input yields nil.
func parseFrameRate(raw string) *int {
	if raw == "" {
		return nil
	}

	if num, den, ok := strings.Cut(raw, "/"); ok {
		n := util.FloatOrNil(num)
		d := util.FloatOrNil(den)
		if n == nil || d == nil || *d == 0 {
			return nil
		}
		return lo.ToPtr(int(math.Round(*n / *d)))
	}

	return util.IntOrNil(raw)
}

// approxFileSize estimates the byte count from bitrate (kbps) and duration (s).
func approxFileSize(bitrateKbps, durationSeconds *float64) *int64 {
	if bitrateKbps == nil || durationSeconds == nil {
		return nil
	}
	return lo.ToPtr(int64(*bitrateKbps * *durationSeconds * 1000 / 8))
}

// determineExt derives a container hint from a URL path, ignoring query noise.
func determineExt(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(path.Ext(parsed.Path), ".")
}
