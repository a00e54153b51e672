package bilibili

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bilisan-cli/bilisan/media"
)

// callAudioAPI queries the music service and unwraps its data envelope.
func (e *Extractor) callAudioAPI(ctx context.Context, path, sid string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{"sid": {sid}}
	}
	endpoint := fmt.Sprintf("%s/%s?%s", e.audioBase, path, query.Encode())
	return e.fetchJSON(ctx, endpoint, nil, out)
}

type audioSong struct {
	Title    string   `json:"title,omitempty"`
	Author   string   `json:"author,omitempty"`
	Intro    string   `json:"intro,omitempty"`
	Cover    string   `json:"cover,omitempty"`
	Uname    string   `json:"uname,omitempty"`
	UID      *int64   `json:"uid,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	Passtime *int64   `json:"passtime,omitempty"`
}

// resolveAudio resolves a single audio track: the play endpoint yields the
// CDN url and exact size, the song endpoint the shared metadata.
func (e *Extractor) resolveAudio(ctx context.Context, audioID string) (media.Result, error) {
	var playResponse struct {
		Data *struct {
			Cdns []string `json:"cdns"`
			Size *int64   `json:"size,omitempty"`
		} `json:"data,omitempty"`
	}
	if err := e.callAudioAPI(ctx, "url", audioID, nil, &playResponse); err != nil {
		return nil, fmt.Errorf("audio %s: %w", audioID, err)
	}
	if playResponse.Data == nil || len(playResponse.Data.Cdns) == 0 {
		return nil, fmt.Errorf("audio %s: %w", audioID, ErrContentUnavailable)
	}

	cdn := playResponse.Data.Cdns[0]
	ext := determineExt(cdn)
	if ext == "" {
		ext = "m4a"
	}
	format := &media.Format{
		URL:        cdn,
		ID:         "cdn",
		Ext:        ext,
		VideoCodec: media.CodecNone,
		FileSize:   playResponse.Data.Size,
	}

	var songResponse struct {
		Data *audioSong `json:"data,omitempty"`
	}
	if err := e.callAudioAPI(ctx, "song/info", audioID, nil, &songResponse); err != nil {
		return nil, fmt.Errorf("audio %s: %w", audioID, err)
	}

	entry := &media.Entry{
		ID:      audioID,
		Formats: []*media.Format{format},
	}
	if song := songResponse.Data; song != nil {
		entry.Title = song.Title
		entry.Description = song.Intro
		entry.Thumbnail = song.Cover
		entry.Uploader = song.Uname
		entry.Duration = song.Duration
		entry.Timestamp = song.Passtime
		if song.UID != nil {
			entry.UploaderID = strconv.FormatInt(*song.UID, 10)
		}
	}
	return entry, nil
}

// resolveAlbum turns an audio album into a playlist of lazily resolvable
// track links in menu order; albums carry no episode numbering.
func (e *Extractor) resolveAlbum(ctx context.Context, albumID string) (media.Result, error) {
	var songsResponse struct {
		Data *struct {
			Data []struct {
				ID    *int64 `json:"id,omitempty"`
				Title string `json:"title,omitempty"`
			} `json:"data"`
		} `json:"data,omitempty"`
	}
	query := url.Values{"sid": {albumID}, "pn": {"1"}, "ps": {"100"}}
	if err := e.callAudioAPI(ctx, "song/of-menu", albumID, query, &songsResponse); err != nil {
		return nil, fmt.Errorf("album %s: %w", albumID, err)
	}
	if songsResponse.Data == nil {
		return nil, fmt.Errorf("album %s: %w", albumID, ErrContentUnavailable)
	}

	var links []*media.Link
	for _, song := range songsResponse.Data.Data {
		if song.ID == nil {
			continue
		}
		links = append(links, &media.Link{
			URL:   fmt.Sprintf("https://www.bilibili.com/audio/au%d", *song.ID),
			Title: song.Title,
		})
	}

	playlist := &media.Playlist{ID: albumID, Links: links}

	var menuResponse struct {
		Data *struct {
			Title string `json:"title,omitempty"`
			Intro string `json:"intro,omitempty"`
		} `json:"data,omitempty"`
	}
	if err := e.callAudioAPI(ctx, "menu/info", albumID, nil, &menuResponse); err == nil && menuResponse.Data != nil {
		playlist.Title = menuResponse.Data.Title
		playlist.Description = menuResponse.Data.Intro
	}
	return playlist, nil
}
