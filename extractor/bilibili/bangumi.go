package bilibili

import (
	"context"
	"fmt"

	"github.com/bilisan-cli/bilisan/internal/cache"
	"github.com/bilisan-cli/bilisan/media"
	"github.com/bilisan-cli/bilisan/util"
	"github.com/samber/lo"
)

// seasonInfo is the season index payload. The endpoint sometimes answers
// with a JSONP wrapper; fetchJSONP strips it.
type seasonInfo struct {
	BangumiTitle string          `json:"bangumi_title,omitempty"`
	Evaluate     string          `json:"evaluate,omitempty"`
	Episodes     []seasonEpisode `json:"episodes"`
}

type seasonEpisode struct {
	WebplayURL string `json:"webplay_url"`
	IndexTitle string `json:"index_title,omitempty"`
	Index      string `json:"index,omitempty"`
	UpdateTime string `json:"update_time,omitempty"`
}

// resolveSeason turns a season listing into a playlist of lazily resolvable
// episode links, ordered by episode number with unnumbered entries last.
func (e *Extractor) resolveSeason(ctx context.Context, seasonID string) (media.Result, error) {
	cacheKey := cache.GenerateKey(seasonID, "season")

	var info seasonInfo
	if !cache.Read(cacheKey, &info) {
		var response struct {
			Result *seasonInfo `json:"result,omitempty"`
		}
		endpoint := fmt.Sprintf("%s/jsonp/seasoninfo/%s.ver", e.bangumiBase, seasonID)
		if err := e.fetchJSONP(ctx, endpoint, &response); err != nil {
			return nil, fmt.Errorf("season %s: %w", seasonID, err)
		}
		if response.Result == nil {
			return nil, fmt.Errorf("season %s: %w", seasonID, ErrContentUnavailable)
		}
		info = *response.Result
		_ = cache.Write(cacheKey, info)
	}

	links := lo.Map(info.Episodes, func(episode seasonEpisode, _ int) *media.Link {
		return &media.Link{
			URL:           episode.WebplayURL,
			Title:         episode.IndexTitle,
			EpisodeNumber: util.IntOrNil(episode.Index),
			Timestamp:     parseTimestamp(episode.UpdateTime),
		}
	})

	media.SortLinks(links)

	return &media.Playlist{
		ID:          seasonID,
		Title:       info.BangumiTitle,
		Description: info.Evaluate,
		Links:       links,
	}, nil
}

// Expand resolves every link of a playlist through this extractor, bounded
// by limit concurrent resolutions, and flattens the results into a
// composite in playlist order.
func (e *Extractor) Expand(ctx context.Context, playlist *media.Playlist, limit int) (*media.Composite, error) {
	results, err := media.ResolveAll(ctx, playlist.Links, limit, func(ctx context.Context, link *media.Link) (media.Result, error) {
		return e.Resolve(ctx, link.URL)
	})
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", playlist.ID, err)
	}

	var entries []*media.Entry
	for _, result := range results {
		switch r := result.(type) {
		case *media.Entry:
			entries = append(entries, r)
		case *media.Composite:
			entries = append(entries, r.Entries...)
		}
	}

	return &media.Composite{
		ID:          playlist.ID,
		Title:       playlist.Title,
		Description: playlist.Description,
		Entries:     entries,
	}, nil
}
