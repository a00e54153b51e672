package bilibili

import (
	"context"
	"fmt"

	"github.com/bilisan-cli/bilisan/media"
)

const channelPageSize = 30

type channelVideo struct {
	Bvid        string `json:"bvid"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Created     *int64 `json:"created,omitempty"`
}

// resolveChannel pages through a member's uploaded videos and collects
// them into a playlist of lazily resolvable links. The API reports the
// total count; paging stops once we have it all or a page comes back
// empty.
func (e *Extractor) resolveChannel(ctx context.Context, memberID string) (media.Result, error) {
	var links []*media.Link
	total := -1

	for page := 1; ; page++ {
		var response struct {
			Data *struct {
				List *struct {
					Vlist []channelVideo `json:"vlist"`
				} `json:"list,omitempty"`
				Page *struct {
					Count int `json:"count"`
				} `json:"page,omitempty"`
			} `json:"data,omitempty"`
		}

		endpoint := fmt.Sprintf("%s/x/space/arc/search?mid=%s&ps=%d&pn=%d",
			e.spaceBase, memberID, channelPageSize, page)
		if err := e.fetchJSON(ctx, endpoint, nil, &response); err != nil {
			return nil, fmt.Errorf("channel %s: %w", memberID, err)
		}
		if response.Data == nil || response.Data.List == nil {
			break
		}
		if response.Data.Page != nil {
			total = response.Data.Page.Count
		}

		videos := response.Data.List.Vlist
		if len(videos) == 0 {
			break
		}
		for _, video := range videos {
			if video.Bvid == "" {
				continue
			}
			links = append(links, &media.Link{
				URL:       fmt.Sprintf("https://www.bilibili.com/video/%s", video.Bvid),
				Title:     video.Title,
				Timestamp: video.Created,
			})
		}
		if total >= 0 && len(links) >= total {
			break
		}
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("channel %s: %w", memberID, ErrContentUnavailable)
	}
	return &media.Playlist{
		ID:    memberID,
		Title: fmt.Sprintf("Channel %s", memberID),
		Links: links,
	}, nil
}
