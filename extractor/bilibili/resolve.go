package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/bilisan-cli/bilisan/log"
	"github.com/bilisan-cli/bilisan/media"
	"github.com/samber/lo"
)

// renditions are the legacy playurl query templates, tried in fixed
// fallback order. Later renditions are fallbacks for earlier ones, never
// alternatives to merge.
var renditions = []string{
	"qn=80&quality=80&type=",
	"quality=2&type=mp4",
}

// resolveVideo implements the multi-source resolution of a video page: the
// signed legacy API (authoritative for part boundaries when it answers) and
// the page-embedded manifest (authoritative only when legacy is absent).
func (e *Extractor) resolveVideo(ctx context.Context, pageURL string, groups map[string]string) (media.Result, error) {
	videoID := lo.CoalesceOrEmpty(groups["aid"], groups["epid"], groups["bvid"])

	page, err := e.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	playinfo := extractPlayinfo(page)

	var cid string
	if groups["anime"] == "" {
		cid, err = extractCid(page)
	} else {
		cid, err = e.episodeCid(ctx, pageURL, videoID)
	}
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	entries, lastInfo, err := e.legacyEntries(ctx, pageURL, cid)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	// Asymmetric merge: legacy part boundaries win. The manifest's
	// candidates become extra variants of the first part, or the sole
	// entry when legacy produced nothing.
	if manifestEntry := normalizeDash(playinfo); manifestEntry != nil {
		if len(entries) > 0 {
			entries[0].Formats = append(entries[0].Formats, manifestEntry.Formats...)
		} else {
			entries = append(entries, manifestEntry)
		}
	}

	if len(entries) == 0 {
		if apiErr := lastInfo.apiError(); apiErr != nil {
			return nil, fmt.Errorf("video %s: %w", videoID, apiErr)
		}
		return nil, fmt.Errorf("video %s: %w", videoID, ErrContentUnavailable)
	}

	meta := pageMetadata(page)
	if lastInfo != nil {
		meta.Duration = lastInfo.duration()
	}
	for _, entry := range entries {
		*entry = meta.Apply(*entry)
	}

	return media.Compose(videoID, meta.Title, meta.Description, entries), nil
}

// legacyEntries walks the rendition fallback chain against the signed
// playurl API. Non-terminal failures are absorbed and logged; a transport
// or decode failure on the last rendition is surfaced. A rendition that
// answers without multi-part data ends the chain empty-handed, leaving the
// final payload for error reporting.
func (e *Extractor) legacyEntries(ctx context.Context, pageURL, cid string) ([]*media.Entry, *playInfo, error) {
	headers := map[string]string{"Referer": pageURL}

	var lastInfo *playInfo
	for num, rendition := range renditions {
		fatal := num == len(renditions)-1

		payload := Query(
			Param{"appkey", e.signer.AppKey},
			Param{"cid", cid},
			Param{"otype", "json"},
		) + "&" + rendition
		requestURL := e.apiBase + "/v2/playurl?" + e.signer.SignedQuery(payload)

		info := new(playInfo)
		if err := e.fetchJSON(ctx, requestURL, headers, info); err != nil {
			if fatal {
				return nil, lastInfo, err
			}
			log.Warnf("bilibili: rendition %d failed, trying next: %v", num+1, err)
			continue
		}
		lastInfo = info

		if info.classify() != kindLegacyMultiPart {
			if !fatal {
				log.Debugf("bilibili: rendition %d returned no durl, trying next", num+1)
			}
			continue
		}

		// First usable rendition wins; renditions are never merged.
		return normalizeDurl(info, pageURL), lastInfo, nil
	}

	return nil, lastInfo, nil
}

// episodeCid resolves a bangumi episode id to its content id through the
// episode source endpoint; page markup does not carry it for anime pages.
func (e *Extractor) episodeCid(ctx context.Context, pageURL, episodeID string) (string, error) {
	var response struct {
		Code    *int   `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Result  *struct {
			Cid json.Number `json:"cid"`
		} `json:"result,omitempty"`
	}

	form := url.Values{"episode_id": {episodeID}}
	headers := map[string]string{"Referer": pageURL}
	endpoint := e.bangumiBase + "/web_api/get_source"
	if err := e.postFormJSON(ctx, endpoint, form, headers, &response); err != nil {
		return "", err
	}

	if response.Result == nil {
		if response.Message != "" {
			return "", &APIError{Message: response.Message}
		}
		if response.Code != nil {
			return "", &APIError{Code: *response.Code}
		}
		return "", fmt.Errorf("unable to extract episode source")
	}

	return response.Result.Cid.String(), nil
}
