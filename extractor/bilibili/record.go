package bilibili

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bilisan-cli/bilisan/media"
	"github.com/samber/lo"
)

// recordInfo describes a live recording as returned by the info endpoint.
// The raw id arrives as either a string or a number depending on the
// endpoint revision.
type recordInfo struct {
	Rid            json.Number `json:"rid,omitempty"`
	Title          string      `json:"title,omitempty"`
	StartTimestamp *int64      `json:"start_timestamp,omitempty"`
}

// resolveRecord resolves a live recording in two steps: the recording id
// maps to its raw id and title, then the raw id maps to the fragment list
// and quality descriptors.
func (e *Extractor) resolveRecord(ctx context.Context, recordID string) (media.Result, error) {
	var infoResponse struct {
		Data struct {
			LiveRecordInfo *recordInfo `json:"live_record_info,omitempty"`
		} `json:"data"`
	}
	infoURL := fmt.Sprintf("%s/xlive/web-room/v1/record/getInfoByLiveRecord?rid=%s", e.liveBase, recordID)
	if err := e.fetchJSON(ctx, infoURL, nil, &infoResponse); err != nil {
		return nil, fmt.Errorf("record %s: %w", recordID, err)
	}
	info := infoResponse.Data.LiveRecordInfo
	if info == nil {
		return nil, fmt.Errorf("record %s: %w", recordID, ErrContentUnavailable)
	}

	var playResponse struct {
		Data *recordPlay `json:"data,omitempty"`
	}
	fragmentsURL := fmt.Sprintf("%s/xlive/web-room/v1/record/getLiveRecordUrl?rid=%s&platform=html5", e.liveBase, recordID)
	if err := e.fetchJSON(ctx, fragmentsURL, nil, &playResponse); err != nil {
		return nil, fmt.Errorf("record %s: %w", recordID, err)
	}

	format := normalizeRecording(playResponse.Data, fragmentsURL)
	if format == nil {
		return nil, fmt.Errorf("record %s: %w", recordID, ErrContentUnavailable)
	}

	entryID := recordID
	if info.Rid.String() != "" {
		entryID = info.Rid.String()
	}

	var duration *float64
	if playResponse.Data.Length != nil {
		duration = lo.ToPtr(float64(*playResponse.Data.Length) / 1000)
	}

	return &media.Entry{
		ID:        entryID,
		Title:     info.Title,
		Timestamp: info.StartTimestamp,
		Duration:  duration,
		Formats:   []*media.Format{format},
	}, nil
}
