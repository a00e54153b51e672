// Package media defines the domain models for resolved streams: formats, entries, and composite results.
package media

import (
	"context"
	"sync"
)

// Link is a reference to another page resolvable by the same system.
// Playlist-style results carry links instead of entries so that members are
// only resolved when actually wanted.
type Link struct {
	URL string `json:"url"`
	// Title of the member as listed by the index, when known.
	Title string `json:"title,omitempty"`
	// EpisodeNumber orders the playlist; nil when the index carries no usable number.
	EpisodeNumber *int   `json:"episode_number,omitempty"`
	Timestamp     *int64 `json:"timestamp,omitempty"`
}

// Playlist is an ordered collection of lazily resolvable links sharing one parent identity.
type Playlist struct {
	ID          string  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Links       []*Link `json:"entries"`
}

// ResultID implements Result.
func (p *Playlist) ResultID() string { return p.ID }

// ResolveFunc resolves one playlist link into a concrete result.
type ResolveFunc func(ctx context.Context, link *Link) (Result, error)

// ResolveAll resolves every link concurrently, bounded by limit, and returns
// results in link order regardless of completion order. The first failure
// cancels the remaining in-flight resolutions and is returned; partial
// results are discarded.
func ResolveAll(ctx context.Context, links []*Link, limit int, resolve ResolveFunc) ([]Result, error) {
	if limit < 1 {
		limit = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, limit)
		results  = make([]Result, len(links))
		errOnce  sync.Once
		firstErr error
	)

	for idx, link := range links {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, context.Cause(ctx)
		}

		wg.Add(1)
		go func(idx int, link *Link) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := resolve(ctx, link)
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			results[idx] = result
		}(idx, link)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
