// Package extractor manages the registry of page resolvers and routes URLs to the one that can handle them.
package extractor

import (
	"context"
	"fmt"

	"github.com/bilisan-cli/bilisan/media"
)

// Extractor defines the required capabilities of a page resolver.
type Extractor interface {
	// Name returns the unique identifier of the resolver.
	Name() string

	// Suitable reports whether the resolver recognizes the given URL.
	Suitable(rawURL string) bool

	// Resolve turns a recognized page URL into a concrete result.
	Resolve(ctx context.Context, rawURL string) (media.Result, error)
}

var registry []Extractor

// Register adds a resolver to the global registry. Resolvers are consulted
// in registration order.
func Register(e Extractor) {
	registry = append(registry, e)
}

// Find returns the first registered resolver that recognizes the URL.
func Find(rawURL string) (Extractor, bool) {
	for _, e := range registry {
		if e.Suitable(rawURL) {
			return e, true
		}
	}
	return nil, false
}

// Resolve routes the URL to its resolver and executes the resolution.
func Resolve(ctx context.Context, rawURL string) (media.Result, error) {
	e, ok := Find(rawURL)
	if !ok {
		return nil, fmt.Errorf("no extractor recognizes %q", rawURL)
	}
	return e.Resolve(ctx, rawURL)
}
