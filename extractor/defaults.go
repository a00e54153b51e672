package extractor

import "github.com/bilisan-cli/bilisan/extractor/bilibili"

// RegisterDefaults populates the registry with every built-in resolver.
// Called once at startup, after configuration is loaded: resolvers read
// their settings at construction.
func RegisterDefaults() {
	Register(bilibili.New())
}
