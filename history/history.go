// Package history provides the implementation for tracking and persisting resolved pages.
package history

import (
	"time"

	"github.com/bilisan-cli/bilisan/filesystem"
	"github.com/bilisan-cli/bilisan/media"
	"github.com/bilisan-cli/bilisan/where"
	"github.com/metafates/gache"
)

// cacher provides an abstracted, disk-backed registry for resolution records.
var cacher = gache.New[map[string]*SavedResolution](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of historical resolution records from the persistent store.
func Get() (map[string]*SavedResolution, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedResolution), nil
	}
	return cached, nil
}

// Save persists one successful resolution to the history registry.
func Save(rawURL, extractorName string, result media.Result) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSavedResolution(rawURL, extractorName, result)
	record.Resolutions = 1
	record.ResolvedAt = time.Now().Unix()

	if existing, exists := saved[record.encode()]; exists {
		record.Resolutions = existing.Resolutions + 1
	}

	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Remove permanently deletes a specific resolution record from the history registry.
func Remove(record *SavedResolution) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.encode())
	return cacher.Set(saved)
}
