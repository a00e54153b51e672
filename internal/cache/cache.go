// Package cache provides localized filesystem-based caching for transient provider index responses.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/bilisan-cli/bilisan/filesystem"
	"github.com/bilisan-cli/bilisan/key"
	"github.com/bilisan-cli/bilisan/where"
	"github.com/spf13/viper"
)

// TTL bounds the lifetime of any cached index. Season and channel listings
// change rarely; a week keeps repeat resolutions cheap without going stale.
const TTL = 7 * 24 * time.Hour

// GenerateKey generates a deterministic SHA-256 hash from an identifier and namespace pair for use as a cache filename.
func GenerateKey(id, namespace string) string {
	sanitized := strings.ToLower(strings.ReplaceAll(id, " ", "")) + namespace
	hash := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(hash[:])
}

// Read attempts to retrieve and deserialize a cached object if caching is
// enabled and the entry has not exceeded its TTL.
func Read(k string, target interface{}) bool {
	if !viper.GetBool(key.CacheEnabled) {
		return false
	}

	path := filepath.Join(where.Cache(), k)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	content, err := filesystem.API().ReadFile(path)
	if err != nil {
		return false
	}

	return json.Unmarshal(content, target) == nil
}

// Write persists a serializable object to the cache using an atomic file swap.
func Write(k string, data interface{}) error {
	if !viper.GetBool(key.CacheEnabled) {
		return nil
	}

	path := filepath.Join(where.Cache(), k)
	tmpPath := path + ".tmp"

	content, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := filesystem.API().WriteFile(tmpPath, content, 0644); err != nil {
		return err
	}

	return filesystem.API().Rename(tmpPath, path)
}

// CollectGarbage initializes an asynchronous background task to prune expired cache entries from the filesystem.
func CollectGarbage() {
	go func() {
		dir := where.Cache()
		entries, err := filesystem.API().ReadDir(dir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if time.Since(entry.ModTime()) > TTL {
				_ = filesystem.API().Remove(filepath.Join(dir, entry.Name()))
			}
		}
	}()
}
