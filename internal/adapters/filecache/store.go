// Package filecache persists the calendar cache as a single JSON document on
// disk. The file is the durable source of truth: writes go to a temp file and
// are renamed into place, and the previous file is kept as a timestamped
// backup, so readers never observe a partial write.
package filecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/yichenzhou/farepass/internal/core/domain"
	"github.com/yichenzhou/farepass/internal/pkg/metrics"
)

const filePermissions = 0o644

// Store implements ports.CalendarStore on a single JSON file.
type Store struct {
	path string
}

// New creates a Store at the given file path, creating parent directories
// as needed.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("cache file path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Load reads and validates the persisted cache. A missing file maps to
// domain.ErrCacheNotFound; anything undecodable or structurally wrong maps
// to domain.ErrCorruptCache so callers can treat it as not found.
func (s *Store) Load(_ context.Context) (*domain.CalendarCache, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheNotFound
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var cache domain.CalendarCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptCache, err)
	}
	if cache.Metadata.Version == "" || cache.Metadata.LastUpdated.IsZero() {
		return nil, fmt.Errorf("%w: missing metadata", domain.ErrCorruptCache)
	}
	if cache.Entries == nil {
		return nil, fmt.Errorf("%w: entries missing", domain.ErrCorruptCache)
	}

	metrics.CacheStoreOps.WithLabelValues("load").Inc()
	return &cache, nil
}

// Save writes the cache crash-safely: marshal, write a temp file alongside,
// preserve the previous file as <path>.backup.<epoch-ms>.json (best-effort),
// then rename the temp file over the live one. The live file is never
// truncated in place.
func (s *Store) Save(_ context.Context, cache *domain.CalendarCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, filePermissions); err != nil {
		return fmt.Errorf("write cache temp file: %w", err)
	}

	// New content is safely on disk; keep the old file around before we
	// replace it. Backup failure must not block the save.
	if _, err := os.Stat(s.path); err == nil {
		backup := fmt.Sprintf("%s.backup.%d.json", s.path, time.Now().UnixMilli())
		if err := os.Rename(s.path, backup); err != nil {
			slog.Warn("calendar cache backup failed", "backup", backup, "error", err)
		}
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}

	metrics.CacheStoreOps.WithLabelValues("save").Inc()
	return nil
}

// Path returns the live cache file location, for health reporting.
func (s *Store) Path() string {
	return s.path
}
