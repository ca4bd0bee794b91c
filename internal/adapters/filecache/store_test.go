package filecache_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yichenzhou/farepass/internal/adapters/filecache"
	"github.com/yichenzhou/farepass/internal/core/domain"
)

func testCache(years ...int) *domain.CalendarCache {
	cache := &domain.CalendarCache{
		Metadata: domain.CacheMetadata{
			Version:      domain.CacheVersion,
			LastUpdated:  time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC),
			Source:       "test",
			YearsCovered: years,
		},
		Entries: []domain.CalendarEntry{
			{Date: "2024-10-01", IsHoliday: true, Name: "国庆节"},
			{Date: "2024-10-12", IsWorkingDay: true, Description: "compensatory working day"},
		},
	}
	return cache
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	store, err := filecache.New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Save(context.Background(), testCache(2024)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Metadata.Version != domain.CacheVersion || got.Metadata.Source != "test" {
		t.Errorf("unexpected metadata: %+v", got.Metadata)
	}
	if len(got.Entries) != 2 || got.Entries[0].Name != "国庆节" {
		t.Errorf("unexpected entries: %+v", got.Entries)
	}
	if !got.Metadata.Covers(2024) || got.Metadata.Covers(2025) {
		t.Errorf("unexpected coverage: %v", got.Metadata.YearsCovered)
	}
}

func TestStore_MissingFile(t *testing.T) {
	store, err := filecache.New(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrCacheNotFound) {
		t.Fatalf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"metadata": {`},
		{"missing metadata", `{"entries": []}`},
		{"missing entries", `{"metadata": {"version": "1.0", "last_updated": "2024-10-15T12:00:00Z"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".json")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			store, err := filecache.New(path)
			if err != nil {
				t.Fatalf("new store: %v", err)
			}
			if _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrCorruptCache) {
				t.Fatalf("expected ErrCorruptCache, got %v", err)
			}
		})
	}
}

func TestStore_BackupOnOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calendar.json")
	store, err := filecache.New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Save(context.Background(), testCache(2024)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.Save(context.Background(), testCache(2024, 2025)); err != nil {
		t.Fatalf("second save: %v", err)
	}

	backups, err := filepath.Glob(path + ".backup.*.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected one backup after an overwrite, found %v", backups)
	}

	// The live file carries the newer coverage, the backup the older.
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Metadata.Covers(2025) {
		t.Errorf("live file should hold the latest save: %v", got.Metadata.YearsCovered)
	}

	old, err := filecache.New(backups[0])
	if err != nil {
		t.Fatal(err)
	}
	prev, err := old.Load(context.Background())
	if err != nil {
		t.Fatalf("load backup: %v", err)
	}
	if prev.Metadata.Covers(2025) {
		t.Errorf("backup should hold the previous save: %v", prev.Metadata.YearsCovered)
	}

	// No stray temp file once the rename completed.
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp file left behind after save")
	}
}

func TestStore_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "calendar.json")
	store, err := filecache.New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save(context.Background(), testCache(2024)); err != nil {
		t.Fatalf("save into created directories: %v", err)
	}
	if store.Path() != path {
		t.Errorf("unexpected path %s", store.Path())
	}
}

func TestStore_EmptyPathRejected(t *testing.T) {
	if _, err := filecache.New(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
