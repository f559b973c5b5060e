package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	if c.BaseURL != "https://try.karakeep.app/api/v1" {
		t.Errorf("BaseURL = %q", c.BaseURL)
	}
	if c.SyncFolder != "Karakeep" {
		t.Errorf("SyncFolder = %q", c.SyncFolder)
	}
	if c.SyncIntervalMinutes != 60 {
		t.Errorf("SyncIntervalMinutes = %d, want 60", c.SyncIntervalMinutes)
	}
	if !c.ExcludeArchived {
		t.Error("ExcludeArchived should default to true")
	}
	if !c.BidirectionalNotes {
		t.Error("BidirectionalNotes should default to true")
	}
	if c.UpdateExistingFiles {
		t.Error("UpdateExistingFiles should default to false")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "KeepsyncConfig.json")

	c := NewConfig()
	c.APIKey = "test-key"
	c.BaseURL = "https://keep.example.com/api/v1/"
	c.ExcludedTags = []string{"draft", "private"}
	if err := Save(*c, filename); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(filename)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.APIKey != "test-key" {
		t.Errorf("APIKey = %q", loaded.APIKey)
	}
	if loaded.BaseURL != "https://keep.example.com/api/v1" {
		t.Errorf("BaseURL = %q, trailing slash should be stripped", loaded.BaseURL)
	}
	if len(loaded.ExcludedTags) != 2 || loaded.ExcludedTags[0] != "draft" {
		t.Errorf("ExcludedTags = %v", loaded.ExcludedTags)
	}
	if loaded.LogPath == "" || loaded.PidFile == "" {
		t.Error("daemon defaults were not filled in on load")
	}
}

func TestSetLastSyncPersists(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "KeepsyncConfig.json")

	c := NewConfig()
	if err := Save(*c, filename); err != nil {
		t.Fatalf("Save: %v", err)
	}

	provider, err := LoadProvider(filename)
	if err != nil {
		t.Fatalf("LoadProvider: %v", err)
	}

	when := time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)
	if err := provider.SetLastSync(when); err != nil {
		t.Fatalf("SetLastSync: %v", err)
	}

	reloaded, err := Load(filename)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.LastSync != "2024-01-05T10:30:00Z" {
		t.Errorf("LastSync = %q", reloaded.LastSync)
	}
}
