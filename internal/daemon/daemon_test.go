package daemon

import (
	"strings"
	"testing"
	"time"
)

type staticConfig struct {
	apiKey     string
	syncFolder string
	interval   int
}

func (c *staticConfig) GetAPIKey() string             { return c.apiKey }
func (c *staticConfig) GetBaseURL() string            { return "https://keep.example.com/api/v1" }
func (c *staticConfig) GetSyncFolder() string         { return c.syncFolder }
func (c *staticConfig) GetAttachmentsFolder() string  { return c.syncFolder + "/attachments" }
func (c *staticConfig) GetSyncInterval() int          { return c.interval }
func (c *staticConfig) IsExcludeArchived() bool       { return true }
func (c *staticConfig) IsOnlyFavorites() bool         { return false }
func (c *staticConfig) GetExcludedTags() []string     { return nil }
func (c *staticConfig) IsUpdateExisting() bool        { return false }
func (c *staticConfig) IsBidirectionalNotes() bool    { return true }
func (c *staticConfig) IsExtractContent() bool        { return false }
func (c *staticConfig) GetLogPath() string            { return "" }
func (c *staticConfig) GetPidFile() string            { return "" }
func (c *staticConfig) GetLastSync() string           { return "" }
func (c *staticConfig) SetLastSync(time.Time) error   { return nil }

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *staticConfig
		wantErr string
	}{
		{
			name: "valid",
			cfg:  &staticConfig{apiKey: "key", syncFolder: "Karakeep", interval: 60},
		},
		{
			name:    "missing api key",
			cfg:     &staticConfig{syncFolder: "Karakeep", interval: 60},
			wantErr: "API key",
		},
		{
			name:    "missing sync folder",
			cfg:     &staticConfig{apiKey: "key", interval: 60},
			wantErr: "sync folder",
		},
		{
			name:    "zero interval",
			cfg:     &staticConfig{apiKey: "key", syncFolder: "Karakeep", interval: 0},
			wantErr: "sync interval",
		},
		{
			name:    "negative interval",
			cfg:     &staticConfig{apiKey: "key", syncFolder: "Karakeep", interval: -5},
			wantErr: "sync interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Daemon{cfg: tt.cfg}
			err := d.validateConfiguration()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateConfiguration() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateConfiguration() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
