package config

import "time"

// ConfigProvider defines the interface for configuration access
type ConfigProvider interface {
	GetAPIKey() string
	GetBaseURL() string
	GetSyncFolder() string
	GetAttachmentsFolder() string
	GetSyncInterval() int
	IsExcludeArchived() bool
	IsOnlyFavorites() bool
	GetExcludedTags() []string
	IsUpdateExisting() bool
	IsBidirectionalNotes() bool
	IsExtractContent() bool
	GetLogPath() string
	GetPidFile() string
	GetLastSync() string

	// SetLastSync records the completion time of a sync pass back into the
	// config file. Display-only state, failures are non-fatal to a pass.
	SetLastSync(t time.Time) error
}

// ConfigImpl implements ConfigProvider interface
type ConfigImpl struct {
	cfg  *config
	path string
}

// NewConfigProvider creates a new ConfigProvider instance
func NewConfigProvider(cfg *config, path string) ConfigProvider {
	return &ConfigImpl{cfg: cfg, path: path}
}

func (c *ConfigImpl) GetAPIKey() string {
	return c.cfg.APIKey
}

func (c *ConfigImpl) GetBaseURL() string {
	return c.cfg.BaseURL
}

func (c *ConfigImpl) GetSyncFolder() string {
	return c.cfg.SyncFolder
}

func (c *ConfigImpl) GetAttachmentsFolder() string {
	return c.cfg.AttachmentsFolder
}

func (c *ConfigImpl) GetSyncInterval() int {
	return c.cfg.SyncIntervalMinutes
}

func (c *ConfigImpl) IsExcludeArchived() bool {
	return c.cfg.ExcludeArchived
}

func (c *ConfigImpl) IsOnlyFavorites() bool {
	return c.cfg.OnlyFavorites
}

func (c *ConfigImpl) GetExcludedTags() []string {
	return c.cfg.ExcludedTags
}

func (c *ConfigImpl) IsUpdateExisting() bool {
	return c.cfg.UpdateExistingFiles
}

func (c *ConfigImpl) IsBidirectionalNotes() bool {
	return c.cfg.BidirectionalNotes
}

func (c *ConfigImpl) IsExtractContent() bool {
	return c.cfg.ExtractContent
}

func (c *ConfigImpl) GetLogPath() string {
	return c.cfg.LogPath
}

func (c *ConfigImpl) GetPidFile() string {
	return c.cfg.PidFile
}

func (c *ConfigImpl) GetLastSync() string {
	return c.cfg.LastSync
}

func (c *ConfigImpl) SetLastSync(t time.Time) error {
	c.cfg.LastSync = t.Format(time.RFC3339)
	return Save(*c.cfg, c.path)
}
