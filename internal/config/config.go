package config

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path"
	"strconv"
	"strings"

	"github.com/keepsync/keepsync/util"
)

type config struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`

	SyncFolder        string `json:"sync_folder"`
	AttachmentsFolder string `json:"attachments_folder"`

	SyncIntervalMinutes int      `json:"sync_interval_minutes"`
	ExcludeArchived     bool     `json:"exclude_archived"`
	OnlyFavorites       bool     `json:"only_favorites"`
	ExcludedTags        []string `json:"excluded_tags"`
	UpdateExistingFiles bool     `json:"update_existing_files"`
	BidirectionalNotes  bool     `json:"bidirectional_notes"`
	ExtractContent      bool     `json:"extract_content"`

	LogPath  string `json:"log_path"`
	PidFile  string `json:"pid_file"`
	LastSync string `json:"last_sync"`
}

const XdgConfigHome = "XDG_CONFIG_HOME"
const ConfigFolderName = "keepsync"

func DefaultConfigPath() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("couldn't get current user: %w", err)
	}
	xdgConfigHome := os.Getenv(XdgConfigHome)
	var configFolder string
	if len(xdgConfigHome) == 0 {
		configFolder = path.Join(user.HomeDir, ".config")
		configFolder = path.Join(configFolder, ConfigFolderName)
	} else {
		configFolder = path.Join(xdgConfigHome, ConfigFolderName)
	}
	if err := os.MkdirAll(configFolder, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return path.Join(configFolder, "KeepsyncConfig.json"), nil
}

func SetDaemonDefaults(c *config) error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := path.Dir(configPath)

	if c.LogPath == "" {
		c.LogPath = path.Join(configDir, "keepsync.log")
	}
	if c.PidFile == "" {
		c.PidFile = path.Join(configDir, "keepsync.pid")
	}

	return nil
}

func exists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

func NewConfig() *config {
	config := config{}
	config.BaseURL = "https://try.karakeep.app/api/v1"
	config.SyncFolder = "Karakeep"
	config.AttachmentsFolder = path.Join("Karakeep", "attachments")
	config.SyncIntervalMinutes = 60
	config.ExcludeArchived = true
	config.OnlyFavorites = false
	config.UpdateExistingFiles = false
	config.BidirectionalNotes = true
	config.ExtractContent = false
	return &config
}

func CreateConfig() (*config, error) {
	util.CyanBold.Println("CONFIGURE KEEPSYNC")

	configuration := NewConfig()
	util.Cyan.Printf("Karakeep API base URL (default %s) : ", configuration.BaseURL)
	if baseURL := util.ScanlineTrim(); baseURL != "" {
		configuration.BaseURL = strings.TrimRight(baseURL, "/")
	}

	util.Cyan.Printf("Karakeep API key (created under Settings > API Keys) : ")
	configuration.APIKey = util.ScanlineTrim()

	util.Cyan.Printf("Vault folder for synced bookmarks (default %s) : ", configuration.SyncFolder)
	if folder := util.ScanlineTrim(); folder != "" {
		configuration.SyncFolder = folder
		configuration.AttachmentsFolder = path.Join(folder, "attachments")
	}

	util.Cyan.Printf("Sync interval in minutes (default %d) : ", configuration.SyncIntervalMinutes)
	if intervalStr := util.ScanlineTrim(); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			configuration.SyncIntervalMinutes = interval
		}
	}

	util.Cyan.Printf("Tags to exclude from sync, comma separated (empty is ok) : ")
	if tagsStr := util.ScanlineTrim(); tagsStr != "" {
		for _, tag := range strings.Split(tagsStr, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				configuration.ExcludedTags = append(configuration.ExcludedTags, tag)
			}
		}
	}

	return configuration, nil
}

func handleCreation(filename string) error {
	util.Red.Println("Configuration file doesn't exist\n Answer next few questions to create config file")
	configuration, err := CreateConfig()
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}
	err = Save(*configuration, filename)
	if err != nil {
		util.Red.Println("Error while writing config to ", filename, err)
		return err
	}
	util.Green.Printf("Config created successfully and stored at %s, you can directly edit it later on \n", filename)
	return nil
}

func LoadProvider(filename string) (ConfigProvider, error) {
	cfg, err := Load(filename)
	if err != nil {
		return nil, err
	}
	return NewConfigProvider(&cfg, filename), nil
}

func Load(filename string) (config, error) {
	if !exists(filename) {
		err := handleCreation(filename)
		if err != nil {
			return config{}, err
		}
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		util.Red.Println("Error reading config ", err)
		return config{}, err
	}
	var c config
	err = json.Unmarshal(data, &c)
	if err != nil {
		util.Red.Println("Error converting config to json ", err)
		return config{}, err
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if err := SetDaemonDefaults(&c); err != nil {
		util.Red.Println("Error setting daemon defaults: ", err)
		return config{}, err
	}

	return c, nil
}

// Configure runs the interactive setup flow, creating the config file when it
// is missing and offering to update sync settings when it exists.
func Configure(filename string) error {
	if !exists(filename) {
		util.CyanBold.Println("Creating new configuration...")
		return handleCreation(filename)
	}

	util.CyanBold.Println("Updating existing configuration...")
	cfg, err := Load(filename)
	if err != nil {
		return err
	}

	util.Cyan.Println("\nCurrent sync settings:")
	util.Cyan.Printf("Base URL: %s\n", cfg.BaseURL)
	util.Cyan.Printf("Sync folder: %s\n", cfg.SyncFolder)
	util.Cyan.Printf("Sync interval: %d minutes\n", cfg.SyncIntervalMinutes)
	util.Cyan.Printf("Excluded tags: %s\n", strings.Join(cfg.ExcludedTags, ", "))

	util.CyanBold.Println("\nUpdate sync configuration? (y/n):")
	response := util.ScanlineTrim()
	if response != "y" && response != "Y" && response != "yes" {
		return nil
	}

	util.Cyan.Printf("Karakeep API key (current kept if empty) : ")
	if key := util.ScanlineTrim(); key != "" {
		cfg.APIKey = key
	}

	util.Cyan.Printf("Vault folder for synced bookmarks (current: %s) : ", cfg.SyncFolder)
	if folder := util.ScanlineTrim(); folder != "" {
		cfg.SyncFolder = folder
		cfg.AttachmentsFolder = path.Join(folder, "attachments")
	}

	util.Cyan.Printf("Sync interval in minutes (current: %d) : ", cfg.SyncIntervalMinutes)
	if intervalStr := util.ScanlineTrim(); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			cfg.SyncIntervalMinutes = interval
		}
	}

	if err := Save(cfg, filename); err != nil {
		return err
	}
	util.Green.Println("Configuration updated successfully!")
	return nil
}

func Save(c config, filename string) error {
	data, err := json.MarshalIndent(c, "", "	")
	if err != nil {
		util.Red.Println("Error parsing configuration for writing")
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
