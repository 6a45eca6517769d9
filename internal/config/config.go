package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	SearchEndpoint    string        `json:"search_endpoint"`
	SearchEntity      string        `json:"search_entity"`
	SearchLimit       int           `json:"search_limit"`
	SearchTimeout     Duration      `json:"search_timeout"`
	PopularTerm       string        `json:"popular_term"`
	Breakpoint        int           `json:"breakpoint_px"`
	CellWidth         int           `json:"cell_width_px"`
	GridArtworkSize   string        `json:"grid_artwork_size"`
	DetailArtworkSize string        `json:"detail_artwork_size"`
	DefaultVolume     float64       `json:"default_volume"`
	SeekStep          float64       `json:"seek_step_percent"`
	Transcoder        string        `json:"transcoder"`
	Theme             string        `json:"theme"`
	KeyBindings       KeyMap        `json:"key_bindings"`
	DataDir           string        `json:"data_dir"`
	LogFile           string        `json:"log_file"`
	LogLevel          string        `json:"log_level"`
	MetricsAddr       string        `json:"metrics_addr"`
}

// Duration is a time.Duration written as a Go duration string ("5s")
type Duration struct {
	time.Duration
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. An empty string is zero.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string such as \"5s\": %w", err)
	}
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// KeyMap defines keyboard shortcuts
type KeyMap struct {
	PlayPause   string `json:"play_pause"`
	Next        string `json:"next"`
	Previous    string `json:"previous"`
	VolumeUp    string `json:"volume_up"`
	VolumeDown  string `json:"volume_down"`
	SeekForward string `json:"seek_forward"`
	SeekBack    string `json:"seek_back"`
	Back        string `json:"back"`
	Quit        string `json:"quit"`
	Search      string `json:"search"`
	Focus       string `json:"focus"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		SearchEndpoint:    "https://itunes.apple.com/search",
		SearchEntity:      "song",
		SearchLimit:       20,
		PopularTerm:       "The Weeknd",
		Breakpoint:        900,
		CellWidth:         8,
		GridArtworkSize:   "400x400",
		DetailArtworkSize: "600x600",
		DefaultVolume:     0.5,
		SeekStep:          5,
		Transcoder:        "ffmpeg",
		Theme:             "dark",
		DataDir:           "./data",
		LogLevel:          "info",
		KeyBindings: KeyMap{
			PlayPause:   " ",
			Next:        "n",
			Previous:    "p",
			VolumeUp:    "+",
			VolumeDown:  "-",
			SeekForward: "right",
			SeekBack:    "left",
			Back:        "b",
			Quit:        "q",
			Search:      "/",
			Focus:       "tab",
		},
	}
}

// LoadConfig reads and unmarshals configuration from file.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists,
// then applies environment overrides and validates the result.
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Save default config if file didn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(config, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadDotEnv loads variables from path. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// ApplyEnv overrides file values with PREVIEW_PLAYER_* variables
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"PREVIEW_PLAYER_SEARCH_ENDPOINT": &c.SearchEndpoint,
		"PREVIEW_PLAYER_POPULAR_TERM":    &c.PopularTerm,
		"PREVIEW_PLAYER_TRANSCODER":      &c.Transcoder,
		"PREVIEW_PLAYER_DATA_DIR":        &c.DataDir,
		"PREVIEW_PLAYER_LOG_FILE":        &c.LogFile,
		"PREVIEW_PLAYER_LOG_LEVEL":       &c.LogLevel,
		"PREVIEW_PLAYER_METRICS_ADDR":    &c.MetricsAddr,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("PREVIEW_PLAYER_SEARCH_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PREVIEW_PLAYER_SEARCH_LIMIT %q: %w", v, err)
		}
		c.SearchLimit = n
	}
	if v, ok := os.LookupEnv("PREVIEW_PLAYER_SEARCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PREVIEW_PLAYER_SEARCH_TIMEOUT %q: %w", v, err)
		}
		c.SearchTimeout = Duration{d}
	}
	return nil
}

// Validate rejects values the player cannot work with
func (c *Config) Validate() error {
	switch {
	case c.SearchEndpoint == "":
		return fmt.Errorf("search_endpoint must be set")
	case c.SearchLimit <= 0:
		return fmt.Errorf("search_limit must be positive, got %d", c.SearchLimit)
	case c.SearchTimeout.Duration < 0:
		return fmt.Errorf("search_timeout must not be negative")
	case c.Breakpoint <= 0:
		return fmt.Errorf("breakpoint_px must be positive, got %d", c.Breakpoint)
	case c.CellWidth <= 0:
		return fmt.Errorf("cell_width_px must be positive, got %d", c.CellWidth)
	case c.DefaultVolume < 0 || c.DefaultVolume > 1:
		return fmt.Errorf("default_volume must be between 0.0 and 1.0, got %v", c.DefaultVolume)
	case c.SeekStep <= 0 || c.SeekStep > 100:
		return fmt.Errorf("seek_step_percent must be in (0, 100], got %v", c.SeekStep)
	}
	return nil
}

// LogPath returns the log file location, defaulting into the data directory
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "player.log")
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("PREVIEW_PLAYER_CONFIG"); path != "" {
		return path
	}

	// Use XDG config directory if available
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "previewplayer", "config.json")
	}

	// Fall back to home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(home, ".config", "previewplayer", "config.json")
}
