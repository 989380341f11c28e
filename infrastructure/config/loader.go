package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Editor   EditorConfig   `yaml:"editor"`
	Playback PlaybackConfig `yaml:"playback"`
	Export   ExportConfig   `yaml:"export"`
	Drafts   DraftsConfig   `yaml:"drafts"`
	Google   GoogleConfig   `yaml:"google"`
	Projects ProjectsConfig `yaml:"projects"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PathsConfig contains directory paths for media handling
type PathsConfig struct {
	MediaDirectory string `yaml:"media_directory"`
	WorkDirectory  string `yaml:"work_directory"`
}

// EditorConfig contains editing session settings
type EditorConfig struct {
	PixelsPerSecond float64 `yaml:"pixels_per_second"`
}

// PlaybackConfig contains playback loop settings
type PlaybackConfig struct {
	TickMilliseconds int `yaml:"tick_milliseconds"`
}

// ExportConfig contains render settings
type ExportConfig struct {
	OutputFormat  string `yaml:"output_format"`
	RemoveSilence bool   `yaml:"remove_silence"`
	FFmpegPath    string `yaml:"ffmpeg_path"`
	FFprobePath   string `yaml:"ffprobe_path"`
}

// DraftsConfig contains draft persistence settings
type DraftsConfig struct {
	Directory            string `yaml:"directory"`
	DebounceMilliseconds int    `yaml:"debounce_milliseconds"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	GalleryFolderID string `yaml:"gallery_folder_id"`
}

// ProjectsConfig contains the project registry
type ProjectsConfig struct {
	DefaultProject string                   `yaml:"default_project"`
	Projects       map[string]ProjectConfig `yaml:"projects"`
}

// ProjectConfig represents one registered project
type ProjectConfig struct {
	Name        string `yaml:"name"`
	AspectRatio string `yaml:"aspect_ratio"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Default creates a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Editor.PixelsPerSecond <= 0 {
		c.Editor.PixelsPerSecond = 50
	}
	if c.Playback.TickMilliseconds <= 0 {
		c.Playback.TickMilliseconds = 16
	}
	if c.Export.OutputFormat == "" {
		c.Export.OutputFormat = "mp4"
	}
	if c.Export.FFmpegPath == "" {
		c.Export.FFmpegPath = "ffmpeg"
	}
	if c.Export.FFprobePath == "" {
		c.Export.FFprobePath = "ffprobe"
	}
	if c.Drafts.Directory == "" {
		c.Drafts.Directory = "drafts"
	}
	if c.Drafts.DebounceMilliseconds <= 0 {
		c.Drafts.DebounceMilliseconds = 500
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
