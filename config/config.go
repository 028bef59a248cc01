// Package config provides configuration loading for richedit using TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Editor settings
type Editor struct {
	DefaultFontSize string   `toml:"defaultFontSize"`
	HistoryLimit    int      `toml:"historyLimit"` // undo depth, 0 = unlimited
	FontSizes       []string `toml:"fontSizes"`    // sizes offered by the toolbar
}

// Media embed settings
type Media struct {
	Folder     string   `toml:"folder"`
	Tags       []string `toml:"tags"`
	ImageTypes []string `toml:"imageTypes"`
	VideoTypes []string `toml:"videoTypes"`
	MaxBytes   int64    `toml:"maxBytes"`
}

// Upload service settings
type Upload struct {
	Endpoint       string `toml:"endpoint"` // multipart upload URL, empty to store in Dir
	Preset         string `toml:"preset"`   // unsigned upload preset
	TimeoutSeconds int    `toml:"timeoutSeconds"`
	UserAgent      string `toml:"userAgent"`
	Dir            string `toml:"dir"`     // local directory uploader
	BaseURL        string `toml:"baseURL"` // URL prefix for files stored in Dir
}

// Drafts store settings
type Drafts struct {
	Path     string `toml:"path"`
	Autosave bool   `toml:"autosave"`
}

// Log settings
type Log struct {
	Level string `toml:"level"` // debug, info, warn or error
}

// Keybindings maps editor actions to chords.
type Keybindings struct {
	Bold      string `toml:"bold"`
	Italic    string `toml:"italic"`
	Underline string `toml:"underline"`
	Link      string `toml:"link"`
	Undo      string `toml:"undo"`
	Redo      string `toml:"redo"`
	Paragraph string `toml:"paragraph"`
}

// Config is the main configuration struct
type Config struct {
	Editor      Editor      `toml:"editor"`
	Media       Media       `toml:"media"`
	Upload      Upload      `toml:"upload"`
	Drafts      Drafts      `toml:"drafts"`
	Log         Log         `toml:"log"`
	Keybindings Keybindings `toml:"keybindings"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Editor: Editor{
			DefaultFontSize: "16px",
			HistoryLimit:    100,
			FontSizes:       []string{"12px", "14px", "16px", "18px", "24px", "32px"},
		},
		Media: Media{
			Folder:     "richedit",
			ImageTypes: []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/svg+xml"},
			VideoTypes: []string{"video/mp4", "video/webm", "video/ogg", "video/quicktime"},
			MaxBytes:   100 << 20,
		},
		Upload: Upload{
			TimeoutSeconds: 60,
			UserAgent:      "richedit/1.0",
			BaseURL:        "file://",
		},
		Drafts: Drafts{
			Autosave: true,
		},
		Log: Log{
			Level: "warn",
		},
		Keybindings: Keybindings{
			Bold:      "ctrl+b",
			Italic:    "ctrl+i",
			Underline: "ctrl+u",
			Link:      "ctrl+k",
			Undo:      "ctrl+z",
			Redo:      "ctrl+shift+z",
			Paragraph: "ctrl+alt+0",
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "richedit"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DraftsPath returns the drafts database path, defaulting to a file next
// to the config file.
func (c *Config) DraftsPath() (string, error) {
	if c.Drafts.Path != "" {
		return c.Drafts.Path, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "drafts.db"), nil
}

// Load loads the user's config file, layered on top of defaults.
// Returns the default config if no user config exists.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil // Return defaults if we can't determine path
	}
	return LoadFile(path)
}

// LoadFile loads the config file at path, layered on top of defaults. A
// missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	userCfg, err := loadFromTOML(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return merge(cfg, userCfg), nil
}

// loadFromTOML loads a TOML config file and returns the config.
func loadFromTOML(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}
	return &cfg, nil
}

// merge layers user config on top of defaults.
// Only non-zero values from user config override defaults.
func merge(defaults, user *Config) *Config {
	result := *defaults

	// Editor
	mergeString(&result.Editor.DefaultFontSize, user.Editor.DefaultFontSize)
	if user.Editor.HistoryLimit != 0 {
		result.Editor.HistoryLimit = user.Editor.HistoryLimit
	}
	mergeList(&result.Editor.FontSizes, user.Editor.FontSizes)

	// Media
	mergeString(&result.Media.Folder, user.Media.Folder)
	mergeList(&result.Media.Tags, user.Media.Tags)
	mergeList(&result.Media.ImageTypes, user.Media.ImageTypes)
	mergeList(&result.Media.VideoTypes, user.Media.VideoTypes)
	if user.Media.MaxBytes != 0 {
		result.Media.MaxBytes = user.Media.MaxBytes
	}

	// Upload
	mergeString(&result.Upload.Endpoint, user.Upload.Endpoint)
	mergeString(&result.Upload.Preset, user.Upload.Preset)
	if user.Upload.TimeoutSeconds != 0 {
		result.Upload.TimeoutSeconds = user.Upload.TimeoutSeconds
	}
	mergeString(&result.Upload.UserAgent, user.Upload.UserAgent)
	mergeString(&result.Upload.Dir, user.Upload.Dir)
	mergeString(&result.Upload.BaseURL, user.Upload.BaseURL)

	// Drafts
	mergeString(&result.Drafts.Path, user.Drafts.Path)
	// Note: false can't be told apart from unset, so autosave can only be
	// switched off with the --no-autosave flag.

	// Log
	mergeString(&result.Log.Level, user.Log.Level)

	// Keybindings - override each if set
	mergeString(&result.Keybindings.Bold, user.Keybindings.Bold)
	mergeString(&result.Keybindings.Italic, user.Keybindings.Italic)
	mergeString(&result.Keybindings.Underline, user.Keybindings.Underline)
	mergeString(&result.Keybindings.Link, user.Keybindings.Link)
	mergeString(&result.Keybindings.Undo, user.Keybindings.Undo)
	mergeString(&result.Keybindings.Redo, user.Keybindings.Redo)
	mergeString(&result.Keybindings.Paragraph, user.Keybindings.Paragraph)

	return &result
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeList(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

// Keys returns the editor shortcut table described by the keybindings.
// Empty bindings are left out.
func (k Keybindings) Keys() map[string]string {
	keys := map[string]string{}
	for chord, cmd := range map[string]string{
		k.Bold:      "bold",
		k.Italic:    "italic",
		k.Underline: "underline",
		k.Link:      "createLink",
		k.Undo:      "undo",
		k.Redo:      "redo",
		k.Paragraph: "formatBlock p",
	} {
		if chord != "" {
			keys[chord] = cmd
		}
	}
	return keys
}

// LogLevel parses the configured log level, defaulting to warn.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for init-config to generate a user config file.
func DefaultTOML() string {
	return `# richedit configuration
# Save to ~/.config/richedit/config.toml and customize
# Only include settings you want to change from defaults

# Editor settings
[editor]
defaultFontSize = "16px"      # Size reported when no size is applied
historyLimit = 100            # Undo depth (0 = unlimited)
fontSizes = ["12px", "14px", "16px", "18px", "24px", "32px"]

# Media embeds
[media]
folder = "richedit"           # Folder passed to the upload service
tags = []
imageTypes = ["image/png", "image/jpeg", "image/gif", "image/webp", "image/svg+xml"]
videoTypes = ["video/mp4", "video/webm", "video/ogg", "video/quicktime"]
maxBytes = 104857600

# Upload service
[upload]
endpoint = ""                 # Multipart upload URL (empty = store files in dir)
preset = ""                   # Unsigned upload preset
timeoutSeconds = 60
userAgent = "richedit/1.0"
dir = ""                      # Local directory used when no endpoint is set
baseURL = "file://"           # URL prefix for files stored in dir

# Drafts
[drafts]
path = ""                     # Defaults to ~/.config/richedit/drafts.db
autosave = true

# Logging
[log]
level = "warn"                # debug, info, warn or error

# Keybindings
[keybindings]
bold = "ctrl+b"
italic = "ctrl+i"
underline = "ctrl+u"
link = "ctrl+k"
undo = "ctrl+z"
redo = "ctrl+shift+z"
paragraph = "ctrl+alt+0"
`
}
