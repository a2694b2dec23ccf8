// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultUndoWindow   = 5 * time.Second
	DefaultUndoCapacity = 5
	DefaultClipTimeout  = 5 * time.Second
	DefaultPasteType    = "clipboard"
	DefaultExportFormat = "json"
	DefaultListFormat   = "plain"
	DefaultSortField    = "updated"
	DefaultSortOrder    = "desc"
	DefaultDmenuTmpl    = "{{.Index}} | {{.Snippet.TypeLabel}} | {{.Snippet.ContentTruncated 60}}"
	maxUndoCapacity     = 50
	appName             = "clipbox"
	configFileName      = "config.toml"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1m", "1h30m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the clipbox configuration.
type Config struct {
	SeedExamples bool            `toml:"seed_examples"` // Store example snippets on first run
	Storage      StorageConfig   `toml:"storage"`
	Clipboard    ClipboardConfig `toml:"clipboard"`
	Undo         UndoConfig      `toml:"undo"`
	Paste        PasteConfig     `toml:"paste"`
	Export       ExportConfig    `toml:"export"`
	Import       ImportConfig    `toml:"import"`
	List         ListConfig      `toml:"list"`
	Templates    TemplatesConfig `toml:"templates"`
	TUI          TUIConfig       `toml:"tui"`
}

// StorageConfig holds the data location.
type StorageConfig struct {
	Dir string `toml:"dir"` // Defaults to $XDG_DATA_HOME/clipbox
}

// ClipboardConfig holds clipboard settings.
type ClipboardConfig struct {
	ReadCommand  string   `toml:"read_command"`  // Auto-detected if empty
	WriteCommand string   `toml:"write_command"` // Auto-detected if empty
	Timeout      Duration `toml:"timeout"`
}

// UndoConfig holds delete-undo settings.
type UndoConfig struct {
	Window           Duration `toml:"window"`             // How long undo is offered
	Capacity         int      `toml:"capacity"`           // Deletions remembered
	AllowAfterExpiry bool     `toml:"allow_after_expiry"` // Undo still works once hidden
}

// PasteConfig holds clipboard-paste settings.
type PasteConfig struct {
	Type string `toml:"type"` // Category for pasted snippets
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Dir    string `toml:"dir"`    // Empty = current directory
	Format string `toml:"format"` // json, yaml
}

// ImportConfig holds import defaults.
type ImportConfig struct {
	MergeIcons bool `toml:"merge_icons"` // Save group icons from grouped imports
}

// ListConfig holds default list options.
type ListConfig struct {
	Format string `toml:"format"` // dmenu, plain, json, yaml, ids
	Sort   string `toml:"sort"`   // updated, created, content, type
	Order  string `toml:"order"`  // asc, desc
	Limit  int    `toml:"limit"`  // 0 = unlimited
}

// TemplatesConfig holds output templates.
type TemplatesConfig struct {
	Dmenu  string            `toml:"dmenu"`
	Plain  string            `toml:"plain"` // Empty = built-in layout
	Custom map[string]string `toml:"custom"`
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	ShowHelp   bool `toml:"show_help"`
	ShowColors bool `toml:"show_colors"`
	ShowKeys   bool `toml:"show_keys"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		SeedExamples: true,
		Clipboard: ClipboardConfig{
			Timeout: Duration(DefaultClipTimeout),
		},
		Undo: UndoConfig{
			Window:   Duration(DefaultUndoWindow),
			Capacity: DefaultUndoCapacity,
		},
		Paste: PasteConfig{
			Type: DefaultPasteType,
		},
		Export: ExportConfig{
			Format: DefaultExportFormat,
		},
		Import: ImportConfig{
			MergeIcons: true,
		},
		List: ListConfig{
			Format: DefaultListFormat,
			Sort:   DefaultSortField,
			Order:  DefaultSortOrder,
		},
		Templates: TemplatesConfig{
			Dmenu:  DefaultDmenuTmpl,
			Custom: make(map[string]string),
		},
		TUI: TUIConfig{
			ShowHelp:   true,
			ShowColors: true,
			ShowKeys:   true,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName, configFileName)
}

// DataPath returns the default data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName)
}

// DataDir returns the configured data directory, or DataPath when unset.
func (c *Config) DataDir() string {
	if c.Storage.Dir != "" {
		return expandPath(c.Storage.Dir)
	}
	return DataPath()
}

// ExportDir returns the configured export directory, or "." when unset.
func (c *Config) ExportDir() string {
	if c.Export.Dir != "" {
		return expandPath(c.Export.Dir)
	}
	return "."
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Undo.Capacity < 1 || c.Undo.Capacity > maxUndoCapacity {
		return fmt.Errorf("undo capacity must be between 1 and %d, got %d", maxUndoCapacity, c.Undo.Capacity)
	}
	if c.Undo.Window.Duration() <= 0 {
		return fmt.Errorf("undo window must be positive, got %s", c.Undo.Window.Duration())
	}
	if c.Clipboard.Timeout.Duration() < 0 {
		return fmt.Errorf("clipboard timeout must not be negative, got %s", c.Clipboard.Timeout.Duration())
	}

	switch strings.ToLower(c.Export.Format) {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("invalid export format %q, must be json or yaml", c.Export.Format)
	}

	switch strings.ToLower(c.List.Format) {
	case "dmenu", "plain", "json", "yaml", "ids":
	default:
		return fmt.Errorf("invalid list format %q", c.List.Format)
	}

	if c.List.Limit < 0 {
		return fmt.Errorf("list limit must not be negative, got %d", c.List.Limit)
	}

	return nil
}

// GetTemplate returns the template for the given name.
// First checks custom templates, then built-in ones.
// Returns empty string if not found.
func (c *Config) GetTemplate(name string) string {
	if tmpl, ok := c.Templates.Custom[name]; ok {
		return tmpl
	}

	switch name {
	case "dmenu":
		return c.Templates.Dmenu
	case "plain":
		return c.Templates.Plain
	default:
		return ""
	}
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	path := c.DataDir()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0700)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
