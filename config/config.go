// Package config loads and saves undiff's TOML configuration.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config holds all undiff configuration.
type Config struct {
	Markers MarkersConfig `toml:"markers"`
	Filters Filters       `toml:"filters"`
	Output  OutputConfig  `toml:"output"`
	Cache   CacheConfig   `toml:"cache"`
	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
	View    ViewConfig    `toml:"view"`
}

// MarkersConfig holds the substrings that identify record lines.
type MarkersConfig struct {
	Origin string `toml:"origin"`
	Diff   string `toml:"diff" validate:"required"`
	Action string `toml:"action" validate:"required"`
}

// Filters holds declarative redaction settings.
type Filters struct {
	Keep               []string `toml:"keep,omitempty" validate:"dive,required"`
	Mask               []string `toml:"mask,omitempty" validate:"dive,required"`
	DropStates         bool     `toml:"drop_states"`
	DropActionPrefixes []string `toml:"drop_action_prefixes,omitempty" validate:"dive,required"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Format string `toml:"format" validate:"oneof=json jsonl yaml"`
	Path   string `toml:"path,omitempty"`
}

// CacheConfig holds replay cache settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir,omitempty"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path,omitempty"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `toml:"json"`
	Dir   string `toml:"dir,omitempty"`
}

// ViewConfig holds timeline viewer settings.
type ViewConfig struct {
	Theme string `toml:"theme" validate:"oneof=dark light"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Markers: MarkersConfig{
			Origin: "From Keybase: ",
			Diff:   " Diff: ",
			Action: " Dispatching action: ",
		},
		Output: OutputConfig{
			Format: "json",
			Path:   "log.json",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
		View: ViewConfig{
			Theme: "dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "undiff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "undiff")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding run history.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "undiff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "undiff")
}

// HistoryPath returns the run history database path, honoring overrides.
func (c Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(DataDir(), "history.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't
// exist. Values present in the file override the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	return ExistsAt(Path())
}

// ExistsAt returns true if a config file exists at path.
func ExistsAt(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var validate = validator.New()

// Validate checks field constraints and reports the first offending fields.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
}

// Fingerprint returns a stable digest of the filter settings. Settings
// that only differ in list order share a fingerprint.
func (f Filters) Fingerprint() string {
	h := sha256.New()
	for _, list := range [][]string{f.Keep, f.Mask, f.DropActionPrefixes} {
		sorted := slices.Sorted(slices.Values(list))
		fmt.Fprintf(h, "%q;", sorted)
	}
	fmt.Fprintf(h, "%t", f.DropStates)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a digest of every setting that changes replay output.
func (c Config) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%q;%q;%q;%s", c.Markers.Origin, c.Markers.Diff, c.Markers.Action, c.Filters.Fingerprint())
	return hex.EncodeToString(h.Sum(nil))
}

// Empty reports whether no filter is configured.
func (f Filters) Empty() bool {
	return len(f.Keep) == 0 && len(f.Mask) == 0 && len(f.DropActionPrefixes) == 0 && !f.DropStates
}
