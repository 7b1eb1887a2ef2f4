package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// File contains the file-name template settings.
type File struct {
	Date           string `toml:"date"`
	Name           string `toml:"name"`
	Capitalization string `toml:"capitalization"`
}

// Plugins lists the plugins to load, in hook order.
type Plugins struct {
	Plugins string `toml:"plugins"`
}

// Paths contains database, log, and trash locations.
type Paths struct {
	Database string `toml:"database"`
	LogDir   string `toml:"log_dir"`
	TrashDir string `toml:"trash_dir"`
	LockFile string `toml:"lock_file"`
}

// Library contains destination-side policies.
type Library struct {
	CollisionPolicy string   `toml:"collision_policy"`
	Exclude         []string `toml:"exclude"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Geolocation contains reverse geocoding settings.
type Geolocation struct {
	Enabled       bool   `toml:"enabled"`
	BaseURL       string `toml:"base_url"`
	APIKey        string `toml:"api_key"`
	PreferEnglish bool   `toml:"prefer_english"`
	Timeout       int    `toml:"timeout"`
}

// ExifTool contains the optional metadata writer settings.
type ExifTool struct {
	Enabled bool   `toml:"enabled"`
	Binary  string `toml:"binary"`
}

// FFprobe contains the video inspection binary.
type FFprobe struct {
	Binary string `toml:"binary"`
}

// GooglePhotos contains settings for the deferred upload plugin.
type GooglePhotos struct {
	UploadURL   string `toml:"upload_url"`
	Token       string `toml:"token"`
	Concurrency int    `toml:"concurrency"`
	Timeout     int    `toml:"timeout"`
}

// Notify contains configuration for ntfy push notifications.
type Notify struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Manifest contains the CSV manifest plugin settings.
type Manifest struct {
	Path string `toml:"path"`
}

// Config encapsulates all configuration values for mediaorg.
//
// Configuration sections by subsystem:
//   - File: file-name template, date format, capitalization
//   - Directory: named folder macros plus full_path
//   - Plugins: comma-separated plugin names
//   - Paths: database, logs, trash, run lock
//   - Library: collision policy and exclusion patterns
//   - Logging: log format and level
//   - Geolocation: reverse geocoding service
//   - ExifTool, FFprobe: external metadata tools
//   - GooglePhotos, Notify, Manifest: plugin settings
type Config struct {
	File         File           `toml:"file"`
	Directory    map[string]any `toml:"directory"`
	Plugins      Plugins        `toml:"plugins"`
	Paths        Paths          `toml:"paths"`
	Library      Library        `toml:"library"`
	Logging      Logging        `toml:"logging"`
	Geolocation  Geolocation    `toml:"geolocation"`
	ExifTool     ExifTool       `toml:"exiftool"`
	FFprobe      FFprobe        `toml:"ffprobe"`
	GooglePhotos GooglePhotos   `toml:"googlephotos"`
	Notify       Notify         `toml:"notify"`
	Manifest     Manifest       `toml:"manifest"`

	source string
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediaorg/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.source = resolvedPath

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Parse decodes TOML content into a normalized, validated Config. The identity
// is used to key cached definitions derived from this config.
func Parse(data []byte, identity string) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.source = identity
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediaorg.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Identity returns the key that identifies this configuration source.
func (c *Config) Identity() string {
	if c == nil || strings.TrimSpace(c.source) == "" {
		return "defaults"
	}
	return c.source
}

// DirectoryMacros returns the [directory] table with every value coerced to text.
func (c *Config) DirectoryMacros() map[string]string {
	macros := make(map[string]string, len(c.Directory))
	for key, value := range c.Directory {
		macros[key] = macroText(value)
	}
	return macros
}

// FullPath returns the folder template, or "" when none is configured.
func (c *Config) FullPath() string {
	return strings.TrimSpace(macroText(c.Directory["full_path"]))
}

// PluginNames splits the comma-separated plugin list.
func (c *Config) PluginNames() []string {
	var names []string
	for _, part := range strings.Split(c.Plugins.Plugins, ",") {
		if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// EnsureDirectories creates the directories mediaorg writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, c.Paths.TrashDir, filepath.Dir(c.Paths.Database)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func macroText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
