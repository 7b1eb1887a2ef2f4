package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFile()
	c.normalizeLibrary()
	c.normalizeLogging()
	c.normalizeGeolocation()
	c.normalizeTools()
	c.normalizePlugins()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Database) == "" {
		c.Paths.Database = defaultDatabasePath
	}
	if c.Paths.Database, err = expandPath(c.Paths.Database); err != nil {
		return fmt.Errorf("paths.database: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TrashDir) == "" {
		c.Paths.TrashDir = defaultTrashDir
	}
	if c.Paths.TrashDir, err = expandPath(c.Paths.TrashDir); err != nil {
		return fmt.Errorf("paths.trash_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockFile) == "" {
		c.Paths.LockFile = defaultLockFile
	}
	if c.Paths.LockFile, err = expandPath(c.Paths.LockFile); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	if c.Manifest.Path != "" {
		if c.Manifest.Path, err = expandPath(c.Manifest.Path); err != nil {
			return fmt.Errorf("manifest.path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeFile() {
	c.File.Date = strings.TrimSpace(c.File.Date)
	c.File.Name = strings.TrimSpace(c.File.Name)
	c.File.Capitalization = strings.ToLower(strings.TrimSpace(c.File.Capitalization))
}

func (c *Config) normalizeLibrary() {
	c.Library.CollisionPolicy = strings.ToLower(strings.TrimSpace(c.Library.CollisionPolicy))
	if c.Library.CollisionPolicy == "" {
		c.Library.CollisionPolicy = defaultCollisionPolicy
	}
	patterns := c.Library.Exclude[:0]
	for _, pattern := range c.Library.Exclude {
		if strings.TrimSpace(pattern) != "" {
			patterns = append(patterns, pattern)
		}
	}
	c.Library.Exclude = patterns
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeGeolocation() {
	if c.Geolocation.APIKey == "" {
		if value, ok := os.LookupEnv("MEDIAORG_GEO_API_KEY"); ok {
			c.Geolocation.APIKey = value
		}
	}
	c.Geolocation.BaseURL = strings.TrimRight(strings.TrimSpace(c.Geolocation.BaseURL), "/")
	if c.Geolocation.BaseURL == "" {
		c.Geolocation.BaseURL = defaultGeolocationURL
	}
	if c.Geolocation.Timeout == 0 {
		c.Geolocation.Timeout = defaultGeolocationTimeout
	}
}

func (c *Config) normalizeTools() {
	c.ExifTool.Binary = strings.TrimSpace(c.ExifTool.Binary)
	if c.ExifTool.Binary == "" {
		c.ExifTool.Binary = defaultExifToolBinary
	}
	c.FFprobe.Binary = strings.TrimSpace(c.FFprobe.Binary)
	if c.FFprobe.Binary == "" {
		c.FFprobe.Binary = defaultFFprobeBinary
	}
}

func (c *Config) normalizePlugins() {
	if c.GooglePhotos.Token == "" {
		if value, ok := os.LookupEnv("MEDIAORG_GOOGLEPHOTOS_TOKEN"); ok {
			c.GooglePhotos.Token = value
		}
	}
	c.GooglePhotos.UploadURL = strings.TrimSpace(c.GooglePhotos.UploadURL)
	if c.GooglePhotos.Concurrency == 0 {
		c.GooglePhotos.Concurrency = defaultUploadConcurrency
	}
	if c.GooglePhotos.Timeout == 0 {
		c.GooglePhotos.Timeout = defaultUploadTimeout
	}
	c.Notify.NtfyTopic = strings.TrimSpace(c.Notify.NtfyTopic)
	if c.Notify.RequestTimeout == 0 {
		c.Notify.RequestTimeout = defaultNotifyTimeout
	}
}
