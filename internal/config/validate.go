package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// KnownPlugins lists the plugin names accepted by [plugins] plugins.
var KnownPlugins = []string{"googlephotos", "notify", "manifest", "throwerror", "runtimeerror"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateGeolocation(); err != nil {
		return err
	}
	if err := c.validatePlugins(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLibrary() error {
	switch c.Library.CollisionPolicy {
	case CollisionRename, CollisionOverwrite:
	default:
		return fmt.Errorf("library.collision_policy: unsupported value %q (use %q or %q)", c.Library.CollisionPolicy, CollisionRename, CollisionOverwrite)
	}
	for _, pattern := range c.Library.Exclude {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("library.exclude: invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateGeolocation() error {
	if c.Geolocation.Timeout < 0 {
		return errors.New("geolocation.timeout must be non-negative")
	}
	return nil
}

func (c *Config) validatePlugins() error {
	for _, name := range c.PluginNames() {
		if !slices.Contains(KnownPlugins, name) {
			return fmt.Errorf("plugins.plugins: unknown plugin %q", name)
		}
		switch name {
		case "googlephotos":
			if c.GooglePhotos.UploadURL == "" {
				return errors.New("googlephotos.upload_url is required when the googlephotos plugin is enabled")
			}
			if c.GooglePhotos.Concurrency < 0 || c.GooglePhotos.Timeout < 0 {
				return errors.New("googlephotos.concurrency and googlephotos.timeout must be non-negative")
			}
		case "notify":
			if c.Notify.NtfyTopic == "" {
				return errors.New("notify.ntfy_topic is required when the notify plugin is enabled")
			}
			if c.Notify.RequestTimeout < 0 {
				return errors.New("notify.request_timeout must be non-negative")
			}
		case "manifest":
			if c.Manifest.Path == "" {
				return errors.New("manifest.path is required when the manifest plugin is enabled")
			}
		}
	}
	return nil
}
