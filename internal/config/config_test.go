package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaorg/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDB := filepath.Join(tempHome, ".local", "share", "mediaorg", "mediaorg.db")
	if cfg.Paths.Database != wantDB {
		t.Fatalf("unexpected database path: got %q want %q", cfg.Paths.Database, wantDB)
	}
	if cfg.Library.CollisionPolicy != config.CollisionRename {
		t.Fatalf("unexpected collision policy: %q", cfg.Library.CollisionPolicy)
	}
	if cfg.FullPath() != "" {
		t.Fatalf("expected no folder template by default, got %q", cfg.FullPath())
	}
	if len(cfg.PluginNames()) != 0 {
		t.Fatalf("expected no plugins by default, got %v", cfg.PluginNames())
	}
	if cfg.Identity() != resolved {
		t.Fatalf("identity = %q, want %q", cfg.Identity(), resolved)
	}
}

func TestLoadDecodesTemplateSurface(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[file]
date = "%Y-%m-%d"
name = "%date-%title.%extension"
capitalization = " UPPER "

[directory]
year = "%Y"
location = "%city, %state"
full_path = "%year/%location|\"Unknown\""

[plugins]
plugins = "manifest, throwerror"

[manifest]
path = "~/manifest.csv"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.File.Capitalization != "upper" {
		t.Fatalf("capitalization not normalized: %q", cfg.File.Capitalization)
	}
	if cfg.FullPath() != `%year/%location|"Unknown"` {
		t.Fatalf("unexpected full path: %q", cfg.FullPath())
	}
	macros := cfg.DirectoryMacros()
	if macros["location"] != "%city, %state" || macros["year"] != "%Y" {
		t.Fatalf("unexpected macros: %#v", macros)
	}
	names := cfg.PluginNames()
	if len(names) != 2 || names[0] != "manifest" || names[1] != "throwerror" {
		t.Fatalf("unexpected plugin names: %v", names)
	}
	if !strings.HasSuffix(cfg.Manifest.Path, "manifest.csv") || !filepath.IsAbs(cfg.Manifest.Path) {
		t.Fatalf("manifest path not expanded: %q", cfg.Manifest.Path)
	}
}

func TestParseCoercesNonStringMacros(t *testing.T) {
	cfg, err := config.Parse([]byte("[directory]\nyear = 2015\nfull_path = \"%year\"\n"), "inline")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := cfg.DirectoryMacros()["year"]; got != "2015" {
		t.Fatalf("expected int macro coerced to text, got %q", got)
	}
	if cfg.Identity() != "inline" {
		t.Fatalf("unexpected identity %q", cfg.Identity())
	}
}

func TestEnvironmentFallbacks(t *testing.T) {
	t.Setenv("MEDIAORG_GEO_API_KEY", "geo-key")
	t.Setenv("MEDIAORG_GOOGLEPHOTOS_TOKEN", "gp-token")
	cfg, err := config.Parse(nil, "")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.Geolocation.APIKey != "geo-key" {
		t.Fatalf("expected geolocation key from env, got %q", cfg.Geolocation.APIKey)
	}
	if cfg.GooglePhotos.Token != "gp-token" {
		t.Fatalf("expected google photos token from env, got %q", cfg.GooglePhotos.Token)
	}
	if cfg.Identity() != "defaults" {
		t.Fatalf("unexpected identity %q", cfg.Identity())
	}
}

func TestValidateRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "collision policy", content: "[library]\ncollision_policy = \"merge\"\n", want: "collision_policy"},
		{name: "exclude regex", content: "[library]\nexclude = [\"(\"]\n", want: "library.exclude"},
		{name: "unknown plugin", content: "[plugins]\nplugins = \"dropbox\"\n", want: "unknown plugin"},
		{name: "googlephotos url", content: "[plugins]\nplugins = \"googlephotos\"\n", want: "upload_url"},
		{name: "notify topic", content: "[plugins]\nplugins = \"notify\"\n", want: "ntfy_topic"},
		{name: "manifest path", content: "[plugins]\nplugins = \"manifest\"\n", want: "manifest.path"},
		{name: "log format", content: "[logging]\nformat = \"xml\"\n", want: "logging.format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.content), "test")
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.File.Capitalization != "lower" {
		t.Fatalf("unexpected sample capitalization %q", cfg.File.Capitalization)
	}
	if cfg.FullPath() == "" {
		t.Fatal("expected sample full_path")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.TrashDir = filepath.Join(base, "trash")
	cfg.Paths.Database = filepath.Join(base, "db", "mediaorg.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{"logs", "trash", "db"} {
		if info, err := os.Stat(filepath.Join(base, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if filepath.IsAbs(dir) {
		t.Setenv("PWD", dir)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			panic("testing.Chdir: " + err.Error())
		}
	})
}
