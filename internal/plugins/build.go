package plugins

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"mediaorg/internal/config"
	"mediaorg/internal/notifications"
	"mediaorg/internal/services"
	"mediaorg/internal/store"
)

// Deps are the shared collaborators handed to every plugin.
type Deps struct {
	Store  *store.Store
	Logger *slog.Logger
	DryRun bool
	Out    io.Writer
	// Doer overrides the HTTP client used by upload plugins.
	Doer HTTPDoer
}

// Build constructs the plugins named in cfg, in order.
func Build(cfg *config.Config, deps Deps) (*Set, error) {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	var built []Plugin
	for _, name := range cfg.PluginNames() {
		switch strings.ToLower(name) {
		case "googlephotos":
			if deps.Store == nil {
				return nil, services.Wrap(services.ErrConfiguration, "plugins", "build", "googlephotos requires the database", nil)
			}
			built = append(built, NewGooglePhotos(cfg, deps))
		case "notify":
			built = append(built, NewNotify(notifications.NewService(cfg), deps))
		case "manifest":
			built = append(built, NewManifest(cfg.Manifest.Path, deps))
		case "throwerror":
			built = append(built, ThrowError{})
		case "runtimeerror":
			built = append(built, RuntimeError{})
		default:
			return nil, services.Wrap(services.ErrConfiguration, "plugins", "build", "unknown plugin "+name, nil)
		}
	}
	return NewSet(deps.Logger, built...), nil
}
