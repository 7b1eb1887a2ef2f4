package location

import (
	"context"
	"log/slog"
	"time"

	"mediaorg/internal/config"
	"mediaorg/internal/logging"
	"mediaorg/internal/store"
)

// DefaultCacheRadiusKM is how close a cached coordinate must be to be reused.
const DefaultCacheRadiusKM = 3.0

// CachedGeocoder answers from the store when a nearby coordinate was already
// resolved and otherwise delegates, caching the answer.
type CachedGeocoder struct {
	next     Geocoder
	store    *store.Store
	radiusKM float64
	logger   *slog.Logger
}

// NewCachedGeocoder wraps next with the store's place cache.
func NewCachedGeocoder(next Geocoder, st *store.Store, logger *slog.Logger) *CachedGeocoder {
	return &CachedGeocoder{
		next:     next,
		store:    st,
		radiusKM: DefaultCacheRadiusKM,
		logger:   logging.NewComponentLogger(logger, "geolocation"),
	}
}

// Reverse implements Geocoder.
func (g *CachedGeocoder) Reverse(ctx context.Context, lat, lon float64) (map[string]string, error) {
	if g.store != nil {
		place, ok, err := g.store.NearestPlace(ctx, lat, lon, g.radiusKM)
		if err != nil {
			logging.WarnWithContext(g.logger, "place cache lookup failed", "geocode_cache_read",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check database permissions"),
				logging.String(logging.FieldImpact, "geocoder queried directly"),
			)
		} else if ok {
			g.logger.Debug("place cache hit", logging.Any("lat", lat), logging.Any("lon", lon))
			return place.Fields, nil
		}
	}

	fields, err := g.next.Reverse(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if g.store != nil && len(fields) > 0 {
		if err := g.store.SavePlace(ctx, store.Place{Latitude: lat, Longitude: lon, Fields: fields}); err != nil {
			logging.WarnWithContext(g.logger, "place cache write failed", "geocode_cache_write",
				logging.Error(err),
				logging.String(logging.FieldImpact, "next lookup will query the geocoder again"),
			)
		}
	}
	return fields, nil
}

// NewConfiguredGeocoder returns the cached HTTP geocoder described by cfg, or
// nil when geolocation is disabled.
func NewConfiguredGeocoder(cfg *config.Config, st *store.Store, logger *slog.Logger) Geocoder {
	if cfg == nil || !cfg.Geolocation.Enabled {
		return nil
	}
	client := NewClient(
		cfg.Geolocation.BaseURL,
		cfg.Geolocation.APIKey,
		cfg.Geolocation.PreferEnglish,
		time.Duration(cfg.Geolocation.Timeout)*time.Second,
		nil,
	)
	return NewCachedGeocoder(client, st, logger)
}
