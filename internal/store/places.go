package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

const earthRadiusKM = 6371.0

// Place is a cached reverse-geocode result for a coordinate.
type Place struct {
	Latitude  float64
	Longitude float64
	Fields    map[string]string
}

// SavePlace caches a geocode result.
func (s *Store) SavePlace(ctx context.Context, place Place) error {
	payload, err := json.Marshal(place.Fields)
	if err != nil {
		return fmt.Errorf("encode place: %w", err)
	}
	if _, err := s.execWithRetry(ctx,
		"INSERT INTO places (latitude, longitude, fields_json, created_at) VALUES (?, ?, ?, ?)",
		place.Latitude, place.Longitude, string(payload), timestamp(),
	); err != nil {
		return fmt.Errorf("save place: %w", err)
	}
	return nil
}

// NearestPlace returns the cached place closest to (lat, lon) within radiusKM.
func (s *Store) NearestPlace(ctx context.Context, lat, lon, radiusKM float64) (Place, bool, error) {
	ctx = ensureContext(ctx)
	latDelta := radiusKM / 111.0
	lonDelta := latDelta
	if c := math.Cos(lat * math.Pi / 180); c > 0.01 {
		lonDelta = latDelta / c
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT latitude, longitude, fields_json FROM places
		 WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`,
		lat-latDelta, lat+latDelta, lon-lonDelta, lon+lonDelta,
	)
	if err != nil {
		return Place{}, false, fmt.Errorf("query places: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		best     Place
		bestDist = math.Inf(1)
	)
	for rows.Next() {
		var (
			p       Place
			payload string
		)
		if err := rows.Scan(&p.Latitude, &p.Longitude, &payload); err != nil {
			return Place{}, false, fmt.Errorf("scan place: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &p.Fields); err != nil {
			continue
		}
		if d := Distance(lat, lon, p.Latitude, p.Longitude); d <= radiusKM && d < bestDist {
			best, bestDist = p, d
		}
	}
	if err := rows.Err(); err != nil {
		return Place{}, false, err
	}
	if math.IsInf(bestDist, 1) {
		return Place{}, false, nil
	}
	return best, true, nil
}

// Distance is the great-circle distance in kilometres between two coordinates.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
