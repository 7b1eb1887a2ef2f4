package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediaorg/internal/services"
)

// Geocoder turns a coordinate into a place map with city, state, country and
// default keys. Keys without a value are omitted.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (map[string]string, error)
}

// HTTPDoer describes the HTTP client used by the reverse geocoding client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries a Nominatim-compatible /reverse endpoint.
type Client struct {
	baseURL       string
	apiKey        string
	preferEnglish bool
	client        HTTPDoer
}

// NewClient constructs a reverse geocoding client. A nil doer uses an
// http.Client bounded by timeout.
func NewClient(baseURL, apiKey string, preferEnglish bool, timeout time.Duration, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:       strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:        strings.TrimSpace(apiKey),
		preferEnglish: preferEnglish,
		client:        doer,
	}
}

type reverseResponse struct {
	Error   string            `json:"error"`
	Address map[string]string `json:"address"`
}

// Reverse looks up the place containing (lat, lon).
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (map[string]string, error) {
	if c == nil || c.baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "geolocation", "reverse", "no base url configured", nil)
	}
	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	endpoint := fmt.Sprintf("%s/reverse?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "mediaorg")
	if c.preferEnglish {
		req.Header.Set("Accept-Language", "en")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "geolocation", "reverse", "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrExternalTool, "geolocation", "reverse",
			fmt.Sprintf("geocoder returned %d", resp.StatusCode), nil)
	}

	var payload reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "geolocation", "reverse", "decode response", err)
	}
	if payload.Error != "" {
		return nil, services.Wrap(services.ErrNotFound, "geolocation", "reverse", payload.Error, nil)
	}
	return PlaceFromAddress(payload.Address), nil
}

// PlaceFromAddress reduces a Nominatim address block to the place keys used by
// location masks.
func PlaceFromAddress(address map[string]string) map[string]string {
	place := make(map[string]string, 4)
	if city := firstNonEmpty(address["city"], address["town"], address["village"], address["hamlet"]); city != "" {
		place["city"] = city
	}
	if state := strings.TrimSpace(address["state"]); state != "" {
		place["state"] = state
	}
	if country := strings.TrimSpace(address["country"]); country != "" {
		place["country"] = country
	}
	place["default"] = firstNonEmpty(place["city"], place["state"], place["country"], Unknown)
	return place
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
