package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Geocoder resolves coordinates into a human-readable address.
// Reverse geocoding is best-effort everywhere it is used: callers
// degrade to a placeholder address on failure instead of aborting.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

// Client reverse-geocodes through a Nominatim-compatible lookup
// service. Responses are cached in memory since a fixed kiosk asks for
// the same coordinates on every clock event and the public service is
// rate limited.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	cache      *gocache.Cache
}

// NewClient creates a reverse-geocoding client. baseURL points at the
// service root, e.g. "https://nominatim.openstreetmap.org".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  "timeclock-agent/1.0",
		cache:      gocache.New(12*time.Hour, time.Hour),
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode implements Geocoder.
func (c *Client) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	// Five decimals is ~1m, plenty for a cache key.
	key := fmt.Sprintf("%.5f,%.5f", latitude, longitude)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(string), nil
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", latitude))
	q.Set("lon", fmt.Sprintf("%f", longitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode service returned status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	if body.DisplayName == "" {
		return "", fmt.Errorf("reverse geocode service returned no address")
	}

	c.cache.Set(key, body.DisplayName, gocache.DefaultExpiration)
	return body.DisplayName, nil
}
