// Package locationiq implements the paid fallback geocoding provider.
package locationiq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
	"github.com/sokohub/geosearch/internal/geocode"
)

// ProviderName identifies this provider in results and metrics.
const ProviderName = "locationiq"

// Config holds client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// Client calls the LocationIQ HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a LocationIQ client. Timeouts come from the request context.
func New(cfg Config) *Client {
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    httpClient,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string { return ProviderName }

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Class       string `json:"class"`
	Type        string `json:"type"`
}

// Forward resolves an address via /v1/search.
func (c *Client) Forward(ctx context.Context, address string) (geocode.Result, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	var places []place
	if err := c.get(ctx, "/v1/search", q, &places); err != nil {
		return geocode.Result{}, err
	}
	if len(places) == 0 {
		return geocode.Result{}, domain.ErrNotFound
	}
	return c.toResult(places[0])
}

// Reverse resolves a point via /v1/reverse.
func (c *Client) Reverse(ctx context.Context, point geo.Point) (geocode.Result, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("lat", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	q.Set("format", "json")

	var p place
	if err := c.get(ctx, "/v1/reverse", q, &p); err != nil {
		return geocode.Result{}, err
	}
	return c.toResult(p)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("locationiq: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("locationiq: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// LocationIQ returns 404 for unresolvable inputs.
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("locationiq: %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("locationiq: %s: decode response: %w", path, err)
	}
	return nil
}

func (c *Client) toResult(p place) (geocode.Result, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return geocode.Result{}, fmt.Errorf("locationiq: parse lat %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return geocode.Result{}, fmt.Errorf("locationiq: parse lon %q: %w", p.Lon, err)
	}

	return geocode.Result{
		Address:   p.DisplayName,
		Point:     geo.Point{Latitude: lat, Longitude: lon},
		Provider:  ProviderName,
		Precision: precisionFor(p.Class, p.Type),
	}, nil
}

func precisionFor(class, typ string) geocode.Precision {
	switch class {
	case "building", "amenity", "shop", "office":
		return geocode.PrecisionExact
	case "highway":
		return geocode.PrecisionStreet
	case "place":
		switch typ {
		case "city", "town", "village", "suburb", "neighbourhood", "hamlet":
			return geocode.PrecisionLocality
		}
		return geocode.PrecisionRegion
	default:
		return geocode.PrecisionRegion
	}
}
