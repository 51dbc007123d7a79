// Package nominatim implements the free OSM geocoding provider.
package nominatim

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
const ProviderName = "nominatim"

// Config holds client settings.
type Config struct {
	BaseURL   string
	UserAgent string // Nominatim usage policy requires an identifying User-Agent
	Client    *http.Client
}

// Client calls the Nominatim HTTP API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a Nominatim client. Timeouts come from the request context.
func New(cfg Config) *Client {
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		http:      httpClient,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string { return ProviderName }

// place is the jsonv2 response shape shared by /search and /reverse.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	AddressType string `json:"addresstype"`
	Error       string `json:"error"`
}

// Forward resolves an address via /search.
func (c *Client) Forward(ctx context.Context, address string) (geocode.Result, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")

	var places []place
	if err := c.get(ctx, "/search", q, &places); err != nil {
		return geocode.Result{}, err
	}
	if len(places) == 0 {
		return geocode.Result{}, domain.ErrNotFound
	}
	return c.toResult(places[0])
}

// Reverse resolves a point via /reverse.
func (c *Client) Reverse(ctx context.Context, point geo.Point) (geocode.Result, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	q.Set("format", "jsonv2")

	var p place
	if err := c.get(ctx, "/reverse", q, &p); err != nil {
		return geocode.Result{}, err
	}
	// Nominatim reports unresolvable points as 200 with an error body.
	if p.Error != "" {
		return geocode.Result{}, domain.ErrNotFound
	}
	return c.toResult(p)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("nominatim: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim: %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("nominatim: %s: decode response: %w", path, err)
	}
	return nil
}

func (c *Client) toResult(p place) (geocode.Result, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return geocode.Result{}, fmt.Errorf("nominatim: parse lat %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return geocode.Result{}, fmt.Errorf("nominatim: parse lon %q: %w", p.Lon, err)
	}

	return geocode.Result{
		Address:   p.DisplayName,
		Point:     geo.Point{Latitude: lat, Longitude: lon},
		Provider:  ProviderName,
		Precision: precisionFor(p.AddressType),
	}, nil
}

// precisionFor maps a Nominatim addresstype to a precision tier.
func precisionFor(addressType string) geocode.Precision {
	switch addressType {
	case "building", "house", "amenity", "shop", "office", "place_of_worship":
		return geocode.PrecisionExact
	case "road", "street", "pedestrian", "footway":
		return geocode.PrecisionStreet
	case "city", "town", "village", "suburb", "neighbourhood", "locality", "postcode", "hamlet":
		return geocode.PrecisionLocality
	default:
		return geocode.PrecisionRegion
	}
}
