package geosearch

import (
	"context"
	"errors"
	"time"

	"github.com/sokohub/geosearch/internal/cache"
	dbRedis "github.com/sokohub/geosearch/internal/db/redis"
	businessrepo "github.com/sokohub/geosearch/internal/repository/business"
	productrepo "github.com/sokohub/geosearch/internal/repository/product"
	geouc "github.com/sokohub/geosearch/internal/usecase/geo"
	healthuc "github.com/sokohub/geosearch/internal/usecase/health"
	invalidationuc "github.com/sokohub/geosearch/internal/usecase/invalidation"
	searchuc "github.com/sokohub/geosearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the geosearch SDK entry point. It embeds the full query stack
// over a direct store connection, no HTTP hop.
type Client struct {
	store *dbRedis.Store

	searchSvc  *searchuc.Service
	geoSvc     *geouc.Service
	healthSvc  *healthuc.Service
	invalSvc   *invalidationuc.Service
	businesses *businessrepo.Repo
	products   *productrepo.Repo
}

// New connects to the store, ensures the indexes, and returns a ready client.
func New(opts ...Option) (*Client, error) {
	cfg := clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(&cfg)
	}
	if len(cfg.addrs) == 0 {
		return nil, errors.New("geosearch: no store address configured, use WithRedis")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, err
	}

	businesses := businessrepo.New(store)
	products := productrepo.New(store)
	if err := businesses.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, err
	}
	if err := products.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, err
	}

	queryCache := cache.NewRedis(store)

	c := &Client{
		store:      store,
		searchSvc:  searchuc.New(products, businesses, queryCache),
		geoSvc:     geouc.New(businesses, queryCache),
		healthSvc:  healthuc.New(store),
		invalSvc:   invalidationuc.New(queryCache),
		businesses: businesses,
		products:   products,
	}
	return c, nil
}

// Close releases the store connection.
func (c *Client) Close() {
	c.store.Close()
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Search starts a fluent product search.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{svc: c.searchSvc}
}

// Geo returns the proximity and viewport query surface.
func (c *Client) Geo() *GeoService {
	return &GeoService{svc: c.geoSvc}
}

// Businesses returns the business write surface.
func (c *Client) Businesses() *BusinessService {
	return &BusinessService{repo: c.businesses, inval: c.invalSvc}
}

// Products returns the product write surface.
func (c *Client) Products() *ProductService {
	return &ProductService{repo: c.products, inval: c.invalSvc}
}

// Health reports component availability.
func (c *Client) Health(ctx context.Context) HealthReport {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthReport{Status: string(report.Status), Checks: checks}
}

// HealthReport aggregates component check outcomes.
type HealthReport struct {
	Status string
	Checks map[string]string
}
