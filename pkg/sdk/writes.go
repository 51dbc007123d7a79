package geosearch

import (
	"context"

	"github.com/sokohub/geosearch/internal/domain"
	businessrepo "github.com/sokohub/geosearch/internal/repository/business"
	productrepo "github.com/sokohub/geosearch/internal/repository/product"
	invalidationuc "github.com/sokohub/geosearch/internal/usecase/invalidation"
)

// ProductRow pairs a product with the owner attributes denormalized into its
// index row.
type ProductRow = productrepo.Row

// BusinessService writes businesses into the index and evicts affected
// cached queries.
type BusinessService struct {
	repo  *businessrepo.Repo
	inval *invalidationuc.Service
}

// Upsert writes businesses and invalidates geolocation and search caches.
func (s *BusinessService) Upsert(ctx context.Context, businesses ...domain.Business) error {
	if err := s.repo.Upsert(ctx, businesses); err != nil {
		return err
	}
	return s.inval.OnBusinessWrite(ctx)
}

// Delete removes a business and invalidates geolocation and search caches.
func (s *BusinessService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.inval.OnBusinessWrite(ctx)
}

// ProductService writes products into the index and evicts affected cached
// queries.
type ProductService struct {
	repo  *productrepo.Repo
	inval *invalidationuc.Service
}

// Upsert writes product rows and invalidates search caches.
func (s *ProductService) Upsert(ctx context.Context, rows ...ProductRow) error {
	if err := s.repo.Upsert(ctx, rows); err != nil {
		return err
	}
	return s.inval.OnProductWrite(ctx)
}

// Delete removes a product and invalidates search caches.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.inval.OnProductWrite(ctx)
}
