package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/cache"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	store       cache.Store
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, store cache.Store, ttl time.Duration, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		store:       store,
		ttl:         ttl,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves products matching the filter, read-through cached. Stock
// edits are not reflected until the entry ages out; listings tolerate that
// bounded staleness.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		filter.Limit = defaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	key := cache.BuildKey(cache.ResourceProducts, map[string]string{
		"search":  filter.Search,
		"inStock": strconv.FormatBool(filter.InStock),
		"limit":   strconv.Itoa(filter.Limit),
		"offset":  strconv.Itoa(filter.Offset),
	})

	if payload, ok := s.store.Get(ctx, key); ok {
		var cached []model.Product
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}

	if payload, err := json.Marshal(products); err == nil {
		s.store.Set(ctx, key, payload, s.ttl)
	}

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

// AdjustStock applies an admin stock delta to the ledger.
func (s *productService) AdjustStock(ctx context.Context, id string, delta int) (*model.Product, error) {
	product, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	s.logger.Info().
		Str("product_id", id).
		Int("delta", delta).
		Int("stock", product.Stock).
		Msg("stock adjusted")

	return product, nil
}
