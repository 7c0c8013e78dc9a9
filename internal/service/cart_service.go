package service

import (
	"context"
	"fmt"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService. The cart is mutated only by its owning
// user's requests; same-user races are last-write-wins.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get retrieves the caller's cart.
func (s *cartService) Get(ctx context.Context, ident auth.Identity) (*model.CartResponse, error) {
	items, err := s.cartRepo.GetItems(ctx, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return &model.CartResponse{Items: items}, nil
}

// PutItem adds a cart line or replaces an existing line's quantity.
func (s *cartService) PutItem(ctx context.Context, ident auth.Identity, req model.CartItemRequest) error {
	if req.Quantity < 1 {
		return model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return fmt.Errorf("failed to validate cart product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	item := model.CartItem{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := s.cartRepo.UpsertItem(ctx, ident.UserID, item); err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}

	s.logger.Debug().
		Str("user_id", ident.UserID).
		Str("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Msg("cart line updated")

	return nil
}

// RemoveItem deletes one cart line.
func (s *cartService) RemoveItem(ctx context.Context, ident auth.Identity, productID string) error {
	if err := s.cartRepo.RemoveItems(ctx, ident.UserID, []string{productID}); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}
