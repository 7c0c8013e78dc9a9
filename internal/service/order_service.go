package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// orderService implements OrderService with read-through caching on every
// listing and detail read.
type orderService struct {
	orderRepo repository.OrderRepository
	store     cache.Store
	ttl       time.Duration
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, store cache.Store, ttl time.Duration, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		store:     store,
		ttl:       ttl,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// MyOrders retrieves a page of the caller's orders, newest first.
func (s *orderService) MyOrders(ctx context.Context, ident auth.Identity, page, limit int) (*model.OrderListResponse, error) {
	page, limit = normalisePage(page, limit)

	key := cache.BuildKey(cache.ResourceMyOrders+":"+ident.UserID, map[string]string{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	})

	if payload, ok := s.store.Get(ctx, key); ok {
		var cached model.OrderListResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
		s.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	orders, total, err := s.orderRepo.ListByUser(ctx, ident.UserID, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", ident.UserID).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	response := &model.OrderListResponse{
		Orders: orders,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}

	s.cacheSet(ctx, key, response)
	return response, nil
}

// GetByID retrieves one order. Ownership is enforced after the fetch so the
// cached payload stays caller-independent.
func (s *orderService) GetByID(ctx context.Context, ident auth.Identity, id uuid.UUID) (*model.Order, error) {
	key := cache.OrderDetailsKey(id.String())

	var order *model.Order
	if payload, ok := s.store.Get(ctx, key); ok {
		var cached model.Order
		if err := json.Unmarshal(payload, &cached); err == nil {
			order = &cached
		}
	}

	if order == nil {
		var err error
		order, err = s.orderRepo.GetByID(ctx, id)
		if err != nil {
			s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
			return nil, fmt.Errorf("failed to get order: %w", err)
		}
		if order == nil {
			return nil, model.ErrOrderNotFound
		}
		s.cacheSet(ctx, key, order)
	}

	if !ident.IsAdmin() && order.UserID != ident.UserID {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("user_id", ident.UserID).
			Msg("order access denied")
		return nil, model.ErrForbidden
	}

	return order, nil
}

// AdminList retrieves a filtered, sorted page of all orders.
func (s *orderService) AdminList(ctx context.Context, filter model.AdminOrderFilter) (*model.OrderListResponse, error) {
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		filter.Limit = defaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	key := cache.BuildKey(cache.ResourceAdminOrders, adminFilterParams(filter))

	if payload, ok := s.store.Get(ctx, key); ok {
		var cached model.OrderListResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	}

	orders, total, err := s.orderRepo.ListAdmin(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders for admin")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	response := &model.OrderListResponse{
		Orders: orders,
		Total:  total,
		Page:   filter.Offset/filter.Limit + 1,
		Limit:  filter.Limit,
	}

	s.cacheSet(ctx, key, response)
	return response, nil
}

// UpdateStatus transitions an order to a new status and invalidates every
// cache entry keyed by the order and its owner.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.store.Delete(ctx, cache.OrderDetailsKey(id.String()))
	s.store.DeletePrefix(ctx, cache.MyOrdersPrefix(order.UserID))

	return order, nil
}

// cacheSet marshals and stores a payload, logging marshal failures only.
func (s *orderService) cacheSet(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to marshal cache payload")
		return
	}
	s.store.Set(ctx, key, payload, s.ttl)
}

// normalisePage clamps pagination inputs to sane values.
func normalisePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit
}

// adminFilterParams flattens the filter into cache key parameters. Every
// field that affects the result set participates in the key.
func adminFilterParams(filter model.AdminOrderFilter) map[string]string {
	params := map[string]string{
		"limit":  strconv.Itoa(filter.Limit),
		"offset": strconv.Itoa(filter.Offset),
		"sort":   filter.SortBy,
		"desc":   strconv.FormatBool(filter.SortDesc),
	}
	if filter.UserID != "" {
		params["user"] = filter.UserID
	}
	if filter.ProductID != "" {
		params["product"] = filter.ProductID
	}
	if filter.OrderStatus != "" {
		params["status"] = string(filter.OrderStatus)
	}
	if filter.PaymentStatus != "" {
		params["payment"] = string(filter.PaymentStatus)
	}
	if filter.MinAmount != nil {
		params["min"] = filter.MinAmount.String()
	}
	if filter.MaxAmount != nil {
		params["max"] = filter.MaxAmount.String()
	}
	if filter.From != nil {
		params["from"] = filter.From.UTC().Format(time.RFC3339)
	}
	if filter.To != nil {
		params["to"] = filter.To.UTC().Format(time.RFC3339)
	}
	return params
}
