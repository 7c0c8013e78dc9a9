package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/address"
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/jobs"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	gateway       payment.Gateway
	addrValidator *address.Validator
	dispatcher    jobs.Dispatcher
	store         cache.Store
	currency      string
	minimumAmount decimal.Decimal
	logger        zerolog.Logger
}

// CheckoutConfig carries the payment parameters the checkout flow enforces.
type CheckoutConfig struct {
	Currency      string
	MinimumAmount decimal.Decimal
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	gateway payment.Gateway,
	addrValidator *address.Validator,
	dispatcher jobs.Dispatcher,
	store cache.Store,
	cfg CheckoutConfig,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		gateway:       gateway,
		addrValidator: addrValidator,
		dispatcher:    dispatcher,
		store:         store,
		currency:      cfg.Currency,
		minimumAmount: cfg.MinimumAmount,
		logger:        logger.With().Str("service", "checkout").Logger(),
	}
}

// pricedLine joins a cart line with its current product record.
type pricedLine struct {
	item    model.CartItem
	product model.Product
}

// Summary computes a priced view of the current cart. Cart lines whose
// product no longer exists are pruned and the pruned cart is persisted;
// no stock is reserved here.
func (s *checkoutService) Summary(ctx context.Context, ident auth.Identity) (*model.CheckoutSummary, error) {
	lines, err := s.loadCart(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	amount := decimal.Zero
	for _, line := range lines {
		if line.item.Quantity > line.product.Stock {
			s.logger.Warn().
				Str("user_id", ident.UserID).
				Str("product_id", line.product.ID).
				Int("requested", line.item.Quantity).
				Int("stock", line.product.Stock).
				Msg("cart line exceeds available stock")
			return nil, model.ErrOutOfStock(line.product.Title)
		}
		amount = amount.Add(line.product.Price.Mul(decimal.NewFromInt(int64(line.item.Quantity))))
	}

	return &model.CheckoutSummary{
		Amount:     amount.Round(2),
		Currency:   s.currency,
		TotalItems: len(lines),
	}, nil
}

// CreatePaymentIntent commits the checkout and creates the payment intent.
// The order insert, every conditional stock decrement and the cart clear run
// inside one transaction: a lost stock race rolls back the whole commit.
func (s *checkoutService) CreatePaymentIntent(ctx context.Context, ident auth.Identity, addr model.Address) (*model.PaymentIntentResponse, error) {
	if err := s.addrValidator.Validate(addr); err != nil {
		return nil, err
	}

	// Reload the cart fresh; client-supplied totals are never trusted.
	lines, err := s.loadCart(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, line := range lines {
		if line.item.Quantity > line.product.Stock {
			return nil, model.ErrInsufficientStock(line.product.Title)
		}
		total = total.Add(line.product.Price.Mul(decimal.NewFromInt(int64(line.item.Quantity))))
	}
	total = total.Round(2)

	if total.LessThan(s.minimumAmount) {
		return nil, model.ErrAmountTooSmall(s.minimumAmount.String() + " " + s.currency)
	}

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          ident.UserID,
		TotalAmount:     total,
		Currency:        s.currency,
		PaymentStatus:   model.PaymentPending,
		OrderStatus:     model.OrderPending,
		ShippingAddress: addr,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	items := make([]model.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = model.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       line.product.ID,
			Title:           line.product.Title,
			Quantity:        line.item.Quantity,
			PriceAtPurchase: line.product.Price,
		}
	}
	order.Items = items

	if err := s.commit(ctx, order, lines); err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.IntentRequest{
		OrderID:  order.ID,
		Amount:   total,
		Currency: s.currency,
		Email:    ident.Email,
	})
	if err != nil {
		// The order stays pending; the processor confirmed nothing.
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("payment intent creation failed after commit")
		return nil, model.ErrPaymentUpstream("could not create payment intent")
	}

	if err := s.orderRepo.SetPaymentIntentID(ctx, order.ID, intent.ID); err != nil {
		// The webhook finds the order through its own metadata, so this is
		// not fatal to the checkout.
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to record payment intent id")
	}

	job := jobs.OrderCreatedJob{
		OrderID: order.ID,
		UserID:  ident.UserID,
		Email:   ident.Email,
	}
	if err := s.dispatcher.Enqueue(ctx, jobs.TopicOrderCreated, ident.UserID, job); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to enqueue order-created job")
	}

	s.store.DeletePrefix(ctx, cache.MyOrdersPrefix(ident.UserID))

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", ident.UserID).
		Str("amount", total.String()).
		Int("item_count", len(items)).
		Msg("checkout committed")

	return &model.PaymentIntentResponse{
		ClientSecret: intent.ClientSecret,
		OrderID:      order.ID,
	}, nil
}

// commit runs the critical section: order insert, per-line conditional stock
// decrements and cart clear in a single transaction.
func (s *checkoutService) commit(ctx context.Context, order *model.Order, lines []pricedLine) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to commit checkout: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback checkout transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to commit checkout: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return fmt.Errorf("failed to commit checkout: %w", err)
	}

	for _, line := range lines {
		var ok bool
		ok, err = s.productRepo.DecrementStock(ctx, tx, line.product.ID, line.item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to commit checkout: %w", err)
		}
		if !ok {
			// A concurrent checkout consumed the stock between our check and
			// this write; abort the whole commit.
			err = model.ErrStockRaceLost(line.product.Title)
			return err
		}
	}

	if err = s.cartRepo.ClearTx(ctx, tx, order.UserID); err != nil {
		return fmt.Errorf("failed to commit checkout: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit checkout: %w", err)
	}

	return nil
}

// HandlePaymentEvent applies a verified webhook event. Duplicate deliveries
// of the same succeeded event produce no side effects beyond the first.
func (s *checkoutService) HandlePaymentEvent(ctx context.Context, event payment.Event) error {
	switch event.Type {
	case payment.EventPaymentSucceeded, payment.EventPaymentFailed:
	default:
		s.logger.Debug().Str("type", event.Type).Msg("ignoring unhandled payment event")
		return nil
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		s.logger.Warn().Str("order_id", event.OrderID).Msg("payment event carries no usable order reference")
		return model.ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order for payment event: %w", err)
	}
	if order == nil {
		s.logger.Warn().Str("order_id", event.OrderID).Msg("payment event references unknown order")
		return model.ErrOrderNotFound
	}

	if event.Type == payment.EventPaymentFailed {
		if order.PaymentStatus == model.PaymentFailed {
			return nil
		}
		if err := s.orderRepo.SetPaymentStatus(ctx, order.ID, model.PaymentFailed); err != nil {
			return err
		}
		s.invalidateOrderCaches(ctx, order)
		s.logger.Info().Str("order_id", order.ID.String()).Msg("payment failed")
		return nil
	}

	if order.PaymentStatus == model.PaymentPaid {
		s.logger.Debug().Str("order_id", order.ID.String()).Msg("duplicate payment succeeded event, nothing to do")
		return nil
	}

	if err := s.orderRepo.SetPaymentStatus(ctx, order.ID, model.PaymentPaid); err != nil {
		return err
	}

	// The cart was already cleared at commit; clearing again keeps the
	// handler safe for flows where payment confirms an uncleared cart.
	if err := s.cartRepo.Clear(ctx, order.UserID); err != nil {
		s.logger.Error().Err(err).Str("user_id", order.UserID).Msg("failed to clear cart on payment confirmation")
	}

	s.invalidateOrderCaches(ctx, order)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", order.UserID).
		Msg("payment confirmed")

	return nil
}

// invalidateOrderCaches drops the cache entries this write can name.
func (s *checkoutService) invalidateOrderCaches(ctx context.Context, order *model.Order) {
	s.store.Delete(ctx, cache.OrderDetailsKey(order.ID.String()))
	s.store.DeletePrefix(ctx, cache.MyOrdersPrefix(order.UserID))
}

// loadCart reads the user's cart, joins current products, prunes lines whose
// product vanished (persisting the pruned cart) and fails on an empty result.
func (s *checkoutService) loadCart(ctx context.Context, userID string) ([]pricedLine, error) {
	items, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var lines []pricedLine
	var pruned []string
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			pruned = append(pruned, item.ProductID)
			continue
		}
		lines = append(lines, pricedLine{item: item, product: product})
	}

	if len(pruned) > 0 {
		// Self-healing: drop lines whose product is gone. Observable to the
		// caller only through a smaller item count.
		s.logger.Info().
			Str("user_id", userID).
			Strs("product_ids", pruned).
			Msg("pruning cart lines for missing products")
		if err := s.cartRepo.RemoveItems(ctx, userID, pruned); err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to persist pruned cart")
		}
	}

	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	return lines, nil
}
