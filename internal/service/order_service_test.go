package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Order, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) ListAdmin(ctx context.Context, filter model.AdminOrderFilter) ([]model.Order, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) SetPaymentIntentID(ctx context.Context, id uuid.UUID, intentID string) error {
	args := m.Called(ctx, id, intentID)
	return args.Error(0)
}

func (m *MockOrderRepository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

func TestOrderService_MyOrders_CachesPage(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	ident := auth.Identity{UserID: "U001", Role: auth.RoleUser}

	orders := []model.Order{
		{ID: uuid.New(), UserID: "U001", TotalAmount: decimal.NewFromInt(250)},
	}

	mockRepo := new(MockOrderRepository)
	store := newFakeStore()
	svc := NewOrderService(mockRepo, store, time.Minute, logger)

	mockRepo.On("ListByUser", ctx, "U001", defaultPageSize, 0).Return(orders, 1, nil).Once()

	resp, err := svc.MyOrders(ctx, ident, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, defaultPageSize, resp.Limit)

	// Second read is served from cache
	resp, err = svc.MyOrders(ctx, ident, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	mockRepo.AssertExpectations(t)
}

func TestOrderService_GetByID_OwnershipEnforcedAfterFetch(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderID := uuid.New()
	order := &model.Order{ID: orderID, UserID: "U001", TotalAmount: decimal.NewFromInt(100)}

	mockRepo := new(MockOrderRepository)
	store := newFakeStore()
	svc := NewOrderService(mockRepo, store, time.Minute, logger)

	mockRepo.On("GetByID", ctx, orderID).Return(order, nil).Once()

	// Owner fetch succeeds and populates the cache
	got, err := svc.GetByID(ctx, auth.Identity{UserID: "U001", Role: auth.RoleUser}, orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID, got.ID)

	// Another user hits the cached entry but is still rejected
	got, err = svc.GetByID(ctx, auth.Identity{UserID: "U002", Role: auth.RoleUser}, orderID)
	assert.Equal(t, model.ErrForbidden, err)
	assert.Nil(t, got)

	// Admin may fetch any order
	got, err = svc.GetByID(ctx, auth.Identity{UserID: "A001", Role: auth.RoleAdmin}, orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID, got.ID)

	mockRepo.AssertExpectations(t)
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderID := uuid.New()
	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, newFakeStore(), time.Minute, logger)

	mockRepo.On("GetByID", ctx, orderID).Return(nil, nil)

	got, err := svc.GetByID(ctx, auth.Identity{UserID: "U001"}, orderID)
	assert.Equal(t, model.ErrOrderNotFound, err)
	assert.Nil(t, got)

	mockRepo.AssertExpectations(t)
}

func TestOrderService_AdminList(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orders := []model.Order{
		{ID: uuid.New(), UserID: "U001", OrderStatus: model.OrderShipped},
		{ID: uuid.New(), UserID: "U002", OrderStatus: model.OrderShipped},
	}

	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, newFakeStore(), time.Minute, logger)

	filter := model.AdminOrderFilter{OrderStatus: model.OrderShipped, Limit: 20}
	mockRepo.On("ListAdmin", ctx, filter).Return(orders, 2, nil)

	resp, err := svc.AdminList(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Orders, 2)

	mockRepo.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_InvalidStatus(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, newFakeStore(), time.Minute, logger)

	got, err := svc.UpdateStatus(ctx, uuid.New(), model.OrderStatus("teleported"))
	assert.Equal(t, model.ErrInvalidStatus, err)
	assert.Nil(t, got)

	mockRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderID := uuid.New()
	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, newFakeStore(), time.Minute, logger)

	mockRepo.On("UpdateStatus", ctx, orderID, model.OrderShipped).Return(nil, nil)

	got, err := svc.UpdateStatus(ctx, orderID, model.OrderShipped)
	assert.Equal(t, model.ErrOrderNotFound, err)
	assert.Nil(t, got)

	mockRepo.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_InvalidatesCaches(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderID := uuid.New()
	shipped := time.Now()
	updated := &model.Order{
		ID:          orderID,
		UserID:      "U001",
		OrderStatus: model.OrderShipped,
		Timeline:    model.Timeline{ShippedAt: &shipped},
	}

	mockRepo := new(MockOrderRepository)
	store := newFakeStore()
	svc := NewOrderService(mockRepo, store, time.Minute, logger)

	mockRepo.On("UpdateStatus", ctx, orderID, model.OrderShipped).Return(updated, nil)

	got, err := svc.UpdateStatus(ctx, orderID, model.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, got.OrderStatus)
	require.NotNil(t, got.Timeline.ShippedAt)

	assert.Contains(t, store.deletedKeys, cache.OrderDetailsKey(orderID.String()))
	assert.Contains(t, store.deletedPrefixes, cache.MyOrdersPrefix("U001"))

	mockRepo.AssertExpectations(t)
}

func TestOrderService_MyOrders_RepositoryError(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, newFakeStore(), time.Minute, logger)

	mockRepo.On("ListByUser", ctx, "U001", defaultPageSize, 0).
		Return(nil, 0, errors.New("database error"))

	resp, err := svc.MyOrders(ctx, auth.Identity{UserID: "U001"}, 1, 0)
	require.Error(t, err)
	assert.Nil(t, resp)

	mockRepo.AssertExpectations(t)
}
