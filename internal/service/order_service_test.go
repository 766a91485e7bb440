package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/marketbay-backend/internal/models"
	"github.com/marketbay/marketbay-backend/internal/pkg/apperror"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, o *models.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, actorID uuid.UUID, note string) error {
	args := m.Called(ctx, orderID, status, actorID, note)
	return args.Error(0)
}

func (m *mockOrderRepo) SetEscrowStatus(ctx context.Context, orderID uuid.UUID, escrowStatus string) error {
	args := m.Called(ctx, orderID, escrowStatus)
	return args.Error(0)
}

func (m *mockOrderRepo) ListStatusUpdates(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusUpdate, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderStatusUpdate), args.Error(1)
}

type mockOrderWallets struct {
	mock.Mock
}

func (m *mockOrderWallets) PayForOrder(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockOrderWallets) CreditRefund(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockOrderWallets) MoveToEscrow(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockOrderWallets) ReleaseFromEscrow(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockOrderWallets) RefundFromEscrow(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockOrderWallets))

	orders.On("Create", ctx, mock.Anything).Return(nil)

	o, err := svc.CreateOrder(ctx, uuid.New(), uuid.New(), nil, "Настройка сервера под ключ", decimal.NewFromInt(500))

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, models.EscrowStatusNone, o.EscrowStatus)
}

func TestOrderService_CreateOrder_SameParties(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(new(mockOrderRepo), new(mockOrderWallets))

	userID := uuid.New()
	_, err := svc.CreateOrder(ctx, userID, userID, nil, "Заказ самому себе", decimal.NewFromInt(100))

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
}

func TestOrderService_PayOrder(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	sellerID := uuid.New()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		SellerID:    sellerID,
		Status:      models.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(500),
	}

	orders := new(mockOrderRepo)
	wallets := new(mockOrderWallets)
	svc := NewOrderService(orders, wallets)

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	wallets.On("PayForOrder", ctx, customerID, order.TotalAmount, order.ID).Return(&models.Transaction{}, nil)
	wallets.On("MoveToEscrow", ctx, sellerID, order.TotalAmount, order.ID).Return(&models.Transaction{}, nil)
	orders.On("UpdateStatus", ctx, order.ID, models.OrderStatusPaid, customerID, mock.Anything).Return(nil)
	orders.On("SetEscrowStatus", ctx, order.ID, models.EscrowStatusHeld).Return(nil)

	_, err := svc.PayOrder(ctx, order.ID, customerID)

	require.NoError(t, err)
	wallets.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestOrderService_PayOrder_OnlyCustomer(t *testing.T) {
	ctx := context.Background()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  uuid.New(),
		SellerID:    uuid.New(),
		Status:      models.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(500),
	}

	orders := new(mockOrderRepo)
	wallets := new(mockOrderWallets)
	svc := NewOrderService(orders, wallets)

	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.PayOrder(ctx, order.ID, order.SellerID)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, apperror.CodeOf(err))
	wallets.AssertNotCalled(t, "PayForOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_PayOrder_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		SellerID:    uuid.New(),
		Status:      models.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(500),
	}

	orders := new(mockOrderRepo)
	wallets := new(mockOrderWallets)
	svc := NewOrderService(orders, wallets)

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	wallets.On("PayForOrder", ctx, customerID, order.TotalAmount, order.ID).
		Return(nil, apperror.New(apperror.ErrCodeInsufficientFunds, "недостаточно средств на балансе"))

	_, err := svc.PayOrder(ctx, order.ID, customerID)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInsufficientFunds, apperror.CodeOf(err))
	wallets.AssertNotCalled(t, "MoveToEscrow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CompleteOrder(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	sellerID := uuid.New()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		SellerID:    sellerID,
		Status:      models.OrderStatusInProgress,
		TotalAmount: decimal.NewFromInt(500),
	}

	orders := new(mockOrderRepo)
	wallets := new(mockOrderWallets)
	svc := NewOrderService(orders, wallets)

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	wallets.On("ReleaseFromEscrow", ctx, sellerID, order.TotalAmount, order.ID).Return(&models.Transaction{}, nil)
	orders.On("UpdateStatus", ctx, order.ID, models.OrderStatusCompleted, customerID, mock.Anything).Return(nil)
	orders.On("SetEscrowStatus", ctx, order.ID, models.EscrowStatusReleased).Return(nil)

	_, err := svc.CompleteOrder(ctx, order.ID, customerID)

	require.NoError(t, err)
	wallets.AssertExpectations(t)
}

func TestOrderService_CompleteOrder_BlockedByDispute(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		SellerID:    uuid.New(),
		Status:      models.OrderStatusPaid,
		HasDispute:  true,
		TotalAmount: decimal.NewFromInt(500),
	}

	orders := new(mockOrderRepo)
	wallets := new(mockOrderWallets)
	svc := NewOrderService(orders, wallets)

	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.CompleteOrder(ctx, order.ID, customerID)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
	wallets.AssertNotCalled(t, "ReleaseFromEscrow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CancelOrder_PaidRefundsBothWallets(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	sellerID := uuid.New()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		SellerID:    sellerID,
		Status:      models.OrderStatusPaid,
		TotalAmount: decimal.NewFromInt(500),
	}

	orders := new(mockOrderRepo)
	wallets := new(mockOrderWallets)
	svc := NewOrderService(orders, wallets)

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	wallets.On("RefundFromEscrow", ctx, sellerID, order.TotalAmount, order.ID).Return(&models.Transaction{}, nil)
	wallets.On("CreditRefund", ctx, customerID, order.TotalAmount, order.ID).Return(&models.Transaction{}, nil)
	orders.On("SetEscrowStatus", ctx, order.ID, models.EscrowStatusRefunded).Return(nil)
	orders.On("UpdateStatus", ctx, order.ID, models.OrderStatusCancelled, customerID, "передумал").Return(nil)

	_, err := svc.CancelOrder(ctx, order.ID, customerID, "передумал")

	require.NoError(t, err)
	wallets.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestOrderService_CancelOrder_PendingSkipsWallets(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		SellerID:    uuid.New(),
		Status:      models.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(500),
	}

	orders := new(mockOrderRepo)
	wallets := new(mockOrderWallets)
	svc := NewOrderService(orders, wallets)

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, order.ID, models.OrderStatusCancelled, customerID, "").Return(nil)

	_, err := svc.CancelOrder(ctx, order.ID, customerID, "")

	require.NoError(t, err)
	wallets.AssertNotCalled(t, "RefundFromEscrow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "SetEscrowStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CancelOrder_CompletedRejected(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		SellerID:    uuid.New(),
		Status:      models.OrderStatusCompleted,
		TotalAmount: decimal.NewFromInt(500),
	}

	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockOrderWallets))

	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.CancelOrder(ctx, order.ID, customerID, "")

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
}

func TestOrderService_StartOrder_OnlySeller(t *testing.T) {
	ctx := context.Background()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  uuid.New(),
		SellerID:    uuid.New(),
		Status:      models.OrderStatusPaid,
		TotalAmount: decimal.NewFromInt(500),
	}

	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockOrderWallets))

	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.StartOrder(ctx, order.ID, order.CustomerID)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, apperror.CodeOf(err))
}
