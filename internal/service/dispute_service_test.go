package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/marketbay-backend/internal/models"
	"github.com/marketbay/marketbay-backend/internal/pkg/apperror"
	"github.com/marketbay/marketbay-backend/internal/repository"
)

type mockDisputeStore struct {
	mock.Mock
}

func (m *mockDisputeStore) Create(ctx context.Context, d *models.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *mockDisputeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) List(ctx context.Context, filter repository.DisputeFilter) ([]models.Dispute, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) AddMessage(ctx context.Context, d *models.Dispute, msg *models.DisputeMessage) error {
	args := m.Called(ctx, d, msg)
	return args.Error(0)
}

func (m *mockDisputeStore) ListMessages(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeMessage, error) {
	args := m.Called(ctx, disputeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DisputeMessage), args.Error(1)
}

func (m *mockDisputeStore) Assign(ctx context.Context, id, adminID uuid.UUID) error {
	args := m.Called(ctx, id, adminID)
	return args.Error(0)
}

func (m *mockDisputeStore) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockDisputeStore) Escalate(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockDisputeStore) Close(ctx context.Context, id, adminID uuid.UUID, note string) error {
	args := m.Called(ctx, id, adminID, note)
	return args.Error(0)
}

func (m *mockDisputeStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockDisputeStore) Resolve(ctx context.Context, p repository.ResolveParams) (*models.Dispute, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) Stats(ctx context.Context) (*models.DisputeStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DisputeStats), args.Error(1)
}

func (m *mockDisputeStore) NextSequence(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	args := m.Called(userID, event, data)
	return args.Error(0)
}

func newDisputeFixture() (*mockDisputeStore, *mockOrderStore, *mockNotifier, *DisputeService) {
	disputes := new(mockDisputeStore)
	orders := new(mockOrderStore)
	notifier := new(mockNotifier)
	svc := NewDisputeService(disputes, orders, NewDisputeNumberGenerator(disputes), notifier)
	return disputes, orders, notifier, svc
}

func paidOrder(customerID, sellerID uuid.UUID, amount int64) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		SellerID:    sellerID,
		Status:      models.OrderStatusPaid,
		TotalAmount: decimal.NewFromInt(amount),
	}
}

func TestDisputeService_CreateDispute(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	sellerID := uuid.New()
	order := paidOrder(customerID, sellerID, 500)

	disputes, orders, notifier, svc := newDisputeFixture()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	disputes.On("GetActiveByOrderID", ctx, order.ID).Return(nil, repository.ErrDisputeNotFound)
	disputes.On("NextSequence", ctx).Return(int64(42), nil)
	disputes.On("Create", ctx, mock.Anything).Return(nil)
	notifier.On("BroadcastToUser", customerID, models.NotificationDisputeOpened, mock.Anything).Return(nil)
	notifier.On("BroadcastToUser", sellerID, models.NotificationDisputeOpened, mock.Anything).Return(nil)

	description := "Товар не пришёл, продавец не отвечает уже две недели"
	d, err := svc.CreateDispute(ctx, customerID, order.ID, models.DisputeReasonProductNotReceived, description, nil)

	require.NoError(t, err)
	assert.Equal(t, models.DisputeStatusOpen, d.Status)
	assert.Equal(t, models.DisputePriorityHigh, d.Priority)
	assert.Equal(t, customerID, d.CustomerID)
	assert.Equal(t, sellerID, d.SellerID)
	assert.True(t, strings.HasPrefix(d.DisputeNumber, "DSP-"))
	assert.True(t, strings.HasSuffix(d.DisputeNumber, "-000042"))
	disputes.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestDisputeService_CreateDispute_UnknownReason(t *testing.T) {
	ctx := context.Background()
	_, _, _, svc := newDisputeFixture()

	_, err := svc.CreateDispute(ctx, uuid.New(), uuid.New(), "bad_mood", "Достаточно длинное описание спора", nil)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, apperror.CodeOf(err))
}

func TestDisputeService_CreateDispute_ShortDescription(t *testing.T) {
	ctx := context.Background()
	_, _, _, svc := newDisputeFixture()

	_, err := svc.CreateDispute(ctx, uuid.New(), uuid.New(), models.DisputeReasonOther, "коротко", nil)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, apperror.CodeOf(err))
}

func TestDisputeService_CreateDispute_NotParticipant(t *testing.T) {
	ctx := context.Background()
	order := paidOrder(uuid.New(), uuid.New(), 500)

	_, orders, _, svc := newDisputeFixture()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.CreateDispute(ctx, uuid.New(), order.ID, models.DisputeReasonOther, "Товар пришёл повреждённым, упаковка вскрыта", nil)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, apperror.CodeOf(err))
}

func TestDisputeService_CreateDispute_OrderNotDisputable(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	order := paidOrder(customerID, uuid.New(), 500)
	order.Status = models.OrderStatusPending

	_, orders, _, svc := newDisputeFixture()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.CreateDispute(ctx, customerID, order.ID, models.DisputeReasonOther, "Товар пришёл повреждённым, упаковка вскрыта", nil)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
}

func TestDisputeService_CreateDispute_DuplicateActive(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	order := paidOrder(customerID, uuid.New(), 500)

	disputes, orders, _, svc := newDisputeFixture()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	disputes.On("GetActiveByOrderID", ctx, order.ID).Return(&models.Dispute{ID: uuid.New()}, nil)

	_, err := svc.CreateDispute(ctx, customerID, order.ID, models.DisputeReasonOther, "Товар пришёл повреждённым, упаковка вскрыта", nil)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
	disputes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDisputeService_AddMessage_ClosedDispute(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	d := &models.Dispute{ID: uuid.New(), CustomerID: customerID, SellerID: uuid.New(), Status: models.DisputeStatusClosed}

	disputes, _, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)

	_, err := svc.AddMessage(ctx, d.ID, customerID, models.RoleCustomer, "Хочу добавить детали", nil)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
}

func TestDisputeService_AddMessage_StrangerForbidden(t *testing.T) {
	ctx := context.Background()
	d := &models.Dispute{ID: uuid.New(), CustomerID: uuid.New(), SellerID: uuid.New(), Status: models.DisputeStatusOpen}

	disputes, _, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)

	_, err := svc.AddMessage(ctx, d.ID, uuid.New(), models.RoleCustomer, "Я тут мимо проходил", nil)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, apperror.CodeOf(err))
	disputes.AssertNotCalled(t, "AddMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_AddMessage_AdminAllowed(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	sellerID := uuid.New()
	adminID := uuid.New()
	d := &models.Dispute{ID: uuid.New(), CustomerID: customerID, SellerID: sellerID, Status: models.DisputeStatusUnderReview}

	disputes, _, notifier, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)
	disputes.On("AddMessage", ctx, d, mock.Anything).Return(nil)
	notifier.On("BroadcastToUser", customerID, models.NotificationDisputeMessage, mock.Anything).Return(nil)
	notifier.On("BroadcastToUser", sellerID, models.NotificationDisputeMessage, mock.Anything).Return(nil)

	msg, err := svc.AddMessage(ctx, d.ID, adminID, models.RoleAdmin, "Запросили документы у продавца", nil)

	require.NoError(t, err)
	assert.Equal(t, models.DisputeRoleAdmin, msg.SenderRole)
	notifier.AssertExpectations(t)
}

func TestDisputeService_AddMessage_NotifiesCounterpart(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	sellerID := uuid.New()
	d := &models.Dispute{
		ID:         uuid.New(),
		CustomerID: customerID,
		SellerID:   sellerID,
		Status:     models.DisputeStatusOpen,
	}

	disputes, _, notifier, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)
	disputes.On("AddMessage", ctx, d, mock.Anything).Return(nil)
	notifier.On("BroadcastToUser", sellerID, models.NotificationDisputeMessage, mock.Anything).Return(nil)

	msg, err := svc.AddMessage(ctx, d.ID, customerID, models.RoleCustomer, "Посылка так и не пришла", nil)

	require.NoError(t, err)
	assert.Equal(t, models.DisputeRoleCustomer, msg.SenderRole)
	notifier.AssertExpectations(t)
	notifier.AssertNotCalled(t, "BroadcastToUser", customerID, models.NotificationDisputeMessage, mock.Anything)
}

func TestDisputeService_ResolveDispute_FullRefund(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()
	customerID := uuid.New()
	sellerID := uuid.New()
	order := paidOrder(customerID, sellerID, 500)
	d := &models.Dispute{
		ID:         uuid.New(),
		OrderID:    order.ID,
		CustomerID: customerID,
		SellerID:   sellerID,
		Status:     models.DisputeStatusUnderReview,
	}
	resolved := &models.Dispute{ID: d.ID, CustomerID: customerID, SellerID: sellerID, Status: models.DisputeStatusResolved}

	disputes, orders, notifier, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	disputes.On("Resolve", ctx, mock.MatchedBy(func(p repository.ResolveParams) bool {
		return p.DisputeID == d.ID && p.AdminID == adminID &&
			p.Resolution == models.DisputeResolutionFullRefund &&
			p.RefundAmount.Equal(decimal.NewFromInt(500))
	})).Return(resolved, nil)
	notifier.On("BroadcastToUser", customerID, models.NotificationDisputeResolved, mock.Anything).Return(nil)
	notifier.On("BroadcastToUser", sellerID, models.NotificationDisputeResolved, mock.Anything).Return(nil)

	got, err := svc.ResolveDispute(ctx, d.ID, adminID, models.DisputeResolutionFullRefund, "Продавец не вышел на связь", nil)

	require.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, got.Status)
	disputes.AssertExpectations(t)
}

func TestDisputeService_ResolveDispute_PartialRefundBounds(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()
	order := paidOrder(uuid.New(), uuid.New(), 500)
	d := &models.Dispute{ID: uuid.New(), OrderID: order.ID, Status: models.DisputeStatusUnderReview}

	disputes, orders, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	tooMuch := decimal.NewFromInt(600)
	_, err := svc.ResolveDispute(ctx, d.ID, adminID, models.DisputeResolutionPartialRefund, "", &tooMuch)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))

	_, err = svc.ResolveDispute(ctx, d.ID, adminID, models.DisputeResolutionPartialRefund, "", nil)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))

	negative := decimal.NewFromInt(-10)
	_, err = svc.ResolveDispute(ctx, d.ID, adminID, models.DisputeResolutionPartialRefund, "", &negative)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))

	zero := decimal.Zero
	_, err = svc.ResolveDispute(ctx, d.ID, adminID, models.DisputeResolutionPartialRefund, "", &zero)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))

	disputes.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestDisputeService_ResolveDispute_SellerWinsNoRefund(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()
	customerID := uuid.New()
	sellerID := uuid.New()
	order := paidOrder(customerID, sellerID, 500)
	d := &models.Dispute{
		ID:         uuid.New(),
		OrderID:    order.ID,
		CustomerID: customerID,
		SellerID:   sellerID,
		Status:     models.DisputeStatusOpen,
	}
	resolved := &models.Dispute{ID: d.ID, CustomerID: customerID, SellerID: sellerID, Status: models.DisputeStatusResolved}

	disputes, orders, notifier, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	disputes.On("Resolve", ctx, mock.MatchedBy(func(p repository.ResolveParams) bool {
		return p.RefundAmount.IsZero()
	})).Return(resolved, nil)
	notifier.On("BroadcastToUser", mock.Anything, models.NotificationDisputeResolved, mock.Anything).Return(nil)

	_, err := svc.ResolveDispute(ctx, d.ID, adminID, models.DisputeResolutionSellerWins, "Доставка подтверждена", nil)

	require.NoError(t, err)
	disputes.AssertExpectations(t)
}

func TestDisputeService_ResolveDispute_AlreadyResolved(t *testing.T) {
	ctx := context.Background()
	d := &models.Dispute{ID: uuid.New(), Status: models.DisputeStatusResolved}

	disputes, _, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)

	_, err := svc.ResolveDispute(ctx, d.ID, uuid.New(), models.DisputeResolutionNoAction, "", nil)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
}

func TestDisputeService_ResolveDispute_StateChangedConcurrently(t *testing.T) {
	ctx := context.Background()
	order := paidOrder(uuid.New(), uuid.New(), 500)
	d := &models.Dispute{ID: uuid.New(), OrderID: order.ID, Status: models.DisputeStatusOpen}

	disputes, orders, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	disputes.On("Resolve", ctx, mock.Anything).Return(nil, repository.ErrDisputeStateChanged)

	_, err := svc.ResolveDispute(ctx, d.ID, uuid.New(), models.DisputeResolutionNoAction, "", nil)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
}

func TestDisputeService_CloseDispute_RequiresResolved(t *testing.T) {
	ctx := context.Background()
	d := &models.Dispute{ID: uuid.New(), Status: models.DisputeStatusUnderReview}

	disputes, _, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)

	_, err := svc.CloseDispute(ctx, d.ID, uuid.New(), "")

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
	disputes.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_EscalateDispute_FromAwaitingResponse(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	sellerID := uuid.New()
	d := &models.Dispute{
		ID:         uuid.New(),
		CustomerID: customerID,
		SellerID:   sellerID,
		Status:     models.DisputeStatusAwaitingResponse,
		Priority:   models.DisputePriorityMedium,
	}
	escalated := &models.Dispute{
		ID:          d.ID,
		Status:      models.DisputeStatusAwaitingResponse,
		Priority:    models.DisputePriorityHigh,
		IsEscalated: true,
	}

	disputes, _, notifier, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil).Once()
	disputes.On("Escalate", ctx, d.ID, "Клиент грозит судом").Return(nil)
	notifier.On("BroadcastToUser", customerID, models.NotificationDisputeEscalated, mock.Anything).Return(nil)
	notifier.On("BroadcastToUser", sellerID, models.NotificationDisputeEscalated, mock.Anything).Return(nil)
	disputes.On("GetByID", ctx, d.ID).Return(escalated, nil).Once()

	got, err := svc.EscalateDispute(ctx, d.ID, customerID, models.RoleCustomer, "Клиент грозит судом")

	require.NoError(t, err)
	assert.True(t, got.IsEscalated)
	assert.Equal(t, models.DisputePriorityHigh, got.Priority)
	disputes.AssertExpectations(t)
}

func TestDisputeService_EscalateDispute_TerminalRejected(t *testing.T) {
	ctx := context.Background()
	d := &models.Dispute{ID: uuid.New(), Status: models.DisputeStatusClosed}

	disputes, _, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)

	_, err := svc.EscalateDispute(ctx, d.ID, uuid.New(), models.RoleAdmin, "Клиент грозит судом")

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
}

func TestDisputeService_EscalateDispute_StrangerForbidden(t *testing.T) {
	ctx := context.Background()
	d := &models.Dispute{ID: uuid.New(), CustomerID: uuid.New(), SellerID: uuid.New(), Status: models.DisputeStatusOpen}

	disputes, _, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)

	_, err := svc.EscalateDispute(ctx, d.ID, uuid.New(), models.RoleSeller, "Очень срочно")

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, apperror.CodeOf(err))
	disputes.AssertNotCalled(t, "Escalate", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_ListMessages_StrangerForbidden(t *testing.T) {
	ctx := context.Background()
	d := &models.Dispute{ID: uuid.New(), CustomerID: uuid.New(), SellerID: uuid.New(), Status: models.DisputeStatusOpen}

	disputes, _, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)

	_, err := svc.ListMessages(ctx, d.ID, uuid.New(), models.RoleCustomer)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, apperror.CodeOf(err))
	disputes.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
}

func TestDisputeService_ListMessages_PartyAllowed(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()
	d := &models.Dispute{ID: uuid.New(), CustomerID: uuid.New(), SellerID: sellerID, Status: models.DisputeStatusOpen}

	disputes, _, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)
	disputes.On("ListMessages", ctx, d.ID).Return([]models.DisputeMessage{}, nil)

	_, err := svc.ListMessages(ctx, d.ID, sellerID, models.RoleSeller)

	require.NoError(t, err)
	disputes.AssertExpectations(t)
}

func TestDisputeService_RequestResponse_OnlyFromUnderReview(t *testing.T) {
	ctx := context.Background()
	d := &models.Dispute{ID: uuid.New(), Status: models.DisputeStatusOpen}

	disputes, _, _, svc := newDisputeFixture()
	disputes.On("GetByID", ctx, d.ID).Return(d, nil)

	_, err := svc.RequestResponse(ctx, d.ID)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))
}

func TestDisputeService_DeleteDispute_NotFound(t *testing.T) {
	ctx := context.Background()
	disputeID := uuid.New()

	disputes, _, _, svc := newDisputeFixture()
	disputes.On("SoftDelete", ctx, disputeID).Return(repository.ErrDisputeNotFound)

	err := svc.DeleteDispute(ctx, disputeID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrDisputeNotFound))
}
