package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketbay/marketbay-backend/internal/logger"
	"github.com/marketbay/marketbay-backend/internal/models"
	"github.com/marketbay/marketbay-backend/internal/pkg/apperror"
	"github.com/marketbay/marketbay-backend/internal/repository"
	"github.com/marketbay/marketbay-backend/internal/validation"
)

// OrderWallets описывает операции кошельков, нужные жизненному циклу заказа.
type OrderWallets interface {
	PayForOrder(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error)
	CreditRefund(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error)
	MoveToEscrow(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error)
	ReleaseFromEscrow(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error)
	RefundFromEscrow(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error)
}

// OrderRepo описывает хранилище заказов.
type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, actorID uuid.UUID, note string) error
	SetEscrowStatus(ctx context.Context, orderID uuid.UUID, escrowStatus string) error
	ListStatusUpdates(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusUpdate, error)
}

// OrderService реализует жизненный цикл заказа: оплата через заморозку
// на кошельке продавца, выплата при завершении, возврат при отмене.
//
// Списание покупателя и заморозка продавца выполняются двумя независимыми
// операциями кошелька. Между ними возможен сбой; такие случаи попадают
// в журнал и разбираются вручную через admin_credit/admin_debit.
type OrderService struct {
	orders  OrderRepo
	wallets OrderWallets
}

func NewOrderService(orders OrderRepo, wallets OrderWallets) *OrderService {
	return &OrderService{orders: orders, wallets: wallets}
}

// CreateOrder создаёт заказ в статусе pending без движения средств.
func (s *OrderService) CreateOrder(ctx context.Context, customerID, sellerID uuid.UUID, productID *uuid.UUID, title string, totalAmount decimal.Decimal) (*models.Order, error) {
	if err := validation.ValidateOrderTitle(title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if !totalAmount.IsPositive() {
		return nil, apperror.New(apperror.ErrCodeInvalidAmount, "сумма заказа должна быть положительной")
	}
	if customerID == sellerID {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "покупатель и продавец не могут совпадать")
	}

	o := &models.Order{
		CustomerID:   customerID,
		SellerID:     sellerID,
		ProductID:    productID,
		Title:        title,
		TotalAmount:  totalAmount,
		Status:       models.OrderStatusPending,
		EscrowStatus: models.EscrowStatusNone,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать заказ")
	}
	return o, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.getOrder(ctx, id)
}

// ListUserOrders возвращает заказы, где пользователь является стороной.
func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.orders.ListByUser(ctx, userID, limit, offset)
}

// ListStatusHistory возвращает аудит смен статуса заказа.
func (s *OrderService) ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusUpdate, error) {
	if _, err := s.getOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orders.ListStatusUpdates(ctx, orderID)
}

// PayOrder проводит оплату: списывает доступный баланс покупателя и
// ставит ту же сумму в заморозку на кошельке продавца.
func (s *OrderService) PayOrder(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error) {
	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != actorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "оплатить заказ может только покупатель")
	}
	if o.Status != models.OrderStatusPending {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "оплатить можно только ожидающий заказ")
	}

	if _, err := s.wallets.PayForOrder(ctx, o.CustomerID, o.TotalAmount, o.ID); err != nil {
		return nil, err
	}
	if _, err := s.wallets.MoveToEscrow(ctx, o.SellerID, o.TotalAmount, o.ID); err != nil {
		logger.Log.WithError(err).WithField("order_id", o.ID).Error("оплата списана, заморозка продавцу не проведена")
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, o.ID, models.OrderStatusPaid, actorID, "оплата проведена"); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить статус заказа")
	}
	if err := s.orders.SetEscrowStatus(ctx, o.ID, models.EscrowStatusHeld); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить состояние эскроу")
	}
	return s.getOrder(ctx, orderID)
}

// StartOrder переводит оплаченный заказ в работу.
func (s *OrderService) StartOrder(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error) {
	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.SellerID != actorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "начать работу может только продавец")
	}
	if o.Status != models.OrderStatusPaid {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "в работу можно взять только оплаченный заказ")
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, models.OrderStatusInProgress, actorID, ""); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить статус заказа")
	}
	return s.getOrder(ctx, orderID)
}

// CompleteOrder завершает заказ и выплачивает заморозку продавцу.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error) {
	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != actorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "подтвердить завершение может только покупатель")
	}
	if o.Status != models.OrderStatusPaid && o.Status != models.OrderStatusInProgress {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "завершить можно только оплаченный заказ")
	}
	if o.HasDispute {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "по заказу идёт спор, завершение заблокировано")
	}

	if _, err := s.wallets.ReleaseFromEscrow(ctx, o.SellerID, o.TotalAmount, o.ID); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, models.OrderStatusCompleted, actorID, "заказ завершён"); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить статус заказа")
	}
	if err := s.orders.SetEscrowStatus(ctx, o.ID, models.EscrowStatusReleased); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить состояние эскроу")
	}
	return s.getOrder(ctx, orderID)
}

// CancelOrder отменяет заказ. Для оплаченного заказа заморозка продавца
// снимается и сумма возвращается покупателю.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, actorID uuid.UUID, reason string) (*models.Order, error) {
	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsParticipant(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отменить заказ может только его сторона")
	}
	switch o.Status {
	case models.OrderStatusPending, models.OrderStatusPaid:
	default:
		return nil, apperror.New(apperror.ErrCodeBadRequest, "заказ в текущем статусе нельзя отменить")
	}
	if o.HasDispute {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "по заказу идёт спор, отмена заблокирована")
	}

	if o.Status == models.OrderStatusPaid {
		if _, err := s.wallets.RefundFromEscrow(ctx, o.SellerID, o.TotalAmount, o.ID); err != nil {
			return nil, err
		}
		if _, err := s.wallets.CreditRefund(ctx, o.CustomerID, o.TotalAmount, o.ID); err != nil {
			logger.Log.WithError(err).WithField("order_id", o.ID).Error("заморозка снята, возврат покупателю не зачислен")
			return nil, err
		}
		if err := s.orders.SetEscrowStatus(ctx, o.ID, models.EscrowStatusRefunded); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить состояние эскроу")
		}
	}

	if err := s.orders.UpdateStatus(ctx, o.ID, models.OrderStatusCancelled, actorID, reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить статус заказа")
	}
	return s.getOrder(ctx, orderID)
}

func (s *OrderService) getOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить заказ")
	}
	return o, nil
}
