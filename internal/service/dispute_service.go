package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketbay/marketbay-backend/internal/logger"
	"github.com/marketbay/marketbay-backend/internal/metrics"
	"github.com/marketbay/marketbay-backend/internal/models"
	"github.com/marketbay/marketbay-backend/internal/pkg/apperror"
	"github.com/marketbay/marketbay-backend/internal/repository"
	"github.com/marketbay/marketbay-backend/internal/validation"
)

// DisputeStore описывает хранилище споров.
type DisputeStore interface {
	Create(ctx context.Context, d *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error)
	List(ctx context.Context, filter repository.DisputeFilter) ([]models.Dispute, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error)
	AddMessage(ctx context.Context, d *models.Dispute, msg *models.DisputeMessage) error
	ListMessages(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeMessage, error)
	Assign(ctx context.Context, id, adminID uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	Escalate(ctx context.Context, id uuid.UUID, reason string) error
	Close(ctx context.Context, id, adminID uuid.UUID, note string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Resolve(ctx context.Context, p repository.ResolveParams) (*models.Dispute, error)
	Stats(ctx context.Context) (*models.DisputeStats, error)
}

// OrderStore описывает доступ к заказам, нужный спорам.
type OrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Notifier отправляет уведомление пользователю. Доставка не гарантируется,
// ошибки отправки не влияют на исход операции.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// DisputeService реализует жизненный цикл спора.
type DisputeService struct {
	disputes DisputeStore
	orders   OrderStore
	numbers  *DisputeNumberGenerator
	notifier Notifier
}

func NewDisputeService(disputes DisputeStore, orders OrderStore, numbers *DisputeNumberGenerator, notifier Notifier) *DisputeService {
	return &DisputeService{disputes: disputes, orders: orders, numbers: numbers, notifier: notifier}
}

// CreateDispute открывает спор по заказу от имени одной из его сторон.
func (s *DisputeService) CreateDispute(ctx context.Context, requesterID, orderID uuid.UUID, reason, description string, evidence []string) (*models.Dispute, error) {
	if _, ok := models.ValidDisputeReasons[reason]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестная причина спора")
	}
	if err := validation.ValidateDisputeDescription(description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEvidence(evidence); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить заказ")
	}
	if !order.IsParticipant(requesterID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "спор может открыть только сторона заказа")
	}
	if !order.CanBeDisputed() {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "заказ в текущем статусе нельзя оспорить")
	}
	if _, err := s.disputes.GetActiveByOrderID(ctx, orderID); err == nil {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "по заказу уже открыт спор")
	} else if !errors.Is(err, repository.ErrDisputeNotFound) {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить наличие спора")
	}

	d := &models.Dispute{
		DisputeNumber: s.numbers.Next(ctx),
		OrderID:       orderID,
		ProductID:     order.ProductID,
		CustomerID:    order.CustomerID,
		SellerID:      order.SellerID,
		Reason:        reason,
		Description:   description,
		Evidence:      evidence,
		Status:        models.DisputeStatusOpen,
		Priority:      models.PriorityForReason(reason),
	}
	if err := s.disputes.Create(ctx, d); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать спор")
	}

	metrics.DisputesOpened.WithLabelValues(reason).Inc()
	s.notify(order.CustomerID, models.NotificationDisputeOpened, d)
	s.notify(order.SellerID, models.NotificationDisputeOpened, d)
	return d, nil
}

// GetDispute возвращает спор по идентификатору.
func (s *DisputeService) GetDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return s.getDispute(ctx, id)
}

// GetDisputeByOrder возвращает активный спор по заказу.
func (s *DisputeService) GetDisputeByOrder(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error) {
	d, err := s.disputes.GetActiveByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить спор")
	}
	return d, nil
}

// ListUserDisputes возвращает споры, где пользователь является стороной.
func (s *DisputeService) ListUserDisputes(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	return s.disputes.ListByUser(ctx, userID, limit, offset)
}

// ListDisputes возвращает споры по фильтру (админский обзор).
func (s *DisputeService) ListDisputes(ctx context.Context, filter repository.DisputeFilter) ([]models.Dispute, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.disputes.List(ctx, filter)
}

// AddMessage добавляет сообщение в тред спора. Роль отправителя выводится
// из сторон спора: все прочие отправители считаются администраторами.
func (s *DisputeService) AddMessage(ctx context.Context, disputeID, senderID uuid.UUID, senderRole, text string, attachments []string) (*models.DisputeMessage, error) {
	if err := validation.ValidateDisputeMessage(text); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	d, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if err := requireDisputeAccess(d, senderID, senderRole); err != nil {
		return nil, err
	}
	if d.Status == models.DisputeStatusClosed {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "спор закрыт, сообщения больше не принимаются")
	}

	msg := &models.DisputeMessage{
		DisputeID:   d.ID,
		SenderID:    senderID,
		SenderRole:  d.ParticipantRole(senderID),
		Text:        text,
		Attachments: attachments,
	}
	if err := s.disputes.AddMessage(ctx, d, msg); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось добавить сообщение")
	}

	// Уведомляем противоположную сторону.
	switch msg.SenderRole {
	case models.DisputeRoleCustomer:
		s.notify(d.SellerID, models.NotificationDisputeMessage, msg)
	case models.DisputeRoleSeller:
		s.notify(d.CustomerID, models.NotificationDisputeMessage, msg)
	default:
		s.notify(d.CustomerID, models.NotificationDisputeMessage, msg)
		s.notify(d.SellerID, models.NotificationDisputeMessage, msg)
	}
	return msg, nil
}

// ListMessages возвращает тред спора его сторонам и администраторам.
func (s *DisputeService) ListMessages(ctx context.Context, disputeID, requesterID uuid.UUID, requesterRole string) ([]models.DisputeMessage, error) {
	d, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if err := requireDisputeAccess(d, requesterID, requesterRole); err != nil {
		return nil, err
	}
	return s.disputes.ListMessages(ctx, disputeID)
}

// AssignDispute назначает спор администратору и переводит его в разбор.
func (s *DisputeService) AssignDispute(ctx context.Context, disputeID, adminID uuid.UUID) (*models.Dispute, error) {
	d, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d.IsTerminal() {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "спор уже завершён")
	}
	if err := s.disputes.Assign(ctx, disputeID, adminID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось назначить спор")
	}
	s.notify(d.CustomerID, models.NotificationDisputeAssigned, d)
	s.notify(d.SellerID, models.NotificationDisputeAssigned, d)
	return s.getDispute(ctx, disputeID)
}

// RequestResponse переводит спор в ожидание ответа сторон.
func (s *DisputeService) RequestResponse(ctx context.Context, disputeID uuid.UUID) (*models.Dispute, error) {
	d, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d.Status != models.DisputeStatusUnderReview {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "запросить ответ можно только из разбора")
	}
	if err := s.disputes.SetStatus(ctx, disputeID, models.DisputeStatusAwaitingResponse); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить статус спора")
	}
	return s.getDispute(ctx, disputeID)
}

// ResolveDispute выносит решение по спору. Спор, заказ и оба кошелька
// меняются одной транзакцией: при любой ошибке ничего не фиксируется.
func (s *DisputeService) ResolveDispute(ctx context.Context, disputeID, adminID uuid.UUID, resolution, note string, refundAmount *decimal.Decimal) (*models.Dispute, error) {
	if _, ok := models.ValidDisputeResolutions[resolution]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестное решение спора")
	}

	d, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !d.CanBeResolved() {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "спор в текущем статусе нельзя решить")
	}

	order, err := s.orders.GetByID(ctx, d.OrderID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить заказ спора")
	}

	refund := decimal.Zero
	switch resolution {
	case models.DisputeResolutionFullRefund, models.DisputeResolutionCustomerWins:
		refund = order.TotalAmount
	case models.DisputeResolutionPartialRefund:
		if refundAmount == nil || !refundAmount.IsPositive() || refundAmount.GreaterThan(order.TotalAmount) {
			return nil, apperror.New(apperror.ErrCodeBadRequest, "сумма частичного возврата должна быть в пределах суммы заказа")
		}
		refund = *refundAmount
	}

	resolved, err := s.disputes.Resolve(ctx, repository.ResolveParams{
		DisputeID:    disputeID,
		AdminID:      adminID,
		Resolution:   resolution,
		Note:         note,
		RefundAmount: refund,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDisputeStateChanged):
			return nil, apperror.New(apperror.ErrCodeBadRequest, "спор в текущем статусе нельзя решить")
		case errors.Is(err, models.ErrInsufficientPending):
			return nil, apperror.New(apperror.ErrCodeInsufficientPending, "в заморозке по заказу недостаточно средств")
		case errors.Is(err, repository.ErrWalletNotFound):
			return nil, apperror.ErrWalletNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось решить спор")
	}

	metrics.DisputesResolved.WithLabelValues(resolution).Inc()
	s.notify(resolved.CustomerID, models.NotificationDisputeResolved, resolved)
	s.notify(resolved.SellerID, models.NotificationDisputeResolved, resolved)
	return resolved, nil
}

// CloseDispute закрывает ранее решённый спор.
func (s *DisputeService) CloseDispute(ctx context.Context, disputeID, adminID uuid.UUID, closureNote string) (*models.Dispute, error) {
	d, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !d.CanBeClosed() {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "закрыть можно только решённый спор")
	}
	if err := s.disputes.Close(ctx, disputeID, adminID, closureNote); err != nil {
		if errors.Is(err, repository.ErrDisputeStateChanged) {
			return nil, apperror.New(apperror.ErrCodeBadRequest, "закрыть можно только решённый спор")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось закрыть спор")
	}
	return s.getDispute(ctx, disputeID)
}

// EscalateDispute форсирует высокий приоритет спора. Намеренно не ограничен
// canBeResolved: срочные случаи поднимаются из любого незавершённого статуса.
func (s *DisputeService) EscalateDispute(ctx context.Context, disputeID, requesterID uuid.UUID, requesterRole, reason string) (*models.Dispute, error) {
	d, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if err := requireDisputeAccess(d, requesterID, requesterRole); err != nil {
		return nil, err
	}
	if d.IsTerminal() {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "завершённый спор нельзя эскалировать")
	}
	if err := s.disputes.Escalate(ctx, disputeID, reason); err != nil {
		if errors.Is(err, repository.ErrDisputeStateChanged) {
			return nil, apperror.New(apperror.ErrCodeBadRequest, "завершённый спор нельзя эскалировать")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось эскалировать спор")
	}
	s.notify(d.CustomerID, models.NotificationDisputeEscalated, d)
	s.notify(d.SellerID, models.NotificationDisputeEscalated, d)
	return s.getDispute(ctx, disputeID)
}

// DeleteDispute мягко удаляет спор: он исчезает из всех выборок по умолчанию.
func (s *DisputeService) DeleteDispute(ctx context.Context, disputeID uuid.UUID) error {
	if err := s.disputes.SoftDelete(ctx, disputeID); err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return apperror.ErrDisputeNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось удалить спор")
	}
	return nil
}

// GetDisputeStats возвращает агрегированную статистику по спорам.
func (s *DisputeService) GetDisputeStats(ctx context.Context) (*models.DisputeStats, error) {
	return s.disputes.Stats(ctx)
}

func (s *DisputeService) getDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	d, err := s.disputes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить спор")
	}
	return d, nil
}

// notify отправляет уведомление и только логирует сбой доставки.
// requireDisputeAccess пускает к спору только его стороны и администраторов.
func requireDisputeAccess(d *models.Dispute, userID uuid.UUID, role string) error {
	if d.ParticipantRole(userID) == models.DisputeRoleAdmin && role != models.RoleAdmin {
		return apperror.New(apperror.ErrCodeForbidden, "доступ к спору имеют только его стороны")
	}
	return nil
}

func (s *DisputeService) notify(userID uuid.UUID, event string, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithError(err).WithField("event", event).Warn("не удалось отправить уведомление")
	}
}
