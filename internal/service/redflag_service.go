package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/marketbay/marketbay-backend/internal/logger"
	"github.com/marketbay/marketbay-backend/internal/metrics"
	"github.com/marketbay/marketbay-backend/internal/models"
	"github.com/marketbay/marketbay-backend/internal/pkg/apperror"
	"github.com/marketbay/marketbay-backend/internal/repository"
	"github.com/marketbay/marketbay-backend/internal/validation"
)

// RedFlagStore описывает хранилище красных флагов.
type RedFlagStore interface {
	Create(ctx context.Context, f *models.RedFlag) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RedFlag, error)
	List(ctx context.Context, filter repository.RedFlagFilter) ([]models.RedFlag, error)
	Assign(ctx context.Context, id, adminID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Resolve(ctx context.Context, id, adminID uuid.UUID, status, action, details string) error
	AddNote(ctx context.Context, note *models.RedFlagNote) error
	ListNotes(ctx context.Context, redFlagID uuid.UUID) ([]models.RedFlagNote, error)
	Stats(ctx context.Context) (*models.RedFlagStats, error)
}

// RedFlagService реализует триаж красных флагов.
type RedFlagService struct {
	flags    RedFlagStore
	notifier Notifier
}

func NewRedFlagService(flags RedFlagStore, notifier Notifier) *RedFlagService {
	return &RedFlagService{flags: flags, notifier: notifier}
}

// RaiseFlagInput параметры поднятия флага.
type RaiseFlagInput struct {
	Type            string
	Severity        string
	FlaggedUserID   uuid.UUID
	FlaggedUserRole string
	RelatedUserID   *uuid.UUID
	RelatedUserRole *string
	TriggerSource   string
	ReporterID      *uuid.UUID
	OrderID         *uuid.UUID
	PaymentID       *uuid.UUID
	Title           string
	Description     string
}

// RaiseFlag создаёт новый красный флаг в статусе open.
func (s *RedFlagService) RaiseFlag(ctx context.Context, in RaiseFlagInput) (*models.RedFlag, error) {
	if _, ok := models.ValidRedFlagTypes[in.Type]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный тип флага")
	}
	if _, ok := models.ValidRedFlagSeverities[in.Severity]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестная степень серьёзности")
	}
	if err := validation.ValidateNonEmpty("заголовок", in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRedFlagDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.TriggerSource == "" {
		in.TriggerSource = models.RedFlagSourceSystem
	}

	f := &models.RedFlag{
		Type:            in.Type,
		Severity:        in.Severity,
		FlaggedUserID:   in.FlaggedUserID,
		FlaggedUserRole: in.FlaggedUserRole,
		RelatedUserID:   in.RelatedUserID,
		RelatedUserRole: in.RelatedUserRole,
		TriggerSource:   in.TriggerSource,
		ReporterID:      in.ReporterID,
		OrderID:         in.OrderID,
		PaymentID:       in.PaymentID,
		Title:           in.Title,
		Description:     in.Description,
		Status:          models.RedFlagStatusOpen,
	}
	if err := s.flags.Create(ctx, f); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать флаг")
	}

	metrics.RedFlagsRaised.WithLabelValues(f.Type, f.Severity).Inc()
	// Автор жалобы узнаёт, что она зарегистрирована; помеченного пользователя
	// не уведомляем, чтобы не мешать разбору.
	if f.ReporterID != nil {
		s.notify(*f.ReporterID, models.NotificationRedFlagRaised, f)
	}
	return f, nil
}

func (s *RedFlagService) notify(userID uuid.UUID, event string, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithError(err).WithField("event", event).Warn("не удалось отправить уведомление")
	}
}

// GetFlag возвращает флаг по идентификатору.
func (s *RedFlagService) GetFlag(ctx context.Context, id uuid.UUID) (*models.RedFlag, error) {
	return s.getFlag(ctx, id)
}

// ListFlags возвращает флаги по фильтру.
func (s *RedFlagService) ListFlags(ctx context.Context, filter repository.RedFlagFilter) ([]models.RedFlag, error) {
	if filter.Status != "" {
		if _, ok := models.ValidRedFlagStatuses[filter.Status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус флага")
		}
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.flags.List(ctx, filter)
}

// AssignFlag назначает флаг администратору и переводит его в разбор.
func (s *RedFlagService) AssignFlag(ctx context.Context, id, adminID uuid.UUID) (*models.RedFlag, error) {
	f, err := s.getFlag(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.IsOpen() {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "назначить можно только открытый флаг")
	}
	if err := s.flags.Assign(ctx, id, adminID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось назначить флаг")
	}
	return s.getFlag(ctx, id)
}

// UpdateFlagStatus меняет статус одного флага.
func (s *RedFlagService) UpdateFlagStatus(ctx context.Context, id uuid.UUID, status string) (*models.RedFlag, error) {
	if _, ok := models.ValidRedFlagStatuses[status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус флага")
	}
	if _, err := s.getFlag(ctx, id); err != nil {
		return nil, err
	}
	if err := s.flags.UpdateStatus(ctx, id, status); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить статус флага")
	}
	return s.getFlag(ctx, id)
}

// BulkUpdateStatus обновляет статус пакета флагов. Каждый идентификатор
// обрабатывается независимо: сбой одного не откатывает остальные,
// итог содержит список необновлённых.
func (s *RedFlagService) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status string) (*models.BulkUpdateResult, error) {
	if _, ok := models.ValidRedFlagStatuses[status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус флага")
	}
	if err := validation.ValidateBulkIDs(len(ids)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	result := &models.BulkUpdateResult{}
	for _, id := range ids {
		if err := s.flags.UpdateStatus(ctx, id, status); err != nil {
			logger.Log.WithError(err).WithField("red_flag_id", id).Warn("пакетное обновление: флаг пропущен")
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, id)
			continue
		}
		result.Updated++
	}
	return result, nil
}

// ResolveFlag закрывает флаг с решением. Статус должен быть терминальным.
func (s *RedFlagService) ResolveFlag(ctx context.Context, id, adminID uuid.UUID, status, action, details string) (*models.RedFlag, error) {
	switch status {
	case models.RedFlagStatusResolved, models.RedFlagStatusDismissed, models.RedFlagStatusActionTaken:
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "флаг можно закрыть только терминальным статусом")
	}
	f, err := s.getFlag(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status == models.RedFlagStatusResolved || f.Status == models.RedFlagStatusDismissed || f.Status == models.RedFlagStatusActionTaken {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "флаг уже закрыт")
	}
	if err := s.flags.Resolve(ctx, id, adminID, status, action, details); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось закрыть флаг")
	}
	return s.getFlag(ctx, id)
}

// AddNote добавляет заметку модератора к флагу.
func (s *RedFlagService) AddNote(ctx context.Context, redFlagID, authorID uuid.UUID, text string) (*models.RedFlagNote, error) {
	if err := validation.ValidateRedFlagNote(text); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if _, err := s.getFlag(ctx, redFlagID); err != nil {
		return nil, err
	}

	note := &models.RedFlagNote{RedFlagID: redFlagID, AuthorID: authorID, Note: text}
	if err := s.flags.AddNote(ctx, note); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось добавить заметку")
	}
	return note, nil
}

// ListNotes возвращает заметки по флагу.
func (s *RedFlagService) ListNotes(ctx context.Context, redFlagID uuid.UUID) ([]models.RedFlagNote, error) {
	if _, err := s.getFlag(ctx, redFlagID); err != nil {
		return nil, err
	}
	return s.flags.ListNotes(ctx, redFlagID)
}

// GetFlagStats возвращает агрегированную статистику по флагам.
func (s *RedFlagService) GetFlagStats(ctx context.Context) (*models.RedFlagStats, error) {
	return s.flags.Stats(ctx)
}

func (s *RedFlagService) getFlag(ctx context.Context, id uuid.UUID) (*models.RedFlag, error) {
	f, err := s.flags.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRedFlagNotFound) {
			return nil, apperror.ErrRedFlagNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить флаг")
	}
	return f, nil
}
