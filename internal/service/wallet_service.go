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
)

// WalletStore описывает хранилище кошельков.
type WalletStore interface {
	GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Save(ctx context.Context, wallet *models.Wallet, entry *models.Transaction) error
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]models.Transaction, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

// WalletService исполняет операции эскроу-движка. Кошелёк мутируется только
// через его методы; при конкурентном изменении операция повторяется с
// перечитанным состоянием.
type WalletService struct {
	store    WalletStore
	attempts int
	notifier Notifier
}

func NewWalletService(store WalletStore, retryAttempts int, notifier Notifier) *WalletService {
	if retryAttempts < 1 {
		retryAttempts = 3
	}
	return &WalletService{store: store, attempts: retryAttempts, notifier: notifier}
}

// mutation применяет метод кошелька и возвращает запись журнала.
type mutation func(w *models.Wallet) (*models.Transaction, error)

// apply выполняет цикл чтение-мутация-сохранение с повторами при конфликте версий.
func (s *WalletService) apply(ctx context.Context, userID uuid.UUID, op string, m mutation) (*models.Transaction, error) {
	for attempt := 0; attempt < s.attempts; attempt++ {
		wallet, err := s.store.GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить кошелёк")
		}

		entry, err := m(wallet)
		if err != nil {
			return nil, mapLedgerError(err)
		}

		if err := s.store.Save(ctx, wallet, entry); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				continue
			}
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить кошелёк")
		}

		metrics.WalletOperations.WithLabelValues(op).Inc()
		return entry, nil
	}
	return nil, apperror.New(apperror.ErrCodeConflict, "кошелёк изменён конкурентно, повторите операцию")
}

// Deposit пополняет доступный баланс.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error) {
	return s.apply(ctx, userID, "deposit", func(w *models.Wallet) (*models.Transaction, error) {
		return w.CreditAvailable(amount, models.TransactionTypeDeposit, nil, "Пополнение баланса")
	})
}

// Withdraw списывает доступный баланс с учётом счётчика выведенного.
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error) {
	return s.apply(ctx, userID, "withdraw", func(w *models.Wallet) (*models.Transaction, error) {
		return w.DebitAvailable(amount, models.TransactionTypeWithdrawal, nil, "Вывод средств")
	})
}

// AdminCredit ручное зачисление администратором.
func (s *WalletService) AdminCredit(ctx context.Context, adminID, userID uuid.UUID, amount decimal.Decimal, note string) (*models.Transaction, error) {
	if note == "" {
		note = "Зачисление администратором " + adminID.String()
	}
	entry, err := s.apply(ctx, userID, "admin_credit", func(w *models.Wallet) (*models.Transaction, error) {
		return w.CreditAvailable(amount, models.TransactionTypeAdminCredit, nil, note)
	})
	if err != nil {
		return nil, err
	}
	s.notify(userID, models.NotificationWalletCredited, entry)
	return entry, nil
}

// AdminDebit ручное списание администратором.
func (s *WalletService) AdminDebit(ctx context.Context, adminID, userID uuid.UUID, amount decimal.Decimal, note string) (*models.Transaction, error) {
	if note == "" {
		note = "Списание администратором " + adminID.String()
	}
	return s.apply(ctx, userID, "admin_debit", func(w *models.Wallet) (*models.Transaction, error) {
		return w.DebitAvailable(amount, models.TransactionTypeAdminDebit, nil, note)
	})
}

// PayForOrder списывает оплату заказа с доступного баланса покупателя.
func (s *WalletService) PayForOrder(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error) {
	return s.apply(ctx, userID, "order_payment", func(w *models.Wallet) (*models.Transaction, error) {
		return w.DebitAvailable(amount, models.TransactionTypeBookingPayment, &orderID, "Оплата заказа")
	})
}

// CreditRefund зачисляет возврат по заказу на доступный баланс покупателя.
func (s *WalletService) CreditRefund(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error) {
	entry, err := s.apply(ctx, userID, "refund_credit", func(w *models.Wallet) (*models.Transaction, error) {
		return w.CreditAvailable(amount, models.TransactionTypeRefund, &orderID, "Возврат средств по заказу")
	})
	if err != nil {
		return nil, err
	}
	s.notify(userID, models.NotificationWalletCredited, entry)
	return entry, nil
}

// MoveToEscrow замораживает средства на кошельке до завершения заказа.
func (s *WalletService) MoveToEscrow(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error) {
	return s.apply(ctx, userID, "escrow_hold", func(w *models.Wallet) (*models.Transaction, error) {
		return w.MoveToEscrow(amount, orderID)
	})
}

// ReleaseFromEscrow выплачивает замороженные средства владельцу кошелька.
func (s *WalletService) ReleaseFromEscrow(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error) {
	return s.apply(ctx, userID, "escrow_release", func(w *models.Wallet) (*models.Transaction, error) {
		return w.ReleaseFromEscrow(amount, orderID)
	})
}

// RefundFromEscrow списывает заморозку при возврате покупателю.
func (s *WalletService) RefundFromEscrow(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) (*models.Transaction, error) {
	return s.apply(ctx, userID, "escrow_refund", func(w *models.Wallet) (*models.Transaction, error) {
		return w.RefundFromEscrow(amount, orderID)
	})
}

// GetBalance возвращает проекцию балансов, лениво создавая кошелёк.
func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (*models.Balance, error) {
	wallet, err := s.store.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить кошелёк")
	}
	balance := wallet.Balance()
	return &balance, nil
}

// CanWithdraw проверяет возможность вывода без мутации кошелька.
func (s *WalletService) CanWithdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	wallet, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return false, nil
		}
		return false, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить кошелёк")
	}
	return wallet.CanWithdraw(amount), nil
}

// ListTransactions возвращает журнал кошелька пользователя.
func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	wallet, err := s.store.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить кошелёк")
	}
	return s.store.ListTransactions(ctx, wallet.ID, limit, offset)
}

// Deactivate выключает кошелёк. Кошельки никогда не удаляются.
func (s *WalletService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return apperror.ErrWalletNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось деактивировать кошелёк")
	}
	return nil
}

func (s *WalletService) notify(userID uuid.UUID, event string, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithError(err).WithField("event", event).Warn("не удалось отправить уведомление")
	}
}

// mapLedgerError переводит ошибки инвариантов кошелька в apperror.
func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		return apperror.New(apperror.ErrCodeInvalidAmount, "сумма должна быть положительной")
	case errors.Is(err, models.ErrInsufficientFunds):
		return apperror.New(apperror.ErrCodeInsufficientFunds, "недостаточно средств на балансе")
	case errors.Is(err, models.ErrInsufficientPending):
		return apperror.New(apperror.ErrCodeInsufficientPending, "недостаточно средств в заморозке")
	}
	return apperror.Wrap(err, apperror.ErrCodeInternal, "операция кошелька не выполнена")
}
