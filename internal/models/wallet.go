package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Типы транзакций
const (
	TransactionTypeDeposit             = "deposit"
	TransactionTypeWithdrawal          = "withdrawal"
	TransactionTypeBookingPayment      = "booking_payment"
	TransactionTypeRefund              = "refund"
	TransactionTypeCommission          = "commission"
	TransactionTypeReferralBonus       = "referral_bonus"
	TransactionTypeSubscriptionPayment = "subscription_payment"
	TransactionTypeAdminCredit         = "admin_credit"
	TransactionTypeAdminDebit          = "admin_debit"
)

// Статусы транзакций
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusRefunded  = "refunded"
	TransactionStatusEscrowed  = "escrowed"
	TransactionStatusReleased  = "released"
)

// ValidTransactionTypes список допустимых типов транзакций.
var ValidTransactionTypes = map[string]struct{}{
	TransactionTypeDeposit:             {},
	TransactionTypeWithdrawal:          {},
	TransactionTypeBookingPayment:      {},
	TransactionTypeRefund:              {},
	TransactionTypeCommission:          {},
	TransactionTypeReferralBonus:       {},
	TransactionTypeSubscriptionPayment: {},
	TransactionTypeAdminCredit:         {},
	TransactionTypeAdminDebit:          {},
}

// Wallet представляет кошелёк пользователя с доступным и замороженным балансом.
// Все мутации проходят через методы кошелька: каждая мутация изменяет ровно
// один баланс и порождает ровно одну запись в журнале транзакций.
type Wallet struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	UserID            uuid.UUID       `db:"user_id" json:"user_id"`
	AvailableBalance  decimal.Decimal `db:"available_balance" json:"available_balance"`
	PendingBalance    decimal.Decimal `db:"pending_balance" json:"pending_balance"`
	TotalEarned       decimal.Decimal `db:"total_earned" json:"total_earned"`
	TotalWithdrawn    decimal.Decimal `db:"total_withdrawn" json:"total_withdrawn"`
	IsActive          bool            `db:"is_active" json:"is_active"`
	Version           int64           `db:"version" json:"-"`
	LastTransactionAt *time.Time      `db:"last_transaction_at" json:"last_transaction_at,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction представляет неизменяемую запись журнала кошелька.
// Записи только добавляются; исправления оформляются встречными записями.
type Transaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	WalletID    uuid.UUID       `db:"wallet_id" json:"wallet_id"`
	OrderID     *uuid.UUID      `db:"order_id" json:"order_id,omitempty"`
	Reference   *string         `db:"reference" json:"reference,omitempty"`
	Type        string          `db:"type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Status      string          `db:"status" json:"status"`
	Description *string         `db:"description" json:"description,omitempty"`
	Metadata    []byte          `db:"metadata" json:"-"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Balance проекция балансов кошелька.
type Balance struct {
	Available decimal.Decimal `json:"available"`
	Pending   decimal.Decimal `json:"pending"`
	Total     decimal.Decimal `json:"total"`
}

// CreditAvailable увеличивает доступный баланс и возвращает запись журнала.
func (w *Wallet) CreditAvailable(amount decimal.Decimal, txType string, orderID *uuid.UUID, description string) (*Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	w.AvailableBalance = w.AvailableBalance.Add(amount)
	return w.appendEntry(amount, txType, TransactionStatusCompleted, orderID, description), nil
}

// DebitAvailable списывает доступный баланс. Для типа withdrawal дополнительно
// увеличивает счётчик выведенных средств.
func (w *Wallet) DebitAvailable(amount decimal.Decimal, txType string, orderID *uuid.UUID, description string) (*Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if w.AvailableBalance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}
	w.AvailableBalance = w.AvailableBalance.Sub(amount)
	if txType == TransactionTypeWithdrawal {
		w.TotalWithdrawn = w.TotalWithdrawn.Add(amount)
	}
	return w.appendEntry(amount, txType, TransactionStatusCompleted, orderID, description), nil
}

// MoveToEscrow замораживает средства до завершения заказа.
func (w *Wallet) MoveToEscrow(amount decimal.Decimal, orderID uuid.UUID) (*Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	w.PendingBalance = w.PendingBalance.Add(amount)
	return w.appendEntry(amount, TransactionTypeBookingPayment, TransactionStatusEscrowed, &orderID, "Заморозка средств по заказу"), nil
}

// ReleaseFromEscrow переводит средства из заморозки в доступный баланс
// и увеличивает счётчик заработанного.
func (w *Wallet) ReleaseFromEscrow(amount decimal.Decimal, orderID uuid.UUID) (*Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if w.PendingBalance.LessThan(amount) {
		return nil, ErrInsufficientPending
	}
	w.PendingBalance = w.PendingBalance.Sub(amount)
	w.AvailableBalance = w.AvailableBalance.Add(amount)
	w.TotalEarned = w.TotalEarned.Add(amount)
	return w.appendEntry(amount, TransactionTypeBookingPayment, TransactionStatusReleased, &orderID, "Выплата по завершённому заказу"), nil
}

// RefundFromEscrow списывает замороженные средства при возврате.
// Зачисление покупателю оформляется отдельной записью на его кошельке.
func (w *Wallet) RefundFromEscrow(amount decimal.Decimal, orderID uuid.UUID) (*Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if w.PendingBalance.LessThan(amount) {
		return nil, ErrInsufficientPending
	}
	w.PendingBalance = w.PendingBalance.Sub(amount)
	return w.appendEntry(amount, TransactionTypeRefund, TransactionStatusRefunded, &orderID, "Возврат средств по заказу"), nil
}

// Balance возвращает проекцию балансов.
func (w *Wallet) Balance() Balance {
	return Balance{
		Available: w.AvailableBalance,
		Pending:   w.PendingBalance,
		Total:     w.AvailableBalance.Add(w.PendingBalance),
	}
}

// CanWithdraw проверяет, достаточно ли доступных средств для вывода.
func (w *Wallet) CanWithdraw(amount decimal.Decimal) bool {
	return amount.IsPositive() && w.AvailableBalance.GreaterThanOrEqual(amount)
}

func (w *Wallet) appendEntry(amount decimal.Decimal, txType, status string, orderID *uuid.UUID, description string) *Transaction {
	now := time.Now()
	w.LastTransactionAt = &now
	return &Transaction{
		WalletID:    w.ID,
		OrderID:     orderID,
		Type:        txType,
		Amount:      amount,
		Status:      status,
		Description: &description,
		CreatedAt:   now,
	}
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
