package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet() *Wallet {
	return &Wallet{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		IsActive: true,
	}
}

func TestWallet_CreditAvailable(t *testing.T) {
	w := newTestWallet()

	entry, err := w.CreditAvailable(decimal.NewFromInt(500), TransactionTypeDeposit, nil, "Пополнение кошелька")

	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, w.AvailableBalance.Equal(decimal.NewFromInt(500)))
	assert.True(t, w.PendingBalance.IsZero())
	assert.Equal(t, TransactionTypeDeposit, entry.Type)
	assert.Equal(t, TransactionStatusCompleted, entry.Status)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, w.ID, entry.WalletID)
	assert.NotNil(t, w.LastTransactionAt)
}

func TestWallet_CreditAvailable_InvalidAmount(t *testing.T) {
	w := newTestWallet()

	_, err := w.CreditAvailable(decimal.Zero, TransactionTypeDeposit, nil, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = w.CreditAvailable(decimal.NewFromInt(-10), TransactionTypeDeposit, nil, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.True(t, w.AvailableBalance.IsZero())
	assert.Nil(t, w.LastTransactionAt)
}

func TestWallet_DebitAvailable(t *testing.T) {
	w := newTestWallet()
	_, err := w.CreditAvailable(decimal.NewFromInt(1000), TransactionTypeDeposit, nil, "Пополнение")
	require.NoError(t, err)

	entry, err := w.DebitAvailable(decimal.NewFromInt(300), TransactionTypeWithdrawal, nil, "Вывод средств")

	require.NoError(t, err)
	assert.True(t, w.AvailableBalance.Equal(decimal.NewFromInt(700)))
	assert.True(t, w.TotalWithdrawn.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, TransactionTypeWithdrawal, entry.Type)
	assert.Equal(t, TransactionStatusCompleted, entry.Status)
}

func TestWallet_DebitAvailable_InsufficientFunds(t *testing.T) {
	w := newTestWallet()
	_, err := w.CreditAvailable(decimal.NewFromInt(100), TransactionTypeDeposit, nil, "Пополнение")
	require.NoError(t, err)

	_, err = w.DebitAvailable(decimal.NewFromInt(101), TransactionTypeWithdrawal, nil, "Вывод")

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, w.AvailableBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, w.TotalWithdrawn.IsZero())
}

func TestWallet_DebitAvailable_NonWithdrawalDoesNotCountAsWithdrawn(t *testing.T) {
	w := newTestWallet()
	orderID := uuid.New()
	_, err := w.CreditAvailable(decimal.NewFromInt(1000), TransactionTypeDeposit, nil, "Пополнение")
	require.NoError(t, err)

	entry, err := w.DebitAvailable(decimal.NewFromInt(400), TransactionTypeBookingPayment, &orderID, "Оплата заказа")

	require.NoError(t, err)
	assert.True(t, w.TotalWithdrawn.IsZero())
	require.NotNil(t, entry.OrderID)
	assert.Equal(t, orderID, *entry.OrderID)
}

func TestWallet_MoveToEscrow(t *testing.T) {
	w := newTestWallet()
	orderID := uuid.New()

	entry, err := w.MoveToEscrow(decimal.NewFromInt(250), orderID)

	require.NoError(t, err)
	assert.True(t, w.PendingBalance.Equal(decimal.NewFromInt(250)))
	assert.True(t, w.AvailableBalance.IsZero())
	assert.Equal(t, TransactionStatusEscrowed, entry.Status)
	assert.Equal(t, TransactionTypeBookingPayment, entry.Type)
}

func TestWallet_ReleaseFromEscrow(t *testing.T) {
	w := newTestWallet()
	orderID := uuid.New()
	_, err := w.MoveToEscrow(decimal.NewFromInt(250), orderID)
	require.NoError(t, err)

	entry, err := w.ReleaseFromEscrow(decimal.NewFromInt(250), orderID)

	require.NoError(t, err)
	assert.True(t, w.PendingBalance.IsZero())
	assert.True(t, w.AvailableBalance.Equal(decimal.NewFromInt(250)))
	assert.True(t, w.TotalEarned.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, TransactionStatusReleased, entry.Status)
}

func TestWallet_ReleaseFromEscrow_InsufficientPending(t *testing.T) {
	w := newTestWallet()
	orderID := uuid.New()
	_, err := w.MoveToEscrow(decimal.NewFromInt(100), orderID)
	require.NoError(t, err)

	_, err = w.ReleaseFromEscrow(decimal.NewFromInt(150), orderID)

	assert.ErrorIs(t, err, ErrInsufficientPending)
	assert.True(t, w.PendingBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, w.AvailableBalance.IsZero())
}

func TestWallet_RefundFromEscrow(t *testing.T) {
	w := newTestWallet()
	orderID := uuid.New()
	_, err := w.MoveToEscrow(decimal.NewFromInt(250), orderID)
	require.NoError(t, err)

	entry, err := w.RefundFromEscrow(decimal.NewFromInt(250), orderID)

	require.NoError(t, err)
	assert.True(t, w.PendingBalance.IsZero())
	assert.True(t, w.AvailableBalance.IsZero())
	assert.True(t, w.TotalEarned.IsZero())
	assert.Equal(t, TransactionTypeRefund, entry.Type)
	assert.Equal(t, TransactionStatusRefunded, entry.Status)
}

func TestWallet_RefundFromEscrow_PartialLeavesRemainder(t *testing.T) {
	w := newTestWallet()
	orderID := uuid.New()
	_, err := w.MoveToEscrow(decimal.NewFromInt(300), orderID)
	require.NoError(t, err)

	_, err = w.RefundFromEscrow(decimal.NewFromInt(120), orderID)
	require.NoError(t, err)

	assert.True(t, w.PendingBalance.Equal(decimal.NewFromInt(180)))
}

func TestWallet_Balance(t *testing.T) {
	w := newTestWallet()
	orderID := uuid.New()
	_, err := w.CreditAvailable(decimal.NewFromInt(700), TransactionTypeDeposit, nil, "Пополнение")
	require.NoError(t, err)
	_, err = w.MoveToEscrow(decimal.NewFromInt(300), orderID)
	require.NoError(t, err)

	b := w.Balance()

	assert.True(t, b.Available.Equal(decimal.NewFromInt(700)))
	assert.True(t, b.Pending.Equal(decimal.NewFromInt(300)))
	assert.True(t, b.Total.Equal(decimal.NewFromInt(1000)))
}

func TestWallet_CanWithdraw(t *testing.T) {
	w := newTestWallet()
	_, err := w.CreditAvailable(decimal.NewFromInt(100), TransactionTypeDeposit, nil, "Пополнение")
	require.NoError(t, err)

	assert.True(t, w.CanWithdraw(decimal.NewFromInt(100)))
	assert.False(t, w.CanWithdraw(decimal.NewFromInt(101)))
	assert.False(t, w.CanWithdraw(decimal.Zero))
	assert.False(t, w.CanWithdraw(decimal.NewFromInt(-5)))
}
