package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/marketbay/marketbay-backend/internal/models"
)

func TestResolveOutcome_HeldEscrowPartialRefund(t *testing.T) {
	order := &models.Order{
		Status:       models.OrderStatusDisputed,
		EscrowStatus: models.EscrowStatusHeld,
		TotalAmount:  decimal.NewFromInt(500),
	}

	outcome := resolveOutcome(order, decimal.NewFromInt(200))

	assert.True(t, outcome.RefundLeg.Equal(decimal.NewFromInt(200)))
	assert.True(t, outcome.ReleaseLeg.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, models.OrderStatusRefunded, outcome.OrderStatus)
	assert.Equal(t, models.EscrowStatusRefunded, outcome.EscrowStatus)
}

func TestResolveOutcome_HeldEscrowSellerWins(t *testing.T) {
	order := &models.Order{
		Status:       models.OrderStatusDisputed,
		EscrowStatus: models.EscrowStatusHeld,
		TotalAmount:  decimal.NewFromInt(500),
	}

	outcome := resolveOutcome(order, decimal.Zero)

	assert.True(t, outcome.RefundLeg.IsZero())
	assert.True(t, outcome.ReleaseLeg.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, models.OrderStatusCompleted, outcome.OrderStatus)
	assert.Equal(t, models.EscrowStatusReleased, outcome.EscrowStatus)
}

// Спор по уже завершённому заказу: заморозка распущена при завершении,
// решение не должно трогать кошельки — иначе списание упрётся в чужие
// заморозки продавца или сделает спор нерешаемым.
func TestResolveOutcome_ReleasedEscrowMovesNoMoney(t *testing.T) {
	order := &models.Order{
		Status:       models.OrderStatusDisputed,
		EscrowStatus: models.EscrowStatusReleased,
		TotalAmount:  decimal.NewFromInt(500),
	}

	outcome := resolveOutcome(order, decimal.NewFromInt(500))

	assert.True(t, outcome.RefundLeg.IsZero())
	assert.True(t, outcome.ReleaseLeg.IsZero())
	assert.Equal(t, models.OrderStatusCompleted, outcome.OrderStatus)
	assert.Equal(t, models.EscrowStatusReleased, outcome.EscrowStatus)
}

func TestResolveOutcome_RefundedEscrowMovesNoMoney(t *testing.T) {
	order := &models.Order{
		Status:       models.OrderStatusDisputed,
		EscrowStatus: models.EscrowStatusRefunded,
		TotalAmount:  decimal.NewFromInt(500),
	}

	outcome := resolveOutcome(order, decimal.NewFromInt(100))

	assert.True(t, outcome.RefundLeg.IsZero())
	assert.True(t, outcome.ReleaseLeg.IsZero())
	assert.Equal(t, models.EscrowStatusRefunded, outcome.EscrowStatus)
}
