package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus константы статусов заказов
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusDisputed   = "disputed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// EscrowStatus константы состояния эскроу по заказу
const (
	EscrowStatusNone     = "none"
	EscrowStatusHeld     = "held"
	EscrowStatusReleased = "released"
	EscrowStatusRefunded = "refunded"
)

// ValidOrderStatuses список валидных статусов заказов
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusPending:    {},
	OrderStatusPaid:       {},
	OrderStatusInProgress: {},
	OrderStatusCompleted:  {},
	OrderStatusDisputed:   {},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// Order описывает заказ между покупателем и продавцом.
type Order struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	CustomerID      uuid.UUID       `db:"customer_id" json:"customer_id"`
	SellerID        uuid.UUID       `db:"seller_id" json:"seller_id"`
	ProductID       *uuid.UUID      `db:"product_id" json:"product_id,omitempty"`
	Title           string          `db:"title" json:"title"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status          string          `db:"status" json:"status"`
	EscrowStatus    string          `db:"escrow_status" json:"escrow_status"`
	HasDispute      bool            `db:"has_dispute" json:"has_dispute"`
	DisputeID       *uuid.UUID      `db:"dispute_id" json:"dispute_id,omitempty"`
	DisputeOpenedAt *time.Time      `db:"dispute_opened_at" json:"dispute_opened_at,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderStatusUpdate запись аудита смены статуса заказа.
type OrderStatusUpdate struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	Status    string    `db:"status" json:"status"`
	ActorID   uuid.UUID `db:"actor_id" json:"actor_id"`
	Note      *string   `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CanBeDisputed проверяет, допускает ли заказ открытие спора:
// по заказу уже идёт работа или она завершена, и активного спора ещё нет.
func (o *Order) CanBeDisputed() bool {
	if o.HasDispute {
		return false
	}
	switch o.Status {
	case OrderStatusPaid, OrderStatusInProgress, OrderStatusCompleted:
		return true
	}
	return false
}

// IsParticipant проверяет, является ли пользователь стороной заказа.
func (o *Order) IsParticipant(userID uuid.UUID) bool {
	return o.CustomerID == userID || o.SellerID == userID
}
