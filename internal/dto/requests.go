package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterRequest тело запроса регистрации.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginRequest тело запроса входа.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest тело запроса обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AmountRequest тело запроса операции с суммой.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// AdminAdjustRequest тело ручной корректировки баланса администратором.
type AdminAdjustRequest struct {
	UserID uuid.UUID       `json:"user_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note"`
}

// DeactivateWalletRequest тело деактивации кошелька администратором.
type DeactivateWalletRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// CreateOrderRequest тело создания заказа.
type CreateOrderRequest struct {
	SellerID    uuid.UUID       `json:"seller_id" binding:"required"`
	ProductID   *uuid.UUID      `json:"product_id"`
	Title       string          `json:"title" binding:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" binding:"required"`
}

// CancelOrderRequest тело отмены заказа.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CreateDisputeRequest тело открытия спора.
type CreateDisputeRequest struct {
	Reason      string   `json:"reason" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Evidence    []string `json:"evidence"`
}

// DisputeMessageRequest тело сообщения в споре.
type DisputeMessageRequest struct {
	Text        string   `json:"text" binding:"required"`
	Attachments []string `json:"attachments"`
}

// ResolveDisputeRequest тело решения спора.
type ResolveDisputeRequest struct {
	Resolution   string           `json:"resolution" binding:"required"`
	Note         string           `json:"note"`
	RefundAmount *decimal.Decimal `json:"refund_amount"`
}

// CloseDisputeRequest тело закрытия спора.
type CloseDisputeRequest struct {
	ClosureNote string `json:"closure_note"`
}

// EscalateDisputeRequest тело эскалации спора.
type EscalateDisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RaiseRedFlagRequest тело поднятия красного флага.
type RaiseRedFlagRequest struct {
	Type            string     `json:"type" binding:"required"`
	Severity        string     `json:"severity" binding:"required"`
	FlaggedUserID   uuid.UUID  `json:"flagged_user_id" binding:"required"`
	FlaggedUserRole string     `json:"flagged_user_role" binding:"required"`
	RelatedUserID   *uuid.UUID `json:"related_user_id"`
	RelatedUserRole *string    `json:"related_user_role"`
	OrderID         *uuid.UUID `json:"order_id"`
	PaymentID       *uuid.UUID `json:"payment_id"`
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description" binding:"required"`
}

// UpdateRedFlagStatusRequest тело смены статуса флага.
type UpdateRedFlagStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BulkUpdateRedFlagsRequest тело массовой смены статусов.
type BulkUpdateRedFlagsRequest struct {
	IDs    []uuid.UUID `json:"ids" binding:"required"`
	Status string      `json:"status" binding:"required"`
}

// ResolveRedFlagRequest тело закрытия флага с решением.
type ResolveRedFlagRequest struct {
	Status  string `json:"status" binding:"required"`
	Action  string `json:"action"`
	Details string `json:"details"`
}

// RedFlagNoteRequest тело заметки модератора.
type RedFlagNoteRequest struct {
	Note string `json:"note" binding:"required"`
}
