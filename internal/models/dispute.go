package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Статусы спора
const (
	DisputeStatusOpen             = "open"
	DisputeStatusUnderReview      = "under_review"
	DisputeStatusAwaitingResponse = "awaiting_response"
	DisputeStatusResolved         = "resolved"
	DisputeStatusClosed           = "closed"
)

// Причины спора
const (
	DisputeReasonProductNotReceived = "product_not_received"
	DisputeReasonProductDamaged     = "product_damaged"
	DisputeReasonWrongProduct       = "wrong_product"
	DisputeReasonPaymentIssue       = "payment_issue"
	DisputeReasonServiceIssue       = "service_issue"
	DisputeReasonSellerUnresponsive = "seller_unresponsive"
	DisputeReasonOther              = "other"
)

// Приоритеты спора
const (
	DisputePriorityLow    = "low"
	DisputePriorityMedium = "medium"
	DisputePriorityHigh   = "high"
)

// Варианты решения спора
const (
	DisputeResolutionFullRefund    = "full_refund"
	DisputeResolutionPartialRefund = "partial_refund"
	DisputeResolutionCustomerWins  = "customer_wins"
	DisputeResolutionSellerWins    = "seller_wins"
	DisputeResolutionNoAction      = "no_action"
)

// Роли отправителей сообщений в споре
const (
	DisputeRoleCustomer = "customer"
	DisputeRoleSeller   = "seller"
	DisputeRoleAdmin    = "admin"
)

// ValidDisputeReasons список допустимых причин спора.
var ValidDisputeReasons = map[string]struct{}{
	DisputeReasonProductNotReceived: {},
	DisputeReasonProductDamaged:     {},
	DisputeReasonWrongProduct:       {},
	DisputeReasonPaymentIssue:       {},
	DisputeReasonServiceIssue:       {},
	DisputeReasonSellerUnresponsive: {},
	DisputeReasonOther:              {},
}

// ValidDisputeResolutions список допустимых решений.
var ValidDisputeResolutions = map[string]struct{}{
	DisputeResolutionFullRefund:    {},
	DisputeResolutionPartialRefund: {},
	DisputeResolutionCustomerWins:  {},
	DisputeResolutionSellerWins:    {},
	DisputeResolutionNoAction:      {},
}

// Dispute представляет спор по заказу, требующий решения администратора.
type Dispute struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	DisputeNumber     string           `db:"dispute_number" json:"dispute_number"`
	OrderID           uuid.UUID        `db:"order_id" json:"order_id"`
	ProductID         *uuid.UUID       `db:"product_id" json:"product_id,omitempty"`
	CustomerID        uuid.UUID        `db:"customer_id" json:"customer_id"`
	SellerID          uuid.UUID        `db:"seller_id" json:"seller_id"`
	Reason            string           `db:"reason" json:"reason"`
	Description       string           `db:"description" json:"description"`
	Evidence          pq.StringArray   `db:"evidence" json:"evidence"`
	Status            string           `db:"status" json:"status"`
	Priority          string           `db:"priority" json:"priority"`
	AssignedTo        *uuid.UUID       `db:"assigned_to" json:"assigned_to,omitempty"`
	AssignedAt        *time.Time       `db:"assigned_at" json:"assigned_at,omitempty"`
	Resolution        *string          `db:"resolution" json:"resolution,omitempty"`
	ResolutionNote    *string          `db:"resolution_note" json:"resolution_note,omitempty"`
	RefundAmount      *decimal.Decimal `db:"refund_amount" json:"refund_amount,omitempty"`
	ResolvedBy        *uuid.UUID       `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt        *time.Time       `db:"resolved_at" json:"resolved_at,omitempty"`
	ClosedBy          *uuid.UUID       `db:"closed_by" json:"closed_by,omitempty"`
	ClosedAt          *time.Time       `db:"closed_at" json:"closed_at,omitempty"`
	ClosureNote       *string          `db:"closure_note" json:"closure_note,omitempty"`
	IsEscalated       bool             `db:"is_escalated" json:"is_escalated"`
	EscalatedAt       *time.Time       `db:"escalated_at" json:"escalated_at,omitempty"`
	EscalatedReason   *string          `db:"escalated_reason" json:"escalated_reason,omitempty"`
	CustomerResponded bool             `db:"customer_responded" json:"customer_responded"`
	SellerResponded   bool             `db:"seller_responded" json:"seller_responded"`
	LastMessageAt     *time.Time       `db:"last_message_at" json:"last_message_at,omitempty"`
	LastResponseAt    *time.Time       `db:"last_response_at" json:"last_response_at,omitempty"`
	IsDeleted         bool             `db:"is_deleted" json:"-"`
	Version           int64            `db:"version" json:"-"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// DisputeMessage представляет сообщение в треде спора.
type DisputeMessage struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	DisputeID   uuid.UUID      `db:"dispute_id" json:"dispute_id"`
	SenderID    uuid.UUID      `db:"sender_id" json:"sender_id"`
	SenderRole  string         `db:"sender_role" json:"sender_role"`
	Text        string         `db:"text" json:"text"`
	Attachments pq.StringArray `db:"attachments" json:"attachments"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// DisputeStats агрегированная статистика по спорам.
type DisputeStats struct {
	Open             int `db:"open" json:"open"`
	UnderReview      int `db:"under_review" json:"under_review"`
	AwaitingResponse int `db:"awaiting_response" json:"awaiting_response"`
	Resolved         int `db:"resolved" json:"resolved"`
	Closed           int `db:"closed" json:"closed"`
	Escalated        int `db:"escalated" json:"escalated"`
	ActiveDisputes   int `json:"active_disputes"`
}

// CanBeResolved сообщает, допускает ли текущий статус вынесение решения.
func (d *Dispute) CanBeResolved() bool {
	switch d.Status {
	case DisputeStatusOpen, DisputeStatusUnderReview, DisputeStatusAwaitingResponse:
		return true
	}
	return false
}

// CanBeClosed сообщает, можно ли закрыть спор. Закрытие возможно только
// после вынесенного решения.
func (d *Dispute) CanBeClosed() bool {
	return d.Status == DisputeStatusResolved
}

// IsTerminal сообщает, находится ли спор в конечном состоянии.
func (d *Dispute) IsTerminal() bool {
	return d.Status == DisputeStatusResolved || d.Status == DisputeStatusClosed
}

// ParticipantRole возвращает роль отправителя относительно сторон спора.
// Любой пользователь, не являющийся стороной, считается администратором.
func (d *Dispute) ParticipantRole(senderID uuid.UUID) string {
	switch senderID {
	case d.CustomerID:
		return DisputeRoleCustomer
	case d.SellerID:
		return DisputeRoleSeller
	}
	return DisputeRoleAdmin
}

// PriorityForReason вычисляет приоритет нового спора по его причине.
func PriorityForReason(reason string) string {
	if reason == DisputeReasonProductNotReceived || reason == DisputeReasonPaymentIssue {
		return DisputePriorityHigh
	}
	return DisputePriorityMedium
}
