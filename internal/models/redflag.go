package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы красных флагов
const (
	RedFlagTypeFraudSuspicion    = "fraud_suspicion"
	RedFlagTypePaymentAbuse      = "payment_abuse"
	RedFlagTypeFakeListing       = "fake_listing"
	RedFlagTypeHarassment        = "harassment"
	RedFlagTypePolicyViolation   = "policy_violation"
	RedFlagTypeChargebackPattern = "chargeback_pattern"
	RedFlagTypeOther             = "other"
)

// Степени серьёзности
const (
	RedFlagSeverityLow      = "low"
	RedFlagSeverityMedium   = "medium"
	RedFlagSeverityHigh     = "high"
	RedFlagSeverityCritical = "critical"
)

// Статусы красного флага
const (
	RedFlagStatusOpen        = "open"
	RedFlagStatusUnderReview = "under_review"
	RedFlagStatusResolved    = "resolved"
	RedFlagStatusDismissed   = "dismissed"
	RedFlagStatusEscalated   = "escalated"
	RedFlagStatusActionTaken = "action_taken"
)

// Источники срабатывания
const (
	RedFlagSourceSystem     = "system"
	RedFlagSourceUserReport = "user_report"
	RedFlagSourceAdmin      = "admin"
)

// ValidRedFlagTypes список допустимых типов.
var ValidRedFlagTypes = map[string]struct{}{
	RedFlagTypeFraudSuspicion:    {},
	RedFlagTypePaymentAbuse:      {},
	RedFlagTypeFakeListing:       {},
	RedFlagTypeHarassment:        {},
	RedFlagTypePolicyViolation:   {},
	RedFlagTypeChargebackPattern: {},
	RedFlagTypeOther:             {},
}

// ValidRedFlagStatuses список допустимых статусов.
var ValidRedFlagStatuses = map[string]struct{}{
	RedFlagStatusOpen:        {},
	RedFlagStatusUnderReview: {},
	RedFlagStatusResolved:    {},
	RedFlagStatusDismissed:   {},
	RedFlagStatusEscalated:   {},
	RedFlagStatusActionTaken: {},
}

// ValidRedFlagSeverities список допустимых степеней серьёзности.
var ValidRedFlagSeverities = map[string]struct{}{
	RedFlagSeverityLow:      {},
	RedFlagSeverityMedium:   {},
	RedFlagSeverityHigh:     {},
	RedFlagSeverityCritical: {},
}

// RedFlag фиксирует подозрительное или нарушающее правила событие,
// привязанное к пользователю. Живёт независимо от споров.
type RedFlag struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Type              string     `db:"type" json:"type"`
	Severity          string     `db:"severity" json:"severity"`
	FlaggedUserID     uuid.UUID  `db:"flagged_user_id" json:"flagged_user_id"`
	FlaggedUserRole   string     `db:"flagged_user_role" json:"flagged_user_role"`
	RelatedUserID     *uuid.UUID `db:"related_user_id" json:"related_user_id,omitempty"`
	RelatedUserRole   *string    `db:"related_user_role" json:"related_user_role,omitempty"`
	TriggerSource     string     `db:"trigger_source" json:"trigger_source"`
	ReporterID        *uuid.UUID `db:"reporter_id" json:"reporter_id,omitempty"`
	OrderID           *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	PaymentID         *uuid.UUID `db:"payment_id" json:"payment_id,omitempty"`
	Title             string     `db:"title" json:"title"`
	Description       string     `db:"description" json:"description"`
	Status            string     `db:"status" json:"status"`
	AssignedTo        *uuid.UUID `db:"assigned_to" json:"assigned_to,omitempty"`
	AssignedAt        *time.Time `db:"assigned_at" json:"assigned_at,omitempty"`
	ResolutionAction  *string    `db:"resolution_action" json:"resolution_action,omitempty"`
	ResolutionDetails *string    `db:"resolution_details" json:"resolution_details,omitempty"`
	ResolvedBy        *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt        *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// RedFlagNote заметка администратора по флагу, добавляется со временем.
type RedFlagNote struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RedFlagID uuid.UUID `db:"red_flag_id" json:"red_flag_id"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
	Note      string    `db:"note" json:"note"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RedFlagStats агрегированная статистика по флагам.
type RedFlagStats struct {
	Open        int `db:"open" json:"open"`
	UnderReview int `db:"under_review" json:"under_review"`
	Resolved    int `db:"resolved" json:"resolved"`
	Dismissed   int `db:"dismissed" json:"dismissed"`
	Escalated   int `db:"escalated" json:"escalated"`
	ActionTaken int `db:"action_taken" json:"action_taken"`
	Critical    int `db:"critical" json:"critical"`
	High        int `db:"high" json:"high"`
}

// BulkUpdateResult результат массового обновления статусов:
// каждая запись обрабатывается независимо, сбой одной не отменяет остальные.
type BulkUpdateResult struct {
	Updated   int         `json:"updated"`
	Failed    int         `json:"failed"`
	FailedIDs []uuid.UUID `json:"failed_ids,omitempty"`
}

// IsOpen сообщает, находится ли флаг в активной стадии разбора.
func (f *RedFlag) IsOpen() bool {
	return f.Status == RedFlagStatusOpen || f.Status == RedFlagStatusUnderReview || f.Status == RedFlagStatusEscalated
}
