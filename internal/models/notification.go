package models

import (
	"time"

	"github.com/google/uuid"
)

// События уведомлений
const (
	NotificationDisputeOpened    = "dispute.opened"
	NotificationDisputeMessage   = "dispute.message"
	NotificationDisputeAssigned  = "dispute.assigned"
	NotificationDisputeResolved  = "dispute.resolved"
	NotificationDisputeEscalated = "dispute.escalated"
	NotificationRedFlagRaised    = "red_flag.raised"
	NotificationWalletCredited   = "wallet.credited"
)

// Notification хранит отправленное пользователю уведомление.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Payload   []byte    `db:"payload" json:"payload"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
