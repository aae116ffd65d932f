package models

import "time"

const (
	NotificationReminder     = "REMINDER"
	NotificationConfirmation = "CONFIRMATION"
)

const (
	NotificationSent    = "SENT"
	NotificationFailed  = "FAILED"
	NotificationSkipped = "SKIPPED"
)

type NotificationLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReservationID string    `gorm:"type:varchar(36);not null;index" json:"reservation_id"`
	Type          string    `gorm:"type:varchar(20);not null" json:"type"`
	Status        string    `gorm:"type:varchar(20);not null" json:"status"`
	ErrorMessage  *string   `gorm:"type:text" json:"error_message,omitempty"`
	SentAt        time.Time `gorm:"not null" json:"sent_at"`
}
