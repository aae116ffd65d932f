package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusConfirmed = "CONFIRMED"
	StatusPending   = "PENDING"
	StatusCancelled = "CANCELLED"
)

// ActiveStatuses are the statuses that participate in conflict checks.
var ActiveStatuses = []string{StatusConfirmed, StatusPending}

type Reservation struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	TableID       string     `gorm:"type:varchar(36);not null;index:idx_reservations_table_window,priority:1" json:"table_id"`
	Table         PokerTable `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	CustomerName  string     `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerPhone string     `gorm:"type:varchar(30);not null" json:"customer_phone"`
	PartySize     int        `gorm:"not null" json:"party_size"`
	StartTime     time.Time  `gorm:"not null;index:idx_reservations_table_window,priority:2" json:"start_time"`
	EndTime       time.Time  `gorm:"not null;index:idx_reservations_table_window,priority:3" json:"end_time"`
	Status        string     `gorm:"type:varchar(20);not null;default:'CONFIRMED'" json:"status"`
	LineUserID    *string    `gorm:"type:varchar(64);index" json:"line_user_id,omitempty"`
	Notes         *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsActive reports whether the reservation participates in conflict checks.
func (r *Reservation) IsActive() bool {
	return r.Status == StatusConfirmed || r.Status == StatusPending
}
