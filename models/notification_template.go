package models

import "time"

type NotificationTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"type"`
	Title     string    `gorm:"type:varchar(100);not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
