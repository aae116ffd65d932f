package models

import "time"

type PokerTable struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Category     string    `gorm:"type:varchar(50);not null" json:"category"`
	CapacityMin  int       `gorm:"not null" json:"capacity_min"`
	CapacityMax  int       `gorm:"not null" json:"capacity_max"`
	IsSmoking    bool      `gorm:"not null;default:false" json:"is_smoking"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
