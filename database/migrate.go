package database

import (
	"github.com/sakura-poker/reservation-app/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema. The composite index on
// (table_id, start_time, end_time) backs the overlap query the engine runs on
// every create and update.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.StaffUser{},
		&models.PokerTable{},
		&models.Reservation{},
		&models.NotificationTemplate{},
		&models.NotificationLog{},
		&models.SystemSetting{},
		&models.ConversationState{},
	)
}
