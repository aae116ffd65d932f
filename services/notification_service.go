package services

import (
	"time"

	"github.com/sakura-poker/reservation-app/models"
	"github.com/sakura-poker/reservation-app/utils"
	"gorm.io/gorm"
)

// NotificationService delivers reservation messages over LINE and records the
// outcome of every attempt. Delivery is best-effort: it runs outside the
// reservation transaction and its failures never affect the booking.
type NotificationService struct {
	DB       *gorm.DB
	Pusher   LinePusher
	Settings *SettingsService
}

func NewNotificationService(db *gorm.DB, pusher LinePusher, settings *SettingsService) *NotificationService {
	return &NotificationService{DB: db, Pusher: pusher, Settings: settings}
}

// SendReminder pushes a next-day reminder to the reservation's LINE user.
// Reservations without a LINE identity are logged as skipped, not failed.
func (s *NotificationService) SendReminder(reservation *models.Reservation, message string) error {
	if reservation.LineUserID == nil || *reservation.LineUserID == "" {
		s.log(reservation.ID, models.NotificationReminder, models.NotificationSkipped, "missing LINE user id")
		return nil
	}

	if err := s.Pusher.PushText(*reservation.LineUserID, message); err != nil {
		s.log(reservation.ID, models.NotificationReminder, models.NotificationFailed, err.Error())
		return err
	}

	s.log(reservation.ID, models.NotificationReminder, models.NotificationSent, "")
	return nil
}

// SendConfirmation notifies the configured admin LINE account about a new
// booking. Never returns an error: confirmation is not part of the
// reservation outcome.
func (s *NotificationService) SendConfirmation(reservation *models.Reservation, message string) {
	adminLineUserID, err := s.Settings.GetSetting(SettingAdminLineUserID)
	if err != nil || adminLineUserID == "" {
		utils.InfoLogger.Printf("Admin LINE user id not configured, skipping confirmation for reservation %s", reservation.ID)
		s.log(reservation.ID, models.NotificationConfirmation, models.NotificationSkipped, "admin LINE user id not configured")
		return
	}

	if err := s.Pusher.PushText(adminLineUserID, message); err != nil {
		utils.ErrorLogger.Printf("Failed to send confirmation for reservation %s: %v", reservation.ID, err)
		s.log(reservation.ID, models.NotificationConfirmation, models.NotificationFailed, err.Error())
		return
	}

	s.log(reservation.ID, models.NotificationConfirmation, models.NotificationSent, "")
}

func (s *NotificationService) log(reservationID, notificationType, status, errorMessage string) {
	entry := models.NotificationLog{
		ReservationID: reservationID,
		Type:          notificationType,
		Status:        status,
		SentAt:        time.Now(),
	}
	if errorMessage != "" {
		entry.ErrorMessage = &errorMessage
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to write notification log for reservation %s: %v", reservationID, err)
	}
}
