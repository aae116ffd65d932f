package services

import (
	"time"

	"github.com/sakura-poker/reservation-app/models"
	"github.com/sakura-poker/reservation-app/utils"
)

// ReminderScheduler sends next-day reminders for confirmed reservations once
// a day at the configured hour.
type ReminderScheduler struct {
	Reservations  *ReservationService
	Templates     *TemplateService
	Notifications *NotificationService

	Hour     int
	Interval time.Duration
	StopChan chan struct{}

	lastRunDay string
}

// ReminderResult reports the outcome for one reservation in a reminder pass.
type ReminderResult struct {
	ReservationID string `json:"reservation_id"`
	CustomerName  string `json:"customer_name"`
	HasLineUser   bool   `json:"has_line_user"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

func NewReminderScheduler(reservations *ReservationService, templates *TemplateService, notifications *NotificationService, hour int) *ReminderScheduler {
	return &ReminderScheduler{
		Reservations:  reservations,
		Templates:     templates,
		Notifications: notifications,
		Hour:          hour,
		Interval:      time.Minute,
		StopChan:      make(chan struct{}),
	}
}

func (rs *ReminderScheduler) Start() {
	go func() {
		ticker := time.NewTicker(rs.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rs.tick(time.Now())
			case <-rs.StopChan:
				return
			}
		}
	}()
}

func (rs *ReminderScheduler) Stop() {
	close(rs.StopChan)
}

func (rs *ReminderScheduler) tick(now time.Time) {
	day := now.Format("2006-01-02")
	if now.Hour() < rs.Hour || rs.lastRunDay == day {
		return
	}
	rs.lastRunDay = day

	results, err := rs.RunReminderOnce(now)
	if err != nil {
		utils.ErrorLogger.Printf("Scheduled reminder pass failed: %v", err)
		return
	}
	utils.InfoLogger.Printf("Reminder pass finished: %d reservation(s) processed", len(results))
}

// RunReminderOnce sends reminders for every confirmed reservation that falls
// entirely within tomorrow, and reports per-reservation outcomes.
func (rs *ReminderScheduler) RunReminderOnce(now time.Time) ([]ReminderResult, error) {
	start, end := nextDayRange(now)
	status := models.StatusConfirmed
	reservations, err := rs.Reservations.ListReservations(ListFilter{
		Start:  &start,
		End:    &end,
		Status: status,
	})
	if err != nil {
		return nil, err
	}

	results := make([]ReminderResult, 0, len(reservations))
	for i := range reservations {
		reservation := &reservations[i]
		result := ReminderResult{
			ReservationID: reservation.ID,
			CustomerName:  reservation.CustomerName,
			HasLineUser:   reservation.LineUserID != nil && *reservation.LineUserID != "",
		}

		message, err := rs.Templates.RenderReminder(reservation)
		if err == nil {
			err = rs.Notifications.SendReminder(reservation, message)
		}
		if err != nil {
			utils.ErrorLogger.Printf("Failed to send reminder for reservation %s: %v", reservation.ID, err)
			result.Status = "failed"
			result.Error = err.Error()
		} else {
			utils.InfoLogger.Printf("Reminder sent for reservation %s", reservation.ID)
			result.Status = "sent"
		}
		results = append(results, result)
	}
	return results, nil
}

func nextDayRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	end := start.AddDate(0, 0, 1).Add(-time.Second)
	return start, end
}
