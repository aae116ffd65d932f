package services

import (
	"errors"
	"strings"
	"time"

	"github.com/sakura-poker/reservation-app/models"
	"gorm.io/gorm"
)

// Default templates used until the admin saves their own. The placeholder set
// is fixed and shared with the admin SPA editor.
var (
	DefaultReminderTemplate = models.NotificationTemplate{
		Type:  models.NotificationReminder,
		Title: "ご予約の前日リマインダー",
		Body: "{{customer_name}}様\n{{reservation_time}}より{{table_name}}のご予約を承っております。\n" +
			"ご来店をお待ちしております。",
		Enabled: true,
	}
	DefaultConfirmationTemplate = models.NotificationTemplate{
		Type:  models.NotificationConfirmation,
		Title: "予約確認",
		Body: "次の内容で予約を承りました。\nご来店お待ちしております。\n\n" +
			"お名前：{{customer_name}}\n電話番号：{{customer_phone}}\n" +
			"ご予約日：{{reservation_date}}\nご予約時間：{{reservation_time}}",
		Enabled: true,
	}
)

type TemplateService struct {
	DB *gorm.DB
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{DB: db}
}

// GetTemplate returns the stored template for the type, or the built-in
// default when none has been saved yet.
func (s *TemplateService) GetTemplate(templateType string) (*models.NotificationTemplate, error) {
	var template models.NotificationTemplate
	err := s.DB.First(&template, "type = ?", templateType).Error
	if err == nil {
		return &template, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	switch templateType {
	case models.NotificationReminder:
		t := DefaultReminderTemplate
		return &t, nil
	case models.NotificationConfirmation:
		t := DefaultConfirmationTemplate
		return &t, nil
	}
	return nil, &NotFoundError{Resource: "template", ID: templateType}
}

// UpsertTemplate stores the admin-edited template for the type.
func (s *TemplateService) UpsertTemplate(templateType, title, body string, enabled bool) (*models.NotificationTemplate, error) {
	if title == "" || body == "" {
		return nil, &ValidationError{Fields: []string{"title", "body"}}
	}
	var template models.NotificationTemplate
	err := s.DB.First(&template, "type = ?", templateType).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		template = models.NotificationTemplate{Type: templateType}
	}
	template.Title = title
	template.Body = body
	template.Enabled = enabled
	if err := s.DB.Save(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// RenderReminder fills the reminder template for a reservation. The templates
// use moustache-style placeholders edited through the admin console, so
// substitution is a plain replacement over the closed placeholder set rather
// than text/template.
func (s *TemplateService) RenderReminder(reservation *models.Reservation) (string, error) {
	template, err := s.GetTemplate(models.NotificationReminder)
	if err != nil {
		return "", err
	}
	return renderPlaceholders(template.Body, reservation), nil
}

// RenderConfirmation fills the confirmation template for a reservation.
func (s *TemplateService) RenderConfirmation(reservation *models.Reservation) (string, error) {
	template, err := s.GetTemplate(models.NotificationConfirmation)
	if err != nil {
		return "", err
	}
	return renderPlaceholders(template.Body, reservation), nil
}

func renderPlaceholders(body string, reservation *models.Reservation) string {
	replacer := strings.NewReplacer(
		"{{customer_name}}", reservation.CustomerName,
		"{{customer_phone}}", reservation.CustomerPhone,
		"{{reservation_date}}", formatDate(reservation.StartTime),
		"{{reservation_time}}", formatDateTime(reservation.StartTime),
		"{{table_name}}", reservation.Table.Name,
	)
	return replacer.Replace(body)
}

func formatDate(t time.Time) string {
	return t.Format("2006/01/02")
}

func formatDateTime(t time.Time) string {
	return t.Format("2006/01/02 15:04")
}
