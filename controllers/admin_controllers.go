package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sakura-poker/reservation-app/models"
	"github.com/sakura-poker/reservation-app/services"
	"github.com/sakura-poker/reservation-app/utils"
	"gorm.io/gorm"
)

type AdminController struct {
	DB        *gorm.DB
	Settings  *services.SettingsService
	Templates *services.TemplateService
	Scheduler *services.ReminderScheduler
}

func NewAdminController(db *gorm.DB, settings *services.SettingsService, templates *services.TemplateService, scheduler *services.ReminderScheduler) *AdminController {
	return &AdminController{DB: db, Settings: settings, Templates: templates, Scheduler: scheduler}
}

// GetDashboard -> GET /admin/dashboard
func (ac *AdminController) GetDashboard(c *gin.Context) {
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	endOfMonth := startOfMonth.AddDate(0, 1, 0).Add(-time.Second)

	var totalReservations int64
	ac.DB.Model(&models.Reservation{}).
		Where("start_time >= ? AND start_time <= ? AND status <> ?", startOfMonth, endOfMonth, models.StatusCancelled).
		Count(&totalReservations)

	// Tables with a reservation running right now.
	var activeTableIDs []string
	ac.DB.Model(&models.Reservation{}).
		Where("start_time <= ? AND end_time >= ? AND status IN ?", now, now, models.ActiveStatuses).
		Distinct("table_id").
		Pluck("table_id", &activeTableIDs)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	var todayReservations int64
	ac.DB.Model(&models.Reservation{}).
		Where("start_time >= ? AND start_time < ? AND status <> ?", today, tomorrow, models.StatusCancelled).
		Count(&todayReservations)

	var recentActivity []models.Reservation
	ac.DB.Preload("Table").Order("updated_at DESC").Limit(10).Find(&recentActivity)

	utils.RespondJSON(c, http.StatusOK, "Dashboard", gin.H{
		"total_reservations": totalReservations,
		"active_tables":      len(activeTableIDs),
		"today_reservations": todayReservations,
		"recent_activity":    recentActivity,
	})
}

// GetTemplate -> GET /admin/templates/:type
func (ac *AdminController) GetTemplate(templateType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		template, err := ac.Templates.GetTemplate(templateType)
		if err != nil {
			respondEngineError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Template", template)
	}
}

// PutTemplate -> PUT /admin/templates/:type
func (ac *AdminController) PutTemplate(templateType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Title   string `json:"title" binding:"required"`
			Body    string `json:"body" binding:"required"`
			Enabled *bool  `json:"enabled"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}

		template, err := ac.Templates.UpsertTemplate(templateType, req.Title, req.Body, enabled)
		if err != nil {
			respondEngineError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Template saved", template)
	}
}

// GetNotificationSettings -> GET /admin/settings/notification
func (ac *AdminController) GetNotificationSettings(c *gin.Context) {
	liffURL, err := ac.Settings.GetSetting(services.SettingLiffBaseURL)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	storePhone, err := ac.Settings.GetSetting(services.SettingStorePhone)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	adminLineUserID, err := ac.Settings.GetSetting(services.SettingAdminLineUserID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification settings", gin.H{
		"liff_base_url":      liffURL,
		"store_phone":        storePhone,
		"admin_line_user_id": adminLineUserID,
	})
}

// PutNotificationSettings -> PUT /admin/settings/notification
func (ac *AdminController) PutNotificationSettings(c *gin.Context) {
	var req struct {
		LiffBaseURL     *string `json:"liff_base_url"`
		StorePhone      *string `json:"store_phone"`
		AdminLineUserID *string `json:"admin_line_user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]*string{
		services.SettingLiffBaseURL:     req.LiffBaseURL,
		services.SettingStorePhone:      req.StorePhone,
		services.SettingAdminLineUserID: req.AdminLineUserID,
	}
	for key, value := range updates {
		if value == nil {
			continue
		}
		if err := ac.Settings.UpdateSetting(key, *value); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Settings saved", nil)
}

// GetSettings -> GET /admin/settings
func (ac *AdminController) GetSettings(c *gin.Context) {
	settings, err := ac.Settings.GetAllSettings()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settings", settings)
}

// PutSettings -> PUT /admin/settings
func (ac *AdminController) PutSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	for key, value := range req {
		if err := ac.Settings.UpdateSetting(key, value); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Settings saved", nil)
}

// TestReminders -> POST /admin/reminders/test
// Runs the next-day reminder pass immediately and reports per-reservation
// outcomes, so operators can verify templates and LINE credentials.
func (ac *AdminController) TestReminders(c *gin.Context) {
	results, err := ac.Scheduler.RunReminderOnce(time.Now())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reminder pass finished", gin.H{
		"reservation_count": len(results),
		"results":           results,
	})
}
