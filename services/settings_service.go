package services

import (
	"errors"
	"os"

	"github.com/sakura-poker/reservation-app/models"
	"gorm.io/gorm"
)

// Setting keys the admin console can override at runtime. Anything not stored
// in the database falls back to the environment.
const (
	SettingLineChannelSecret      = "LINE_CHANNEL_SECRET"
	SettingLineChannelAccessToken = "LINE_CHANNEL_ACCESS_TOKEN"
	SettingLineLoginChannelID     = "LINE_LOGIN_CHANNEL_ID"
	SettingLineLoginChannelSecret = "LINE_LOGIN_CHANNEL_SECRET"
	SettingJWTSecret              = "JWT_SECRET"
	SettingLiffBaseURL            = "LIFF_BASE_URL"
	SettingStorePhone             = "STORE_PHONE"
	SettingAdminLineUserID        = "ADMIN_LINE_USER_ID"
)

// SettingsService is a read-through store: database first, environment second.
type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

func (s *SettingsService) GetSetting(key string) (string, error) {
	var setting models.SystemSetting
	err := s.DB.First(&setting, "key = ?", key).Error
	if err == nil {
		return setting.Value, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return os.Getenv(key), nil
}

func (s *SettingsService) GetAllSettings() (map[string]string, error) {
	keys := []string{
		SettingLineChannelSecret,
		SettingLineChannelAccessToken,
		SettingLineLoginChannelID,
		SettingLineLoginChannelSecret,
		SettingJWTSecret,
	}
	settings := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := s.GetSetting(key)
		if err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, nil
}

func (s *SettingsService) UpdateSetting(key, value string) error {
	setting := models.SystemSetting{Key: key, Value: value}
	return s.DB.Save(&setting).Error
}
