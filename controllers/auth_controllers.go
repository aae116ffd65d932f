package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sakura-poker/reservation-app/services"
	"github.com/sakura-poker/reservation-app/utils"
)

const lineVerifyURL = "https://api.line.me/oauth2/v2.1/verify"

const liffTokenTTL = 15 * time.Minute

type AuthController struct {
	Settings *services.SettingsService

	// VerifyURL is swapped out in tests; defaults to the LINE endpoint.
	VerifyURL string
	Client    *http.Client
}

func NewAuthController(settings *services.SettingsService) *AuthController {
	return &AuthController{
		Settings:  settings,
		VerifyURL: lineVerifyURL,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type lineVerifyResponse struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	Exp     int64  `json:"exp"`
}

// LiffLogin -> POST /auth/liff
// Exchanges a LIFF id token for a short-lived session token carrying the LINE
// user identity.
func (ac *AuthController) LiffLogin(c *gin.Context) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("idToken required"))
		return
	}

	loginChannelID, err := ac.Settings.GetSetting(services.SettingLineLoginChannelID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	form := url.Values{}
	form.Set("id_token", req.IDToken)
	form.Set("client_id", loginChannelID)

	resp, err := ac.Client.Post(ac.VerifyURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		utils.ErrorLogger.Printf("LIFF token verification failed: %v", err)
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid idToken"))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid idToken"))
		return
	}

	var verified lineVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verified); err != nil || verified.Sub == "" {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid idToken"))
		return
	}

	token, err := utils.GenerateLiffToken(verified.Sub, verified.Name)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Authenticated", gin.H{
		"token":     token,
		"expiresIn": int(liffTokenTTL.Seconds()),
		"profile": gin.H{
			"userId":  verified.Sub,
			"name":    verified.Name,
			"email":   verified.Email,
			"picture": verified.Picture,
		},
	})
}
