package services

import (
	"errors"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// LinePusher sends text messages over the LINE Messaging API. Split out so
// tests and the notification service do not need real channel credentials.
type LinePusher interface {
	PushText(to, text string) error
	ReplyText(replyToken, text string) error
}

// LineClient builds a Messaging API client on demand so that credential
// changes made through the admin console take effect without a restart.
type LineClient struct {
	Settings *SettingsService
}

func NewLineClient(settings *SettingsService) *LineClient {
	return &LineClient{Settings: settings}
}

// Bot exposes the underlying SDK client for webhook request parsing.
func (c *LineClient) Bot() (*linebot.Client, error) {
	return c.bot()
}

func (c *LineClient) bot() (*linebot.Client, error) {
	secret, err := c.Settings.GetSetting(SettingLineChannelSecret)
	if err != nil {
		return nil, err
	}
	token, err := c.Settings.GetSetting(SettingLineChannelAccessToken)
	if err != nil {
		return nil, err
	}
	if secret == "" || token == "" {
		return nil, errors.New("LINE channel credentials not configured")
	}
	return linebot.New(secret, token)
}

func (c *LineClient) PushText(to, text string) error {
	bot, err := c.bot()
	if err != nil {
		return err
	}
	_, err = bot.PushMessage(to, linebot.NewTextMessage(text)).Do()
	return err
}

func (c *LineClient) ReplyText(replyToken, text string) error {
	bot, err := c.bot()
	if err != nil {
		return err
	}
	_, err = bot.ReplyMessage(replyToken, linebot.NewTextMessage(text)).Do()
	return err
}
