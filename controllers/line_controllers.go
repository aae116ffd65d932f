package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/sakura-poker/reservation-app/events"
	"github.com/sakura-poker/reservation-app/models"
	"github.com/sakura-poker/reservation-app/services"
	"github.com/sakura-poker/reservation-app/utils"
)

var dateMessagePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// LineController drives the chat booking dialogue: a date message lists free
// tables for a two hour slot, a numbered reply with name and phone confirms
// the booking.
type LineController struct {
	Reservations  *services.ReservationService
	Tables        *services.TableService
	Conversations *services.ConversationService
	Templates     *services.TemplateService
	Notifications *services.NotificationService
	Line          *services.LineClient
}

func NewLineController(
	reservations *services.ReservationService,
	tables *services.TableService,
	conversations *services.ConversationService,
	templates *services.TemplateService,
	notifications *services.NotificationService,
	line *services.LineClient,
) *LineController {
	return &LineController{
		Reservations:  reservations,
		Tables:        tables,
		Conversations: conversations,
		Templates:     templates,
		Notifications: notifications,
		Line:          line,
	}
}

// Webhook -> POST /line/webhook
// ParseRequest validates the X-Line-Signature against the channel secret.
func (lc *LineController) Webhook(c *gin.Context) {
	bot, err := lc.Line.Bot()
	if err != nil {
		utils.ErrorLogger.Printf("LINE client unavailable: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	lineEvents, err := bot.ParseRequest(c.Request)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			c.String(http.StatusUnauthorized, "invalid signature")
			return
		}
		c.Status(http.StatusBadRequest)
		return
	}

	for _, event := range lineEvents {
		lc.handleEvent(event)
	}
	c.Status(http.StatusOK)
}

func (lc *LineController) handleEvent(event *linebot.Event) {
	if event.Type != linebot.EventTypeMessage {
		return
	}
	message, ok := event.Message.(*linebot.TextMessage)
	if !ok {
		return
	}

	text := strings.TrimSpace(message.Text)
	userID := ""
	if event.Source != nil {
		userID = event.Source.UserID
	}

	if userID != "" {
		context, err := lc.Conversations.GetContext(userID)
		if err != nil {
			utils.ErrorLogger.Printf("Failed to load conversation context for %s: %v", userID, err)
			return
		}
		if context.Type == services.ContextAwaitingTableSelection {
			lc.handleConfirmationStep(event, context, text, userID)
			return
		}
	}

	switch {
	case text == "予約" || text == "予約する":
		lc.reply(event.ReplyToken, "ご希望の日付と時間を送信してください (例: 2024-05-10 19:00)")
	case dateMessagePattern.MatchString(text):
		lc.handleProvisionalBooking(event, text, userID)
	default:
		lc.reply(event.ReplyToken, "予約をご希望の場合は『予約』と入力してください。")
	}
}

// handleProvisionalBooking answers a datetime message with the tables free
// for a two hour slot and stashes the offer in the conversation context.
func (lc *LineController) handleProvisionalBooking(event *linebot.Event, text, userID string) {
	requestedAt, ok := parseChatDate(text)
	if !ok {
		lc.reply(event.ReplyToken, "日時の形式が正しくありません。例: 2024-05-10 19:00")
		return
	}
	endTime := requestedAt.Add(2 * time.Hour)

	tables, err := lc.Tables.ListTables()
	if err != nil {
		utils.ErrorLogger.Printf("Failed to list tables for chat booking: %v", err)
		return
	}

	var available []string
	var lines []string
	for _, table := range tables {
		busy, err := lc.Reservations.GetAvailability(table.ID, requestedAt, endTime)
		if err != nil {
			utils.ErrorLogger.Printf("Failed availability check for table %s: %v", table.ID, err)
			return
		}
		if len(busy) > 0 {
			continue
		}
		smoking := "禁煙"
		if table.IsSmoking {
			smoking = "喫煙"
		}
		lines = append(lines, fmt.Sprintf("%d. %s (定員%d-%d名 / %s)",
			len(available)+1, table.Name, table.CapacityMin, table.CapacityMax, smoking))
		available = append(available, table.ID)
	}

	if len(available) == 0 {
		lc.reply(event.ReplyToken, "ご指定の時間に空きがありません。他の時間をお試しください。")
		return
	}

	if userID != "" {
		err := lc.Conversations.SetContext(userID, &services.ConversationContext{
			Type:        services.ContextAwaitingTableSelection,
			RequestedAt: requestedAt,
			EndTime:     endTime,
			TableIDs:    available,
		})
		if err != nil {
			utils.ErrorLogger.Printf("Failed to store conversation context for %s: %v", userID, err)
		}
	}

	lc.reply(event.ReplyToken, fmt.Sprintf(
		"空きがあるテーブルはこちらです:\n%s\n希望の番号とお名前・電話番号を続けて送信してください。\n例: 1 田中太郎 08012345678",
		strings.Join(lines, "\n")))
}

// handleConfirmationStep parses "N name phone" and books the chosen table
// with its minimum party size.
func (lc *LineController) handleConfirmationStep(event *linebot.Event, context *services.ConversationContext, text, userID string) {
	fields := strings.Fields(text)
	reservation, err := lc.confirmBooking(context, fields, userID)
	if err != nil {
		utils.InfoLogger.Printf("Chat confirmation rejected for %s: %v", userID, err)
		lc.reply(event.ReplyToken, "入力を確認できませんでした。例の形式に従って入力してください (例: 1 田中太郎 08012345678)。")
		return
	}

	if err := lc.Conversations.ClearContext(userID); err != nil {
		utils.ErrorLogger.Printf("Failed to clear conversation context for %s: %v", userID, err)
	}

	events.BroadcastReservation(events.EventReservationCreate, *reservation)
	go lc.notifyConfirmation(reservation.ID)

	lc.reply(event.ReplyToken, fmt.Sprintf("%s様、ご予約を承りました。\n%sからご利用いただけます。",
		reservation.CustomerName, reservation.StartTime.Format("2006/01/02 15:04")))
}

func (lc *LineController) confirmBooking(context *services.ConversationContext, fields []string, userID string) (*models.Reservation, error) {
	if len(fields) != 3 {
		return nil, errors.New("expected choice, name and phone")
	}
	choice, err := strconv.Atoi(fields[0])
	if err != nil || choice < 1 || choice > len(context.TableIDs) {
		return nil, errors.New("invalid table choice")
	}
	name := fields[1]
	phone := fields[2]
	if !domesticPhonePattern.MatchString(phone) && !internationalPhonePattern.MatchString(phone) {
		return nil, errors.New("invalid phone number")
	}

	tableID := context.TableIDs[choice-1]
	table, err := lc.Tables.GetTableByID(tableID)
	if err != nil {
		return nil, err
	}

	var lineUserID *string
	if userID != "" {
		lineUserID = &userID
	}

	return lc.Reservations.CreateReservation(services.CreateReservationRequest{
		TableID:       tableID,
		CustomerName:  name,
		CustomerPhone: phone,
		PartySize:     table.CapacityMin,
		StartTime:     context.RequestedAt,
		EndTime:       context.EndTime,
		LineUserID:    lineUserID,
	})
}

func (lc *LineController) notifyConfirmation(reservationID string) {
	reservation, err := lc.Reservations.GetReservation(reservationID)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to load reservation %s for confirmation: %v", reservationID, err)
		return
	}
	message, err := lc.Templates.RenderConfirmation(reservation)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to render confirmation for reservation %s: %v", reservationID, err)
		return
	}
	lc.Notifications.SendConfirmation(reservation, message)
}

func (lc *LineController) reply(replyToken, text string) {
	if err := lc.Line.ReplyText(replyToken, text); err != nil {
		utils.ErrorLogger.Printf("Failed to send LINE reply: %v", err)
	}
}

// parseChatDate accepts "2006-01-02 15:04", the hour-only "2006-01-02 15" and
// the Japanese "19時" spelling.
func parseChatDate(text string) (time.Time, bool) {
	normalized := strings.ReplaceAll(text, "時", ":00")
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 15", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, normalized, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
