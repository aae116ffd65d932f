package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/sakura-poker/reservation-app/models"
	"gorm.io/gorm"
)

// Conversation context types for the chat booking dialogue.
const (
	ContextNone                   = "NONE"
	ContextAwaitingTableSelection = "AWAITING_TABLE_SELECTION"
)

// ConversationContext is the persisted dialogue position of a LINE user.
// While awaiting a table selection it carries the requested slot and the
// table ids that were offered, in the order they were presented.
type ConversationContext struct {
	Type        string    `json:"type"`
	RequestedAt time.Time `json:"requested_at,omitempty"`
	EndTime     time.Time `json:"end_time,omitempty"`
	TableIDs    []string  `json:"table_ids,omitempty"`
}

type ConversationService struct {
	DB *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{DB: db}
}

func (s *ConversationService) GetContext(lineUserID string) (*ConversationContext, error) {
	var state models.ConversationState
	err := s.DB.First(&state, "line_user_id = ?", lineUserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ConversationContext{Type: ContextNone}, nil
	}
	if err != nil {
		return nil, err
	}

	var context ConversationContext
	if err := json.Unmarshal([]byte(state.Context), &context); err != nil {
		// A corrupt context should not strand the user; restart the dialogue.
		return &ConversationContext{Type: ContextNone}, nil
	}
	return &context, nil
}

func (s *ConversationService) SetContext(lineUserID string, context *ConversationContext) error {
	payload, err := json.Marshal(context)
	if err != nil {
		return err
	}
	state := models.ConversationState{
		LineUserID: lineUserID,
		Context:    string(payload),
	}
	return s.DB.Save(&state).Error
}

func (s *ConversationService) ClearContext(lineUserID string) error {
	err := s.DB.Delete(&models.ConversationState{}, "line_user_id = ?", lineUserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
