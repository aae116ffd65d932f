package models

import "time"

// ConversationState holds the chat dialogue position for one LINE user.
// Context is an opaque JSON document owned by the conversation service.
type ConversationState struct {
	LineUserID string    `gorm:"type:varchar(64);primaryKey" json:"line_user_id"`
	Context    string    `gorm:"type:text;not null" json:"context"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
