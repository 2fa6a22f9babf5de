package models

import (
	"time"

	"github.com/google/uuid"
)

// ConversationTurn is one (user message, bot response) pair. Failed marks
// turns recorded for audit after an upstream failure; such turns never
// contribute preference state.
type ConversationTurn struct {
	ID          int64     `db:"id"`
	SessionID   uuid.UUID `db:"session_id"`
	UserMessage string    `db:"user_message"`
	BotResponse string    `db:"bot_response"`
	Failed      bool      `db:"failed"`
	CreatedAt   time.Time `db:"created_at"`
}
