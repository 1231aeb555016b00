package conversation

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength bounds a message body, counted in characters.
const MaxMessageLength = 2000

// Conversation is the message thread attached to a transaction.
type Conversation struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	CreatedAt     time.Time
}

// Message is a note from a party or, when System is set, from the platform.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       *uuid.UUID // nil for system messages
	Body           string
	System         bool
	CreatedAt      time.Time
}
