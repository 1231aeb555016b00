package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names a committed lifecycle change.
type EventType string

const (
	EventCreated     EventType = "transaction.created"
	EventItemAdded   EventType = "transaction.item_added"
	EventItemRemoved EventType = "transaction.item_removed"
	EventDeleted     EventType = "transaction.deleted"
	EventSubmitted   EventType = "transaction.submitted"
	EventAccepted    EventType = "transaction.accepted"
	EventCompleted   EventType = "transaction.completed"
	EventCancelled   EventType = "transaction.cancelled"
	EventCleared     EventType = "transaction.cleared"
)

var actionEvents = map[Action]EventType{
	ActionSubmit:   EventSubmitted,
	ActionAccept:   EventAccepted,
	ActionComplete: EventCompleted,
	ActionCancel:   EventCancelled,
	ActionClear:    EventCleared,
}

type Event struct {
	Type          EventType  `json:"type"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	BuyerID       uuid.UUID  `json:"buyer_id"`
	SellerID      uuid.UUID  `json:"seller_id"`
	Status        Status     `json:"status"`
	UserCardID    *uuid.UUID `json:"user_card_id,omitempty"`
	TotalAmount   *int64     `json:"total_amount,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func newEvent(typ EventType, t *Transaction) Event {
	return Event{
		Type:          typ,
		TransactionID: t.ID,
		BuyerID:       t.BuyerID,
		SellerID:      t.SellerID,
		Status:        t.Status,
		TotalAmount:   t.TotalAmount,
		OccurredAt:    time.Now().UTC(),
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
