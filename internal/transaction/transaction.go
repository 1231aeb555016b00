package transaction

import (
	"time"

	"github.com/google/uuid"
)

// Status is the persisted lifecycle status of a transaction.
type Status string

const (
	StatusOpen      Status = "open"
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses are the statuses covered by the one-transaction-per-pair rule.
var ActiveStatuses = []Status{StatusOpen, StatusPending, StatusAccepted}

// EditableStatuses are the statuses in which a buyer may still remove items.
var EditableStatuses = []Status{StatusOpen, StatusPending}

// Role is the part a user plays in a transaction.
type Role string

const (
	RoleNone   Role = ""
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Transaction is an agreement between exactly one buyer and one seller.
// While open it doubles as the buyer's cart for that seller.
type Transaction struct {
	ID                 uuid.UUID
	BuyerID            uuid.UUID
	SellerID           uuid.UUID
	Status             Status
	TotalAmount        *int64 // cents, set on submit
	CancelledBy        *uuid.UUID
	CancellationReason *string
	Items              []*Item // loaded by reads, not by Tx.Get
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Item is one line in a transaction. Price and condition are frozen when the
// item is added and never follow later inventory edits.
type Item struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	UserCardID    uuid.UUID
	Quantity      int
	AgreedPrice   int64 // cents
	Condition     string
	CreatedAt     time.Time
}

// RoleOf returns the caller's role, or RoleNone for a third party.
func (t *Transaction) RoleOf(userID uuid.UUID) Role {
	switch userID {
	case t.BuyerID:
		return RoleBuyer
	case t.SellerID:
		return RoleSeller
	}

	return RoleNone
}

// State returns the cart/order view of the current status.
func (t *Transaction) State() State {
	st, err := StateOf(t.Status)
	if err != nil {
		return OrderState{status: t.Status}
	}

	return st
}

// HasCard reports whether the owned card is already a line of this transaction.
func (t *Transaction) HasCard(userCardID uuid.UUID) bool {
	for _, it := range t.Items {
		if it.UserCardID == userCardID {
			return true
		}
	}

	return false
}

// ListFilter narrows List. UserID is required; Role restricts which side the
// user must be on (RoleNone matches either).
type ListFilter struct {
	UserID    uuid.UUID
	Role      Role
	Statuses  []Status
	StartDate *time.Time
	EndDate   *time.Time
}
