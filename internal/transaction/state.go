package transaction

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// State is a closed sum over the two shapes a transaction takes:
//
//	CartState  == StatusOpen: an editable basket, items may be added.
//	OrderState == StatusPending, StatusAccepted, StatusCompleted or StatusCancelled.
//
// Only the types in this package implement it.
type State interface {
	Status() Status
	state()
}

// CartState is an open transaction.
type CartState struct{}

func (CartState) Status() Status { return StatusOpen }
func (CartState) state()         {}

// OrderState is a submitted transaction.
type OrderState struct {
	status Status
}

func (s OrderState) Status() Status { return s.status }
func (OrderState) state()           {}

// Locked reports whether the order blocks new items for the pair.
func (s OrderState) Locked() bool {
	return s.status == StatusPending || s.status == StatusAccepted
}

// Terminal reports whether the order can no longer change.
func (s OrderState) Terminal() bool {
	return s.status == StatusCompleted || s.status == StatusCancelled
}

// StateOf maps a persisted status onto the sum type.
func StateOf(s Status) (State, error) {
	switch s {
	case StatusOpen:
		return CartState{}, nil
	case StatusPending, StatusAccepted, StatusCompleted, StatusCancelled:
		return OrderState{status: s}, nil
	}

	return nil, fmt.Errorf("unknown status %q", s)
}

// Action is a buyer or seller initiated transition.
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionAccept   Action = "accept"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
	ActionClear    Action = "clear"
)

type rule struct {
	actor Role
	from  []Status
	to    Status
	// locked lists source statuses that report ErrTransactionLocked instead of
	// ErrInvalidState.
	locked []Status
}

var rules = map[Action]rule{
	ActionSubmit:   {actor: RoleBuyer, from: []Status{StatusOpen}, to: StatusPending},
	ActionAccept:   {actor: RoleSeller, from: []Status{StatusPending}, to: StatusAccepted},
	ActionComplete: {actor: RoleBuyer, from: []Status{StatusAccepted}, to: StatusCompleted},
	ActionCancel:   {actor: RoleBuyer, from: []Status{StatusAccepted}, to: StatusCancelled},
	ActionClear: {
		actor:  RoleBuyer,
		from:   []Status{StatusOpen, StatusPending},
		to:     StatusCancelled,
		locked: []Status{StatusAccepted},
	},
}

// Target returns the status an action moves a transaction to.
func (a Action) Target() Status {
	return rules[a].to
}

// Check validates that caller may apply the action to t in its current status.
func Check(t *Transaction, caller uuid.UUID, a Action) error {
	r, ok := rules[a]
	if !ok {
		return fmt.Errorf("unknown action %q", a)
	}

	if t.RoleOf(caller) != r.actor {
		return ErrNotFound
	}

	if slices.Contains(r.from, t.Status) {
		return nil
	}

	if slices.Contains(r.locked, t.Status) {
		return fmt.Errorf("%w: transaction is %s", ErrTransactionLocked, t.Status)
	}

	return fmt.Errorf("%w: %s", ErrInvalidState, describe(a, t.Status))
}

func describe(a Action, current Status) string {
	if current == rules[a].to {
		return "already " + string(current)
	}

	return fmt.Sprintf("cannot %s a transaction that is %s", a, current)
}
