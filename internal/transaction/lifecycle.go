package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxReasonLength bounds a cancellation reason, counted in characters.
const MaxReasonLength = 1000

// Submit turns the buyer's open cart into a pending order with a frozen total.
func (s *Service) Submit(ctx context.Context, buyerID, transactionID uuid.UUID) (*Transaction, error) {
	return s.apply(ctx, buyerID, transactionID, ActionSubmit, func(ctx context.Context, tx Tx, t *Transaction) error {
		items, err := tx.Items(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("listing items: %w", err)
		}

		if len(items) == 0 {
			return ErrEmptyCart
		}

		total := itemsTotal(items)
		t.TotalAmount = &total
		t.Items = items

		return nil
	})
}

// Accept confirms a pending order. Only the seller may accept.
func (s *Service) Accept(ctx context.Context, sellerID, transactionID uuid.UUID) (*Transaction, error) {
	return s.apply(ctx, sellerID, transactionID, ActionAccept, nil)
}

// Complete closes an accepted order. Only the buyer may complete.
func (s *Service) Complete(ctx context.Context, buyerID, transactionID uuid.UUID) (*Transaction, error) {
	return s.apply(ctx, buyerID, transactionID, ActionComplete, nil)
}

// Cancel withdraws an accepted order and leaves a note in its conversation.
func (s *Service) Cancel(ctx context.Context, buyerID, transactionID uuid.UUID, reason string) (*Transaction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", ErrValidation)
	}

	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrValidation, MaxReasonLength)
	}

	return s.apply(ctx, buyerID, transactionID, ActionCancel, func(ctx context.Context, tx Tx, t *Transaction) error {
		t.CancelledBy = &buyerID
		t.CancellationReason = &reason

		note := "The buyer cancelled this transaction. Reason: " + reason
		if err := tx.AppendSystemMessage(ctx, t.ID, note); err != nil {
			return fmt.Errorf("appending cancellation notice: %w", err)
		}

		return nil
	})
}

type mutation func(ctx context.Context, tx Tx, t *Transaction) error

// apply runs one state machine transition: load and lock, authorise, check the
// source status, let mutate fill in side effects, then write conditionally on
// the status read.
func (s *Service) apply(ctx context.Context, caller, id uuid.UUID, action Action, mutate mutation) (*Transaction, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin %s: %w", action, err)
	}
	defer tx.Rollback()

	t, err := tx.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Check(t, caller, action); err != nil {
		return nil, err
	}

	from := t.Status

	if mutate != nil {
		if err := mutate(ctx, tx, t); err != nil {
			return nil, err
		}
	}

	t.Status = action.Target()

	if err := tx.UpdateState(ctx, t, from); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit %s: %w", action, err)
	}

	slog.Info("transaction transitioned",
		"transaction_id", t.ID, "action", action, "from", from, "to", t.Status)

	s.publish(ctx, newEvent(actionEvents[action], t))

	return t, nil
}
