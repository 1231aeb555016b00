package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/inventory"
	"github.com/MrJamesThe3rd/binder/internal/money"
)

// ClearReason is recorded on carts the buyer discards.
const ClearReason = "cart cleared by buyer"

// resolveOpenTransaction finds or creates the buyer's open cart with seller.
// It must run inside tx; the pair lock is held until tx ends.
func resolveOpenTransaction(ctx context.Context, tx Tx, buyerID, sellerID uuid.UUID) (*Transaction, bool, error) {
	if buyerID == sellerID {
		return nil, false, ErrSelfTrade
	}

	if err := tx.LockPair(ctx, buyerID, sellerID); err != nil {
		return nil, false, fmt.Errorf("locking pair: %w", err)
	}

	existing, err := tx.FindActive(ctx, buyerID, sellerID)

	switch {
	case err == nil:
		if order, ok := existing.State().(OrderState); ok {
			return nil, false, fmt.Errorf("%w: your transaction with this seller is %s", ErrTransactionLocked, order.Status())
		}

		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, fmt.Errorf("finding active transaction: %w", err)
	}

	t := &Transaction{
		BuyerID:  buyerID,
		SellerID: sellerID,
		Status:   StatusOpen,
	}
	if err := tx.Create(ctx, t); err != nil {
		return nil, false, err
	}

	return t, true, nil
}

// AddToCart puts an owned card into the buyer's cart with its seller, creating
// the cart if needed. Adding a card that is already there succeeds unchanged.
func (s *Service) AddToCart(ctx context.Context, buyerID, userCardID uuid.UUID) (uuid.UUID, error) {
	listing, err := s.inventory.Lookup(ctx, userCardID)
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			return uuid.Nil, fmt.Errorf("%w: card %s is not for sale", ErrNotFound, userCardID)
		}

		return uuid.Nil, fmt.Errorf("looking up card: %w", err)
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin add to cart: %w", err)
	}
	defer tx.Rollback()

	cart, created, err := resolveOpenTransaction(ctx, tx, buyerID, listing.SellerID)
	if err != nil {
		return uuid.Nil, err
	}

	added, err := tx.AddItem(ctx, &Item{
		TransactionID: cart.ID,
		UserCardID:    userCardID,
		Quantity:      1,
		AgreedPrice:   listing.Price,
		Condition:     string(listing.Condition),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("adding item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit add to cart: %w", err)
	}

	var events []Event
	if created {
		events = append(events, newEvent(EventCreated, cart))
	}

	if added {
		ev := newEvent(EventItemAdded, cart)
		ev.UserCardID = &userCardID
		events = append(events, ev)
	}

	s.publish(ctx, events...)

	return cart.ID, nil
}

// RemoveFromCart deletes a card from the buyer's open or pending transaction.
// A transaction left without items is deleted; a pending one is re-totalled.
func (s *Service) RemoveFromCart(ctx context.Context, buyerID, userCardID uuid.UUID) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin remove from cart: %w", err)
	}
	defer tx.Rollback()

	item, err := tx.FindEditableItem(ctx, buyerID, userCardID)
	if err != nil {
		return err
	}

	t, err := tx.Get(ctx, item.TransactionID)
	if err != nil {
		return err
	}

	if !slices.Contains(EditableStatuses, t.Status) {
		return fmt.Errorf("%w: transaction is %s", ErrTransactionLocked, t.Status)
	}

	if err := tx.DeleteItem(ctx, item.ID); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	remaining, err := tx.Items(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("listing items: %w", err)
	}

	removed := newEvent(EventItemRemoved, t)
	removed.UserCardID = &userCardID
	events := []Event{removed}

	switch {
	case len(remaining) == 0:
		if err := tx.Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("deleting empty transaction: %w", err)
		}

		events = append(events, newEvent(EventDeleted, t))
	case t.Status == StatusPending:
		total := itemsTotal(remaining)
		t.TotalAmount = &total

		if err := tx.UpdateState(ctx, t, StatusPending); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove from cart: %w", err)
	}

	s.publish(ctx, events...)

	return nil
}

// ClearCart discards every item of an open or pending transaction and closes
// it as cancelled. Accepted transactions must be cancelled instead.
func (s *Service) ClearCart(ctx context.Context, buyerID, transactionID uuid.UUID) error {
	t, err := s.apply(ctx, buyerID, transactionID, ActionClear, func(ctx context.Context, tx Tx, t *Transaction) error {
		if err := tx.DeleteItems(ctx, t.ID); err != nil {
			return fmt.Errorf("deleting items: %w", err)
		}

		reason := ClearReason
		t.CancelledBy = &buyerID
		t.CancellationReason = &reason

		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("cart cleared", "transaction_id", t.ID, "buyer_id", buyerID)

	return nil
}

func itemsTotal(items []*Item) int64 {
	lines := make([]money.Line, len(items))
	for i, it := range items {
		lines[i] = money.Line{Cents: it.AgreedPrice, Quantity: it.Quantity}
	}

	return money.Sum(lines...)
}
