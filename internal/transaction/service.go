package transaction

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/inventory"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	Begin(ctx context.Context) (Tx, error)

	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	// CartMembership returns the subset of userCardIDs sitting in the buyer's
	// open or pending transactions.
	CartMembership(ctx context.Context, buyerID uuid.UUID, userCardIDs []uuid.UUID) ([]uuid.UUID, error)
}

// Tx is a single database transaction. Every lifecycle operation runs inside
// one so its reads and its conditional write commit together.
type Tx interface {
	// LockPair serialises cart resolution for a buyer/seller pair until commit.
	LockPair(ctx context.Context, buyerID, sellerID uuid.UUID) error
	FindActive(ctx context.Context, buyerID, sellerID uuid.UUID) (*Transaction, error)
	Create(ctx context.Context, t *Transaction) error
	// Get loads and row-locks a transaction without its items.
	Get(ctx context.Context, id uuid.UUID) (*Transaction, error)
	// UpdateState persists status, total and cancellation fields only if the
	// row is still in status from; otherwise it fails with ErrInvalidState.
	UpdateState(ctx context.Context, t *Transaction, from Status) error
	Delete(ctx context.Context, id uuid.UUID) error

	Items(ctx context.Context, transactionID uuid.UUID) ([]*Item, error)
	// AddItem inserts the item unless the card is already in the transaction.
	AddItem(ctx context.Context, item *Item) (bool, error)
	FindEditableItem(ctx context.Context, buyerID, userCardID uuid.UUID) (*Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	DeleteItems(ctx context.Context, transactionID uuid.UUID) error

	AppendSystemMessage(ctx context.Context, transactionID uuid.UUID, body string) error

	Commit() error
	Rollback() error
}

// Inventory resolves owned cards to sellable listings.
type Inventory interface {
	Lookup(ctx context.Context, userCardID uuid.UUID) (*inventory.Listing, error)
}

// Publisher receives committed lifecycle events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Service struct {
	repo      Repository
	inventory Inventory
	events    Publisher
}

func NewService(repo Repository, inv Inventory, events Publisher) *Service {
	if events == nil {
		events = nopPublisher{}
	}

	return &Service{repo: repo, inventory: inv, events: events}
}

// Get returns a transaction with its items if the caller is a party to it.
func (s *Service) Get(ctx context.Context, caller, id uuid.UUID) (*Transaction, error) {
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if t.RoleOf(caller) == RoleNone {
		return nil, ErrNotFound
	}

	return t, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// Carts returns the buyer's open and pending transactions with their items.
func (s *Service) Carts(ctx context.Context, buyerID uuid.UUID) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, ListFilter{
		UserID:   buyerID,
		Role:     RoleBuyer,
		Statuses: EditableStatuses,
	})
}

// CartStatus reports, for every requested card, whether it is already in one
// of the caller's carts.
func (s *Service) CartStatus(ctx context.Context, caller uuid.UUID, userCardIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	status := make(map[uuid.UUID]bool, len(userCardIDs))
	if len(userCardIDs) == 0 {
		return status, nil
	}

	for _, id := range userCardIDs {
		status[id] = false
	}

	present, err := s.repo.CartMembership(ctx, caller, userCardIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range present {
		status[id] = true
	}

	return status, nil
}

func (s *Service) publish(ctx context.Context, events ...Event) {
	for _, ev := range events {
		if err := s.events.Publish(ctx, ev); err != nil {
			slog.Warn("failed to publish transaction event",
				"type", ev.Type, "transaction_id", ev.TransactionID, "error", err)
		}
	}
}
