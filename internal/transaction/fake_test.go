package transaction_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/inventory"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

// memRepo is a serialisable in-memory Repository: a Tx holds the repo lock
// from Begin until Commit or Rollback and works on a private copy of the data.
type memRepo struct {
	mu   sync.Mutex
	data memData
}

type memData struct {
	txs      map[uuid.UUID]transaction.Transaction
	items    map[uuid.UUID]transaction.Item
	messages map[uuid.UUID][]string
}

func newMemRepo() *memRepo {
	return &memRepo{data: memData{
		txs:      map[uuid.UUID]transaction.Transaction{},
		items:    map[uuid.UUID]transaction.Item{},
		messages: map[uuid.UUID][]string{},
	}}
}

func (d memData) clone() memData {
	c := memData{
		txs:      make(map[uuid.UUID]transaction.Transaction, len(d.txs)),
		items:    make(map[uuid.UUID]transaction.Item, len(d.items)),
		messages: make(map[uuid.UUID][]string, len(d.messages)),
	}

	for k, v := range d.txs {
		c.txs[k] = v
	}

	for k, v := range d.items {
		c.items[k] = v
	}

	for k, v := range d.messages {
		c.messages[k] = slices.Clone(v)
	}

	return c
}

func (d memData) itemsOf(id uuid.UUID) []*transaction.Item {
	var out []*transaction.Item

	for _, it := range d.items {
		if it.TransactionID == id {
			cp := it
			out = append(out, &cp)
		}
	}

	slices.SortFunc(out, func(a, b *transaction.Item) int { return a.CreatedAt.Compare(b.CreatedAt) })

	return out
}

func (d memData) withItems(t transaction.Transaction) *transaction.Transaction {
	t.Items = d.itemsOf(t.ID)
	return &t
}

func (r *memRepo) Begin(context.Context) (transaction.Tx, error) {
	r.mu.Lock()
	return &memTx{repo: r, work: r.data.clone()}, nil
}

func (r *memRepo) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.data.txs[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	return r.data.withItems(t), nil
}

func (r *memRepo) ListTransactions(_ context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*transaction.Transaction

	for _, t := range r.data.txs {
		role := t.RoleOf(f.UserID)
		if role == transaction.RoleNone || (f.Role != transaction.RoleNone && role != f.Role) {
			continue
		}

		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
			continue
		}

		out = append(out, r.data.withItems(t))
	}

	slices.SortFunc(out, func(a, b *transaction.Transaction) int { return a.CreatedAt.Compare(b.CreatedAt) })

	return out, nil
}

func (r *memRepo) CartMembership(_ context.Context, buyerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []uuid.UUID

	for _, it := range r.data.items {
		t := r.data.txs[it.TransactionID]
		if t.BuyerID == buyerID && slices.Contains(transaction.EditableStatuses, t.Status) && slices.Contains(ids, it.UserCardID) {
			out = append(out, it.UserCardID)
		}
	}

	return out, nil
}

// activeCount returns the number of active transactions per pair.
func (r *memRepo) activeCount() map[[2]uuid.UUID]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[[2]uuid.UUID]int{}

	for _, t := range r.data.txs {
		if slices.Contains(transaction.ActiveStatuses, t.Status) {
			counts[[2]uuid.UUID{t.BuyerID, t.SellerID}]++
		}
	}

	return counts
}

func (r *memRepo) messagesFor(id uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.data.messages[id])
}

func (r *memRepo) itemCount(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.data.itemsOf(id))
}

type memTx struct {
	repo *memRepo
	work memData
	done bool
}

func (m *memTx) finish() {
	if !m.done {
		m.done = true
		m.repo.mu.Unlock()
	}
}

func (m *memTx) Commit() error {
	if m.done {
		return errors.New("tx done")
	}

	m.repo.data = m.work
	m.finish()

	return nil
}

func (m *memTx) Rollback() error {
	m.finish()
	return nil
}

func (m *memTx) LockPair(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (m *memTx) FindActive(_ context.Context, buyerID, sellerID uuid.UUID) (*transaction.Transaction, error) {
	for _, t := range m.work.txs {
		if t.BuyerID == buyerID && t.SellerID == sellerID && slices.Contains(transaction.ActiveStatuses, t.Status) {
			cp := t
			return &cp, nil
		}
	}

	return nil, transaction.ErrNotFound
}

func (m *memTx) Create(_ context.Context, t *transaction.Transaction) error {
	for _, other := range m.work.txs {
		if other.BuyerID == t.BuyerID && other.SellerID == t.SellerID && slices.Contains(transaction.ActiveStatuses, other.Status) {
			return fmt.Errorf("%w: duplicate active pair", transaction.ErrInvalidState)
		}
	}

	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.work.txs[t.ID] = *t

	return nil
}

func (m *memTx) Get(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	t, ok := m.work.txs[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	return &t, nil
}

func (m *memTx) UpdateState(_ context.Context, t *transaction.Transaction, from transaction.Status) error {
	cur, ok := m.work.txs[t.ID]
	if !ok || cur.Status != from {
		return fmt.Errorf("%w: transaction is no longer %s", transaction.ErrInvalidState, from)
	}

	t.UpdatedAt = time.Now()
	stored := *t
	stored.Items = nil
	m.work.txs[t.ID] = stored

	return nil
}

func (m *memTx) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.work.txs, id)

	for k, it := range m.work.items {
		if it.TransactionID == id {
			delete(m.work.items, k)
		}
	}

	return nil
}

func (m *memTx) Items(_ context.Context, id uuid.UUID) ([]*transaction.Item, error) {
	return m.work.itemsOf(id), nil
}

func (m *memTx) AddItem(_ context.Context, it *transaction.Item) (bool, error) {
	for _, other := range m.work.items {
		if other.TransactionID == it.TransactionID && other.UserCardID == it.UserCardID {
			return false, nil
		}
	}

	it.ID = uuid.New()
	it.CreatedAt = time.Now()
	m.work.items[it.ID] = *it

	return true, nil
}

func (m *memTx) FindEditableItem(_ context.Context, buyerID, userCardID uuid.UUID) (*transaction.Item, error) {
	for _, it := range m.work.items {
		t := m.work.txs[it.TransactionID]
		if t.BuyerID == buyerID && it.UserCardID == userCardID && slices.Contains(transaction.EditableStatuses, t.Status) {
			cp := it
			return &cp, nil
		}
	}

	return nil, transaction.ErrNotFound
}

func (m *memTx) DeleteItem(_ context.Context, id uuid.UUID) error {
	delete(m.work.items, id)
	return nil
}

func (m *memTx) DeleteItems(_ context.Context, id uuid.UUID) error {
	for k, it := range m.work.items {
		if it.TransactionID == id {
			delete(m.work.items, k)
		}
	}

	return nil
}

func (m *memTx) AppendSystemMessage(_ context.Context, id uuid.UUID, body string) error {
	m.work.messages[id] = append(m.work.messages[id], body)
	return nil
}

// memInventory maps owned cards to listings; prices may change at any time.
type memInventory struct {
	mu       sync.Mutex
	listings map[uuid.UUID]inventory.Listing
}

func newMemInventory() *memInventory {
	return &memInventory{listings: map[uuid.UUID]inventory.Listing{}}
}

func (m *memInventory) list(seller uuid.UUID, price int64) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	m.listings[id] = inventory.Listing{
		OwnedCardID: id,
		SellerID:    seller,
		Price:       price,
		Condition:   inventory.ConditionNearMint,
	}

	return id
}

func (m *memInventory) setPrice(id uuid.UUID, price int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.listings[id]
	l.Price = price
	m.listings[id] = l
}

func (m *memInventory) Lookup(_ context.Context, id uuid.UUID) (*inventory.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.listings[id]
	if !ok {
		return nil, inventory.ErrNotFound
	}

	return &l, nil
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []transaction.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev transaction.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, ev)

	return nil
}

func (p *recordingPublisher) types() []transaction.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]transaction.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}

	return out
}
