package transaction_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

type harness struct {
	repo   *memRepo
	inv    *memInventory
	events *recordingPublisher
	svc    *transaction.Service
	buyer  uuid.UUID
	seller uuid.UUID
}

func newHarness() *harness {
	h := &harness{
		repo:   newMemRepo(),
		inv:    newMemInventory(),
		events: &recordingPublisher{},
		buyer:  uuid.New(),
		seller: uuid.New(),
	}
	h.svc = transaction.NewService(h.repo, h.inv, h.events)

	return h
}

func TestLifecycle_HappyPath(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	card := h.inv.list(h.seller, 1000)

	txID, err := h.svc.AddToCart(ctx, h.buyer, card)
	require.NoError(t, err)

	got, err := h.svc.Get(ctx, h.buyer, txID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusOpen, got.Status)
	assert.IsType(t, transaction.CartState{}, got.State())
	assert.Len(t, got.Items, 1)
	assert.Nil(t, got.TotalAmount)

	submitted, err := h.svc.Submit(ctx, h.buyer, txID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusPending, submitted.Status)
	require.NotNil(t, submitted.TotalAmount)
	assert.Equal(t, int64(1000), *submitted.TotalAmount)

	accepted, err := h.svc.Accept(ctx, h.seller, txID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusAccepted, accepted.Status)

	completed, err := h.svc.Complete(ctx, h.buyer, txID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusCompleted, completed.Status)

	assert.Equal(t, []transaction.EventType{
		transaction.EventCreated,
		transaction.EventItemAdded,
		transaction.EventSubmitted,
		transaction.EventAccepted,
		transaction.EventCompleted,
	}, h.events.types())
}

func TestLifecycle_AddWhilePendingIsLocked(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	first := h.inv.list(h.seller, 500)
	second := h.inv.list(h.seller, 700)

	txID, err := h.svc.AddToCart(ctx, h.buyer, first)
	require.NoError(t, err)

	_, err = h.svc.Submit(ctx, h.buyer, txID)
	require.NoError(t, err)

	_, err = h.svc.AddToCart(ctx, h.buyer, second)
	assert.ErrorIs(t, err, transaction.ErrTransactionLocked)
}

func TestLifecycle_SellerCannotSubmit(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	txID, err := h.svc.AddToCart(ctx, h.buyer, h.inv.list(h.seller, 500))
	require.NoError(t, err)

	_, err = h.svc.Submit(ctx, h.seller, txID)
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	_, err = h.svc.Submit(ctx, uuid.New(), txID)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestLifecycle_CancelAccepted(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	txID, err := h.svc.AddToCart(ctx, h.buyer, h.inv.list(h.seller, 500))
	require.NoError(t, err)
	_, err = h.svc.Submit(ctx, h.buyer, txID)
	require.NoError(t, err)
	_, err = h.svc.Accept(ctx, h.seller, txID)
	require.NoError(t, err)

	_, err = h.svc.Cancel(ctx, h.buyer, txID, "")
	assert.ErrorIs(t, err, transaction.ErrValidation)

	_, err = h.svc.Cancel(ctx, h.buyer, txID, strings.Repeat("x", transaction.MaxReasonLength+1))
	assert.ErrorIs(t, err, transaction.ErrValidation)

	cancelled, err := h.svc.Cancel(ctx, h.buyer, txID, "found a better deal")
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "found a better deal", *cancelled.CancellationReason)
	assert.Equal(t, &h.buyer, cancelled.CancelledBy)

	msgs := h.repo.messagesFor(txID)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "found a better deal")
}

func TestLifecycle_TransitionsNeverMoveBackward(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	txID, err := h.svc.AddToCart(ctx, h.buyer, h.inv.list(h.seller, 500))
	require.NoError(t, err)
	_, err = h.svc.Submit(ctx, h.buyer, txID)
	require.NoError(t, err)
	_, err = h.svc.Accept(ctx, h.seller, txID)
	require.NoError(t, err)

	_, err = h.svc.Submit(ctx, h.buyer, txID)
	assert.ErrorIs(t, err, transaction.ErrInvalidState)

	_, err = h.svc.Accept(ctx, h.seller, txID)
	assert.ErrorIs(t, err, transaction.ErrInvalidState)
	assert.Contains(t, err.Error(), "already accepted")

	err = h.svc.ClearCart(ctx, h.buyer, txID)
	assert.ErrorIs(t, err, transaction.ErrTransactionLocked)

	err = h.svc.RemoveFromCart(ctx, h.buyer, uuid.New())
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	got, err := h.svc.Get(ctx, h.buyer, txID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusAccepted, got.Status)
}

func TestLifecycle_AddTwiceKeepsOneItem(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	card := h.inv.list(h.seller, 500)

	first, err := h.svc.AddToCart(ctx, h.buyer, card)
	require.NoError(t, err)

	second, err := h.svc.AddToCart(ctx, h.buyer, card)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, h.repo.itemCount(first))
}

func TestLifecycle_SelfTrade(t *testing.T) {
	h := newHarness()

	_, err := h.svc.AddToCart(context.Background(), h.seller, h.inv.list(h.seller, 500))
	assert.ErrorIs(t, err, transaction.ErrSelfTrade)
}

func TestLifecycle_RemoveLastItemDeletesTransaction(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	card := h.inv.list(h.seller, 500)

	txID, err := h.svc.AddToCart(ctx, h.buyer, card)
	require.NoError(t, err)

	require.NoError(t, h.svc.RemoveFromCart(ctx, h.buyer, card))

	_, err = h.svc.Get(ctx, h.buyer, txID)
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	err = h.svc.RemoveFromCart(ctx, h.buyer, card)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestLifecycle_RemoveFromPendingRetotals(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	cheap := h.inv.list(h.seller, 300)
	dear := h.inv.list(h.seller, 900)

	txID, err := h.svc.AddToCart(ctx, h.buyer, cheap)
	require.NoError(t, err)
	_, err = h.svc.AddToCart(ctx, h.buyer, dear)
	require.NoError(t, err)

	submitted, err := h.svc.Submit(ctx, h.buyer, txID)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), *submitted.TotalAmount)

	require.NoError(t, h.svc.RemoveFromCart(ctx, h.buyer, dear))

	got, err := h.svc.Get(ctx, h.buyer, txID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusPending, got.Status)
	assert.Equal(t, int64(300), *got.TotalAmount)
	assert.Len(t, got.Items, 1)
}

func TestLifecycle_ClearCart(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	txID, err := h.svc.AddToCart(ctx, h.buyer, h.inv.list(h.seller, 300))
	require.NoError(t, err)
	_, err = h.svc.AddToCart(ctx, h.buyer, h.inv.list(h.seller, 400))
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.ClearCart(ctx, h.seller, txID), transaction.ErrNotFound)

	require.NoError(t, h.svc.ClearCart(ctx, h.buyer, txID))
	assert.Equal(t, 0, h.repo.itemCount(txID))

	got, err := h.svc.Get(ctx, h.buyer, txID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusCancelled, got.Status)
	assert.Equal(t, transaction.ClearReason, *got.CancellationReason)

	assert.ErrorIs(t, h.svc.ClearCart(ctx, h.buyer, txID), transaction.ErrInvalidState)

	// A fresh cart can be opened with the same seller afterwards.
	next, err := h.svc.AddToCart(ctx, h.buyer, h.inv.list(h.seller, 100))
	require.NoError(t, err)
	assert.NotEqual(t, txID, next)
}

func TestLifecycle_SubmitEmptyCart(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	card := h.inv.list(h.seller, 300)
	other := h.inv.list(h.seller, 400)

	txID, err := h.svc.AddToCart(ctx, h.buyer, card)
	require.NoError(t, err)
	_, err = h.svc.AddToCart(ctx, h.buyer, other)
	require.NoError(t, err)

	// Strip the items directly so the open transaction survives empty.
	tx, err := h.repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.DeleteItems(ctx, txID))
	require.NoError(t, tx.Commit())

	_, err = h.svc.Submit(ctx, h.buyer, txID)
	assert.ErrorIs(t, err, transaction.ErrEmptyCart)
}

func TestLifecycle_PriceIsFrozenAtAdd(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	card := h.inv.list(h.seller, 1000)

	txID, err := h.svc.AddToCart(ctx, h.buyer, card)
	require.NoError(t, err)

	h.inv.setPrice(card, 2500)

	submitted, err := h.svc.Submit(ctx, h.buyer, txID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), *submitted.TotalAmount)

	got, err := h.svc.Get(ctx, h.buyer, txID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Items[0].AgreedPrice)
}

func TestLifecycle_ConcurrentAddsShareOneCart(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	cards := make([]uuid.UUID, 20)
	for i := range cards {
		cards[i] = h.inv.list(h.seller, int64(100*(i+1)))
	}

	var wg sync.WaitGroup

	ids := make([]uuid.UUID, len(cards)*2)
	for i := range ids {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			id, err := h.svc.AddToCart(ctx, h.buyer, cards[i%len(cards)])
			assert.NoError(t, err)

			ids[i] = id
		}(i)
	}

	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	assert.Equal(t, map[[2]uuid.UUID]int{{h.buyer, h.seller}: 1}, h.repo.activeCount())
	assert.Equal(t, len(cards), h.repo.itemCount(ids[0]))
}

func TestLifecycle_CartsAndStatus(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	otherSeller := uuid.New()

	inCart := h.inv.list(h.seller, 100)
	elsewhere := h.inv.list(otherSeller, 200)
	notAdded := h.inv.list(h.seller, 300)

	_, err := h.svc.AddToCart(ctx, h.buyer, inCart)
	require.NoError(t, err)
	_, err = h.svc.AddToCart(ctx, h.buyer, elsewhere)
	require.NoError(t, err)

	carts, err := h.svc.Carts(ctx, h.buyer)
	require.NoError(t, err)
	assert.Len(t, carts, 2)

	status, err := h.svc.CartStatus(ctx, h.buyer, []uuid.UUID{inCart, elsewhere, notAdded})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{inCart: true, elsewhere: true, notAdded: false}, status)

	sellerView, err := h.svc.CartStatus(ctx, h.seller, []uuid.UUID{inCart})
	require.NoError(t, err)
	assert.False(t, sellerView[inCart])
}
