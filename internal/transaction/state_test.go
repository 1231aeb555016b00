package transaction_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

func TestStateOf(t *testing.T) {
	s, err := transaction.StateOf(transaction.StatusOpen)
	require.NoError(t, err)
	assert.IsType(t, transaction.CartState{}, s)

	for _, st := range []transaction.Status{
		transaction.StatusPending,
		transaction.StatusAccepted,
		transaction.StatusCompleted,
		transaction.StatusCancelled,
	} {
		s, err := transaction.StateOf(st)
		require.NoError(t, err)

		order, ok := s.(transaction.OrderState)
		require.True(t, ok, st)
		assert.Equal(t, st, order.Status())
		assert.NotEqual(t, order.Locked(), order.Terminal(), st)
	}

	_, err = transaction.StateOf("shipped")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	tr := func(s transaction.Status) *transaction.Transaction {
		return &transaction.Transaction{BuyerID: buyerID, SellerID: sellerID, Status: s}
	}

	tests := []struct {
		name    string
		t       *transaction.Transaction
		caller  uuid.UUID
		action  transaction.Action
		wantErr error
		wantMsg string
	}{
		{name: "BuyerSubmitsOpen", t: tr(transaction.StatusOpen), caller: buyerID, action: transaction.ActionSubmit},
		{name: "SellerAcceptsPending", t: tr(transaction.StatusPending), caller: sellerID, action: transaction.ActionAccept},
		{name: "BuyerCompletesAccepted", t: tr(transaction.StatusAccepted), caller: buyerID, action: transaction.ActionComplete},
		{name: "BuyerCancelsAccepted", t: tr(transaction.StatusAccepted), caller: buyerID, action: transaction.ActionCancel},
		{name: "BuyerClearsPending", t: tr(transaction.StatusPending), caller: buyerID, action: transaction.ActionClear},
		{
			name: "BuyerCannotAccept", t: tr(transaction.StatusPending), caller: buyerID,
			action: transaction.ActionAccept, wantErr: transaction.ErrNotFound,
		},
		{
			name: "StrangerCannotSubmit", t: tr(transaction.StatusOpen), caller: uuid.New(),
			action: transaction.ActionSubmit, wantErr: transaction.ErrNotFound,
		},
		{
			name: "AcceptTwice", t: tr(transaction.StatusAccepted), caller: sellerID,
			action: transaction.ActionAccept, wantErr: transaction.ErrInvalidState, wantMsg: "already accepted",
		},
		{
			name: "CompletePending", t: tr(transaction.StatusPending), caller: buyerID,
			action: transaction.ActionComplete, wantErr: transaction.ErrInvalidState,
			wantMsg: "cannot complete a transaction that is pending",
		},
		{
			name: "CancelOpen", t: tr(transaction.StatusOpen), caller: buyerID,
			action: transaction.ActionCancel, wantErr: transaction.ErrInvalidState,
		},
		{
			name: "ClearAccepted", t: tr(transaction.StatusAccepted), caller: buyerID,
			action: transaction.ActionClear, wantErr: transaction.ErrTransactionLocked,
		},
		{
			name: "ClearCancelled", t: tr(transaction.StatusCancelled), caller: buyerID,
			action: transaction.ActionClear, wantErr: transaction.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := transaction.Check(tt.t, tt.caller, tt.action)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)

			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestActionTarget(t *testing.T) {
	assert.Equal(t, transaction.StatusPending, transaction.ActionSubmit.Target())
	assert.Equal(t, transaction.StatusAccepted, transaction.ActionAccept.Target())
	assert.Equal(t, transaction.StatusCompleted, transaction.ActionComplete.Target())
	assert.Equal(t, transaction.StatusCancelled, transaction.ActionCancel.Target())
	assert.Equal(t, transaction.StatusCancelled, transaction.ActionClear.Target())
}
