package respond_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/binder/internal/catalog"
	"github.com/MrJamesThe3rd/binder/internal/http/respond"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: gone", transaction.ErrNotFound), http.StatusNotFound},
		{catalog.ErrCardNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: already accepted", transaction.ErrInvalidState), http.StatusConflict},
		{transaction.ErrTransactionLocked, http.StatusConflict},
		{transaction.ErrEmptyCart, http.StatusUnprocessableEntity},
		{transaction.ErrSelfTrade, http.StatusUnprocessableEntity},
		{transaction.ErrValidation, http.StatusUnprocessableEntity},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, respond.Status(tt.err), tt.err.Error())
	}
}

func TestError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error\n", rec.Body.String())
}
