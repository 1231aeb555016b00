package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/conversation"
	"github.com/MrJamesThe3rd/binder/internal/money"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

type itemResponse struct {
	ID          uuid.UUID `json:"id"`
	UserCardID  uuid.UUID `json:"user_card_id"`
	Quantity    int       `json:"quantity"`
	AgreedPrice string    `json:"agreed_price"`
	Condition   string    `json:"condition"`
}

type transactionResponse struct {
	ID                 uuid.UUID          `json:"id"`
	BuyerID            uuid.UUID          `json:"buyer_id"`
	SellerID           uuid.UUID          `json:"seller_id"`
	Status             transaction.Status `json:"status"`
	TotalAmount        *string            `json:"total_amount,omitempty"`
	CancelledBy        *uuid.UUID         `json:"cancelled_by,omitempty"`
	CancellationReason *string            `json:"cancellation_reason,omitempty"`
	Items              []itemResponse     `json:"items"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// cartResponse is one seller's basket in the buyer's cart view.
type cartResponse struct {
	transactionResponse
	SellerName string `json:"seller_name"`
	Subtotal   string `json:"subtotal"`
}

type messageResponse struct {
	ID        uuid.UUID  `json:"id"`
	SenderID  *uuid.UUID `json:"sender_id,omitempty"`
	Body      string     `json:"body"`
	System    bool       `json:"system"`
	CreatedAt time.Time  `json:"created_at"`
}

func toResponse(t *transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:                 t.ID,
		BuyerID:            t.BuyerID,
		SellerID:           t.SellerID,
		Status:             t.Status,
		CancelledBy:        t.CancelledBy,
		CancellationReason: t.CancellationReason,
		Items:              make([]itemResponse, len(t.Items)),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}

	if t.TotalAmount != nil {
		total := money.Format(*t.TotalAmount)
		resp.TotalAmount = &total
	}

	for i, it := range t.Items {
		resp.Items[i] = itemResponse{
			ID:          it.ID,
			UserCardID:  it.UserCardID,
			Quantity:    it.Quantity,
			AgreedPrice: money.Format(it.AgreedPrice),
			Condition:   it.Condition,
		}
	}

	return resp
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, t := range txs {
		resp[i] = toResponse(t)
	}

	return resp
}

func toCartResponse(t *transaction.Transaction, sellerName string) cartResponse {
	lines := make([]money.Line, len(t.Items))
	for i, it := range t.Items {
		lines[i] = money.Line{Cents: it.AgreedPrice, Quantity: it.Quantity}
	}

	return cartResponse{
		transactionResponse: toResponse(t),
		SellerName:          sellerName,
		Subtotal:            money.Format(money.Sum(lines...)),
	}
}

func toMessageResponse(m *conversation.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		System:    m.System,
		CreatedAt: m.CreatedAt,
	}
}
