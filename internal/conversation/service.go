package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

var ErrInvalidMessage = errors.New("invalid message")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=conversation
type Repository interface {
	// Open returns the transaction's conversation, creating it on first use.
	Open(ctx context.Context, transactionID uuid.UUID) (*Conversation, error)
	AddMessage(ctx context.Context, msg *Message) error
	Messages(ctx context.Context, transactionID uuid.UUID) ([]*Message, error)
}

// Transactions authorises access: only the buyer and the seller see a thread.
type Transactions interface {
	Get(ctx context.Context, caller, id uuid.UUID) (*transaction.Transaction, error)
}

type Service struct {
	repo         Repository
	transactions Transactions
}

func NewService(repo Repository, transactions Transactions) *Service {
	return &Service{repo: repo, transactions: transactions}
}

func (s *Service) Open(ctx context.Context, caller, transactionID uuid.UUID) (*Conversation, error) {
	if _, err := s.transactions.Get(ctx, caller, transactionID); err != nil {
		return nil, err
	}

	return s.repo.Open(ctx, transactionID)
}

// Post appends a message from caller to the transaction's conversation.
func (s *Service) Post(ctx context.Context, caller, transactionID uuid.UUID, body string) (*Message, error) {
	body = strings.TrimSpace(body)

	if body == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidMessage)
	}

	if utf8.RuneCountInString(body) > MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidMessage, MaxMessageLength)
	}

	conv, err := s.Open(ctx, caller, transactionID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ConversationID: conv.ID,
		SenderID:       &caller,
		Body:           body,
	}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}

	slog.Info("message posted", "transaction_id", transactionID, "sender_id", caller)

	return msg, nil
}

// Messages lists the conversation oldest first. A transaction nobody has
// written about yet has no messages.
func (s *Service) Messages(ctx context.Context, caller, transactionID uuid.UUID) ([]*Message, error) {
	if _, err := s.transactions.Get(ctx, caller, transactionID); err != nil {
		return nil, err
	}

	return s.repo.Messages(ctx, transactionID)
}
