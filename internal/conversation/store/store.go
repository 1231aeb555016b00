package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/conversation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Open(ctx context.Context, transactionID uuid.UUID) (*conversation.Conversation, error) {
	query := `
		INSERT INTO conversations (transaction_id, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (transaction_id) DO UPDATE SET transaction_id = EXCLUDED.transaction_id
		RETURNING id, transaction_id, created_at
	`

	var c conversation.Conversation

	err := s.db.QueryRowContext(ctx, query, transactionID).Scan(&c.ID, &c.TransactionID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("opening conversation: %w", err)
	}

	return &c, nil
}

func (s *Store) AddMessage(ctx context.Context, msg *conversation.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, body, system, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, msg.ConversationID, msg.SenderID, msg.Body, msg.System).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("adding message: %w", err)
	}

	return nil
}

func (s *Store) Messages(ctx context.Context, transactionID uuid.UUID) ([]*conversation.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.body, m.system, m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.transaction_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []*conversation.Message

	for rows.Next() {
		var (
			m      conversation.Message
			sender uuid.NullUUID
		)

		if err := rows.Scan(&m.ID, &m.ConversationID, &sender, &m.Body, &m.System, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		if sender.Valid {
			m.SenderID = &sender.UUID
		}

		msgs = append(msgs, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return msgs, nil
}
