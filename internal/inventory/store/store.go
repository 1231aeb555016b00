package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/inventory"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectOwnedCardColumns = `
	id, card_id, user_id, quantity, condition, foil, language, sale_price, created_at, updated_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanOwnedCard(s scanner, extra ...any) (*inventory.OwnedCard, error) {
	var c inventory.OwnedCard

	var condition string

	var price sql.NullInt64

	dest := []any{
		&c.ID, &c.CardID, &c.UserID, &c.Quantity, &condition, &c.Foil, &c.Language, &price,
		&c.CreatedAt, &c.UpdatedAt,
	}

	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	c.Condition = inventory.Condition(condition)

	if price.Valid {
		c.SalePrice = &price.Int64
	}

	return &c, nil
}

func (s *Store) GetOwnedCard(ctx context.Context, id uuid.UUID) (*inventory.OwnedCard, error) {
	query := `SELECT ` + selectOwnedCardColumns + ` FROM owned_cards WHERE id = $1`

	card, err := scanOwnedCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrNotFound
		}

		return nil, fmt.Errorf("getting owned card: %w", err)
	}

	return card, nil
}

// AddCopies is a single upsert so concurrent imports of the same variant
// never lose an increment. xmax is zero only for a freshly inserted row.
func (s *Store) AddCopies(ctx context.Context, p inventory.AddParams) (*inventory.OwnedCard, bool, error) {
	query := `
		INSERT INTO owned_cards (card_id, user_id, quantity, condition, foil, language, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT ON CONSTRAINT owned_cards_variant_key
		DO UPDATE SET quantity = owned_cards.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING ` + selectOwnedCardColumns + `, (xmax = 0) AS inserted
	`

	var inserted bool

	card, err := scanOwnedCard(s.db.QueryRowContext(ctx, query,
		p.CardID,
		p.UserID,
		p.Quantity,
		p.Condition,
		p.Foil,
		p.Language,
	), &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("adding copies: %w", err)
	}

	return card, inserted, nil
}

func (s *Store) SetSalePrice(ctx context.Context, id, userID uuid.UUID, price *int64) error {
	query := `
		UPDATE owned_cards
		SET sale_price = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`

	res, err := s.db.ExecContext(ctx, query, price, id, userID)
	if err != nil {
		return fmt.Errorf("setting sale price: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting sale price: %w", err)
	}

	if n == 0 {
		return inventory.ErrNotFound
	}

	return nil
}
