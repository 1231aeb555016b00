package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/binder/internal/catalog"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindCard(ctx context.Context, name, setCode string) (*catalog.Card, error) {
	query := `
		SELECT id, name, set_code
		FROM cards
		WHERE LOWER(name) = LOWER($1) AND LOWER(set_code) = LOWER($2)
		LIMIT 1
	`

	var c catalog.Card

	err := s.db.QueryRowContext(ctx, query, name, setCode).Scan(&c.ID, &c.Name, &c.SetCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrCardNotFound
		}

		return nil, fmt.Errorf("finding card: %w", err)
	}

	return &c, nil
}
