package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/profile"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	var name string

	err := s.db.QueryRowContext(ctx, `SELECT display_name FROM profiles WHERE id = $1`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", profile.ErrNotFound
		}

		return "", fmt.Errorf("getting display name: %w", err)
	}

	return name, nil
}
