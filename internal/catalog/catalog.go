package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrCardNotFound = errors.New("card not found")

// Card is a printing of a card in a specific set.
type Card struct {
	ID      uuid.UUID
	Name    string
	SetCode string
}

//go:generate mockgen -source=catalog.go -destination=repository_mock.go -package=catalog
type Repository interface {
	// FindCard matches name and set code case-insensitively.
	FindCard(ctx context.Context, name, setCode string) (*Card, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve finds the catalog card for an import line. Surrounding whitespace is
// ignored; an empty name or set never matches.
func (s *Service) Resolve(ctx context.Context, name, setCode string) (*Card, error) {
	name = strings.TrimSpace(name)
	setCode = strings.TrimSpace(setCode)

	if name == "" || setCode == "" {
		return nil, ErrCardNotFound
	}

	return s.repo.FindCard(ctx, name, setCode)
}
