package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("owned card not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=inventory
type Repository interface {
	GetOwnedCard(ctx context.Context, id uuid.UUID) (*OwnedCard, error)
	// AddCopies inserts the variant or adds Quantity to the existing row in one
	// statement. inserted reports which of the two happened.
	AddCopies(ctx context.Context, params AddParams) (card *OwnedCard, inserted bool, err error)
	SetSalePrice(ctx context.Context, id, userID uuid.UUID, price *int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Lookup resolves an owned card to its seller, price and condition.
// Cards without a sale price are not for sale and report ErrNotFound.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*Listing, error) {
	card, err := s.repo.GetOwnedCard(ctx, id)
	if err != nil {
		return nil, err
	}

	if card.SalePrice == nil {
		return nil, fmt.Errorf("%w: %s is not for sale", ErrNotFound, id)
	}

	return &Listing{
		OwnedCardID: card.ID,
		SellerID:    card.UserID,
		Price:       *card.SalePrice,
		Condition:   card.Condition,
	}, nil
}

func (s *Service) AddCopies(ctx context.Context, params AddParams) (*OwnedCard, bool, error) {
	if params.Quantity <= 0 {
		return nil, false, ErrInvalidQuantity
	}

	return s.repo.AddCopies(ctx, params)
}

// SetPrice sets or clears the sale price of a card owned by userID.
// Items already in carts keep the price they were added at.
func (s *Service) SetPrice(ctx context.Context, userID, id uuid.UUID, price *int64) error {
	if price != nil && *price < 0 {
		return fmt.Errorf("negative price %d", *price)
	}

	return s.repo.SetSalePrice(ctx, id, userID, price)
}
