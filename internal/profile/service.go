package profile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("profile not found")
	ErrCacheMiss = errors.New("cache miss")
)

// UnknownName is shown for users without a profile row.
const UnknownName = "Unknown user"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=profile
type Repository interface {
	DisplayName(ctx context.Context, id uuid.UUID) (string, error)
}

// Cache stores display names by user id. Get reports ErrCacheMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (string, error)
	Set(ctx context.Context, id uuid.UUID, name string, ttl time.Duration) error
}

type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

// NewService reads through cache when it is non-nil.
func NewService(repo Repository, cache Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// DisplayName resolves a user's display name. Cache errors are logged and
// the database answers instead.
func (s *Service) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	if s.cache != nil {
		name, err := s.cache.Get(ctx, id)
		if err == nil {
			return name, nil
		}

		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("profile cache read failed", "user_id", id, "error", err)
		}
	}

	name, err := s.repo.DisplayName(ctx, id)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, id, name, s.ttl); err != nil {
			slog.Warn("profile cache write failed", "user_id", id, "error", err)
		}
	}

	return name, nil
}

// DisplayNames resolves several ids, falling back to UnknownName for users
// without a profile.
func (s *Service) DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))

	for _, id := range ids {
		if _, ok := names[id]; ok {
			continue
		}

		name, err := s.DisplayName(ctx, id)

		switch {
		case errors.Is(err, ErrNotFound):
			name = UnknownName
		case err != nil:
			return nil, err
		}

		names[id] = name
	}

	return names, nil
}
