package profile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/binder/internal/profile"
)

func TestService_DisplayName(t *testing.T) {
	id := uuid.New()
	ttl := 10 * time.Minute

	type testCase struct {
		name      string
		setupMock func(repo *profile.MockRepository, cache *profile.MockCache)
		want      string
		wantErr   error
	}

	tests := []testCase{
		{
			name: "CacheHit",
			setupMock: func(_ *profile.MockRepository, cache *profile.MockCache) {
				cache.EXPECT().Get(gomock.Any(), id).Return("Jace", nil)
			},
			want: "Jace",
		},
		{
			name: "CacheMissFillsCache",
			setupMock: func(repo *profile.MockRepository, cache *profile.MockCache) {
				cache.EXPECT().Get(gomock.Any(), id).Return("", profile.ErrCacheMiss)
				repo.EXPECT().DisplayName(gomock.Any(), id).Return("Chandra", nil)
				cache.EXPECT().Set(gomock.Any(), id, "Chandra", ttl).Return(nil)
			},
			want: "Chandra",
		},
		{
			name: "CacheDownFallsBack",
			setupMock: func(repo *profile.MockRepository, cache *profile.MockCache) {
				cache.EXPECT().Get(gomock.Any(), id).Return("", errors.New("connection refused"))
				repo.EXPECT().DisplayName(gomock.Any(), id).Return("Liliana", nil)
				cache.EXPECT().Set(gomock.Any(), id, "Liliana", ttl).Return(errors.New("connection refused"))
			},
			want: "Liliana",
		},
		{
			name: "NoProfile",
			setupMock: func(repo *profile.MockRepository, cache *profile.MockCache) {
				cache.EXPECT().Get(gomock.Any(), id).Return("", profile.ErrCacheMiss)
				repo.EXPECT().DisplayName(gomock.Any(), id).Return("", profile.ErrNotFound)
			},
			wantErr: profile.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := profile.NewMockRepository(ctrl)
			cache := profile.NewMockCache(ctrl)
			tt.setupMock(repo, cache)

			got, err := profile.NewService(repo, cache, ttl).DisplayName(context.Background(), id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_DisplayNames_WithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := profile.NewMockRepository(ctrl)

	known, unknown := uuid.New(), uuid.New()
	repo.EXPECT().DisplayName(gomock.Any(), known).Return("Nissa", nil)
	repo.EXPECT().DisplayName(gomock.Any(), unknown).Return("", profile.ErrNotFound)

	got, err := profile.NewService(repo, nil, 0).DisplayNames(context.Background(), []uuid.UUID{known, unknown, known})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{known: "Nissa", unknown: profile.UnknownName}, got)
}
