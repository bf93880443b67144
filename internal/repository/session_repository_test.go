package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gw-dashboard-api/internal/models"
)

func TestSessionRepositoryLifecycle(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Session{ID: "s1", Screen: models.ScreenStudentIssues}))
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "s2", Screen: models.ScreenTeacherIssues}))
	require.Equal(t, 2, repo.Count())

	clock = clock.Add(45 * time.Second)
	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, clock.Add(time.Minute), got.ExpiresAt)

	clock = clock.Add(30 * time.Second)
	_, err = repo.Get(ctx, "s2")
	require.ErrorIs(t, err, ErrSessionExpired)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.Equal(t, 1, repo.DeleteExpired(ctx))
	require.Equal(t, 1, repo.Count())
	_, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
}

func TestSessionRepositoryRejectsMissingID(t *testing.T) {
	repo := NewSessionRepository(0)
	require.Error(t, repo.Create(context.Background(), &models.Session{}))
}

func TestSessionRepositoryGetReturnsSnapshot(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	created := &models.Session{ID: "s1", Screen: models.ScreenStudentIssues}
	require.NoError(t, repo.Create(ctx, created))

	first, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	clock = clock.Add(30 * time.Second)
	second, err := repo.Get(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, created.CreatedAt.Add(time.Minute), first.ExpiresAt)
	assert.Equal(t, clock.Add(time.Minute), second.ExpiresAt)
	assert.Equal(t, created.CreatedAt.Add(time.Minute), created.ExpiresAt)
}

func TestSessionRepositoryConcurrentGet(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "s1", Screen: models.ScreenStudentIssues}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s, err := repo.Get(ctx, "s1")
				if !assert.NoError(t, err) {
					return
				}
				assert.False(t, s.ExpiresAt.Before(s.LastAccess))
			}
		}()
	}
	wg.Wait()
}
