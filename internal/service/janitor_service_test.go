package service

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/noah-isme/gw-dashboard-api/internal/repository"
	"github.com/noah-isme/gw-dashboard-api/pkg/jobs"
)

type countingPurger struct{ calls int32 }

func (p *countingPurger) PurgeExpired(context.Context) int {
	atomic.AddInt32(&p.calls, 1)
	return 0
}

type countingCleaner struct{ calls int32 }

func (c *countingCleaner) Cleanup(context.Context) (int, error) {
	atomic.AddInt32(&c.calls, 1)
	return 0, nil
}

type countingSweeper struct{ calls int32 }

func (c *countingSweeper) Sweep(context.Context) int {
	atomic.AddInt32(&c.calls, 1)
	return 0
}

func TestJanitorSchedulesSweeps(t *testing.T) {
	defer goleak.VerifyNone(t)

	purger := &countingPurger{}
	cleaner := &countingCleaner{}
	sweeper := &countingSweeper{}
	mux := jobs.NewMux()
	queue := jobs.NewQueue("maintenance", mux.Dispatch, jobs.QueueConfig{Workers: 1})
	janitor := NewJanitorService(purger, cleaner, sweeper, queue, JanitorConfig{
		SessionInterval: 5 * time.Millisecond,
		ExportInterval:  5 * time.Millisecond,
		CacheInterval:   5 * time.Millisecond,
	}, zap.NewNop())
	janitor.Register(mux)

	ctx, cancel := context.WithCancel(context.Background())
	queue.Start(ctx)
	janitor.Start(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&purger.calls) > 0 &&
			atomic.LoadInt32(&cleaner.calls) > 0 &&
			atomic.LoadInt32(&sweeper.calls) > 0
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	janitor.Wait()
	queue.Stop()
}

func TestJanitorDisabledIntervals(t *testing.T) {
	defer goleak.VerifyNone(t)

	janitor := NewJanitorService(nil, nil, nil, &recordingQueue{}, JanitorConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	janitor.Start(ctx)
	cancel()
	janitor.Wait()

	mux := jobs.NewMux()
	janitor.Register(mux)
	require.NoError(t, mux.Dispatch(context.Background(), jobs.Job{Type: JobTypeSessionCleanup}))
	require.NoError(t, mux.Dispatch(context.Background(), jobs.Job{Type: JobTypeExportCleanup}))
	require.NoError(t, mux.Dispatch(context.Background(), jobs.Job{Type: JobTypeCacheSweep}))
}

func TestJanitorSweepsMemoryCache(t *testing.T) {
	repo := repository.NewMemoryCacheRepository()
	cache := NewCacheService(repo, nil, "gw", time.Minute, zap.NewNop(), true)
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		require.NoError(t, cache.Set(ctx, cache.Key("parse", strconv.Itoa(i)), i, time.Millisecond))
	}
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cache.Set(ctx, cache.Key("parse", "fresh"), 1, time.Hour))

	mux := jobs.NewMux()
	NewJanitorService(nil, nil, cache, &recordingQueue{}, JanitorConfig{}, nil).Register(mux)
	require.NoError(t, mux.Dispatch(ctx, jobs.Job{Type: JobTypeCacheSweep}))
	require.Equal(t, 1, repo.Len())
}
