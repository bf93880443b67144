package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gw-dashboard-api/pkg/jobs"
)

// Maintenance job types handled by the janitor.
const (
	JobTypeSessionCleanup = "session_cleanup"
	JobTypeExportCleanup  = "export_cleanup"
	JobTypeCacheSweep     = "cache_sweep"
)

type sessionPurger interface {
	PurgeExpired(ctx context.Context) int
}

type exportCleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

type cacheSweeper interface {
	Sweep(ctx context.Context) int
}

// JanitorConfig sets how often each sweep is queued. Non-positive disables it.
type JanitorConfig struct {
	SessionInterval time.Duration
	ExportInterval  time.Duration
	CacheInterval   time.Duration
}

// JanitorService schedules periodic purges of idle sessions, stale exports and
// expired parse-cache entries onto the shared job queue.
type JanitorService struct {
	sessions sessionPurger
	exports  exportCleaner
	caches   cacheSweeper
	queue    jobDispatcher
	cfg      JanitorConfig
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewJanitorService constructs the janitor. Any purger may be nil.
func NewJanitorService(sessions sessionPurger, exports exportCleaner, caches cacheSweeper, queue jobDispatcher, cfg JanitorConfig, logger *zap.Logger) *JanitorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JanitorService{sessions: sessions, exports: exports, caches: caches, queue: queue, cfg: cfg, logger: logger}
}

// Register installs the sweep handlers on mux.
func (s *JanitorService) Register(mux *jobs.Mux) {
	mux.Handle(JobTypeSessionCleanup, func(ctx context.Context, _ jobs.Job) error {
		if s.sessions != nil {
			s.sessions.PurgeExpired(ctx)
		}
		return nil
	})
	mux.Handle(JobTypeExportCleanup, func(ctx context.Context, _ jobs.Job) error {
		if s.exports == nil {
			return nil
		}
		_, err := s.exports.Cleanup(ctx)
		return err
	})
	mux.Handle(JobTypeCacheSweep, func(ctx context.Context, _ jobs.Job) error {
		if s.caches != nil {
			s.caches.Sweep(ctx)
		}
		return nil
	})
}

// Start launches one ticker per enabled sweep until ctx is cancelled.
func (s *JanitorService) Start(ctx context.Context) {
	s.schedule(ctx, JobTypeSessionCleanup, s.cfg.SessionInterval)
	s.schedule(ctx, JobTypeExportCleanup, s.cfg.ExportInterval)
	s.schedule(ctx, JobTypeCacheSweep, s.cfg.CacheInterval)
}

// Wait blocks until every ticker goroutine has exited.
func (s *JanitorService) Wait() {
	s.wg.Wait()
}

func (s *JanitorService) schedule(ctx context.Context, jobType string, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobType}); err != nil {
					s.logger.Sugar().Warnw("maintenance enqueue failed", "type", jobType, "error", err)
				}
			}
		}
	}()
}
