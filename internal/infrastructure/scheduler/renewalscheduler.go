// Package scheduler runs the background renewal loop.
package scheduler

import (
	"context"
	"sync"
	"time"

	"subcycle/internal/application/subscription/usecases"
	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/infrastructure/cache"
	"subcycle/internal/shared/biztime"
	sharedConfig "subcycle/internal/shared/config"
	"subcycle/internal/shared/logger"
)

// RenewalScheduler periodically scans for subscriptions whose next payment
// is due and runs one renewal cycle for each, guarded by the distributed
// lock so multiple workers never double-charge.
type RenewalScheduler struct {
	repo           subscription.Repository
	processRenewal *usecases.ProcessRenewalUseCase
	lock           *cache.RenewalLock
	interval       time.Duration
	batchSize      int
	logger         logger.Interface

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func NewRenewalScheduler(
	repo subscription.Repository,
	processRenewal *usecases.ProcessRenewalUseCase,
	lock *cache.RenewalLock,
	cfg *sharedConfig.SchedulerConfig,
	log logger.Interface,
) *RenewalScheduler {
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	return &RenewalScheduler{
		repo:           repo,
		processRenewal: processRenewal,
		lock:           lock,
		interval:       interval,
		batchSize:      batchSize,
		logger:         log.Named("renewal-scheduler"),
		stopCh:         make(chan struct{}),
	}
}

// Start launches the scan loop. Returns immediately.
func (s *RenewalScheduler) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Infow("renewal scheduler started",
		"interval", s.interval, "batch_size", s.batchSize)
}

// Stop halts the loop and waits for the in-flight pass to finish.
func (s *RenewalScheduler) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
	s.logger.Infow("renewal scheduler stopped")
}

func (s *RenewalScheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.processDue(context.Background())
		}
	}
}

// processDue runs one scan pass.
func (s *RenewalScheduler) processDue(ctx context.Context) {
	now := biztime.NowUTC()

	ids, err := s.repo.ListDueForRenewal(ctx, now, s.batchSize)
	if err != nil {
		s.logger.Errorw("failed to list due subscriptions", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	s.logger.Infow("processing due renewals", "count", len(ids))

	for _, id := range ids {
		select {
		case <-s.stopCh:
			return
		default:
		}
		s.processOne(ctx, id)
	}
}

func (s *RenewalScheduler) processOne(ctx context.Context, id uint) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Errorw("failed to load due subscription", "subscription_id", id, "error", err)
		return
	}

	scheduledFor := sub.Date(vo.DateNextPayment)
	if scheduledFor.IsZero() {
		return
	}

	acquired, err := s.lock.Acquire(ctx, id, scheduledFor)
	if err != nil {
		s.logger.Errorw("failed to acquire renewal lock", "subscription_id", id, "error", err)
		return
	}
	if !acquired {
		return
	}

	if err := s.processRenewal.Execute(ctx, usecases.ProcessRenewalCommand{SubscriptionID: id}); err != nil {
		s.logger.Errorw("renewal processing failed", "subscription_id", id, "error", err)
		// The lock is kept until TTL so a hot failure does not retry in a
		// tight loop.
		return
	}

	if err := s.lock.Release(ctx, id, scheduledFor); err != nil {
		s.logger.Warnw("failed to release renewal lock", "subscription_id", id, "error", err)
	}
}
