package sweeper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/petpad-xyz/launchpad/internal/adapter"
	"github.com/petpad-xyz/launchpad/internal/domain"
	"github.com/petpad-xyz/launchpad/internal/logger"
	"github.com/petpad-xyz/launchpad/internal/store"
)

// staleFailureMessage is persisted on launches abandoned mid-deploy,
// typically after a process crash between the pending insert and the
// terminal write
const staleFailureMessage = "Deployment abandoned: no confirmation received"

const defaultBatchSize = 100

// StalePendingSweeperConfig holds configuration for the stale pending sweeper
type StalePendingSweeperConfig struct {
	Interval   time.Duration // Time between sweep cycles
	StaleAfter time.Duration // Pending launches older than this are failed
	BatchSize  int           // Launches to fail per cycle
}

// stalePendingSweeper marks launches stuck at pending as failed so
// their posts reach a terminal marker and listings stay truthful. The
// consumed symbol and post stay consumed, consistent with the
// no-retry policy for deploy failures.
type stalePendingSweeper struct {
	config    *StalePendingSweeperConfig
	store     store.Store
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewStalePendingSweeper creates a new stale pending launch sweeper
func NewStalePendingSweeper(config *StalePendingSweeperConfig, st store.Store, clock adapter.Clock) Sweeper {
	if config.BatchSize == 0 {
		config.BatchSize = defaultBatchSize
	}
	return &stalePendingSweeper{
		config:    config,
		store:     st,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *stalePendingSweeper) Name() string {
	return "stale-pending-sweeper"
}

// Start begins the sweeper's main loop
func (s *stalePendingSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting stale pending sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("stale_after", s.config.StaleAfter),
	)

	for {
		if err := s.runSweepCycle(ctx); err != nil {
			logger.ErrorCtx(ctx, err)
		}

		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Stale pending sweeper stopping due to context cancellation")
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Stale pending sweeper stop requested")
			return nil
		case <-s.clock.After(s.config.Interval):
		}
	}
}

// Stop gracefully stops the sweeper
func (s *stalePendingSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Stale pending sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Stale pending sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle fails every pending launch older than the cutoff
func (s *stalePendingSweeper) runSweepCycle(ctx context.Context) error {
	cutoff := s.clock.Now().UTC().Add(-s.config.StaleAfter)
	stale, err := s.store.ListStalePending(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list stale pending launches: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	logger.InfoCtx(ctx, "Failing stale pending launches", zap.Int("count", len(stale)))

	for _, launch := range stale {
		if err := s.store.MarkLaunchFailed(ctx, launch.ID, staleFailureMessage); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to fail stale launch: %w", err), zap.String("launch_id", launch.ID))
			continue
		}
		if err := s.store.MarkPostProcessed(ctx, launch.PostID, domain.PostStatusFailed, s.clock.Now().UTC()); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to mark post processed: %w", err), zap.String("post_id", launch.PostID))
		}

		logger.WarnCtx(ctx, "Marked stale launch failed",
			zap.String("launch_id", launch.ID),
			zap.String("symbol", launch.Symbol),
			zap.Time("created_at", launch.CreatedAt),
		)
	}

	return nil
}
