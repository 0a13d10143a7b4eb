package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var log = logger.GetLogger()

//go:generate mockgen -destination=mocks/engine_mock.go -package=mocks github.com/cristianortiz/auctionlifecycle/internal/auction/scheduler Engine

// Engine is the part of the auction service the sweeper drives. The transition methods report
// whether they changed anything, so re-running them on a settled auction is harmless.
type Engine interface {
	ListDueToStart(ctx context.Context, now time.Time) ([]*domain.Auction, error)
	ListDueToEnd(ctx context.Context, now time.Time) ([]*domain.Auction, error)
	ListEndingSoon(ctx context.Context, now time.Time, lookahead time.Duration) ([]*domain.Auction, error)
	ActivateAuction(ctx context.Context, id uuid.UUID) (bool, error)
	FinalizeAuction(ctx context.Context, id uuid.UUID) (bool, error)
	NotifyEndingSoon(ctx context.Context, id uuid.UUID) (bool, error)
}

// ErrSweepInProgress is returned when a sweep is requested while the previous one still runs.
var ErrSweepInProgress = errors.New("sweep already in progress")

type Config struct {
	Interval           time.Duration
	EndingSoonInterval time.Duration
	Lookahead          time.Duration
	ItemTimeout        time.Duration
	Concurrency        int
}

func (c Config) normalized() Config {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}
	if c.EndingSoonInterval <= 0 {
		c.EndingSoonInterval = 30 * time.Minute
	}
	if c.Lookahead <= 0 {
		c.Lookahead = time.Hour
	}
	if c.ItemTimeout <= 0 {
		c.ItemTimeout = 3 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	return c
}

// SweepReport counts what one sweep did. Failed auctions are retried by the next sweep.
type SweepReport struct {
	Started  int `json:"started"`
	Ended    int `json:"ended"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}

// Scheduler runs the lifecycle sweep and the ending-soon sweep on their own intervals.
// Each sweep is guarded against running concurrently with itself.
type Scheduler struct {
	engine Engine
	clock  domain.Clock
	cfg    Config

	sweeping  atomic.Bool
	notifying atomic.Bool
}

func New(engine Engine, clock domain.Clock, cfg Config) *Scheduler {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Scheduler{engine: engine, clock: clock, cfg: cfg.normalized()}
}

// Run sweeps immediately, then on every tick, until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info("scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("endingSoonInterval", s.cfg.EndingSoonInterval),
		zap.Duration("lookahead", s.cfg.Lookahead),
	)

	var g errgroup.Group
	g.Go(func() error {
		s.loop(ctx, "lifecycle", s.cfg.Interval, s.SweepOnce)
		return nil
	})
	g.Go(func() error {
		s.loop(ctx, "ending_soon", s.cfg.EndingSoonInterval, s.SweepEndingSoon)
		return nil
	})
	_ = g.Wait()
	log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, sweep func(context.Context) (SweepReport, error)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	s.tick(ctx, name, sweep)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, name, sweep)
		}
	}
}

// tick runs one sweep and never lets it take the process down.
func (s *Scheduler) tick(ctx context.Context, name string, sweep func(context.Context) (SweepReport, error)) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("sweep panicked", zap.String("sweep", name), zap.Any("panic", r))
		}
	}()

	_, err := sweep(ctx)
	switch {
	case errors.Is(err, ErrSweepInProgress):
		log.Debug("sweep skipped, previous one still running", zap.String("sweep", name))
	case err != nil:
		log.Error("sweep failed", zap.String("sweep", name), zap.Error(err))
	}
}

// SweepOnce promotes due SCHEDULED auctions, then finalizes due ACTIVE ones. An auction whose whole
// window elapsed between sweeps is started and ended within the same sweep.
func (s *Scheduler) SweepOnce(ctx context.Context) (SweepReport, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return SweepReport{}, ErrSweepInProgress
	}
	defer s.sweeping.Store(false)

	now := s.clock.Now()
	var report SweepReport
	var errs []error

	if due, err := s.engine.ListDueToStart(ctx, now); err != nil {
		errs = append(errs, fmt.Errorf("list auctions due to start: %w", err))
	} else {
		done, failed := s.runBatch(ctx, "activate", due, s.engine.ActivateAuction)
		report.Started, report.Failed = report.Started+done, report.Failed+failed
	}

	if due, err := s.engine.ListDueToEnd(ctx, now); err != nil {
		errs = append(errs, fmt.Errorf("list auctions due to end: %w", err))
	} else {
		done, failed := s.runBatch(ctx, "finalize", due, s.engine.FinalizeAuction)
		report.Ended, report.Failed = report.Ended+done, report.Failed+failed
	}

	if report != (SweepReport{}) {
		log.Info("lifecycle sweep completed",
			zap.Int("started", report.Started),
			zap.Int("ended", report.Ended),
			zap.Int("failed", report.Failed),
		)
	}
	return report, errors.Join(errs...)
}

// SweepEndingSoon emits ending_soon for ACTIVE auctions ending within the lookahead.
func (s *Scheduler) SweepEndingSoon(ctx context.Context) (SweepReport, error) {
	if !s.notifying.CompareAndSwap(false, true) {
		return SweepReport{}, ErrSweepInProgress
	}
	defer s.notifying.Store(false)

	var report SweepReport
	soon, err := s.engine.ListEndingSoon(ctx, s.clock.Now(), s.cfg.Lookahead)
	if err != nil {
		return report, fmt.Errorf("list auctions ending soon: %w", err)
	}
	report.Notified, report.Failed = s.runBatch(ctx, "notify_ending_soon", soon, s.engine.NotifyEndingSoon)

	if report != (SweepReport{}) {
		log.Info("ending-soon sweep completed",
			zap.Int("notified", report.Notified),
			zap.Int("failed", report.Failed),
		)
	}
	return report, nil
}

// runBatch applies fn to every auction with bounded parallelism. Items fail independently, a
// failure is logged and counted but never stops the batch.
func (s *Scheduler) runBatch(ctx context.Context, phase string, auctions []*domain.Auction, fn func(context.Context, uuid.UUID) (bool, error)) (done, failed int) {
	var doneN, failedN atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for _, a := range auctions {
		id := a.ID
		g.Go(func() error {
			changed, err := s.process(ctx, id, fn)
			if err != nil {
				failedN.Add(1)
				log.Error("sweep item failed",
					zap.String("phase", phase),
					zap.String("auctionID", id.String()),
					zap.Error(err),
				)
				return nil
			}
			if changed {
				doneN.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(doneN.Load()), int(failedN.Load())
}

func (s *Scheduler) process(ctx context.Context, id uuid.UUID, fn func(context.Context, uuid.UUID) (bool, error)) (changed bool, err error) {
	itemCtx, cancel := context.WithTimeout(ctx, s.cfg.ItemTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(itemCtx, id)
}
