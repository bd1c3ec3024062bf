package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the daily background jobs. Only one exists today: the
// quote-of-the-day refresh at midnight UTC.
type Scheduler struct {
	cron        *cron.Cron
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *zap.SugaredLogger
	refreshFunc func(ctx context.Context) error
}

func New(logger *zap.SugaredLogger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// SetQuoteRefresh sets the function invoked for the daily quote refresh.
func (s *Scheduler) SetQuoteRefresh(f func(ctx context.Context) error) {
	s.refreshFunc = f
}

func (s *Scheduler) Start() error {
	if s.refreshFunc == nil {
		s.logger.Warnw("quote refresh function not set, scheduler idle")
		return nil
	}

	// Midnight UTC, when the quote API rolls over to a new quote.
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		if err := s.refreshFunc(s.ctx); err != nil {
			s.logger.Warnw("daily quote refresh failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infow("scheduler started, quote refresh at 00:00 UTC")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Infow("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
