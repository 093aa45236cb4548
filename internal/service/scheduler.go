package service

import (
	"context"
	"sync"
	"time"

	"github.com/unclebandit/attestation-tracker/internal/logger"
)

// DefaultRefreshInterval is how often a dashboard re-pulls its records.
const DefaultRefreshInterval = 60 * time.Second

// Reloader is what the scheduler drives; DashboardService implements it.
type Reloader interface {
	Refresh(ctx context.Context) error
	Active() bool
	CampaignID() int64
}

// Scheduler runs a periodic refresh loop bound to one dashboard. Starting it
// for another dashboard tears the previous loop down first. The last
// refreshed time lives on the dashboard, which sees every reload.
type Scheduler struct {
	Interval time.Duration

	mu     sync.Mutex
	parent context.Context
	target Reloader
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Scheduler{Interval: interval}
}

// Start binds the loop to target for as long as ctx lives.
func (s *Scheduler) Start(ctx context.Context, target Reloader) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.parent = ctx
	s.target = target
	s.startLocked()
}

// Pause stops scheduled reloads. A reload already in flight finishes.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Resume starts a fresh loop for the current target. It is a no-op when the
// loop is already running, nothing was started, or the bound context ended.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil || s.target == nil || s.parent.Err() != nil {
		return
	}
	s.startLocked()
}

// Stop tears the loop down and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	done := s.done
	s.stopLocked()
	s.target = nil
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether a loop is live. A loop whose context ended is not.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// RefreshNow reloads immediately without touching the loop's ticker.
func (s *Scheduler) RefreshNow(ctx context.Context) error {
	s.mu.Lock()
	target := s.target
	s.mu.Unlock()
	if target == nil {
		return nil
	}
	return target.Refresh(ctx)
}

func (s *Scheduler) startLocked() {
	loopCtx, cancel := context.WithCancel(s.parent)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func(parent context.Context, target Reloader) {
		defer close(done)
		s.run(loopCtx, parent, target)

		// the loop may have ended on its own when parent was cancelled
		cancel()
		s.mu.Lock()
		if s.done == done {
			s.cancel = nil
			s.done = nil
		}
		s.mu.Unlock()
	}(s.parent, s.target)
}

func (s *Scheduler) stopLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = nil
	s.done = nil
}

// run ticks until loopCtx ends. Reloads use the parent context so pausing
// does not abort a request already on the wire.
func (s *Scheduler) run(loopCtx, parent context.Context, target Reloader) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
			if loopCtx.Err() != nil {
				return
			}
			if !target.Active() {
				continue
			}
			if err := target.Refresh(parent); err != nil {
				logger.WithField("campaign_id", target.CampaignID()).WithError(err).Debug("Scheduled refresh failed")
			}
		}
	}
}
