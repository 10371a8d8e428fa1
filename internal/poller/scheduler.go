package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dblive/internal/route"
)

// RouteStatus is one polled route as reported by Status.
type RouteStatus struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	Enabled         bool          `json:"enabled"`
	IntervalSeconds int           `json:"interval_seconds"`
	IntervalHours   float64       `json:"interval_hours"`
	RoutesCount     int           `json:"routes_count"`
	Routes          []RouteStatus `json:"routes"`
	Running         bool          `json:"running"`
}

// Scheduler runs poll cycles on a fixed delay: the next cycle starts one
// interval after the previous one finished, so cycles never pile up
// behind a slow upstream.
type Scheduler struct {
	runner   *Runner
	routes   []route.Descriptor
	interval time.Duration
	enabled  bool
	logger   *slog.Logger

	mu            sync.Mutex
	running       bool
	stopRequested bool
	stopCh        chan struct{}
	done          chan struct{}

	// cycleMu is held for the duration of a cycle. Scheduled ticks that
	// find it taken are skipped, never queued.
	cycleMu sync.Mutex
}

// NewScheduler returns a stopped scheduler for the given routes.
func NewScheduler(runner *Runner, routes []route.Descriptor, interval time.Duration, enabled bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		routes:   routes,
		interval: interval,
		enabled:  enabled,
		logger:   logger,
	}
}

// Start runs the scheduling loop until Stop is called or ctx is
// cancelled. The first cycle runs immediately. Calling Start while the
// loop is already running is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopRequested = false
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	stopCh, done := s.stopCh, s.done
	s.mu.Unlock()

	s.logger.Info("polling scheduler started",
		"interval", s.interval, "routes", len(s.routes))
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
		s.logger.Info("polling scheduler stopped")
	}()

	s.runScheduled(ctx)
	for {
		timer := time.NewTimer(s.interval)
		select {
		case <-timer.C:
			s.runScheduled(ctx)
		case <-stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// Stop ends the scheduling loop and blocks until an in-flight cycle has
// finished. The cycle itself is not aborted; only the next one is
// prevented. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running || s.stopRequested {
		s.mu.Unlock()
		return
	}
	s.stopRequested = true
	stopCh, done := s.stopCh, s.done
	s.mu.Unlock()

	close(stopCh)
	<-done
}

// RunNow triggers one cycle outside the schedule. It reports false
// without doing anything when a cycle is already in flight.
func (s *Scheduler) RunNow(ctx context.Context) (Summary, bool) {
	if !s.cycleMu.TryLock() {
		return Summary{}, false
	}
	defer s.cycleMu.Unlock()
	return s.runner.RunCycle(ctx, s.routes), true
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	if !s.cycleMu.TryLock() {
		s.logger.Warn("previous poll cycle still running, skipping tick")
		return
	}
	defer s.cycleMu.Unlock()
	s.runner.RunCycle(ctx, s.routes)
}

// Status reports the scheduler's configuration and whether its loop is
// running. Safe to call from any goroutine.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	routes := make([]RouteStatus, 0, len(s.routes))
	for _, rt := range s.routes {
		routes = append(routes, RouteStatus{Origin: rt.Origin, Destination: rt.Destination})
	}
	return Status{
		Enabled:         s.enabled,
		IntervalSeconds: int(s.interval / time.Second),
		IntervalHours:   s.interval.Hours(),
		RoutesCount:     len(s.routes),
		Routes:          routes,
		Running:         running,
	}
}
