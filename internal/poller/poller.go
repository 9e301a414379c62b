// Package poller refreshes the rankings table in the background.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/rankings"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/logging"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/metrics"
)

const defaultInterval = time.Minute

// failureThreshold is the number of consecutive failed refreshes after which
// the poller stops reporting ready.
const failureThreshold = 3

// Refresher recomputes and caches the rankings table.
type Refresher interface {
	Refresh(ctx context.Context) (rankings.Table, error)
}

// SnapshotWriter persists rankings snapshots to disk.
type SnapshotWriter interface {
	WriteRankingsSnapshot(date string, table rankings.Table) error
}

// Poller refreshes rankings on an interval and writes the dated snapshot.
type Poller struct {
	refresher Refresher
	writer    SnapshotWriter
	logger    *slog.Logger
	metrics   *metrics.Recorder
	interval  time.Duration

	// refreshMu serializes ticker refreshes with RefreshNow.
	refreshMu sync.Mutex

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the refresh loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the poller has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < failureThreshold
}

// New constructs a Poller. A nil writer disables snapshot writes.
func New(refresher Refresher, writer SnapshotWriter, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		refresher: refresher,
		writer:    writer,
		logger:    logger,
		metrics:   recorder,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start begins refreshing until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	p.ticker = time.NewTicker(p.interval)

	go func() {
		logging.Info(p.logger, "rankings refresher started", slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()))
		// Warm the cache on boot.
		_, _ = p.RefreshNow(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				logging.Info(p.logger, "rankings refresher stopped")
				return
			case <-p.done:
				p.stopTicker()
				logging.Info(p.logger, "rankings refresher stopped")
				return
			case <-p.ticker.C:
				_, _ = p.RefreshNow(ctx)
			}
		}
	}()
}

// Stop halts the refresh loop.
func (p *Poller) Stop(ctx context.Context) error {
	_ = ctx
	p.stopOnce.Do(func() {
		close(p.done)
		p.stopTicker()
	})
	return nil
}

// RefreshNow runs one refresh cycle synchronously. A snapshot write failure is
// logged but does not fail the cycle.
func (p *Poller) RefreshNow(ctx context.Context) (rankings.Table, error) {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	start := time.Now()
	p.recordAttempt(start)
	table, err := p.refresher.Refresh(ctx)
	p.metrics.RecordRankingsRefresh(time.Since(start), err)
	if err != nil {
		logging.Error(p.logger, "rankings refresh failed", err, slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()))
		p.recordFailure(err, start)
		return rankings.Table{}, err
	}

	if p.writer != nil {
		if writeErr := p.writer.WriteRankingsSnapshot(table.Date, table); writeErr != nil {
			logging.Error(p.logger, "rankings snapshot write failed", writeErr, logging.FieldDate, table.Date)
		}
	}
	p.recordSuccess(start)
	logging.Info(p.logger, "rankings refreshed",
		logging.FieldCount, len(table.Entries),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return table, nil
}

func (p *Poller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
