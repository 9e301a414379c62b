package metrics

import (
	"sync"
	"time"
)

type operationStats struct {
	calls       int
	errors      int
	lastLatency time.Duration
}

// Recorder captures lightweight, in-memory counters about match operations
// and mirrors them to OpenTelemetry instruments when configured.
type Recorder struct {
	mu               sync.Mutex
	operations       map[string]*operationStats
	pointsScored     int
	matchesFinished  int
	versionConflicts int
	refreshCycles    int
	refreshErrors    int
	httpRequests     int
	otel             *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		operations: make(map[string]*operationStats),
		otel:       otel,
	}
}

// RecordMatchOperation counts an engine operation (score, undo, setup, ...) and its latency.
// errKind is empty on success.
func (r *Recorder) RecordMatchOperation(operation, shape string, duration time.Duration, errKind string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.operations[operation]
	if !ok {
		stats = &operationStats{}
		r.operations[operation] = stats
	}
	stats.calls++
	stats.lastLatency = duration
	if errKind != "" {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordMatchOperation(operation, shape, duration, errKind)
	}
}

// RecordPointScored counts an applied point.
func (r *Recorder) RecordPointScored(shape string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.pointsScored++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.pointsScored, 1, shapeAttr(shape))
	}
}

// RecordMatchFinished counts a match reaching Finished.
func (r *Recorder) RecordMatchFinished(shape string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.matchesFinished++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.matchesFinished, 1, shapeAttr(shape))
	}
}

// RecordVersionConflict counts a rejected optimistic save.
func (r *Recorder) RecordVersionConflict(operation string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.versionConflicts++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.versionConflicts, 1, operationAttr(operation))
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.httpRequests++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordHTTPRequest(method, path, status, duration)
	}
}

// RecordRankingsRefresh tracks refresher cycles and errors.
func (r *Recorder) RecordRankingsRefresh(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.refreshCycles++
	if err != nil {
		r.refreshErrors++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordRefresh(duration, err)
	}
}

// Snapshot is a copy of the current counters for one operation.
type Snapshot struct {
	Calls       int
	Errors      int
	LastLatency time.Duration
}

// Snapshot returns the stats recorded for operation.
func (r *Recorder) Snapshot(operation string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.operations[operation]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{Calls: stats.calls, Errors: stats.errors, LastLatency: stats.lastLatency}
}

// Totals is a copy of the match-wide counters.
type Totals struct {
	PointsScored     int
	MatchesFinished  int
	VersionConflicts int
	RefreshCycles    int
	RefreshErrors    int
	HTTPRequests     int
}

// Totals returns the match-wide counters.
func (r *Recorder) Totals() Totals {
	if r == nil {
		return Totals{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return Totals{
		PointsScored:     r.pointsScored,
		MatchesFinished:  r.matchesFinished,
		VersionConflicts: r.versionConflicts,
		RefreshCycles:    r.refreshCycles,
		RefreshErrors:    r.refreshErrors,
		HTTPRequests:     r.httpRequests,
	}
}
