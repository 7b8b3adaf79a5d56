package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/models"
)

var (
	// ErrSearchRunning is returned when a new search is requested while
	// another one is still in flight.
	ErrSearchRunning = errors.New("a search is already running")

	// ErrSearchNotFound is returned for unknown search identifiers.
	ErrSearchNotFound = errors.New("search not found")

	// ErrNoSearch is returned when no search has been started yet.
	ErrNoSearch = errors.New("no search started")

	// ErrNotRunning is returned when canceling a search that already finished.
	ErrNotRunning = errors.New("search is not running")
)

// maxRetainedJobs bounds the in-memory job history. Finished jobs beyond the
// bound are evicted oldest-first; the store keeps the durable record.
const maxRetainedJobs = 100

// Reporter receives progress callbacks from a resolver while it works
// through a search.
type Reporter interface {
	ID() string
	Step(id, status string)
	Progress(pct int, message string)
	Log(level, message string)
}

// Resolver runs the actual property lookup for a coordinate.
type Resolver interface {
	Resolve(ctx context.Context, coord models.Coordinate, rep Reporter) (*models.Property, error)
}

// Recorder persists finished searches.
type Recorder interface {
	SaveSearch(ctx context.Context, status models.SearchStatus) error
}

// Metrics aggregates lifetime search counters.
type Metrics struct {
	Total     int64
	Completed int64
	Failed    int64
	Canceled  int64
	Running   int
}

// Manager owns the search lifecycle: one running search at a time, job
// history with bounded retention, and persistence of finished searches.
type Manager struct {
	resolver Resolver
	recorder Recorder
	logger   *logrus.Logger
	timeout  time.Duration

	mu      sync.Mutex
	jobs    map[string]*Job
	order   []string
	current *Job

	total     atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	canceled  atomic.Int64
}

// NewManager builds a Manager. recorder may be nil when persistence is
// disabled.
func NewManager(resolver Resolver, recorder Recorder, timeout time.Duration, logger *logrus.Logger) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Manager{
		resolver: resolver,
		recorder: recorder,
		logger:   logger,
		timeout:  timeout,
		jobs:     make(map[string]*Job),
	}
}

// Start launches a search for the coordinate. When replace is true a running
// search is canceled first; otherwise ErrSearchRunning is returned.
func (m *Manager) Start(coord models.Coordinate, replace bool) (*Job, error) {
	m.mu.Lock()
	if m.current != nil && m.current.running() {
		if !replace {
			m.mu.Unlock()
			return nil, ErrSearchRunning
		}
		m.current.cancel()
		if m.current.markCanceled() {
			m.canceled.Add(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	job := newJob(uuid.New().String(), cancel)
	m.jobs[job.id] = job
	m.order = append(m.order, job.id)
	m.current = job
	m.evictLocked()
	m.mu.Unlock()

	m.total.Add(1)
	m.logger.WithFields(logrus.Fields{
		"search_id": job.id,
		"latitude":  coord.Lat,
		"longitude": coord.Lon,
	}).Info("Search started")

	go m.run(ctx, job, coord)
	return job, nil
}

func (m *Manager) run(ctx context.Context, job *Job, coord models.Coordinate) {
	defer job.cancel()

	result, err := m.resolver.Resolve(ctx, coord, job)
	switch {
	case err == nil:
		if job.complete(result) {
			m.completed.Add(1)
			m.logger.WithField("search_id", job.id).Info("Search completed")
		}
	case errors.Is(err, context.Canceled):
		if job.markCanceled() {
			m.canceled.Add(1)
			m.logger.WithField("search_id", job.id).Info("Search canceled")
		}
	default:
		if job.fail(err) {
			m.failed.Add(1)
			m.logger.WithFields(logrus.Fields{
				"search_id": job.id,
				"error":     err.Error(),
			}).Error("Search failed")
		}
	}

	if m.recorder != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.recorder.SaveSearch(saveCtx, job.Snapshot()); err != nil {
			m.logger.WithError(err).Warn("Failed to persist search result")
		}
	}
}

// Cancel stops the search with the given identifier.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	job, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return ErrSearchNotFound
	}
	if !job.running() {
		return ErrNotRunning
	}
	job.cancel()
	if job.markCanceled() {
		m.canceled.Add(1)
	}
	return nil
}

// CancelCurrent stops the most recent search if it is still running.
func (m *Manager) CancelCurrent() error {
	m.mu.Lock()
	job := m.current
	m.mu.Unlock()
	if job == nil {
		return ErrNoSearch
	}
	return m.Cancel(job.id)
}

// Status returns the state of the search with the given identifier.
func (m *Manager) Status(id string) (models.SearchStatus, error) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return models.SearchStatus{}, ErrSearchNotFound
	}
	return job.Snapshot(), nil
}

// Latest returns the state of the most recently started search.
func (m *Manager) Latest() (models.SearchStatus, error) {
	m.mu.Lock()
	job := m.current
	m.mu.Unlock()
	if job == nil {
		return models.SearchStatus{}, ErrNoSearch
	}
	return job.Snapshot(), nil
}

// Result returns the property found by the most recent search, if any.
func (m *Manager) Result() (*models.Property, error) {
	status, err := m.Latest()
	if err != nil {
		return nil, err
	}
	if status.Result == nil {
		return nil, ErrSearchNotFound
	}
	return status.Result, nil
}

// Stats returns lifetime search counters.
func (m *Manager) Stats() Metrics {
	m.mu.Lock()
	running := 0
	if m.current != nil && m.current.running() {
		running = 1
	}
	m.mu.Unlock()
	return Metrics{
		Total:     m.total.Load(),
		Completed: m.completed.Load(),
		Failed:    m.failed.Load(),
		Canceled:  m.canceled.Load(),
		Running:   running,
	}
}

// Close cancels any running search.
func (m *Manager) Close() {
	m.mu.Lock()
	job := m.current
	m.mu.Unlock()
	if job != nil && job.running() {
		job.cancel()
		job.markCanceled()
	}
}

// evictLocked drops the oldest finished jobs beyond the retention bound.
// Caller holds m.mu.
func (m *Manager) evictLocked() {
	for len(m.order) > maxRetainedJobs {
		oldest := m.jobs[m.order[0]]
		if oldest != nil && oldest.running() {
			break
		}
		delete(m.jobs, m.order[0])
		m.order = m.order[1:]
	}
}
