package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eroview/sicar-api/internal/models"
)

// stubResolver lets each test script the resolver outcome. When block is set
// the resolver waits for release or context cancellation.
type stubResolver struct {
	result *models.Property
	err    error
	block  chan struct{}

	mu    sync.Mutex
	calls int
}

func (r *stubResolver) Resolve(ctx context.Context, coord models.Coordinate, rep Reporter) (*models.Property, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	rep.Step(models.StepInit, models.StepRunning)
	rep.Progress(10, "Validando coordenadas")
	rep.Log("info", "resolver started")
	rep.Step(models.StepInit, models.StepSuccess)

	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.result, r.err
}

type stubRecorder struct {
	mu    sync.Mutex
	saved []models.SearchStatus
}

func (r *stubRecorder) SaveSearch(_ context.Context, status models.SearchStatus) error {
	r.mu.Lock()
	r.saved = append(r.saved, status)
	r.mu.Unlock()
	return nil
}

func (r *stubRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func waitForStatus(t *testing.T, m *Manager, id, want string) models.SearchStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := m.Status(id)
		require.NoError(t, err)
		if status.Status == want {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("search %s never reached status %q", id, want)
	return models.SearchStatus{}
}

func testCoordinate() models.Coordinate {
	return models.Coordinate{Lat: -23.276064, Lon: -53.266292}
}

func TestManagerCompletesSearch(t *testing.T) {
	resolver := &stubResolver{result: &models.Property{Found: true, Name: "Fazenda Santa Maria"}}
	recorder := &stubRecorder{}
	m := NewManager(resolver, recorder, time.Minute, quietLogger())
	defer m.Close()

	job, err := m.Start(testCoordinate(), false)
	require.NoError(t, err)
	require.NotEmpty(t, job.ID())

	status := waitForStatus(t, m, job.ID(), models.SearchCompleted)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.Result)
	assert.Equal(t, "Fazenda Santa Maria", status.Result.Name)
	require.NotNil(t, status.FinishedAt)

	for _, step := range status.Steps {
		assert.NotEqual(t, models.StepRunning, step.Status, "step %s left running", step.ID)
	}

	// persisted exactly once
	require.Eventually(t, func() bool { return recorder.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	stats := m.Stats()
	assert.EqualValues(t, 1, stats.Total)
	assert.EqualValues(t, 1, stats.Completed)
	assert.Equal(t, 0, stats.Running)
}

func TestManagerFailedSearch(t *testing.T) {
	resolver := &stubResolver{err: errors.New("portal unreachable")}
	m := NewManager(resolver, nil, time.Minute, quietLogger())
	defer m.Close()

	job, err := m.Start(testCoordinate(), false)
	require.NoError(t, err)

	status := waitForStatus(t, m, job.ID(), models.SearchFailed)
	assert.Equal(t, "portal unreachable", status.Error)
	assert.Nil(t, status.Result)

	stats := m.Stats()
	assert.EqualValues(t, 1, stats.Failed)
}

func TestManagerRejectsConcurrentSearch(t *testing.T) {
	block := make(chan struct{})
	resolver := &stubResolver{block: block, result: &models.Property{Found: true}}
	m := NewManager(resolver, nil, time.Minute, quietLogger())
	defer m.Close()

	job, err := m.Start(testCoordinate(), false)
	require.NoError(t, err)

	_, err = m.Start(testCoordinate(), false)
	assert.ErrorIs(t, err, ErrSearchRunning)

	close(block)
	waitForStatus(t, m, job.ID(), models.SearchCompleted)

	// finished searches no longer block new ones
	_, err = m.Start(testCoordinate(), false)
	assert.NoError(t, err)
}

func TestManagerReplaceCancelsRunningSearch(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	resolver := &stubResolver{block: block, result: &models.Property{Found: true}}
	m := NewManager(resolver, nil, time.Minute, quietLogger())
	defer m.Close()

	first, err := m.Start(testCoordinate(), false)
	require.NoError(t, err)

	second, err := m.Start(models.Coordinate{Lat: -15.6, Lon: -56.1}, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())

	status := waitForStatus(t, m, first.ID(), models.SearchCanceled)
	assert.Equal(t, models.SearchCanceled, status.Status)

	latest, err := m.Latest()
	require.NoError(t, err)
	assert.Equal(t, second.ID(), latest.SearchID)
}

func TestManagerCancel(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	resolver := &stubResolver{block: block}
	m := NewManager(resolver, nil, time.Minute, quietLogger())
	defer m.Close()

	job, err := m.Start(testCoordinate(), false)
	require.NoError(t, err)

	require.NoError(t, m.Cancel(job.ID()))
	status := waitForStatus(t, m, job.ID(), models.SearchCanceled)
	for _, step := range status.Steps {
		assert.NotEqual(t, models.StepRunning, step.Status)
	}

	assert.ErrorIs(t, m.Cancel(job.ID()), ErrNotRunning)
	assert.ErrorIs(t, m.Cancel("no-such-id"), ErrSearchNotFound)

	stats := m.Stats()
	assert.EqualValues(t, 1, stats.Canceled)
}

// lateResolver ignores context cancellation and returns its scripted outcome
// once released, like a browser step that only notices the cancel after it
// finishes.
type lateResolver struct {
	result  *models.Property
	err     error
	release chan struct{}
}

func (r *lateResolver) Resolve(_ context.Context, _ models.Coordinate, rep Reporter) (*models.Property, error) {
	rep.Step(models.StepInit, models.StepRunning)
	<-r.release
	return r.result, r.err
}

func TestManagerCanceledSearchStaysCanceled(t *testing.T) {
	release := make(chan struct{})
	resolver := &lateResolver{result: &models.Property{Name: "Fazenda Santa Maria"}, release: release}
	recorder := &stubRecorder{}
	m := NewManager(resolver, recorder, time.Minute, quietLogger())
	defer m.Close()

	job, err := m.Start(testCoordinate(), false)
	require.NoError(t, err)
	require.NoError(t, m.Cancel(job.ID()))
	waitForStatus(t, m, job.ID(), models.SearchCanceled)

	close(release)
	require.Eventually(t, func() bool { return recorder.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	status, err := m.Status(job.ID())
	require.NoError(t, err)
	assert.Equal(t, models.SearchCanceled, status.Status)
	assert.Nil(t, status.Result)

	recorder.mu.Lock()
	persisted := recorder.saved[0]
	recorder.mu.Unlock()
	assert.Equal(t, models.SearchCanceled, persisted.Status)

	stats := m.Stats()
	assert.EqualValues(t, 1, stats.Canceled)
	assert.EqualValues(t, 0, stats.Completed)
}

func TestManagerCanceledSearchIgnoresLateFailure(t *testing.T) {
	release := make(chan struct{})
	resolver := &lateResolver{err: errors.New("portal gone"), release: release}
	recorder := &stubRecorder{}
	m := NewManager(resolver, recorder, time.Minute, quietLogger())
	defer m.Close()

	job, err := m.Start(testCoordinate(), false)
	require.NoError(t, err)
	require.NoError(t, m.Cancel(job.ID()))
	waitForStatus(t, m, job.ID(), models.SearchCanceled)

	close(release)
	require.Eventually(t, func() bool { return recorder.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	status, err := m.Status(job.ID())
	require.NoError(t, err)
	assert.Equal(t, models.SearchCanceled, status.Status)
	assert.Empty(t, status.Error)

	stats := m.Stats()
	assert.EqualValues(t, 1, stats.Canceled)
	assert.EqualValues(t, 0, stats.Failed)
}

func TestManagerCancelCountsOnce(t *testing.T) {
	block := make(chan struct{})
	resolver := &stubResolver{block: block}
	recorder := &stubRecorder{}
	m := NewManager(resolver, recorder, time.Minute, quietLogger())
	defer m.Close()
	defer close(block)

	job, err := m.Start(testCoordinate(), false)
	require.NoError(t, err)
	require.NoError(t, m.Cancel(job.ID()))
	waitForStatus(t, m, job.ID(), models.SearchCanceled)

	// The resolver goroutine observes the canceled context after Cancel
	// already transitioned the job; the counter must not move again.
	require.Eventually(t, func() bool { return recorder.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, m.Stats().Canceled)
}

func TestManagerCancelCurrentWithoutSearch(t *testing.T) {
	m := NewManager(&stubResolver{}, nil, time.Minute, quietLogger())
	assert.ErrorIs(t, m.CancelCurrent(), ErrNoSearch)
}

func TestManagerStatusUnknownID(t *testing.T) {
	m := NewManager(&stubResolver{}, nil, time.Minute, quietLogger())
	_, err := m.Status("b3b9f0b4-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrSearchNotFound)
}

func TestManagerLatestAndResult(t *testing.T) {
	m := NewManager(&stubResolver{result: &models.Property{Found: true, CARCode: "PR-4107207-79A269BEFA1443F9B06F8B7470D9F239"}}, nil, time.Minute, quietLogger())
	defer m.Close()

	_, err := m.Latest()
	assert.ErrorIs(t, err, ErrNoSearch)
	_, err = m.Result()
	assert.ErrorIs(t, err, ErrNoSearch)

	job, err := m.Start(testCoordinate(), false)
	require.NoError(t, err)
	waitForStatus(t, m, job.ID(), models.SearchCompleted)

	result, err := m.Result()
	require.NoError(t, err)
	assert.Equal(t, "PR-4107207-79A269BEFA1443F9B06F8B7470D9F239", result.CARCode)
}

func TestJobProgressIsMonotonic(t *testing.T) {
	job := newJob("test", func() {})
	job.Progress(50, "meio")
	job.Progress(25, "atrasado")
	assert.Equal(t, 50, job.Snapshot().Progress)
	assert.Equal(t, "atrasado", job.Snapshot().Message)
}

func TestJobLogBufferIsBounded(t *testing.T) {
	job := newJob("test", func() {})
	for i := 0; i < maxLogEntries+50; i++ {
		job.Log("info", "entry")
	}
	assert.Len(t, job.Snapshot().Logs, maxLogEntries)
}

func TestStepProgress(t *testing.T) {
	steps := []models.Step{
		{ID: "a", Status: models.StepSuccess},
		{ID: "b", Status: models.StepSuccess},
		{ID: "c", Status: models.StepRunning},
		{ID: "d", Status: models.StepPending},
	}
	assert.Equal(t, 62, StepProgress(steps))
	assert.Equal(t, 0, StepProgress(nil))
}
