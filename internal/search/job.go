package search

import (
	"context"
	"sync"
	"time"

	"github.com/eroview/sicar-api/internal/models"
)

// maxLogEntries bounds the per-job log buffer.
const maxLogEntries = 200

// Job tracks a single coordinate search from start to completion. All
// mutation goes through the methods below; Snapshot returns a copy safe to
// serialize while the search is still running.
type Job struct {
	mu sync.Mutex

	id         string
	status     string
	message    string
	progress   int
	steps      []models.Step
	logs       []models.LogEntry
	result     *models.Property
	err        string
	startedAt  time.Time
	finishedAt *time.Time

	currentStep string
	cancel      context.CancelFunc
}

func newJob(id string, cancel context.CancelFunc) *Job {
	return &Job{
		id:        id,
		status:    models.SearchRunning,
		message:   "Iniciando busca",
		steps:     models.DefaultSteps(),
		startedAt: time.Now(),
		cancel:    cancel,
	}
}

// ID returns the job's search identifier.
func (j *Job) ID() string { return j.id }

// Step marks the named step with the given status and remembers it as the
// current step for log attribution.
func (j *Job) Step(id, status string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.steps {
		if j.steps[i].ID == id {
			j.steps[i].Status = status
			break
		}
	}
	if status == models.StepRunning {
		j.currentStep = id
	}
}

// Progress updates the overall completion percentage and status message.
func (j *Job) Progress(pct int, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if pct > j.progress {
		j.progress = pct
	}
	if message != "" {
		j.message = message
	}
}

// Log appends a log entry attributed to the current step.
func (j *Job) Log(level, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.logs = append(j.logs, models.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Step:      j.currentStep,
	})
	if len(j.logs) > maxLogEntries {
		j.logs = j.logs[len(j.logs)-maxLogEntries:]
	}
}

// complete, fail and markCanceled only transition a running job. A job that
// was already canceled stays canceled even when the resolver goroutine
// returns afterwards. The bool tells the caller whether the transition
// happened so counters are bumped exactly once.
func (j *Job) complete(result *models.Property) bool {
	now := time.Now()
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != models.SearchRunning {
		return false
	}
	j.status = models.SearchCompleted
	j.message = "Busca concluída"
	j.progress = 100
	j.result = result
	j.finishedAt = &now
	for i := range j.steps {
		if j.steps[i].Status == models.StepRunning || j.steps[i].Status == models.StepPending {
			j.steps[i].Status = models.StepSuccess
		}
	}
	return true
}

func (j *Job) fail(err error) bool {
	now := time.Now()
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != models.SearchRunning {
		return false
	}
	j.status = models.SearchFailed
	j.message = "Busca falhou"
	j.err = err.Error()
	j.finishedAt = &now
	for i := range j.steps {
		if j.steps[i].Status == models.StepRunning {
			j.steps[i].Status = models.StepError
		}
	}
	return true
}

func (j *Job) markCanceled() bool {
	now := time.Now()
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != models.SearchRunning {
		return false
	}
	j.status = models.SearchCanceled
	j.message = "Busca cancelada"
	j.finishedAt = &now
	for i := range j.steps {
		if j.steps[i].Status == models.StepRunning {
			j.steps[i].Status = models.StepCanceled
		}
	}
	return true
}

func (j *Job) running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status == models.SearchRunning
}

// Snapshot returns a point-in-time copy of the job state.
func (j *Job) Snapshot() models.SearchStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	steps := make([]models.Step, len(j.steps))
	copy(steps, j.steps)
	logs := make([]models.LogEntry, len(j.logs))
	copy(logs, j.logs)

	started := j.startedAt
	status := models.SearchStatus{
		SearchID:  j.id,
		Status:    j.status,
		Message:   j.message,
		Progress:  j.progress,
		Steps:     steps,
		Logs:      logs,
		Result:    j.result,
		Error:     j.err,
		StartedAt: &started,
	}
	if j.finishedAt != nil {
		finished := *j.finishedAt
		status.FinishedAt = &finished
	}
	return status
}

// StepProgress derives a completion percentage from step states alone.
// Completed steps count in full, running steps count half.
func StepProgress(steps []models.Step) int {
	if len(steps) == 0 {
		return 0
	}
	total := 0
	for _, step := range steps {
		switch step.Status {
		case models.StepSuccess:
			total += 100
		case models.StepRunning:
			total += 50
		}
	}
	return total / len(steps)
}
