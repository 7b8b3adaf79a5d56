package models

import "time"

// Search lifecycle states
const (
	SearchIdle      = "idle"
	SearchRunning   = "running"
	SearchCompleted = "completed"
	SearchFailed    = "failed"
	SearchCanceled  = "canceled"
)

// Step statuses
const (
	StepPending  = "pending"
	StepRunning  = "running"
	StepSuccess  = "success"
	StepError    = "error"
	StepCanceled = "canceled"
)

// Pipeline step identifiers
const (
	StepInit           = "init"
	StepBrowser        = "browser"
	StepAccessSite     = "access_site"
	StepSelectState    = "select_state"
	StepSelectCity     = "select_city"
	StepSelectProperty = "select_property"
	StepExtract        = "extract"
	StepFinish         = "finish"
)

// Step is one stage of the resolution pipeline as shown to clients
type Step struct {
	ID     string `json:"id" example:"select_state"`
	Name   string `json:"name" example:"Selecionar estado"`
	Status string `json:"status" example:"running"`
}

// DefaultSteps returns the fixed pipeline step list in execution order
func DefaultSteps() []Step {
	return []Step{
		{ID: StepInit, Name: "Inicialização", Status: StepPending},
		{ID: StepBrowser, Name: "Inicializar navegador", Status: StepPending},
		{ID: StepAccessSite, Name: "Acessar site", Status: StepPending},
		{ID: StepSelectState, Name: "Selecionar estado", Status: StepPending},
		{ID: StepSelectCity, Name: "Selecionar município", Status: StepPending},
		{ID: StepSelectProperty, Name: "Selecionar propriedade", Status: StepPending},
		{ID: StepExtract, Name: "Extrair informações", Status: StepPending},
		{ID: StepFinish, Name: "Finalização", Status: StepPending},
	}
}

// LogEntry is one line of the per-search activity log
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level" example:"info"`
	Message   string    `json:"message" example:"Estado PARANÁ selecionado"`
	Step      string    `json:"step,omitempty" example:"select_state"`
}

// SearchStatus is the status payload returned by the status endpoints
type SearchStatus struct {
	SearchID   string     `json:"search_id,omitempty"`
	Status     string     `json:"status" example:"running"`
	Message    string     `json:"message"`
	Progress   int        `json:"progress" example:"50"`
	Steps      []Step     `json:"steps"`
	Logs       []LogEntry `json:"logs"`
	Result     *Property  `json:"result"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
