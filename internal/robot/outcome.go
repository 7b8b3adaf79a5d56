package robot

import (
	"context"
	"time"
)

// Outcome is the tri-state result of a locator strategy. Inconclusive means
// the action was performed but no confirmation signal fired; callers must not
// collapse it into Failed.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeInconclusive
	OutcomeSucceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "failed"
	}
}

// Strategy is one independent attempt at a locator target. Strategies run in
// priority order with their own timeout; the first Succeeded wins.
type Strategy struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) (Outcome, error)
}

// Diagnostic is one append-only record of a strategy attempt
type Diagnostic struct {
	Operation string    `json:"operation"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TargetKind selects which locator pipeline handles a target
type TargetKind int

const (
	TargetState TargetKind = iota
	TargetMunicipality
	TargetProperty
)

// Target describes what the locator should find on the portal
type Target struct {
	Kind TargetKind
	// Name is the state or municipality display name
	Name string
	// UF is the two-letter state abbreviation, set for state targets
	UF string
	// Lat/Lon are set for property targets
	Lat float64
	Lon float64
}

// Locator isolates the portal DOM heuristics behind a narrow interface so the
// brittle part is swappable without touching orchestration.
type Locator interface {
	Locate(ctx context.Context, target Target) Outcome
}
