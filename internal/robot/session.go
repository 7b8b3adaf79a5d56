package robot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eroview/sicar-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// DefaultPortalURL is the public SICAR property lookup entry point
const DefaultPortalURL = "https://consultapublica.car.gov.br/publico/imoveis/index"

// Page is the browser surface the locator needs. The browser service pool
// hands out implementations of this.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitForSelector(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	GetText(ctx context.Context, selector string) (string, error)
	GetHTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	ExecuteScript(ctx context.Context, script string) (interface{}, error)
}

// Session drives one search against the portal and records diagnostics for
// every strategy attempt.
type Session struct {
	page      Page
	logger    *logrus.Logger
	portalURL string

	mu    sync.Mutex
	diags []Diagnostic
}

// NewSession wraps a page in a locator session
func NewSession(page Page, portalURL string, logger *logrus.Logger) *Session {
	if portalURL == "" {
		portalURL = DefaultPortalURL
	}
	return &Session{
		page:      page,
		logger:    logger,
		portalURL: portalURL,
	}
}

// Diagnostics returns a copy of the attempts recorded so far
func (s *Session) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}

func (s *Session) addDiagnostic(operation string, outcome Outcome, detail string) {
	s.mu.Lock()
	s.diags = append(s.diags, Diagnostic{
		Operation: operation,
		Outcome:   outcome.String(),
		Detail:    detail,
		Timestamp: time.Now(),
	})
	s.mu.Unlock()
}

// OpenPortal loads the portal entry page, retrying up to attempts times.
// Each attempt waits for the page map container instead of sleeping.
func (s *Session) OpenPortal(ctx context.Context, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.page.Navigate(ctx, s.portalURL); err != nil {
			lastErr = err
			s.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"error":   err.Error(),
			}).Warn("Portal navigation failed")
			continue
		}

		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		err := s.page.WaitForSelector(waitCtx, "svg, .leaflet-container, #mapContainer, map")
		cancel()
		if err == nil {
			s.addDiagnostic("open_portal", OutcomeSucceeded, fmt.Sprintf("loaded on attempt %d", attempt))
			return nil
		}
		lastErr = err
	}
	s.addDiagnostic("open_portal", OutcomeFailed, fmt.Sprintf("%d attempts: %v", attempts, lastErr))
	return fmt.Errorf("%w: %w", ErrPortalUnavailable, lastErr)
}

// Locate runs the strategy pipeline for the target kind
func (s *Session) Locate(ctx context.Context, target Target) Outcome {
	switch target.Kind {
	case TargetState:
		return s.runStrategies(ctx, "select_state", s.stateStrategies(target))
	case TargetMunicipality:
		return s.runStrategies(ctx, "select_municipality", s.municipalityStrategies(target))
	case TargetProperty:
		return s.runStrategies(ctx, "locate_property", s.propertyStrategies(target))
	default:
		return OutcomeFailed
	}
}

// runStrategies executes strategies in priority order, stopping at the first
// success. Inconclusive attempts are preserved in the aggregate: if no
// strategy succeeds but at least one was inconclusive, the result is
// inconclusive, not failed.
func (s *Session) runStrategies(ctx context.Context, operation string, strategies []Strategy) Outcome {
	sawInconclusive := false
	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return OutcomeFailed
		}

		timeout := strategy.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		strategyCtx, cancel := context.WithTimeout(ctx, timeout)
		outcome, err := strategy.Run(strategyCtx)
		cancel()

		detail := ""
		if err != nil {
			detail = err.Error()
		}
		s.addDiagnostic(operation+"/"+strategy.Name, outcome, detail)
		s.logger.WithFields(logrus.Fields{
			"operation": operation,
			"strategy":  strategy.Name,
			"outcome":   outcome.String(),
		}).Debug("Locator strategy finished")

		switch outcome {
		case OutcomeSucceeded:
			return OutcomeSucceeded
		case OutcomeInconclusive:
			sawInconclusive = true
		}
	}
	if sawInconclusive {
		return OutcomeInconclusive
	}
	return OutcomeFailed
}

// confirmSelection checks the secondary signals used to verify that a
// selection actually took: the URL carrying the UF, or the page text carrying
// the requested name. These are best-effort signals, not postconditions.
func (s *Session) confirmSelection(ctx context.Context, uf, name string) bool {
	if uf != "" {
		href, err := s.page.ExecuteScript(ctx, "window.location.href")
		if err == nil {
			if url, ok := href.(string); ok {
				lower := strings.ToLower(url)
				if strings.Contains(lower, "estado="+strings.ToLower(uf)) ||
					strings.Contains(lower, "uf="+strings.ToLower(uf)) {
					return true
				}
			}
		}
	}

	if name != "" {
		body, err := s.page.GetText(ctx, "body")
		if err == nil {
			if strings.Contains(utils.NormalizeText(body), utils.NormalizeText(name)) {
				return true
			}
		}
	}
	return false
}
