package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/config"
	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/robot"
	"github.com/eroview/sicar-api/internal/search"
)

// SicarResolver drives a real browser through the public SICAR portal to
// find the rural property registered at a coordinate.
type SicarResolver struct {
	cfg      config.SicarConfig
	browsers BrowserServiceInterface
	geocoder GeocodeServiceInterface
	cache    CacheServiceInterface
	logger   *logrus.Logger
}

// NewSicarResolver creates a live portal resolver.
func NewSicarResolver(cfg config.SicarConfig, browsers BrowserServiceInterface, geocoder GeocodeServiceInterface, cache CacheServiceInterface, logger *logrus.Logger) *SicarResolver {
	return &SicarResolver{
		cfg:      cfg,
		browsers: browsers,
		geocoder: geocoder,
		cache:    cache,
		logger:   logger,
	}
}

// Resolve runs the full lookup pipeline for a coordinate.
func (r *SicarResolver) Resolve(ctx context.Context, coord models.Coordinate, rep search.Reporter) (*models.Property, error) {
	rep.Step(models.StepInit, models.StepRunning)
	rep.Progress(5, "Validando coordenadas")

	if err := coord.Validate(); err != nil {
		rep.Step(models.StepInit, models.StepError)
		return nil, err
	}
	if !coord.InBrazil() {
		rep.Step(models.StepInit, models.StepError)
		return nil, fmt.Errorf("%w: %s", models.ErrOutsideBrazil, coord.String())
	}

	cacheKey := fmt.Sprintf("sicar:%.6f_%.6f", coord.Lat, coord.Lon)
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, cacheKey); err == nil {
			var prop models.Property
			if err := json.Unmarshal([]byte(cached), &prop); err == nil {
				rep.Log("info", "Resultado obtido do cache")
				rep.Step(models.StepInit, models.StepSuccess)
				return &prop, nil
			}
		}
	}
	rep.Step(models.StepInit, models.StepSuccess)

	rep.Step(models.StepBrowser, models.StepRunning)
	rep.Progress(10, "Inicializando navegador")
	browser, err := r.browsers.GetBrowser(ctx)
	if err != nil {
		rep.Step(models.StepBrowser, models.StepError)
		return nil, fmt.Errorf("acquire browser: %w", err)
	}
	defer r.browsers.ReleaseBrowser(browser)
	rep.Step(models.StepBrowser, models.StepSuccess)

	session := robot.NewSession(browser, r.cfg.PortalURL, r.logger)

	rep.Step(models.StepAccessSite, models.StepRunning)
	rep.Progress(25, "Acessando portal SICAR")
	if err := session.OpenPortal(ctx, r.cfg.MaxNavRetries); err != nil {
		rep.Step(models.StepAccessSite, models.StepError)
		return nil, err
	}
	rep.Step(models.StepAccessSite, models.StepSuccess)
	rep.Log("info", "Portal carregado")

	placemark, err := r.geocoder.Reverse(ctx, coord)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding: %w", err)
	}
	rep.Progress(30, fmt.Sprintf("Estado identificado: %s", placemark.StateName))
	rep.Log("info", fmt.Sprintf("Localização: %s / %s", placemark.Municipality, placemark.State))

	rep.Step(models.StepSelectState, models.StepRunning)
	outcome := session.Locate(ctx, robot.Target{
		Kind: robot.TargetState,
		Name: placemark.StateName,
		UF:   placemark.State,
	})
	if err := robot.SelectionError(outcome, robot.ErrStateSelection, robot.ErrStateUnconfirmed); err != nil {
		if !errors.Is(err, robot.ErrStateUnconfirmed) {
			rep.Step(models.StepSelectState, models.StepError)
			return nil, fmt.Errorf("%w: %s", err, placemark.StateName)
		}
		// The click went through but the portal gave no confirmation
		// signal. Municipality selection will fail fast if the state
		// really did not change.
		rep.Log("warning", fmt.Sprintf("Seleção de estado não confirmada: %s", placemark.StateName))
	}
	rep.Step(models.StepSelectState, models.StepSuccess)
	rep.Progress(50, fmt.Sprintf("Estado selecionado: %s", placemark.State))

	rep.Step(models.StepSelectCity, models.StepRunning)
	outcome = session.Locate(ctx, robot.Target{
		Kind: robot.TargetMunicipality,
		Name: placemark.Municipality,
		UF:   placemark.State,
	})
	if err := robot.SelectionError(outcome, robot.ErrMunicipalitySelection, robot.ErrMunicipalityUnconfirmed); err != nil {
		if !errors.Is(err, robot.ErrMunicipalityUnconfirmed) {
			rep.Step(models.StepSelectCity, models.StepError)
			return nil, fmt.Errorf("%w: %s", err, placemark.Municipality)
		}
		rep.Log("warning", fmt.Sprintf("Seleção de município não confirmada: %s", placemark.Municipality))
	}
	rep.Step(models.StepSelectCity, models.StepSuccess)
	rep.Progress(60, fmt.Sprintf("Município selecionado: %s", placemark.Municipality))

	rep.Step(models.StepSelectProperty, models.StepRunning)
	outcome = session.Locate(ctx, robot.Target{
		Kind: robot.TargetProperty,
		Lat:  coord.Lat,
		Lon:  coord.Lon,
	})
	if outcome == robot.OutcomeFailed {
		rep.Step(models.StepSelectProperty, models.StepError)
		return nil, robot.ErrPropertyNotFound
	}
	rep.Step(models.StepSelectProperty, models.StepSuccess)
	rep.Progress(90, "Propriedade localizada no mapa")

	rep.Step(models.StepExtract, models.StepRunning)
	prop, err := session.ExtractProperty(ctx)
	if err != nil {
		rep.Step(models.StepExtract, models.StepError)
		return nil, err
	}
	if mapFile, err := session.CaptureMap(ctx, r.cfg.MapsDir, rep.ID()); err != nil {
		rep.Log("warning", fmt.Sprintf("Falha ao capturar mapa: %v", err))
	} else {
		prop.MapFile = mapFile
		prop.HasMap = true
	}
	rep.Step(models.StepExtract, models.StepSuccess)
	rep.Progress(95, "Informações extraídas")

	rep.Step(models.StepFinish, models.StepRunning)
	prop.State = placemark.State
	prop.StateName = placemark.StateName
	prop.Municipality = placemark.Municipality
	prop.Coordinates = coord
	prop.ResolvedAt = time.Now()

	if r.cache != nil {
		if data, err := json.Marshal(prop); err == nil {
			if err := r.cache.Set(ctx, cacheKey, string(data)); err != nil {
				r.logger.WithError(err).Debug("Failed to cache property result")
			}
		}
	}

	for _, diag := range session.Diagnostics() {
		rep.Log("debug", fmt.Sprintf("%s: %s %s", diag.Operation, diag.Outcome, diag.Detail))
		r.logger.WithFields(logrus.Fields{
			"operation": diag.Operation,
			"outcome":   diag.Outcome,
			"detail":    diag.Detail,
		}).Debug("Portal diagnostic")
	}

	rep.Step(models.StepFinish, models.StepSuccess)
	rep.Progress(100, "Busca concluída")
	return prop, nil
}
