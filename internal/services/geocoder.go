package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/eroview/sicar-api/internal/config"
	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/utils"
)

// GeocodeService resolves coordinates to Brazilian states and municipalities
// through the Nominatim reverse geocoding API, with results cached and
// cross-checked against IBGE's municipality registry.
type GeocodeService struct {
	baseURL     string
	ibgeBaseURL string
	userAgent   string
	client      *http.Client
	limiter     *rate.Limiter
	cache       CacheServiceInterface
	logger      *logrus.Logger
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		State        string `json:"state"`
		Province     string `json:"province"`
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		CountryCode  string `json:"country_code"`
	} `json:"address"`
}

// NewGeocodeService creates a new geocoding service. cache may be nil.
func NewGeocodeService(cfg config.GeocoderConfig, cache CacheServiceInterface, logger *logrus.Logger) *GeocodeService {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &GeocodeService{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		ibgeBaseURL: strings.TrimRight(cfg.IBGEBaseURL, "/"),
		userAgent:   cfg.UserAgent,
		client:      &http.Client{Timeout: 15 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		cache:       cache,
		logger:      logger,
	}
}

// Reverse resolves a coordinate to its federative unit and municipality.
func (g *GeocodeService) Reverse(ctx context.Context, coord models.Coordinate) (*models.Placemark, error) {
	cacheKey := fmt.Sprintf("geo:%.6f_%.6f", coord.Lat, coord.Lon)
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, cacheKey); err == nil {
			var placemark models.Placemark
			if err := json.Unmarshal([]byte(cached), &placemark); err == nil {
				return &placemark, nil
			}
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := g.reverseLookup(ctx, coord)
	if err != nil {
		return nil, err
	}

	stateName := result.Address.State
	if stateName == "" {
		stateName = result.Address.Province
	}
	uf, ok := utils.StateUF(stateName)
	if !ok {
		return nil, fmt.Errorf("%w: could not map %q", models.ErrNoStateIdentified, stateName)
	}
	fullName, _ := utils.UFName(uf)

	municipality := firstNonEmpty(
		result.Address.City,
		result.Address.Town,
		result.Address.Village,
		result.Address.Municipality,
	)
	if municipality == "" {
		return nil, fmt.Errorf("no municipality in geocoding result for %s", coord.String())
	}
	municipality = strings.ToUpper(municipality)

	placemark := &models.Placemark{
		State:        uf,
		StateName:    fullName,
		Municipality: municipality,
	}

	if err := g.validateMunicipality(ctx, uf, municipality); err != nil {
		g.logger.WithFields(logrus.Fields{
			"state":        uf,
			"municipality": municipality,
			"error":        err.Error(),
		}).Warn("IBGE municipality validation failed")
	}

	if g.cache != nil {
		if data, err := json.Marshal(placemark); err == nil {
			if err := g.cache.Set(ctx, cacheKey, string(data)); err != nil {
				g.logger.WithError(err).Debug("Failed to cache geocoding result")
			}
		}
	}

	return placemark, nil
}

func (g *GeocodeService) reverseLookup(ctx context.Context, coord models.Coordinate) (*nominatimResult, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', 6, 64))
	params.Set("zoom", "10")
	params.Set("accept-language", "pt-BR")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocoding returned status %d", resp.StatusCode)
	}

	var result nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}
	if result.Address.CountryCode != "" && result.Address.CountryCode != "br" {
		return nil, fmt.Errorf("%w: country %s", models.ErrOutsideBrazil, result.Address.CountryCode)
	}
	return &result, nil
}

// validateMunicipality checks the municipality against IBGE's registry for
// the state. Failures are reported to the caller but treated as warnings.
func (g *GeocodeService) validateMunicipality(ctx context.Context, uf, municipality string) error {
	reqURL := fmt.Sprintf("%s/estados/%s/municipios", g.ibgeBaseURL, uf)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("ibge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ibge returned status %d", resp.StatusCode)
	}

	var municipalities []struct {
		Nome string `json:"nome"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&municipalities); err != nil {
		return fmt.Errorf("decode ibge response: %w", err)
	}

	want := utils.NormalizeText(municipality)
	for _, m := range municipalities {
		if utils.NormalizeText(m.Nome) == want {
			return nil
		}
	}
	return fmt.Errorf("municipality %q not listed for %s", municipality, uf)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
