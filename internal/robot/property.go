package robot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const resultIndicatorSelectors = `[class*="result" i], [class*="resultado" i], .property-info, #propertyDetails`

func (s *Session) propertyStrategies(target Target) []Strategy {
	return []Strategy{
		{
			Name:    "leaflet_marker",
			Timeout: 25 * time.Second,
			Run:     func(ctx context.Context) (Outcome, error) { return s.locateLeafletMarker(ctx, target) },
		},
		{
			Name:    "coordinate_search",
			Timeout: 15 * time.Second,
			Run:     func(ctx context.Context) (Outcome, error) { return s.locateCoordinateSearch(ctx, target) },
		},
	}
}

// locateLeafletMarker drops a marker on the requested coordinate through the
// page's Leaflet instance, centers the view on it, and zooms in to trigger
// the portal's property lookup.
func (s *Session) locateLeafletMarker(ctx context.Context, target Target) (Outcome, error) {
	script := fmt.Sprintf(`(function() {
		try {
			if (typeof L === 'undefined') return false;
			var map = null;
			if (window.map && typeof window.map.setView === 'function') {
				map = window.map;
			} else {
				for (var key in window) {
					var v = window[key];
					if (v && typeof v.setView === 'function' && typeof v.getZoom === 'function') {
						map = v;
						break;
					}
				}
			}
			if (!map) return false;
			var latlng = L.latLng(%f, %f);
			L.marker(latlng).addTo(map);
			map.setView(latlng, 13);
			setTimeout(function() { map.setView(latlng, 15); }, 1500);
			return true;
		} catch (e) {
			return false;
		}
	})()`, target.Lat, target.Lon)

	result, err := s.page.ExecuteScript(ctx, script)
	if err != nil {
		return OutcomeFailed, err
	}
	if placed, ok := result.(bool); !ok || !placed {
		return OutcomeFailed, nil
	}

	if err := s.page.WaitForSelector(ctx, resultIndicatorSelectors); err != nil {
		return OutcomeInconclusive, nil
	}
	return OutcomeSucceeded, nil
}

// locateCoordinateSearch types the coordinate into the portal's search input
// when the map cannot be scripted directly.
func (s *Session) locateCoordinateSearch(ctx context.Context, target Target) (Outcome, error) {
	script := fmt.Sprintf(`(function() {
		var input = document.querySelector('input[type="search"], input[name*="coord" i], input[placeholder*="coord" i], input[placeholder*="pesquis" i]');
		if (!input) return false;
		input.value = %q;
		input.dispatchEvent(new Event('input', { bubbles: true }));
		input.dispatchEvent(new KeyboardEvent('keydown', { key: 'Enter', bubbles: true }));
		var form = input.closest('form');
		if (form) form.dispatchEvent(new Event('submit', { bubbles: true, cancelable: true }));
		return true;
	})()`, fmt.Sprintf("%f, %f", target.Lat, target.Lon))

	result, err := s.page.ExecuteScript(ctx, script)
	if err != nil {
		return OutcomeFailed, err
	}
	if searched, ok := result.(bool); !ok || !searched {
		return OutcomeFailed, nil
	}

	if err := s.page.WaitForSelector(ctx, resultIndicatorSelectors); err != nil {
		return OutcomeInconclusive, nil
	}
	return OutcomeSucceeded, nil
}

// CaptureMap screenshots the current page view and writes it under dir as
// map_<searchID>_<timestamp>.png. Returns the bare file name.
func (s *Session) CaptureMap(ctx context.Context, dir, searchID string) (string, error) {
	data, err := s.page.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("capture map: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create maps dir: %w", err)
	}
	name := fmt.Sprintf("map_%s_%d.png", searchID, time.Now().Unix())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write map file: %w", err)
	}
	s.addDiagnostic("capture_map", OutcomeSucceeded, name)
	return name, nil
}
