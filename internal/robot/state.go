package robot

import (
	"context"
	"fmt"
	"time"

	"github.com/eroview/sicar-api/internal/utils"
)

// mapClickFractions places each federative unit on the portal's Brazil map as
// a fraction of the map element's width and height. Calibrated against the
// portal's default viewport.
var mapClickFractions = map[string]struct{ X, Y float64 }{
	"AC": {0.15, 0.35},
	"AL": {0.80, 0.40},
	"AP": {0.55, 0.15},
	"AM": {0.25, 0.25},
	"BA": {0.75, 0.45},
	"CE": {0.80, 0.30},
	"DF": {0.60, 0.50},
	"ES": {0.75, 0.55},
	"GO": {0.57, 0.50},
	"MA": {0.68, 0.30},
	"MT": {0.45, 0.45},
	"MS": {0.48, 0.60},
	"MG": {0.68, 0.55},
	"PA": {0.50, 0.25},
	"PB": {0.85, 0.35},
	"PR": {0.55, 0.70},
	"PE": {0.82, 0.35},
	"PI": {0.72, 0.35},
	"RJ": {0.75, 0.60},
	"RN": {0.85, 0.30},
	"RS": {0.50, 0.85},
	"RO": {0.30, 0.40},
	"RR": {0.35, 0.15},
	"SC": {0.55, 0.80},
	"SP": {0.60, 0.65},
	"SE": {0.82, 0.40},
	"TO": {0.62, 0.40},
}

const stateSelectSelectors = `#selectEstado, select[id*="estado" i], select[name*="estado" i], select[name*="uf" i]`

func (s *Session) stateStrategies(target Target) []Strategy {
	return []Strategy{
		{
			Name:    "dropdown",
			Timeout: 15 * time.Second,
			Run:     func(ctx context.Context) (Outcome, error) { return s.selectStateDropdown(ctx, target) },
		},
		{
			Name:    "link_list",
			Timeout: 10 * time.Second,
			Run:     func(ctx context.Context) (Outcome, error) { return s.selectStateLink(ctx, target) },
		},
		{
			Name:    "map_click",
			Timeout: 15 * time.Second,
			Run:     func(ctx context.Context) (Outcome, error) { return s.selectStateMapClick(ctx, target) },
		},
		{
			Name:    "script",
			Timeout: 10 * time.Second,
			Run:     func(ctx context.Context) (Outcome, error) { return s.selectStateScript(ctx, target) },
		},
	}
}

// selectStateDropdown picks the state in the portal's select element and
// fires a change event so the page's own handlers run.
func (s *Session) selectStateDropdown(ctx context.Context, target Target) (Outcome, error) {
	if err := s.page.WaitForSelector(ctx, stateSelectSelectors); err != nil {
		return OutcomeFailed, err
	}

	script := fmt.Sprintf(`(function() {
		var select = document.querySelector(%q);
		if (!select) return false;
		var want = %q;
		var options = select.querySelectorAll('option');
		for (var i = 0; i < options.length; i++) {
			var text = options[i].textContent.normalize('NFD').replace(/[̀-ͯ]/g, '').toUpperCase().trim();
			if (text.indexOf(want) !== -1 || want.indexOf(text) !== -1) {
				select.value = options[i].value;
				select.dispatchEvent(new Event('change', { bubbles: true }));
				return true;
			}
		}
		return false;
	})()`, stateSelectSelectors, utils.NormalizeText(target.Name))

	result, err := s.page.ExecuteScript(ctx, script)
	if err != nil {
		return OutcomeFailed, err
	}
	if selected, ok := result.(bool); !ok || !selected {
		return OutcomeFailed, nil
	}
	if s.confirmSelection(ctx, target.UF, target.Name) {
		return OutcomeSucceeded, nil
	}
	return OutcomeInconclusive, nil
}

// selectStateLink clicks a state entry in a link list or table
func (s *Session) selectStateLink(ctx context.Context, target Target) (Outcome, error) {
	script := fmt.Sprintf(`(function() {
		var want = %q;
		var nodes = document.querySelectorAll('a, td, li');
		for (var i = 0; i < nodes.length; i++) {
			var text = nodes[i].textContent.normalize('NFD').replace(/[̀-ͯ]/g, '').toUpperCase().trim();
			if (text === want || text === %q) {
				nodes[i].click();
				return true;
			}
		}
		return false;
	})()`, utils.NormalizeText(target.Name), target.UF)

	result, err := s.page.ExecuteScript(ctx, script)
	if err != nil {
		return OutcomeFailed, err
	}
	if clicked, ok := result.(bool); !ok || !clicked {
		return OutcomeFailed, nil
	}
	if s.confirmSelection(ctx, target.UF, target.Name) {
		return OutcomeSucceeded, nil
	}
	return OutcomeInconclusive, nil
}

// selectStateMapClick clicks the state's position on the Brazil map using the
// proportional coordinate table, relative to the map element's bounding box.
func (s *Session) selectStateMapClick(ctx context.Context, target Target) (Outcome, error) {
	fractions, ok := mapClickFractions[target.UF]
	if !ok {
		return OutcomeFailed, fmt.Errorf("no map position for state %s", target.UF)
	}

	script := fmt.Sprintf(`(function() {
		var map = document.querySelector('svg, .leaflet-container, #mapContainer, map, img[usemap]');
		if (!map) return false;
		var rect = map.getBoundingClientRect();
		var x = rect.left + rect.width * %f;
		var y = rect.top + rect.height * %f;
		var el = document.elementFromPoint(x, y);
		if (!el) return false;
		var opts = { bubbles: true, cancelable: true, view: window, clientX: x, clientY: y };
		el.dispatchEvent(new MouseEvent('mousemove', opts));
		el.dispatchEvent(new MouseEvent('mousedown', opts));
		el.dispatchEvent(new MouseEvent('mouseup', opts));
		el.dispatchEvent(new MouseEvent('click', opts));
		return true;
	})()`, fractions.X, fractions.Y)

	result, err := s.page.ExecuteScript(ctx, script)
	if err != nil {
		return OutcomeFailed, err
	}
	if clicked, ok := result.(bool); !ok || !clicked {
		return OutcomeFailed, nil
	}
	if s.confirmSelection(ctx, target.UF, target.Name) {
		return OutcomeSucceeded, nil
	}
	return OutcomeInconclusive, nil
}

// selectStateScript tries the portal's own selection functions and known SVG
// node shapes as a last resort.
func (s *Session) selectStateScript(ctx context.Context, target Target) (Outcome, error) {
	script := fmt.Sprintf(`(function() {
		var uf = %q;
		var name = %q;
		try {
			if (typeof selecionarEstado === 'function') { selecionarEstado(uf); return true; }
			if (typeof selectState === 'function') { selectState(uf); return true; }

			var selectors = [
				'path[id="' + uf + '"]',
				'path[id="' + uf.toLowerCase() + '"]',
				'[id="' + uf + '"]',
				'[data-estado="' + uf + '"]',
				'[data-uf="' + uf + '"]',
				'[title="' + name + '"]'
			];
			for (var i = 0; i < selectors.length; i++) {
				var el = document.querySelector(selectors[i]);
				if (el) { el.click(); return true; }
			}
			return false;
		} catch (e) {
			return false;
		}
	})()`, target.UF, target.Name)

	result, err := s.page.ExecuteScript(ctx, script)
	if err != nil {
		return OutcomeFailed, err
	}
	if acted, ok := result.(bool); !ok || !acted {
		return OutcomeFailed, nil
	}
	if s.confirmSelection(ctx, target.UF, target.Name) {
		return OutcomeSucceeded, nil
	}
	return OutcomeInconclusive, nil
}
