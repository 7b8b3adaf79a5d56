package robot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eroview/sicar-api/internal/utils"
)

const municipalitySelectSelectors = `#selectMunicipio, select[name*="munic" i], select[id*="munic" i]`

func (s *Session) municipalityStrategies(target Target) []Strategy {
	return []Strategy{
		{
			Name:    "dropdown",
			Timeout: 20 * time.Second,
			Run:     func(ctx context.Context) (Outcome, error) { return s.selectMunicipalityDropdown(ctx, target) },
		},
		{
			Name:    "link_list",
			Timeout: 10 * time.Second,
			Run:     func(ctx context.Context) (Outcome, error) { return s.selectMunicipalityLink(ctx, target) },
		},
	}
}

// MatchOption finds the option whose text best matches want. Comparison is
// accent and case insensitive, in three tiers: exact match, substring match
// in either direction, then first-token match. Returns the index of the
// matched option.
func MatchOption(options []string, want string) (int, bool) {
	target := utils.NormalizeText(want)
	if target == "" {
		return 0, false
	}

	normalized := make([]string, len(options))
	for i, opt := range options {
		normalized[i] = utils.NormalizeText(opt)
	}

	for i, opt := range normalized {
		if opt == target {
			return i, true
		}
	}
	for i, opt := range normalized {
		if opt == "" {
			continue
		}
		if strings.Contains(opt, target) || strings.Contains(target, opt) {
			return i, true
		}
	}
	wantToken := firstToken(target)
	for i, opt := range normalized {
		if opt != "" && firstToken(opt) == wantToken {
			return i, true
		}
	}
	return 0, false
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// selectMunicipalityDropdown reads the option texts from the municipality
// select, matches the wanted name on our side, then selects by index.
func (s *Session) selectMunicipalityDropdown(ctx context.Context, target Target) (Outcome, error) {
	if err := s.page.WaitForSelector(ctx, municipalitySelectSelectors); err != nil {
		return OutcomeFailed, err
	}

	listScript := fmt.Sprintf(`(function() {
		var select = document.querySelector(%q);
		if (!select) return "[]";
		var texts = [];
		var options = select.querySelectorAll('option');
		for (var i = 0; i < options.length; i++) {
			texts.push(options[i].textContent.trim());
		}
		return JSON.stringify(texts);
	})()`, municipalitySelectSelectors)

	result, err := s.page.ExecuteScript(ctx, listScript)
	if err != nil {
		return OutcomeFailed, err
	}
	raw, ok := result.(string)
	if !ok {
		return OutcomeFailed, fmt.Errorf("unexpected option list result %T", result)
	}
	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return OutcomeFailed, fmt.Errorf("parse option list: %w", err)
	}
	if len(options) == 0 {
		return OutcomeFailed, nil
	}

	index, ok := MatchOption(options, target.Name)
	if !ok {
		return OutcomeFailed, fmt.Errorf("municipality %q not among %d options", target.Name, len(options))
	}

	selectScript := fmt.Sprintf(`(function() {
		var select = document.querySelector(%q);
		if (!select) return false;
		var options = select.querySelectorAll('option');
		if (%d >= options.length) return false;
		select.value = options[%d].value;
		select.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	})()`, municipalitySelectSelectors, index, index)

	result, err = s.page.ExecuteScript(ctx, selectScript)
	if err != nil {
		return OutcomeFailed, err
	}
	if selected, sok := result.(bool); !sok || !selected {
		return OutcomeFailed, nil
	}
	if s.confirmSelection(ctx, "", target.Name) {
		return OutcomeSucceeded, nil
	}
	return OutcomeInconclusive, nil
}

// selectMunicipalityLink clicks a matching entry in a link list when the
// portal renders municipalities without a select element.
func (s *Session) selectMunicipalityLink(ctx context.Context, target Target) (Outcome, error) {
	script := fmt.Sprintf(`(function() {
		var want = %q;
		var nodes = document.querySelectorAll('a, td, li');
		for (var i = 0; i < nodes.length; i++) {
			var text = nodes[i].textContent.normalize('NFD').replace(/[̀-ͯ]/g, '').toUpperCase().trim();
			if (text === want) {
				nodes[i].click();
				return true;
			}
		}
		return false;
	})()`, utils.NormalizeText(target.Name))

	result, err := s.page.ExecuteScript(ctx, script)
	if err != nil {
		return OutcomeFailed, err
	}
	if clicked, ok := result.(bool); !ok || !clicked {
		return OutcomeFailed, nil
	}
	if s.confirmSelection(ctx, "", target.Name) {
		return OutcomeSucceeded, nil
	}
	return OutcomeInconclusive, nil
}
