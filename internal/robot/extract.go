package robot

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/eroview/sicar-api/internal/models"
)

var (
	carCodeRe = regexp.MustCompile(`\b([A-Z]{2})-(\d{7})-([0-9A-F]{32})\b`)
	areaRe    = regexp.MustCompile(`(?i)([\d.,]+)\s*(?:ha|hectares?)`)
	nameRe    = regexp.MustCompile(`(?i)(?:im[oó]vel|propriedade|nome)\s*:?\s*(.+)`)
)

// ExtractProperty parses the portal's result panel out of the current page
// and fills the identification fields of a Property. Returns
// ErrNoPropertyDetails when no recognizable details are rendered.
func (s *Session) ExtractProperty(ctx context.Context) (*models.Property, error) {
	html, err := s.page.GetHTML(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	prop := &models.Property{}

	panels := doc.Find(resultIndicatorSelectors)
	if panels.Length() == 0 {
		panels = doc.Find("body")
	}
	panels.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if prop.CARCode == "" {
			if m := carCodeRe.FindString(text); m != "" {
				prop.CARCode = m
			}
		}
		if prop.AreaHectares == 0 {
			if m := areaRe.FindStringSubmatch(text); m != nil {
				prop.AreaHectares = parseArea(m[1])
			}
		}
		if prop.Name == "" {
			prop.Name = extractName(sel)
		}
		return prop.CARCode == "" || prop.AreaHectares == 0 || prop.Name == ""
	})

	if prop.CARCode == "" && prop.Name == "" && prop.AreaHectares == 0 {
		s.addDiagnostic("extract", OutcomeFailed, "no property details in result panel")
		return nil, ErrNoPropertyDetails
	}

	prop.Found = true
	s.addDiagnostic("extract", OutcomeSucceeded, prop.CARCode)
	return prop, nil
}

// extractName looks for a labeled property name inside the panel, trying
// definition lists and table rows before falling back to a labeled line.
func extractName(sel *goquery.Selection) string {
	name := ""
	sel.Find("dt, th, strong, b, label").EachWithBreak(func(_ int, label *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(label.Text()))
		if !strings.Contains(text, "nome") && !strings.Contains(text, "imóvel") && !strings.Contains(text, "imovel") {
			return true
		}
		value := strings.TrimSpace(label.Next().Text())
		if value != "" {
			name = value
			return false
		}
		return true
	})
	if name != "" {
		return name
	}
	for _, line := range strings.Split(sel.Text(), "\n") {
		if m := nameRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			candidate := strings.TrimSpace(m[1])
			if candidate != "" && !carCodeRe.MatchString(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// parseArea handles both Brazilian "1.234,56" and plain "1234.56" notations.
func parseArea(s string) float64 {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
