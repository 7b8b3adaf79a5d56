package robot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultPanelHTML = `<html><body>
<div id="header">Consulta Pública</div>
<div class="resultado-consulta">
  <dl>
    <dt>Nome do Imóvel</dt>
    <dd>Fazenda Santa Maria</dd>
    <dt>Código CAR</dt>
    <dd>PR-4107207-79A269BEFA1443F9B06F8B7470D9F239</dd>
    <dt>Área</dt>
    <dd>128,5 ha</dd>
  </dl>
</div>
</body></html>`

func TestExtractPropertyFromResultPanel(t *testing.T) {
	page := &fakePage{html: resultPanelHTML}
	session := newTestSession(page)

	prop, err := session.ExtractProperty(context.Background())
	require.NoError(t, err)
	assert.True(t, prop.Found)
	assert.Equal(t, "Fazenda Santa Maria", prop.Name)
	assert.Equal(t, "PR-4107207-79A269BEFA1443F9B06F8B7470D9F239", prop.CARCode)
	assert.InDelta(t, 128.5, prop.AreaHectares, 0.001)
}

func TestExtractPropertyLabeledLines(t *testing.T) {
	// no structured panel: fields appear as labeled plain-text lines
	html := `<html><body>
Imóvel: Sítio Boa Vista
MT-5103403-0123456789ABCDEF0123456789ABCDEF
Área total: 1.234,56 hectares
</body></html>`
	page := &fakePage{html: html}
	session := newTestSession(page)

	prop, err := session.ExtractProperty(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sítio Boa Vista", prop.Name)
	assert.Equal(t, "MT-5103403-0123456789ABCDEF0123456789ABCDEF", prop.CARCode)
	assert.InDelta(t, 1234.56, prop.AreaHectares, 0.001)
}

func TestExtractPropertyNoDetails(t *testing.T) {
	page := &fakePage{html: `<html><body><div id="map"></div></body></html>`}
	session := newTestSession(page)

	_, err := session.ExtractProperty(context.Background())
	assert.ErrorIs(t, err, ErrNoPropertyDetails)

	diags := session.Diagnostics()
	require.NotEmpty(t, diags)
	assert.Equal(t, OutcomeFailed.String(), diags[len(diags)-1].Outcome)
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"128,5", 128.5},
		{"1.234,56", 1234.56},
		{"1234.56", 1234.56},
		{"42", 42},
		{"not-a-number", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, parseArea(tt.in), 0.0001, "parseArea(%q)", tt.in)
	}
}
