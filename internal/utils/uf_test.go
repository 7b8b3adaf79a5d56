package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateUFCoversAllUnits(t *testing.T) {
	ufs := AllUFs()
	require.Len(t, ufs, 27)

	for _, uf := range ufs {
		name, ok := UFName(uf)
		require.True(t, ok, "no name for %s", uf)

		got, ok := StateUF(name)
		require.True(t, ok, "name %q did not resolve", name)
		assert.Equal(t, uf, got)
	}
}

func TestStateUFAccentInsensitive(t *testing.T) {
	cases := map[string]string{
		"São Paulo":      "SP",
		"SAO PAULO":      "SP",
		"Paraná":         "PR",
		"parana":         "PR",
		"Ceará":          "CE",
		"Espírito Santo": "ES",
		"goiás":          "GO",
		"  Amapá  ":      "AP",
	}
	for name, want := range cases {
		got, ok := StateUF(name)
		require.True(t, ok, "name %q did not resolve", name)
		assert.Equal(t, want, got, "name %q", name)
	}
}

func TestStateUFAcceptsAbbreviation(t *testing.T) {
	got, ok := StateUF("pr")
	require.True(t, ok)
	assert.Equal(t, "PR", got)
}

func TestStateUFUnknown(t *testing.T) {
	for _, name := range []string{"", "Atlantis", "XX", "Buenos Aires"} {
		_, ok := StateUF(name)
		assert.False(t, ok, "name %q should not resolve", name)
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "SAO JOSE DOS CAMPOS", NormalizeText("  São José dos Campos "))
	assert.Equal(t, "DOURADINA", NormalizeText("douradina"))
	assert.Equal(t, "", NormalizeText("   "))
}
