package utils

import "strings"

// stateToUF maps accent-folded state names to their two-letter abbreviation.
// All 27 federative units are present; lookups fold accents first so informal
// variants like "Sao Paulo" and "SÃO PAULO" resolve to the same UF.
var stateToUF = map[string]string{
	"ACRE":                "AC",
	"ALAGOAS":             "AL",
	"AMAPA":               "AP",
	"AMAZONAS":            "AM",
	"BAHIA":               "BA",
	"CEARA":               "CE",
	"DISTRITO FEDERAL":    "DF",
	"ESPIRITO SANTO":      "ES",
	"GOIAS":               "GO",
	"MARANHAO":            "MA",
	"MATO GROSSO":         "MT",
	"MATO GROSSO DO SUL":  "MS",
	"MINAS GERAIS":        "MG",
	"PARA":                "PA",
	"PARAIBA":             "PB",
	"PARANA":              "PR",
	"PERNAMBUCO":          "PE",
	"PIAUI":               "PI",
	"RIO DE JANEIRO":      "RJ",
	"RIO GRANDE DO NORTE": "RN",
	"RIO GRANDE DO SUL":   "RS",
	"RONDONIA":            "RO",
	"RORAIMA":             "RR",
	"SANTA CATARINA":      "SC",
	"SAO PAULO":           "SP",
	"SERGIPE":             "SE",
	"TOCANTINS":           "TO",
}

// ufToState is the reverse of stateToUF with display names (no accents,
// matching the portal's uppercase rendering).
var ufToState = func() map[string]string {
	m := make(map[string]string, len(stateToUF))
	for name, uf := range stateToUF {
		m[uf] = name
	}
	return m
}()

// accentFold replaces Portuguese accented characters with their ASCII base.
var accentFold = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "ê", "e", "è", "e", "ë", "e",
	"í", "i", "î", "i", "ì", "i", "ï", "i",
	"ó", "o", "ô", "o", "õ", "o", "ò", "o", "ö", "o",
	"ú", "u", "û", "u", "ù", "u", "ü", "u",
	"ç", "c", "ñ", "n",
	"Á", "A", "À", "A", "Â", "A", "Ã", "A", "Ä", "A",
	"É", "E", "Ê", "E", "È", "E", "Ë", "E",
	"Í", "I", "Î", "I", "Ì", "I", "Ï", "I",
	"Ó", "O", "Ô", "O", "Õ", "O", "Ò", "O", "Ö", "O",
	"Ú", "U", "Û", "U", "Ù", "U", "Ü", "U",
	"Ç", "C", "Ñ", "N",
)

// NormalizeText folds accents, uppercases and collapses surrounding whitespace
func NormalizeText(s string) string {
	return strings.ToUpper(strings.TrimSpace(accentFold.Replace(s)))
}

// StateUF maps a state name to its UF abbreviation. Accent and case
// insensitive. The second return is false for unknown names.
func StateUF(name string) (string, bool) {
	normalized := NormalizeText(name)
	if uf, ok := stateToUF[normalized]; ok {
		return uf, true
	}
	// A two-letter input may already be a UF
	if len(normalized) == 2 {
		if _, ok := ufToState[normalized]; ok {
			return normalized, true
		}
	}
	return "", false
}

// UFName returns the uppercase state name for a UF abbreviation
func UFName(uf string) (string, bool) {
	name, ok := ufToState[strings.ToUpper(strings.TrimSpace(uf))]
	return name, ok
}

// AllUFs returns the 27 federative unit abbreviations
func AllUFs() []string {
	ufs := make([]string, 0, len(ufToState))
	for uf := range ufToState {
		ufs = append(ufs, uf)
	}
	return ufs
}
