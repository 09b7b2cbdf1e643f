package college_football

import (
	"html"
	"strings"
)

// Spellings ESPN uses that differ from the names people type
var teamNameCorrections = map[string]string{
	"San José State": "San Jose State",
	"Hawai'i":        "Hawaii",
	"Hawai‘i":        "Hawaii",
	"Hawaiʻi":        "Hawaii",
	"Miami (OH)":     "Miami OH",
}

// NormalizeTeamName converts an ESPN team location to its canonical spelling
func NormalizeTeamName(espnName string) string {
	name := strings.TrimSpace(html.UnescapeString(espnName))
	if corrected, ok := teamNameCorrections[name]; ok {
		return corrected
	}
	return name
}
