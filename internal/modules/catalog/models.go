// Package catalog manages the static crop profile catalog and soil zone
// lookups. Profiles are seeded into catalog.db at startup and loaded once
// into memory; the pipeline only ever reads them.
package catalog

// SoilZone is a district/mandal soil lookup row.
type SoilZone struct {
	District string  `json:"district"`
	Mandal   string  `json:"mandal"`
	SoilType string  `json:"soil_type"`
	PH       float64 `json:"ph"`
	N        float64 `json:"n"`
	P        float64 `json:"p"`
	K        float64 `json:"k"`
}

// NitrogenFixers are crops that fix atmospheric nitrogen. The rule scorer
// grants them a bonus on nitrogen-poor soils.
var NitrogenFixers = map[string]bool{
	"Pulses":      true,
	"Ground Nuts": true,
}

// soilAliases maps common spellings/local names to canonical soil types.
var soilAliases = map[string][]string{
	"black":        {"Black Cotton"},
	"black cotton": {"Black Cotton"},
	"regur":        {"Black Cotton"},
	"red":          {"Red Sandy", "Red Loamy"},
	"red sandy":    {"Red Sandy"},
	"red loamy":    {"Red Loamy"},
	"alluvial":     {"Alluvial"},
	"delta":        {"Alluvial"},
	"sandy loam":   {"Sandy Loam"},
	"clay":         {"Clay Loam"},
	"clay loam":    {"Clay Loam"},
	"laterite":     {"Laterite"},
}
