package catalog

import "github.com/saitejamanchi/rythumitra/internal/domain"

// builtinProfiles is the authoritative crop catalog. Risk bases for the
// decision simulator live in the risk package; agronomic ranges live here.
// Values are hand-tuned for the Telangana/Andhra growing belt.
var builtinProfiles = []domain.CropProfile{
	{
		Name: "Cotton", NameTe: "పత్తి",
		Seasons:         []domain.Season{domain.SeasonKharif},
		SoilSuitability: []string{"Black Cotton", "Clay Loam"},
		PHMin:           6.0, PHMax: 8.5,
		MinTemp: 20, MaxTemp: 35,
		WaterNeeds: domain.LevelMedium, YieldPotential: domain.LevelHigh, Risk: domain.LevelHigh,
		NNeeds: domain.LevelHigh, PNeeds: domain.LevelMedium, KNeeds: domain.LevelMedium,
	},
	{
		Name: "Rice", NameTe: "వరి",
		Seasons:         []domain.Season{domain.SeasonKharif, domain.SeasonRabi},
		SoilSuitability: []string{"Alluvial", "Clay Loam", "Black Cotton"},
		PHMin:           5.5, PHMax: 7.5,
		MinTemp: 20, MaxTemp: 38,
		WaterNeeds: domain.LevelHigh, YieldPotential: domain.LevelHigh, Risk: domain.LevelMedium,
		NNeeds: domain.LevelHigh, PNeeds: domain.LevelMedium, KNeeds: domain.LevelHigh,
	},
	{
		Name: "Chilli", NameTe: "మిరప",
		Seasons:         []domain.Season{domain.SeasonKharif, domain.SeasonRabi},
		SoilSuitability: []string{"Black Cotton", "Red Loamy", "Sandy Loam"},
		PHMin:           6.0, PHMax: 7.5,
		MinTemp: 18, MaxTemp: 35,
		WaterNeeds: domain.LevelMedium, YieldPotential: domain.LevelHigh, Risk: domain.LevelHigh,
		NNeeds: domain.LevelMedium, PNeeds: domain.LevelMedium, KNeeds: domain.LevelHigh,
	},
	{
		Name: "Maize", NameTe: "మొక్కజొన్న",
		Seasons:         []domain.Season{domain.SeasonKharif, domain.SeasonRabi},
		SoilSuitability: []string{"Alluvial", "Red Loamy", "Sandy Loam"},
		PHMin:           5.5, PHMax: 7.5,
		MinTemp: 18, MaxTemp: 35,
		WaterNeeds: domain.LevelMedium, YieldPotential: domain.LevelHigh, Risk: domain.LevelLow,
		NNeeds: domain.LevelHigh, PNeeds: domain.LevelMedium, KNeeds: domain.LevelMedium,
	},
	{
		Name: "Ground Nuts", NameTe: "వేరుశనగ",
		Seasons:         []domain.Season{domain.SeasonKharif, domain.SeasonRabi},
		SoilSuitability: []string{"Red Sandy", "Sandy Loam", "Red Loamy"},
		PHMin:           6.0, PHMax: 7.5,
		MinTemp: 20, MaxTemp: 34,
		WaterNeeds: domain.LevelLow, YieldPotential: domain.LevelMedium, Risk: domain.LevelMedium,
		NNeeds: domain.LevelLow, PNeeds: domain.LevelHigh, KNeeds: domain.LevelMedium,
	},
	{
		Name: "Pulses", NameTe: "పప్పుధాన్యాలు",
		Seasons:         []domain.Season{domain.SeasonKharif, domain.SeasonRabi},
		SoilSuitability: []string{"Red Loamy", "Black Cotton", "Clay Loam"},
		PHMin:           6.0, PHMax: 8.0,
		MinTemp: 15, MaxTemp: 35,
		WaterNeeds: domain.LevelLow, YieldPotential: domain.LevelMedium, Risk: domain.LevelLow,
		NNeeds: domain.LevelLow, PNeeds: domain.LevelMedium, KNeeds: domain.LevelLow,
	},
	{
		Name: "Sugarcane", NameTe: "చెరకు",
		Seasons:         []domain.Season{domain.SeasonKharif, domain.SeasonZaid},
		SoilSuitability: []string{"Alluvial", "Black Cotton", "Clay Loam"},
		PHMin:           6.0, PHMax: 8.0,
		MinTemp: 20, MaxTemp: 38,
		WaterNeeds: domain.LevelHigh, YieldPotential: domain.LevelHigh, Risk: domain.LevelMedium,
		NNeeds: domain.LevelHigh, PNeeds: domain.LevelMedium, KNeeds: domain.LevelHigh,
	},
	{
		Name: "Tomato", NameTe: "టమాట",
		Seasons:         []domain.Season{domain.SeasonKharif, domain.SeasonRabi, domain.SeasonZaid},
		SoilSuitability: []string{"Red Loamy", "Sandy Loam", "Alluvial"},
		PHMin:           6.0, PHMax: 7.0,
		MinTemp: 15, MaxTemp: 32,
		WaterNeeds: domain.LevelMedium, YieldPotential: domain.LevelHigh, Risk: domain.LevelHigh,
		NNeeds: domain.LevelMedium, PNeeds: domain.LevelHigh, KNeeds: domain.LevelHigh,
	},
	{
		Name: "Turmeric", NameTe: "పసుపు",
		Seasons:         []domain.Season{domain.SeasonKharif},
		SoilSuitability: []string{"Red Loamy", "Clay Loam", "Alluvial"},
		PHMin:           5.5, PHMax: 7.5,
		MinTemp: 20, MaxTemp: 35,
		WaterNeeds: domain.LevelMedium, YieldPotential: domain.LevelMedium, Risk: domain.LevelMedium,
		NNeeds: domain.LevelMedium, PNeeds: domain.LevelMedium, KNeeds: domain.LevelHigh,
	},
	{
		Name: "Bengal Gram", NameTe: "శనగలు",
		Seasons:         []domain.Season{domain.SeasonRabi},
		SoilSuitability: []string{"Black Cotton", "Clay Loam"},
		PHMin:           6.0, PHMax: 8.5,
		MinTemp: 10, MaxTemp: 30,
		WaterNeeds: domain.LevelLow, YieldPotential: domain.LevelMedium, Risk: domain.LevelLow,
		NNeeds: domain.LevelLow, PNeeds: domain.LevelMedium, KNeeds: domain.LevelLow,
	},
	{
		Name: "Sunflower", NameTe: "పొద్దుతిరుగుడు",
		Seasons:         []domain.Season{domain.SeasonRabi, domain.SeasonZaid},
		SoilSuitability: []string{"Black Cotton", "Alluvial", "Red Loamy"},
		PHMin:           6.0, PHMax: 8.0,
		MinTemp: 15, MaxTemp: 35,
		WaterNeeds: domain.LevelLow, YieldPotential: domain.LevelMedium, Risk: domain.LevelMedium,
		NNeeds: domain.LevelMedium, PNeeds: domain.LevelMedium, KNeeds: domain.LevelMedium,
	},
	{
		Name: "Jowar", NameTe: "జొన్న",
		Seasons:         []domain.Season{domain.SeasonKharif, domain.SeasonRabi},
		SoilSuitability: []string{"Black Cotton", "Red Sandy", "Red Loamy"},
		PHMin:           5.5, PHMax: 8.5,
		MinTemp: 15, MaxTemp: 40,
		WaterNeeds: domain.LevelLow, YieldPotential: domain.LevelLow, Risk: domain.LevelLow,
		NNeeds: domain.LevelMedium, PNeeds: domain.LevelLow, KNeeds: domain.LevelLow,
	},
}

// builtinZones seeds the district soil lookup. Mandal-level overrides use a
// non-empty mandal; the district row is the fallback.
var builtinZones = []SoilZone{
	{District: "Guntur", SoilType: "Black Cotton", PH: 7.8, N: 210, P: 48, K: 310},
	{District: "Guntur", Mandal: "Tenali", SoilType: "Alluvial", PH: 7.2, N: 240, P: 52, K: 290},
	{District: "Krishna", SoilType: "Alluvial", PH: 7.0, N: 250, P: 55, K: 300},
	{District: "Prakasam", SoilType: "Red Loamy", PH: 6.8, N: 170, P: 35, K: 220},
	{District: "Kurnool", SoilType: "Black Cotton", PH: 8.0, N: 190, P: 40, K: 330},
	{District: "Anantapur", SoilType: "Red Sandy", PH: 6.5, N: 110, P: 22, K: 160},
	{District: "Warangal", SoilType: "Red Loamy", PH: 6.7, N: 160, P: 30, K: 210},
	{District: "Karimnagar", SoilType: "Red Loamy", PH: 6.9, N: 175, P: 38, K: 230},
	{District: "Nalgonda", SoilType: "Red Sandy", PH: 7.1, N: 130, P: 26, K: 180},
	{District: "Khammam", SoilType: "Red Loamy", PH: 6.6, N: 165, P: 33, K: 215},
	{District: "East Godavari", SoilType: "Alluvial", PH: 6.8, N: 260, P: 58, K: 310},
	{District: "West Godavari", SoilType: "Alluvial", PH: 7.0, N: 255, P: 56, K: 305},
	{District: "Nizamabad", SoilType: "Black Cotton", PH: 7.6, N: 200, P: 45, K: 300},
	{District: "Adilabad", SoilType: "Black Cotton", PH: 7.9, N: 185, P: 42, K: 315},
}
