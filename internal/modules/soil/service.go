// Package soil resolves soil parameters for a location: seeded zone lookup
// first, external research for unknown regions, manual overrides on top.
package soil

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/clients/soilresearch"
	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/modules/catalog"
)

// Resolution tags how the soil record was obtained.
const (
	ResolvedZone       = "zone"
	ResolvedResearched = "researched"
	ResolvedDefault    = "default"
)

// Info is a resolved soil record plus its provenance.
type Info struct {
	Params     domain.SoilParams `json:"params"`
	District   string            `json:"district"`
	Mandal     string            `json:"mandal,omitempty"`
	Resolution string            `json:"resolution"`
}

// Researcher looks up soil characteristics for regions missing from the zone
// table. Implemented by the soil research client.
type Researcher interface {
	Research(ctx context.Context, district, mandal string) (*soilresearch.Result, error)
}

// defaultRecord is the degraded fallback for completely unknown regions:
// red loamy mid-fertility soil, the most common profile across the state.
var defaultRecord = soilresearch.Result{
	SoilType: "Red Loamy",
	PH:       6.8,
	N:        150,
	P:        32,
	K:        190,
}

// Service resolves soil records. Safe for concurrent use.
type Service struct {
	repo       *catalog.Repository
	researcher Researcher
	log        zerolog.Logger
}

// NewService creates the soil provider. researcher may be nil; unknown
// regions then go straight to the default record.
func NewService(repo *catalog.Repository, researcher Researcher, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		researcher: researcher,
		log:        log.With().Str("service", "soil").Logger(),
	}
}

// GetSoilInfo resolves soil parameters for a district/mandal. Lookup order:
// seeded zone table (mandal, then district), external research, regional
// default. Research failures degrade silently; this never returns an error
// for an unknown region.
func (s *Service) GetSoilInfo(ctx context.Context, district, mandal string) Info {
	district = strings.TrimSpace(district)
	mandal = strings.TrimSpace(mandal)

	if zone, err := s.repo.GetZone(district, mandal); err != nil {
		s.log.Error().Err(err).Str("district", district).Msg("Zone lookup failed")
	} else if zone != nil {
		params, err := domain.NewSoilParams(zone.SoilType, zone.PH, zone.N, zone.P, zone.K, domain.SoilSourceDatabase)
		if err == nil {
			return Info{Params: params, District: district, Mandal: mandal, Resolution: ResolvedZone}
		}
		s.log.Warn().Err(err).Str("district", district).Msg("Seeded zone has invalid values")
	}

	if s.researcher != nil {
		if result, err := s.researcher.Research(ctx, district, mandal); err != nil {
			s.log.Warn().Err(err).Str("district", district).Msg("Soil research failed, using default record")
		} else if params, perr := domain.NewSoilParams(result.SoilType, result.PH, result.N, result.P, result.K, domain.SoilSourceAIResearched); perr == nil {
			return Info{Params: params, District: district, Mandal: mandal, Resolution: ResolvedResearched}
		}
	}

	params, _ := domain.NewSoilParams(
		defaultRecord.SoilType, defaultRecord.PH, defaultRecord.N, defaultRecord.P, defaultRecord.K,
		domain.SoilSourceAIResearched,
	)
	return Info{Params: params, District: district, Mandal: mandal, Resolution: ResolvedDefault}
}

// CustomNPK is an optional request-level override carrying soil test values.
type CustomNPK struct {
	N  *float64 `json:"n,omitempty"`
	PH *float64 `json:"ph,omitempty"`
	P  *float64 `json:"p,omitempty"`
	K  *float64 `json:"k,omitempty"`
}

// ApplyOverrides layers manual choices over a resolved record.
// A manual soil type re-tags the record user_selected; custom NPK values
// (from a soil test report) re-tag it soil_report, which outranks both.
func (s *Service) ApplyOverrides(info Info, manualSoilType string, custom *CustomNPK) (Info, error) {
	soilType := info.Params.SoilType
	source := info.Params.Source
	ph, n, p, k := info.Params.PH, info.Params.N, info.Params.P, info.Params.K

	if manual := strings.TrimSpace(manualSoilType); manual != "" && !strings.EqualFold(manual, soilType) {
		soilType = manual
		source = domain.SoilSourceUserSelected
	}

	if custom != nil {
		if custom.PH != nil {
			ph = *custom.PH
		}
		if custom.N != nil {
			n = *custom.N
		}
		if custom.P != nil {
			p = *custom.P
		}
		if custom.K != nil {
			k = *custom.K
		}
		if custom.PH != nil || custom.N != nil || custom.P != nil || custom.K != nil {
			source = domain.SoilSourceSoilReport
		}
	}

	params, err := domain.NewSoilParams(soilType, ph, n, p, k, source)
	if err != nil {
		return Info{}, err
	}

	info.Params = params
	return info, nil
}
