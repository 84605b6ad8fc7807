package catalog

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/saitejamanchi/rythumitra/internal/domain"
)

// Service serves the crop catalog from memory. Loaded once at startup and
// read-only afterwards, so it is safe for concurrent request handlers.
type Service struct {
	profiles []domain.CropProfile
	byName   map[string]domain.CropProfile
	log      zerolog.Logger
}

// NewService seeds the repository and loads the catalog into memory.
func NewService(repo *Repository, log zerolog.Logger) (*Service, error) {
	if err := repo.SyncFromBuiltin(); err != nil {
		return nil, fmt.Errorf("failed to sync catalog: %w", err)
	}

	profiles, err := repo.GetAllProfiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load crop profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("crop catalog is empty after sync")
	}

	byName := make(map[string]domain.CropProfile, len(profiles))
	for _, p := range profiles {
		byName[strings.ToLower(p.Name)] = p
	}

	log.Info().Int("crops", len(profiles)).Msg("Crop catalog loaded")

	return &Service{
		profiles: profiles,
		byName:   byName,
		log:      log.With().Str("service", "catalog").Logger(),
	}, nil
}

// All returns every profile in name order. Callers must not mutate entries.
func (s *Service) All() []domain.CropProfile {
	return s.profiles
}

// Get returns a profile by name (case-insensitive).
func (s *Service) Get(name string) (domain.CropProfile, bool) {
	p, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// CropNames returns the catalog crop names in order.
func (s *Service) CropNames() []string {
	names := make([]string, len(s.profiles))
	for i, p := range s.profiles {
		names[i] = p.Name
	}
	return names
}

// SoilAliases normalizes a raw soil type into the canonical names used by
// crop suitability lists. The raw name itself is always included.
func SoilAliases(soilType string) []string {
	raw := strings.TrimSpace(soilType)
	if raw == "" {
		return nil
	}

	aliases := []string{raw}
	key := strings.ToLower(raw)
	key = strings.TrimSuffix(key, " soil")
	for _, canonical := range soilAliases[key] {
		if !strings.EqualFold(canonical, raw) {
			aliases = append(aliases, canonical)
		}
	}
	return aliases
}
