package catalog

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/utils"
)

// Repository persists crop profiles and soil zones in catalog.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new catalog repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "catalog").Logger(),
	}
}

// SyncFromBuiltin upserts the built-in catalog into the database.
// Run once at startup so the catalog survives for offline inspection and
// ad-hoc SQL, while requests are served from memory.
func (r *Repository) SyncFromBuiltin() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin catalog sync: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range builtinProfiles {
		seasons := make([]string, len(p.Seasons))
		for i, s := range p.Seasons {
			seasons[i] = string(s)
		}
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO crop_profiles
			(name, name_te, seasons, soil_suitability, ph_min, ph_max, min_temp, max_temp,
			 water_needs, yield_potential, risk, n_needs, p_needs, k_needs)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Name, p.NameTe, utils.JoinCSV(seasons), utils.JoinCSV(p.SoilSuitability),
			p.PHMin, p.PHMax, p.MinTemp, p.MaxTemp,
			string(p.WaterNeeds), string(p.YieldPotential), string(p.Risk),
			string(p.NNeeds), string(p.PNeeds), string(p.KNeeds),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert crop profile %s: %w", p.Name, err)
		}
	}

	for _, z := range builtinZones {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO soil_zones (district, mandal, soil_type, ph, n, p, k)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			z.District, z.Mandal, z.SoilType, z.PH, z.N, z.P, z.K,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert soil zone %s/%s: %w", z.District, z.Mandal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog sync: %w", err)
	}

	r.log.Info().
		Int("profiles", len(builtinProfiles)).
		Int("zones", len(builtinZones)).
		Msg("Catalog synced from builtin data")

	return nil
}

// GetAllProfiles loads every crop profile ordered by name.
func (r *Repository) GetAllProfiles() ([]domain.CropProfile, error) {
	rows, err := r.db.Query(`
		SELECT name, name_te, seasons, soil_suitability, ph_min, ph_max, min_temp, max_temp,
		       water_needs, yield_potential, risk, n_needs, p_needs, k_needs
		FROM crop_profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query crop profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.CropProfile
	for rows.Next() {
		var p domain.CropProfile
		var seasons, suitability, water, yield, risk, nn, pn, kn string
		if err := rows.Scan(&p.Name, &p.NameTe, &seasons, &suitability,
			&p.PHMin, &p.PHMax, &p.MinTemp, &p.MaxTemp,
			&water, &yield, &risk, &nn, &pn, &kn); err != nil {
			return nil, fmt.Errorf("failed to scan crop profile: %w", err)
		}
		for _, s := range utils.ParseCSV(seasons) {
			p.Seasons = append(p.Seasons, domain.Season(s))
		}
		p.SoilSuitability = utils.ParseCSV(suitability)
		p.WaterNeeds = domain.Level(water)
		p.YieldPotential = domain.Level(yield)
		p.Risk = domain.Level(risk)
		p.NNeeds = domain.Level(nn)
		p.PNeeds = domain.Level(pn)
		p.KNeeds = domain.Level(kn)
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// GetZone looks up a soil zone by district and mandal, falling back to the
// district-level row when the mandal has no override.
func (r *Repository) GetZone(district, mandal string) (*SoilZone, error) {
	var z SoilZone
	err := r.db.QueryRow(`
		SELECT district, mandal, soil_type, ph, n, p, k FROM soil_zones
		WHERE district = ? AND mandal = ?`, district, mandal).
		Scan(&z.District, &z.Mandal, &z.SoilType, &z.PH, &z.N, &z.P, &z.K)
	if err == sql.ErrNoRows && mandal != "" {
		return r.GetZone(district, "")
	}
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query soil zone: %w", err)
	}
	return &z, nil
}
