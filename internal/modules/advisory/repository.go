package advisory

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository persists advisory runs in advisory.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new advisory repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "advisory").Logger(),
	}
}

// Save stores one advisory run and returns its generated UUID.
func (r *Repository) Save(record StoredAdvisory) (string, error) {
	if record.UUID == "" {
		record.UUID = uuid.NewString()
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}

	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO advisories
			(uuid, location, season, soil_type, soil_source, model_type,
			 top_crop, confidence, overall_trust, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.UUID, record.Location, record.Season, record.SoilType,
		record.SoilSource, record.ModelType, record.TopCrop,
		record.Confidence, record.OverallTrust, record.Payload, record.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save advisory: %w", err)
	}
	return record.UUID, nil
}

// GetRecent returns the newest advisory runs, payload omitted.
func (r *Repository) GetRecent(limit int) ([]StoredAdvisory, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT uuid, location, season, soil_type, soil_source, model_type,
		       top_crop, confidence, overall_trust, created_at
		FROM advisories
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent advisories: %w", err)
	}
	defer rows.Close()

	var records []StoredAdvisory
	for rows.Next() {
		var rec StoredAdvisory
		if err := rows.Scan(
			&rec.UUID, &rec.Location, &rec.Season, &rec.SoilType,
			&rec.SoilSource, &rec.ModelType, &rec.TopCrop,
			&rec.Confidence, &rec.OverallTrust, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan advisory: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating advisories: %w", err)
	}
	return records, nil
}

// Get returns one advisory run including its full payload.
func (r *Repository) Get(id string) (*StoredAdvisory, error) {
	var rec StoredAdvisory
	err := r.db.QueryRow(`
		SELECT uuid, location, season, soil_type, soil_source, model_type,
		       top_crop, confidence, overall_trust, payload, created_at
		FROM advisories WHERE uuid = ?`, id).Scan(
		&rec.UUID, &rec.Location, &rec.Season, &rec.SoilType,
		&rec.SoilSource, &rec.ModelType, &rec.TopCrop,
		&rec.Confidence, &rec.OverallTrust, &rec.Payload, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get advisory: %w", err)
	}
	return &rec, nil
}
