// Package clientdata provides persistent caching for external API client
// responses. Payloads are stored as msgpack blobs with expiration timestamps
// for cache-first behavior; stale data remains readable as a fallback when
// the upstream API is down (stale data > no data).
package clientdata

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// AllTables lists all tables in cache.db for cleanup operations.
var AllTables = []string{
	"weather_forecast",
	"nasa_power",
	"market_prices",
	"soil_research",
}

// validTables is a set for O(1) table name validation.
var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Repository provides cache operations for client data.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// validateTable ensures the table name is in our allowed list.
// This prevents SQL injection through table names.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// Store saves data with expiration = now + ttl. Upserts by key.
func (r *Repository) Store(table, key string, data interface{}, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	blob, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (key, data, expires_at) VALUES (?, ?, ?)", table,
	)
	if _, err := r.db.Exec(query, key, blob, expiresAt); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// GetIfFresh returns the cached blob if it has not expired, or nil.
func (r *Repository) GetIfFresh(table, key string) ([]byte, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE key = ? AND expires_at > ?", table)

	var blob []byte
	err := r.db.QueryRow(query, key, time.Now().Unix()).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return blob, nil
}

// GetStale returns the cached blob regardless of expiration, or nil.
// Used as a degraded fallback when the upstream API fails.
func (r *Repository) GetStale(table, key string) ([]byte, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE key = ?", table)

	var blob []byte
	err := r.db.QueryRow(query, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stale cache entry: %w", err)
	}

	return blob, nil
}

// Decode unmarshals a cached blob into out.
func Decode(blob []byte, out interface{}) error {
	if err := msgpack.Unmarshal(blob, out); err != nil {
		return fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return nil
}

// CleanupExpired removes expired rows from every cache table and returns the
// total number of rows deleted.
func (r *Repository) CleanupExpired() (int64, error) {
	now := time.Now().Unix()
	var total int64

	for _, table := range AllTables {
		query := fmt.Sprintf("DELETE FROM %s WHERE expires_at <= ?", table)
		result, err := r.db.Exec(query, now)
		if err != nil {
			return total, fmt.Errorf("failed to clean %s: %w", table, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			total += n
		}
	}

	return total, nil
}
