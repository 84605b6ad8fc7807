// Package history provides access to the time-series database: daily mandi
// prices and daily weather observations. Backed by its own sqlite file so
// write-heavy series traffic never contends with the advisory databases.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/saitejamanchi/rythumitra/internal/domain"
)

// DB provides access to historical series data
type DB struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the history database at path.
func Open(path string, log zerolog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	h := &DB{db: conn, log: log.With().Str("component", "history_db").Logger()}
	if err := h.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return h, nil
}

// NewDB wraps an existing connection (used by tests).
func NewDB(db *sql.DB, log zerolog.Logger) (*DB, error) {
	h := &DB{db: db, log: log.With().Str("component", "history_db").Logger()}
	if err := h.ensureSchema(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *DB) ensureSchema() error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS price_history (
			commodity TEXT NOT NULL,
			date INTEGER NOT NULL,
			modal_price REAL NOT NULL,
			min_price REAL NOT NULL DEFAULT 0,
			max_price REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (commodity, date)
		);
		CREATE TABLE IF NOT EXISTS weather_history (
			location TEXT NOT NULL,
			date INTEGER NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (location, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (h *DB) Close() error {
	return h.db.Close()
}

// VacuumInto writes an atomic snapshot of the history database to destPath.
func (h *DB) VacuumInto(destPath string) error {
	if _, err := h.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("VACUUM INTO failed for history: %w", err)
	}
	return nil
}

// RecordPrice upserts one daily price point.
func (h *DB) RecordPrice(commodity string, day time.Time, modal, min, max float64) error {
	date := day.UTC().Truncate(24 * time.Hour).Unix()
	_, err := h.db.Exec(`
		INSERT OR REPLACE INTO price_history (commodity, date, modal_price, min_price, max_price)
		VALUES (?, ?, ?, ?, ?)`,
		commodity, date, modal, min, max,
	)
	if err != nil {
		return fmt.Errorf("failed to record price: %w", err)
	}
	return nil
}

// GetPriceSeries returns up to limit modal prices for a commodity in
// chronological order (oldest first), ready for indicator math.
func (h *DB) GetPriceSeries(commodity string, limit int) ([]float64, error) {
	rows, err := h.db.Query(`
		SELECT modal_price FROM price_history
		WHERE commodity = ?
		ORDER BY date DESC
		LIMIT ?`,
		commodity, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query price series: %w", err)
	}
	defer rows.Close()

	var series []float64
	for rows.Next() {
		var price float64
		if err := rows.Scan(&price); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		series = append(series, price)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price series: %w", err)
	}

	// Reverse to chronological order
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	return series, nil
}

// RecordWeatherDay stores one daily weather snapshot as a msgpack blob.
func (h *DB) RecordWeatherDay(location string, day time.Time, snapshot domain.WeatherSnapshot) error {
	blob, err := msgpack.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal weather snapshot: %w", err)
	}

	date := day.UTC().Truncate(24 * time.Hour).Unix()
	_, err = h.db.Exec(`
		INSERT OR REPLACE INTO weather_history (location, date, data)
		VALUES (?, ?, ?)`,
		location, date, blob,
	)
	if err != nil {
		return fmt.Errorf("failed to record weather day: %w", err)
	}
	return nil
}

// GetWeatherDays returns up to limit snapshots for a location, newest first.
func (h *DB) GetWeatherDays(location string, limit int) ([]domain.WeatherSnapshot, error) {
	rows, err := h.db.Query(`
		SELECT data FROM weather_history
		WHERE location = ?
		ORDER BY date DESC
		LIMIT ?`,
		location, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query weather history: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.WeatherSnapshot
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("failed to scan weather day: %w", err)
		}
		var snap domain.WeatherSnapshot
		if err := msgpack.Unmarshal(blob, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weather day: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weather history: %w", err)
	}
	return snapshots, nil
}

// Cleanup deletes series rows older than retentionDays and returns the
// number of rows removed.
func (h *DB) Cleanup(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Unix()
	var total int64

	for _, table := range []string{"price_history", "weather_history"} {
		result, err := h.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE date < ?", table), cutoff)
		if err != nil {
			return total, fmt.Errorf("failed to clean %s: %w", table, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			total += n
		}
	}

	h.log.Debug().Int64("rows", total).Int("retention_days", retentionDays).Msg("History cleanup done")
	return total, nil
}
