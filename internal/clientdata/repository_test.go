package clientdata

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file:clientdata_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, table := range AllTables {
		_, err := db.Exec("CREATE TABLE IF NOT EXISTS " + table + " (key TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL)")
		require.NoError(t, err)
		_, err = db.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}

	return db
}

type samplePayload struct {
	Value float64 `msgpack:"value"`
	Name  string  `msgpack:"name"`
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	payload := samplePayload{Value: 42.5, Name: "guntur"}
	require.NoError(t, repo.Store("market_prices", "cotton:guntur", payload, time.Hour))

	blob, err := repo.GetIfFresh("market_prices", "cotton:guntur")
	require.NoError(t, err)
	require.NotNil(t, blob)

	var decoded samplePayload
	require.NoError(t, Decode(blob, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestGetIfFresh_Expired(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store("weather_forecast", "16.3:80.4", samplePayload{Value: 1}, -time.Minute))

	blob, err := repo.GetIfFresh("weather_forecast", "16.3:80.4")
	require.NoError(t, err)
	assert.Nil(t, blob)

	// Stale read still works as degraded fallback
	stale, err := repo.GetStale("weather_forecast", "16.3:80.4")
	require.NoError(t, err)
	assert.NotNil(t, stale)
}

func TestGetIfFresh_Miss(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	blob, err := repo.GetIfFresh("nasa_power", "missing")
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestInvalidTable(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	err := repo.Store("recommendations; DROP TABLE", "k", samplePayload{}, time.Hour)
	assert.Error(t, err)

	_, err = repo.GetIfFresh("unknown_table", "k")
	assert.Error(t, err)
}

func TestCleanupExpired(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store("market_prices", "fresh", samplePayload{Value: 1}, time.Hour))
	require.NoError(t, repo.Store("market_prices", "stale", samplePayload{Value: 2}, -time.Hour))
	require.NoError(t, repo.Store("nasa_power", "stale", samplePayload{Value: 3}, -time.Hour))

	deleted, err := repo.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	blob, err := repo.GetStale("market_prices", "fresh")
	require.NoError(t, err)
	assert.NotNil(t, blob)
}
