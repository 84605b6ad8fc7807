package soil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saitejamanchi/rythumitra/internal/clients/soilresearch"
	"github.com/saitejamanchi/rythumitra/internal/domain"
	"github.com/saitejamanchi/rythumitra/internal/modules/catalog"
	_ "modernc.org/sqlite"
)

func newTestRepo(t *testing.T) *catalog.Repository {
	t.Helper()

	db, err := sql.Open("sqlite", "file:soil_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS crop_profiles (
			name TEXT PRIMARY KEY, name_te TEXT NOT NULL DEFAULT '',
			seasons TEXT NOT NULL, soil_suitability TEXT NOT NULL,
			ph_min REAL NOT NULL, ph_max REAL NOT NULL,
			min_temp REAL NOT NULL, max_temp REAL NOT NULL,
			water_needs TEXT NOT NULL, yield_potential TEXT NOT NULL, risk TEXT NOT NULL,
			n_needs TEXT NOT NULL DEFAULT 'Medium',
			p_needs TEXT NOT NULL DEFAULT 'Medium',
			k_needs TEXT NOT NULL DEFAULT 'Medium'
		);
		CREATE TABLE IF NOT EXISTS soil_zones (
			district TEXT NOT NULL, mandal TEXT NOT NULL DEFAULT '',
			soil_type TEXT NOT NULL, ph REAL NOT NULL,
			n REAL NOT NULL, p REAL NOT NULL, k REAL NOT NULL,
			PRIMARY KEY (district, mandal)
		);`)
	require.NoError(t, err)

	repo := catalog.NewRepository(db, zerolog.Nop())
	require.NoError(t, repo.SyncFromBuiltin())
	return repo
}

type stubResearcher struct {
	result *soilresearch.Result
	err    error
	calls  int
}

func (s *stubResearcher) Research(ctx context.Context, district, mandal string) (*soilresearch.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestGetSoilInfo_SeededZone(t *testing.T) {
	svc := NewService(newTestRepo(t), nil, zerolog.Nop())

	info := svc.GetSoilInfo(context.Background(), "Guntur", "")

	assert.Equal(t, ResolvedZone, info.Resolution)
	assert.Equal(t, "Black Cotton", info.Params.SoilType)
	assert.Equal(t, domain.SoilSourceDatabase, info.Params.Source)
	assert.InDelta(t, 7.8, info.Params.PH, 0.001)
}

func TestGetSoilInfo_MandalFallsBackToDistrict(t *testing.T) {
	svc := NewService(newTestRepo(t), nil, zerolog.Nop())

	info := svc.GetSoilInfo(context.Background(), "Guntur", "Nowhere Mandal")

	assert.Equal(t, ResolvedZone, info.Resolution)
	assert.Equal(t, "Black Cotton", info.Params.SoilType)
}

func TestGetSoilInfo_ResearchedRegion(t *testing.T) {
	researcher := &stubResearcher{result: &soilresearch.Result{
		SoilType: "Laterite", PH: 5.8, N: 110, P: 22, K: 140,
	}}
	svc := NewService(newTestRepo(t), researcher, zerolog.Nop())

	info := svc.GetSoilInfo(context.Background(), "Araku Valley", "")

	assert.Equal(t, ResolvedResearched, info.Resolution)
	assert.Equal(t, "Laterite", info.Params.SoilType)
	assert.Equal(t, domain.SoilSourceAIResearched, info.Params.Source)
	assert.Equal(t, 1, researcher.calls)
}

func TestGetSoilInfo_ResearchFailureDegradesToDefault(t *testing.T) {
	researcher := &stubResearcher{err: fmt.Errorf("research service down")}
	svc := NewService(newTestRepo(t), researcher, zerolog.Nop())

	info := svc.GetSoilInfo(context.Background(), "Atlantis", "")

	assert.Equal(t, ResolvedDefault, info.Resolution)
	assert.Equal(t, "Red Loamy", info.Params.SoilType)
	assert.Equal(t, domain.SoilSourceAIResearched, info.Params.Source)
}

func TestGetSoilInfo_KnownZoneSkipsResearch(t *testing.T) {
	researcher := &stubResearcher{}
	svc := NewService(newTestRepo(t), researcher, zerolog.Nop())

	svc.GetSoilInfo(context.Background(), "Guntur", "")
	assert.Zero(t, researcher.calls)
}

func TestApplyOverrides_ManualSoilType(t *testing.T) {
	svc := NewService(newTestRepo(t), nil, zerolog.Nop())
	info := svc.GetSoilInfo(context.Background(), "Guntur", "")

	out, err := svc.ApplyOverrides(info, "Red Sandy", nil)
	require.NoError(t, err)

	assert.Equal(t, "Red Sandy", out.Params.SoilType)
	assert.Equal(t, domain.SoilSourceUserSelected, out.Params.Source)
	// Zone NPK survives a type-only override
	assert.Equal(t, info.Params.N, out.Params.N)
}

func TestApplyOverrides_SameTypeKeepsSource(t *testing.T) {
	svc := NewService(newTestRepo(t), nil, zerolog.Nop())
	info := svc.GetSoilInfo(context.Background(), "Guntur", "")

	out, err := svc.ApplyOverrides(info, "black cotton", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.SoilSourceDatabase, out.Params.Source)
}

func TestApplyOverrides_CustomNPKOutranksManualType(t *testing.T) {
	svc := NewService(newTestRepo(t), nil, zerolog.Nop())
	info := svc.GetSoilInfo(context.Background(), "Guntur", "")

	n, ph := 95.0, 6.2
	out, err := svc.ApplyOverrides(info, "Red Sandy", &CustomNPK{N: &n, PH: &ph})
	require.NoError(t, err)

	assert.Equal(t, domain.SoilSourceSoilReport, out.Params.Source)
	assert.Equal(t, 95.0, out.Params.N)
	assert.Equal(t, 6.2, out.Params.PH)
	assert.Equal(t, "Red Sandy", out.Params.SoilType)
	// Untouched values carry over from the zone record
	assert.Equal(t, info.Params.K, out.Params.K)
}

func TestApplyOverrides_RejectsInvalidValues(t *testing.T) {
	svc := NewService(newTestRepo(t), nil, zerolog.Nop())
	info := svc.GetSoilInfo(context.Background(), "Guntur", "")

	ph := 12.5
	_, err := svc.ApplyOverrides(info, "", &CustomNPK{PH: &ph})
	assert.Error(t, err)
}
