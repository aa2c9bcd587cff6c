package runs

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	// In-memory databases are per connection; keep the pool at one.
	db.SetMaxOpenConns(1)

	err = InitSchema(db)
	require.NoError(t, err)

	return db
}

func sampleRun() *Run {
	return &Run{
		Months:         360,
		Paths:          1000,
		Seed:           42,
		ConfigJSON:     `{"months":360}`,
		SuccessRate:    0.92,
		MedianNetWorth: 850000,
		Pessimistic:    120000,
		Optimistic:     2400000,
	}
}

func TestCreateAssignsIdentity(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db, zerolog.Nop())

	created, err := repo.Create(sampleRun())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestGetRecentOrdering(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db, zerolog.Nop())

	first, err := repo.Create(sampleRun())
	require.NoError(t, err)

	// Backdate the first row so ordering is unambiguous.
	_, err = db.Exec(
		`UPDATE simulation_runs SET created_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-time.Hour).Format(timeLayout), first.ID,
	)
	require.NoError(t, err)

	second, err := repo.Create(sampleRun())
	require.NoError(t, err)

	recent, err := repo.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, first.ID, recent[1].ID)

	assert.Equal(t, 360, recent[0].Months)
	assert.Equal(t, uint64(42), recent[0].Seed)
	assert.InDelta(t, 0.92, recent[0].SuccessRate, 1e-9)
	assert.Equal(t, `{"months":360}`, recent[0].ConfigJSON)
}

func TestGetRecentLimit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db, zerolog.Nop())
	for i := 0; i < 5; i++ {
		_, err := repo.Create(sampleRun())
		require.NoError(t, err)
	}

	recent, err := repo.GetRecent(3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestDeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db, zerolog.Nop())

	old, err := repo.Create(sampleRun())
	require.NoError(t, err)
	_, err = db.Exec(
		`UPDATE simulation_runs SET created_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-100*24*time.Hour).Format(timeLayout), old.ID,
	)
	require.NoError(t, err)

	fresh, err := repo.Create(sampleRun())
	require.NoError(t, err)

	deleted, err := repo.DeleteOlderThan(time.Now().Add(-90 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	recent, err := repo.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, fresh.ID, recent[0].ID)
}

func TestCleanupJob(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db, zerolog.Nop())

	stale, err := repo.Create(sampleRun())
	require.NoError(t, err)
	_, err = db.Exec(
		`UPDATE simulation_runs SET created_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-40*24*time.Hour).Format(timeLayout), stale.ID,
	)
	require.NoError(t, err)

	job := NewCleanupJob(repo, 30, zerolog.Nop())
	assert.Equal(t, "runs_cleanup", job.Name())
	require.NoError(t, job.Run())

	recent, err := repo.GetRecent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
