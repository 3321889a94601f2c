package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/oamaok/esportal-bets/database"
)

// setupTestStore spins up a PostgreSQL container, runs migrations and returns
// a store over a live connection. The container is torn down with the test.
func setupTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	labels := map[string]string{
		"test":      "esportal-bets-storage",
		"test-name": t.Name(),
		"timestamp": time.Now().Format("20060102-150405"),
	}

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("esportal_bets_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(labels),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("Warning: failed to terminate test container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrationsWithURL(connStr))

	db, err := database.NewConnection(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return NewPostgresStore(db)
}

func TestPostgresStore_EmptyTableStartsEmpty(t *testing.T) {
	store := setupTestStore(t)

	balances, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestPostgresStore_SaveLoadRoundtrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	want := map[string]int64{
		"alice": 1150,
		"bob":   700,
		"carol": 0,
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPostgresStore_SaveReplacesPreviousSnapshot(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, map[string]int64{"alice": 1000, "bob": 1000}))
	require.NoError(t, store.Save(ctx, map[string]int64{"alice": 1450}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"alice": 1450}, got)
}
