//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/insights/internal/domain"
)

func TestRepositoryReadsAndTenantIsolation(t *testing.T) {
	ctx := context.Background()

	pool := startPostgres(t, ctx)
	repo := NewRepository(pool)

	tenantID := uuid.NewString()
	userID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)

	mealID := uuid.NewString()
	_, err := pool.Exec(ctx,
		`INSERT INTO meal_records (meal_id, tenant_id, user_id, description, eaten_at, calories, protein_g, carbs_g, fat_g)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		mealID, tenantID, userID, "lunch", now.Add(-2*time.Hour), 650.0, 40.0, 70.0, 22.0)
	require.NoError(t, err)

	meals, err := repo.MealsBetween(ctx, tenantID, userID, now.AddDate(0, 0, -1), now)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	require.Equal(t, mealID, meals[0].ID)
	require.Equal(t, 650.0, meals[0].Calories)

	otherTenant, err := repo.MealsBetween(ctx, uuid.NewString(), userID, now.AddDate(0, 0, -1), now)
	require.NoError(t, err)
	require.Empty(t, otherTenant, "cross-tenant reads must come back empty")
}

func TestRepositoryProfileNotFound(t *testing.T) {
	ctx := context.Background()

	pool := startPostgres(t, ctx)
	repo := NewRepository(pool)

	_, err := repo.Profile(ctx, uuid.NewString(), uuid.NewString())
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestRepositoryListMetricSnapshotsPaginates(t *testing.T) {
	ctx := context.Background()

	pool := startPostgres(t, ctx)
	repo := NewRepository(pool)

	tenantID := uuid.NewString()
	userID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		_, err := pool.Exec(ctx,
			`INSERT INTO metric_snapshots (snapshot_id, tenant_id, user_id, weight_kg, height_cm, age, gender, recorded_at)
             VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			uuid.NewString(), tenantID, userID, 80.0-float64(i), 180.0, 30, "male", base.Add(-time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
	}

	first, cursor, err := repo.ListMetricSnapshots(ctx, tenantID, userID, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, cursor)
	require.Equal(t, 80.0, first[0].WeightKg, "newest snapshot first")

	rest, _, err := repo.ListMetricSnapshots(ctx, tenantID, userID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, 78.0, rest[0].WeightKg)
}

func startPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fitness"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	path := resolvePath(t, "../../../db/postgres/migrations/0001_init.up.sql")
	contents, readErr := os.ReadFile(path)
	require.NoError(t, readErr)

	_, execErr := pool.Exec(ctx, string(contents))
	require.NoError(t, execErr)
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
