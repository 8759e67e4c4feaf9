//go:build integration
// +build integration

package consumer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/insights/internal/events"
)

func TestProjectionHandlerProjectsMeal(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	handler := NewProjectionHandler(pool)

	evt := events.MealLogged{
		MealID:      uuid.NewString(),
		TenantID:    uuid.NewString(),
		UserID:      uuid.NewString(),
		Description: "breakfast",
		EatenAt:     time.Now().UTC().Truncate(time.Second),
		Calories:    420,
		ProteinG:    25,
		CarbsG:      50,
		FatG:        12,
	}
	payload, err := json.Marshal(evt)
	require.NoError(t, err)

	msg := Envelope{
		EventType: events.TypeMealLogged,
		TenantID:  evt.TenantID,
		Topic:     "meal_events",
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	require.NoError(t, handler.Handle(ctx, msg))
	// Replays must be idempotent.
	require.NoError(t, handler.Handle(ctx, msg))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM meal_records WHERE meal_id=$1`, evt.MealID).Scan(&count))
	require.Equal(t, 1, count)

	var calories float64
	require.NoError(t, pool.QueryRow(ctx, `SELECT calories FROM meal_records WHERE meal_id=$1`, evt.MealID).Scan(&calories))
	require.Equal(t, 420.0, calories)
}

func TestProjectionHandlerProjectsSnapshot(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	handler := NewProjectionHandler(pool)

	evt := events.BodyMetricRecorded{
		SnapshotID: uuid.NewString(),
		TenantID:   uuid.NewString(),
		UserID:     uuid.NewString(),
		WeightKg:   79.5,
		HeightCm:   180,
		Age:        31,
		Gender:     "female",
		RecordedAt: time.Now().UTC().Truncate(time.Second),
	}
	payload, err := json.Marshal(evt)
	require.NoError(t, err)

	require.NoError(t, handler.Handle(ctx, Envelope{
		EventType: events.TypeBodyMetricRecorded,
		TenantID:  evt.TenantID,
		Topic:     "body_metric_events",
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}))

	var weight float64
	require.NoError(t, pool.QueryRow(ctx, `SELECT weight_kg FROM metric_snapshots WHERE snapshot_id=$1`, evt.SnapshotID).Scan(&weight))
	require.Equal(t, 79.5, weight)
}

func TestProjectionHandlerSkipsUnknownEventType(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	handler := NewProjectionHandler(pool)

	require.NoError(t, handler.Handle(ctx, Envelope{
		EventType: "profile.archived",
		TenantID:  uuid.NewString(),
		Topic:     "meal_events",
		Payload:   json.RawMessage(`{}`),
	}))
}

func setupPostgres(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fitness"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var pool *pgxpool.Pool
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err = pgxpool.New(ctx, connStr)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		require.True(t, time.Now().Before(deadline), "postgres did not become ready: %v", err)
		time.Sleep(time.Second)
	}

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	migration := filepath.Join(filepath.Dir(file), "../../db/postgres/migrations/0001_init.up.sql")
	contents, err := os.ReadFile(migration)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(contents))
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pg.Terminate(ctx)
	}
	return pool, cleanup
}
