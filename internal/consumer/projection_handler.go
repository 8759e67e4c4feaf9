package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/insights/internal/events"
	"example.com/insights/internal/observability"
)

// ProjectionHandler writes consumed events into the Postgres read-model
// tables the insights queries run against. Replays are idempotent: inserts
// conflict on the record id and are skipped.
type ProjectionHandler struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewProjectionHandler constructs a handler backed by the provided pool.
func NewProjectionHandler(pool *pgxpool.Pool) *ProjectionHandler {
	return &ProjectionHandler{
		pool:   pool,
		logger: log.New(log.Writer(), "[projector] ", log.LstdFlags),
	}
}

// Handle projects the event into its read-model table. Unknown event types
// are skipped so topic evolution upstream does not wedge the consumer.
func (h *ProjectionHandler) Handle(ctx context.Context, env Envelope) error {
	switch env.EventType {
	case events.TypeMealLogged:
		var evt events.MealLogged
		if err := json.Unmarshal(env.Payload, &evt); err != nil {
			return fmt.Errorf("unmarshal meal event: %w", err)
		}
		if err := h.projectMeal(ctx, evt); err != nil {
			return err
		}
		observability.RecordProjection("meal", evt.EatenAt)
		return nil
	case events.TypeWorkoutLogged:
		var evt events.WorkoutLogged
		if err := json.Unmarshal(env.Payload, &evt); err != nil {
			return fmt.Errorf("unmarshal workout event: %w", err)
		}
		if err := h.projectWorkout(ctx, evt); err != nil {
			return err
		}
		observability.RecordProjection("workout", evt.Date)
		return nil
	case events.TypeBodyMetricRecorded:
		var evt events.BodyMetricRecorded
		if err := json.Unmarshal(env.Payload, &evt); err != nil {
			return fmt.Errorf("unmarshal body metric event: %w", err)
		}
		if err := h.projectSnapshot(ctx, evt); err != nil {
			return err
		}
		observability.RecordProjection("snapshot", evt.RecordedAt)
		return nil
	default:
		h.logger.Printf("skipping unknown event_type=%s topic=%s", env.EventType, env.Topic)
		return nil
	}
}

func (h *ProjectionHandler) projectMeal(ctx context.Context, evt events.MealLogged) error {
	return h.inTenantTx(ctx, evt.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO meal_records (meal_id, tenant_id, user_id, description, eaten_at, calories, protein_g, carbs_g, fat_g)
             VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
             ON CONFLICT (meal_id) DO NOTHING`,
			evt.MealID, evt.TenantID, evt.UserID, evt.Description, evt.EatenAt,
			evt.Calories, evt.ProteinG, evt.CarbsG, evt.FatG,
		)
		return err
	})
}

func (h *ProjectionHandler) projectWorkout(ctx context.Context, evt events.WorkoutLogged) error {
	return h.inTenantTx(ctx, evt.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO workout_records (workout_id, tenant_id, user_id, workout_type, workout_date, duration_min, calories_burned)
             VALUES ($1,$2,$3,$4,$5,$6,$7)
             ON CONFLICT (workout_id) DO NOTHING`,
			evt.WorkoutID, evt.TenantID, evt.UserID, evt.WorkoutType, evt.Date,
			evt.DurationMin, evt.CaloriesBurned,
		)
		return err
	})
}

func (h *ProjectionHandler) projectSnapshot(ctx context.Context, evt events.BodyMetricRecorded) error {
	return h.inTenantTx(ctx, evt.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO metric_snapshots (snapshot_id, tenant_id, user_id, weight_kg, height_cm, age, gender, recorded_at)
             VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
             ON CONFLICT (snapshot_id) DO NOTHING`,
			evt.SnapshotID, evt.TenantID, evt.UserID, evt.WeightKg, evt.HeightCm,
			evt.Age, evt.Gender, evt.RecordedAt,
		)
		return err
	})
}

// inTenantTx runs fn in a transaction with app.tenant_id set for RLS.
func (h *ProjectionHandler) inTenantTx(ctx context.Context, tenantID string, fn func(pgx.Tx) error) error {
	conn, err := h.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
