package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/insights/internal/domain"
)

// Repository provides Postgres-backed reads over the projected record tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// withTenant runs fn inside a transaction with app.tenant_id set for RLS.
func (r *Repository) withTenant(ctx context.Context, tenantID string, fn func(pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
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

// MetricSnapshots returns all snapshots created on or before the cutoff,
// newest first.
func (r *Repository) MetricSnapshots(ctx context.Context, tenantID, userID string, until time.Time) ([]domain.MetricSnapshot, error) {
	const query = `SELECT snapshot_id, tenant_id, user_id, weight_kg, height_cm, age, gender, recorded_at, created_at
        FROM metric_snapshots
        WHERE tenant_id=$1 AND user_id=$2 AND created_at <= $3
        ORDER BY created_at DESC, recorded_at DESC`

	var out []domain.MetricSnapshot
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID, userID, until)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var s domain.MetricSnapshot
			if err := rows.Scan(&s.ID, &s.TenantID, &s.UserID, &s.WeightKg, &s.HeightCm, &s.Age, &s.Gender, &s.RecordedAt, &s.CreatedAt); err != nil {
				return err
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MealsBetween returns meal records whose timestamps fall within [start, end].
func (r *Repository) MealsBetween(ctx context.Context, tenantID, userID string, start, end time.Time) ([]domain.MealRecord, error) {
	const query = `SELECT meal_id, tenant_id, user_id, description, eaten_at, calories, protein_g, carbs_g, fat_g
        FROM meal_records
        WHERE tenant_id=$1 AND user_id=$2 AND eaten_at BETWEEN $3 AND $4
        ORDER BY eaten_at`

	var out []domain.MealRecord
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID, userID, start, end)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var m domain.MealRecord
			if err := rows.Scan(&m.ID, &m.TenantID, &m.UserID, &m.Description, &m.EatenAt, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatG); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WorkoutsBetween returns workout records dated within [start, end].
func (r *Repository) WorkoutsBetween(ctx context.Context, tenantID, userID string, start, end time.Time) ([]domain.WorkoutRecord, error) {
	const query = `SELECT workout_id, tenant_id, user_id, workout_type, workout_date, duration_min, calories_burned
        FROM workout_records
        WHERE tenant_id=$1 AND user_id=$2 AND workout_date BETWEEN $3 AND $4
        ORDER BY workout_date`

	var out []domain.WorkoutRecord
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID, userID, start, end)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var w domain.WorkoutRecord
			if err := rows.Scan(&w.ID, &w.TenantID, &w.UserID, &w.WorkoutType, &w.Date, &w.DurationMin, &w.CaloriesBurned); err != nil {
				return err
			}
			out = append(out, w)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NutritionTargets returns all of a user's targets; the current-target
// selection happens in the analytics layer.
func (r *Repository) NutritionTargets(ctx context.Context, tenantID, userID string) ([]domain.NutritionTarget, error) {
	const query = `SELECT target_id, tenant_id, user_id, daily_calories, daily_protein, daily_carbs, daily_fats, daily_fiber, daily_sodium, start_date, end_date, is_active
        FROM nutrition_targets
        WHERE tenant_id=$1 AND user_id=$2
        ORDER BY start_date DESC`

	var out []domain.NutritionTarget
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t domain.NutritionTarget
			if err := rows.Scan(&t.ID, &t.TenantID, &t.UserID, &t.DailyCalories, &t.DailyProtein, &t.DailyCarbs, &t.DailyFats, &t.DailyFiber, &t.DailySodium, &t.StartDate, &t.EndDate, &t.IsActive); err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Profile fetches the user's live profile row.
func (r *Repository) Profile(ctx context.Context, tenantID, userID string) (*domain.UserProfile, error) {
	const query = `SELECT user_id, tenant_id, birth_date, gender
        FROM user_profiles WHERE tenant_id=$1 AND user_id=$2`

	var profile domain.UserProfile
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, tenantID, userID)
		if err := row.Scan(&profile.UserID, &profile.TenantID, &profile.BirthDate, &profile.Gender); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrProfileNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListMetricSnapshots pages through a user's snapshot history, newest first.
func (r *Repository) ListMetricSnapshots(ctx context.Context, tenantID, userID string, cursor *domain.Cursor, limit int) ([]domain.MetricSnapshot, *domain.Cursor, error) {
	args := []interface{}{tenantID, userID, limit}
	query := `SELECT snapshot_id, tenant_id, user_id, weight_kg, height_cm, age, gender, recorded_at, created_at
        FROM metric_snapshots WHERE tenant_id=$1 AND user_id=$2`

	if cursor != nil {
		query += ` AND (recorded_at, snapshot_id) < ($4, $5)`
		args = append(args, cursor.RecordedAt, cursor.ID)
	}

	query += ` ORDER BY recorded_at DESC, snapshot_id DESC LIMIT $3`

	var results []domain.MetricSnapshot
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var s domain.MetricSnapshot
			if err := rows.Scan(&s.ID, &s.TenantID, &s.UserID, &s.WeightKg, &s.HeightCm, &s.Age, &s.Gender, &s.RecordedAt, &s.CreatedAt); err != nil {
				return err
			}
			results = append(results, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if len(results) == limit && limit > 0 {
		last := results[len(results)-1]
		next = &domain.Cursor{RecordedAt: last.RecordedAt, ID: last.ID}
	}

	return results, next, nil
}
