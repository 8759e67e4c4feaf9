// Package events defines the cross-service event payloads the insights
// projector consumes.
package events

import "time"

// Event type values carried in the event_type Kafka header.
const (
	TypeMealLogged         = "meal.logged"
	TypeWorkoutLogged      = "workout.logged"
	TypeBodyMetricRecorded = "metrics.recorded"
)

// MealLogged is emitted by the nutrition service whenever a meal is recorded.
type MealLogged struct {
	MealID      string    `json:"meal_id"`
	TenantID    string    `json:"tenant_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description,omitempty"`
	EatenAt     time.Time `json:"eaten_at"`
	Calories    float64   `json:"calories"`
	ProteinG    float64   `json:"protein_g"`
	CarbsG      float64   `json:"carbs_g"`
	FatG        float64   `json:"fat_g"`
}

// WorkoutLogged is emitted by the workout service for each completed session.
type WorkoutLogged struct {
	WorkoutID      string    `json:"workout_id"`
	TenantID       string    `json:"tenant_id"`
	UserID         string    `json:"user_id"`
	WorkoutType    string    `json:"workout_type"`
	Date           time.Time `json:"date"`
	DurationMin    int       `json:"duration_min"`
	CaloriesBurned float64   `json:"calories_burned"`
}

// BodyMetricRecorded is emitted when a user logs a new body measurement.
type BodyMetricRecorded struct {
	SnapshotID string    `json:"snapshot_id"`
	TenantID   string    `json:"tenant_id"`
	UserID     string    `json:"user_id"`
	WeightKg   float64   `json:"weight_kg"`
	HeightCm   float64   `json:"height_cm"`
	Age        int       `json:"age"`
	Gender     string    `json:"gender,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
