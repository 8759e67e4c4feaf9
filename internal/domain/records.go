package domain

import "example.com/insights/internal/records"

// The record types live in internal/records so that analytics can consume
// them without importing this package (which itself imports analytics). The
// aliases below keep domain.MealRecord etc. as the canonical names for every
// other consumer.

// MetricSnapshot is one body-metric reading. Snapshots are append-only; a user
// accumulates many over time and the newest one drives the dashboard figures.
// Age and gender are stored for historical reference but the live profile is
// the canonical source for both.
type MetricSnapshot = records.MetricSnapshot

// MealRecord is a single logged meal. Several may fall on the same calendar
// day; day membership is derived from EatenAt.
type MealRecord = records.MealRecord

// WorkoutRecord is one workout session, recorded at day granularity.
type WorkoutRecord = records.WorkoutRecord

// NutritionTarget is an explicit daily intake goal with an active date range.
// EndDate nil means open-ended. At most one target is expected to be current
// for any given day; the store does not enforce this.
type NutritionTarget = records.NutritionTarget

// UserProfile carries the live demographic data used for BMR: age is computed
// from BirthDate at evaluation time rather than read from snapshot rows.
type UserProfile = records.UserProfile
