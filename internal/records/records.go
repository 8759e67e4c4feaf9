package records

import "time"

// MetricSnapshot is one body-metric reading. Snapshots are append-only; a user
// accumulates many over time and the newest one drives the dashboard figures.
// Age and gender are stored for historical reference but the live profile is
// the canonical source for both.
type MetricSnapshot struct {
	ID         string
	TenantID   string
	UserID     string
	WeightKg   float64
	HeightCm   float64
	Age        int
	Gender     string
	RecordedAt time.Time
	CreatedAt  time.Time
}

// MealRecord is a single logged meal. Several may fall on the same calendar
// day; day membership is derived from EatenAt.
type MealRecord struct {
	ID          string
	TenantID    string
	UserID      string
	Description string
	EatenAt     time.Time
	Calories    float64
	ProteinG    float64
	CarbsG      float64
	FatG        float64
}

// WorkoutRecord is one workout session, recorded at day granularity.
type WorkoutRecord struct {
	ID             string
	TenantID       string
	UserID         string
	WorkoutType    string
	Date           time.Time
	DurationMin    int
	CaloriesBurned float64
}

// NutritionTarget is an explicit daily intake goal with an active date range.
// EndDate nil means open-ended. At most one target is expected to be current
// for any given day; the store does not enforce this.
type NutritionTarget struct {
	ID            string
	TenantID      string
	UserID        string
	DailyCalories int
	DailyProtein  int
	DailyCarbs    int
	DailyFats     int
	DailyFiber    int
	DailySodium   int
	StartDate     time.Time
	EndDate       *time.Time
	IsActive      bool
}

// UserProfile carries the live demographic data used for BMR: age is computed
// from BirthDate at evaluation time rather than read from snapshot rows.
type UserProfile struct {
	UserID    string
	TenantID  string
	BirthDate time.Time
	Gender    string
}
