// Package domain defines the business logic for the insights service.
package domain

import (
	"context"
	"errors"
	"time"

	"example.com/insights/internal/analytics"
)

// ErrProfileNotFound is returned by repositories when a user has no profile
// row. The service degrades to snapshot demographics in that case.
var ErrProfileNotFound = errors.New("user profile not found")

// Cursor models the pagination token for snapshot history listings.
type Cursor struct {
	RecordedAt time.Time
	ID         string
}

// Repository captures the read-model queries the insights service needs. All
// collection queries are batched over a whole window — the day-by-day streak
// scan happens in memory, never as one query per day.
type Repository interface {
	MetricSnapshots(ctx context.Context, tenantID, userID string, until time.Time) ([]MetricSnapshot, error)
	MealsBetween(ctx context.Context, tenantID, userID string, start, end time.Time) ([]MealRecord, error)
	WorkoutsBetween(ctx context.Context, tenantID, userID string, start, end time.Time) ([]WorkoutRecord, error)
	NutritionTargets(ctx context.Context, tenantID, userID string) ([]NutritionTarget, error)
	Profile(ctx context.Context, tenantID, userID string) (*UserProfile, error)
	ListMetricSnapshots(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]MetricSnapshot, *Cursor, error)
}

// Service orchestrates fetching record collections and running the analytics
// routines over them.
type Service struct {
	repo Repository
	now  func() time.Time
}

// Option configures optional Service behaviour.
type Option func(*Service)

// WithClock overrides the reference clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuickStats groups the dashboard headline figures.
type QuickStats struct {
	BodyMetrics      analytics.BodyMetrics
	WeeklyAverages   analytics.PeriodSummary
	MonthlyAverages  analytics.PeriodSummary
	WorkoutFrequency analytics.WorkoutFrequency
	Streaks          analytics.Streaks
}

// TodaySummary pairs today's summed intake with the resolved daily targets.
type TodaySummary struct {
	Intake  analytics.IntakeSummary
	Targets analytics.Targets
}

// DailyProgress is the gap-filled chart series with its resolved bounds.
type DailyProgress struct {
	Range  analytics.DateRange
	Points []analytics.DailyProgressPoint
}

// GetQuickStats assembles body metrics, rolling averages, workout frequency
// and streaks. Period selects the frequency window: "monthly" means 30 days,
// anything else 7. One 365-day fetch per collection covers the averaging
// windows and the full streak scan range.
func (s *Service) GetQuickStats(ctx context.Context, tenantID, userID, period string) (QuickStats, error) {
	now := s.now()
	today := analytics.Day(now)
	frequencyDays := 7
	if period == "monthly" {
		frequencyDays = 30
	}

	scanStart := today.AddDate(0, 0, -analytics.MaxStreakDays)
	meals, err := s.repo.MealsBetween(ctx, tenantID, userID, scanStart, endOfDay(today))
	if err != nil {
		return QuickStats{}, err
	}
	workouts, err := s.repo.WorkoutsBetween(ctx, tenantID, userID, scanStart, today)
	if err != nil {
		return QuickStats{}, err
	}
	snapshots, err := s.repo.MetricSnapshots(ctx, tenantID, userID, now)
	if err != nil {
		return QuickStats{}, err
	}
	profile, err := s.profile(ctx, tenantID, userID)
	if err != nil {
		return QuickStats{}, err
	}
	targets, err := s.repo.NutritionTargets(ctx, tenantID, userID)
	if err != nil {
		return QuickStats{}, err
	}

	metrics := analytics.ResolveBodyMetrics(snapshots, profile, now)
	target := analytics.ResolveTargets(targets, today, metrics)

	weeklyMeals, weeklyWorkouts := windowed(meals, workouts, today, 7)
	monthlyMeals, monthlyWorkouts := windowed(meals, workouts, today, 30)
	frequencyWorkouts := weeklyWorkouts
	if frequencyDays == 30 {
		frequencyWorkouts = monthlyWorkouts
	}

	return QuickStats{
		BodyMetrics:      metrics,
		WeeklyAverages:   analytics.SummarizePeriod(weeklyMeals, weeklyWorkouts, 7),
		MonthlyAverages:  analytics.SummarizePeriod(monthlyMeals, monthlyWorkouts, 30),
		WorkoutFrequency: analytics.SummarizeWorkoutFrequency(frequencyWorkouts, frequencyDays),
		Streaks:          analytics.CalculateStreaks(analytics.BuildStreakHistory(meals, workouts), target, today),
	}, nil
}

// GetDailyProgress builds the gap-filled daily series for the resolved range.
// The range specifier keeps its lenient semantics: only a fully unparseable
// explicit pair is an error.
func (s *Service) GetDailyProgress(ctx context.Context, tenantID, userID, rangeSpec string) (DailyProgress, error) {
	now := s.now()
	rng, err := analytics.ResolveDateRange(rangeSpec, now)
	if err != nil {
		return DailyProgress{}, err
	}

	meals, err := s.repo.MealsBetween(ctx, tenantID, userID, rng.Start, endOfDay(rng.End))
	if err != nil {
		return DailyProgress{}, err
	}
	workouts, err := s.repo.WorkoutsBetween(ctx, tenantID, userID, rng.Start, rng.End)
	if err != nil {
		return DailyProgress{}, err
	}
	// Snapshots from before the range seed the carry-forward weight.
	snapshots, err := s.repo.MetricSnapshots(ctx, tenantID, userID, endOfDay(rng.End))
	if err != nil {
		return DailyProgress{}, err
	}

	return DailyProgress{
		Range:  rng,
		Points: analytics.BuildDailySeries(meals, workouts, snapshots, rng),
	}, nil
}

// GetTodaySummary sums today's intake and resolves the effective targets.
func (s *Service) GetTodaySummary(ctx context.Context, tenantID, userID string) (TodaySummary, error) {
	now := s.now()
	today := analytics.Day(now)

	meals, err := s.repo.MealsBetween(ctx, tenantID, userID, today, endOfDay(today))
	if err != nil {
		return TodaySummary{}, err
	}
	snapshots, err := s.repo.MetricSnapshots(ctx, tenantID, userID, now)
	if err != nil {
		return TodaySummary{}, err
	}
	profile, err := s.profile(ctx, tenantID, userID)
	if err != nil {
		return TodaySummary{}, err
	}
	targets, err := s.repo.NutritionTargets(ctx, tenantID, userID)
	if err != nil {
		return TodaySummary{}, err
	}

	metrics := analytics.ResolveBodyMetrics(snapshots, profile, now)
	return TodaySummary{
		Intake:  analytics.SummarizeIntake(meals),
		Targets: analytics.ResolveTargets(targets, today, metrics),
	}, nil
}

// GetNutritionSummary builds the period nutrition report for the range.
func (s *Service) GetNutritionSummary(ctx context.Context, tenantID, userID, rangeSpec string) (analytics.NutritionReport, analytics.DateRange, error) {
	now := s.now()
	rng, err := analytics.ResolveDateRange(rangeSpec, now)
	if err != nil {
		return analytics.NutritionReport{}, analytics.DateRange{}, err
	}

	meals, err := s.repo.MealsBetween(ctx, tenantID, userID, rng.Start, endOfDay(rng.End))
	if err != nil {
		return analytics.NutritionReport{}, analytics.DateRange{}, err
	}
	snapshots, err := s.repo.MetricSnapshots(ctx, tenantID, userID, now)
	if err != nil {
		return analytics.NutritionReport{}, analytics.DateRange{}, err
	}
	profile, err := s.profile(ctx, tenantID, userID)
	if err != nil {
		return analytics.NutritionReport{}, analytics.DateRange{}, err
	}
	targets, err := s.repo.NutritionTargets(ctx, tenantID, userID)
	if err != nil {
		return analytics.NutritionReport{}, analytics.DateRange{}, err
	}

	metrics := analytics.ResolveBodyMetrics(snapshots, profile, now)
	target := analytics.ResolveTargets(targets, analytics.Day(now), metrics)
	return analytics.BuildNutritionReport(meals, rng, target), rng, nil
}

// GetWorkoutSummary builds the period workout report for the range.
func (s *Service) GetWorkoutSummary(ctx context.Context, tenantID, userID, rangeSpec string) (analytics.WorkoutReport, analytics.DateRange, error) {
	now := s.now()
	rng, err := analytics.ResolveDateRange(rangeSpec, now)
	if err != nil {
		return analytics.WorkoutReport{}, analytics.DateRange{}, err
	}

	workouts, err := s.repo.WorkoutsBetween(ctx, tenantID, userID, rng.Start, rng.End)
	if err != nil {
		return analytics.WorkoutReport{}, analytics.DateRange{}, err
	}

	return analytics.BuildWorkoutReport(workouts, rng), rng, nil
}

// profile fetches the user profile, treating a missing row as absent data
// rather than a failure.
func (s *Service) profile(ctx context.Context, tenantID, userID string) (*UserProfile, error) {
	profile, err := s.repo.Profile(ctx, tenantID, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, nil
	}
	return profile, err
}

// ListMetricSnapshots pages through a user's snapshot history, newest first.
func (s *Service) ListMetricSnapshots(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]MetricSnapshot, *Cursor, error) {
	return s.repo.ListMetricSnapshots(ctx, tenantID, userID, cursor, limit)
}

// windowed filters meals and workouts down to the lookback days ending today.
func windowed(meals []MealRecord, workouts []WorkoutRecord, today time.Time, days int) ([]MealRecord, []WorkoutRecord) {
	start := today.AddDate(0, 0, -days)
	end := endOfDay(today)

	outMeals := make([]MealRecord, 0, len(meals))
	for _, m := range meals {
		if !m.EatenAt.Before(start) && !m.EatenAt.After(end) {
			outMeals = append(outMeals, m)
		}
	}
	outWorkouts := make([]WorkoutRecord, 0, len(workouts))
	for _, w := range workouts {
		if !w.Date.Before(start) && !w.Date.After(end) {
			outWorkouts = append(outWorkouts, w)
		}
	}
	return outMeals, outWorkouts
}

func endOfDay(day time.Time) time.Time {
	return analytics.Day(day).Add(24*time.Hour - time.Nanosecond)
}
