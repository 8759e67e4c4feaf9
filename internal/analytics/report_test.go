package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/insights/internal/records"
)

func TestBuildNutritionReportAveragesOverWindowDays(t *testing.T) {
	// Report averages divide by all window days, unlike PeriodSummary.
	meals := []records.MealRecord{
		mealOn(0, 2000, 100, 200, 60),
		mealOn(1, 2000, 100, 200, 60),
	}
	rng := DateRange{Start: periodStart, End: periodStart.AddDate(0, 0, 3)}

	report := BuildNutritionReport(meals, rng, Targets{Calories: 1000})

	require.Equal(t, 4000.0, report.TotalCalories)
	require.Equal(t, 1000.0, report.AvgDailyCalories)
	require.Equal(t, 50.0, report.AvgDailyMacros.Protein)
	require.Equal(t, 2, report.MealCount)
	require.Equal(t, 0.5, report.MealsPerDay)
	require.Equal(t, 100.0, report.TargetProgress)
	require.Equal(t, GoalOnTrack, report.GoalStatus)
}

func TestBuildNutritionReportDailyBreakdownCoversRange(t *testing.T) {
	meals := []records.MealRecord{mealOn(1, 500, 30, 50, 20)}
	rng := DateRange{Start: periodStart, End: periodStart.AddDate(0, 0, 2)}

	report := BuildNutritionReport(meals, rng, Targets{Calories: 2000})

	require.Len(t, report.Daily, 3)
	require.Zero(t, report.Daily[0].Calories)
	require.Equal(t, 500.0, report.Daily[1].Calories)
	require.Equal(t, 1, report.Daily[1].Meals)
	require.Zero(t, report.Daily[2].Calories)
}

func TestNutritionGoalStatusBuckets(t *testing.T) {
	cases := []struct {
		progress float64
		status   string
	}{
		{95, GoalOnTrack},
		{90, GoalOnTrack},
		{110, GoalOnTrack},
		{79, GoalUnderTarget},
		{121, GoalOverTarget},
		{85, GoalCloseTarget},
		{115, GoalCloseTarget},
	}
	for _, tc := range cases {
		require.Equal(t, tc.status, nutritionGoalStatus(tc.progress), "progress %.0f", tc.progress)
	}
}

func TestBuildWorkoutReport(t *testing.T) {
	workouts := []records.WorkoutRecord{
		workoutOn(0, "run", 30, 200),
		workoutOn(0, "run", 20, 150),
		workoutOn(1, "lift", 60, 300),
		workoutOn(3, "swim", 45, 400),
	}
	rng := DateRange{Start: periodStart, End: periodStart.AddDate(0, 0, 4)}

	report := BuildWorkoutReport(workouts, rng)

	require.Equal(t, 4, report.TotalWorkouts)
	require.Equal(t, 3, report.WorkoutDays)
	require.Equal(t, 1050.0, report.TotalCaloriesBurned)
	require.Equal(t, 155, report.TotalDurationMinutes)
	require.Equal(t, 38.75, report.AvgWorkoutDuration)
	require.Equal(t, 262.5, report.AvgCaloriesPerWorkout)
	require.Equal(t, map[string]int{"run": 2, "lift": 1, "swim": 1}, report.TypeDistribution)
	require.Equal(t, 60.0, report.FrequencyPercentage)
	require.Equal(t, ConsistencyGood, report.ConsistencyRating)

	require.Len(t, report.Daily, 5)
	require.Equal(t, 2, report.Daily[0].Workouts)
	require.Equal(t, 50, report.Daily[0].TotalDuration)
	require.Equal(t, []string{"run"}, report.Daily[0].Types)
	require.Zero(t, report.Daily[2].Workouts)
}

func TestConsistencyRatingBuckets(t *testing.T) {
	require.Equal(t, ConsistencyExcellent, consistencyRating(80))
	require.Equal(t, ConsistencyGood, consistencyRating(60))
	require.Equal(t, ConsistencyFair, consistencyRating(40))
	require.Equal(t, ConsistencyPoor, consistencyRating(39.9))
}
