package analytics

import (
	"math"
	"time"

	"example.com/insights/internal/records"
)

// Nutrition goal statuses reported by BuildNutritionReport.
const (
	GoalOnTrack     = "On Track"
	GoalUnderTarget = "Under Target"
	GoalOverTarget  = "Over Target"
	GoalCloseTarget = "Close to Target"
)

// Consistency ratings reported by BuildWorkoutReport.
const (
	ConsistencyExcellent = "Excellent"
	ConsistencyGood      = "Good"
	ConsistencyFair      = "Fair"
	ConsistencyPoor      = "Needs Improvement"
)

// DailyNutrition is one day of a nutrition report breakdown.
type DailyNutrition struct {
	Date     time.Time
	Calories float64
	Macros   Macros
	Meals    int
}

// NutritionReport is a period intake summary with a full daily breakdown.
//
// Unlike PeriodSummary, daily averages here divide by the total number of
// window days including empty ones — a report over a quiet month should show
// a low daily average, not the average of its two logged days.
type NutritionReport struct {
	TotalCalories    float64
	AvgDailyCalories float64
	TotalMacros      Macros
	AvgDailyMacros   Macros
	MealCount        int
	MealsPerDay      float64
	Daily            []DailyNutrition
	TargetProgress   float64
	GoalStatus       string
}

// BuildNutritionReport summarises intake across the range against the
// resolved calorie target.
func BuildNutritionReport(meals []records.MealRecord, rng DateRange, target Targets) NutritionReport {
	days := rng.Days()
	out := NutritionReport{MealCount: len(meals)}

	type dayTotal struct {
		calories float64
		macros   Macros
		meals    int
	}
	byDay := make(map[string]dayTotal)
	for _, m := range meals {
		key := dayKey(m.EatenAt)
		t := byDay[key]
		t.calories += m.Calories
		t.macros.Protein += m.ProteinG
		t.macros.Carbs += m.CarbsG
		t.macros.Fats += m.FatG
		t.meals++
		byDay[key] = t

		out.TotalCalories += m.Calories
		out.TotalMacros.Protein += m.ProteinG
		out.TotalMacros.Carbs += m.CarbsG
		out.TotalMacros.Fats += m.FatG
	}

	out.Daily = make([]DailyNutrition, 0, days)
	for d := Day(rng.Start); !d.After(Day(rng.End)); d = d.AddDate(0, 0, 1) {
		t := byDay[dayKey(d)]
		out.Daily = append(out.Daily, DailyNutrition{
			Date:     d,
			Calories: t.calories,
			Macros:   t.macros,
			Meals:    t.meals,
		})
	}

	if days > 0 {
		div := float64(days)
		out.AvgDailyCalories = out.TotalCalories / div
		out.AvgDailyMacros = Macros{
			Protein: out.TotalMacros.Protein / div,
			Carbs:   out.TotalMacros.Carbs / div,
			Fats:    out.TotalMacros.Fats / div,
		}
		out.MealsPerDay = float64(len(meals)) / div
	}

	if target.Calories > 0 {
		out.TargetProgress = out.AvgDailyCalories / float64(target.Calories) * 100
	}
	out.GoalStatus = nutritionGoalStatus(out.TargetProgress)

	return out
}

func nutritionGoalStatus(progress float64) string {
	switch {
	case progress >= 90 && progress <= 110:
		return GoalOnTrack
	case progress < 80:
		return GoalUnderTarget
	case progress > 120:
		return GoalOverTarget
	default:
		return GoalCloseTarget
	}
}

// DailyWorkouts is one day of a workout report breakdown.
type DailyWorkouts struct {
	Date           time.Time
	Workouts       int
	TotalDuration  int
	CaloriesBurned float64
	Types          []string
}

// WorkoutReport is a period training summary with a full daily breakdown.
type WorkoutReport struct {
	TotalWorkouts         int
	WorkoutDays           int
	TotalCaloriesBurned   float64
	TotalDurationMinutes  int
	AvgWorkoutDuration    float64
	AvgCaloriesPerWorkout float64
	TypeDistribution      map[string]int
	Daily                 []DailyWorkouts
	FrequencyPercentage   float64
	ConsistencyRating     string
}

// BuildWorkoutReport summarises training across the range.
func BuildWorkoutReport(workouts []records.WorkoutRecord, rng DateRange) WorkoutReport {
	days := rng.Days()
	out := WorkoutReport{
		TotalWorkouts:    len(workouts),
		TypeDistribution: make(map[string]int),
	}

	type dayTotal struct {
		workouts       int
		duration       int
		caloriesBurned float64
		types          []string
	}
	byDay := make(map[string]dayTotal)
	for _, w := range workouts {
		key := dayKey(w.Date)
		t := byDay[key]
		t.workouts++
		t.duration += w.DurationMin
		t.caloriesBurned += w.CaloriesBurned
		if !containsString(t.types, w.WorkoutType) {
			t.types = append(t.types, w.WorkoutType)
		}
		byDay[key] = t

		out.TotalDurationMinutes += w.DurationMin
		out.TotalCaloriesBurned += w.CaloriesBurned
		out.TypeDistribution[w.WorkoutType]++
	}
	out.WorkoutDays = len(byDay)

	out.Daily = make([]DailyWorkouts, 0, days)
	for d := Day(rng.Start); !d.After(Day(rng.End)); d = d.AddDate(0, 0, 1) {
		t := byDay[dayKey(d)]
		out.Daily = append(out.Daily, DailyWorkouts{
			Date:           d,
			Workouts:       t.workouts,
			TotalDuration:  t.duration,
			CaloriesBurned: t.caloriesBurned,
			Types:          t.types,
		})
	}

	if len(workouts) > 0 {
		out.AvgWorkoutDuration = float64(out.TotalDurationMinutes) / float64(len(workouts))
		out.AvgCaloriesPerWorkout = out.TotalCaloriesBurned / float64(len(workouts))
	}
	if days > 0 {
		out.FrequencyPercentage = math.Round(float64(out.WorkoutDays)/float64(days)*100*100) / 100
	}
	out.ConsistencyRating = consistencyRating(out.FrequencyPercentage)

	return out
}

func consistencyRating(frequencyPct float64) string {
	switch {
	case frequencyPct >= 80:
		return ConsistencyExcellent
	case frequencyPct >= 60:
		return ConsistencyGood
	case frequencyPct >= 40:
		return ConsistencyFair
	default:
		return ConsistencyPoor
	}
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
