package analytics

import (
	"math"

	"example.com/insights/internal/records"
)

// Macros is an average daily macro-nutrient breakdown in grams.
type Macros struct {
	Protein float64
	Carbs   float64
	Fats    float64
}

// PeriodSummary holds intake and workout aggregates over a day window.
//
// The two averaging bases differ on purpose and must stay that way: nutrition
// averages divide by the number of days that have at least one meal, while
// workout averages divide by the number of workout records. A 30-day window
// with meals on only 2 days averages those 2 days, not 30.
type PeriodSummary struct {
	AvgCaloriesIntake    int
	AvgMacros            Macros
	AvgWorkoutDuration   int
	AvgCaloriesBurned    int
	PeriodDays           int
	TotalCaloriesIntake  int
	TotalWorkoutDuration int
	TotalCaloriesBurned  int
	WorkoutCount         int
}

// SummarizePeriod aggregates meals and workouts already restricted to the
// window. Empty inputs yield zeroed averages rather than NaN.
func SummarizePeriod(meals []records.MealRecord, workouts []records.WorkoutRecord, days int) PeriodSummary {
	out := PeriodSummary{PeriodDays: days, WorkoutCount: len(workouts)}

	var totalCalories float64
	dayCalories := make(map[string]float64)
	dayProtein := make(map[string]float64)
	dayCarbs := make(map[string]float64)
	dayFats := make(map[string]float64)
	for _, m := range meals {
		key := dayKey(m.EatenAt)
		totalCalories += m.Calories
		dayCalories[key] += m.Calories
		dayProtein[key] += m.ProteinG
		dayCarbs[key] += m.CarbsG
		dayFats[key] += m.FatG
	}
	out.TotalCaloriesIntake = int(math.Round(totalCalories))
	if n := len(dayCalories); n > 0 {
		out.AvgCaloriesIntake = int(math.Round(sumValues(dayCalories) / float64(n)))
		out.AvgMacros = Macros{
			Protein: round2(sumValues(dayProtein) / float64(n)),
			Carbs:   round2(sumValues(dayCarbs) / float64(n)),
			Fats:    round2(sumValues(dayFats) / float64(n)),
		}
	}

	var totalBurned float64
	for _, w := range workouts {
		out.TotalWorkoutDuration += w.DurationMin
		totalBurned += w.CaloriesBurned
	}
	out.TotalCaloriesBurned = int(math.Round(totalBurned))
	if len(workouts) > 0 {
		out.AvgWorkoutDuration = int(math.Round(float64(out.TotalWorkoutDuration) / float64(len(workouts))))
		out.AvgCaloriesBurned = int(math.Round(totalBurned / float64(len(workouts))))
	}

	return out
}

// WorkoutFrequency describes how often a user trained across a window.
type WorkoutFrequency struct {
	WorkoutDays         int
	TotalDays           int
	FrequencyPercentage float64
	WorkoutTypes        map[string]int
	TotalWorkouts       int
}

// SummarizeWorkoutFrequency counts distinct workout days and the per-type
// distribution over the window.
func SummarizeWorkoutFrequency(workouts []records.WorkoutRecord, days int) WorkoutFrequency {
	out := WorkoutFrequency{
		TotalDays:     days,
		WorkoutTypes:  make(map[string]int),
		TotalWorkouts: len(workouts),
	}

	seen := make(map[string]struct{})
	for _, w := range workouts {
		seen[dayKey(w.Date)] = struct{}{}
		out.WorkoutTypes[w.WorkoutType]++
	}
	out.WorkoutDays = len(seen)
	if days > 0 {
		out.FrequencyPercentage = round2(float64(out.WorkoutDays) / float64(days) * 100)
	}

	return out
}

// IntakeSummary is a single day's summed intake. Fiber and sodium are not
// tracked per meal, so they report zero.
type IntakeSummary struct {
	Calories int
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    int
	Sodium   int
}

// SummarizeIntake totals the supplied meals, typically one day's worth.
func SummarizeIntake(meals []records.MealRecord) IntakeSummary {
	var calories, protein, carbs, fat float64
	for _, m := range meals {
		calories += m.Calories
		protein += m.ProteinG
		carbs += m.CarbsG
		fat += m.FatG
	}
	return IntakeSummary{
		Calories: int(math.Round(calories)),
		Protein:  round1(protein),
		Carbs:    round1(carbs),
		Fat:      round1(fat),
	}
}

func sumValues(m map[string]float64) float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}
