package analytics

import (
	"time"

	"example.com/insights/internal/records"
)

// MaxStreakDays bounds the backward scan so corrupt histories can never spin
// the loop past a year. It is also the widest history window worth fetching
// before calling CalculateStreaks.
const MaxStreakDays = 365

// Streak status buckets.
const (
	StreakNone      = "none"
	StreakBuilding  = "building"
	StreakGood      = "good"
	StreakGreat     = "great"
	StreakExcellent = "excellent"
)

// StreakHistory holds day-indexed lookups covering the whole candidate scan
// window. Callers fetch the window in one batch and build this once, instead
// of issuing a query per day scanned.
type StreakHistory struct {
	workoutsByDay map[string]int
	caloriesByDay map[string]float64
}

// BuildStreakHistory indexes meals and workouts by calendar day. Days with no
// meals are absent from the calorie index, which is what marks them as misses
// during the nutrition scan.
func BuildStreakHistory(meals []records.MealRecord, workouts []records.WorkoutRecord) StreakHistory {
	h := StreakHistory{
		workoutsByDay: make(map[string]int),
		caloriesByDay: make(map[string]float64),
	}
	for _, w := range workouts {
		h.workoutsByDay[dayKey(w.Date)]++
	}
	for _, m := range meals {
		h.caloriesByDay[dayKey(m.EatenAt)] += m.Calories
	}
	return h
}

// Streaks reports consecutive-day runs ending at today.
type Streaks struct {
	WorkoutStreak         int
	NutritionStreak       int
	ConsistencyStreak     int
	WorkoutStreakStatus   string
	NutritionStreakStatus string
}

// CalculateStreaks scans backward from today, one calendar day at a time.
// A workout day needs at least one workout record; a nutrition day needs at
// least one meal and a calorie total within 80–120% of the resolved target.
// The target is resolved once from current data and reused for every
// historical day scanned. Each scan stops at its first miss.
func CalculateStreaks(history StreakHistory, target Targets, today time.Time) Streaks {
	day := Day(today)

	workout := 0
	for i := 0; i < MaxStreakDays; i++ {
		if history.workoutsByDay[dayKey(day.AddDate(0, 0, -i))] == 0 {
			break
		}
		workout++
	}

	nutrition := 0
	lower := float64(target.Calories) * 0.8
	upper := float64(target.Calories) * 1.2
	for i := 0; i < MaxStreakDays; i++ {
		calories, logged := history.caloriesByDay[dayKey(day.AddDate(0, 0, -i))]
		if !logged || calories < lower || calories > upper {
			break
		}
		nutrition++
	}

	consistency := workout
	if nutrition < consistency {
		consistency = nutrition
	}

	return Streaks{
		WorkoutStreak:         workout,
		NutritionStreak:       nutrition,
		ConsistencyStreak:     consistency,
		WorkoutStreakStatus:   streakStatus(workout),
		NutritionStreakStatus: streakStatus(nutrition),
	}
}

func streakStatus(streak int) string {
	switch {
	case streak == 0:
		return StreakNone
	case streak < 3:
		return StreakBuilding
	case streak < 7:
		return StreakGood
	case streak < 14:
		return StreakGreat
	default:
		return StreakExcellent
	}
}
