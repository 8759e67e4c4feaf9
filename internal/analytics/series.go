package analytics

import (
	"math"
	"sort"
	"time"

	"example.com/insights/internal/records"
)

// DailyProgressPoint is one day of the gap-filled chart series. Weight is the
// last-known value carried forward (0 before the first snapshot); calories and
// workouts are 0 on days with no records.
type DailyProgressPoint struct {
	Date     time.Time
	Weight   float64
	Calories int
	Workouts int
}

// BuildDailySeries merges three independently sparse sources onto a daily
// grid covering the range inclusive. Meals are summed per day, workouts
// counted per day, and the most recent snapshot weight on or before each day
// is carried forward with a single pointer over the ascending snapshot list —
// O(days + snapshots), not a scan per day.
func BuildDailySeries(meals []records.MealRecord, workouts []records.WorkoutRecord, snapshots []records.MetricSnapshot, rng DateRange) []DailyProgressPoint {
	caloriesByDay := make(map[string]float64)
	for _, m := range meals {
		caloriesByDay[dayKey(m.EatenAt)] += m.Calories
	}

	workoutsByDay := make(map[string]int)
	for _, w := range workouts {
		workoutsByDay[dayKey(w.Date)]++
	}

	ordered := make([]records.MetricSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	points := make([]DailyProgressPoint, 0, rng.Days())
	var lastWeight float64
	idx := 0
	for d := Day(rng.Start); !d.After(Day(rng.End)); d = d.AddDate(0, 0, 1) {
		for idx < len(ordered) && !Day(ordered[idx].CreatedAt).After(d) {
			lastWeight = ordered[idx].WeightKg
			idx++
		}

		points = append(points, DailyProgressPoint{
			Date:     d,
			Weight:   math.Round(lastWeight*10) / 10,
			Calories: int(math.Round(caloriesByDay[dayKey(d)])),
			Workouts: workoutsByDay[dayKey(d)],
		})
	}

	return points
}
