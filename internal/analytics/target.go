package analytics

import (
	"math"
	"time"

	"example.com/insights/internal/records"
)

// Targets is the effective daily nutrition target after fallback resolution.
// Calories/protein/carbs/fat in kcal and grams, fiber in grams, sodium in mg.
type Targets struct {
	Calories int
	Protein  int
	Carbs    int
	Fat      int
	Fiber    int
	Sodium   int
}

// Hard defaults used when neither an explicit target nor a BMR is available.
var defaultTargets = Targets{Calories: 2200, Protein: 140, Carbs: 275, Fat: 73, Fiber: 25, Sodium: 2300}

// ResolveTargets applies the three-tier target fallback: an explicit target
// current for today wins; otherwise a BMR-derived 30/40/30 macro split
// (protein/carbs at 4 kcal/g, fat at 9 kcal/g); otherwise hard defaults.
// Fiber and sodium are fixed defaults in the derived tiers — they are not
// computed from BMR.
func ResolveTargets(targets []records.NutritionTarget, today time.Time, metrics BodyMetrics) Targets {
	if explicit, ok := currentTarget(targets, today); ok {
		return Targets{
			Calories: explicit.DailyCalories,
			Protein:  explicit.DailyProtein,
			Carbs:    explicit.DailyCarbs,
			Fat:      explicit.DailyFats,
			Fiber:    explicit.DailyFiber,
			Sodium:   explicit.DailySodium,
		}
	}

	if metrics.BMR > 0 {
		calories := int(math.Round(metrics.BMR))
		return Targets{
			Calories: calories,
			Protein:  int(math.Round(float64(calories) * 0.30 / 4)),
			Carbs:    int(math.Round(float64(calories) * 0.40 / 4)),
			Fat:      int(math.Round(float64(calories) * 0.30 / 9)),
			Fiber:    25,
			Sodium:   2300,
		}
	}

	return defaultTargets
}

// currentTarget finds the first target active on the given day.
func currentTarget(targets []records.NutritionTarget, day time.Time) (records.NutritionTarget, bool) {
	day = Day(day)
	for _, t := range targets {
		if !t.IsActive {
			continue
		}
		if Day(t.StartDate).After(day) {
			continue
		}
		if t.EndDate != nil && Day(*t.EndDate).Before(day) {
			continue
		}
		return t, true
	}
	return records.NutritionTarget{}, false
}
