package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"example.com/insights/internal/records"
)

// Weight trend values reported by ResolveBodyMetrics.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
	TrendNoData = "no_data"
)

// BodyMetrics is the derived body-composition view for a user's dashboard.
// All figures degrade to zero when the underlying data is missing; this type
// never carries an error.
type BodyMetrics struct {
	Weight       float64
	Height       float64
	BMI          float64
	BMR          float64
	WeightChange float64
	WeightTrend  string
	LastUpdated  *time.Time
}

// ResolveBodyMetrics derives BMI, BMR and weight trend from the user's
// snapshot history. The latest snapshot is selected by descending CreatedAt
// (RecordedAt breaks ties); the one before it supplies the weight delta.
// Age and gender come from the profile when present — live profile data
// overrides whatever the snapshot rows recorded at the time.
func ResolveBodyMetrics(snapshots []records.MetricSnapshot, profile *records.UserProfile, now time.Time) BodyMetrics {
	if len(snapshots) == 0 {
		return BodyMetrics{WeightTrend: TrendNoData}
	}

	ordered := make([]records.MetricSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].RecordedAt.After(ordered[j].RecordedAt)
	})

	latest := ordered[0]
	age, gender := ageAndGender(latest, profile, now)

	out := BodyMetrics{
		Weight:      latest.WeightKg,
		Height:      latest.HeightCm,
		BMI:         calculateBMI(latest.WeightKg, latest.HeightCm),
		BMR:         calculateBMR(latest.WeightKg, latest.HeightCm, age, gender),
		WeightTrend: TrendStable,
	}
	if !latest.CreatedAt.IsZero() {
		created := latest.CreatedAt
		out.LastUpdated = &created
	}

	if len(ordered) > 1 {
		change := round2(latest.WeightKg - ordered[1].WeightKg)
		out.WeightChange = change
		switch {
		case change > 0:
			out.WeightTrend = TrendUp
		case change < 0:
			out.WeightTrend = TrendDown
		}
	}

	return out
}

func ageAndGender(snapshot records.MetricSnapshot, profile *records.UserProfile, now time.Time) (int, string) {
	if profile == nil {
		return snapshot.Age, snapshot.Gender
	}
	gender := profile.Gender
	if gender == "" {
		gender = snapshot.Gender
	}
	return ageInYears(profile.BirthDate, now), gender
}

// ageInYears computes completed whole years between birth date and now.
// Returns 0 for a zero or future birth date.
func ageInYears(birthDate, now time.Time) int {
	if birthDate.IsZero() || birthDate.After(now) {
		return 0
	}
	years := now.Year() - birthDate.Year()
	if Day(now).Before(Day(birthDate).AddDate(years, 0, 0)) {
		years--
	}
	return years
}

func calculateBMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	heightM := heightCm / 100
	return round2(weightKg / (heightM * heightM))
}

// calculateBMR applies the Mifflin-St Jeor equation. The -78 branch is the
// midpoint of the male and female offsets, used when gender is unspecified.
func calculateBMR(weightKg, heightCm float64, age int, gender string) float64 {
	if age <= 0 {
		return 0
	}
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch strings.ToLower(gender) {
	case "male", "m":
		return round2(base + 5)
	case "female", "f":
		return round2(base - 161)
	default:
		return round2(base - 78)
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
