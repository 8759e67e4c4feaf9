// Package api exposes HTTP handlers for the insights service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"example.com/insights/internal/analytics"
	"example.com/insights/internal/auth"
	"example.com/insights/internal/domain"
	"example.com/insights/internal/persistence"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/insights/quickstats", h.quickStats)
	mux.HandleFunc("/v1/insights/progress", h.dailyProgress)
	mux.HandleFunc("/v1/insights/nutrition/today", h.nutritionToday)
	mux.HandleFunc("/v1/insights/nutrition/summary", h.nutritionSummary)
	mux.HandleFunc("/v1/insights/workouts/summary", h.workoutSummary)
	mux.HandleFunc("/v1/insights/metrics", h.metricHistory)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// authorize extracts claims and checks the read scope shared by every
// insights endpoint. It writes the error response itself and reports whether
// the caller may proceed.
func authorize(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !claims.HasScope(auth.ScopeInsightsRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope insights:read required")
		return nil, false
	}
	return claims, true
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing user_id parameter")
		return "", false
	}
	return userID, true
}

func (h *Handler) quickStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := authorize(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	stats, err := h.service.GetQuickStats(r.Context(), claims.TenantID, userID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, QuickStatsResponse{
		BodyMetrics:      toBodyMetricsView(stats.BodyMetrics),
		WeeklyAverages:   toPeriodView(stats.WeeklyAverages),
		MonthlyAverages:  toPeriodView(stats.MonthlyAverages),
		WorkoutFrequency: toFrequencyView(stats.WorkoutFrequency),
		Streaks: StreaksView{
			WorkoutStreak:         stats.Streaks.WorkoutStreak,
			NutritionStreak:       stats.Streaks.NutritionStreak,
			ConsistencyStreak:     stats.Streaks.ConsistencyStreak,
			WorkoutStreakStatus:   stats.Streaks.WorkoutStreakStatus,
			NutritionStreakStatus: stats.Streaks.NutritionStreakStatus,
		},
	})
}

func (h *Handler) dailyProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := authorize(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	progress, err := h.service.GetDailyProgress(r.Context(), claims.TenantID, userID, r.URL.Query().Get("range"))
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidDateRange) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	points := make([]ProgressPointView, 0, len(progress.Points))
	for _, p := range progress.Points {
		points = append(points, ProgressPointView{
			Date:     p.Date.Format("2006-01-02"),
			Weight:   p.Weight,
			Calories: p.Calories,
			Workouts: p.Workouts,
		})
	}

	writeJSON(w, http.StatusOK, DailyProgressResponse{
		StartDate: progress.Range.Start.Format("2006-01-02"),
		EndDate:   progress.Range.End.Format("2006-01-02"),
		Days:      progress.Range.Days(),
		Points:    points,
	})
}

func (h *Handler) nutritionToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := authorize(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetTodaySummary(r.Context(), claims.TenantID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TodaySummaryResponse{
		Intake: IntakeView{
			Calories: summary.Intake.Calories,
			Protein:  summary.Intake.Protein,
			Carbs:    summary.Intake.Carbs,
			Fat:      summary.Intake.Fat,
			Fiber:    summary.Intake.Fiber,
			Sodium:   summary.Intake.Sodium,
		},
		Targets: toTargetsView(summary.Targets),
	})
}

func (h *Handler) nutritionSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := authorize(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	report, rng, err := h.service.GetNutritionSummary(r.Context(), claims.TenantID, userID, r.URL.Query().Get("range"))
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidDateRange) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	daily := make([]DailyNutritionView, 0, len(report.Daily))
	for _, d := range report.Daily {
		daily = append(daily, DailyNutritionView{
			Date:     d.Date.Format("2006-01-02"),
			Calories: d.Calories,
			Protein:  d.Macros.Protein,
			Carbs:    d.Macros.Carbs,
			Fats:     d.Macros.Fats,
			Meals:    d.Meals,
		})
	}

	writeJSON(w, http.StatusOK, NutritionSummaryResponse{
		StartDate:        rng.Start.Format("2006-01-02"),
		EndDate:          rng.End.Format("2006-01-02"),
		Days:             rng.Days(),
		TotalCalories:    report.TotalCalories,
		AvgDailyCalories: report.AvgDailyCalories,
		TotalMacros:      toMacrosView(report.TotalMacros),
		AvgDailyMacros:   toMacrosView(report.AvgDailyMacros),
		MealCount:        report.MealCount,
		MealsPerDay:      report.MealsPerDay,
		TargetProgress:   report.TargetProgress,
		GoalStatus:       report.GoalStatus,
		Daily:            daily,
	})
}

func (h *Handler) workoutSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := authorize(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	report, rng, err := h.service.GetWorkoutSummary(r.Context(), claims.TenantID, userID, r.URL.Query().Get("range"))
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidDateRange) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	daily := make([]DailyWorkoutsView, 0, len(report.Daily))
	for _, d := range report.Daily {
		daily = append(daily, DailyWorkoutsView{
			Date:           d.Date.Format("2006-01-02"),
			Workouts:       d.Workouts,
			TotalDuration:  d.TotalDuration,
			CaloriesBurned: d.CaloriesBurned,
			Types:          d.Types,
		})
	}

	writeJSON(w, http.StatusOK, WorkoutSummaryResponse{
		StartDate:             rng.Start.Format("2006-01-02"),
		EndDate:               rng.End.Format("2006-01-02"),
		Days:                  rng.Days(),
		TotalWorkouts:         report.TotalWorkouts,
		WorkoutDays:           report.WorkoutDays,
		TotalCaloriesBurned:   report.TotalCaloriesBurned,
		TotalDurationMinutes:  report.TotalDurationMinutes,
		AvgWorkoutDuration:    report.AvgWorkoutDuration,
		AvgCaloriesPerWorkout: report.AvgCaloriesPerWorkout,
		TypeDistribution:      report.TypeDistribution,
		FrequencyPercentage:   report.FrequencyPercentage,
		ConsistencyRating:     report.ConsistencyRating,
		Daily:                 daily,
	})
}

func (h *Handler) metricHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := authorize(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	snapshots, next, err := h.service.ListMetricSnapshots(r.Context(), claims.TenantID, userID, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]MetricSnapshotView, 0, len(snapshots))
	for _, s := range snapshots {
		items = append(items, MetricSnapshotView{
			SnapshotID: s.ID,
			WeightKg:   s.WeightKg,
			HeightCm:   s.HeightCm,
			RecordedAt: s.RecordedAt,
			CreatedAt:  s.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, MetricHistoryResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

// BodyMetricsView exposes derived body composition figures.
type BodyMetricsView struct {
	Weight       float64    `json:"weight"`
	Height       float64    `json:"height"`
	BMI          float64    `json:"bmi"`
	BMR          float64    `json:"bmr"`
	WeightChange float64    `json:"weight_change"`
	WeightTrend  string     `json:"weight_trend"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
}

// MacrosView carries a protein/carbs/fats triple.
type MacrosView struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// PeriodSummaryView exposes rolling-window averages and totals.
type PeriodSummaryView struct {
	AvgCaloriesIntake    int        `json:"avg_calories_intake"`
	AvgMacros            MacrosView `json:"avg_macros"`
	AvgWorkoutDuration   int        `json:"avg_workout_duration"`
	AvgCaloriesBurned    int        `json:"avg_calories_burned"`
	PeriodDays           int        `json:"period_days"`
	TotalCaloriesIntake  int        `json:"total_calories_intake"`
	TotalWorkoutDuration int        `json:"total_workout_duration"`
	TotalCaloriesBurned  int        `json:"total_calories_burned"`
	WorkoutCount         int        `json:"workout_count"`
}

// WorkoutFrequencyView exposes the distinct-day training frequency.
type WorkoutFrequencyView struct {
	WorkoutDays         int            `json:"workout_days"`
	TotalDays           int            `json:"total_days"`
	FrequencyPercentage float64        `json:"frequency_percentage"`
	WorkoutTypes        map[string]int `json:"workout_types"`
	TotalWorkouts       int            `json:"total_workouts"`
}

// StreaksView exposes the consecutive-day streak counters.
type StreaksView struct {
	WorkoutStreak         int    `json:"workout_streak"`
	NutritionStreak       int    `json:"nutrition_streak"`
	ConsistencyStreak     int    `json:"consistency_streak"`
	WorkoutStreakStatus   string `json:"workout_streak_status"`
	NutritionStreakStatus string `json:"nutrition_streak_status"`
}

// QuickStatsResponse is the dashboard headline payload.
type QuickStatsResponse struct {
	BodyMetrics      BodyMetricsView      `json:"body_metrics"`
	WeeklyAverages   PeriodSummaryView    `json:"weekly_averages"`
	MonthlyAverages  PeriodSummaryView    `json:"monthly_averages"`
	WorkoutFrequency WorkoutFrequencyView `json:"workout_frequency"`
	Streaks          StreaksView          `json:"streaks"`
}

// ProgressPointView is one day on the progress chart.
type ProgressPointView struct {
	Date     string  `json:"date"`
	Weight   float64 `json:"weight"`
	Calories int     `json:"calories"`
	Workouts int     `json:"workouts"`
}

// DailyProgressResponse is the gap-filled chart series.
type DailyProgressResponse struct {
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Days      int                 `json:"days"`
	Points    []ProgressPointView `json:"points"`
}

// IntakeView exposes one day's summed intake.
type IntakeView struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    int     `json:"fiber"`
	Sodium   int     `json:"sodium"`
}

// TargetsView exposes the resolved daily nutrition targets.
type TargetsView struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
	Fiber    int `json:"fiber"`
	Sodium   int `json:"sodium"`
}

// TodaySummaryResponse pairs today's intake with its targets.
type TodaySummaryResponse struct {
	Intake  IntakeView  `json:"intake"`
	Targets TargetsView `json:"targets"`
}

// DailyNutritionView is one day of the nutrition report breakdown.
type DailyNutritionView struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Meals    int     `json:"meals"`
}

// NutritionSummaryResponse is the period nutrition report payload.
type NutritionSummaryResponse struct {
	StartDate        string               `json:"start_date"`
	EndDate          string               `json:"end_date"`
	Days             int                  `json:"days"`
	TotalCalories    float64              `json:"total_calories"`
	AvgDailyCalories float64              `json:"avg_daily_calories"`
	TotalMacros      MacrosView           `json:"total_macros"`
	AvgDailyMacros   MacrosView           `json:"avg_daily_macros"`
	MealCount        int                  `json:"meal_count"`
	MealsPerDay      float64              `json:"meals_per_day"`
	TargetProgress   float64              `json:"target_progress"`
	GoalStatus       string               `json:"goal_status"`
	Daily            []DailyNutritionView `json:"daily"`
}

// DailyWorkoutsView is one day of the workout report breakdown.
type DailyWorkoutsView struct {
	Date           string   `json:"date"`
	Workouts       int      `json:"workouts"`
	TotalDuration  int      `json:"total_duration"`
	CaloriesBurned float64  `json:"calories_burned"`
	Types          []string `json:"types"`
}

// WorkoutSummaryResponse is the period workout report payload.
type WorkoutSummaryResponse struct {
	StartDate             string              `json:"start_date"`
	EndDate               string              `json:"end_date"`
	Days                  int                 `json:"days"`
	TotalWorkouts         int                 `json:"total_workouts"`
	WorkoutDays           int                 `json:"workout_days"`
	TotalCaloriesBurned   float64             `json:"total_calories_burned"`
	TotalDurationMinutes  int                 `json:"total_duration_minutes"`
	AvgWorkoutDuration    float64             `json:"avg_workout_duration"`
	AvgCaloriesPerWorkout float64             `json:"avg_calories_per_workout"`
	TypeDistribution      map[string]int      `json:"type_distribution"`
	FrequencyPercentage   float64             `json:"frequency_percentage"`
	ConsistencyRating     string              `json:"consistency_rating"`
	Daily                 []DailyWorkoutsView `json:"daily"`
}

// MetricSnapshotView is a single snapshot history row.
type MetricSnapshotView struct {
	SnapshotID string    `json:"snapshot_id"`
	WeightKg   float64   `json:"weight_kg"`
	HeightCm   float64   `json:"height_cm"`
	RecordedAt time.Time `json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// MetricHistoryResponse packages snapshot history pages.
type MetricHistoryResponse struct {
	Items      []MetricSnapshotView `json:"items"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

func toBodyMetricsView(m analytics.BodyMetrics) BodyMetricsView {
	return BodyMetricsView{
		Weight:       m.Weight,
		Height:       m.Height,
		BMI:          m.BMI,
		BMR:          m.BMR,
		WeightChange: m.WeightChange,
		WeightTrend:  m.WeightTrend,
		LastUpdated:  m.LastUpdated,
	}
}

func toPeriodView(p analytics.PeriodSummary) PeriodSummaryView {
	return PeriodSummaryView{
		AvgCaloriesIntake:    p.AvgCaloriesIntake,
		AvgMacros:            toMacrosView(p.AvgMacros),
		AvgWorkoutDuration:   p.AvgWorkoutDuration,
		AvgCaloriesBurned:    p.AvgCaloriesBurned,
		PeriodDays:           p.PeriodDays,
		TotalCaloriesIntake:  p.TotalCaloriesIntake,
		TotalWorkoutDuration: p.TotalWorkoutDuration,
		TotalCaloriesBurned:  p.TotalCaloriesBurned,
		WorkoutCount:         p.WorkoutCount,
	}
}

func toFrequencyView(f analytics.WorkoutFrequency) WorkoutFrequencyView {
	return WorkoutFrequencyView{
		WorkoutDays:         f.WorkoutDays,
		TotalDays:           f.TotalDays,
		FrequencyPercentage: f.FrequencyPercentage,
		WorkoutTypes:        f.WorkoutTypes,
		TotalWorkouts:       f.TotalWorkouts,
	}
}

func toMacrosView(m analytics.Macros) MacrosView {
	return MacrosView{Protein: m.Protein, Carbs: m.Carbs, Fats: m.Fats}
}

func toTargetsView(t analytics.Targets) TargetsView {
	return TargetsView{
		Calories: t.Calories,
		Protein:  t.Protein,
		Carbs:    t.Carbs,
		Fat:      t.Fat,
		Fiber:    t.Fiber,
		Sodium:   t.Sodium,
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
