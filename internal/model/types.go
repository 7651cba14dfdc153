package model

import "time"

// Meal types form a closed set; every entry carries exactly one.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

func ValidMealType(meal string) bool {
	for _, m := range MealTypes {
		if m == meal {
			return true
		}
	}
	return false
}

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

var ActivityLevels = []string{
	ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive,
}

func ValidActivityLevel(level string) bool {
	for _, l := range ActivityLevels {
		if l == level {
			return true
		}
	}
	return false
}

const (
	GoalMaintain = "maintain"
	GoalLose     = "lose"
	GoalGain     = "gain"
)

// Profile is the single "current user" row. The store keeps at most one.
type Profile struct {
	ID            int64
	Name          string
	Age           int
	Gender        string
	HeightCm      float64
	WeightKg      float64
	ActivityLevel string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type FoodEntry struct {
	ID        int64
	Name      string
	Calories  float64
	ProteinG  float64
	CarbsG    float64
	FatG      float64
	MealType  string
	Date      string // YYYY-MM-DD
	Quantity  *float64
	Unit      string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HealthGoal is the single current goal row. Setting a new goal replaces the
// previous one atomically; goal history is not retained.
type HealthGoal struct {
	ID             int64
	TargetCalories float64
	TargetProteinG float64
	TargetCarbsG   float64
	TargetFatG     float64
	GoalType       string
	Notes          string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FoodTemplate is a reusable food keyed by (name, brand). Re-saving an
// existing pair bumps Frequency and LastUsed instead of inserting a
// duplicate row.
type FoodTemplate struct {
	ID          int64
	Name        string
	Brand       string
	Calories    float64
	ProteinG    float64
	CarbsG      float64
	FatG        float64
	Category    string
	ServingSize *float64
	ServingUnit string
	Barcode     string
	Frequency   int
	LastUsed    *time.Time
	CreatedAt   time.Time
}

type MealTotals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// DaySummary is the materialized per-day view derived from food entries.
type DaySummary struct {
	Date          string                `json:"date"`
	TotalCalories float64               `json:"total_calories"`
	TotalProteinG float64               `json:"total_protein_g"`
	TotalCarbsG   float64               `json:"total_carbs_g"`
	TotalFatG     float64               `json:"total_fat_g"`
	ByMeal        map[string]MealTotals `json:"by_meal"`
	LastUpdated   time.Time             `json:"last_updated"`
}

type RangeSummary struct {
	FromDate string     `json:"from_date"`
	ToDate   string     `json:"to_date"`
	DayCount int        `json:"day_count"`
	Sum      MealTotals `json:"sum"`
	Avg      MealTotals `json:"avg"`
}
