package nutrition

import (
	"sort"
	"strings"
	"time"
)

// MealType is the meal slot an entry is logged against.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes is the fixed display order of meal slots.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

func (m MealType) Valid() bool {
	switch m {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

func ParseMealType(v string) (MealType, error) {
	m := MealType(strings.ToLower(strings.TrimSpace(v)))
	if !m.Valid() {
		return "", invalid("meal_type", "must be one of: breakfast, lunch, dinner, snack")
	}
	return m, nil
}

// FoodLogEntry is one logged food. Entries are never edited in place; a
// change is a delete followed by an insert.
type FoodLogEntry struct {
	ID            string
	FoodName      string
	QuantityGrams float64
	MealType      MealType
	Calories      int
	Protein       *float64
	Carbs         *float64
	Fat           *float64
	LoggedAt      time.Time
}

// Macros holds gram totals. Missing macro values contribute zero.
type Macros struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

/* ─── Totals ─────────────────────────────────────────────────────────── */

func TotalCalories(entries []FoodLogEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Calories
	}
	return total
}

func TotalMacros(entries []FoodLogEntry) Macros {
	var m Macros
	for _, e := range entries {
		m.Protein += deref(e.Protein)
		m.Carbs += deref(e.Carbs)
		m.Fat += deref(e.Fat)
	}
	return m
}

// EntriesForMeal returns the entries logged against meal, keeping their
// relative order. The input slice is not modified.
func EntriesForMeal(entries []FoodLogEntry, meal MealType) []FoodLogEntry {
	out := []FoodLogEntry{}
	for _, e := range entries {
		if e.MealType == meal {
			out = append(out, e)
		}
	}
	return out
}

func CaloriesForMeal(entries []FoodLogEntry, meal MealType) int {
	return TotalCalories(EntriesForMeal(entries, meal))
}

// ProgressPercentage is the share of target consumed, capped to [0, 100].
// A non-positive target yields 0.
func ProgressPercentage(totalCalories, targetCalories int) float64 {
	if targetCalories <= 0 {
		return 0
	}
	pct := 100 * float64(totalCalories) / float64(targetCalories)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// RemainingCalories never goes below zero once the target is exceeded.
func RemainingCalories(totalCalories, targetCalories int) int {
	if left := targetCalories - totalCalories; left > 0 {
		return left
	}
	return 0
}

/* ─── Day window ─────────────────────────────────────────────────────── */

// DayWindow returns [start, end) for the calendar day containing day in loc,
// expressed in UTC. A nil loc means UTC. The end is the next local midnight,
// so DST transition days are 23 or 25 hours long.
func DayWindow(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := day.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC()
}

// EntriesInWindow keeps entries with LoggedAt in [start, end), preserving order.
func EntriesInWindow(entries []FoodLogEntry, start, end time.Time) []FoodLogEntry {
	out := []FoodLogEntry{}
	for _, e := range entries {
		if !e.LoggedAt.Before(start) && e.LoggedAt.Before(end) {
			out = append(out, e)
		}
	}
	return out
}

// SortByLoggedAtDesc returns a copy ordered most-recent-first. Entries with
// equal timestamps keep their input order.
func SortByLoggedAtDesc(entries []FoodLogEntry) []FoodLogEntry {
	out := make([]FoodLogEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LoggedAt.After(out[j].LoggedAt)
	})
	return out
}

/* ─── Summary ────────────────────────────────────────────────────────── */

// MealSummary is one meal slot's share of the day.
type MealSummary struct {
	MealType MealType
	Calories int
	Macros   Macros
	Entries  []FoodLogEntry
}

// DaySummary bundles every aggregate the dashboard shows for one day.
type DaySummary struct {
	TotalCalories      int
	Macros             Macros
	TargetCalories     int
	ProgressPercentage float64
	RemainingCalories  int
	Meals              []MealSummary
}

// Summarize recomputes the day's aggregates from scratch. It holds no state,
// so calling it again after entries change is the whole update story.
func Summarize(entries []FoodLogEntry, targetCalories int) DaySummary {
	total := TotalCalories(entries)
	s := DaySummary{
		TotalCalories:      total,
		Macros:             TotalMacros(entries),
		TargetCalories:     targetCalories,
		ProgressPercentage: ProgressPercentage(total, targetCalories),
		RemainingCalories:  RemainingCalories(total, targetCalories),
		Meals:              make([]MealSummary, 0, len(MealTypes)),
	}
	for _, meal := range MealTypes {
		mealEntries := EntriesForMeal(entries, meal)
		s.Meals = append(s.Meals, MealSummary{
			MealType: meal,
			Calories: TotalCalories(mealEntries),
			Macros:   TotalMacros(mealEntries),
			Entries:  mealEntries,
		})
	}
	return s
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
