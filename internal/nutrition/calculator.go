// Package nutrition is the calorie and macro computation core: BMR and daily
// target formulas, per-entry nutrition scaling, and aggregation of a day's
// food log. Everything here is pure and safe for concurrent use.
package nutrition

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

/* ─── Types ──────────────────────────────────────────────────────────── */

// FoodItem is catalog reference data. Nutrition values are per 100 grams;
// nil macro pointers mean the catalog has no value for that macro.
type FoodItem struct {
	Name            string
	Brand           string
	CaloriesPer100g float64
	ProteinPer100g  *float64
	CarbsPer100g    *float64
	FatPer100g      *float64
}

// EntryNutrition is the absolute nutrition for a logged quantity of a food.
// A macro absent on the FoodItem stays nil here; a present zero stays zero.
type EntryNutrition struct {
	Calories int
	Protein  *float64
	Carbs    *float64
	Fat      *float64
}

// DailyTarget is derived from a BodyProfile and recomputed whenever it changes.
type DailyTarget struct {
	TargetCalories int
}

/* ─── Formulas ───────────────────────────────────────────────────────── */

// ComputeBMR returns basal metabolic rate using Mifflin-St Jeor.
// Only male and female are valid here; resolve SexOther with
// BodyProfile.BMRSex before calling.
func ComputeBMR(weightKg, heightCm float64, ageYears int, sex Sex) (float64, error) {
	if err := checkNonNegative("weight_kg", weightKg); err != nil {
		return 0, err
	}
	if err := checkNonNegative("height_cm", heightCm); err != nil {
		return 0, err
	}
	if ageYears < 0 {
		return 0, invalid("age_years", "must be >= 0")
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	switch sex {
	case SexMale:
		return bmr + 5, nil
	case SexFemale:
		return bmr - 161, nil
	default:
		return 0, invalid("sex", "BMR formula requires male or female, got %q", sex)
	}
}

// ComputeDailyTarget scales bmr by the activity multiplier, applies the goal
// adjustment, and rounds half up to whole calories.
func ComputeDailyTarget(bmr float64, level ActivityLevel, goal Goal) (int, error) {
	if math.IsNaN(bmr) || math.IsInf(bmr, 0) {
		return 0, invalid("bmr", "must be a finite number")
	}
	mult, ok := level.Multiplier()
	if !ok {
		return 0, invalid("activity_level", "unknown level %q", level)
	}

	maintenance := bmr * mult
	switch goal {
	case GoalLose:
		maintenance -= goalAdjustment
	case GoalGain:
		maintenance += goalAdjustment
	case GoalMaintain:
	default:
		return 0, invalid("goal", "unknown goal %q", goal)
	}
	return roundHalfUp(maintenance), nil
}

// ComputeTarget validates the profile and runs both formulas.
func ComputeTarget(p BodyProfile) (float64, DailyTarget, error) {
	if err := p.Validate(); err != nil {
		return 0, DailyTarget{}, err
	}
	sex, err := p.BMRSex()
	if err != nil {
		return 0, DailyTarget{}, err
	}
	bmr, err := ComputeBMR(p.WeightKg, p.HeightCm, p.AgeYears, sex)
	if err != nil {
		return 0, DailyTarget{}, err
	}
	target, err := ComputeDailyTarget(bmr, p.ActivityLevel, p.Goal)
	if err != nil {
		return 0, DailyTarget{}, err
	}
	return bmr, DailyTarget{TargetCalories: target}, nil
}

// ComputeEntryNutrition converts per-100g food data into absolute values for
// quantityGrams. Calories round to whole numbers, macros to one decimal.
func ComputeEntryNutrition(food FoodItem, quantityGrams float64) (EntryNutrition, error) {
	if err := food.Validate(); err != nil {
		return EntryNutrition{}, err
	}
	if math.IsNaN(quantityGrams) || math.IsInf(quantityGrams, 0) || quantityGrams <= 0 {
		return EntryNutrition{}, invalid("quantity_g", "must be > 0")
	}

	return EntryNutrition{
		Calories: int(halfUp(scaled(food.CaloriesPer100g, quantityGrams), 0).IntPart()),
		Protein:  scaleMacro(food.ProteinPer100g, quantityGrams),
		Carbs:    scaleMacro(food.CarbsPer100g, quantityGrams),
		Fat:      scaleMacro(food.FatPer100g, quantityGrams),
	}, nil
}

// Validate rejects blank names and negative or non-finite per-100g values.
func (f FoodItem) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return invalid("name", "is required")
	}
	if err := checkNonNegative("calories_per_100g", f.CaloriesPer100g); err != nil {
		return err
	}
	for _, m := range []struct {
		field string
		v     *float64
	}{
		{"protein_per_100g", f.ProteinPer100g},
		{"carbs_per_100g", f.CarbsPer100g},
		{"fat_per_100g", f.FatPer100g},
	} {
		if m.v == nil {
			continue
		}
		if err := checkNonNegative(m.field, *m.v); err != nil {
			return err
		}
	}
	return nil
}

/* ─── Rounding ───────────────────────────────────────────────────────── */

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.New(5, -1)
)

// scaled is per100g * quantityGrams / 100 in exact decimal arithmetic, so
// 4.6 kcal/100g at 750 g is exactly 34.5 and rounds to 35.
func scaled(per100g, quantityGrams float64) decimal.Decimal {
	return decimal.NewFromFloat(per100g).Mul(decimal.NewFromFloat(quantityGrams)).Div(hundred)
}

func scaleMacro(per100g *float64, quantityGrams float64) *float64 {
	if per100g == nil {
		return nil
	}
	v, _ := halfUp(scaled(*per100g, quantityGrams), 1).Float64()
	return &v
}

// halfUp rounds d to places decimals with halves going up, negatives included
// (-0.5 → 0). decimal.Round would send halves away from zero instead.
func halfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Mul(decimal.New(1, places)).Add(half).Floor().Mul(decimal.New(1, -places))
}

// settle drops binary noise below 1e-9 so a float that is a decimal half
// (2.4499999999999997 for 2.45) rounds as one.
func settle(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(9)
}

// roundHalfUp rounds to the nearest integer with .5 going up (247.5 → 248).
func roundHalfUp(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return int(v)
	}
	return int(halfUp(settle(v), 0).IntPart())
}

// RoundTenth rounds half up to one decimal place.
func RoundTenth(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := halfUp(settle(v), 1).Float64()
	return f
}
