package nutrition

import (
	"math"
	"strings"
)

// Sex selects the Mifflin-St Jeor constant. SexOther is accepted on a profile
// but cannot be fed to ComputeBMR directly; see BodyProfile.FormulaSex.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// ActivityLevel keys into the fixed multiplier table.
type ActivityLevel string

const (
	Sedentary        ActivityLevel = "sedentary"
	LightlyActive    ActivityLevel = "lightly_active"
	ModeratelyActive ActivityLevel = "moderately_active"
	VeryActive       ActivityLevel = "very_active"
	ExtremelyActive  ActivityLevel = "extremely_active"
)

// activityMultipliers is the single source of truth for valid activity levels.
var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:        1.2,
	LightlyActive:    1.375,
	ModeratelyActive: 1.55,
	VeryActive:       1.725,
	ExtremelyActive:  1.9,
}

// ActivityLevels lists the valid levels from least to most active.
var ActivityLevels = []ActivityLevel{Sedentary, LightlyActive, ModeratelyActive, VeryActive, ExtremelyActive}

// Goal shifts maintenance calories by goalAdjustment.
type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// goalAdjustment is roughly one pound of body weight per week (3500 kcal / 7).
const goalAdjustment = 500

// Multiplier returns the TDEE multiplier for the level and whether it is known.
func (a ActivityLevel) Multiplier() (float64, bool) {
	m, ok := activityMultipliers[a]
	return m, ok
}

func (a ActivityLevel) Valid() bool {
	_, ok := activityMultipliers[a]
	return ok
}

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale || s == SexOther
}

func (g Goal) Valid() bool {
	return g == GoalLose || g == GoalMaintain || g == GoalGain
}

// ParseSex normalises case and surrounding whitespace.
func ParseSex(v string) (Sex, error) {
	s := Sex(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", invalid("sex", "must be one of: male, female, other")
	}
	return s, nil
}

func ParseActivityLevel(v string) (ActivityLevel, error) {
	a := ActivityLevel(strings.ToLower(strings.TrimSpace(v)))
	if !a.Valid() {
		return "", invalid("activity_level", "must be one of: sedentary, lightly_active, moderately_active, very_active, extremely_active")
	}
	return a, nil
}

func ParseGoal(v string) (Goal, error) {
	g := Goal(strings.ToLower(strings.TrimSpace(v)))
	if !g.Valid() {
		return "", invalid("goal", "must be one of: lose, maintain, gain")
	}
	return g, nil
}

// BodyProfile is the user-entered input to the calculator.
//
// FormulaSex is the explicit male/female branch to use when Sex is SexOther.
// It is ignored for male and female profiles.
type BodyProfile struct {
	WeightKg      float64
	HeightCm      float64
	AgeYears      int
	Sex           Sex
	FormulaSex    Sex
	ActivityLevel ActivityLevel
	Goal          Goal
}

// BMRSex resolves which Mifflin-St Jeor branch applies to the profile.
// A profile with Sex=other and no male/female FormulaSex is rejected rather
// than silently falling through to either branch.
func (p BodyProfile) BMRSex() (Sex, error) {
	switch p.Sex {
	case SexMale, SexFemale:
		return p.Sex, nil
	case SexOther:
		if p.FormulaSex == SexMale || p.FormulaSex == SexFemale {
			return p.FormulaSex, nil
		}
		return "", invalid("formula_sex", "must be male or female when sex is other")
	default:
		return "", invalid("sex", "must be one of: male, female, other")
	}
}

// Validate checks every field without computing anything.
func (p BodyProfile) Validate() error {
	if err := checkNonNegative("weight_kg", p.WeightKg); err != nil {
		return err
	}
	if err := checkNonNegative("height_cm", p.HeightCm); err != nil {
		return err
	}
	if p.AgeYears < 0 {
		return invalid("age_years", "must be >= 0")
	}
	if _, err := p.BMRSex(); err != nil {
		return err
	}
	if !p.ActivityLevel.Valid() {
		return invalid("activity_level", "unknown level %q", p.ActivityLevel)
	}
	if !p.Goal.Valid() {
		return invalid("goal", "unknown goal %q", p.Goal)
	}
	return nil
}

func checkNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v < 0 {
		return invalid(field, "must be >= 0")
	}
	return nil
}
