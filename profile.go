package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/calorie-tracker-api/internal/nutrition"
)

// getProfile returns the body profile for the authenticated user.
// computed_bmr is filled in when every body field is present.
// GET /api/profile. Body fields are null until the profile form is saved.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := queryOne[profileRow](h.db, c,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	populateComputedBMR(&p)

	c.JSON(http.StatusOK, p)
}

// putProfile validates the submitted body metrics, computes the daily
// calorie target, and upserts the profile with that target.
// PUT /api/profile.
func (h *Handler) putProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body putProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := body.toProfile()
	if err != nil {
		if !inputError(c, err) {
			apiError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	bmr, target, err := nutrition.ComputeTarget(profile)
	if inputError(c, err) {
		return
	}

	args := pgx.NamedArgs{
		"userID":         userID,
		"heightCM":       profile.HeightCm,
		"weightKG":       profile.WeightKg,
		"ageYears":       profile.AgeYears,
		"sex":            string(profile.Sex),
		"formulaSex":     nullableString(string(profile.FormulaSex)),
		"activityLevel":  string(profile.ActivityLevel),
		"goal":           string(profile.Goal),
		"targetCalories": target.TargetCalories,
	}
	p, err := queryOne[profileRow](h.db, c,
		`INSERT INTO profiles (user_id, height_cm, weight_kg, age_years, sex, formula_sex, activity_level, goal, target_calories)
		 VALUES (@userID, @heightCM, @weightKG, @ageYears, @sex, @formulaSex, @activityLevel, @goal, @targetCalories)
		 ON CONFLICT (user_id) DO UPDATE SET
			height_cm       = EXCLUDED.height_cm,
			weight_kg       = EXCLUDED.weight_kg,
			age_years       = EXCLUDED.age_years,
			sex             = EXCLUDED.sex,
			formula_sex     = EXCLUDED.formula_sex,
			activity_level  = EXCLUDED.activity_level,
			goal            = EXCLUDED.goal,
			target_calories = EXCLUDED.target_calories,
			updated_at      = now()
		 RETURNING *`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	p.ComputedBMR = &bmr
	c.JSON(http.StatusOK, p)
}

// toProfile parses the request into calculator input. formula_sex is only
// kept when sex is other; for male/female it is meaningless and dropped.
func (r putProfileRequest) toProfile() (nutrition.BodyProfile, error) {
	if r.HeightCM == nil || r.WeightKG == nil || r.AgeYears == nil {
		return nutrition.BodyProfile{}, &nutrition.InputError{Field: "profile", Reason: "height_cm, weight_kg and age_years are required"}
	}
	sex, err := nutrition.ParseSex(r.Sex)
	if err != nil {
		return nutrition.BodyProfile{}, err
	}
	level, err := nutrition.ParseActivityLevel(r.ActivityLevel)
	if err != nil {
		return nutrition.BodyProfile{}, err
	}
	goal, err := nutrition.ParseGoal(r.Goal)
	if err != nil {
		return nutrition.BodyProfile{}, err
	}

	p := nutrition.BodyProfile{
		WeightKg:      *r.WeightKG,
		HeightCm:      *r.HeightCM,
		AgeYears:      *r.AgeYears,
		Sex:           sex,
		ActivityLevel: level,
		Goal:          goal,
	}
	if sex == nutrition.SexOther && r.FormulaSex != "" {
		fs, err := nutrition.ParseSex(r.FormulaSex)
		if err != nil {
			return nutrition.BodyProfile{}, &nutrition.InputError{Field: "formula_sex", Reason: "must be male or female"}
		}
		p.FormulaSex = fs
	}
	return p, p.Validate()
}

// populateComputedBMR fills computed_bmr from the stored profile.
// No-ops if any required profile field is missing or invalid.
func populateComputedBMR(p *profileRow) {
	profile, err := p.toProfile()
	if err != nil {
		return
	}
	if bmr, _, err := nutrition.ComputeTarget(profile); err == nil {
		p.ComputedBMR = &bmr
	}
}

// nullableString maps "" to SQL NULL.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
