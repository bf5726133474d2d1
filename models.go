package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/calorie-tracker-api/internal/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Database rows ──────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profileRow maps to profiles. Every body field is nullable so a freshly
// created user has a row before filling in the form.
type profileRow struct {
	UserID         int        `json:"user_id"         db:"user_id"`
	HeightCM       *float64   `json:"height_cm"       db:"height_cm"`
	WeightKG       *float64   `json:"weight_kg"       db:"weight_kg"`
	AgeYears       *int       `json:"age_years"       db:"age_years"`
	Sex            *string    `json:"sex"             db:"sex"`
	FormulaSex     *string    `json:"formula_sex"     db:"formula_sex"`
	ActivityLevel  *string    `json:"activity_level"  db:"activity_level"`
	Goal           *string    `json:"goal"            db:"goal"`
	TargetCalories *int       `json:"target_calories" db:"target_calories"`
	CreatedAt      *time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"      db:"updated_at"`

	// Computed on read; not stored.
	ComputedBMR *float64 `json:"computed_bmr,omitempty" db:"-"`
}

// foodRow maps to the foods catalog table.
type foodRow struct {
	ID              int        `json:"id"                db:"id"`
	Name            string     `json:"name"              db:"name"`
	Brand           *string    `json:"brand"             db:"brand"`
	Category        *string    `json:"category"          db:"category"`
	CaloriesPer100g float64    `json:"calories_per_100g" db:"calories_per_100g"`
	ProteinPer100g  *float64   `json:"protein_per_100g"  db:"protein_per_100g"`
	CarbsPer100g    *float64   `json:"carbs_per_100g"    db:"carbs_per_100g"`
	FatPer100g      *float64   `json:"fat_per_100g"      db:"fat_per_100g"`
	CreatedAt       *time.Time `json:"created_at"        db:"created_at"`
}

// foodLogRow maps to food_logs. id is a uuid column scanned as text.
type foodLogRow struct {
	ID        string     `db:"id"`
	UserID    int        `db:"user_id"`
	FoodName  string     `db:"food_name"`
	QuantityG float64    `db:"quantity_g"`
	MealType  string     `db:"meal_type"`
	Calories  int        `db:"calories"`
	Protein   *float64   `db:"protein"`
	Carbs     *float64   `db:"carbs"`
	Fat       *float64   `db:"fat"`
	LoggedAt  time.Time  `db:"logged_at"`
	CreatedAt *time.Time `db:"created_at"`
}

// weightEntry maps to weight_log. One row per user per date.
type weightEntry struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	WeightKG  float64    `json:"weight_kg"  db:"weight_kg"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

/* ─── Requests ───────────────────────────────────────────────────────── */

// putProfileRequest is the request body for PUT /api/profile. All body fields
// are required because the target is recomputed from the full profile.
type putProfileRequest struct {
	HeightCM      *float64 `json:"height_cm"`
	WeightKG      *float64 `json:"weight_kg"`
	AgeYears      *int     `json:"age_years"`
	Sex           string   `json:"sex"`
	FormulaSex    string   `json:"formula_sex"`
	ActivityLevel string   `json:"activity_level"`
	Goal          string   `json:"goal"`
}

// foodPayload is a per-100g food item as sent by clients and returned by
// search. ID is nil for built-in foods that have no catalog row.
type foodPayload struct {
	ID              *int     `json:"id,omitempty"`
	Name            string   `json:"name"`
	Brand           string   `json:"brand,omitempty"`
	Category        string   `json:"category,omitempty"`
	CaloriesPer100g float64  `json:"calories_per_100g"`
	ProteinPer100g  *float64 `json:"protein_per_100g"`
	CarbsPer100g    *float64 `json:"carbs_per_100g"`
	FatPer100g      *float64 `json:"fat_per_100g"`
	Source          string   `json:"source,omitempty"`
}

// createFoodLogEntryRequest is the body for POST and PUT /api/food-log/items.
// Exactly one of FoodID and Food identifies what was eaten.
type createFoodLogEntryRequest struct {
	FoodID    *int         `json:"food_id"`
	Food      *foodPayload `json:"food"`
	QuantityG float64      `json:"quantity_g"`
	MealType  string       `json:"meal_type"`
	LoggedAt  *time.Time   `json:"logged_at"`
}

// previewRequest is the body for POST /api/food-log/preview.
type previewRequest struct {
	Food      foodPayload `json:"food"`
	QuantityG float64     `json:"quantity_g"`
}

/* ─── Responses ──────────────────────────────────────────────────────── */

// entryResponse is one food log entry as returned to clients.
type entryResponse struct {
	ID        string    `json:"id"`
	FoodName  string    `json:"food_name"`
	QuantityG float64   `json:"quantity_g"`
	MealType  string    `json:"meal_type"`
	Calories  int       `json:"calories"`
	Protein   *float64  `json:"protein"`
	Carbs     *float64  `json:"carbs"`
	Fat       *float64  `json:"fat"`
	LoggedAt  time.Time `json:"logged_at"`
}

// nutritionResponse is the computed nutrition for a quantity of food.
type nutritionResponse struct {
	QuantityG float64  `json:"quantity_g"`
	Calories  int      `json:"calories"`
	Protein   *float64 `json:"protein"`
	Carbs     *float64 `json:"carbs"`
	Fat       *float64 `json:"fat"`
}

// mealSummary is one meal slot inside dailySummary.
type mealSummary struct {
	MealType string          `json:"meal_type"`
	Calories int             `json:"calories"`
	ProteinG float64         `json:"protein_g"`
	CarbsG   float64         `json:"carbs_g"`
	FatG     float64         `json:"fat_g"`
	Items    []entryResponse `json:"items"`
}

// dailySummary is the response shape for GET /api/food-log/daily.
// TargetCalories is nil until the user has saved a profile.
type dailySummary struct {
	Date               string          `json:"date"`
	Timezone           string          `json:"timezone"`
	TargetCalories     *int            `json:"target_calories"`
	TotalCalories      int             `json:"total_calories"`
	ProteinG           float64         `json:"protein_g"`
	CarbsG             float64         `json:"carbs_g"`
	FatG               float64         `json:"fat_g"`
	ProgressPercentage float64         `json:"progress_percentage"`
	RemainingCalories  int             `json:"remaining_calories"`
	Meals              []mealSummary   `json:"meals"`
	Items              []entryResponse `json:"items"`
}

// weekDaySummary is one day's entry in the GET /api/food-log/week-summary response.
// Days with no logged items have HasData=false and zero calorie fields.
type weekDaySummary struct {
	Date               DateOnly `json:"date"`
	TargetCalories     int      `json:"target_calories"`
	TotalCalories      int      `json:"total_calories"`
	RemainingCalories  int      `json:"remaining_calories"`
	ProgressPercentage float64  `json:"progress_percentage"`
	ProteinG           float64  `json:"protein_g"`
	CarbsG             float64  `json:"carbs_g"`
	FatG               float64  `json:"fat_g"`
	HasData            bool     `json:"has_data"`
}

// weightLogResponse is returned by POST /api/weight-log. TargetCalories is
// set when the new weight produced a recomputed target.
type weightLogResponse struct {
	Entry          weightEntry `json:"entry"`
	TargetCalories *int        `json:"target_calories,omitempty"`
}

/* ─── Boundary conversions ───────────────────────────────────────────── */

// toEntry validates a food_logs row once on the way in so the aggregator
// only sees typed values.
func (r foodLogRow) toEntry() (nutrition.FoodLogEntry, error) {
	meal, err := nutrition.ParseMealType(r.MealType)
	if err != nil {
		return nutrition.FoodLogEntry{}, err
	}
	if r.QuantityG <= 0 {
		return nutrition.FoodLogEntry{}, &nutrition.InputError{Field: "quantity_g", Reason: "must be > 0"}
	}
	if r.Calories < 0 {
		return nutrition.FoodLogEntry{}, &nutrition.InputError{Field: "calories", Reason: "must be >= 0"}
	}
	for _, m := range []struct {
		field string
		v     *float64
	}{{"protein", r.Protein}, {"carbs", r.Carbs}, {"fat", r.Fat}} {
		if m.v != nil && !(*m.v >= 0) {
			return nutrition.FoodLogEntry{}, &nutrition.InputError{Field: m.field, Reason: "must be >= 0"}
		}
	}
	return nutrition.FoodLogEntry{
		ID:            r.ID,
		FoodName:      r.FoodName,
		QuantityGrams: r.QuantityG,
		MealType:      meal,
		Calories:      r.Calories,
		Protein:       r.Protein,
		Carbs:         r.Carbs,
		Fat:           r.Fat,
		LoggedAt:      r.LoggedAt.UTC(),
	}, nil
}

// toProfile converts a stored profile into calculator input. Any missing
// field means the user has not completed the profile form yet.
func (r profileRow) toProfile() (nutrition.BodyProfile, error) {
	if r.HeightCM == nil || r.WeightKG == nil || r.AgeYears == nil ||
		r.Sex == nil || r.ActivityLevel == nil || r.Goal == nil {
		return nutrition.BodyProfile{}, &nutrition.InputError{Field: "profile", Reason: "incomplete"}
	}
	p := nutrition.BodyProfile{
		WeightKg:      *r.WeightKG,
		HeightCm:      *r.HeightCM,
		AgeYears:      *r.AgeYears,
		Sex:           nutrition.Sex(*r.Sex),
		ActivityLevel: nutrition.ActivityLevel(*r.ActivityLevel),
		Goal:          nutrition.Goal(*r.Goal),
	}
	if r.FormulaSex != nil {
		p.FormulaSex = nutrition.Sex(*r.FormulaSex)
	}
	return p, p.Validate()
}

func (r foodRow) toFoodItem() nutrition.FoodItem {
	f := nutrition.FoodItem{
		Name:            r.Name,
		CaloriesPer100g: r.CaloriesPer100g,
		ProteinPer100g:  r.ProteinPer100g,
		CarbsPer100g:    r.CarbsPer100g,
		FatPer100g:      r.FatPer100g,
	}
	if r.Brand != nil {
		f.Brand = *r.Brand
	}
	return f
}

func (r foodRow) toPayload() foodPayload {
	p := foodPayloadFromItem(r.toFoodItem(), "catalog")
	id := r.ID
	p.ID = &id
	if r.Category != nil {
		p.Category = *r.Category
	}
	return p
}

func (p foodPayload) toFoodItem() nutrition.FoodItem {
	return nutrition.FoodItem{
		Name:            p.Name,
		Brand:           p.Brand,
		CaloriesPer100g: p.CaloriesPer100g,
		ProteinPer100g:  p.ProteinPer100g,
		CarbsPer100g:    p.CarbsPer100g,
		FatPer100g:      p.FatPer100g,
	}
}

func foodPayloadFromItem(f nutrition.FoodItem, source string) foodPayload {
	return foodPayload{
		Name:            f.Name,
		Brand:           f.Brand,
		CaloriesPer100g: f.CaloriesPer100g,
		ProteinPer100g:  f.ProteinPer100g,
		CarbsPer100g:    f.CarbsPer100g,
		FatPer100g:      f.FatPer100g,
		Source:          source,
	}
}

func entryResponseFrom(e nutrition.FoodLogEntry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		FoodName:  e.FoodName,
		QuantityG: e.QuantityGrams,
		MealType:  string(e.MealType),
		Calories:  e.Calories,
		Protein:   e.Protein,
		Carbs:     e.Carbs,
		Fat:       e.Fat,
		LoggedAt:  e.LoggedAt,
	}
}

func entryResponses(entries []nutrition.FoodLogEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponseFrom(e))
	}
	return out
}
