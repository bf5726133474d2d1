package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"lg/calorie-tracker-api/internal/nutrition"
)

/* ─── Day selection ──────────────────────────────────────────────────── */

// dayRequest is the calendar day a read is scoped to, fixed once per request.
type dayRequest struct {
	Date  string
	Loc   *time.Location
	Start time.Time // UTC, inclusive
	End   time.Time // UTC, exclusive
}

// parseDay resolves ?date=YYYY-MM-DD&tz=Area/City. date defaults to today in
// tz; tz defaults to the server's DEFAULT_TZ.
func (h *Handler) parseDay(c *gin.Context, dateParam string) (dayRequest, error) {
	loc, err := h.parseLocation(c.Query("tz"))
	if err != nil {
		return dayRequest{}, err
	}

	day := h.clock().In(loc)
	if s := c.Query(dateParam); s != "" {
		day, err = time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			return dayRequest{}, fmt.Errorf("invalid %s, expected YYYY-MM-DD", dateParam)
		}
	}

	start, end := nutrition.DayWindow(day, loc)
	return dayRequest{Date: day.Format("2006-01-02"), Loc: loc, Start: start, End: end}, nil
}

func (h *Handler) parseLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return h.defaultLocation(), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid tz %q", tz)
	}
	return loc, nil
}

/* ─── Loading ────────────────────────────────────────────────────────── */

// loadEntries fetches the user's entries logged in [start, end), most recent
// first. Rows that fail validation are logged and skipped so one bad row does
// not blank the whole dashboard.
func (h *Handler) loadEntries(ctx context.Context, userID int, start, end time.Time) ([]nutrition.FoodLogEntry, error) {
	rows, err := queryMany[foodLogRow](h.db, ctx,
		`SELECT * FROM food_logs
		 WHERE user_id = @userID AND logged_at >= @start AND logged_at < @end
		 ORDER BY logged_at DESC, created_at DESC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		return nil, err
	}
	entries := make([]nutrition.FoodLogEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.toEntry()
		if err != nil {
			log.Printf("[loadEntries] skipping food_logs row %s: %v", r.ID, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// targetCalories returns the stored target, or nil when the user has no
// profile (or an incomplete one).
func (h *Handler) targetCalories(ctx context.Context, userID int) (*int, error) {
	p, err := queryOne[profileRow](h.db, ctx,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.TargetCalories, nil
}

/* ─── Read handlers ──────────────────────────────────────────────────── */

// getDailySummary returns the day's entries with per-meal and total
// aggregates, and progress toward the profile's calorie target.
// GET /api/food-log/daily?date=YYYY-MM-DD&tz=Area/City (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")

	day, err := h.parseDay(c, "date")
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.loadEntries(c, userID, day.Start, day.End)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch entries")
		return
	}
	target, err := h.targetCalories(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, buildDailySummary(day, entries, target))
}

// buildDailySummary shapes nutrition.Summarize output for JSON. Gram totals
// are rounded to one decimal to hide float summation noise. Items are most
// recent first regardless of input order.
func buildDailySummary(day dayRequest, entries []nutrition.FoodLogEntry, target *int) dailySummary {
	targetCalories := 0
	if target != nil {
		targetCalories = *target
	}
	s := nutrition.Summarize(entries, targetCalories)

	meals := make([]mealSummary, 0, len(s.Meals))
	for _, m := range s.Meals {
		meals = append(meals, mealSummary{
			MealType: string(m.MealType),
			Calories: m.Calories,
			ProteinG: nutrition.RoundTenth(m.Macros.Protein),
			CarbsG:   nutrition.RoundTenth(m.Macros.Carbs),
			FatG:     nutrition.RoundTenth(m.Macros.Fat),
			Items:    entryResponses(m.Entries),
		})
	}

	return dailySummary{
		Date:               day.Date,
		Timezone:           day.Loc.String(),
		TargetCalories:     target,
		TotalCalories:      s.TotalCalories,
		ProteinG:           nutrition.RoundTenth(s.Macros.Protein),
		CarbsG:             nutrition.RoundTenth(s.Macros.Carbs),
		FatG:               nutrition.RoundTenth(s.Macros.Fat),
		ProgressPercentage: nutrition.RoundTenth(s.ProgressPercentage),
		RemainingCalories:  s.RemainingCalories,
		Meals:              meals,
		Items:              entryResponses(nutrition.SortByLoggedAtDesc(entries)),
	}
}

// weekStart returns the Monday on or before day.
func weekStart(day time.Time) time.Time {
	weekday := int(day.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// getWeekSummary returns per-day totals for the Mon-Sun week containing
// week_start (default: this week in tz). Days with no entries are included
// with has_data=false.
// GET /api/food-log/week-summary?week_start=YYYY-MM-DD&tz=Area/City.
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")

	day, err := h.parseDay(c, "week_start")
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	monday := weekStart(day.Start.In(day.Loc))
	rangeStart, _ := nutrition.DayWindow(monday, day.Loc)
	_, rangeEnd := nutrition.DayWindow(monday.AddDate(0, 0, 6), day.Loc)

	entries, err := h.loadEntries(c, userID, rangeStart, rangeEnd)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}
	target, err := h.targetCalories(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, buildWeekSummary(monday, day.Loc, entries, target))
}

// buildWeekSummary buckets entries into seven local days starting at monday.
func buildWeekSummary(monday time.Time, loc *time.Location, entries []nutrition.FoodLogEntry, target *int) []weekDaySummary {
	targetCalories := 0
	if target != nil {
		targetCalories = *target
	}

	result := make([]weekDaySummary, 7)
	for i := range result {
		d := monday.AddDate(0, 0, i)
		start, end := nutrition.DayWindow(d, loc)
		dayEntries := nutrition.EntriesInWindow(entries, start, end)
		s := nutrition.Summarize(dayEntries, targetCalories)
		result[i] = weekDaySummary{
			Date:               DateOnly{d},
			TargetCalories:     targetCalories,
			TotalCalories:      s.TotalCalories,
			RemainingCalories:  s.RemainingCalories,
			ProgressPercentage: nutrition.RoundTenth(s.ProgressPercentage),
			ProteinG:           nutrition.RoundTenth(s.Macros.Protein),
			CarbsG:             nutrition.RoundTenth(s.Macros.Carbs),
			FatG:               nutrition.RoundTenth(s.Macros.Fat),
			HasData:            len(dayEntries) > 0,
		}
	}
	return result
}

/* ─── Write handlers ─────────────────────────────────────────────────── */

// previewFoodLogEntry computes nutrition for a food and quantity without
// logging anything. Used by the add-food dialog as the quantity changes.
// POST /api/food-log/preview.
func (h *Handler) previewFoodLogEntry(c *gin.Context) {
	var body previewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := nutrition.ComputeEntryNutrition(body.Food.toFoodItem(), body.QuantityG)
	if inputError(c, err) {
		return
	}

	c.JSON(http.StatusOK, nutritionResponse{
		QuantityG: body.QuantityG,
		Calories:  n.Calories,
		Protein:   n.Protein,
		Carbs:     n.Carbs,
		Fat:       n.Fat,
	})
}

// validate checks everything that does not need the database.
func (r createFoodLogEntryRequest) validate() (nutrition.MealType, error) {
	meal, err := nutrition.ParseMealType(r.MealType)
	if err != nil {
		return "", err
	}
	if (r.FoodID == nil) == (r.Food == nil) {
		return "", &nutrition.InputError{Field: "food", Reason: "exactly one of food_id or food is required"}
	}
	if r.QuantityG <= 0 {
		return "", &nutrition.InputError{Field: "quantity_g", Reason: "must be > 0"}
	}
	if r.Food != nil {
		if err := r.Food.toFoodItem().Validate(); err != nil {
			return "", err
		}
	}
	return meal, nil
}

// buildEntry resolves the food (inline or from the catalog) and converts it
// into a new entry with a fresh id.
func (h *Handler) buildEntry(ctx context.Context, r createFoodLogEntryRequest, meal nutrition.MealType) (nutrition.FoodLogEntry, error) {
	var food nutrition.FoodItem
	if r.Food != nil {
		food = r.Food.toFoodItem()
	} else {
		row, err := queryOne[foodRow](h.db, ctx,
			"SELECT * FROM foods WHERE id = @id",
			pgx.NamedArgs{"id": *r.FoodID})
		if err != nil {
			return nutrition.FoodLogEntry{}, err
		}
		food = row.toFoodItem()
	}

	n, err := nutrition.ComputeEntryNutrition(food, r.QuantityG)
	if err != nil {
		return nutrition.FoodLogEntry{}, err
	}

	loggedAt := h.clock().UTC()
	if r.LoggedAt != nil {
		loggedAt = r.LoggedAt.UTC()
	}
	// timestamptz keeps microseconds
	loggedAt = loggedAt.Truncate(time.Microsecond)
	return nutrition.FoodLogEntry{
		ID:            uuid.NewString(),
		FoodName:      strings.TrimSpace(food.Name),
		QuantityGrams: r.QuantityG,
		MealType:      meal,
		Calories:      n.Calories,
		Protein:       n.Protein,
		Carbs:         n.Carbs,
		Fat:           n.Fat,
		LoggedAt:      loggedAt,
	}, nil
}

const insertFoodLogSQL = `INSERT INTO food_logs (id, user_id, food_name, quantity_g, meal_type, calories, protein, carbs, fat, logged_at)
	 VALUES (@id, @userID, @foodName, @quantityG, @mealType, @calories, @protein, @carbs, @fat, @loggedAt)`

const deleteFoodLogSQL = "DELETE FROM food_logs WHERE id = @id AND user_id = @userID"

var errEntryNotFound = errors.New("entry not found")

// execer is satisfied by pgx.Tx and *pgxpool.Pool.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// swapEntry deletes the user's entry oldID and inserts next in its place.
// Run it inside a transaction: a missing oldID returns errEntryNotFound
// before anything is inserted.
func swapEntry(ctx context.Context, tx execer, userID int, oldID string, next nutrition.FoodLogEntry) error {
	result, err := tx.Exec(ctx, deleteFoodLogSQL, pgx.NamedArgs{"id": oldID, "userID": userID})
	if err != nil {
		return fmt.Errorf("delete %s: %w", oldID, err)
	}
	if result.RowsAffected() == 0 {
		return errEntryNotFound
	}
	if _, err := tx.Exec(ctx, insertFoodLogSQL, insertArgs(userID, next)); err != nil {
		return fmt.Errorf("insert %s: %w", next.ID, err)
	}
	return nil
}

func insertArgs(userID int, e nutrition.FoodLogEntry) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id": e.ID, "userID": userID, "foodName": e.FoodName,
		"quantityG": e.QuantityGrams, "mealType": string(e.MealType),
		"calories": e.Calories, "protein": e.Protein, "carbs": e.Carbs, "fat": e.Fat,
		"loggedAt": e.LoggedAt,
	}
}

// writeEntryError maps buildEntry/insert failures to a response.
func writeEntryError(c *gin.Context, err error, fallback string) {
	switch {
	case inputError(c, err):
	case errors.Is(err, pgx.ErrNoRows):
		apiError(c, http.StatusNotFound, "food not found")
	default:
		apiError(c, http.StatusInternalServerError, fallback)
	}
}

// createFoodLogEntry converts a food + quantity into absolute nutrition and
// logs it against a meal slot.
// POST /api/food-log/items. logged_at defaults to now.
func (h *Handler) createFoodLogEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createFoodLogEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	meal, err := body.validate()
	if inputError(c, err) {
		return
	}

	entry, err := h.buildEntry(c, body, meal)
	if err != nil {
		writeEntryError(c, err, "failed to create entry")
		return
	}

	row, err := queryOne[foodLogRow](h.db, c, insertFoodLogSQL+" RETURNING *", insertArgs(userID, entry))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create entry")
		return
	}
	saved, err := row.toEntry()
	if err != nil {
		log.Printf("[createFoodLogEntry] inserted row %s failed validation: %v", row.ID, err)
		apiError(c, http.StatusInternalServerError, "failed to create entry")
		return
	}

	c.JSON(http.StatusCreated, entryResponseFrom(saved))
}

// replaceFoodLogEntry swaps an entry for a new one. Entries are never edited
// in place: the old row is deleted and a new row (new id) inserted in one
// transaction.
// PUT /api/food-log/items/:id.
func (h *Handler) replaceFoodLogEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}

	var body createFoodLogEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	meal, err := body.validate()
	if inputError(c, err) {
		return
	}

	entry, err := h.buildEntry(c, body, meal)
	if err != nil {
		writeEntryError(c, err, "failed to replace entry")
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to replace entry")
		return
	}
	defer tx.Rollback(c)

	err = swapEntry(c, tx, userID, id, entry)
	if errors.Is(err, errEntryNotFound) {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		log.Printf("[replaceFoodLogEntry] swap failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to replace entry")
		return
	}
	if err := tx.Commit(c); err != nil {
		log.Printf("[replaceFoodLogEntry] commit failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to replace entry")
		return
	}

	c.JSON(http.StatusOK, entryResponseFrom(entry))
}

// deleteFoodLogEntry removes an entry. Returns 204 on success.
// DELETE /api/food-log/items/:id. Ownership is enforced by matching user_id.
func (h *Handler) deleteFoodLogEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}

	result, err := h.db.Exec(c, deleteFoodLogSQL, pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}
