package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"lg/calorie-tracker-api/internal/nutrition"
)

// maxWeightKG bounds weigh-ins to what a scale can plausibly report.
const maxWeightKG = 999.9

// getWeightLog returns weight entries for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start := c.Query("start")
	end := c.Query("end")

	if msg := validateDateRange(start, end); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	entries, err := queryMany[weightEntry](h.db, c,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}
	if entries == nil {
		entries = []weightEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// validateDateRange returns a client-facing message, or "" when the range is usable.
func validateDateRange(start, end string) string {
	if start == "" || end == "" {
		return "start and end query params are required"
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		return "invalid start, expected YYYY-MM-DD"
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		return "invalid end, expected YYYY-MM-DD"
	}
	if start > end {
		return "start must not be after end"
	}
	return ""
}

// upsertWeightEntry creates or updates the weigh-in for the given date.
// POST /api/weight-log. Body: { "date": "YYYY-MM-DD", "weight_kg": 82.4 }.
// When the weigh-in is the user's latest, it also becomes the profile weight
// and the calorie target is recomputed from it.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date     string  `json:"date"`
		WeightKG float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = h.clock().In(h.defaultLocation()).Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.WeightKG <= 0 || body.WeightKG > maxWeightKG {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 999.9")
		return
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`INSERT INTO weight_log (user_id, date, weight_kg)
		 VALUES (@userID, @date, @weightKG)
		 ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": body.Date, "weightKG": body.WeightKG})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}

	resp := weightLogResponse{Entry: entry}
	target, err := h.applyLatestWeight(c, userID, entry)
	if err != nil {
		// The weigh-in itself is saved; a stale target is recoverable on the next profile save.
		log.Printf("[upsertWeightEntry] target recompute failed for user %d: %v", userID, err)
	} else {
		resp.TargetCalories = target
	}

	c.JSON(http.StatusCreated, resp)
}

// applyLatestWeight copies entry's weight onto the profile and stores the
// recomputed target when latestWeightTarget says it applies. Returns the new
// target or nil if skipped.
func (h *Handler) applyLatestWeight(ctx context.Context, userID int, entry weightEntry) (*int, error) {
	var latest time.Time
	err := h.db.QueryRow(ctx,
		"SELECT max(date) FROM weight_log WHERE user_id = $1", userID).Scan(&latest)
	if err != nil {
		return nil, err
	}

	p, err := queryOne[profileRow](h.db, ctx,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	target, ok := latestWeightTarget(p, entry, latest)
	if !ok {
		return nil, nil
	}

	_, err = h.db.Exec(ctx,
		`UPDATE profiles SET weight_kg = @weightKG, target_calories = @target, updated_at = now()
		 WHERE user_id = @userID`,
		pgx.NamedArgs{"weightKG": entry.WeightKG, "target": target, "userID": userID})
	if err != nil {
		return nil, err
	}
	return &target, nil
}

// latestWeightTarget decides whether entry should become the profile weight
// and, if so, the target it produces. Backfilled weigh-ins (older than the
// latest date) and incomplete profiles are skipped.
func latestWeightTarget(p profileRow, entry weightEntry, latest time.Time) (int, bool) {
	if entry.Date.Time.Before(latest) {
		return 0, false
	}
	weight := entry.WeightKG
	p.WeightKG = &weight
	profile, err := p.toProfile()
	if err != nil {
		return 0, false
	}
	_, target, err := nutrition.ComputeTarget(profile)
	if err != nil {
		return 0, false
	}
	return target.TargetCalories, true
}

// updateWeightEntry edits an existing weigh-in's date and/or weight.
// PUT /api/weight-log/:id. Omitted fields keep their stored values; moving an
// entry onto a date that already has one is a 409.
func (h *Handler) updateWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}

	var body struct {
		Date     *string  `json:"date"`
		WeightKG *float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse("2006-01-02", *body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}
	if body.WeightKG != nil && (*body.WeightKG <= 0 || *body.WeightKG > maxWeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 999.9")
		return
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`UPDATE weight_log SET
			date      = COALESCE(@date::date, date),
			weight_kg = COALESCE(@weightKG, weight_kg)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID, "date": body.Date, "weightKG": body.WeightKG})
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		apiError(c, http.StatusConflict, "a weigh-in already exists for that date")
		return
	case err != nil:
		apiError(c, http.StatusInternalServerError, "failed to update weight entry")
		return
	}

	resp := weightLogResponse{Entry: entry}
	if target, err := h.applyLatestWeight(c, userID, entry); err != nil {
		log.Printf("[updateWeightEntry] target recompute failed for user %d: %v", userID, err)
	} else {
		resp.TargetCalories = target
	}

	c.JSON(http.StatusOK, resp)
}

// defaultLocation is the server zone used when a request carries no tz.
func (h *Handler) defaultLocation() *time.Location {
	if h.defaultLoc != nil {
		return h.defaultLoc
	}
	return time.UTC
}

// deleteWeightEntry removes a weight log entry by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
// The profile weight is left as is; it reflects the last weigh-in applied.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}

	result, err := h.db.Exec(c,
		"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}
