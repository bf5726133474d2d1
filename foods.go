package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/calorie-tracker-api/internal/nutrition"
)

// searchResultLimit caps catalog rows per search; built-in foods are extra.
const searchResultLimit = 10

// searchFoods returns built-in common foods followed by catalog rows whose
// name contains q (case-insensitive).
// GET /api/foods/search?q=... A blank q returns an empty list.
func (h *Handler) searchFoods(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	results := []foodPayload{}
	if q == "" {
		c.JSON(http.StatusOK, results)
		return
	}

	for _, f := range nutrition.SearchCommonFoods(q) {
		results = append(results, foodPayloadFromItem(f, "common"))
	}

	rows, err := queryMany[foodRow](h.db, c,
		`SELECT * FROM foods
		 WHERE name ILIKE '%' || @q || '%'
		 ORDER BY name
		 LIMIT @limit`,
		pgx.NamedArgs{"q": escapeLike(q), "limit": searchResultLimit})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to search foods")
		return
	}
	for _, r := range rows {
		results = append(results, r.toPayload())
	}

	c.JSON(http.StatusOK, results)
}

// createFood adds a per-100g food to the shared catalog.
// POST /api/foods.
func (h *Handler) createFood(c *gin.Context) {
	var body foodPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if err := body.toFoodItem().Validate(); inputError(c, err) {
		return
	}

	row, err := queryOne[foodRow](h.db, c,
		`INSERT INTO foods (name, brand, category, calories_per_100g, protein_per_100g, carbs_per_100g, fat_per_100g)
		 VALUES (@name, @brand, @category, @calories, @protein, @carbs, @fat)
		 RETURNING *`,
		pgx.NamedArgs{
			"name": body.Name, "brand": nullableString(body.Brand), "category": nullableString(body.Category),
			"calories": body.CaloriesPer100g, "protein": body.ProteinPer100g,
			"carbs": body.CarbsPer100g, "fat": body.FatPer100g,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create food")
		return
	}

	c.JSON(http.StatusCreated, row.toPayload())
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
