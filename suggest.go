package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// suggestRequest is the request body for POST /api/foods/suggest.
type suggestRequest struct {
	Description string `json:"description"`
}

// foodSuggestion is the per-100g estimate returned by the model.
// Confidence is 1-5 indicating how accurate the estimate is.
type foodSuggestion struct {
	Name            string   `json:"name"`
	Brand           string   `json:"brand,omitempty"`
	CaloriesPer100g float64  `json:"calories_per_100g"`
	ProteinPer100g  *float64 `json:"protein_per_100g"`
	CarbsPer100g    *float64 `json:"carbs_per_100g"`
	FatPer100g      *float64 `json:"fat_per_100g"`
	Confidence      int      `json:"confidence"`
}

/* ─── OpenAI prompt ──────────────────────────────────────────────────── */

const foodSystemPrompt = `You are a nutrition assistant. Identify the single food described (or shown in a photo caption) and return a JSON object with values PER 100 GRAMS:
- "name" (string, cleaned up title case, no quantity)
- "brand" (string, only if the description names one, else omit)
- "calories_per_100g" (number)
- "protein_per_100g" (number, grams)
- "carbs_per_100g" (number, grams)
- "fat_per_100g" (number, grams)
- "confidence" (integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unfamiliar or vague items. Only return {"error": "unrecognized"} if the input is not food at all.
Return only valid JSON, no explanation.`

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// openAIMessage is a single message in the OpenAI chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string                 `json:"model"`
	Messages       []openAIMessage        `json:"messages"`
	Temperature    float64                `json:"temperature"`
	ResponseFormat map[string]interface{} `json:"response_format"`
}

// callOpenAI sends a chat completions request and returns the raw content string
// from the first choice.
func callOpenAI(ctx context.Context, messages []openAIMessage, baseURL string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	reqBody := openAIRequest{
		Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		Messages:    messages,
		Temperature: 0,
		ResponseFormat: map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// suggestFood handles POST /api/foods/suggest. It asks the model for a
// per-100g FoodItem matching a free-text description; the client then logs
// it like any catalog food. The estimate is validated like user input so a
// negative or blank value never reaches the calculator.
func (h *Handler) suggestFood(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}

	messages := []openAIMessage{
		{Role: "system", Content: foodSystemPrompt},
		{Role: "user", Content: req.Description},
	}
	content, err := callOpenAI(c.Request.Context(), messages, h.openAIBaseURL)
	if err != nil {
		log.Printf("[suggestFood] OpenAI error: %v", err)
		apiError(c, http.StatusBadGateway, "openai request failed")
		return
	}

	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &errorResp); err != nil {
		log.Printf("[suggestFood] Failed to parse OpenAI response: %v", err)
		apiError(c, http.StatusBadGateway, "openai request failed")
		return
	}
	if errorResp.Error != "" {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	var s foodSuggestion
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		log.Printf("[suggestFood] Failed to parse suggestion JSON: %v", err)
		apiError(c, http.StatusBadGateway, "openai request failed")
		return
	}
	s.Name = strings.TrimSpace(s.Name)

	item := foodPayload{
		Name: s.Name, Brand: s.Brand, CaloriesPer100g: s.CaloriesPer100g,
		ProteinPer100g: s.ProteinPer100g, CarbsPer100g: s.CarbsPer100g, FatPer100g: s.FatPer100g,
	}.toFoodItem()
	if err := item.Validate(); err != nil || s.CaloriesPer100g == 0 {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}
	if s.Confidence < 1 || s.Confidence > 5 {
		s.Confidence = 1
	}

	c.JSON(http.StatusOK, s)
}
