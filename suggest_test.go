package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupSuggestTest creates a Gin engine with a mock OpenAI server and returns
// the router and a function to set the mock response. No DB needed.
func setupSuggestTest() (*gin.Engine, *httptest.Server, func(int, interface{})) {
	var mockStatus int
	var mockBody interface{}

	mockOpenAI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(mockStatus)
		json.NewEncoder(w).Encode(mockBody)
	}))

	gin.SetMode(gin.TestMode)
	h := Handler{openAIBaseURL: mockOpenAI.URL}
	router := gin.New()
	// Skip auth middleware for tests; set a dummy user_id
	router.POST("/api/foods/suggest", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, h.suggestFood)

	setMock := func(status int, body interface{}) {
		mockStatus = status
		mockBody = body
	}

	return router, mockOpenAI, setMock
}

func doSuggestRequest(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/foods/suggest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// openAIChatResponse wraps a content string in the OpenAI chat completions
// response shape (choices[0].message.content).
func openAIChatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"content": content,
				},
			},
		},
	}
}

func TestSuggest_FoodSuccess(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	suggestion := `{"name":"Greek Yogurt","brand":"Fage","calories_per_100g":97,"protein_per_100g":9,"carbs_per_100g":3.9,"fat_per_100g":5,"confidence":4}`
	setMock(http.StatusOK, openAIChatResponse(suggestion))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doSuggestRequest(router, `{"description":"fage greek yogurt"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp foodSuggestion
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Name != "Greek Yogurt" {
		t.Errorf("expected name 'Greek Yogurt', got %q", resp.Name)
	}
	if resp.Brand != "Fage" {
		t.Errorf("expected brand 'Fage', got %q", resp.Brand)
	}
	if resp.CaloriesPer100g != 97 {
		t.Errorf("expected 97 kcal/100g, got %v", resp.CaloriesPer100g)
	}
	if resp.ProteinPer100g == nil || *resp.ProteinPer100g != 9 {
		t.Errorf("expected protein 9, got %v", resp.ProteinPer100g)
	}
	if resp.Confidence != 4 {
		t.Errorf("expected confidence 4, got %d", resp.Confidence)
	}
}

func TestSuggest_MissingMacrosStayNull(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusOK, openAIChatResponse(`{"name":"Mystery Stew","calories_per_100g":120,"confidence":2}`))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doSuggestRequest(router, `{"description":"grandma's stew"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	for _, key := range []string{"protein_per_100g", "carbs_per_100g", "fat_per_100g"} {
		if v, ok := raw[key]; !ok || v != nil {
			t.Errorf("expected %s to be null, got %v", key, v)
		}
	}
}

func TestSuggest_Unrecognized(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusOK, openAIChatResponse(`{"error":"unrecognized"}`))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doSuggestRequest(router, `{"description":"a red brick"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "unrecognized" {
		t.Errorf("expected error 'unrecognized', got %q", resp["error"])
	}
}

func TestSuggest_InvalidEstimateTreatedAsUnrecognized(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"negative calories", `{"name":"Oddity","calories_per_100g":-5,"confidence":3}`},
		{"negative fat", `{"name":"Oddity","calories_per_100g":50,"fat_per_100g":-1,"confidence":3}`},
		{"blank name", `{"name":"  ","calories_per_100g":50,"confidence":3}`},
		{"zero calories", `{"name":"Water","calories_per_100g":0,"confidence":5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, mockServer, setMock := setupSuggestTest()
			defer mockServer.Close()

			setMock(http.StatusOK, openAIChatResponse(tc.content))
			t.Setenv("OPENAI_API_KEY", "test-key")

			w := doSuggestRequest(router, `{"description":"something"}`)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			var resp map[string]interface{}
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp["error"] != "unrecognized" {
				t.Errorf("expected unrecognized, got %s", w.Body.String())
			}
		})
	}
}

func TestSuggest_ConfidenceOutOfRangeClamped(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusOK, openAIChatResponse(`{"name":"Toast","calories_per_100g":265,"confidence":9}`))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doSuggestRequest(router, `{"description":"toast"}`)
	var resp foodSuggestion
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Confidence != 1 {
		t.Errorf("expected confidence 1, got %d", resp.Confidence)
	}
}

func TestSuggest_OpenAIError500(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusInternalServerError, map[string]string{"error": "internal"})
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doSuggestRequest(router, `{"description":"banana"}`)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestSuggest_MissingAPIKey(t *testing.T) {
	router, mockServer, _ := setupSuggestTest()
	defer mockServer.Close()
	t.Setenv("OPENAI_API_KEY", "")

	w := doSuggestRequest(router, `{"description":"banana"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestSuggest_EmptyDescription(t *testing.T) {
	router, mockServer, _ := setupSuggestTest()
	defer mockServer.Close()
	t.Setenv("OPENAI_API_KEY", "test-key")

	for _, body := range []string{`{"description":""}`, `{"description":"   "}`, `not json`} {
		w := doSuggestRequest(router, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, w.Code)
		}
	}
}

func TestSuggest_MalformedJSON(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusOK, openAIChatResponse(`not valid json at all`))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doSuggestRequest(router, `{"description":"banana"}`)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestSuggest_SendsDescriptionAndAuth(t *testing.T) {
	var gotAuth, gotBody string
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		json.NewEncoder(w).Encode(openAIChatResponse(`{"name":"Banana","calories_per_100g":89,"confidence":5}`))
	}))
	defer mock.Close()

	gin.SetMode(gin.TestMode)
	h := Handler{openAIBaseURL: mock.URL}
	router := gin.New()
	router.POST("/api/foods/suggest", h.suggestFood)
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doSuggestRequest(router, `{"description":"one ripe banana"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if !strings.Contains(gotBody, "one ripe banana") {
		t.Errorf("expected description in request body, got %s", gotBody)
	}
	if !strings.Contains(gotBody, `"json_object"`) {
		t.Errorf("expected json_object response format, got %s", gotBody)
	}
}
