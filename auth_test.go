package main

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc-123", "abc-123", true},
		{"Bearer   padded  ", "padded", true},
		{"Bearer ", "", false},
		{"bearer abc", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{}
	router := gin.New()
	router.GET("/api/profile", h.authMiddleware(), func(c *gin.Context) {
		t.Error("handler must not run without a token")
	})

	w := doRequest(router, "GET", "/api/profile", "")
	expectError(t, w, http.StatusUnauthorized, "authorization header")
}

func TestLogin_RequiresCredentials(t *testing.T) {
	_, router := newTestRouter()
	for _, body := range []string{`{}`, `{"username":"alice"}`, `{"password":"pw"}`, `nope`} {
		w := doRequest(router, "POST", "/api/login", body)
		expectError(t, w, http.StatusBadRequest, "username and password are required")
	}
}
