package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testUser() *models.User {
	u := &models.User{Email: "ada@example.com"}
	u.ID = "0190b5d2-8c1e-7a3c-9f00-000000000001"
	return u
}

func setupAuthRouter(tokens *TokenManager) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(tokens))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserID), "email": c.GetString(ContextEmail)})
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := parseBody(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)

	token, err := tokens.Generate(testUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != testUser().ID || claims.Email != "ada@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestTokenManager_Rejects(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)

	other, _ := NewTokenManager("other-secret", time.Hour).Generate(testUser())
	if _, err := tokens.Parse(other); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}

	expired, _ := NewTokenManager("secret", -time.Minute).Generate(testUser())
	if _, err := tokens.Parse(expired); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	valid, err := tokens.Generate(testUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid_token", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing_header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong_scheme", header: "Basic " + valid, wantStatus: http.StatusUnauthorized},
		{name: "garbage_token", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
	}

	r := setupAuthRouter(tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, tt.header)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if got := parseBody(t, rec)["user_id"]; got != testUser().ID {
					t.Errorf("expected user id in context, got %v", got)
				}
				return
			}
			if code := errorCode(t, rec); code != "UNAUTHORIZED" {
				t.Errorf("expected UNAUTHORIZED, got %s", code)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.WithDetails(apperrors.ErrInvalidInput, []apperrors.FieldError{{Field: "amount", Message: "amount is required"}}))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("db password leaked in message"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", http.NoBody))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	errObj := parseBody(t, rec)["error"].(map[string]interface{})
	if details, ok := errObj["details"].([]interface{}); !ok || len(details) != 1 {
		t.Errorf("expected one field detail, got %v", errObj["details"])
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", http.NoBody))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", code)
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", http.NoBody))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", code)
	}
}

func TestRequestLogging_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("expected incoming request id to be kept, got %q", got)
	}
}
