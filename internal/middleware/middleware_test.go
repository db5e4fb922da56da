package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"finboard/internal/config"
	apperrors "finboard/internal/errors"
	"finboard/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.Set(&config.Config{JWTSecret: "test-secret", JWTExpirationDur: time.Minute})
}

func testUser() *models.User {
	u := &models.User{Email: "alice@example.com"}
	u.ID = "0190a3b4-1111-7000-8000-000000000001"
	return u
}

func doRequest(r *gin.Engine, headers map[string]string, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return body.Error.Code
}

func TestWebhookAuthMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{"valid_key", "secret", "secret", http.StatusOK, ""},
		{"wrong_key", "secret", "nope", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"missing_key", "secret", "", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"not_configured", "", "anything", http.StatusServiceUnavailable, "WEBHOOK_NOT_CONFIGURED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(WebhookAuthMiddleware(tt.configuredKey))
			r.POST("/hook", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

			headers := map[string]string{}
			if tt.requestKey != "" {
				headers["X-API-Key"] = tt.requestKey
			}
			rec := doRequest(r, headers, "/hook")
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantErrorCode != "" {
				if code := errorCode(t, rec); code != tt.wantErrorCode {
					t.Errorf("expected error code %s, got %s", tt.wantErrorCode, code)
				}
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	access, err := GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	refresh, err := GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID:           testUser().ID,
		TokenType:        tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("failed to sign foreign token: %v", err)
	}

	r := gin.New()
	r.Use(AuthMiddleware())
	r.POST("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})

	tests := []struct {
		name       string
		headers    map[string]string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"valid", map[string]string{"Authorization": "Bearer " + access}, "/me", http.StatusOK, ""},
		{"query_fallback", nil, "/me?access_token=" + access, http.StatusOK, ""},
		{"missing", nil, "/me", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad_format", map[string]string{"Authorization": "Token " + access}, "/me", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"refresh_token_rejected", map[string]string{"Authorization": "Bearer " + refresh}, "/me", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"wrong_signature", map[string]string{"Authorization": "Bearer " + foreign}, "/me", http.StatusUnauthorized, "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, tt.headers, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("expected error code %s, got %s", tt.wantCode, code)
				}
			}
		})
	}
}

func TestRefreshTokens(t *testing.T) {
	t.Run("valid_refresh", func(t *testing.T) {
		token, err := GenerateRefreshToken(testUser())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		claims, err := ValidateRefreshToken(token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.UserID != testUser().ID {
			t.Errorf("expected user %s, got %s", testUser().ID, claims.UserID)
		}
	})

	t.Run("access_token_is_not_refresh", func(t *testing.T) {
		token, _ := GenerateAccessToken(testUser())
		if _, err := ValidateRefreshToken(token); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("hash_is_stable", func(t *testing.T) {
		if HashToken("abc") != HashToken("abc") || HashToken("abc") == HashToken("abd") {
			t.Error("unexpected hash behaviour")
		}
		if len(HashToken("abc")) != 64 {
			t.Errorf("expected 64 hex chars, got %d", len(HashToken("abc")))
		}
	})
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.POST("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	rec := doRequest(r, nil, "/ping")
	if rec.Header().Get("X-Request-ID") == "" || rec.Body.String() != rec.Header().Get("X-Request-ID") {
		t.Errorf("expected generated request id, got %q", rec.Header().Get("X-Request-ID"))
	}

	rec = doRequest(r, map[string]string{"X-Request-ID": "abc"}, "/ping")
	if rec.Header().Get("X-Request-ID") != "abc" {
		t.Errorf("expected propagated request id, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrPersistence, errors.New("connection refused")))
	})
	r.POST("/plain", func(c *gin.Context) { _ = c.Error(errors.New("boom")) })
	r.POST("/panic", func(c *gin.Context) { panic("nil map") })
	r.POST("/written", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		_ = c.Error(errors.New("late failure"))
	})

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{"/app", http.StatusServiceUnavailable, "PERSISTENCE_ERROR"},
		{"/plain", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/panic", http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doRequest(r, nil, tt.path)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("expected %s, got %s", tt.wantCode, code)
			}
		})
	}

	t.Run("started response is kept", func(t *testing.T) {
		rec := doRequest(r, nil, "/written")
		if rec.Code != http.StatusOK || rec.Body.String() != "partial" {
			t.Errorf("expected untouched response, got %d %q", rec.Code, rec.Body.String())
		}
	})
}
