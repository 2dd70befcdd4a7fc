package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vitalcare/vitalcare/internal/platform/auth"
)

func newLoginHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	svc := NewService(newMockUserRepo())
	if _, err := svc.Register(context.Background(), "doctor@clinic.example", "Dr. Doe", "hunter2"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewHandler(svc, issuer), echo.New()
}

func TestLogin(t *testing.T) {
	h, e := newLoginHandler(t)

	body := `{"email":"doctor@clinic.example","password":"hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.AccessToken == "" {
		t.Error("expected access token")
	}
	if resp.TokenType != "bearer" {
		t.Errorf("expected bearer token type, got %s", resp.TokenType)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	h, e := newLoginHandler(t)

	body := `{"email":"doctor@clinic.example","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
