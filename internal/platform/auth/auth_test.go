package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, key []byte, roles []string, issuer, audience string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "staff-1",
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: roles,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestJWTMiddleware(t *testing.T) {
	cfg := JWTConfig{Issuer: "sso", Audience: "clinic", SigningKey: []byte("secret")}
	e := echo.New()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, UserIDFromContext(c.Request().Context()))
	}
	mw := JWTMiddleware(cfg, nil)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, cfg.SigningKey, []string{"staff"}, "sso", "clinic"))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(handler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Body.String() != "staff-1" {
			t.Errorf("subject = %q, want staff-1", rec.Body.String())
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		err := mw(handler)(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, []byte("other"), nil, "sso", "clinic"))
		c := e.NewContext(req, httptest.NewRecorder())
		err := mw(handler)(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("skipper bypasses", func(t *testing.T) {
		skip := func(c echo.Context) bool { return true }
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := JWTMiddleware(cfg, skip)(handler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func contextWithRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, UserRolesKey, roles)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	newCtx := func(roles []string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		ctx := req.Context()
		if roles != nil {
			ctx = contextWithRoles(ctx, roles)
		}
		c.SetRequest(req.WithContext(ctx))
		return c
	}

	if err := RequireRole("staff")(handler)(newCtx([]string{"staff"})); err != nil {
		t.Errorf("staff should pass: %v", err)
	}
	if err := RequireRole("staff")(handler)(newCtx([]string{"admin"})); err != nil {
		t.Errorf("admin should always pass: %v", err)
	}
	err := RequireRole("staff")(handler)(newCtx([]string{"patient"}))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}
