package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/core/domain"
)

type stubAuth struct {
	verifyFn func(ctx context.Context, token string) (*domain.Identity, error)
	calls    int
}

func (s *stubAuth) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	s.calls++
	return s.verifyFn(ctx, token)
}

func (s *stubAuth) Authorize(identity *domain.Identity, required ...domain.Role) error {
	if identity == nil {
		return domain.ErrUnauthorized
	}
	if !identity.HasAnyRole(required...) {
		return domain.ErrForbidden
	}
	return nil
}

func acceptToken(want string, identity *domain.Identity) *stubAuth {
	return &stubAuth{verifyFn: func(_ context.Context, token string) (*domain.Identity, error) {
		if token != want {
			return nil, domain.ErrUnauthorized
		}
		return identity, nil
	}}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body.Error.Code
}

func TestAuthenticate_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	admin := &domain.Identity{ID: "u1", Roles: []domain.Role{domain.RoleAdmin}}
	called := false
	handler := Authenticate(acceptToken("good", admin), zerolog.Nop())(func(c echo.Context) error {
		called = true
		if IdentityFrom(c) != admin {
			t.Fatalf("identity not attached")
		}
		if TokenFrom(c) != "good" {
			t.Fatalf("token not attached")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
		verify bool
	}{
		{"missing header", "", false},
		{"wrong scheme", "Token abc", false},
		{"empty token", "Bearer ", false},
		{"invalid token", "Bearer not-a-token", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			auth := acceptToken("good", &domain.Identity{ID: "u1"})
			handler := Authenticate(auth, zerolog.Nop())(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != nil {
				t.Fatalf("expected inline response, got error %v", err)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if code := errorCode(t, rec); code != "UNAUTHORIZED" {
				t.Fatalf("expected UNAUTHORIZED, got %s", code)
			}
			if tc.verify != (auth.calls == 1) {
				t.Fatalf("unexpected verify calls: %d", auth.calls)
			}
		})
	}
}

func TestAuthenticate_SecretUnavailable(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	c := e.NewContext(req, httptest.NewRecorder())

	auth := &stubAuth{verifyFn: func(context.Context, string) (*domain.Identity, error) {
		return nil, domain.ErrSecretUnavailable
	}}
	err := Authenticate(auth, zerolog.Nop())(func(echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrSecretUnavailable) {
		t.Fatalf("expected ErrSecretUnavailable to reach the error handler, got %v", err)
	}
}

func TestOptionalAuth(t *testing.T) {
	admin := &domain.Identity{ID: "u1", Roles: []domain.Role{domain.RoleAdmin}}

	cases := []struct {
		name     string
		header   string
		wantUser bool
	}{
		{"anonymous", "", false},
		{"invalid token", "Bearer bad", false},
		{"valid token", "Bearer good", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			called := false
			handler := OptionalAuth(acceptToken("good", admin), zerolog.Nop())(func(c echo.Context) error {
				called = true
				if got := IdentityFrom(c) != nil; got != tc.wantUser {
					t.Fatalf("identity attached = %v, want %v", got, tc.wantUser)
				}
				return c.NoContent(http.StatusOK)
			})

			if err := handler(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if !called || rec.Code != http.StatusOK {
				t.Fatalf("expected request to pass, code %d", rec.Code)
			}
		})
	}
}
