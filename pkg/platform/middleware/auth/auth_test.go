package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"govdash/pkg/domain"
	"govdash/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRequireAuth(t *testing.T) {
	var got domain.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.Principal(r.Context())
	})
	valid := stubValidator{claims: &JWTClaims{Principal: domain.Principal{UserID: "admin", Role: domain.RolePolicymaker}}}

	t.Run("missing header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		RequireAuth(valid, nil, quiet)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), `"unauthorized"`)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		RequireAuth(stubValidator{err: errors.New("bad")}, nil, quiet)(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid header token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		RequireAuth(valid, nil, quiet)(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "admin", got.UserID)
	})

	t.Run("query token for websocket clients", func(t *testing.T) {
		got = domain.Principal{}
		rr := httptest.NewRecorder()
		RequireAuth(valid, nil, quiet)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stream?access_token=good", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.RolePolicymaker, got.Role)
	})
}

func TestRequireAuthRevocation(t *testing.T) {
	expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var gotJTI string
	var gotExpiry time.Time
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotJTI = GetTokenID(r.Context())
		gotExpiry = GetTokenExpiry(r.Context())
	})
	claims := func(jti string) stubValidator {
		return stubValidator{claims: &JWTClaims{
			Principal: domain.Principal{UserID: "admin", Role: domain.RolePolicymaker},
			JTI:       jti,
			ExpiresAt: expires,
		}}
	}
	serve := func(v JWTValidator, rc TokenRevocationChecker) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		RequireAuth(v, rc, quiet)(next).ServeHTTP(rr, req)
		return rr
	}

	t.Run("revoked token", func(t *testing.T) {
		rr := serve(claims("j1"), stubRevocations{revoked: map[string]bool{"j1": true}})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "revoked")
	})

	t.Run("token without jti", func(t *testing.T) {
		rr := serve(claims(""), stubRevocations{})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("checker failure", func(t *testing.T) {
		rr := serve(claims("j1"), stubRevocations{err: errors.New("redis down")})
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("live token exposes jti and expiry", func(t *testing.T) {
		rr := serve(claims("j2"), stubRevocations{revoked: map[string]bool{"j1": true}})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "j2", gotJTI)
		assert.True(t, expires.Equal(gotExpiry))
	})
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	mw := RequireRole(quiet, domain.RoleDataSupervisor)

	cases := []struct {
		name string
		p    domain.Principal
		want int
	}{
		{"anonymous", domain.Principal{}, http.StatusUnauthorized},
		{"wrong role", domain.Principal{UserID: "w1", Role: domain.RoleFieldWorker}, http.StatusForbidden},
		{"permitted", domain.Principal{UserID: "s1", Role: domain.RoleDataSupervisor}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(requestcontext.WithPrincipal(req.Context(), tc.p))
			rr := httptest.NewRecorder()
			mw(ok).ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}
