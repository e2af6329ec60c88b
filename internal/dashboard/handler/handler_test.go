package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govdash/internal/choropleth"
	"govdash/internal/dashboard"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/platform/middleware/device"
	"govdash/pkg/requestcontext"
)

type stubService struct {
	got dashboard.Request
	err error
}

func (s *stubService) Build(_ context.Context, req dashboard.Request) (dashboard.View, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return dashboard.FieldWorkerView{Welcome: "Welcome"}, nil
}

func newRouter(svc Service) chi.Router {
	r := chi.NewRouter()
	r.Use(device.Middleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p := domain.Principal{UserID: "field", Role: domain.RoleFieldWorker}
			next.ServeHTTP(w, req.WithContext(requestcontext.WithPrincipal(req.Context(), p)))
		})
	})
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func TestHandleDashboard(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?lang=mr&layer=migration", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mr", string(svc.got.Lang))
	assert.Equal(t, choropleth.LayerMigration, svc.got.Layer)
	assert.Equal(t, requestcontext.DeviceMobile, svc.got.Device)
	assert.Equal(t, "field", svc.got.Caller.UserID)

	var body struct {
		Role string          `json:"role"`
		View json.RawMessage `json:"view"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "field_worker", body.Role)
	assert.Contains(t, string(body.View), `"welcome":"Welcome"`)
}

func TestHandleDashboardErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?layer=rainfall", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(&stubService{err: dErrors.New(dErrors.CodeForbidden, "no")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
