package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govdash/internal/choropleth"
	"govdash/internal/i18n"
	"govdash/internal/mapview"
	dErrors "govdash/pkg/domain-errors"
)

type stubService struct {
	lastRender mapview.RenderRequest
	lastLang   i18n.Lang
}

func (s *stubService) Render(_ context.Context, req mapview.RenderRequest) *mapview.View {
	s.lastRender = req
	return &mapview.View{Layer: req.Layer, Lang: req.Lang, Regions: []mapview.RegionView{}, Notices: []mapview.LocalizedNotice{}}
}

func (s *stubService) Insight(_ context.Context, id string, layer choropleth.Layer, lang i18n.Lang) (*mapview.Insight, error) {
	s.lastLang = lang
	if id != "UTT" {
		return nil, dErrors.New(dErrors.CodeNotFound, "region not found")
	}
	return &mapview.Insight{DisplayName: "Uttar Pradesh", Layer: layer}, nil
}

func (s *stubService) Analytics(_ context.Context, layer choropleth.Layer, _ i18n.Lang) (*mapview.Analytics, error) {
	return &mapview.Analytics{Layer: layer, Color: mapview.ChartColor(layer)}, nil
}

func newRouter(svc *stubService) http.Handler {
	r := chi.NewRouter()
	New(svc, i18n.Default(), slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func get(h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMapQueryParsing(t *testing.T) {
	svc := &stubService{}
	h := newRouter(svc)

	rec := get(h, "/api/map?layer=migration&selected=UTT&lang=hi")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mapview.RenderRequest{Layer: choropleth.LayerMigration, Selected: "UTT", Lang: i18n.Hindi}, svc.lastRender)

	rec = get(h, "/api/map")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, choropleth.LayerEnrolment, svc.lastRender.Layer)
	assert.Equal(t, i18n.English, svc.lastRender.Lang)

	rec = get(h, "/api/map", "Accept-Language", "bn-IN,bn;q=0.9,en;q=0.5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, i18n.Bengali, svc.lastRender.Lang)

	rec = get(h, "/api/map?layer=rainfall")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLegend(t *testing.T) {
	h := newRouter(&stubService{})

	rec := get(h, "/api/map/legend?layer=updates")
	require.Equal(t, http.StatusOK, rec.Code)
	var lg choropleth.Legend
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&lg))
	assert.Equal(t, choropleth.LayerUpdates, lg.Layer)
	require.NotEmpty(t, lg.Entries)
	assert.NotEmpty(t, lg.Entries[0].Label)

	rec = get(h, "/api/map/legend.png?layer=enrolment")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	assert.NoError(t, err)
}

func TestInsightAndAnalytics(t *testing.T) {
	svc := &stubService{}
	h := newRouter(svc)

	rec := get(h, "/api/regions/UTT?layer=lifecycle&lang=mr")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Uttar Pradesh")
	assert.Equal(t, i18n.Marathi, svc.lastLang)

	rec = get(h, "/api/regions/ZZZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(h, "/api/analytics?layer=lifecycle")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "#ef4444")
}
