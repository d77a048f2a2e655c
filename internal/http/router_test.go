package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cierres/internal/clients"
	"github.com/MrJamesThe3rd/cierres/internal/closing"
	"github.com/MrJamesThe3rd/cierres/internal/export"
	"github.com/MrJamesThe3rd/cierres/internal/history"
	"github.com/MrJamesThe3rd/cierres/internal/history/filestore"
	cierresHttp "github.com/MrJamesThe3rd/cierres/internal/http"
	clientsHandler "github.com/MrJamesThe3rd/cierres/internal/http/clients"
	closingHandler "github.com/MrJamesThe3rd/cierres/internal/http/closing"
	exportHandler "github.com/MrJamesThe3rd/cierres/internal/http/export"
	historyHandler "github.com/MrJamesThe3rd/cierres/internal/http/history"
	"github.com/MrJamesThe3rd/cierres/internal/ingest"
	"github.com/MrJamesThe3rd/cierres/internal/metrics"
)

const marchSheet = `Nom_centro;Nom_cliente;Lin_negocio;Estado;Venta;Coste
Centro A;ALIMERKA;Mant.;Cerrado;1000;800
Centro B;CARREFOUR;Obras;Abierto;500;450
TOTAL;ALIMERKA;;;1500;1250
`

type api struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()

	dir := t.TempDir()

	hist := history.NewService(filestore.New(filepath.Join(dir, "history.json")))
	require.NoError(t, hist.Load(context.Background()))

	m := metrics.New()
	engine := ingest.NewEngine().WithClock(func() time.Time { return time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC) })
	closingSvc := closing.NewService(engine, hist, m)

	clientsSvc, err := clients.NewService(filepath.Join(dir, "clients.yaml"))
	require.NoError(t, err)

	router := cierresHttp.New(
		cierresHttp.Options{CORSOrigins: []string{"*"}, Timeout: 5 * time.Second, Metrics: m.Handler()},
		closingHandler.NewHandler(closingSvc, 1<<20),
		historyHandler.NewHandler(closingSvc),
		exportHandler.NewHandler(export.NewService(closingSvc)),
		clientsHandler.NewHandler(clientsSvc, closingSvc),
	)

	return &api{t: t, handler: router}
}

func (a *api) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	a.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	return rec
}

func (a *api) upload(fileName, content string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(a.t, err)

	_, err = io.WriteString(fw, content)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	return a.do(http.MethodPost, "/api/v1/closings", &buf, mw.FormDataContentType())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func TestRouter_NoClosingLoaded(t *testing.T) {
	a := newAPI(t)

	for _, path := range []string{
		"/api/v1/snapshot",
		"/api/v1/snapshot/rows",
		"/api/v1/snapshot/summary",
		"/api/v1/export/snapshot.xlsx",
		"/api/v1/clients/alimerka/dashboard",
	} {
		rec := a.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	rec := a.do(http.MethodGet, "/api/v1/export/template.xlsx", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Ingest(t *testing.T) {
	a := newAPI(t)

	rec := a.upload("Cierre_Marzo_2024.csv", marchSheet)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[struct {
		Snapshot struct {
			Period   string `json:"period"`
			RowCount int    `json:"row_count"`
		} `json:"snapshot"`
		Accepted  int            `json:"accepted"`
		Discarded map[string]int `json:"discarded"`
		Warnings  []string       `json:"warnings"`
	}](t, rec)

	assert.Equal(t, "Marzo 2024", body.Snapshot.Period)
	assert.Equal(t, 2, body.Snapshot.RowCount)
	assert.Equal(t, 2, body.Accepted)
	assert.Equal(t, map[string]int{"summary": 1}, body.Discarded)
	assert.Empty(t, body.Warnings)

	rec = a.upload("Cierre_Abril_2024.csv", "Nom_centro;Venta;Gastos\nCentro A;1;1\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Coste")

	rec = a.upload("informe.pdf", "%PDF")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.do(http.MethodGet, "/api/v1/snapshot", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Marzo 2024", decode[map[string]any](t, rec)["period"], "failed uploads keep the current closing")
}

func TestRouter_SnapshotViews(t *testing.T) {
	a := newAPI(t)
	require.Equal(t, http.StatusCreated, a.upload("Cierre_Marzo_2024.csv", marchSheet).Code)

	type testCase struct {
		name     string
		path     string
		wantCode int
		wantRows int
	}

	tests := []testCase{
		{name: "All rows", path: "/api/v1/snapshot/rows", wantCode: http.StatusOK, wantRows: 2},
		{name: "By center", path: "/api/v1/snapshot/rows?center=Centro%20A", wantCode: http.StatusOK, wantRows: 1},
		{name: "By client", path: "/api/v1/snapshot/rows?client=carrefour", wantCode: http.StatusOK, wantRows: 1},
		{name: "Low performance", path: "/api/v1/snapshot/rows?low_performance=true", wantCode: http.StatusOK, wantRows: 1},
		{name: "Bad flag", path: "/api/v1/snapshot/rows?low_performance=maybe", wantCode: http.StatusBadRequest},
		{name: "Center detail", path: "/api/v1/snapshot/centers/Centro%20B", wantCode: http.StatusOK, wantRows: 1},
		{name: "Line detail", path: "/api/v1/snapshot/lines/Mant.", wantCode: http.StatusOK, wantRows: 1},
		{name: "Unknown center", path: "/api/v1/snapshot/centers/Centro%20Z", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodGet, tt.path, nil, "")
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantCode != http.StatusOK {
				return
			}

			body := decode[struct {
				Rows []map[string]any `json:"rows"`
			}](t, rec)
			assert.Len(t, body.Rows, tt.wantRows)
		})
	}

	for _, path := range []string{"/api/v1/snapshot/options", "/api/v1/snapshot/summary", "/api/v1/snapshot/clients"} {
		assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, nil, "").Code, path)
	}
}

func TestRouter_History(t *testing.T) {
	a := newAPI(t)
	require.Equal(t, http.StatusCreated, a.upload("Cierre_Marzo_2024.csv", marchSheet).Code)
	require.Equal(t, http.StatusCreated, a.upload("Cierre_Abril_2024.csv", marchSheet).Code)

	rec := a.do(http.MethodGet, "/api/v1/history", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	entries := decode[[]map[string]any](t, rec)
	require.Len(t, entries, 2)
	assert.Equal(t, "Marzo 2024", entries[0]["period"])

	rec = a.do(http.MethodPost, "/api/v1/history/0/select", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Marzo 2024", decode[map[string]any](t, rec)["period"])

	backup := a.do(http.MethodGet, "/api/v1/history/backup", nil, "")
	require.Equal(t, http.StatusOK, backup.Code)
	assert.Contains(t, backup.Header().Get("Content-Disposition"), export.BackupFileName)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/v1/history/7", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodDelete, "/api/v1/history/x", nil, "").Code)

	rec = a.do(http.MethodDelete, "/api/v1/history/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Abril 2024", decode[map[string]any](t, rec)["period"])

	rec = a.do(http.MethodPut, "/api/v1/history/backup", strings.NewReader(`{"period":"x"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPut, "/api/v1/history/backup", bytes.NewReader(backup.Body.Bytes()), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 2.0, decode[map[string]any](t, rec)["count"], 1e-9)
}

func TestRouter_Export(t *testing.T) {
	a := newAPI(t)
	require.Equal(t, http.StatusCreated, a.upload("Cierre_Marzo_2024.csv", marchSheet).Code)

	rec := a.do(http.MethodGet, "/api/v1/export/snapshot.csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Marzo_2024_snapshot.csv")

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/export/report.pdf", nil, "").Code)

	rec = a.do(http.MethodGet, "/api/v1/export", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]string](t, rec), len(export.Kinds))
}

func TestRouter_Clients(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/v1/clients", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]clients.Client](t, rec), 3)

	type testCase struct {
		name     string
		body     string
		wantCode int
	}

	tests := []testCase{
		{name: "Created", body: `{"name":"Mercadona","color":"#00aa00"}`, wantCode: http.StatusCreated},
		{name: "Duplicate", body: `{"name":"mercadona"}`, wantCode: http.StatusConflict},
		{name: "Bad color", body: `{"name":"Dia","color":"green"}`, wantCode: http.StatusBadRequest},
		{name: "Malformed", body: `{"name":`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/api/v1/clients", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	require.Equal(t, http.StatusCreated, a.upload("Cierre_Marzo_2024.csv", marchSheet).Code)

	rec = a.do(http.MethodGet, "/api/v1/clients/alimerka/dashboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	dash := decode[clients.Dashboard](t, rec)
	require.Len(t, dash.Rows, 1)
	assert.Equal(t, "Centro A", dash.Rows[0].Center)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/v1/clients/mercadona", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/v1/clients/mercadona", nil, "").Code)
}

func TestRouter_Metrics(t *testing.T) {
	a := newAPI(t)
	require.Equal(t, http.StatusCreated, a.upload("Cierre_Marzo_2024.csv", marchSheet).Code)

	rec := a.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cierres_ingestions_total{outcome="accepted"} 1`)
}
