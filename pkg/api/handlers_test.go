package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/statkit/resample/pkg/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, storage.EnsureMetaTables(context.Background(), db))

	r := mux.NewRouter()
	RegisterRoutes(r, db)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, body := getJSON(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateAndListDatasets(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/datasets/create", JSON{
		"name":   "inline",
		"values": []float64{1, 2, 3, 4},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(4), body["points"])

	resp, body = postJSON(t, srv.URL+"/datasets/create", JSON{
		"name": "generated",
		"seed": 5,
		"generate": JSON{
			"mode": "distribution", "n": 50, "dist": "normal", "mean": 1, "std_dev": 2,
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(50), body["points"])

	resp, body = getJSON(t, srv.URL+"/datasets")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	datasets, ok := body["datasets"].([]any)
	require.True(t, ok)
	assert.Len(t, datasets, 2)
}

func TestCreateDatasetValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/datasets/create", JSON{"values": []float64{1}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, srv.URL+"/datasets/create", JSON{"name": "novalues"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, srv.URL+"/datasets/create", JSON{
		"name":     "badgen",
		"generate": JSON{"mode": "distribution", "n": 0, "dist": "normal", "std_dev": 1},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBootstrapInlineValues(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/bootstrap", JSON{
		"values":    []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		"estimator": "mean",
		"b":         500,
		"seed":      9,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(500), body["b"])
	assert.Equal(t, float64(10), body["n"])
	assert.Equal(t, 5.5, body["estimate"])

	lo := body["ci_low"].(float64)
	hi := body["ci_high"].(float64)
	assert.Less(t, lo, 5.5)
	assert.Greater(t, hi, 5.5)
	assert.Positive(t, body["std_error"].(float64))
	assert.NotNil(t, body["normal_ci_low"])
	assert.NotNil(t, body["normal_ci_high"])
	assert.NotNil(t, body["run_id"])

	// The run is persisted.
	resp, body = getJSON(t, srv.URL+"/runs")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	runs, ok := body["runs"].([]any)
	require.True(t, ok)
	require.Len(t, runs, 1)
	run := runs[0].(map[string]any)
	assert.Equal(t, "mean", run["estimator"])
	assert.Equal(t, float64(500), run["b"])
}

func TestBootstrapDeterministicSeed(t *testing.T) {
	srv := newTestServer(t)

	req := JSON{
		"values": []float64{0.4, 1.2, -0.7, 2.2, 0.1, 1.9},
		"b":      200,
		"seed":   31,
	}
	_, first := postJSON(t, srv.URL+"/bootstrap", req)
	_, second := postJSON(t, srv.URL+"/bootstrap", req)

	assert.Equal(t, first["ci_low"], second["ci_low"])
	assert.Equal(t, first["ci_high"], second["ci_high"])
	assert.Equal(t, first["std_error"], second["std_error"])
}

func TestBootstrapCorrelatedMode(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/bootstrap", JSON{
		"mode":  "correlated",
		"n":     30,
		"rho":   0.5,
		"shift": 2,
		"b":     200,
		"seed":  13,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "correlated", body["mode"])
	// Dependent uniforms on [0,1) shifted by 2 have means near 2.5.
	assert.InDelta(t, 2.5, body["estimate"].(float64), 0.2)
}

func TestBootstrapSlope(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/datasets/create", JSON{
		"name":     "line",
		"values":   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		"y_values": []float64{3.1, 4.9, 7.2, 8.8, 11.1, 12.9, 15.2, 16.8, 19.1, 20.9, 23.2, 24.8},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, srv.URL+"/bootstrap", JSON{
		"dataset":   "line",
		"estimator": "slope",
		"b":         300,
		"seed":      17,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "slope", body["estimator"])
	assert.InDelta(t, 2.0, body["estimate"].(float64), 0.1)
	assert.Less(t, body["ci_low"].(float64), body["ci_high"].(float64))
}

func TestBootstrapValidation(t *testing.T) {
	srv := newTestServer(t)

	// No source sample for empirical mode.
	resp, _ := postJSON(t, srv.URL+"/bootstrap", JSON{"b": 100})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// B below 1.
	resp, _ = postJSON(t, srv.URL+"/bootstrap", JSON{"values": []float64{1, 2}, "b": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown estimator.
	resp, _ = postJSON(t, srv.URL+"/bootstrap", JSON{
		"values": []float64{1, 2}, "b": 10, "estimator": "mode",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Out-of-range rho.
	resp, _ = postJSON(t, srv.URL+"/bootstrap", JSON{
		"mode": "correlated", "n": 10, "rho": 1.5, "b": 10,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown dataset.
	resp, _ = postJSON(t, srv.URL+"/bootstrap", JSON{"dataset": "missing", "b": 10})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
