package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	models "TopoPull/internal/domain/models"
	"TopoPull/internal/services/ratelimit"
	"TopoPull/internal/usecase"
	xcache "TopoPull/pkg/cache"
	applogger "TopoPull/pkg/logger"
)

type memStore struct {
	rows []models.FeatureRow
}

func (s *memStore) StoreBatch(_ context.Context, rows []models.FeatureRow) error {
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *memStore) GetRun(_ context.Context, runID string, limit int) ([]models.FeatureRow, error) {
	var out []models.FeatureRow
	for _, r := range s.rows {
		if r.RunID == runID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) Health(context.Context) error { return nil }

type nopSource struct{}

func (nopSource) Load(context.Context) (*models.Table, error) {
	return &models.Table{}, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordWindows(int)             {}
func (nopMetrics) RecordRows(string, int)        {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}

func newTestHandler(t *testing.T, store *memStore, opts ...HandlerOption) *FeaturesHandler {
	t.Helper()
	runnerOpts := []usecase.RunnerOption{}
	if store != nil {
		runnerOpts = append(runnerOpts, usecase.WithStore(store))
	}
	runner := usecase.NewFeatureRunner(nopSource{}, nopMetrics{}, applogger.Nop(), runnerOpts...)
	return NewFeaturesHandler(applogger.Nop(), runner, opts...)
}

func postFeatures(t *testing.T, h *FeaturesHandler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/features", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h.Compute(e.NewContext(req, rec))
}

func tableJSON() string {
	rows := make([][]float64, 10)
	for i := range rows {
		rows[i] = []float64{float64(i), float64(i * i)}
	}
	b, _ := json.Marshal(rows)
	return string(b)
}

func TestComputeEndpoint(t *testing.T) {
	h := newTestHandler(t, &memStore{})
	body := `{"table":` + tableJSON() + `,"window":5,"max_homology_dimension":1}`

	rec, err := postFeatures(t, h, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var apiResp struct {
		Status int                    `json:"status"`
		Data   models.ComputeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiResp))
	require.Equal(t, http.StatusOK, apiResp.Status)
	require.NotEmpty(t, apiResp.Data.RunID)
	require.False(t, apiResp.Data.Cached)
	// 5 windows x 2 homology dimensions
	require.Len(t, apiResp.Data.Rows, 10)
}

func TestComputeDefaultEndCoversWholeTable(t *testing.T) {
	h := newTestHandler(t, nil)

	// Omitted end means end = len(table): 10 rows with window 5 gives
	// windows at idx 5..9, exactly as an explicit end of 10 does.
	rec, err := postFeatures(t, h, `{"table":`+tableJSON()+`,"window":5}`)
	require.NoError(t, err)
	var implicit struct {
		Data models.ComputeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &implicit))
	require.Len(t, implicit.Data.Rows, 5)

	rec, err = postFeatures(t, h, `{"table":`+tableJSON()+`,"window":5,"end":10}`)
	require.NoError(t, err)
	var explicit struct {
		Data models.ComputeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &explicit))
	require.Len(t, explicit.Data.Rows, len(implicit.Data.Rows))
}

func TestComputeValidationError(t *testing.T) {
	h := newTestHandler(t, nil)

	rec, err := postFeatures(t, h, `{"window":5}`)
	require.NoError(t, err)

	var apiResp struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiResp))
	require.Equal(t, http.StatusBadRequest, apiResp.Status)
}

func TestComputeBadPipelineParams(t *testing.T) {
	h := newTestHandler(t, nil)
	// homology dimension above complex dimension
	body := `{"table":` + tableJSON() + `,"window":5,"max_homology_dimension":5}`

	rec, err := postFeatures(t, h, body)
	require.NoError(t, err)

	var apiResp struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiResp))
	require.Equal(t, http.StatusBadRequest, apiResp.Status)
}

func TestComputeCacheHit(t *testing.T) {
	mem := xcache.NewMemoryCache()
	defer mem.Close()
	h := newTestHandler(t, &memStore{}, WithCache(mem, time.Minute))
	body := `{"table":` + tableJSON() + `,"window":5}`

	rec, err := postFeatures(t, h, body)
	require.NoError(t, err)
	var first struct {
		Data models.ComputeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.False(t, first.Data.Cached)

	rec, err = postFeatures(t, h, body)
	require.NoError(t, err)
	var second struct {
		Data models.ComputeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.True(t, second.Data.Cached)
	require.Equal(t, first.Data.RunID, second.Data.RunID)
}

func TestComputeRateLimited(t *testing.T) {
	h := newTestHandler(t, nil, WithRateLimit(ratelimit.New(), 1, 0))
	body := `{"table":` + tableJSON() + `,"window":5}`

	_, err := postFeatures(t, h, body)
	require.NoError(t, err)

	rec, err := postFeatures(t, h, body)
	require.NoError(t, err)
	var apiResp struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiResp))
	require.Equal(t, http.StatusTooManyRequests, apiResp.Status)
}

func TestGetRunNotFound(t *testing.T) {
	h := newTestHandler(t, &memStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("run_id")
	c.SetParamValues("nope")

	require.NoError(t, h.GetRun(c))
	var apiResp struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiResp))
	require.Equal(t, http.StatusNotFound, apiResp.Status)
}

func TestGetRunReturnsStoredRows(t *testing.T) {
	store := &memStore{}
	h := newTestHandler(t, store)

	rec, err := postFeatures(t, h, `{"table":`+tableJSON()+`,"window":5}`)
	require.NoError(t, err)
	var created struct {
		Data models.ComputeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.Data.RunID, nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("run_id")
	c.SetParamValues(created.Data.RunID)

	require.NoError(t, h.GetRun(c))
	var apiResp struct {
		Status int `json:"status"`
		Data   struct {
			Rows  []models.FeatureRow `json:"rows"`
			Total int64               `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiResp))
	require.Equal(t, http.StatusOK, apiResp.Status)
	require.Equal(t, int64(5), apiResp.Data.Total)
	require.Len(t, apiResp.Data.Rows, 5)
}
