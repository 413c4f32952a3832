package restserver

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/remotetide/internal/storage/sqlite"
	"github.com/chrissnell/remotetide/internal/tide"
	"github.com/chrissnell/remotetide/pkg/config"
)

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func newRouter(t *testing.T, store RunStore) http.Handler {
	t.Helper()
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, store, config.RESTServerData{}, nil)
	require.NoError(t, err)
	return ctrl.Router()
}

// seedArchive stores two runs an hour apart and returns their ids, oldest first
func seedArchive(t *testing.T) (*sqlite.Archive, []string) {
	t.Helper()
	ctx := context.Background()

	archive, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "runs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { archive.Close() })

	values := []float64{1, 3, 2, 0, 1}
	series := make(tide.Series, len(values))
	for i, v := range values {
		series[i] = tide.Sample{Time: start.Add(time.Duration(i) * 5 * time.Minute), Value: v}
	}
	result := &tide.Result{
		Series:          series,
		Converted:       []float64{2, 6, 4, 0, 2},
		Filtered:        []float64{1.1, 2.9, 2.1, 0.1, 0.9},
		Extrema:         tide.ExtremaSet{Peaks: []int{1}, Troughs: []int{3}},
		FilterName:      "bandpass",
		NoExtremumLabel: "None",
	}
	result.Stats = tide.ComputeStatistics(series, result.Extrema, math.Inf(-1))

	var ids []string
	for i := 0; i < 2; i++ {
		id, err := archive.SaveRun(ctx, sqlite.RunRecord{
			Sources:    []string{"gauge.xlsx"},
			Config:     tide.DefaultConfig(),
			Result:     result,
			Statistics: result.StatisticsTable(),
			CreatedAt:  start.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return archive, ids
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListRuns(t *testing.T) {
	archive, ids := seedArchive(t)
	router := newRouter(t, archive)

	rec := get(t, router, "/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var runs []sqlite.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, ids[1], runs[0].ID, "newest first")
	assert.Equal(t, ids[0], runs[1].ID)
	assert.Equal(t, 5, runs[0].Samples)

	rec = get(t, router, "/runs?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, ids[1], runs[0].ID)
}

func TestListRunsBadLimit(t *testing.T) {
	archive, _ := seedArchive(t)
	router := newRouter(t, archive)

	for _, limit := range []string{"0", "-3", "ten"} {
		rec := get(t, router, "/runs?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestListRunsEmptyArchive(t *testing.T) {
	archive, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "empty.db"), nil)
	require.NoError(t, err)
	defer archive.Close()

	rec := get(t, newRouter(t, archive), "/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetRun(t *testing.T) {
	archive, ids := seedArchive(t)
	router := newRouter(t, archive)

	rec := get(t, router, "/runs/"+ids[0])
	require.Equal(t, http.StatusOK, rec.Code)

	var run sqlite.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, ids[0], run.ID)
	assert.Equal(t, "bandpass", run.Filter)
	assert.Equal(t, string(tide.FilterTypeBandpass), run.Config.FilterStrategy)
	assert.Nil(t, run.Config.TroughFloor, "an infinite floor is stored as null")
	assert.NotEmpty(t, run.Statistics)
	require.NotNil(t, run.MaxHighTide)
	assert.Equal(t, 3.0, run.MaxHighTide.Value)
}

func TestGetRunMsgPack(t *testing.T) {
	archive, ids := seedArchive(t)

	rec := get(t, newRouter(t, archive), "/runs/"+ids[0]+"?format=msgpack")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-msgpack", rec.Header().Get("Content-Type"))

	var run map[string]any
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, ids[0], run["id"])
}

func TestGetRunNotFound(t *testing.T) {
	archive, _ := seedArchive(t)
	router := newRouter(t, archive)

	for _, target := range []string{"/runs/missing", "/runs/missing/series"} {
		rec := get(t, router, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.JSONEq(t, `{"error":"run not found"}`, rec.Body.String())
	}
}

func TestGetSeries(t *testing.T) {
	archive, ids := seedArchive(t)

	rec := get(t, newRouter(t, archive), "/runs/"+ids[1]+"/series")
	require.Equal(t, http.StatusOK, rec.Code)

	var points []SeriesPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 5)

	assert.True(t, points[0].Time.Equal(start))
	assert.Equal(t, "None", points[0].Label)
	assert.Equal(t, tide.LabelMax, points[1].Label)
	assert.Equal(t, tide.LabelMin, points[3].Label)
	assert.Equal(t, 3.0, points[1].Raw)
	assert.Equal(t, 2.9, points[1].Filtered)
	require.NotNil(t, points[1].Converted)
	assert.Equal(t, 6.0, *points[1].Converted)
}

type failingStore struct{}

func (failingStore) ListRuns(context.Context, int) ([]sqlite.RunSummary, error) {
	return nil, errors.New("disk I/O error")
}

func (failingStore) GetRun(context.Context, string) (*sqlite.Run, error) {
	return nil, errors.New("disk I/O error")
}

func (failingStore) GetSeries(context.Context, string) ([]tide.Row, error) {
	return nil, errors.New("disk I/O error")
}

func TestStoreFailures(t *testing.T) {
	router := newRouter(t, failingStore{})

	for _, target := range []string{"/runs", "/runs/abc", "/runs/abc/series"} {
		rec := get(t, router, target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "disk I/O", "internal errors are not leaked")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, failingStore{}).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/runs/abc", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewControllerDefaults(t *testing.T) {
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, failingStore{}, config.RESTServerData{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", ctrl.Server.Addr)

	_, err = NewController(context.Background(), &sync.WaitGroup{}, nil, config.RESTServerData{}, nil)
	assert.Error(t, err)
}

func TestControllerShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	ctrl, err := NewController(ctx, wg, failingStore{}, config.RESTServerData{ListenAddr: "127.0.0.1", Port: 0}, nil)
	require.NoError(t, err)
	ctrl.Server.Addr = "127.0.0.1:0"
	require.NoError(t, ctrl.StartController())

	cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("REST server did not stop after cancellation")
	}
}
