package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/auth"
	"github.com/arnavshah/shiftledger-api/pkg/database"
	"github.com/arnavshah/shiftledger-api/pkg/handlers"
	"github.com/arnavshah/shiftledger-api/pkg/metrics"
	"github.com/arnavshah/shiftledger-api/pkg/models"
	"github.com/arnavshah/shiftledger-api/pkg/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 12, 8, 10, 0, 0, 0, time.UTC)

type fakeExtractor struct {
	items    []models.ExtractedShift
	gotBytes []byte
	gotYear  int
}

func (f *fakeExtractor) Extract(_ context.Context, image []byte, _ string, year int) ([]models.ExtractedShift, error) {
	f.gotBytes = image
	f.gotYear = year
	return f.items, nil
}

// failingStore accepts a fixed number of upserts, then fails
type failingStore struct {
	*store.MemoryStore
	remaining int
}

func (f *failingStore) Upsert(ctx context.Context, shift models.Shift) error {
	if f.remaining == 0 {
		return errors.New("disk full")
	}
	f.remaining--
	return f.MemoryStore.Upsert(ctx, shift)
}

type testServer struct {
	h      *handlers.Handler
	router *gin.Engine
	store  *store.MemoryStore
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open("", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	_, err = auth.EnsureOwnerExists(db, "owner", "owner123")
	require.NoError(t, err)

	s := store.NewMemoryStore()
	h := &handlers.Handler{
		DB:       db,
		Store:    s,
		Auth:     auth.NewService("jwt-secret", "master-secret"),
		Metrics:  metrics.New(),
		Log:      zap.NewNop(),
		Location: "Studio",
		Zone:     time.UTC,
		Now:      func() time.Time { return testNow },
	}
	ts := &testServer{h: h, router: handlers.NewRouter(h), store: s}

	w := ts.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "owner", "password": "owner123"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	ts.token = login.AccessToken
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "owner", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_RequiresAuthorization(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/shifts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/shifts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImportTokens(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/import/tokens", ts.token, gin.H{
		"year": 2024,
		"shifts": []models.ExtractedShift{
			{DateStr: "12.8", StartTime: "13:00", EndTime: "24:00", WorkName: "🍵5 Live🦶", Notes: "x"},
			{DateStr: "12.9", Notes: "12.9(周一)休"},
			{DateStr: "12.10", StartTime: "25:00", EndTime: "03:00"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[models.ImportResult](t, w)
	assert.True(t, res.Saved)
	require.Len(t, res.Accepted, 1)
	require.Len(t, res.Rejected, 2)
	assert.Equal(t, "Live", res.Accepted[0].WorkName)
	assert.Equal(t, "Studio", res.Accepted[0].Location)
	assert.Equal(t, 11.0, res.Accepted[0].DurationHours())
	assert.Equal(t, "RestDay", res.Rejected[0].Reason)
	assert.Equal(t, "InvalidTime", res.Rejected[1].Reason)

	all, err := ts.store.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, res.Accepted[0].ID, all[0].ID)
}

func TestImportTokens_PreviewDoesNotSave(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/import/tokens", ts.token, gin.H{
		"preview":  true,
		"location": "Home Studio",
		"shifts":   []models.ExtractedShift{{DateStr: "12.8", StartTime: "19:00", EndTime: "03:00"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[models.ImportResult](t, w)
	assert.False(t, res.Saved)
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "Home Studio", res.Accepted[0].Location)
	assert.Equal(t, time.Date(2024, 12, 9, 3, 0, 0, 0, time.UTC), res.Accepted[0].EndTime.UTC())

	all, err := ts.store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportTokens_PartialSaveIsReported(t *testing.T) {
	ts := newTestServer(t)
	failing := &failingStore{MemoryStore: ts.store, remaining: 1}
	ts.h.Store = failing

	w := ts.do(t, http.MethodPost, "/api/import/tokens", ts.token, gin.H{
		"shifts": []models.ExtractedShift{
			{DateStr: "12.8", StartTime: "13:00", EndTime: "17:00"},
			{DateStr: "12.9", StartTime: "13:00", EndTime: "17:00"},
		},
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode[struct {
		Error   string         `json:"error"`
		Saved   []models.Shift `json:"saved"`
		Unsaved []models.Shift `json:"unsaved"`
	}](t, w)
	assert.Contains(t, body.Error, "partially saved")
	require.Len(t, body.Saved, 1)
	require.Len(t, body.Unsaved, 1)
	assert.Equal(t, 8, body.Saved[0].StartTime.Day())

	all, err := ts.store.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, body.Saved[0].ID, all[0].ID)
}

func TestImportText(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/import/text", ts.token, gin.H{
		"text": "12.8(周日) 13:00-17:00 4 十九\n19:00-24:00 5\n12.9(周一) 休",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[models.ImportResult](t, w)
	require.Len(t, res.Accepted, 2)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "十九", res.Accepted[0].WorkName)
	assert.Equal(t, "Live", res.Accepted[1].WorkName)
	assert.Equal(t, 8, res.Accepted[1].StartTime.Day())
}

func TestImportText_RequiresText(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/import/text", ts.token, gin.H{"year": 2024})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func imageRequest(t *testing.T, token string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("year", "2025"))
	fw, err := mw.CreateFormFile("image", "schedule.png")
	require.NoError(t, err)
	_, err = fw.Write(image)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestImportImage_NotConfigured(t *testing.T) {
	ts := newTestServer(t)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, imageRequest(t, ts.token, []byte("png bytes")))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestImportImage(t *testing.T) {
	ts := newTestServer(t)
	fake := &fakeExtractor{items: []models.ExtractedShift{
		{DateStr: "1.2", StartTime: "09:00", EndTime: "12:30", WorkName: "3.5 Brand Stream"},
	}}
	ts.h.Extractor = fake

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, imageRequest(t, ts.token, []byte("png bytes")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, []byte("png bytes"), fake.gotBytes)
	assert.Equal(t, 2025, fake.gotYear)

	res := decode[models.ImportResult](t, w)
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "Brand Stream", res.Accepted[0].WorkName)
	assert.Equal(t, time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC), res.Accepted[0].StartTime.UTC())
}

func TestShiftLifecycle(t *testing.T) {
	ts := newTestServer(t)
	start := time.Date(2024, 12, 8, 19, 0, 0, 0, time.UTC)

	w := ts.do(t, http.MethodPost, "/api/shifts", ts.token, gin.H{
		"workName":   "Evening Stream",
		"hourlyRate": 500,
		"startTime":  start,
		"endTime":    start.Add(4 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Shift](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusUpcoming, created.Status)

	w = ts.do(t, http.MethodGet, "/api/shifts/"+created.ID, ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/shifts/missing", ts.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/stats", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[models.Summary](t, w)
	assert.Equal(t, models.Stats{TotalHours: 4, TotalEarnings: 2000}, sum.Day)

	w = ts.do(t, http.MethodPut, "/api/shifts/"+created.ID, ts.token, gin.H{
		"id":        "other",
		"workName":  "Evening Stream",
		"startTime": start,
		"endTime":   start.Add(4 * time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/api/shifts/"+created.ID, ts.token, gin.H{
		"workName":   "Evening Stream",
		"hourlyRate": 600,
		"startTime":  start,
		"endTime":    start.Add(5 * time.Hour),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 600.0, decode[models.Shift](t, w).HourlyRate)

	w = ts.do(t, http.MethodPut, "/api/shifts/"+created.ID, ts.token, gin.H{
		"startTime": start,
		"endTime":   start,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/shifts/upcoming?limit=5", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID)

	w = ts.do(t, http.MethodPost, "/api/shifts/"+created.ID+"/cancel", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusCancelled, decode[models.Shift](t, w).Status)

	w = ts.do(t, http.MethodGet, "/api/stats", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Summary{}, decode[models.Summary](t, w))

	w = ts.do(t, http.MethodPost, "/api/shifts/missing/cancel", ts.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListShifts_ByDate(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	for i, day := range []int{7, 8, 8, 9} {
		start := time.Date(2024, 12, day, 9+i, 0, 0, 0, time.UTC)
		require.NoError(t, ts.store.Upsert(ctx, models.Shift{
			ID: string(rune('a' + i)), WorkName: "Live", Status: models.StatusUpcoming,
			StartTime: start, EndTime: start.Add(time.Hour),
		}))
	}

	w := ts.do(t, http.MethodGet, "/api/shifts?date=2024-12-08", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Shifts []models.Shift `json:"shifts"`
	}](t, w)
	require.Len(t, body.Shifts, 2)
	assert.Equal(t, "b", body.Shifts[0].ID)
	assert.Equal(t, "c", body.Shifts[1].ID)

	w = ts.do(t, http.MethodGet, "/api/shifts?date=12.8", ts.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStats_Query(t *testing.T) {
	ts := newTestServer(t)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, ts.store.Upsert(context.Background(), models.Shift{
		ID: "a", WorkName: "Live", Status: models.StatusCompleted, HourlyRate: 100,
		StartTime: start, EndTime: start.Add(150 * time.Minute),
	}))

	w := ts.do(t, http.MethodGet, "/api/stats?now=2024-03-01T20:00:00Z", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[models.Summary](t, w)
	assert.Equal(t, 2.5, sum.Day.TotalHours)
	assert.Equal(t, 250.0, sum.Year.TotalEarnings)

	w = ts.do(t, http.MethodGet, "/api/stats?period=month", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalHours":0`)

	w = ts.do(t, http.MethodGet, "/api/stats?period=week", ts.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/stats?now=yesterday", ts.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIKeyFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/admin/keys", ts.token, gin.H{"name": "phone"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	issued := decode[struct {
		ID  uint   `json:"id"`
		Key string `json:"key"`
	}](t, w)
	require.NotEmpty(t, issued.Key)

	// API keys cannot reach admin routes
	w = ts.do(t, http.MethodGet, "/admin/keys", issued.Key, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/import/tokens", issued.Key, gin.H{
		"shifts": []models.ExtractedShift{
			{DateStr: "12.8", StartTime: "13:00", EndTime: "17:00"},
			{DateStr: "12.9", Notes: "休"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/usage", issued.Key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	usage := decode[struct {
		KeyName string `json:"key_name"`
		Totals  struct {
			Batches  int `json:"batches"`
			Accepted int `json:"accepted_shifts"`
			Rejected int `json:"rejected_tokens"`
		} `json:"totals"`
	}](t, w)
	assert.Equal(t, "phone", usage.KeyName)
	assert.Equal(t, 1, usage.Totals.Batches)
	assert.Equal(t, 1, usage.Totals.Accepted)
	assert.Equal(t, 1, usage.Totals.Rejected)

	w = ts.do(t, http.MethodGet, "/admin/keys", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"phone"`)
	assert.NotContains(t, w.Body.String(), issued.Key)

	w = ts.do(t, http.MethodDelete, "/admin/keys/"+jsonNumber(issued.ID), ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/shifts", issued.Key, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/admin/keys", ts.token, gin.H{"name": "phone"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodDelete, "/admin/keys/999", ts.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/import/tokens", ts.token, gin.H{
		"shifts": []models.ExtractedShift{{DateStr: "13.1", StartTime: "09:00", EndTime: "10:00"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `shiftledger_import_batches_total{source="tokens"} 1`), body)
	assert.Contains(t, body, `shiftledger_import_tokens_total{outcome="rejected",reason="InvalidDate"} 1`)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
