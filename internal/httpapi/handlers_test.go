package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/blockroyale-backend/internal/engine"
	"github.com/DoyleJ11/blockroyale-backend/internal/hub"
	"github.com/DoyleJ11/blockroyale-backend/internal/results"
	"github.com/DoyleJ11/blockroyale-backend/internal/room"
	"github.com/DoyleJ11/blockroyale-backend/internal/ws"
)

type failingStore struct{}

func (failingStore) Record(context.Context, results.Match) error { return nil }
func (failingStore) Close() error { return nil }
func (failingStore) Recent(context.Context, int) ([]results.Match, error) {
	return nil, errors.New("db down")
}

func newRouter(t *testing.T, store results.Store) (http.Handler, *hub.Hub) {
	t.Helper()
	gw := ws.NewGateway(nil)
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(ctx, room.Options{Gateway: gw})
	t.Cleanup(func() {
		h.Shutdown()
		cancel()
	})
	return SetupRoutes(Deps{Hub: h, Gateway: gw, Results: store, Logger: zap.NewNop(), ResultsLimit: 2}), h
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	router, _ := newRouter(t, results.NewMemoryStore(0))
	assert.Equal(t, http.StatusOK, get(t, router, "/healthz").Code)
}

func TestRooms(t *testing.T) {
	router, h := newRouter(t, results.NewMemoryStore(0))

	rec := get(t, router, "/rooms")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	r, err := h.Create(context.Background(), "conn-1", "alice")
	require.NoError(t, err)

	rec = get(t, router, "/rooms")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []room.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []room.Summary{{Code: r.Code(), Status: engine.StatusWaiting, Players: []string{"alice"}}}, list)

	rec = get(t, router, "/rooms/"+r.Code())
	require.Equal(t, http.StatusOK, rec.Code)
	var one room.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, r.Code(), one.Code)

	rec = get(t, router, "/rooms/00ZZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"room not found"}`, rec.Body.String())
}

func TestResults(t *testing.T) {
	store := results.NewMemoryStore(10)
	router, _ := newRouter(t, store)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, code := range []string{"11AA", "22BB", "33CC"} {
		require.NoError(t, store.Record(context.Background(), results.Match{
			Code: code, Ranking: []string{"a", "b"}, FinishedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	tests := []struct {
		name   string
		path   string
		status int
		codes  []string
	}{
		{"default limit", "/results", http.StatusOK, []string{"33CC", "22BB"}},
		{"explicit limit", "/results?limit=1", http.StatusOK, []string{"33CC"}},
		{"limit above count", "/results?limit=50", http.StatusOK, []string{"33CC", "22BB", "11AA"}},
		{"zero", "/results?limit=0", http.StatusBadRequest, nil},
		{"garbage", "/results?limit=abc", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, tt.path)
			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				return
			}
			var matches []results.Match
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
			codes := make([]string, 0, len(matches))
			for _, m := range matches {
				codes = append(codes, m.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestResults_StoreError(t *testing.T) {
	router, _ := newRouter(t, failingStore{})
	rec := get(t, router, "/results")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
