package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/blockroyale-backend/internal/hub"
	"github.com/DoyleJ11/blockroyale-backend/internal/results"
	"github.com/DoyleJ11/blockroyale-backend/internal/room"
)

const maxResultsLimit = 100

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func ListRooms(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := h.List(r.Context())
		if rooms == nil {
			rooms = []room.Summary{}
		}
		writeJSON(w, http.StatusOK, rooms)
	}
}

func GetRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm := h.Get(r.Context(), chi.URLParam(r, "code"))
		if rm == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeJSON(w, http.StatusOK, rm.Summary())
	}
}

// RecentResults lists finished matches, newest first. ?limit overrides the default, up to maxResultsLimit.
func RecentResults(store results.Store, defaultLimit int, log *zap.Logger) http.HandlerFunc {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxResultsLimit)
		}

		matches, err := store.Recent(r.Context(), limit)
		if err != nil {
			log.Error("load results", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load results")
			return
		}
		if matches == nil {
			matches = []results.Match{}
		}
		writeJSON(w, http.StatusOK, matches)
	}
}
