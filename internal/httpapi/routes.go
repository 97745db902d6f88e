package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/blockroyale-backend/internal/hub"
	"github.com/DoyleJ11/blockroyale-backend/internal/results"
	"github.com/DoyleJ11/blockroyale-backend/internal/ws"
)

type Deps struct {
	Hub          *hub.Hub
	Gateway      *ws.Gateway
	Results      results.Store
	Logger       *zap.Logger
	WS           ws.Options
	ResultsLimit int
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, d.Gateway, log, d.WS))

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(requestLogger(log))
		r.Get("/rooms", ListRooms(d.Hub))
		r.Get("/rooms/{code}", GetRoom(d.Hub))
		r.Get("/results", RecentResults(d.Results, d.ResultsLimit, log))
	})
	return r
}
