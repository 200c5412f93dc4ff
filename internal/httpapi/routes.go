package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matchforge/jip-backend/internal/engine"
	"github.com/matchforge/jip-backend/internal/hub"
	"github.com/matchforge/jip-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, defaults engine.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	api := &API{hub: h, defaults: defaults, log: log}

	r.Post("/matches", api.CreateMatch)
	r.Get("/matches/{code}", api.GetMatchState)
	r.Post("/matches/{code}/join", api.Join)
	r.Post("/matches/{code}/leave", api.Leave)
	r.Post("/matches/{code}/phase", api.SetPhase)
	r.Post("/matches/{code}/lock", api.Lock)
	r.Post("/matches/{code}/unlock", api.Unlock)
	r.Post("/matches/{code}/backfill", api.RequestBackfill)
	r.Delete("/matches/{code}/backfill", api.CancelBackfill)
	r.Post("/matches/{code}/reset", api.Reset)
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	return r
}
