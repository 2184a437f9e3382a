package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lumehq/chat-relay/internal/broker"
	chatHandler "github.com/lumehq/chat-relay/internal/handler/chat"
	"github.com/lumehq/chat-relay/internal/handler/subscribe"
	middlewarePkg "github.com/lumehq/chat-relay/internal/middleware"
	"github.com/lumehq/chat-relay/internal/service/relay"
	"github.com/lumehq/chat-relay/pkg/utils"
)

// NewRouter wires HTTP routes to the relay pipeline and subscriber bridges.
func NewRouter(relaySvc *relay.Service, br broker.Broker, debug bool) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/chat", func(api chi.Router) {
		chatHandler.New(relaySvc, debug).RegisterRoutes(api)
		subscribe.New(br).RegisterRoutes(api)
	})

	return r
}
