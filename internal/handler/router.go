package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/handler/chat"
	mentorHandler "github.com/zhouzirui/startup-mentor/backend/internal/handler/mentor"
	"github.com/zhouzirui/startup-mentor/backend/internal/handler/stream"
	"github.com/zhouzirui/startup-mentor/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/startup-mentor/backend/internal/middleware"
	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	chatService "github.com/zhouzirui/startup-mentor/backend/internal/service/chat"
	"github.com/zhouzirui/startup-mentor/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(mentors mentor.Store, chatSvc *chatService.Service, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		mentorHandler.New(mentors).RegisterRoutes(api)
		chat.New(chatSvc, logger).RegisterRoutes(api)
		stream.New(chatSvc, logger).RegisterRoutes(api)
		ws.New(chatSvc, logger).RegisterRoutes(api)
	})

	return r
}
