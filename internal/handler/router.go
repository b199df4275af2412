package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emoberta/emoberta/internal/conversation"
	classifyHandler "github.com/emoberta/emoberta/internal/handler/classify"
	conversationHandler "github.com/emoberta/emoberta/internal/handler/conversation"
	"github.com/emoberta/emoberta/internal/inference"
	middlewarePkg "github.com/emoberta/emoberta/internal/middleware"
	"github.com/emoberta/emoberta/pkg/api"
	"github.com/emoberta/emoberta/pkg/utils"
)

// NewRouter wires HTTP routes to the classifier and session services.
func NewRouter(predictor inference.Predictor, sessions *conversation.Service, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigin))

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Get("/healthz", handleHealth(predictor))

		classifyHandler.New(predictor).RegisterRoutes(apiRouter)
		conversationHandler.New(predictor, sessions).RegisterRoutes(apiRouter)
	})

	return r
}

func handleHealth(predictor inference.Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := predictor.Info()
		utils.RespondJSON(w, http.StatusOK, api.Health{
			Status:  "ok",
			Source:  info.Source,
			Dataset: info.Dataset,
			Labels:  info.Labels,
		})
	}
}
