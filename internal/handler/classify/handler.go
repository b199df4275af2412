// Package classify exposes the single-utterance classification route.
package classify

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/emoberta/emoberta/internal/inference"
	"github.com/emoberta/emoberta/pkg/api"
	"github.com/emoberta/emoberta/pkg/utils"
)

// Handler serves POST /classify.
type Handler struct {
	predictor inference.Predictor
}

// New creates the classify handler.
func New(predictor inference.Predictor) *Handler {
	return &Handler{predictor: predictor}
}

// RegisterRoutes mounts the handler routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/classify", h.handleClassify)
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req api.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	past := make([]inference.Turn, 0, len(req.Context))
	for _, t := range req.Context {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		past = append(past, inference.Turn{Speaker: t.Speaker, Text: t.Text})
	}

	prediction, err := h.predictor.Predict(r.Context(), inference.Request{
		Past:      past,
		Utterance: inference.Turn{Speaker: req.Speaker, Text: req.Text},
	})
	if err != nil {
		logrus.WithError(err).Error("classification failed")
		utils.RespondError(w, http.StatusInternalServerError, "classification failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, prediction)
}
