// Package conversation exposes the streaming classification mode: create a
// session, then feed utterances over a websocket and receive one prediction
// per utterance, classified with the session's dialogue context.
package conversation

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	convservice "github.com/emoberta/emoberta/internal/conversation"
	"github.com/emoberta/emoberta/internal/inference"
	"github.com/emoberta/emoberta/pkg/api"
	"github.com/emoberta/emoberta/pkg/utils"
)

// Handler serves the conversation routes.
type Handler struct {
	predictor inference.Predictor
	sessions  *convservice.Service
	upgrader  websocket.Upgrader
}

// New creates the conversation handler.
func New(predictor inference.Predictor, sessions *convservice.Service) *Handler {
	return &Handler{
		predictor: predictor,
		sessions:  sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the handler routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/conversations", h.handleCreate)
	r.Get("/conversations/{sessionID}/ws", h.handleWebSocket)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// UtteranceMessage is the payload of an inbound "utterance" message.
type UtteranceMessage struct {
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// PredictionPayload is the data of an outbound "prediction" message.
type PredictionPayload struct {
	Speaker    string         `json:"speaker,omitempty"`
	Text       string         `json:"text"`
	Prediction api.Prediction `json:"prediction"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}
	if _, err := h.sessions.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := logrus.WithField("session", sessionID)
	log.Info("conversation stream opened")

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("conversation stream closed unexpectedly")
			}
			return
		}

		switch msg.Type {
		case "utterance":
			h.handleUtterance(r, conn, sessionID, msg.Data, log)
		case "ping":
			h.send(conn, outgoingMessage{Type: "pong", SessionID: sessionID})
		default:
			h.sendError(conn, sessionID, "unknown message type: "+msg.Type)
		}
	}
}

func (h *Handler) handleUtterance(r *http.Request, conn *websocket.Conn, sessionID string, data json.RawMessage, log *logrus.Entry) {
	var utt UtteranceMessage
	if err := json.Unmarshal(data, &utt); err != nil || utt.Text == "" {
		h.sendError(conn, sessionID, "utterance requires a non-empty text field")
		return
	}

	history, err := h.sessions.History(r.Context(), sessionID)
	if err != nil {
		h.sendError(conn, sessionID, "session lost")
		return
	}
	past := make([]inference.Turn, 0, len(history))
	for _, t := range history {
		past = append(past, inference.Turn{Speaker: t.Speaker, Text: t.Text})
	}

	prediction, err := h.predictor.Predict(r.Context(), inference.Request{
		Past:      past,
		Utterance: inference.Turn{Speaker: utt.Speaker, Text: utt.Text},
	})
	if err != nil {
		log.WithError(err).Error("classification failed")
		h.sendError(conn, sessionID, "classification failed")
		return
	}

	if err := h.sessions.AppendTurn(r.Context(), convservice.Turn{
		SessionID: sessionID,
		Speaker:   utt.Speaker,
		Text:      utt.Text,
		Emotion:   prediction.DominantEmotion,
	}); err != nil {
		log.WithError(err).Warn("failed to store turn")
	}

	h.send(conn, outgoingMessage{
		Type:      "prediction",
		SessionID: sessionID,
		Data: PredictionPayload{
			Speaker:    utt.Speaker,
			Text:       utt.Text,
			Prediction: prediction,
		},
	})
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(msg); err != nil {
		logrus.WithError(err).Warn("websocket write failed")
	}
}

func (h *Handler) sendError(conn *websocket.Conn, sessionID, message string) {
	h.send(conn, outgoingMessage{
		Type:      "error",
		SessionID: sessionID,
		Data:      map[string]string{"error": message},
	})
}
