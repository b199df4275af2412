package conversation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	convservice "github.com/emoberta/emoberta/internal/conversation"
	"github.com/emoberta/emoberta/internal/inference"
	"github.com/emoberta/emoberta/pkg/api"
)

type stubPredictor struct {
	pastSeen int
}

func (s *stubPredictor) Predict(_ context.Context, req inference.Request) (api.Prediction, error) {
	s.pastSeen = len(req.Past)
	return api.Prediction{
		DominantEmotion: "neutral",
		Emotions:        []api.Score{{Label: "neutral", Score: 1}},
	}, nil
}

func (s *stubPredictor) Info() inference.Info {
	return inference.Info{Source: "stub", Labels: []string{"neutral"}}
}

func setup() (*chi.Mux, *convservice.Service, *stubPredictor) {
	sessions := convservice.NewService(16)
	stub := &stubPredictor{}
	r := chi.NewRouter()
	New(stub, sessions).RegisterRoutes(r)
	return r, sessions, stub
}

func TestCreateSession(t *testing.T) {
	r, _, _ := setup()

	req := httptest.NewRequest(http.MethodPost, "/conversations", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var session api.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected session id")
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	r, _, _ := setup()

	req := httptest.NewRequest(http.MethodGet, "/conversations/nope/ws", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func dialSession(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/conversations/" + sessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestWebSocketUtteranceRoundTrip(t *testing.T) {
	r, sessions, stub := setup()
	srv := httptest.NewServer(r)
	defer srv.Close()

	session, err := sessions.CreateSession(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	conn := dialSession(t, srv, session.ID)
	defer conn.Close()

	send := func(text string) {
		t.Helper()
		payload, _ := json.Marshal(UtteranceMessage{Speaker: "Rachel", Text: text})
		if err := conn.WriteJSON(map[string]any{"type": "utterance", "data": json.RawMessage(payload)}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	recv := func() outgoingMessage {
		t.Helper()
		var msg outgoingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	send("I got the job!")
	msg := recv()
	if msg.Type != "prediction" {
		t.Fatalf("expected prediction message, got %q", msg.Type)
	}
	if stub.pastSeen != 0 {
		t.Fatalf("first utterance should have no context, got %d", stub.pastSeen)
	}

	// Second utterance is classified with the first as context.
	send("Isn't that amazing?")
	msg = recv()
	if msg.Type != "prediction" {
		t.Fatalf("expected prediction message, got %q", msg.Type)
	}
	if stub.pastSeen != 1 {
		t.Fatalf("second utterance should see one past turn, got %d", stub.pastSeen)
	}

	history, err := sessions.History(context.Background(), session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 stored turns, got %d", len(history))
	}
	if history[0].Emotion != "neutral" {
		t.Fatalf("expected stored emotion, got %q", history[0].Emotion)
	}
}

func TestWebSocketRejectsEmptyUtterance(t *testing.T) {
	r, sessions, _ := setup()
	srv := httptest.NewServer(r)
	defer srv.Close()

	session, _ := sessions.CreateSession(context.Background())
	conn := dialSession(t, srv, session.ID)
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "utterance", "data": json.RawMessage(`{"text": ""}`)}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var msg outgoingMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "error" {
		t.Fatalf("expected error message, got %q", msg.Type)
	}
}
