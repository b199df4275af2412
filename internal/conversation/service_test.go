package conversation_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/emoberta/emoberta/internal/conversation"
)

func TestServiceGetSession(t *testing.T) {
	svc := conversation.NewService(16)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := conversation.NewService(16)
	if _, err := svc.GetSession(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestServiceAppendAndHistory(t *testing.T) {
	svc := conversation.NewService(16)
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	err := svc.AppendTurn(ctx, conversation.Turn{
		SessionID: session.ID,
		Speaker:   "Ross",
		Text:      "We were on a break!",
		Emotion:   "anger",
	})
	if err != nil {
		t.Fatalf("AppendTurn err: %v", err)
	}

	turns, err := svc.History(ctx, session.ID)
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].ID == "" || turns[0].CreatedAt.IsZero() {
		t.Fatalf("turn not stamped: %+v", turns[0])
	}
	if turns[0].Emotion != "anger" {
		t.Fatalf("unexpected emotion: %q", turns[0].Emotion)
	}
}

func TestServiceAppendUnknownSession(t *testing.T) {
	svc := conversation.NewService(16)
	err := svc.AppendTurn(context.Background(), conversation.Turn{SessionID: "missing", Text: "hi"})
	if err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestServiceHistoryCap(t *testing.T) {
	svc := conversation.NewService(3)
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	for i := 0; i < 5; i++ {
		if err := svc.AppendTurn(ctx, conversation.Turn{
			SessionID: session.ID,
			Text:      fmt.Sprintf("turn %d", i),
		}); err != nil {
			t.Fatalf("AppendTurn err: %v", err)
		}
	}

	turns, _ := svc.History(ctx, session.ID)
	if len(turns) != 3 {
		t.Fatalf("expected capped history of 3, got %d", len(turns))
	}
	if turns[0].Text != "turn 2" {
		t.Fatalf("expected oldest turns evicted, got %q first", turns[0].Text)
	}
}
