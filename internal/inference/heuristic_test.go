package inference

import (
	"context"
	"testing"
)

func TestHeuristicKeywordHit(t *testing.T) {
	h := NewHeuristic()
	prediction, err := h.Predict(context.Background(), Request{
		Utterance: Turn{Text: "I am so scared and worried about this"},
	})
	if err != nil {
		t.Fatalf("Predict err: %v", err)
	}
	if prediction.DominantEmotion != "fear" {
		t.Fatalf("expected fear, got %q", prediction.DominantEmotion)
	}
}

func TestHeuristicNoSignalIsNeutral(t *testing.T) {
	h := NewHeuristic()
	prediction, err := h.Predict(context.Background(), Request{
		Utterance: Turn{Text: "the meeting starts at nine"},
	})
	if err != nil {
		t.Fatalf("Predict err: %v", err)
	}
	if prediction.DominantEmotion != "neutral" {
		t.Fatalf("expected neutral, got %q", prediction.DominantEmotion)
	}
	var total float64
	for _, s := range prediction.Emotions {
		total += s.Score
	}
	if total < 0.999 || total > 1.001 {
		t.Fatalf("scores should sum to 1, got %f", total)
	}
}

func TestHeuristicScoresSumToOne(t *testing.T) {
	h := NewHeuristic()
	prediction, _ := h.Predict(context.Background(), Request{
		Utterance: Turn{Text: "that is disgusting and I hate it"},
	})
	var total float64
	for _, s := range prediction.Emotions {
		total += s.Score
	}
	if total < 0.999 || total > 1.001 {
		t.Fatalf("scores should sum to 1, got %f", total)
	}
	if len(prediction.Emotions) != 7 {
		t.Fatalf("expected one score per MELD label, got %d", len(prediction.Emotions))
	}
}

func TestHeuristicInfo(t *testing.T) {
	info := NewHeuristic().Info()
	if info.Source != "heuristic" {
		t.Fatalf("unexpected source: %q", info.Source)
	}
	if len(info.Labels) != 7 {
		t.Fatalf("expected 7 labels, got %d", len(info.Labels))
	}
}
