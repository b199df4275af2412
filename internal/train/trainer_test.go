package train

import (
	"math"
	"testing"

	"github.com/emoberta/emoberta/internal/dataset"
	"github.com/emoberta/emoberta/internal/tokenize"
)

func TestWarmupRateRamps(t *testing.T) {
	const lr = 1e-3
	const warmupSteps = 10

	if got := warmupRate(lr, 0, warmupSteps); math.Abs(got-lr/warmupSteps) > 1e-12 {
		t.Fatalf("step 0: got %g, want %g", got, lr/warmupSteps)
	}
	if got := warmupRate(lr, 4, warmupSteps); math.Abs(got-lr/2) > 1e-12 {
		t.Fatalf("step 4: got %g, want %g", got, lr/2)
	}
	if got := warmupRate(lr, warmupSteps-1, warmupSteps); math.Abs(got-lr) > 1e-12 {
		t.Fatalf("last warmup step: got %g, want %g", got, lr)
	}

	// Strictly increasing through warmup, then flat at the configured rate.
	prev := 0.0
	for step := 0; step < warmupSteps; step++ {
		rate := warmupRate(lr, step, warmupSteps)
		if rate <= prev {
			t.Fatalf("rate not increasing at step %d: %g <= %g", step, rate, prev)
		}
		prev = rate
	}
	for _, step := range []int{warmupSteps, warmupSteps + 1, 1000} {
		if got := warmupRate(lr, step, warmupSteps); got != lr {
			t.Fatalf("step %d: got %g, want %g", step, got, lr)
		}
	}
}

func TestBuildVocabIncludesContextOnlyTurns(t *testing.T) {
	dialogues := []dataset.Dialogue{
		{
			ID: "d0",
			Utterances: []dataset.Utterance{
				{Speaker: "Mary", Text: "hello there", Label: "joy"},
				// Unknown label: never a classification target, context only.
				{Speaker: "Joey", Text: "zorblat zorblat", Label: "confused"},
			},
		},
	}

	vocab := buildVocab(dialogues, dataset.SpeakerUpper, 100)
	ids := vocab.Encode("zorblat")
	if len(ids) != 1 {
		t.Fatalf("expected one token, got %v", ids)
	}
	if ids[0] == tokenize.UnkID {
		t.Fatal("context-only word should be in vocabulary, got unk")
	}
	// Speaker prefixes are rendered too.
	if got := vocab.Encode("joey"); len(got) != 1 || got[0] == tokenize.UnkID {
		t.Fatalf("rendered speaker should be in vocabulary, got %v", got)
	}
}
