package inference

import (
	"context"
	"strings"

	"github.com/emoberta/emoberta/pkg/api"
)

// Heuristic is a keyword-bucket classifier over the MELD label set, served
// when no trained checkpoint is configured. It keeps the API shape identical
// so clients never need to know which backend answered.
type Heuristic struct {
	labels []string
}

// NewHeuristic builds the fallback classifier.
func NewHeuristic() *Heuristic {
	return &Heuristic{labels: meldLabels()}
}

func meldLabels() []string {
	return []string{"neutral", "joy", "surprise", "anger", "sadness", "disgust", "fear"}
}

var keywordBuckets = map[string][]string{
	"joy": {
		"happy", "glad", "great", "awesome", "amazing", "wonderful", "love", "thanks",
		"thank you", "haha", "lol", "yay", "excellent", "fantastic", "delighted",
	},
	"surprise": {
		"wow", "whoa", "really", "no way", "unbelievable", "can't believe",
		"cannot believe", "what?!", "seriously", "oh my god", "omg", "incredible",
	},
	"anger": {
		"angry", "furious", "mad", "rage", "annoyed", "pissed", "hate", "fed up",
		"outrage", "shut up", "damn", "how dare",
	},
	"sadness": {
		"sad", "unhappy", "cry", "crying", "depressed", "miserable", "lonely",
		"heartbroken", "sorry", "miss you", "upset", "hurt", "terrible",
	},
	"disgust": {
		"gross", "disgusting", "ew", "eww", "nasty", "sick of", "revolting",
		"yuck", "awful", "repulsive",
	},
	"fear": {
		"afraid", "scared", "terrified", "frightened", "worried", "nervous",
		"panic", "anxious", "help me", "danger",
	},
}

// punctuation cues: exclamation marks lean joy/surprise.
var punctuationBoost = map[string]int{
	"joy":      2,
	"surprise": 3,
}

// Info implements Predictor.
func (h *Heuristic) Info() Info {
	return Info{Source: "heuristic", Dataset: "MELD", Labels: append([]string(nil), h.labels...)}
}

// Predict implements Predictor with keyword scoring over the utterance only;
// conversational context is ignored by the fallback.
func (h *Heuristic) Predict(_ context.Context, req Request) (api.Prediction, error) {
	scores := h.score(req.Utterance.Text)
	return h.toPrediction(scores), nil
}

func (h *Heuristic) score(text string) map[string]int {
	scores := make(map[string]int, len(h.labels))
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return scores
	}

	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	if exclamations := strings.Count(text, "!"); exclamations > 0 {
		scores["surprise"] += exclamations * punctuationBoost["surprise"]
		if exclamations == 1 {
			scores["joy"] += punctuationBoost["joy"]
		}
	}
	return scores
}

func (h *Heuristic) toPrediction(scores map[string]int) api.Prediction {
	total := 0
	for _, s := range scores {
		total += s
	}
	if total == 0 {
		// No signal at all: neutral with full confidence.
		out := api.Prediction{DominantEmotion: "neutral"}
		for _, label := range h.labels {
			score := 0.0
			if label == "neutral" {
				score = 1.0
			}
			out.Emotions = append(out.Emotions, api.Score{Label: label, Score: score})
		}
		return out
	}

	probs := make([]float32, len(h.labels))
	for i, label := range h.labels {
		probs[i] = float32(scores[label]) / float32(total)
	}
	return buildPrediction(h.labels, probs)
}
