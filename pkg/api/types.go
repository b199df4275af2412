// Package api holds the wire types shared by the inference server, the Go
// client and the CLI.
package api

import "time"

// Turn is one utterance of conversational context.
type Turn struct {
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text"`
}

// ClassifyRequest asks for the emotion of a single utterance, optionally
// preceded by earlier turns of the same conversation.
type ClassifyRequest struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
	Context []Turn `json:"context,omitempty"`
}

// Score is the probability assigned to one emotion label.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Prediction is the full classifier output: every label with its
// probability, sorted descending, plus the winner.
type Prediction struct {
	DominantEmotion string  `json:"dominant_emotion"`
	Emotions        []Score `json:"emotions"`
}

// Health reports model readiness and metadata.
type Health struct {
	Status  string   `json:"status"`
	Source  string   `json:"source"`
	Dataset string   `json:"dataset,omitempty"`
	Labels  []string `json:"labels"`
}

// Session identifies a streaming conversation.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
