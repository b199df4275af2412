package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names inside a run directory.
const (
	RunInfoFile   = "run.json"
	VocabFile     = "vocab.json"
	CheckpointDir = "checkpoints"
)

// RunInfo records everything the inference service needs to rebuild the
// model from a run directory, plus provenance of the training run.
type RunInfo struct {
	Dataset             string   `json:"dataset"`
	Labels              []string `json:"labels"`
	SpeakerMode         string   `json:"speaker_mode"`
	NumPastUtterances   int      `json:"num_past_utterances"`
	NumFutureUtterances int      `json:"num_future_utterances"`
	LearningRate        float64  `json:"learning_rate"`
	Seed                int64    `json:"seed"`
	Model               Config   `json:"model"`
}

// Save writes the run info into dir.
func (r RunInfo) Save(dir string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, RunInfoFile), raw, 0o644)
}

// LoadRunInfo reads the run info of a run directory.
func LoadRunInfo(dir string) (RunInfo, error) {
	raw, err := os.ReadFile(filepath.Join(dir, RunInfoFile))
	if err != nil {
		return RunInfo{}, fmt.Errorf("read run info: %w", err)
	}
	var info RunInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return RunInfo{}, fmt.Errorf("decode run info: %w", err)
	}
	if err := info.Model.Validate(); err != nil {
		return RunInfo{}, fmt.Errorf("run info %s: %w", dir, err)
	}
	return info, nil
}
