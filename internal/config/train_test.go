package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTrainDefaults(t *testing.T) {
	path := writeConfig(t, `
dataset: MELD
data_root: ./data
learning_rates: [0.001]
`)
	cfg, err := LoadTrain(path)
	if err != nil {
		t.Fatalf("LoadTrain err: %v", err)
	}
	if cfg.SpeakerMode != "upper" {
		t.Fatalf("default speaker mode: got %q", cfg.SpeakerMode)
	}
	if cfg.BatchSize != 16 || cfg.NumTrainEpochs != 5 {
		t.Fatalf("defaults not applied: batch=%d epochs=%d", cfg.BatchSize, cfg.NumTrainEpochs)
	}
	if cfg.SweepSeed != 42 {
		t.Fatalf("default sweep seed: got %d", cfg.SweepSeed)
	}
	if len(cfg.Seeds) == 0 {
		t.Fatal("default seeds missing")
	}
	if cfg.Model.MaxSeqLen != 256 || cfg.Model.VocabSize != 20000 {
		t.Fatalf("model defaults not applied: %+v", cfg.Model)
	}
}

func TestLoadTrainUnknownDataset(t *testing.T) {
	path := writeConfig(t, `
dataset: SST2
data_root: ./data
learning_rates: [0.001]
`)
	if _, err := LoadTrain(path); err == nil {
		t.Fatal("expected error for unknown dataset")
	}
}

func TestLoadTrainRequiresLearningRates(t *testing.T) {
	path := writeConfig(t, `
dataset: MELD
data_root: ./data
`)
	if _, err := LoadTrain(path); err == nil {
		t.Fatal("expected error for missing learning rates")
	}
}

func TestLoadTrainRejectsNegativeLearningRate(t *testing.T) {
	path := writeConfig(t, `
dataset: MELD
data_root: ./data
learning_rates: [-0.001]
`)
	if _, err := LoadTrain(path); err == nil {
		t.Fatal("expected error for negative learning rate")
	}
}

func TestLoadTrainRejectsBadSpeakerMode(t *testing.T) {
	path := writeConfig(t, `
dataset: MELD
data_root: ./data
speaker_mode: shouty
learning_rates: [0.001]
`)
	if _, err := LoadTrain(path); err == nil {
		t.Fatal("expected error for unknown speaker mode")
	}
}
