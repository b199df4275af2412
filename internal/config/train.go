package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/emoberta/emoberta/internal/dataset"
)

// Model holds the architecture hyperparameters of the classifier.
type Model struct {
	MaxSeqLen    int     `yaml:"max_seq_len"`
	VocabSize    int     `yaml:"vocab_size"`
	EmbedDim     int     `yaml:"embed_dim"`
	AttHeads     int     `yaml:"att_heads"`
	AttLayers    int     `yaml:"att_layers"`
	AttKeyDim    int     `yaml:"att_key_dim"`
	HiddenLayers int     `yaml:"hidden_layers"`
	HiddenDim    int     `yaml:"hidden_dim"`
	Dropout      float64 `yaml:"dropout"`
}

// Train mirrors the train-erc-text.yaml hyperparameter file: everything the
// two-stage pipeline needs to run a sweep and the final per-seed training.
type Train struct {
	Dataset             string    `yaml:"dataset"`
	DataRoot            string    `yaml:"data_root"`
	OutputDir           string    `yaml:"output_dir"`
	SpeakerMode         string    `yaml:"speaker_mode"`
	NumPastUtterances   int       `yaml:"num_past_utterances"`
	NumFutureUtterances int       `yaml:"num_future_utterances"`
	BatchSize           int       `yaml:"batch_size"`
	NumTrainEpochs      int       `yaml:"num_train_epochs"`
	SearchEpochs        int       `yaml:"search_epochs"`
	WeightDecay         float64   `yaml:"weight_decay"`
	WarmupRatio         float64   `yaml:"warmup_ratio"`
	LearningRates       []float64 `yaml:"learning_rates"`
	Seeds               []int64   `yaml:"seeds"`
	SweepSeed           int64     `yaml:"sweep_seed"`
	CheckpointKeep      int       `yaml:"checkpoint_keep"`
	Model               Model     `yaml:"model"`
}

// LoadTrain reads and validates a training configuration file.
func LoadTrain(path string) (*Train, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Train{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Train) applyDefaults() {
	if c.SpeakerMode == "" {
		c.SpeakerMode = string(dataset.SpeakerUpper)
	}
	if c.OutputDir == "" {
		c.OutputDir = "results"
	}
	if c.BatchSize == 0 {
		c.BatchSize = 16
	}
	if c.NumTrainEpochs == 0 {
		c.NumTrainEpochs = 5
	}
	if c.SearchEpochs == 0 {
		c.SearchEpochs = 1
	}
	if c.SweepSeed == 0 {
		c.SweepSeed = 42
	}
	if len(c.Seeds) == 0 {
		c.Seeds = []int64{0, 1, 2, 3, 4}
	}
	if c.CheckpointKeep == 0 {
		c.CheckpointKeep = 3
	}

	m := &c.Model
	if m.MaxSeqLen == 0 {
		m.MaxSeqLen = 256
	}
	if m.VocabSize == 0 {
		m.VocabSize = 20000
	}
	if m.EmbedDim == 0 {
		m.EmbedDim = 64
	}
	if m.AttHeads == 0 {
		m.AttHeads = 4
	}
	if m.AttLayers == 0 {
		m.AttLayers = 2
	}
	if m.AttKeyDim == 0 {
		m.AttKeyDim = 16
	}
	if m.HiddenLayers == 0 {
		m.HiddenLayers = 2
	}
	if m.HiddenDim == 0 {
		m.HiddenDim = 64
	}
	if m.Dropout == 0 {
		m.Dropout = 0.1
	}
}

func (c *Train) validate() error {
	if _, err := dataset.Labels(c.Dataset); err != nil {
		return err
	}
	if c.DataRoot == "" {
		return fmt.Errorf("data_root is required")
	}
	if len(c.LearningRates) == 0 {
		return fmt.Errorf("learning_rates must list at least one candidate")
	}
	for _, lr := range c.LearningRates {
		if lr <= 0 {
			return fmt.Errorf("learning rate must be positive, got %g", lr)
		}
	}
	switch dataset.SpeakerMode(c.SpeakerMode) {
	case dataset.SpeakerNone, dataset.SpeakerUpper, dataset.SpeakerTitle:
	default:
		return fmt.Errorf("unknown speaker_mode %q", c.SpeakerMode)
	}
	if c.NumPastUtterances < 0 || c.NumFutureUtterances < 0 {
		return fmt.Errorf("context utterance counts must be >= 0")
	}
	return nil
}

// WindowOptions converts the config into dataset window options.
func (c *Train) WindowOptions() dataset.WindowOptions {
	return dataset.WindowOptions{
		SpeakerMode: dataset.SpeakerMode(c.SpeakerMode),
		NumPast:     c.NumPastUtterances,
		NumFuture:   c.NumFutureUtterances,
	}
}
