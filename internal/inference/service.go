// Package inference loads a trained run directory and serves predictions
// over it. The Predictor interface keeps HTTP handlers independent of the
// gomlx runtime.
package inference

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	. "github.com/gomlx/gomlx/graph"
	mlcontext "github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/checkpoints"
	"github.com/gomlx/gomlx/types/tensor"

	"github.com/emoberta/emoberta/internal/dataset"
	"github.com/emoberta/emoberta/internal/evaluate"
	"github.com/emoberta/emoberta/internal/model"
	"github.com/emoberta/emoberta/internal/tokenize"
	"github.com/emoberta/emoberta/pkg/api"
)

// Turn is one utterance handed to the classifier.
type Turn struct {
	Speaker string
	Text    string
}

// Request classifies Utterance given the preceding turns of its
// conversation. Past may be empty.
type Request struct {
	Past      []Turn
	Utterance Turn
}

// Info describes the serving model.
type Info struct {
	Source  string
	Dataset string
	Labels  []string
}

// Predictor is the classification contract the HTTP layer depends on.
type Predictor interface {
	Predict(ctx context.Context, req Request) (api.Prediction, error)
	Info() Info
}

// Classifier serves a trained checkpoint.
type Classifier struct {
	info    model.RunInfo
	vocab   *tokenize.Vocab
	windows dataset.WindowOptions

	mu   sync.Mutex
	exec func(windows [][]int32) []float32
}

// Load opens a run directory written by the training pipeline: run.json,
// vocab.json and the gomlx checkpoint.
func Load(dir string) (*Classifier, error) {
	info, err := model.LoadRunInfo(dir)
	if err != nil {
		return nil, err
	}
	vocab, err := tokenize.Load(filepath.Join(dir, model.VocabFile))
	if err != nil {
		return nil, err
	}
	if vocab.Size() != info.Model.VocabSize {
		return nil, fmt.Errorf("vocab size %d does not match run info %d", vocab.Size(), info.Model.VocabSize)
	}

	manager := BuildManager().Done()
	ctx := mlcontext.NewContext(manager)
	if _, err := checkpoints.Build(ctx).
		Dir(filepath.Join(dir, model.CheckpointDir)).Done(); err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	cfg := info.Model
	exec := mlcontext.NewExec(manager, ctx.Reuse(),
		func(ctx *mlcontext.Context, tokens *Node) *Node {
			ctx.SetTraining(tokens.Graph(), false)
			logits := cfg.Graph(ctx, nil, []*Node{tokens})[0]
			return Softmax(logits)
		})

	c := &Classifier{
		info:  info,
		vocab: vocab,
		windows: dataset.WindowOptions{
			SpeakerMode: dataset.SpeakerMode(info.SpeakerMode),
			NumPast:     info.NumPastUtterances,
			NumFuture:   info.NumFutureUtterances,
		},
	}
	c.exec = func(windows [][]int32) []float32 {
		result := exec.Call(tensor.FromValue(windows))[0]
		ref := result.Local().AcquireData()
		defer ref.Release()
		return append([]float32(nil), ref.Flat().([]float32)...)
	}
	return c, nil
}

// Info implements Predictor.
func (c *Classifier) Info() Info {
	return Info{Source: "checkpoint", Dataset: c.info.Dataset, Labels: append([]string(nil), c.info.Labels...)}
}

// Predict implements Predictor: the utterance and up to NumPastUtterances of
// its history are rendered into the same context window format used during
// training.
func (c *Classifier) Predict(ctx context.Context, req Request) (api.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return api.Prediction{}, err
	}
	if req.Utterance.Text == "" {
		return api.Prediction{}, fmt.Errorf("empty utterance")
	}

	past := req.Past
	if len(past) > c.windows.NumPast {
		past = past[len(past)-c.windows.NumPast:]
	}
	segments := make([]string, 0, len(past)+1)
	for _, t := range past {
		segments = append(segments, dataset.RenderUtterance(
			dataset.Utterance{Speaker: t.Speaker, Text: t.Text}, c.windows.SpeakerMode))
	}
	segments = append(segments, dataset.RenderUtterance(
		dataset.Utterance{Speaker: req.Utterance.Speaker, Text: req.Utterance.Text}, c.windows.SpeakerMode))

	window := c.vocab.EncodeWindow(segments, len(segments)-1, c.info.Model.MaxSeqLen)

	c.mu.Lock()
	probs := c.exec([][]int32{window})
	c.mu.Unlock()

	return buildPrediction(c.info.Labels, probs), nil
}

func buildPrediction(labels []string, probs []float32) api.Prediction {
	scores := make([]api.Score, 0, len(labels))
	for i, label := range labels {
		var p float64
		if i < len(probs) {
			p = float64(probs[i])
		}
		scores = append(scores, api.Score{Label: label, Score: p})
	}
	dominant := labels[evaluate.Argmax(probs)]
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return api.Prediction{DominantEmotion: dominant, Emotions: scores}
}
