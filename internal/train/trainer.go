// Package train orchestrates the two-stage training pipeline: a learning-rate
// search that writes hp.json, then full per-seed training runs with
// checkpoint selection. The numeric work is delegated to gomlx.
package train

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	. "github.com/gomlx/gomlx/graph"
	mlcontext "github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/checkpoints"
	"github.com/gomlx/gomlx/ml/layers"
	mltrain "github.com/gomlx/gomlx/ml/train"
	"github.com/gomlx/gomlx/ml/train/commandline"
	"github.com/gomlx/gomlx/ml/train/losses"
	"github.com/gomlx/gomlx/ml/train/metrics"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/gomlx/gomlx/types/tensor"
	"github.com/sirupsen/logrus"

	"github.com/emoberta/emoberta/internal/config"
	"github.com/emoberta/emoberta/internal/dataset"
	"github.com/emoberta/emoberta/internal/evaluate"
	"github.com/emoberta/emoberta/internal/model"
	"github.com/emoberta/emoberta/internal/tokenize"
)

// Result summarizes one training run.
type Result struct {
	LearningRate float64          `json:"learning_rate"`
	Seed         int64            `json:"seed"`
	Dir          string           `json:"dir"`
	Val          evaluate.Report  `json:"val"`
	Test         *evaluate.Report `json:"test,omitempty"`
}

type split struct {
	windows [][]int32
	classes []int64
}

// Run executes one training run into runDir: builds the vocabulary and
// datasets, trains for the given number of epochs, saves checkpoints and
// writes val-results.json (and test-results.json when a test split exists).
func Run(cfg *config.Train, lr float64, seed int64, epochs int, runDir string) (*Result, error) {
	log := logrus.WithFields(logrus.Fields{
		"dataset": cfg.Dataset,
		"lr":      lr,
		"seed":    seed,
		"dir":     runDir,
	})

	labels, err := dataset.Labels(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	labelIndex, _ := dataset.LabelIndex(cfg.Dataset)

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	examples := make(map[dataset.Split][]dataset.Example, 3)
	var trainDialogues []dataset.Dialogue
	for _, name := range []dataset.Split{dataset.TrainSplit, dataset.ValSplit, dataset.TestSplit} {
		dialogues, err := dataset.LoadSplit(cfg.DataRoot, cfg.Dataset, name)
		if err != nil {
			return nil, err
		}
		if name == dataset.TrainSplit {
			trainDialogues = dialogues
		}
		if len(dialogues) == 0 {
			if name == dataset.TestSplit {
				log.Info("no test split, skipping test evaluation")
				continue
			}
			return nil, fmt.Errorf("empty %s split for %s", name, cfg.Dataset)
		}
		exs, stats := dataset.BuildExamples(dialogues, labelIndex, cfg.WindowOptions())
		log.WithFields(logrus.Fields{
			"split":     name,
			"dialogues": stats.Dialogues,
			"examples":  stats.Examples,
			"skipped":   stats.SkippedLabels,
		}).Info("loaded split")
		examples[name] = exs
	}

	vocab := buildVocab(trainDialogues, cfg.WindowOptions().SpeakerMode, cfg.Model.VocabSize)
	if err := vocab.Save(filepath.Join(runDir, model.VocabFile)); err != nil {
		return nil, fmt.Errorf("save vocab: %w", err)
	}
	log.WithField("vocab_size", vocab.Size()).Info("built vocabulary")

	modelCfg := model.Config{
		NumClasses:   len(labels),
		VocabSize:    vocab.Size(),
		MaxSeqLen:    cfg.Model.MaxSeqLen,
		EmbedDim:     cfg.Model.EmbedDim,
		AttHeads:     cfg.Model.AttHeads,
		AttLayers:    cfg.Model.AttLayers,
		AttKeyDim:    cfg.Model.AttKeyDim,
		HiddenLayers: cfg.Model.HiddenLayers,
		HiddenDim:    cfg.Model.HiddenDim,
		Dropout:      cfg.Model.Dropout,
	}
	if err := modelCfg.Validate(); err != nil {
		return nil, err
	}

	splits := make(map[dataset.Split]split, len(examples))
	for name, exs := range examples {
		splits[name] = encodeSplit(vocab, exs, modelCfg.MaxSeqLen)
	}

	manager := BuildManager().Done()
	ctx := mlcontext.NewContext(manager)
	ctx.SetParam(optimizers.LearningRateKey, lr)
	if cfg.WeightDecay > 0 {
		ctx.SetParam(layers.L2RegularizationKey, cfg.WeightDecay)
	}

	checkpoint, err := checkpoints.Build(ctx).
		Dir(filepath.Join(runDir, model.CheckpointDir)).
		Keep(cfg.CheckpointKeep).Done()
	if err != nil {
		return nil, fmt.Errorf("checkpoint handler: %w", err)
	}

	trainAccuracy := metrics.NewSparseCategoricalAccuracy("accuracy", "#acc")
	evalAccuracy := metrics.NewSparseCategoricalAccuracy("accuracy", "#acc")
	trainer := mltrain.NewTrainer(manager, ctx, modelCfg.Graph,
		losses.SparseCategoricalCrossEntropyLogits,
		optimizers.MustOptimizerByName("adam"),
		[]metrics.Interface{trainAccuracy},
		[]metrics.Interface{evalAccuracy})

	rng := rand.New(rand.NewSource(seed))
	trainData := splits[dataset.TrainSplit]
	trainDS := newBatchDataset("train", trainData.windows, trainData.classes, cfg.BatchSize, rng)

	loop := mltrain.NewLoop(trainer)
	commandline.AttachProgressBar(loop)

	mltrain.PeriodicCallback(loop, time.Minute, true, "save checkpoint", 100,
		func(loop *mltrain.Loop, _ []tensor.Tensor) error {
			return checkpoint.Save()
		})

	if cfg.WarmupRatio > 0 {
		attachWarmup(loop, ctx, lr, cfg.WarmupRatio, epochs, len(trainData.windows)/cfg.BatchSize)
	}

	log.WithField("epochs", epochs).Info("training")
	if _, err := loop.RunEpochs(trainDS, epochs); err != nil {
		return nil, fmt.Errorf("training loop: %w", err)
	}
	if err := checkpoint.Save(); err != nil {
		return nil, fmt.Errorf("save final checkpoint: %w", err)
	}

	predict := newExecPredictor(manager, ctx, modelCfg)

	result := &Result{LearningRate: lr, Seed: seed, Dir: runDir}
	valData := splits[dataset.ValSplit]
	result.Val = evalSplit(predict, valData, labels, cfg.BatchSize)
	log.WithFields(logrus.Fields{
		"accuracy":    fmt.Sprintf("%.4f", result.Val.Accuracy),
		"f1_weighted": fmt.Sprintf("%.4f", result.Val.F1Weighted),
	}).Info("validation results")
	if err := writeJSON(filepath.Join(runDir, "val-results.json"), result.Val); err != nil {
		return nil, err
	}

	if testData, ok := splits[dataset.TestSplit]; ok && len(testData.windows) > 0 {
		report := evalSplit(predict, testData, labels, cfg.BatchSize)
		result.Test = &report
		log.WithFields(logrus.Fields{
			"accuracy":    fmt.Sprintf("%.4f", report.Accuracy),
			"f1_weighted": fmt.Sprintf("%.4f", report.F1Weighted),
		}).Info("test results")
		if err := writeJSON(filepath.Join(runDir, "test-results.json"), report); err != nil {
			return nil, err
		}
	}

	info := model.RunInfo{
		Dataset:             cfg.Dataset,
		Labels:              labels,
		SpeakerMode:         cfg.SpeakerMode,
		NumPastUtterances:   cfg.NumPastUtterances,
		NumFutureUtterances: cfg.NumFutureUtterances,
		LearningRate:        lr,
		Seed:                seed,
		Model:               modelCfg,
	}
	if err := info.Save(runDir); err != nil {
		return nil, fmt.Errorf("save run info: %w", err)
	}
	return result, nil
}

// buildVocab collects every rendered utterance of the training split, once
// each, so turns that only ever appear as context (their labels are unknown
// or skipped) still reach the vocabulary.
func buildVocab(dialogues []dataset.Dialogue, mode dataset.SpeakerMode, maxSize int) *tokenize.Vocab {
	var texts []string
	for _, d := range dialogues {
		for _, utt := range d.Utterances {
			texts = append(texts, dataset.RenderUtterance(utt, mode))
		}
	}
	return tokenize.Build(texts, maxSize)
}

func encodeSplit(vocab *tokenize.Vocab, examples []dataset.Example, maxLen int) split {
	s := split{
		windows: make([][]int32, 0, len(examples)),
		classes: make([]int64, 0, len(examples)),
	}
	for _, ex := range examples {
		s.windows = append(s.windows, vocab.EncodeWindow(ex.Segments, ex.Target, maxLen))
		s.classes = append(s.classes, int64(ex.Class))
	}
	return s
}

// attachWarmup linearly ramps the learning rate over the first warmupRatio of
// all training steps, then holds the configured rate. The optimizer reads its
// rate from the learning-rate variable, which is fed to the compiled train
// step on every execution, so per-step SetValue calls take effect immediately.
// Updating the context param after the first graph build would not: the
// variable is initialized from it once and the param is never re-read.
func attachWarmup(loop *mltrain.Loop, ctx *mlcontext.Context, lr, warmupRatio float64, epochs, stepsPerEpoch int) {
	totalSteps := epochs * stepsPerEpoch
	warmupSteps := int(warmupRatio * float64(totalSteps))
	if warmupSteps <= 0 {
		return
	}
	lrVar := optimizers.LearningRateVar(ctx, model.DType, lr)
	lrVar.SetValue(tensor.FromValue(float32(warmupRate(lr, 0, warmupSteps))))
	mltrain.EveryNSteps(loop, 1, "lr warmup", 200,
		func(loop *mltrain.Loop, _ []tensor.Tensor) error {
			lrVar.SetValue(tensor.FromValue(float32(warmupRate(lr, int(loop.LoopStep), warmupSteps))))
			return nil
		})
}

// warmupRate returns the learning rate for a zero-based step: a linear ramp
// reaching lr at the end of warmup, constant afterwards.
func warmupRate(lr float64, step, warmupSteps int) float64 {
	if step >= warmupSteps {
		return lr
	}
	return lr * float64(step+1) / float64(warmupSteps)
}

// predictFn maps one batch of encoded windows to per-class probabilities.
type predictFn func(windows [][]int32) [][]float32

// newExecPredictor builds an inference executor over the trained context.
func newExecPredictor(manager *Manager, ctx *mlcontext.Context, cfg model.Config) predictFn {
	exec := mlcontext.NewExec(manager, ctx.Reuse(),
		func(ctx *mlcontext.Context, tokens *Node) *Node {
			ctx.SetTraining(tokens.Graph(), false)
			logits := cfg.Graph(ctx, nil, []*Node{tokens})[0]
			return Softmax(logits)
		})

	return func(windows [][]int32) [][]float32 {
		result := exec.Call(tensor.FromValue(windows))[0]
		ref := result.Local().AcquireData()
		defer ref.Release()
		flat := ref.Flat().([]float32)

		classes := len(flat) / len(windows)
		out := make([][]float32, len(windows))
		for i := range out {
			out[i] = append([]float32(nil), flat[i*classes:(i+1)*classes]...)
		}
		return out
	}
}

// evalSplit runs the predictor over a whole split and builds its report.
// The final partial batch is padded to keep tensor shapes constant; padded
// rows are ignored.
func evalSplit(predict predictFn, data split, labels []string, batchSize int) evaluate.Report {
	confusion := evaluate.NewConfusion(len(labels))
	for start := 0; start < len(data.windows); start += batchSize {
		end := start + batchSize
		if end > len(data.windows) {
			end = len(data.windows)
		}
		batch := make([][]int32, 0, batchSize)
		batch = append(batch, data.windows[start:end]...)
		for len(batch) < batchSize {
			batch = append(batch, data.windows[start]) // pad, discarded below
		}

		probs := predict(batch)
		for i := start; i < end; i++ {
			pred := evaluate.Argmax(probs[i-start])
			_ = confusion.Add(int(data.classes[i]), pred)
		}
	}
	return confusion.Report(labels)
}
