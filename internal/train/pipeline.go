package train

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/emoberta/emoberta/internal/config"
)

// Full is the second pipeline stage: one full training run per configured
// seed with the hyperparameters from hp.json, followed by best-checkpoint
// selection into best.json.
func Full(cfg *config.Train) (Best, error) {
	outDir := pipelineDir(cfg)

	hp, ok, err := ReadHP(outDir)
	if err != nil {
		return Best{}, err
	}
	if !ok {
		return Best{}, fmt.Errorf("no %s in %s: run the search stage first", HPFile, outDir)
	}
	logrus.WithField("learning_rate", hp.LearningRate).Info("loaded best hyperparameters")

	var best *Result
	for _, seed := range cfg.Seeds {
		runDir := filepath.Join(outDir, fmt.Sprintf("seed-%d", seed))
		result, err := Run(cfg, hp.LearningRate, seed, cfg.NumTrainEpochs, runDir)
		if err != nil {
			return Best{}, fmt.Errorf("full run seed=%d: %w", seed, err)
		}
		if best == nil || result.Val.F1Weighted > best.Val.F1Weighted {
			best = result
		}
	}

	selected := Best{Seed: best.Seed, Dir: best.Dir, F1Weighted: best.Val.F1Weighted}
	if err := writeJSON(filepath.Join(outDir, BestFile), selected); err != nil {
		return Best{}, fmt.Errorf("write %s: %w", BestFile, err)
	}
	logrus.WithFields(logrus.Fields{
		"seed":        selected.Seed,
		"dir":         selected.Dir,
		"f1_weighted": fmt.Sprintf("%.4f", selected.F1Weighted),
	}).Info("full stage finished, best checkpoint selected")
	return selected, nil
}

// Pipeline runs both stages back to back. An existing hp.json short-circuits
// the search so an interrupted pipeline resumes at the final stage.
func Pipeline(cfg *config.Train) (Best, error) {
	outDir := pipelineDir(cfg)

	if _, ok, err := ReadHP(outDir); err != nil {
		return Best{}, err
	} else if ok {
		logrus.Info("hp.json already present, skipping search stage")
	} else if _, err := Search(cfg); err != nil {
		return Best{}, err
	}
	return Full(cfg)
}
