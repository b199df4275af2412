package train

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/emoberta/emoberta/internal/config"
)

// Search is the first pipeline stage: one short training run per candidate
// learning rate at the sweep seed, ranked by validation weighted F1. The
// winner is written to hp.json under the pipeline output directory.
func Search(cfg *config.Train) (HP, error) {
	outDir := pipelineDir(cfg)

	var best *Result
	for _, lr := range cfg.LearningRates {
		runDir := filepath.Join(outDir, "sweep", lrDirName(lr))
		result, err := Run(cfg, lr, cfg.SweepSeed, cfg.SearchEpochs, runDir)
		if err != nil {
			return HP{}, fmt.Errorf("sweep run lr=%g: %w", lr, err)
		}
		if best == nil || result.Val.F1Weighted > best.Val.F1Weighted {
			best = result
		}
	}

	hp := HP{LearningRate: best.LearningRate}
	if err := WriteHP(outDir, hp); err != nil {
		return HP{}, fmt.Errorf("write %s: %w", HPFile, err)
	}
	logrus.WithFields(logrus.Fields{
		"learning_rate": hp.LearningRate,
		"f1_weighted":   fmt.Sprintf("%.4f", best.Val.F1Weighted),
	}).Info("search stage finished, best hyperparameters saved")
	return hp, nil
}

func pipelineDir(cfg *config.Train) string {
	return filepath.Join(cfg.OutputDir, cfg.Dataset)
}
