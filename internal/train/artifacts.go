package train

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact file names inside the pipeline output directory.
const (
	HPFile   = "hp.json"
	BestFile = "best.json"
)

// HP holds the hyperparameters selected by the search stage.
type HP struct {
	LearningRate float64 `json:"learning_rate"`
}

// Best points at the winning seed run after the final stage.
type Best struct {
	Seed       int64   `json:"seed"`
	Dir        string  `json:"dir"`
	F1Weighted float64 `json:"val_f1_weighted"`
}

// WriteHP persists the selected hyperparameters into dir.
func WriteHP(dir string, hp HP) error {
	return writeJSON(filepath.Join(dir, HPFile), hp)
}

// ReadHP loads previously selected hyperparameters, or ok=false when the
// search stage has not run yet.
func ReadHP(dir string) (HP, bool, error) {
	raw, err := os.ReadFile(filepath.Join(dir, HPFile))
	if err != nil {
		if os.IsNotExist(err) {
			return HP{}, false, nil
		}
		return HP{}, false, fmt.Errorf("read %s: %w", HPFile, err)
	}
	var hp HP
	if err := json.Unmarshal(raw, &hp); err != nil {
		return HP{}, false, fmt.Errorf("decode %s: %w", HPFile, err)
	}
	if hp.LearningRate <= 0 {
		return HP{}, false, fmt.Errorf("%s holds no positive learning rate", HPFile)
	}
	return hp, true, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// lrDirName renders a learning rate as a filesystem-friendly directory name,
// e.g. 1e-05 -> "lr-1e-05".
func lrDirName(lr float64) string {
	s := strings.ReplaceAll(fmt.Sprintf("%g", lr), "+", "")
	return "lr-" + s
}
