package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Split names one of the three corpus partitions.
type Split string

const (
	TrainSplit Split = "train"
	ValSplit   Split = "val"
	TestSplit  Split = "test"
)

// Utterance is a single turn of dialogue, the unit of classification.
type Utterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Label   string `json:"label"`
}

// Dialogue is an ordered sequence of utterances from one conversation.
type Dialogue struct {
	ID         string      `json:"id"`
	Utterances []Utterance `json:"utterances"`
}

// LoadSplit reads one partition of a corpus from
// <root>/<dataset>/<split>.json. A missing test split is not an error: some
// corpora publish only train/val, and callers are expected to treat an empty
// result as "no split".
func LoadSplit(root, dataset string, split Split) ([]Dialogue, error) {
	path := filepath.Join(root, strings.ToUpper(dataset), string(split)+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && split == TestSplit {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s split: %w", split, err)
	}

	var dialogues []Dialogue
	if err := json.Unmarshal(raw, &dialogues); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	kept := dialogues[:0]
	for _, d := range dialogues {
		if len(d.Utterances) == 0 {
			continue
		}
		kept = append(kept, d)
	}
	return kept, nil
}

// Stats summarizes what BuildExamples kept and dropped.
type Stats struct {
	Dialogues     int
	Examples      int
	SkippedLabels int
}

// BuildExamples flattens dialogues into one training example per labeled
// utterance, attaching past and future context according to opts. Utterances
// whose label is not in the corpus label set are skipped (they still appear
// as context for their neighbours).
func BuildExamples(dialogues []Dialogue, labelIndex map[string]int, opts WindowOptions) ([]Example, Stats) {
	var examples []Example
	stats := Stats{Dialogues: len(dialogues)}

	for _, d := range dialogues {
		for i, utt := range d.Utterances {
			class, ok := labelIndex[strings.ToLower(strings.TrimSpace(utt.Label))]
			if !ok {
				stats.SkippedLabels++
				continue
			}
			if strings.TrimSpace(utt.Text) == "" {
				continue
			}
			examples = append(examples, buildWindow(d.Utterances, i, class, opts))
		}
	}

	stats.Examples = len(examples)
	if stats.SkippedLabels > 0 {
		logrus.WithFields(logrus.Fields{
			"skipped":  stats.SkippedLabels,
			"examples": stats.Examples,
		}).Debug("dropped utterances with out-of-set labels")
	}
	return examples, stats
}
