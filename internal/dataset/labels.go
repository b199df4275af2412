package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Emotion label sets per corpus. Order is fixed: it defines the class index
// used for training and the order of probabilities reported by the server.
var labelSets = map[string][]string{
	"MELD":    {"neutral", "joy", "surprise", "anger", "sadness", "disgust", "fear"},
	"IEMOCAP": {"neutral", "frustration", "sadness", "anger", "excited", "happiness"},
}

// Datasets lists the supported corpus names, sorted.
func Datasets() []string {
	names := make([]string, 0, len(labelSets))
	for name := range labelSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Labels returns the emotion label set of the named corpus.
func Labels(dataset string) ([]string, error) {
	labels, ok := labelSets[strings.ToUpper(dataset)]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q, supported: %s", dataset, strings.Join(Datasets(), ", "))
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return out, nil
}

// NumClasses returns the number of emotion classes of the named corpus.
func NumClasses(dataset string) (int, error) {
	labels, err := Labels(dataset)
	if err != nil {
		return 0, err
	}
	return len(labels), nil
}

// LabelIndex builds the label -> class index mapping of the named corpus.
func LabelIndex(dataset string) (map[string]int, error) {
	labels, err := Labels(dataset)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	return index, nil
}
