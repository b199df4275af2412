// Package evaluate computes classification metrics over model predictions:
// accuracy, per-class precision/recall/F1 and the weighted F1 used both for
// hyperparameter selection and for the best-checkpoint decision.
package evaluate

import "fmt"

// Confusion accumulates a square confusion matrix over class indices.
type Confusion struct {
	n      int
	counts [][]int // counts[gold][pred]
	total  int
}

// NewConfusion creates a matrix for n classes.
func NewConfusion(n int) *Confusion {
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}
	return &Confusion{n: n, counts: counts}
}

// Add records one observation.
func (c *Confusion) Add(gold, pred int) error {
	if gold < 0 || gold >= c.n || pred < 0 || pred >= c.n {
		return fmt.Errorf("class index out of range: gold=%d pred=%d n=%d", gold, pred, c.n)
	}
	c.counts[gold][pred]++
	c.total++
	return nil
}

// Total reports the number of recorded observations.
func (c *Confusion) Total() int { return c.total }

// Accuracy is the fraction of correct predictions.
func (c *Confusion) Accuracy() float64 {
	if c.total == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < c.n; i++ {
		correct += c.counts[i][i]
	}
	return float64(correct) / float64(c.total)
}

// ClassScore holds the per-class metrics of one emotion label.
type ClassScore struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is a full classification report, serializable into val-results.json
// and test-results.json.
type Report struct {
	Accuracy   float64      `json:"accuracy"`
	F1Weighted float64      `json:"f1_weighted"`
	F1Macro    float64      `json:"f1_macro"`
	Support    int          `json:"support"`
	Classes    []ClassScore `json:"classes"`
}

// Report computes the classification report. labels must have one entry per
// class index. Classes with zero support contribute zero to the weighted F1
// and are excluded from the macro average.
func (c *Confusion) Report(labels []string) Report {
	report := Report{
		Accuracy: c.Accuracy(),
		Support:  c.total,
		Classes:  make([]ClassScore, 0, c.n),
	}

	var weightedSum float64
	var macroSum float64
	var macroN int
	for i := 0; i < c.n; i++ {
		var tp, fp, fn int
		tp = c.counts[i][i]
		for j := 0; j < c.n; j++ {
			if j == i {
				continue
			}
			fp += c.counts[j][i]
			fn += c.counts[i][j]
		}
		support := tp + fn

		score := ClassScore{Support: support}
		if i < len(labels) {
			score.Label = labels[i]
		}
		if tp+fp > 0 {
			score.Precision = float64(tp) / float64(tp+fp)
		}
		if support > 0 {
			score.Recall = float64(tp) / float64(support)
		}
		if score.Precision+score.Recall > 0 {
			score.F1 = 2 * score.Precision * score.Recall / (score.Precision + score.Recall)
		}
		report.Classes = append(report.Classes, score)

		weightedSum += score.F1 * float64(support)
		if support > 0 {
			macroSum += score.F1
			macroN++
		}
	}

	if c.total > 0 {
		report.F1Weighted = weightedSum / float64(c.total)
	}
	if macroN > 0 {
		report.F1Macro = macroSum / float64(macroN)
	}
	return report
}

// Argmax returns the index of the largest value; the first index wins ties.
func Argmax(values []float32) int {
	best := 0
	for i := range values {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
