package evaluate

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestConfusionAccuracy(t *testing.T) {
	c := NewConfusion(2)
	for i := 0; i < 3; i++ {
		if err := c.Add(0, 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Add(1, 0); err != nil {
		t.Fatal(err)
	}
	if got := c.Accuracy(); !almostEqual(got, 0.75) {
		t.Fatalf("accuracy: got %f want 0.75", got)
	}
}

func TestConfusionAddOutOfRange(t *testing.T) {
	c := NewConfusion(2)
	if err := c.Add(2, 0); err == nil {
		t.Fatal("expected error for out-of-range gold class")
	}
	if err := c.Add(0, -1); err == nil {
		t.Fatal("expected error for out-of-range predicted class")
	}
}

func TestReportWeightedF1(t *testing.T) {
	// Class 0: tp=2 fn=1 fp=0 -> p=1, r=2/3, f1=0.8, support=3.
	// Class 1: tp=1 fn=0 fp=1 -> p=0.5, r=1, f1=2/3, support=1.
	c := NewConfusion(2)
	c.Add(0, 0)
	c.Add(0, 0)
	c.Add(0, 1)
	c.Add(1, 1)

	report := c.Report([]string{"neutral", "joy"})
	if report.Support != 4 {
		t.Fatalf("support: got %d", report.Support)
	}
	if !almostEqual(report.Classes[0].F1, 0.8) {
		t.Fatalf("class 0 f1: got %f", report.Classes[0].F1)
	}
	if !almostEqual(report.Classes[1].F1, 2.0/3.0) {
		t.Fatalf("class 1 f1: got %f", report.Classes[1].F1)
	}

	wantWeighted := (0.8*3 + (2.0/3.0)*1) / 4
	if !almostEqual(report.F1Weighted, wantWeighted) {
		t.Fatalf("weighted f1: got %f want %f", report.F1Weighted, wantWeighted)
	}
	wantMacro := (0.8 + 2.0/3.0) / 2
	if !almostEqual(report.F1Macro, wantMacro) {
		t.Fatalf("macro f1: got %f want %f", report.F1Macro, wantMacro)
	}
}

func TestReportZeroSupportClassExcludedFromMacro(t *testing.T) {
	c := NewConfusion(3)
	c.Add(0, 0)
	c.Add(1, 1)

	report := c.Report([]string{"a", "b", "c"})
	if report.Classes[2].Support != 0 {
		t.Fatalf("expected zero support for class c")
	}
	if !almostEqual(report.F1Macro, 1.0) {
		t.Fatalf("zero-support class should not drag macro f1: got %f", report.F1Macro)
	}
	if !almostEqual(report.F1Weighted, 1.0) {
		t.Fatalf("weighted f1: got %f", report.F1Weighted)
	}
}

func TestArgmax(t *testing.T) {
	if got := Argmax([]float32{0.1, 0.7, 0.2}); got != 1 {
		t.Fatalf("argmax: got %d", got)
	}
	if got := Argmax([]float32{0.5, 0.5}); got != 0 {
		t.Fatalf("first index should win ties, got %d", got)
	}
}
