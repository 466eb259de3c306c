package model

import (
	"errors"
	"testing"

	"github.com/Brownie44l1/gummy-api/internal/shared"
)

func TestRankOrdersByConfidence(t *testing.T) {
	result, err := Rank([]float32{0.1, 0.7, 0.2}, []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	expected := []string{"B", "C", "A"}
	for i, class := range expected {
		if result[i].Class != class {
			t.Errorf("result[%d].Class = %q, expected %q", i, result[i].Class, class)
		}
	}
	if result.Top().Confidence != float64(float32(0.7)) {
		t.Errorf("Top().Confidence = %v", result.Top().Confidence)
	}
}

func TestRankTiesKeepCatalogOrder(t *testing.T) {
	result, err := Rank([]float32{0.25, 0.5, 0.25, 0}, []string{"A", "B", "C", "D"})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	expected := []string{"B", "A", "C", "D"}
	for i, class := range expected {
		if result[i].Class != class {
			t.Errorf("result[%d].Class = %q, expected %q", i, result[i].Class, class)
		}
	}
}

func TestRankSortedDescending(t *testing.T) {
	probs := []float32{0.05, 0.3, 0.01, 0.3, 0.2, 0.14}
	classes := []string{"a", "b", "c", "d", "e", "f"}
	result, err := Rank(probs, classes)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for i := 1; i < len(result); i++ {
		if result[i].Confidence > result[i-1].Confidence {
			t.Fatalf("result not sorted at %d: %v", i, result)
		}
	}
}

func TestRankCatalogMismatch(t *testing.T) {
	tests := []struct {
		name    string
		probs   []float32
		classes []string
	}{
		{"more probabilities", []float32{0.1, 0.2, 0.3, 0.4}, []string{"A", "B", "C"}},
		{"fewer probabilities", []float32{0.5, 0.5}, []string{"A", "B", "C"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rank(tt.probs, tt.classes)
			if !errors.Is(err, shared.ErrCatalogMismatch) {
				t.Errorf("Rank() error = %v, expected ErrCatalogMismatch", err)
			}
		})
	}
}

func TestResultTopNAndPercent(t *testing.T) {
	result := Result{
		{Class: "a", Confidence: 0.5},
		{Class: "b", Confidence: 0.25},
		{Class: "c", Confidence: 0.125},
		{Class: "d", Confidence: 0.125},
	}

	top := result.TopN(3)
	if len(top) != 3 {
		t.Fatalf("TopN(3) len = %d", len(top))
	}
	if len(Result{{Class: "x"}}.TopN(3)) != 1 {
		t.Error("TopN should not pad short results")
	}

	percent := top.Percent()
	for i := range top {
		if percent[i].Confidence != top[i].Confidence*100 {
			t.Errorf("Percent()[%d] = %v, expected %v", i, percent[i].Confidence, top[i].Confidence*100)
		}
	}
	if result[0].Confidence != 0.5 {
		t.Error("Percent() must not modify the receiver")
	}
}
