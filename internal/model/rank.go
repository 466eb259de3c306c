package model

import (
	"fmt"
	"sort"

	"github.com/Brownie44l1/gummy-api/internal/shared"
)

// Rank pairs each probability with its class and orders them by confidence,
// descending. Equal confidences keep catalog order.
func Rank(probs []float32, classes []string) (Result, error) {
	if len(probs) != len(classes) {
		return nil, shared.Wrap(shared.ErrCatalogMismatch,
			fmt.Errorf("model returned %d probabilities for %d classes", len(probs), len(classes)))
	}
	if len(probs) == 0 {
		return nil, shared.Wrap(shared.ErrCatalogMismatch, fmt.Errorf("no classes"))
	}

	result := make(Result, len(probs))
	for i, p := range probs {
		result[i] = Prediction{Class: classes[i], Confidence: float64(p)}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Confidence > result[j].Confidence
	})
	return result, nil
}
