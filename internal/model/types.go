package model

import (
	"fmt"
	"strings"
)

// Layout is the axis order of an image tensor.
type Layout int

const (
	LayoutNHWC Layout = iota
	LayoutNCHW
)

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "", "nhwc":
		return LayoutNHWC, nil
	case "nchw":
		return LayoutNCHW, nil
	default:
		return 0, fmt.Errorf("unknown tensor layout %q", s)
	}
}

// Shape returns the batch-of-one shape for a 3 channel image.
func (l Layout) Shape(height, width int) []int64 {
	if l == LayoutNCHW {
		return []int64{1, 3, int64(height), int64(width)}
	}
	return []int64{1, int64(height), int64(width), 3}
}

func (l Layout) String() string {
	if l == LayoutNCHW {
		return "nchw"
	}
	return "nhwc"
}

// Tensor is a dense float32 input for the classifier.
type Tensor struct {
	Shape []int64
	Data  []float32
}

type Prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Result is a ranked list of predictions, highest confidence first.
type Result []Prediction

// Top returns the highest ranked prediction. Result must not be empty.
func (r Result) Top() Prediction {
	return r[0]
}

// TopN returns at most n leading predictions.
func (r Result) TopN(n int) Result {
	if n < len(r) {
		return r[:n]
	}
	return r
}

// Percent returns a copy with confidences scaled to 0-100 for display.
func (r Result) Percent() Result {
	out := make(Result, len(r))
	for i, p := range r {
		out[i] = Prediction{Class: p.Class, Confidence: p.Confidence * 100}
	}
	return out
}
