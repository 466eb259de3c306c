package model

import (
	"sync"
	"sync/atomic"

	"github.com/Brownie44l1/gummy-api/internal/shared"
)

// Classifier maps an input tensor to one probability per class.
// Implementations must allow concurrent Infer calls.
type Classifier interface {
	Infer(t Tensor) ([]float32, error)
	Close() error
}

// Loader opens the model artifact.
type Loader func() (Classifier, error)

type State int32

const (
	StateUnloaded State = iota
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed_to_load"
	default:
		return "unloaded"
	}
}

// Holder owns the single classifier instance of the process. The first
// EnsureLoaded call runs the loader; concurrent first callers wait for it and
// observe the same outcome. A failed load is final.
type Holder struct {
	load Loader

	mu    sync.Mutex
	state atomic.Int32
	clf   Classifier
	err   error
}

func NewHolder(load Loader) *Holder {
	return &Holder{load: load}
}

func (h *Holder) State() State {
	return State(h.state.Load())
}

func (h *Holder) Loaded() bool {
	return h.State() == StateLoaded
}

// EnsureLoaded loads the model on first use and returns the load error, if
// any, on every later call.
func (h *Holder) EnsureLoaded() error {
	if h.State() == StateLoaded {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.State() {
	case StateLoaded:
		return nil
	case StateFailed:
		return h.err
	}

	clf, err := h.load()
	if err != nil {
		h.err = shared.Wrap(shared.ErrModelLoadFailure, err)
		h.state.Store(int32(StateFailed))
		return h.err
	}
	h.clf = clf
	h.state.Store(int32(StateLoaded))
	return nil
}

// Infer runs the loaded classifier. EnsureLoaded must have succeeded.
func (h *Holder) Infer(t Tensor) ([]float32, error) {
	if h.State() != StateLoaded {
		return nil, shared.ErrModelLoadFailure
	}
	probs, err := h.clf.Infer(t)
	if err != nil {
		return nil, shared.Wrap(shared.ErrInferenceFailure, err)
	}
	return probs, nil
}

func (h *Holder) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clf == nil {
		return nil
	}
	return h.clf.Close()
}
