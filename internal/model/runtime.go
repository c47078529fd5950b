package model

import (
	"context"
	"fmt"
	"math"
)

// Backend is a loaded classifier network. Run maps one input tensor to a
// probability vector of OutputWidth scores and must be safe for concurrent
// use.
type Backend interface {
	InputShape() []int64
	OutputWidth() int
	Run(ctx context.Context, input []float32) ([]float32, error)
	Close() error
}

// Runtime owns one backend and its label index for the life of the process.
// Neither is mutated after construction, so Predict needs no locking.
type Runtime struct {
	backend    Backend
	labels     LabelIndex
	inputShape []int64
}

// New pairs a backend with its labels. The label count must equal the
// backend's output width.
func New(backend Backend, labels LabelIndex) (*Runtime, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: no backend", ErrConfiguration)
	}
	if labels.Len() == 0 {
		return nil, fmt.Errorf("%w: label index is empty", ErrConfiguration)
	}
	if w := backend.OutputWidth(); w != labels.Len() {
		return nil, fmt.Errorf("%w: model has %d outputs but label index has %d entries",
			ErrConfiguration, w, labels.Len())
	}
	shape := backend.InputShape()
	if elementCount(shape) <= 0 {
		return nil, fmt.Errorf("%w: invalid model input shape %v", ErrConfiguration, shape)
	}
	return &Runtime{
		backend:    backend,
		labels:     labels,
		inputShape: append([]int64(nil), shape...),
	}, nil
}

// Load opens the ONNX model and label index described by cfg.
func Load(cfg ONNXConfig, labelsPath string) (*Runtime, error) {
	labels, err := LoadLabelIndex(labelsPath)
	if err != nil {
		return nil, err
	}
	backend, err := OpenONNX(cfg)
	if err != nil {
		return nil, err
	}
	rt, err := New(backend, labels)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return rt, nil
}

// InputShape returns the exact tensor shape Predict accepts.
func (r *Runtime) InputShape() []int64 {
	return append([]int64(nil), r.inputShape...)
}

// Labels returns the runtime's label index.
func (r *Runtime) Labels() LabelIndex { return r.labels }

// Predict runs the tensor through the backend and returns the top category.
// Ties resolve to the lowest index.
func (r *Runtime) Predict(ctx context.Context, t *Tensor) (Prediction, error) {
	if t == nil || !sameShape(t.Shape, r.inputShape) {
		var got []int64
		if t != nil {
			got = t.Shape
		}
		return Prediction{}, fmt.Errorf("%w: want %v, got %v", ErrShapeMismatch, r.inputShape, got)
	}
	if len(t.Data) != elementCount(r.inputShape) {
		return Prediction{}, fmt.Errorf("%w: want %d values, got %d",
			ErrShapeMismatch, elementCount(r.inputShape), len(t.Data))
	}

	scores, err := r.backend.Run(ctx, t.Data)
	if err != nil {
		return Prediction{}, fmt.Errorf("inference failed: %w", err)
	}
	if len(scores) != r.labels.Len() {
		return Prediction{}, fmt.Errorf("inference returned %d scores for %d labels", len(scores), r.labels.Len())
	}

	maxIdx := Argmax(scores)
	label, _ := r.labels.Label(maxIdx)
	return Prediction{
		CategoryID:        label,
		ConfidencePercent: confidencePercent(scores[maxIdx]),
	}, nil
}

// Close releases the backend.
func (r *Runtime) Close() error {
	return r.backend.Close()
}

// Argmax returns the position of the first maximum in scores.
func Argmax(scores []float32) int {
	maxIdx := 0
	for i, v := range scores {
		if v > scores[maxIdx] {
			maxIdx = i
		}
	}
	return maxIdx
}

// confidencePercent scales in float32 to match the float32 probability
// vector, then clamps rounding overshoot into [0, 100].
func confidencePercent(p float32) float64 {
	pct := float64(float32(p * 100))
	switch {
	case pct < 0 || math.IsNaN(pct):
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
