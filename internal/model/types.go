package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks a model or label artifact that is missing,
	// malformed or inconsistent. It is fatal at startup.
	ErrConfiguration = errors.New("classifier configuration error")

	// ErrShapeMismatch means a tensor does not have the backend's input shape.
	ErrShapeMismatch = errors.New("tensor shape mismatch")
)

// Tensor is a dense float32 array in NHWC layout.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// NewTensor allocates a zeroed tensor of the given shape.
func NewTensor(shape ...int64) *Tensor {
	return &Tensor{
		Shape: append([]int64(nil), shape...),
		Data:  make([]float32, elementCount(shape)),
	}
}

// Prediction is the outcome of one classification.
type Prediction struct {
	CategoryID        string  `json:"category_id"`
	ConfidencePercent float64 `json:"confidence_percent"`
}

// FormatConfidence renders the confidence with two decimals and a % suffix.
func (p Prediction) FormatConfidence() string {
	return fmt.Sprintf("%.2f%%", p.ConfidencePercent)
}

// DisplayLabel turns a category identifier such as "Tomato___Late_blight"
// into "Tomato - Late blight".
func DisplayLabel(categoryID string) string {
	s := strings.ReplaceAll(categoryID, "___", " - ")
	return strings.ReplaceAll(s, "_", " ")
}

type PredictionRequest struct {
	Image []float32 `json:"image"`
}

type PredictionResponse struct {
	Class      string  `json:"class"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Display    string  `json:"confidence_text"`
}

// NewPredictionResponse converts a prediction into its JSON form.
func NewPredictionResponse(p Prediction) *PredictionResponse {
	return &PredictionResponse{
		Class:      p.CategoryID,
		Label:      DisplayLabel(p.CategoryID),
		Confidence: p.ConfidencePercent,
		Display:    p.FormatConfidence(),
	}
}

func elementCount(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range shape {
		n *= int(d)
	}
	return n
}

func sameShape(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
