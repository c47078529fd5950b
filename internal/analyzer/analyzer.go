// Package analyzer runs one upload through the pipeline:
// decode and normalize, predict, then build the localized report. Each step
// starts only after the previous one finished.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Brownie44l1/leafdoc/internal/i18n"
	"github.com/Brownie44l1/leafdoc/internal/logger"
	"github.com/Brownie44l1/leafdoc/internal/metrics"
	"github.com/Brownie44l1/leafdoc/internal/model"
	"github.com/Brownie44l1/leafdoc/internal/preprocess"
	"github.com/Brownie44l1/leafdoc/internal/report"
)

// Predictor is the part of model.Runtime the pipeline needs.
type Predictor interface {
	Predict(ctx context.Context, t *model.Tensor) (model.Prediction, error)
}

type Service struct {
	normalizer *preprocess.Normalizer
	predictor  Predictor
	reports    *report.Builder
	slots      *semaphore.Weighted
	metrics    *metrics.Metrics
	log        logger.Logger
}

// New creates a Service. maxConcurrent bounds simultaneous forward passes;
// requests beyond it wait for a free slot.
func New(n *preprocess.Normalizer, p Predictor, reports *report.Builder, maxConcurrent int, m *metrics.Metrics, log logger.Logger) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Service{
		normalizer: n,
		predictor:  p,
		reports:    reports,
		slots:      semaphore.NewWeighted(int64(maxConcurrent)),
		metrics:    m,
		log:        log,
	}
}

// Analyze classifies an encoded image and builds its report.
func (s *Service) Analyze(ctx context.Context, r io.Reader, lang i18n.Language) (report.Report, error) {
	p, err := s.Classify(ctx, r)
	if err != nil {
		return report.Report{}, err
	}
	return s.reports.Build(ctx, p, lang), nil
}

// Classify decodes, normalizes and predicts. Undecodable input fails with
// preprocess.ErrUnreadableImage before the model is touched.
func (s *Service) Classify(ctx context.Context, r io.Reader) (model.Prediction, error) {
	tensor, err := s.normalizer.NormalizeReader(r)
	if err != nil {
		s.countError(err)
		return model.Prediction{}, err
	}
	return s.PredictTensor(ctx, tensor)
}

// PredictTensor runs an already-normalized tensor through the model.
func (s *Service) PredictTensor(ctx context.Context, t *model.Tensor) (model.Prediction, error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return model.Prediction{}, fmt.Errorf("waiting for inference slot: %w", err)
	}
	start := time.Now()
	p, err := s.predictor.Predict(ctx, t)
	s.slots.Release(1)
	s.metrics.InferenceSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		s.countError(err)
		return model.Prediction{}, err
	}
	s.metrics.Predictions.WithLabelValues(p.CategoryID).Inc()
	s.log.Infof(ctx, "predicted %s (%s)", p.CategoryID, p.FormatConfidence())
	return p, nil
}

// Report builds the report for an existing prediction.
func (s *Service) Report(ctx context.Context, p model.Prediction, lang i18n.Language) report.Report {
	return s.reports.Build(ctx, p, lang)
}

func (s *Service) countError(err error) {
	kind := "inference"
	switch {
	case errors.Is(err, preprocess.ErrUnreadableImage):
		kind = "unreadable_image"
	case errors.Is(err, model.ErrShapeMismatch):
		kind = "shape_mismatch"
	}
	s.metrics.PredictionErrors.WithLabelValues(kind).Inc()
}
