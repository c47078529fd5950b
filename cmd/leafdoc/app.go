package main

import (
	"context"
	"fmt"

	"github.com/Brownie44l1/leafdoc/internal/analyzer"
	"github.com/Brownie44l1/leafdoc/internal/catalog"
	"github.com/Brownie44l1/leafdoc/internal/config"
	"github.com/Brownie44l1/leafdoc/internal/logger"
	"github.com/Brownie44l1/leafdoc/internal/metrics"
	"github.com/Brownie44l1/leafdoc/internal/model"
	"github.com/Brownie44l1/leafdoc/internal/preprocess"
	"github.com/Brownie44l1/leafdoc/internal/report"
	"github.com/Brownie44l1/leafdoc/internal/translate"
)

// app holds everything built once at startup and shared by all requests.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	metrics  *metrics.Metrics
	runtime  *model.Runtime
	catalog  *catalog.Catalog
	analyzer *analyzer.Service
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads the model, label index and catalog. A label count that does
// not match the model output fails here, before anything is served.
func newApp(cfg *config.Config, log logger.Logger) (*app, error) {
	normalizer, err := preprocess.New(preprocess.Config{
		Size:       cfg.Model.ImageSize,
		Filter:     cfg.Model.ResizeFilter,
		AutoOrient: cfg.Model.AutoOrient,
		MaxPixels:  cfg.Model.MaxPixels,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConfiguration, err)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConfiguration, err)
	}

	rt, err := model.Load(model.ONNXConfig{
		ModelPath:         cfg.Model.Path,
		SharedLibraryPath: cfg.Model.SharedLibraryPath,
		InputName:         cfg.Model.InputName,
		OutputName:        cfg.Model.OutputName,
		IntraOpThreads:    cfg.Model.IntraOpThreads,
		ImageSize:         cfg.Model.ImageSize,
	}, cfg.Model.LabelsPath)
	if err != nil {
		return nil, err
	}

	var tr translate.Translator
	if cfg.Translation.Enabled {
		tr = translate.NewGoogle(translate.GoogleConfig{
			BaseURL: cfg.Translation.BaseURL,
			Timeout: cfg.Translation.Timeout,
		})
	}

	m := metrics.New()
	reports := report.NewBuilder(cat, tr, cfg.Translation.Concurrency, m, log)

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		runtime:  rt,
		catalog:  cat,
		analyzer: analyzer.New(normalizer, rt, reports, cfg.Model.MaxConcurrent, m, log),
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.runtime.Close(); err != nil {
		a.log.Warnf(ctx, "closing model runtime: %v", err)
	}
	_ = a.log.Sync()
}
