// Package report assembles what the user sees for one prediction: the
// detected condition, its confidence and, when the catalog has a record,
// the description in the requested language.
package report

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Brownie44l1/leafdoc/internal/catalog"
	"github.com/Brownie44l1/leafdoc/internal/i18n"
	"github.com/Brownie44l1/leafdoc/internal/logger"
	"github.com/Brownie44l1/leafdoc/internal/metrics"
	"github.com/Brownie44l1/leafdoc/internal/model"
	"github.com/Brownie44l1/leafdoc/internal/translate"
)

// Report is the rendered result of one analysis.
type Report struct {
	CategoryID        string   `json:"category_id"`
	Condition         string   `json:"condition"`
	ConfidencePercent float64  `json:"confidence_percent"`
	Confidence        string   `json:"confidence"`
	Language          string   `json:"language"`
	Disease           *Disease `json:"disease"`
}

// Disease holds the catalog text. It is nil when the catalog has no record.
type Disease struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Symptoms    []string `json:"symptoms"`
	Treatment   []string `json:"treatment"`
}

type Builder struct {
	catalog     *catalog.Catalog
	translator  translate.Translator
	concurrency int
	metrics     *metrics.Metrics
	log         logger.Logger
}

// NewBuilder creates a Builder. A nil translator disables translation and
// every language shows the catalog's English text.
func NewBuilder(c *catalog.Catalog, tr translate.Translator, concurrency int, m *metrics.Metrics, log logger.Logger) *Builder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Builder{
		catalog:     c,
		translator:  tr,
		concurrency: concurrency,
		metrics:     m,
		log:         log,
	}
}

// Build looks the prediction up in the catalog and localizes the record.
func (b *Builder) Build(ctx context.Context, p model.Prediction, lang i18n.Language) Report {
	r := Report{
		CategoryID:        p.CategoryID,
		Condition:         model.DisplayLabel(p.CategoryID),
		ConfidencePercent: p.ConfidencePercent,
		Confidence:        p.FormatConfidence(),
		Language:          lang.Code(),
	}

	rec, ok := b.catalog.Lookup(p.CategoryID)
	if !ok {
		b.metrics.CatalogMisses.Inc()
		b.log.Infof(ctx, "no catalog record for %s", p.CategoryID)
		return r
	}

	d := &Disease{
		Name:        rec.Name,
		Description: rec.Description,
		Symptoms:    rec.Symptoms,
		Treatment:   rec.Treatment,
	}
	if lang != i18n.English && b.translator != nil {
		b.localize(ctx, d, lang)
	}
	r.Disease = d
	return r
}

// localize translates every field independently. Each failure keeps its own
// original text and never affects the other fields.
func (b *Builder) localize(ctx context.Context, d *Disease, lang i18n.Language) {
	fields := make([]*string, 0, 2+len(d.Symptoms)+len(d.Treatment))
	fields = append(fields, &d.Name, &d.Description)
	for i := range d.Symptoms {
		fields = append(fields, &d.Symptoms[i])
	}
	for i := range d.Treatment {
		fields = append(fields, &d.Treatment[i])
	}

	results := make([]translate.Result, len(fields))
	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, f := range fields {
		i, text := i, *f
		g.Go(func() error {
			results[i] = translate.Attempt(ctx, b.translator, text, i18n.English.Tag(), lang.Tag())
			return nil
		})
	}
	_ = g.Wait()

	for i, f := range fields {
		if !results[i].OK() {
			b.metrics.TranslationFallbacks.Inc()
			b.log.Warnf(ctx, "translation to %s failed, keeping original: %v", lang, results[i].Err)
		}
		*f = results[i].Or(*f)
	}
}
