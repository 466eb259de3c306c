// Package predict runs the classification pipeline shared by the JSON API,
// the web pages and the command line tool.
package predict

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/Brownie44l1/gummy-api/internal/imaging"
	"github.com/Brownie44l1/gummy-api/internal/metrics"
	"github.com/Brownie44l1/gummy-api/internal/model"
	"github.com/Brownie44l1/gummy-api/internal/shared"
	"github.com/Brownie44l1/gummy-api/internal/sink"
	"go.uber.org/zap"
)

type Service struct {
	holder      *model.Holder
	catalogPath string
	layout      model.Layout
	log         *zap.SugaredLogger

	mu      sync.Mutex
	classes []string
}

func NewService(holder *model.Holder, catalogPath string, layout model.Layout, log *zap.SugaredLogger) *Service {
	return &Service{
		holder:      holder,
		catalogPath: catalogPath,
		layout:      layout,
		log:         log,
	}
}

func (s *Service) Holder() *model.Holder {
	return s.holder
}

// Classes returns the class catalog. The first successful read is cached;
// failed reads are retried on the next call.
func (s *Service) Classes() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.classes != nil {
		return s.classes, nil
	}
	classes, err := model.LoadCatalog(s.catalogPath)
	if err != nil {
		return nil, err
	}
	s.classes = classes
	return classes, nil
}

// Predict classifies a canonical image. The model is loaded on first use.
func (s *Service) Predict(ctx context.Context, img *image.RGBA, endpoint string) (model.Result, error) {
	log := shared.Logger(ctx, s.log)

	if err := s.holder.EnsureLoaded(); err != nil {
		log.Errorw("model unavailable", "error", err)
		return nil, err
	}
	classes, err := s.Classes()
	if err != nil {
		log.Errorw("class catalog unavailable", "path", s.catalogPath, "error", err)
		return nil, err
	}

	start := time.Now()
	tensor := imaging.Preprocess(img, s.layout)
	probs, err := s.holder.Infer(tensor)
	metrics.InferenceDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Errorw("inference failed", "error", err)
		return nil, err
	}

	result, err := model.Rank(probs, classes)
	if err != nil {
		log.Errorw("ranking failed", "error", err)
		return nil, err
	}

	top := result.Top()
	log.Infow("prediction",
		"endpoint", endpoint,
		"class", top.Class,
		"confidence", top.Confidence,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
	)
	return result, nil
}

// Persist stores img through sk. Failures are logged and counted, never
// returned; the empty name signals that nothing was stored.
func (s *Service) Persist(ctx context.Context, sk sink.Sink, img image.Image) string {
	name, err := sk.Save(img)
	if err != nil {
		metrics.SinkFailures.Inc()
		shared.Logger(ctx, s.log).Warnw("failed to save image", "error", err)
		return ""
	}
	return name
}
