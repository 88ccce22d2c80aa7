package generate

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/telforge/phonegen/internal/domain"
	"github.com/telforge/phonegen/internal/domain/filter"
	"github.com/telforge/phonegen/internal/domain/manifest"
	"github.com/telforge/phonegen/internal/domain/plan"
	"github.com/telforge/phonegen/internal/domain/record"
	"github.com/telforge/phonegen/internal/metrics"
)

// Request carries the raw filter input for one generation run.
type Request struct {
	Prefix         string
	Province       string
	City           string
	Operators      []int
	TrailingFixed4 string
	TrailingFixed3 string
}

// Output describes the artifacts produced for one run.
type Output struct {
	Manifest manifest.Manifest
	Duration time.Duration
}

// Service resolves filter requests into enumeration plans and turns
// them into downloadable artifacts.
type Service struct {
	index      Index
	dispatcher Dispatcher
	artifacts  ArtifactStore
	ceiling    int64
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a generation service. ceiling caps the number of lines a
// single request may produce; zero disables the cap.
func New(index Index, dispatcher Dispatcher, artifacts ArtifactStore, ceiling int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		index:      index,
		dispatcher: dispatcher,
		artifacts:  artifacts,
		ceiling:    ceiling,
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve validates the request and assembles its enumeration plan.
// The size cap is enforced here, before any number is produced.
func (s *Service) Resolve(req Request) (plan.Plan, error) {
	f, err := filter.New(req.Prefix, req.Province, req.City, req.Operators, req.TrailingFixed4, req.TrailingFixed3)
	if err != nil {
		return plan.Plan{}, err
	}

	var candidates []record.Record
	for _, rec := range s.index.Lookup(f.Province(), f.City(), f.Operators()) {
		if rec.Prefix() == f.Prefix() {
			candidates = append(candidates, rec)
		}
	}
	return plan.New(f.Prefix(), candidates, f.Rule(), s.ceiling)
}

// Generate resolves req, enumerates the plan across the worker pool and
// persists the output. A plan that matches nothing succeeds with an
// empty manifest.
func (s *Service) Generate(ctx context.Context, req Request) (Output, error) {
	start := s.now()

	p, err := s.Resolve(req)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(outcome(err)).Inc()
		return Output{}, err
	}
	if p.IsEmpty() {
		metrics.GenerationsTotal.WithLabelValues("empty").Inc()
		s.logger.Info("no blocks matched",
			zap.String("prefix", req.Prefix),
			zap.String("province", req.Province),
			zap.String("city", req.City),
		)
		return Output{Duration: s.now().Sub(start)}, nil
	}

	parts, err := s.dispatcher.Run(ctx, p, s.dispatcher.Workers())
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(outcome(err)).Inc()
		s.logger.Error("enumeration failed",
			zap.String("prefix", p.Prefix()),
			zap.Int64("planned", p.Total()),
			zap.Error(err),
		)
		return Output{}, err
	}

	lines := make([]string, 0, p.Total())
	for _, part := range parts {
		lines = append(lines, part...)
	}

	base := s.artifacts.BaseName(p.Prefix(), req.Province, req.City, p.Rule().Label(), start)
	man, err := s.artifacts.Write(base, lines)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("write_error").Inc()
		s.logger.Error("artifact write failed", zap.String("base", base), zap.Error(err))
		return Output{}, err
	}

	elapsed := s.now().Sub(start)
	metrics.GenerationsTotal.WithLabelValues("ok").Inc()
	metrics.GenerationDuration.Observe(elapsed.Seconds())
	metrics.NumbersGeneratedTotal.Add(float64(man.TotalLines))
	metrics.ArtifactFilesTotal.Add(float64(man.FileCount()))
	metrics.ArtifactBytesTotal.Add(float64(man.TotalBytes()))

	s.logger.Info("generation completed",
		zap.String("prefix", p.Prefix()),
		zap.String("province", req.Province),
		zap.String("city", req.City),
		zap.String("trailing", p.Rule().Label()),
		zap.Int64("numbers", man.TotalLines),
		zap.Int("files", man.FileCount()),
		zap.Duration("duration", elapsed),
	)
	return Output{Manifest: man, Duration: elapsed}, nil
}

// outcome maps an error to its metrics status label.
func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation_error"
	case errors.Is(err, domain.ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, domain.ErrPartitionFailed):
		return "partition_error"
	default:
		return "error"
	}
}
