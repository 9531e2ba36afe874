package orphan

import (
	"context"

	"github.com/jonathan/orphaned-data/internal/logger"
	"github.com/jonathan/orphaned-data/internal/posttype"
)

// Service ties detection and registration together.
type Service struct {
	detector  *Detector
	registrar *Registrar
	log       logger.Logger
}

// NewService runs the one-time startup pass (detect, then register placeholders) and
// returns a service ready for per-request refreshes.
func NewService(ctx context.Context, source TypeSource, registry *posttype.Registry, log logger.Logger) (*Service, error) {
	s := &Service{
		detector:  NewDetector(source, registry),
		registrar: NewRegistrar(registry, log),
		log:       log,
	}

	orphans, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("orphaned post types registered",
		logger.Int("count", len(orphans)),
		logger.Strings("post_types", orphans),
	)
	return s, nil
}

// Refresh re-detects orphaned types from current data and registers any new ones.
func (s *Service) Refresh(ctx context.Context) ([]string, error) {
	orphans, err := s.detector.Detect(ctx)
	if err != nil {
		return nil, err
	}
	s.registrar.RegisterAll(orphans)
	return orphans, nil
}
