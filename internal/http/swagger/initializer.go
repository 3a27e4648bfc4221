package swagger

import (
	"context"
	"log/slog"
)

// Initializer creates the viewer once the host signals readiness and
// publishes it in a Registry under HandleName.
//
// Each readiness event creates a new viewer. Calling Init or OnReady twice
// replaces the published viewer; callers run it once per process.
type Initializer struct {
	cfg      ViewerConfiguration
	factory  Factory
	registry *Registry
	logger   *slog.Logger
}

func NewInitializer(
	cfg ViewerConfiguration,
	factory Factory,
	registry *Registry,
	logger *slog.Logger,
) *Initializer {
	return &Initializer{
		cfg:      cfg,
		factory:  factory,
		registry: registry,
		logger:   logger.With(slog.String("component", "docs")),
	}
}

// Init calls the factory with the configuration and stores the result.
func (i *Initializer) Init(ctx context.Context) *Viewer {
	v := i.factory(i.cfg)

	if prev := i.registry.Store(HandleName, v); prev != nil {
		i.logger.WarnContext(ctx, "docs viewer replaced", slog.String("name", HandleName))
	}

	i.logger.InfoContext(ctx, "docs viewer initialized",
		slog.String("spec_url", i.cfg.SpecURL),
		slog.String("layout", i.cfg.Layout),
	)

	return v
}

// OnReady blocks until ready is closed and then runs Init. Nothing is
// created if ctx ends first or has already ended.
func (i *Initializer) OnReady(ctx context.Context, ready <-chan struct{}) (*Viewer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-ready:
		return i.Init(ctx), nil
	}
}
