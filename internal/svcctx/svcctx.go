// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/folio/internal/books"
	"github.com/jackzampolin/folio/internal/config"
	"github.com/jackzampolin/folio/internal/engine"
	"github.com/jackzampolin/folio/internal/home"
	"github.com/jackzampolin/folio/internal/metrics"
	"github.com/jackzampolin/folio/internal/segmenter"
	"github.com/jackzampolin/folio/internal/store"
)

// HealthChecker reports whether the segmentation engine is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Segmenter *segmenter.Segmenter
	Library   *books.Library
	Store     store.Store
	Engine    HealthChecker
	Docker    *engine.DockerManager
	Config    *config.Manager
	Metrics   *metrics.Recorder
	Logger    *slog.Logger
	Home      *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// SegmenterFrom extracts the segmenter from context.
func SegmenterFrom(ctx context.Context) *segmenter.Segmenter {
	if s := ServicesFrom(ctx); s != nil {
		return s.Segmenter
	}
	return nil
}

// LibraryFrom extracts the book library from context.
func LibraryFrom(ctx context.Context) *books.Library {
	if s := ServicesFrom(ctx); s != nil {
		return s.Library
	}
	return nil
}

// StoreFrom extracts the annotation store from context.
func StoreFrom(ctx context.Context) store.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Store
	}
	return nil
}

// EngineFrom extracts the engine health checker from context.
func EngineFrom(ctx context.Context) HealthChecker {
	if s := ServicesFrom(ctx); s != nil {
		return s.Engine
	}
	return nil
}

// DockerFrom extracts the engine container manager from context.
// It is nil when the server does not manage the container.
func DockerFrom(ctx context.Context) *engine.DockerManager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Docker
	}
	return nil
}

// ConfigFrom extracts the config manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// MetricsFrom extracts the metrics recorder from context.
func MetricsFrom(ctx context.Context) *metrics.Recorder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Metrics
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
