// Package resolver runs a preferred computation with a guarded fallback and
// tags every result with how it was produced. Resolvers never return errors:
// a failed primary degrades to the fallback, and a failed fallback degrades
// to the zero value.
package resolver

import (
	"context"

	"github.com/phenomwatch/analytics/internal/logger"
)

// Source records which path produced a resolved value.
type Source string

const (
	// SourceOptimized marks a value from the precomputed primary path.
	SourceOptimized Source = "optimized"
	// SourceDegraded marks a value from the capped fallback scan.
	SourceDegraded Source = "degraded"
	// SourceUnavailable marks a default value after both paths failed.
	SourceUnavailable Source = "unavailable"
)

// Outcome is a resolved value tagged with its provenance. Degraded values
// are approximations over a sampled window, not population statistics.
type Outcome[T any] struct {
	Value  T
	Source Source
}

// Observer receives resolution outcomes, typically for metrics.
type Observer interface {
	ObserveResolution(name string, source string)
}

// Resolve runs primary and, if it fails, fallback. The caller gets a value
// either way; the returned source says which path produced it. Primary
// failures are logged at debug (a missing precomputed function is routine),
// fallback failures at warn.
func Resolve[T any](ctx context.Context, name string, log logger.Logger, obs Observer,
	primary, fallback func(context.Context) (T, error),
) Outcome[T] {
	value, primaryErr := primary(ctx)
	if primaryErr == nil {
		observe(obs, name, SourceOptimized)
		return Outcome[T]{Value: value, Source: SourceOptimized}
	}

	log.Debug("primary resolution failed, using fallback",
		logger.String("resolver", name),
		logger.Error(primaryErr),
	)

	value, fallbackErr := fallback(ctx)
	if fallbackErr == nil {
		observe(obs, name, SourceDegraded)
		return Outcome[T]{Value: value, Source: SourceDegraded}
	}

	log.Warn("fallback resolution failed, serving default",
		logger.String("resolver", name),
		logger.Error(fallbackErr),
	)

	var zero T
	observe(obs, name, SourceUnavailable)
	return Outcome[T]{Value: zero, Source: SourceUnavailable}
}

func observe(obs Observer, name string, source Source) {
	if obs != nil {
		obs.ObserveResolution(name, string(source))
	}
}
