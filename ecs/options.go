package ecs

import "go.uber.org/zap"

// config holds the tunables a SparseSet is constructed with. There is no
// config *file* format here: §6 states the engine's "process surface... is
// purely an in-memory library API", so the functional-options pattern below
// is the whole of it — see DESIGN.md for why this corner stays stdlib-only.
type config struct {
	log *zap.Logger
}

func defaultConfig() config {
	return config{log: nopLogger()}
}

// Option configures a SparseSet at construction time.
type Option func(*config)

// WithLogger attaches a *zap.Logger for diagnostic tracing of pack
// transitions and share-chain breaks.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}
