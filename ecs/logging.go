package ecs

import "go.uber.org/zap"

// nopLogger is the default when no *zap.Logger is supplied via Option,
// matching the corpus's pattern of an always-valid injected logger rather
// than nil checks scattered through the engine (ground: edirooss-zmux-server's
// `log *zap.Logger` fields, always populated by the constructor).
func nopLogger() *zap.Logger {
	return zap.NewNop()
}

// namedOrNop returns log.Named(name) if log is non-nil, else a no-op logger
// named the same way, so call sites never need a nil check.
func namedOrNop(log *zap.Logger, name string) *zap.Logger {
	if log == nil {
		log = nopLogger()
	}
	return log.Named(name)
}
