package needlecli

import (
	"log/slog"
	"time"
)

type Option func(*registrarConfig)

type registrarConfig struct {
	logger    *slog.Logger
	strict    bool
	onResolve []ResolveHook
}

// ResolveHook observes every Resolve call made through resolvers built by
// the registrar, including fallback construction of unregistered types.
type ResolveHook func(service string, duration time.Duration, err error)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *registrarConfig) {
		cfg.logger = logger
	}
}

// WithStrict disables default construction of unregistered types: resolving
// a type without a binding fails with SERVICE_NOT_FOUND.
func WithStrict() Option {
	return func(cfg *registrarConfig) {
		cfg.strict = true
	}
}

func WithResolveObserver(hook ResolveHook) Option {
	return func(cfg *registrarConfig) {
		cfg.onResolve = append(cfg.onResolve, hook)
	}
}
