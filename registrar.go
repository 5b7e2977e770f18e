package needlecli

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/danpasecinic/needlecli/internal/container"
	needlereflect "github.com/danpasecinic/needlecli/internal/reflect"
)

// Registrar collects service bindings and builds independent resolvers from
// them. It owns every container it builds and disposes all of them on
// Release.
//
// Registering after Build never affects resolvers that were already built.
// Build after Release still works, but the registrar no longer tracks the
// result and releasing that resolver is up to the caller.
type Registrar struct {
	config   *registrarConfig
	registry *container.Registry
	nextID   atomic.Uint64

	mu       sync.Mutex
	built    []*container.Container
	released bool
}

func NewRegistrar(opts ...Option) *Registrar {
	cfg := &registrarConfig{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return &Registrar{
		config:   cfg,
		registry: container.NewRegistry(),
	}
}

// Register binds service to implementation. The implementation is built by
// default construction on first resolution and must be assignable to
// service; neither is checked here.
func (r *Registrar) Register(service, implementation reflect.Type) error {
	if service == nil {
		return errInvalidRegistration("", "service type is nil")
	}
	if implementation == nil {
		return errInvalidRegistration(needlereflect.TypeName(service), "implementation type is nil")
	}

	r.add(
		&container.Definition{
			Key:            service,
			Kind:           container.KindType,
			Implementation: implementation,
		},
	)
	return nil
}

// RegisterInstance binds service to an existing value, which must be
// assignable to service. Every container built afterwards hands out this
// exact value.
func (r *Registrar) RegisterInstance(service reflect.Type, instance any) error {
	if service == nil {
		return errInvalidRegistration("", "service type is nil")
	}
	if needlereflect.IsNil(instance) {
		return errInvalidRegistration(needlereflect.TypeName(service), "instance is nil")
	}
	if !needlereflect.AssignableTo(instance, service) {
		return errInvalidRegistration(
			needlereflect.TypeName(service),
			fmt.Sprintf("instance of type %s is not assignable", needlereflect.TypeName(reflect.TypeOf(instance))),
		)
	}

	r.add(
		&container.Definition{
			Key:      service,
			Kind:     container.KindInstance,
			Instance: instance,
		},
	)
	return nil
}

// RegisterLazy binds service to a factory. The factory runs on the first
// resolution of service from each built container, at most once per
// container.
func (r *Registrar) RegisterLazy(service reflect.Type, factory func() (any, error)) error {
	if service == nil {
		return errInvalidRegistration("", "service type is nil")
	}
	if factory == nil {
		return errInvalidRegistration(needlereflect.TypeName(service), "factory is nil")
	}

	r.add(
		&container.Definition{
			Key:     service,
			Kind:    container.KindFactory,
			Factory: factory,
		},
	)
	return nil
}

func (r *Registrar) add(def *container.Definition) {
	r.registry.Add(def)
	r.config.logger.Debug(
		"registered service",
		"service", needlereflect.TypeName(def.Key),
		"kind", def.Kind.String(),
	)
}

// Len returns the number of service types with a binding.
func (r *Registrar) Len() int {
	return r.registry.Size()
}

// Build freezes the current bindings into a new container and returns a
// resolver over it. Every call produces a separate singleton cache.
func (r *Registrar) Build() *Resolver {
	ctr := container.New(
		r.registry.Snapshot(),
		&container.Config{
			ID:     r.nextID.Add(1),
			Logger: r.config.logger,
		},
	)

	r.mu.Lock()
	released := r.released
	if !released {
		r.built = append(r.built, ctr)
	}
	r.mu.Unlock()

	if released {
		r.config.logger.Warn(
			"built container after registrar release; it must be released by the caller",
			"container", ctr.ID(),
		)
	} else {
		r.config.logger.Debug("built container", "container", ctr.ID(), "services", ctr.Size())
	}

	return newResolver(ctr, r.config)
}

// Release disposes every container built so far, in build order. Every
// container is attempted even when some fail; failures are reported
// together as a DISPOSAL_FAILED error. Calls after the first do nothing.
func (r *Registrar) Release() error {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return nil
	}
	r.released = true
	built := r.built
	r.built = nil
	r.mu.Unlock()

	var errs error
	for _, ctr := range built {
		if err := ctr.Dispose(); err != nil {
			errs = multierr.Append(errs, err)
		}
		r.config.logger.Debug("released container", "container", ctr.ID())
	}

	if errs != nil {
		return errDisposalFailed(errs)
	}
	return nil
}

// Released reports whether Release has been called.
func (r *Registrar) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}
