package needlecli

import (
	"errors"
	"reflect"
	"time"

	"github.com/samber/mo"

	"github.com/danpasecinic/needlecli/internal/container"
	needlereflect "github.com/danpasecinic/needlecli/internal/reflect"
)

// Resolver looks up services in one built container. It is safe for
// concurrent use.
//
// Using a Resolver after its container was released, either through
// Release or through the owning Registrar, is a programming error. Such
// calls fail with CONTAINER_RELEASED; they never fall back to construction.
type Resolver struct {
	container *container.Container
	config    *registrarConfig
}

func newResolver(ctr *container.Container, cfg *registrarConfig) *Resolver {
	return &Resolver{
		container: ctr,
		config:    cfg,
	}
}

// Resolve returns the value bound to t. Bound services are singletons within
// the container. A type without a binding is default-constructed afresh on
// every call unless the registrar is strict.
func (r *Resolver) Resolve(t reflect.Type) (any, error) {
	start := time.Now()
	instance, err := r.resolve(t)
	r.callResolveHooks(needlereflect.TypeName(t), time.Since(start), err)
	return instance, err
}

func (r *Resolver) resolve(t reflect.Type) (any, error) {
	name := needlereflect.TypeName(t)

	if t == nil {
		return nil, errResolutionFailed(name, errors.New("service type is nil"))
	}

	if r.container.State() != container.StateActive {
		return nil, errContainerReleased(name)
	}

	if r.container.Has(t) {
		instance, err := r.container.Resolve(t)
		switch {
		case errors.Is(err, container.ErrDisposed):
			return nil, errContainerReleased(name)
		case err != nil:
			return nil, errResolutionFailed(name, err)
		}
		return instance, nil
	}

	if r.config.strict {
		return nil, errResolutionFailed(name, errServiceNotFound(name))
	}

	instance, err := needlereflect.Construct(t)
	if err != nil {
		return nil, errResolutionFailed(name, err)
	}
	return instance, nil
}

func (r *Resolver) callResolveHooks(service string, duration time.Duration, err error) {
	for _, hook := range r.config.onResolve {
		hook(service, duration, err)
	}
}

// Has reports whether t has an explicit binding. Unregistered types that
// Resolve can construct are not reported.
func (r *Resolver) Has(t reflect.Type) bool {
	return r.container.Has(t)
}

// Release disposes the services owned by this resolver's container. It is
// safe to call more than once and alongside Registrar.Release; each owned
// service is disposed at most once.
func (r *Resolver) Release() error {
	if err := r.container.Dispose(); err != nil {
		return errDisposalFailed(err)
	}
	return nil
}

// GetService resolves T, returning None when resolution fails for any
// reason.
func GetService[T any](r *Resolver) mo.Option[T] {
	v, err := GetRequiredService[T](r)
	if err != nil {
		return mo.None[T]()
	}
	return mo.Some(v)
}

// GetRequiredService resolves T. The error is a RESOLUTION_FAILED (or
// CONTAINER_RELEASED) *Error naming T.
func GetRequiredService[T any](r *Resolver) (T, error) {
	var zero T
	t := needlereflect.TypeOf[T]()

	instance, err := r.Resolve(t)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, errResolutionFailed(
			needlereflect.TypeName(t),
			errors.New("resolved value has an unexpected type"),
		)
	}

	return typed, nil
}

func MustGetService[T any](r *Resolver) T {
	v, err := GetRequiredService[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

func HasService[T any](r *Resolver) bool {
	return r.Has(needlereflect.TypeOf[T]())
}
