// Package needleclitest provides helpers for tests that build resolvers.
package needleclitest

import (
	"reflect"
	"sync/atomic"

	"github.com/danpasecinic/needlecli"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

type TestRegistrar struct {
	*needlecli.Registrar
	tb TB
}

// New returns a registrar that is released when the test finishes. A
// disposal failure at that point fails the test.
func New(tb TB, opts ...needlecli.Option) *TestRegistrar {
	tb.Helper()

	r := needlecli.NewRegistrar(opts...)
	tr := &TestRegistrar{
		Registrar: r,
		tb:        tb,
	}

	tb.Cleanup(func() {
		if err := r.Release(); err != nil {
			tb.Fatalf("failed to release registrar: %v", err)
		}
	})

	return tr
}

func (tr *TestRegistrar) RequireRegister(service, implementation reflect.Type) {
	tr.tb.Helper()

	if err := tr.Register(service, implementation); err != nil {
		tr.tb.Fatalf("failed to register %s: %v", service, err)
	}
}

func (tr *TestRegistrar) RequireRegisterInstance(service reflect.Type, instance any) {
	tr.tb.Helper()

	if err := tr.RegisterInstance(service, instance); err != nil {
		tr.tb.Fatalf("failed to register instance of %s: %v", service, err)
	}
}

func (tr *TestRegistrar) RequireRegisterLazy(service reflect.Type, factory func() (any, error)) {
	tr.tb.Helper()

	if err := tr.RegisterLazy(service, factory); err != nil {
		tr.tb.Fatalf("failed to register factory for %s: %v", service, err)
	}
}

func (tr *TestRegistrar) RequireRelease() {
	tr.tb.Helper()

	if err := tr.Release(); err != nil {
		tr.tb.Fatalf("failed to release registrar: %v", err)
	}
}

func MustRegisterType[S, I any](tr *TestRegistrar) {
	tr.tb.Helper()

	if err := needlecli.RegisterType[S, I](tr.Registrar); err != nil {
		tr.tb.Fatalf("failed to register %s: %v", needlecli.TypeOf[S](), err)
	}
}

func MustRegisterValue[S any](tr *TestRegistrar, value S) {
	tr.tb.Helper()

	if err := needlecli.RegisterValue(tr.Registrar, value); err != nil {
		tr.tb.Fatalf("failed to register value %s: %v", needlecli.TypeOf[S](), err)
	}
}

func MustRegisterFactory[S any](tr *TestRegistrar, factory func() (S, error)) {
	tr.tb.Helper()

	if err := needlecli.RegisterFactory(tr.Registrar, factory); err != nil {
		tr.tb.Fatalf("failed to register factory %s: %v", needlecli.TypeOf[S](), err)
	}
}

func MustResolve[T any](tb TB, r *needlecli.Resolver) T {
	tb.Helper()

	v, err := needlecli.GetRequiredService[T](r)
	if err != nil {
		tb.Fatalf("failed to resolve %s: %v", needlecli.TypeOf[T](), err)
	}
	return v
}

func AssertHas[T any](tb TB, r *needlecli.Resolver) {
	tb.Helper()

	if !needlecli.HasService[T](r) {
		tb.Fatalf("expected resolver to have %s", needlecli.TypeOf[T]())
	}
}

func AssertNotHas[T any](tb TB, r *needlecli.Resolver) {
	tb.Helper()

	if needlecli.HasService[T](r) {
		tb.Fatalf("expected resolver to not have %s", needlecli.TypeOf[T]())
	}
}

// DisposeCounter counts Dispose calls and returns Err from each of them.
type DisposeCounter struct {
	Err   error
	count atomic.Int32
}

var _ needlecli.Disposable = (*DisposeCounter)(nil)

func (d *DisposeCounter) Dispose() error {
	d.count.Add(1)
	return d.Err
}

func (d *DisposeCounter) Count() int {
	return int(d.count.Load())
}
