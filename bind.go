package needlecli

import (
	"reflect"

	needlereflect "github.com/danpasecinic/needlecli/internal/reflect"
)

// RegisterType binds service type S to implementation type I.
//
//	needlecli.RegisterType[Greeter, *ConsoleGreeter](r)
func RegisterType[S, I any](r *Registrar) error {
	return r.Register(needlereflect.TypeOf[S](), needlereflect.TypeOf[I]())
}

func RegisterValue[S any](r *Registrar, value S) error {
	return r.RegisterInstance(needlereflect.TypeOf[S](), value)
}

// RegisterFactory binds S to a typed factory, invoked at most once per built
// container.
func RegisterFactory[S any](r *Registrar, factory func() (S, error)) error {
	if factory == nil {
		return r.RegisterLazy(needlereflect.TypeOf[S](), nil)
	}

	return r.RegisterLazy(
		needlereflect.TypeOf[S](), func() (any, error) {
			return factory()
		},
	)
}

// TypeOf returns the service type identifier for T. Interface types are
// returned as themselves, not as the dynamic type of a value.
func TypeOf[T any]() reflect.Type {
	return needlereflect.TypeOf[T]()
}
