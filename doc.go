// Package needlecli lets a command-line framework construct its command
// handlers and their services from a container with singleton lifetimes and
// disposal, instead of ad hoc construction.
//
// The framework side sees two roles. A Registrar accepts bindings during
// configuration and builds Resolvers; a Resolver answers "give me a value of
// this type" while commands are being constructed.
//
// # Registration
//
// Bindings are keyed by reflect.Type. Three kinds exist, all singletons
// within one built container:
//
//	r := needlecli.NewRegistrar()
//
//	r.Register(greeterType, consoleGreeterType)          // type mapping
//	r.RegisterInstance(configType, cfg)                  // fixed value
//	r.RegisterLazy(clientType, func() (any, error) {     // factory
//	    return NewClient()
//	})
//
// The generic helpers derive the type from a type parameter:
//
//	needlecli.RegisterType[Greeter, *ConsoleGreeter](r)
//	needlecli.RegisterValue(r, cfg)
//	needlecli.RegisterFactory(r, NewClient)
//
// Registering the same service type again replaces the earlier binding for
// containers built afterwards.
//
// # Building
//
// Build freezes the current bindings:
//
//	res := r.Build()
//
// Each Build has its own singleton cache, so a factory runs once per built
// container. Bindings added after Build are invisible to it.
//
// # Resolution
//
//	v, err := res.Resolve(greeterType)
//	g, err := needlecli.GetRequiredService[Greeter](res)
//	opt := needlecli.GetService[*Cache](res)    // mo.Option, never an error
//
// A type with no binding is default-constructed on every call: pointers get a
// freshly allocated zero value, maps and slices are created empty. Values
// implementing Initializer have Init called first. Interfaces, funcs and
// channels cannot be default-constructed. WithStrict turns the fallback off.
//
// # Release
//
// Containers dispose the singletons they created (Disposable or io.Closer)
// in reverse creation order. Values given to RegisterInstance are never
// disposed.
//
//	defer r.Release()   // every container, in build order, once
//
// Release keeps going when a service fails to dispose and reports all
// failures in one DISPOSAL_FAILED error.
package needlecli
