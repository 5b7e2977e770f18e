package needlecli

// Disposable is implemented by services that hold resources. Singletons
// created by a container are disposed when the container is released;
// io.Closer is honoured the same way.
//
// Values passed to RegisterInstance are owned by the caller and are never
// disposed by a container.
type Disposable interface {
	Dispose() error
}

// Initializer is called on values produced by default construction, both for
// type mappings and for unregistered types. Returning an error fails the
// resolution.
type Initializer interface {
	Init() error
}
