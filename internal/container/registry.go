package container

import (
	"reflect"
	"sync"
)

type Kind int

const (
	KindType Kind = iota
	KindInstance
	KindFactory
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindInstance:
		return "instance"
	case KindFactory:
		return "factory"
	default:
		return "unknown"
	}
}

type FactoryFunc func() (any, error)

// Definition describes how a single service type is produced. Definitions
// are never mutated once added to a Registry.
type Definition struct {
	Key            reflect.Type
	Kind           Kind
	Implementation reflect.Type
	Instance       any
	Factory        FactoryFunc
}

// Owned reports whether values produced from the definition belong to the
// container and must be disposed with it.
func (d *Definition) Owned() bool {
	return d.Kind != KindInstance
}

type Registry struct {
	mu          sync.RWMutex
	definitions []*Definition
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.definitions = append(r.definitions, def)
}

// Snapshot returns the effective definitions: one per service type, the
// latest registration winning, ordered by that registration.
func (r *Registry) Snapshot() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := make(map[reflect.Type]int, len(r.definitions))
	for i, def := range r.definitions {
		latest[def.Key] = i
	}

	effective := make([]*Definition, 0, len(latest))
	for i, def := range r.definitions {
		if latest[def.Key] == i {
			effective = append(effective, def)
		}
	}
	return effective
}

func (r *Registry) Has(key reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, def := range r.definitions {
		if def.Key == key {
			return true
		}
	}
	return false
}

func (r *Registry) Size() int {
	return len(r.Snapshot())
}
