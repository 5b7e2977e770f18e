package container

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	needlereflect "github.com/danpasecinic/needlecli/internal/reflect"
)

type State int

const (
	StateActive State = iota
	StateDisposing
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDisposing:
		return "disposing"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

var (
	ErrNotFound = errors.New("service not found")
	ErrDisposed = errors.New("container disposed")
)

type Config struct {
	ID     uint64
	Logger *slog.Logger
}

type entry struct {
	def *Definition

	mu           sync.Mutex
	instance     any
	instantiated bool
}

type ownedInstance struct {
	key      reflect.Type
	instance any
}

// Container is one built, immutable set of definitions with its own
// singleton cache. Containers built from the same definitions share
// nothing but InstanceBinding values.
type Container struct {
	id      uint64
	logger  *slog.Logger
	entries map[reflect.Type]*entry
	keys    []reflect.Type

	mu    sync.Mutex
	state State
	owned []ownedInstance
}

func New(definitions []*Definition, cfg *Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		id:      cfg.ID,
		logger:  logger,
		entries: make(map[reflect.Type]*entry, len(definitions)),
		keys:    make([]reflect.Type, 0, len(definitions)),
	}

	for _, def := range definitions {
		e := &entry{def: def}
		if def.Kind == KindInstance {
			e.instance = def.Instance
			e.instantiated = true
		}
		if _, exists := c.entries[def.Key]; !exists {
			c.keys = append(c.keys, def.Key)
		}
		c.entries[def.Key] = e
	}

	return c
}

func (c *Container) ID() uint64 {
	return c.id
}

func (c *Container) Has(key reflect.Type) bool {
	_, exists := c.entries[key]
	return exists
}

func (c *Container) Keys() []reflect.Type {
	keys := make([]reflect.Type, len(c.keys))
	copy(keys, c.keys)
	return keys
}

func (c *Container) Size() int {
	return len(c.entries)
}

func (c *Container) Definition(key reflect.Type) (*Definition, bool) {
	e, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	return e.def, true
}

func (c *Container) Instantiated(key reflect.Type) bool {
	e, exists := c.entries[key]
	if !exists {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.instantiated
}

func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resolve returns the singleton for key, creating it on first use. The
// first resolution of a key is serialized, so a factory runs at most once
// per container. A failed creation caches nothing.
//
// A factory that resolves its own key from the same container deadlocks.
func (c *Container) Resolve(key reflect.Type) (any, error) {
	if c.State() != StateActive {
		return nil, ErrDisposed
	}

	e, exists := c.entries[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, needlereflect.TypeName(key))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.instantiated {
		return e.instance, nil
	}

	instance, err := c.create(e.def)
	if err != nil {
		return nil, err
	}

	if e.def.Owned() {
		if err := c.track(key, instance); err != nil {
			return nil, err
		}
	}

	e.instance = instance
	e.instantiated = true

	c.logger.Debug(
		"created singleton",
		"container", c.id,
		"service", needlereflect.TypeName(key),
		"kind", e.def.Kind.String(),
	)

	return instance, nil
}

func (c *Container) create(def *Definition) (any, error) {
	name := needlereflect.TypeName(def.Key)

	var (
		instance any
		err      error
	)

	switch def.Kind {
	case KindType:
		instance, err = needlereflect.Construct(def.Implementation)
		if err != nil {
			return nil, fmt.Errorf("failed to construct %s for %s: %w",
				needlereflect.TypeName(def.Implementation), name, err)
		}
	case KindFactory:
		instance, err = invokeFactory(def.Factory)
		if err != nil {
			return nil, fmt.Errorf("factory failed for %s: %w", name, err)
		}
		if needlereflect.IsNil(instance) {
			return nil, fmt.Errorf("factory for %s returned nil", name)
		}
	default:
		return nil, fmt.Errorf("unsupported binding kind %s for %s", def.Kind, name)
	}

	if !needlereflect.AssignableTo(instance, def.Key) {
		return nil, fmt.Errorf("%s is not assignable to %s",
			needlereflect.TypeName(reflect.TypeOf(instance)), name)
	}

	return instance, nil
}

func invokeFactory(factory FactoryFunc) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return factory()
}

func (c *Container) track(key reflect.Type, instance any) error {
	c.mu.Lock()
	if c.state == StateActive {
		c.owned = append(c.owned, ownedInstance{key: key, instance: instance})
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	// Disposal started while the instance was being created.
	if _, err := dispose(instance); err != nil {
		c.logger.Warn(
			"failed to dispose late singleton",
			"container", c.id,
			"service", needlereflect.TypeName(key),
			"error", err,
		)
	}
	return ErrDisposed
}
