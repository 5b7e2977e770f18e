package container

import (
	"fmt"
	"io"

	"go.uber.org/multierr"

	needlereflect "github.com/danpasecinic/needlecli/internal/reflect"
)

type disposer interface {
	Dispose() error
}

// Dispose releases every owned singleton in reverse creation order. All of
// them are attempted; failures are combined into the returned error. Only
// the first call does any work.
func (c *Container) Dispose() error {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return nil
	}
	c.state = StateDisposing
	owned := c.owned
	c.owned = nil
	c.mu.Unlock()

	var errs error
	for i := len(owned) - 1; i >= 0; i-- {
		name := needlereflect.TypeName(owned[i].key)

		disposed, err := dispose(owned[i].instance)
		if !disposed {
			continue
		}

		if err != nil {
			c.logger.Warn("failed to dispose service", "container", c.id, "service", name, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("dispose %s: %w", name, err))
			continue
		}

		c.logger.Debug("disposed service", "container", c.id, "service", name)
	}

	c.mu.Lock()
	c.state = StateDisposed
	c.mu.Unlock()

	return errs
}

func dispose(instance any) (disposed bool, err error) {
	var release func() error
	switch d := instance.(type) {
	case disposer:
		release = d.Dispose
	case io.Closer:
		release = d.Close
	default:
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return true, release()
}
