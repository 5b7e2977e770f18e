package needlecli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/needlecli"
)

func TestPrintBindingsEmpty(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()

	var buf bytes.Buffer
	r.FprintBindings(&buf)

	assert.Contains(t, buf.String(), "no bindings")
}

func TestBindings(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()
	require.NoError(t, needlecli.RegisterType[Logger, *ConsoleLogger](r))
	require.NoError(t, needlecli.RegisterValue(r, &Config{}))
	require.NoError(t, needlecli.RegisterFactory(r, func() (*Database, error) { return &Database{}, nil }))
	require.NoError(t, needlecli.RegisterType[Logger, *ConsoleLogger](r))

	bindings := r.Bindings()
	require.Len(t, bindings, 3)

	assert.Contains(t, bindings[0].Service, "Config")
	assert.Equal(t, "instance", bindings[0].Kind)
	assert.Equal(t, bindings[0].Service, bindings[0].Implementation)
	assert.True(t, bindings[0].Instantiated)

	assert.Contains(t, bindings[1].Service, "Database")
	assert.Equal(t, "factory", bindings[1].Kind)
	assert.False(t, bindings[1].Instantiated)

	assert.Contains(t, bindings[2].Service, "Logger")
	assert.Equal(t, "type", bindings[2].Kind)
	assert.Contains(t, bindings[2].Implementation, "ConsoleLogger")
}

func TestResolverBindingsTrackInstantiation(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()
	require.NoError(t, needlecli.RegisterFactory(r, func() (*Database, error) { return &Database{}, nil }))

	res := r.Build()
	require.Len(t, res.Bindings(), 1)
	assert.False(t, res.Bindings()[0].Instantiated)

	needlecli.MustGetService[*Database](res)
	assert.True(t, res.Bindings()[0].Instantiated)

	var buf bytes.Buffer
	res.FprintBindings(&buf)
	assert.Contains(t, buf.String(), "●")
	assert.Contains(t, buf.String(), "Database")
}

func TestSprintBindings(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()
	require.NoError(t, needlecli.RegisterType[Logger, *ConsoleLogger](r))

	output := r.SprintBindings()
	assert.Contains(t, output, "Logger")
	assert.Contains(t, output, "ConsoleLogger")
	assert.Contains(t, output, "type")
	assert.Contains(t, output, "○")
}
