package needlecli_test

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/needlecli"
)

type Logger interface {
	Log(msg string)
}

type ConsoleLogger struct {
	lines []string
}

func (l *ConsoleLogger) Log(msg string) {
	l.lines = append(l.lines, msg)
}

type Config struct {
	Port int
	Host string
}

type Database struct {
	DSN string
}

type countingDisposer struct {
	disposed atomic.Int32
	err      error
}

func (d *countingDisposer) Dispose() error {
	d.disposed.Add(1)
	return d.err
}

var (
	loggerType        = needlecli.TypeOf[Logger]()
	consoleLoggerType = needlecli.TypeOf[*ConsoleLogger]()
	configType        = needlecli.TypeOf[*Config]()
)

func TestNewRegistrar(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()
	require.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Released())
}

func TestNewRegistrarWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := needlecli.NewRegistrar(needlecli.WithLogger(logger))
	require.NoError(t, needlecli.RegisterValue(r, &Config{}))
	_ = r.Build()
	require.NoError(t, r.Release())

	output := buf.String()
	assert.Contains(t, output, "registered service")
	assert.Contains(t, output, "built container")
	assert.Contains(t, output, "released container")
}

func TestRegistrar_RegisterRejectsNil(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()

	var nilConfig *Config
	var nilMap map[string]int

	tests := []struct {
		name string
		call func() error
	}{
		{"nil service", func() error { return r.Register(nil, consoleLoggerType) }},
		{"nil implementation", func() error { return r.Register(loggerType, nil) }},
		{"nil instance service", func() error { return r.RegisterInstance(nil, &Config{}) }},
		{"nil instance", func() error { return r.RegisterInstance(configType, nil) }},
		{"typed nil instance", func() error { return r.RegisterInstance(configType, nilConfig) }},
		{"nil map instance", func() error { return r.RegisterInstance(configType, nilMap) }},
		{"nil lazy service", func() error { return r.RegisterLazy(nil, func() (any, error) { return 1, nil }) }},
		{"nil factory", func() error { return r.RegisterLazy(configType, nil) }},
		{"nil typed factory", func() error { return needlecli.RegisterFactory[*Config](r, nil) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(
			tt.name, func(t *testing.T) {
				t.Parallel()

				err := tt.call()
				require.Error(t, err)
				assert.True(t, needlecli.IsInvalidRegistration(err))
			},
		)
	}

	assert.Equal(t, 0, r.Len())
}

func TestRegistrar_RegisterDefersValidation(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()

	// *Config does not implement Logger; that only surfaces on resolution.
	require.NoError(t, r.Register(loggerType, configType))

	res := r.Build()
	_, err := res.Resolve(loggerType)
	require.Error(t, err)
	assert.True(t, needlecli.IsResolutionFailed(err))
}

func TestRegistrar_FactoryNotInvokedAtRegistration(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := needlecli.NewRegistrar()

	require.NoError(
		t, needlecli.RegisterFactory(
			r, func() (*Database, error) {
				calls.Add(1)
				return &Database{}, nil
			},
		),
	)

	res := r.Build()
	assert.Equal(t, int32(0), calls.Load())

	_, err := needlecli.GetRequiredService[*Database](res)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistrar_LastRegistrationWins(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()

	first := &Config{Port: 1}
	second := &Config{Port: 2}

	require.NoError(t, needlecli.RegisterValue(r, first))
	require.NoError(t, needlecli.RegisterValue(r, second))
	assert.Equal(t, 1, r.Len())

	cfg, err := needlecli.GetRequiredService[*Config](r.Build())
	require.NoError(t, err)
	assert.Same(t, second, cfg)
}

func TestRegistrar_SnapshotIsolation(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar(needlecli.WithStrict())

	original := &Config{Port: 1}
	require.NoError(t, needlecli.RegisterValue(r, original))

	res := r.Build()

	require.NoError(t, needlecli.RegisterValue(r, &Config{Port: 2}))
	require.NoError(t, needlecli.RegisterType[Logger, *ConsoleLogger](r))

	cfg, err := needlecli.GetRequiredService[*Config](res)
	require.NoError(t, err)
	assert.Same(t, original, cfg)

	assert.False(t, needlecli.HasService[Logger](res))
	_, err = needlecli.GetRequiredService[Logger](res)
	assert.True(t, needlecli.IsNotFound(err))

	later := r.Build()
	cfg, err = needlecli.GetRequiredService[*Config](later)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Port)
	assert.True(t, needlecli.HasService[Logger](later))
}

func TestRegistrar_FactoryRunsOncePerBuild(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := needlecli.NewRegistrar()

	require.NoError(
		t, needlecli.RegisterFactory(
			r, func() (*Database, error) {
				calls.Add(1)
				return &Database{}, nil
			},
		),
	)

	first := r.Build()
	second := r.Build()

	a1 := needlecli.MustGetService[*Database](first)
	a2 := needlecli.MustGetService[*Database](first)
	b1 := needlecli.MustGetService[*Database](second)
	b2 := needlecli.MustGetService[*Database](second)

	assert.Same(t, a1, a2)
	assert.Same(t, b1, b2)
	assert.NotSame(t, a1, b1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRegistrar_ConcurrentBuild(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()

	disposers := make([]*countingDisposer, 0, 32)
	var mu sync.Mutex

	require.NoError(
		t, needlecli.RegisterFactory(
			r, func() (*countingDisposer, error) {
				d := &countingDisposer{}
				mu.Lock()
				disposers = append(disposers, d)
				mu.Unlock()
				return d, nil
			},
		),
	)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := r.Build()
			_, err := needlecli.GetRequiredService[*countingDisposer](res)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NoError(t, r.Release())

	require.Len(t, disposers, 32)
	for _, d := range disposers {
		assert.Equal(t, int32(1), d.disposed.Load())
	}
}

func TestRegistrar_ReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()
	d := &countingDisposer{}

	require.NoError(t, needlecli.RegisterFactory(r, func() (*countingDisposer, error) { return d, nil }))

	res := r.Build()
	_, err := needlecli.GetRequiredService[*countingDisposer](res)
	require.NoError(t, err)

	require.NoError(t, r.Release())
	require.NoError(t, r.Release())
	assert.True(t, r.Released())
	assert.Equal(t, int32(1), d.disposed.Load())

	require.NoError(t, res.Release())
	assert.Equal(t, int32(1), d.disposed.Load())
}

func TestRegistrar_ReleaseSkipsInstances(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()
	external := &countingDisposer{}

	require.NoError(t, needlecli.RegisterValue(r, external))

	res := r.Build()
	_, err := needlecli.GetRequiredService[*countingDisposer](res)
	require.NoError(t, err)

	require.NoError(t, r.Release())
	assert.Equal(t, int32(0), external.disposed.Load())
}

func TestRegistrar_ReleaseUnresolvedSingletons(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := needlecli.NewRegistrar()

	require.NoError(
		t, needlecli.RegisterFactory(
			r, func() (*countingDisposer, error) {
				calls.Add(1)
				return &countingDisposer{}, nil
			},
		),
	)

	_ = r.Build()
	require.NoError(t, r.Release())
	assert.Equal(t, int32(0), calls.Load())
}

func TestRegistrar_ReleaseAggregatesFailures(t *testing.T) {
	t.Parallel()

	type first struct{ *countingDisposer }
	type second struct{ *countingDisposer }

	failing := &countingDisposer{err: errors.New("first failed")}
	healthy := &countingDisposer{}
	alsoFailing := &countingDisposer{err: errors.New("second failed")}

	r := needlecli.NewRegistrar()
	require.NoError(t, needlecli.RegisterFactory(r, func() (first, error) { return first{failing}, nil }))
	require.NoError(t, needlecli.RegisterFactory(r, func() (*countingDisposer, error) { return healthy, nil }))

	resA := r.Build()
	require.NoError(t, needlecli.RegisterFactory(r, func() (second, error) { return second{alsoFailing}, nil }))
	resB := r.Build()

	needlecli.MustGetService[first](resA)
	needlecli.MustGetService[*countingDisposer](resA)
	needlecli.MustGetService[second](resB)

	err := r.Release()
	require.Error(t, err)
	assert.True(t, needlecli.IsDisposalFailed(err))
	assert.Contains(t, err.Error(), "first failed")
	assert.Contains(t, err.Error(), "second failed")

	var nerr *needlecli.Error
	require.ErrorAs(t, err, &nerr)
	assert.Len(t, nerr.Errors(), 2)

	assert.Equal(t, int32(1), failing.disposed.Load())
	assert.Equal(t, int32(1), healthy.disposed.Load())
	assert.Equal(t, int32(1), alsoFailing.disposed.Load())

	require.NoError(t, r.Release())
}

type panickingDisposer struct{}

func (*panickingDisposer) Dispose() error {
	panic("dispose exploded")
}

func TestRegistrar_ReleaseReportsDisposePanic(t *testing.T) {
	t.Parallel()

	healthy := &countingDisposer{}

	r := needlecli.NewRegistrar()
	require.NoError(t, needlecli.RegisterFactory(r, func() (*countingDisposer, error) { return healthy, nil }))
	require.NoError(
		t, needlecli.RegisterFactory(
			r, func() (*panickingDisposer, error) { return &panickingDisposer{}, nil },
		),
	)

	res := r.Build()
	needlecli.MustGetService[*countingDisposer](res)
	needlecli.MustGetService[*panickingDisposer](res)

	err := r.Release()
	require.Error(t, err)
	assert.True(t, needlecli.IsDisposalFailed(err))
	assert.Contains(t, err.Error(), "dispose exploded")
	assert.Contains(t, err.Error(), "panickingDisposer")
	assert.Equal(t, int32(1), healthy.disposed.Load())
}

func TestRegistrar_RegisterInstanceRejectsWrongType(t *testing.T) {
	t.Parallel()

	r := needlecli.NewRegistrar()

	err := r.RegisterInstance(loggerType, "not a logger")
	require.Error(t, err)
	assert.True(t, needlecli.IsInvalidRegistration(err))
	assert.Contains(t, err.Error(), "not assignable")

	err = r.RegisterInstance(configType, Config{})
	require.Error(t, err)
	assert.True(t, needlecli.IsInvalidRegistration(err))
	assert.Equal(t, 0, r.Len())

	require.NoError(t, r.RegisterInstance(loggerType, &ConsoleLogger{}))

	v, err := r.Build().Resolve(loggerType)
	require.NoError(t, err)
	assert.Implements(t, (*Logger)(nil), v)
}

func TestRegistrar_BuildAfterRelease(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := needlecli.NewRegistrar(needlecli.WithLogger(logger))
	d := &countingDisposer{}
	require.NoError(t, needlecli.RegisterFactory(r, func() (*countingDisposer, error) { return d, nil }))

	require.NoError(t, r.Release())

	res := r.Build()
	assert.Contains(t, buf.String(), "after registrar release")

	_, err := needlecli.GetRequiredService[*countingDisposer](res)
	require.NoError(t, err)

	require.NoError(t, r.Release())
	assert.Equal(t, int32(0), d.disposed.Load())

	require.NoError(t, res.Release())
	assert.Equal(t, int32(1), d.disposed.Load())
}
