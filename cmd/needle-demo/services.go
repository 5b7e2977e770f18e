package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/danpasecinic/needlecli"
)

const greetingEnv = "NEEDLE_DEMO_GREETING"

type Config struct {
	Greeting string
}

func loadConfig() *Config {
	cfg := &Config{Greeting: "Hello"}
	if greeting := os.Getenv(greetingEnv); greeting != "" {
		cfg.Greeting = greeting
	}
	return cfg
}

type Greeter interface {
	Greet(greeting, name string) string
}

type consoleGreeter struct {
	punctuation string
}

func (g *consoleGreeter) Init() error {
	g.punctuation = "!"
	return nil
}

func (g *consoleGreeter) Greet(greeting, name string) string {
	return fmt.Sprintf("%s, %s%s", greeting, name, g.punctuation)
}

// Logger is the application logger. It is synced when the container that
// created it is released.
type Logger struct {
	*zap.SugaredLogger
}

func (l *Logger) Dispose() error {
	return dropTerminalSyncErrors(l.Sync())
}

// Syncing a terminal or pipe fails with ENOTTY or EINVAL depending on the
// platform.
func dropTerminalSyncErrors(err error) error {
	var kept error
	for _, e := range multierr.Errors(err) {
		if errors.Is(e, syscall.ENOTTY) || errors.Is(e, syscall.EINVAL) {
			continue
		}
		kept = multierr.Append(kept, e)
	}
	return kept
}

func newLogger(verbose bool) (*Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config = zap.NewDevelopmentConfig()
	}

	config.DisableCaller = true
	config.DisableStacktrace = true
	config.Encoding = "console"
	config.EncoderConfig.TimeKey = ""

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{logger.Sugar()}, nil
}

func registerServices(r *needlecli.Registrar, root *cobra.Command) error {
	if err := needlecli.RegisterValue(r, loadConfig()); err != nil {
		return err
	}

	if err := needlecli.RegisterType[Greeter, *consoleGreeter](r); err != nil {
		return err
	}

	// Flags are parsed by the time the first command asks for a logger.
	return needlecli.RegisterFactory(
		r, func() (*Logger, error) {
			verbose, err := root.PersistentFlags().GetBool("verbose")
			if err != nil {
				return nil, err
			}
			return newLogger(verbose)
		},
	)
}
