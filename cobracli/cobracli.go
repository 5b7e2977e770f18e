// Package cobracli runs a cobra command tree against a needlecli Registrar.
//
// The App builds one Resolver per invocation and stores it in the command
// context. Commands created with Command resolve their handler through it,
// so handler types need no registration unless they should be singletons:
//
//	reg := needlecli.NewRegistrar()
//	defer reg.Release()
//
//	root := &cobra.Command{Use: "tool"}
//	root.AddCommand(cobracli.Command[*GreetCommand](&cobra.Command{Use: "greet"}))
//
//	err := cobracli.New(root, reg).Execute(ctx)
//
// Handlers reach their services through the command:
//
//	func (c *GreetCommand) Run(cmd *cobra.Command, args []string) error {
//	    greeter, err := cobracli.GetRequiredService[Greeter](cmd)
//	    ...
//	}
package cobracli

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/danpasecinic/needlecli"
)

var ErrNoResolver = errors.New("no resolver in command context")

// Handler runs a command. Implementations are resolved from the App's
// Resolver each time their command executes.
type Handler interface {
	Run(cmd *cobra.Command, args []string) error
}

type App struct {
	root      *cobra.Command
	registrar *needlecli.Registrar

	once     sync.Once
	resolver *needlecli.Resolver
}

// New wires root to registrar. The App never releases the registrar; that
// stays with the caller, normally as a deferred Release in main.
func New(root *cobra.Command, registrar *needlecli.Registrar) *App {
	return &App{
		root:      root,
		registrar: registrar,
	}
}

func (a *App) Root() *cobra.Command {
	return a.root
}

// Resolver builds the App's resolver on first use.
func (a *App) Resolver() *needlecli.Resolver {
	a.once.Do(func() {
		a.resolver = a.registrar.Build()
	})
	return a.resolver
}

func (a *App) Execute(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.root.ExecuteContext(WithResolver(ctx, a.Resolver()))
}

// Command makes cmd run a handler of type H. An existing RunE or Run on cmd
// is replaced.
func Command[H Handler](cmd *cobra.Command) *cobra.Command {
	cmd.Run = nil
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		handler, err := GetRequiredService[H](cmd)
		if err != nil {
			return err
		}
		return handler.Run(cmd, args)
	}
	return cmd
}

type resolverKey struct{}

func WithResolver(ctx context.Context, r *needlecli.Resolver) context.Context {
	return context.WithValue(ctx, resolverKey{}, r)
}

func ResolverFromContext(ctx context.Context) (*needlecli.Resolver, bool) {
	if ctx == nil {
		return nil, false
	}
	r, ok := ctx.Value(resolverKey{}).(*needlecli.Resolver)
	return r, ok && r != nil
}

func ResolverFrom(cmd *cobra.Command) (*needlecli.Resolver, error) {
	if cmd == nil {
		return nil, ErrNoResolver
	}
	r, ok := ResolverFromContext(cmd.Context())
	if !ok {
		return nil, ErrNoResolver
	}
	return r, nil
}

// GetService resolves T for cmd, returning None if cmd carries no resolver
// or resolution fails.
func GetService[T any](cmd *cobra.Command) mo.Option[T] {
	r, err := ResolverFrom(cmd)
	if err != nil {
		return mo.None[T]()
	}
	return needlecli.GetService[T](r)
}

func GetRequiredService[T any](cmd *cobra.Command) (T, error) {
	r, err := ResolverFrom(cmd)
	if err != nil {
		var zero T
		return zero, err
	}
	return needlecli.GetRequiredService[T](r)
}
