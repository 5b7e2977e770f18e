package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/danpasecinic/needlecli"
	"github.com/danpasecinic/needlecli/cobracli"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   fmt.Sprintf("%s [command]", os.Args[0]),
		Short: "needlecli demo",
		Long: heredoc.Doc(`
			Demonstrates commands whose handlers and services come from a
			needlecli registrar.

			The logger is created lazily on first use and synced when the
			registrar is released on exit.
		`),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	greet := cobracli.Command[*greetCommand](
		&cobra.Command{
			Use:   "greet [name]",
			Short: "Print a greeting",
			Args:  cobra.MaximumNArgs(1),
		},
	)
	greet.Flags().String("greeting", "", "override the configured greeting")

	bindings := cobracli.Command[*bindingsCommand](
		&cobra.Command{
			Use:   "bindings",
			Short: "Show registered services",
			Args:  cobra.NoArgs,
		},
	)

	root.AddCommand(greet, bindings)
	return root
}

func run(args []string) (err error) {
	registrar := needlecli.NewRegistrar(
		needlecli.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
	)
	defer func() {
		if releaseErr := registrar.Release(); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()

	root := newRootCommand()
	root.SetArgs(args)

	if err := registerServices(registrar, root); err != nil {
		return err
	}

	return cobracli.New(root, registrar).Execute(context.Background())
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s.\n", err)
		os.Exit(1)
	}
}
