package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danpasecinic/needlecli"
	"github.com/danpasecinic/needlecli/cobracli"
)

type greetCommand struct{}

func (*greetCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, err := cobracli.GetRequiredService[*Config](cmd)
	if err != nil {
		return err
	}

	greeter, err := cobracli.GetRequiredService[Greeter](cmd)
	if err != nil {
		return err
	}

	greeting, err := cmd.Flags().GetString("greeting")
	if err != nil {
		return err
	}
	if greeting == "" {
		greeting = cfg.Greeting
	}

	name := "world"
	if len(args) > 0 {
		name = args[0]
	}

	if logger := cobracli.GetService[*Logger](cmd); logger.IsPresent() {
		logger.MustGet().Debugw("Greeting.", "name", name, "greeting", greeting)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), greeter.Greet(greeting, name))
	return err
}

type bindingsCommand struct{}

func (*bindingsCommand) Run(cmd *cobra.Command, _ []string) error {
	resolver, err := cobracli.ResolverFrom(cmd)
	if err != nil {
		return err
	}

	// Show the greeter as created to tell singletons apart from pending ones.
	if _, err := needlecli.GetRequiredService[Greeter](resolver); err != nil {
		return err
	}

	resolver.FprintBindings(cmd.OutOrStdout())
	return nil
}
