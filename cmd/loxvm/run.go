package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/deepnoodle-ai/loxvm/vm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runHandler(cmd *cobra.Command, args []string) error {
	processGlobalFlags()

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	machine := vm.New(getVMOptions(cmd, logger)...)
	defer machine.Close()

	if shouldRunRepl(cmd, args) {
		r := newRepl(ctx, machine, logger, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		r.historyPath = historyPath()
		r.format = viper.GetString("output")
		return r.run()
	}

	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	c, err := in.chunk(machine.Heap(), cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}
	if _, err := machine.Run(ctx, c); err != nil {
		return err
	}
	result, _ := machine.TOS()
	output, err := getOutput(result, viper.GetString("output"))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
