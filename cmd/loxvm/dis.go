package main

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/loxvm/dis"
	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var disCmd = &cobra.Command{
	Use:   "dis [file]",
	Short: "Disassemble source or a built program",
	Args:  cobra.MaximumNArgs(1),
	RunE:  disHandler,
}

func disHandler(cmd *cobra.Command, args []string) error {
	processGlobalFlags()

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	c, err := in.chunk(value.NewHeap(), cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}

	switch format := strings.ToLower(viper.GetString("output")); format {
	case "", "text":
		name := in.name
		if name == "" {
			name = "code"
		}
		return dis.PrintChunk(c, name, cmd.OutOrStdout())
	case "json":
		instructions, err := dis.Disassemble(c)
		if err != nil {
			return err
		}
		output, err := getOutputJSON(instructions)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
