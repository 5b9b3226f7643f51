package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepnoodle-ai/loxvm/chunk"
	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Compile source into a program file",
	Long: `Compile source into a program file that can be run or disassembled
without recompiling. The output defaults to the input path with a .loxc
extension.`,
	Args: cobra.MaximumNArgs(1),
	RunE: buildHandler,
}

func init() {
	// Registered as "out" so it does not shadow the global --output flag
	buildCmd.Flags().String("out", "", "Path of the program file to write")
}

func buildHandler(cmd *cobra.Command, args []string) error {
	processGlobalFlags()

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	if in.program != nil {
		return errors.New("input is already a built program")
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if out == "" {
		if in.name == "" {
			return errors.New("an output path is required when building from --code or --stdin")
		}
		out = strings.TrimSuffix(in.name, filepath.Ext(in.name)) + ".loxc"
	}

	c, err := in.chunk(value.NewHeap(), cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}
	data, err := chunk.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	stats := c.Stats()
	logger.Info().
		Str("path", out).
		Int("bytes", len(data)).
		Int("instructions", stats.InstructionCount).
		Int("constants", stats.ConstantCount).
		Msg("wrote program")
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
