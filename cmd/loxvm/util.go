package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deepnoodle-ai/loxvm/errz"
	"github.com/deepnoodle-ai/loxvm/value"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Exit codes follow the sysexits convention.
const (
	exitCompileError = 65
	exitRuntimeError = 70
	exitFailure      = 1
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(exitFailure)
}

// reportError prints err to stderr and returns the process exit code for it.
// Compile errors were already printed by the compiler as they were found.
func reportError(err error) int {
	return printError(os.Stderr, err)
}

func printError(w io.Writer, err error) int {
	var compileErrs *errz.CompileErrors
	if errors.As(err, &compileErrs) {
		return exitCompileError
	}
	var runtimeErr *errz.RuntimeError
	if errors.As(err, &runtimeErr) {
		fmt.Fprintln(w, red(runtimeErr.Error()))
		return exitRuntimeError
	}
	fmt.Fprintln(w, red(err.Error()))
	return exitFailure
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

var outputFormatsCompletion = []string{"json", "text"}

func getOutput(result value.Value, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return result.String(), nil
	case "json":
		output, err := getOutputJSON(result)
		if err != nil {
			return "", err
		}
		return string(output), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func getOutputJSON(v any) ([]byte, error) {
	if viper.GetBool("no-color") {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
}

func newLogger(w io.Writer) (zerolog.Logger, error) {
	name := viper.GetString("log-level")
	if name == "" {
		name = "warn"
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %s", name)
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: color.NoColor}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
