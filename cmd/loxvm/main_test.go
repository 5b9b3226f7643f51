package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/loxvm/chunk"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns what it wrote to
// stdout and stderr. Flag values are reset first since the commands are
// package-level and pflag keeps state between runs.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })

	for _, cmd := range []*cobra.Command{rootCmd, disCmd, buildCmd, versionCmd} {
		resetFlags(cmd.Flags())
		resetFlags(cmd.PersistentFlags())
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--no-repl"}, args...))
	if len(args) > 0 && (args[0] == "dis" || args[0] == "build" || args[0] == "version") {
		rootCmd.SetArgs(args)
	}
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestRunCode(t *testing.T) {
	stdout, _, err := execute(t, "--code", "(1 + 2) * 3 - 4 / 8")
	require.Nil(t, err)
	require.Equal(t, "8.5\n", stdout)

	stdout, _, err = execute(t, "-c", `"a" == "a"`)
	require.Nil(t, err)
	require.Equal(t, "true\n", stdout)
}

func TestRunJSONOutput(t *testing.T) {
	stdout, _, err := execute(t, "--no-color", "-o", "json", "--code", `"hi"`)
	require.Nil(t, err)
	require.Equal(t, "\"hi\"\n", stdout)

	_, _, err = execute(t, "-o", "yaml", "--code", "1")
	require.ErrorContains(t, err, "unknown output format: yaml")
}

func TestRunCompileError(t *testing.T) {
	_, stderr, err := execute(t, "--code", "1 +")
	require.NotNil(t, err)
	require.Equal(t, "[line 1] Error at end: Expect expression.\n", stderr)

	var out bytes.Buffer
	require.Equal(t, exitCompileError, printError(&out, err))
	require.Empty(t, out.String())
}

func TestRunRuntimeError(t *testing.T) {
	_, _, err := execute(t, "--code", "-true")
	require.NotNil(t, err)

	var out bytes.Buffer
	require.Equal(t, exitRuntimeError, printError(&out, err))
	require.Equal(t, "Operand must be a number.\n[line 1] in script\n", out.String())
}

func TestRunInstructionLimit(t *testing.T) {
	_, _, err := execute(t, "--instruction-limit", "2", "--code", "1 + 2")
	require.ErrorContains(t, err, "instruction limit exceeded")
}

func TestRunTrace(t *testing.T) {
	_, stderr, err := execute(t, "--trace", "--code", "1")
	require.Nil(t, err)
	require.Contains(t, stderr, "CONSTANT")
	require.Contains(t, stderr, "RETURN")
}

func TestMultipleInputSources(t *testing.T) {
	_, _, err := execute(t, "--code", "1", "--stdin")
	require.EqualError(t, err, "multiple input sources specified")

	_, _, err = execute(t, "--code", "1", "file.lox")
	require.EqualError(t, err, "multiple input sources specified")

	_, _, err = execute(t)
	require.EqualError(t, err, "no input provided")

	require.Equal(t, exitFailure, printError(&bytes.Buffer{}, errors.New("other")))
}

func TestRunStdin(t *testing.T) {
	saved := color.NoColor
	t.Cleanup(func() { color.NoColor = saved })

	for _, cmd := range []*cobra.Command{rootCmd, disCmd, buildCmd, versionCmd} {
		resetFlags(cmd.Flags())
		resetFlags(cmd.PersistentFlags())
	}
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader("!nil\n"))
	rootCmd.SetArgs([]string{"--stdin"})
	require.Nil(t, rootCmd.Execute())
	require.Equal(t, "true\n", stdout.String())
}

func TestBuildRunAndDis(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "calc.lox")
	require.Nil(t, os.WriteFile(src, []byte("1 +\n2 * \"x\""), 0o644))

	stdout, _, err := execute(t, "build", src)
	require.Nil(t, err)
	out := filepath.Join(dir, "calc.loxc")
	require.Equal(t, out+"\n", stdout)

	data, err := os.ReadFile(out)
	require.Nil(t, err)
	require.True(t, chunk.IsProgram(data))

	// The built program runs without recompiling and keeps its line table
	_, _, err = execute(t, out)
	require.NotNil(t, err)
	require.Equal(t, "Operands must be numbers.\n[line 2] in script", err.Error())

	stdout, _, err = execute(t, "dis", out)
	require.Nil(t, err)
	require.True(t, strings.HasPrefix(stdout, "== "+out+" ==\n"))
	require.Contains(t, stdout, "MULTIPLY")
	require.Contains(t, stdout, "'x'")

	_, _, err = execute(t, "build", out)
	require.EqualError(t, err, "input is already a built program")
}

func TestBuildRequiresOutput(t *testing.T) {
	_, _, err := execute(t, "build", "--code", "1")
	require.ErrorContains(t, err, "an output path is required")

	out := filepath.Join(t.TempDir(), "one.loxc")
	stdout, _, err := execute(t, "build", "--code", "1", "--out", out)
	require.Nil(t, err)
	require.Equal(t, out+"\n", stdout)

	stdout, _, err = execute(t, "--code", "41 + 1")
	require.Nil(t, err)
	require.Equal(t, "42\n", stdout)

	stdout, _, err = execute(t, "--no-repl", out)
	require.Nil(t, err)
	require.Equal(t, "1\n", stdout)
}

func TestDisCode(t *testing.T) {
	stdout, _, err := execute(t, "dis", "--code", "-1")
	require.Nil(t, err)
	expected := strings.TrimSpace(`
== code ==
0000    1 CONSTANT            0 '1'
0002    | NEGATE
0003    | RETURN
`)
	require.Equal(t, expected+"\n", stdout)

	stdout, _, err = execute(t, "dis", "--no-color", "-o", "json", "--code", "nil")
	require.Nil(t, err)
	require.Contains(t, stdout, `"name": "NIL"`)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.Nil(t, err)
	require.Equal(t, "loxvm dev (commit unknown, built unknown)\n", stdout)

	stdout, _, err = execute(t, "version", "--no-color", "--output", "json")
	require.Nil(t, err)
	require.Contains(t, stdout, `"version": "dev"`)
}
