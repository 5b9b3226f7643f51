package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "loxvm [file]",
	Short: "Compile and evaluate expressions on a bytecode virtual machine",
	Long: `Compile and evaluate expressions on a bytecode virtual machine.

The input is read from --code, from stdin with --stdin, or from a file. Files
may hold source text or a program compiled with "loxvm build". With no input
and an interactive terminal, a REPL is started.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHandler,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default is $HOME/.loxvm.toml)")
	pf.StringP("code", "c", "", "Code to evaluate")
	pf.Bool("stdin", false, "Read code from stdin")
	pf.Bool("no-color", false, "Disable colored output")
	pf.String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	pf.StringP("output", "o", "", "Output format (text or json)")

	f := rootCmd.Flags()
	f.Bool("trace", false, "Trace execution to stderr")
	f.Int64("instruction-limit", 0, "Maximum number of instructions to execute (0 for no limit)")
	f.Bool("no-repl", false, "Disable the REPL")

	for _, name := range []string{"config", "code", "stdin", "no-color", "log-level", "output"} {
		if err := viper.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
	for _, name := range []string{"trace", "instruction-limit", "no-repl"} {
		if err := viper.BindPFlag(name, f.Lookup(name)); err != nil {
			panic(err)
		}
	}
	rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp
	})

	viper.SetEnvPrefix("loxvm")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(disCmd, buildCmd, versionCmd)
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fatal(err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".loxvm")
		viper.SetConfigType("toml")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fatal(fmt.Errorf("reading config: %w", err))
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportError(err))
	}
}
