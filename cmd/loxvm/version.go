package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		processGlobalFlags()

		switch format := strings.ToLower(viper.GetString("output")); format {
		case "", "text":
			fmt.Fprintf(cmd.OutOrStdout(), "loxvm %s (commit %s, built %s)\n", version, commit, date)
		case "json":
			output, err := getOutputJSON(map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(output))
		default:
			return fmt.Errorf("unknown output format: %s", format)
		}
		return nil
	},
}
