package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	output     string
	logLevel   string
}

// NewRootCmd builds the orgconsole command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "orgconsole",
		Short:         "Organization management console and CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputTable, outputJSON:
				return nil
			default:
				return withCode(exitUsage, fmt.Errorf("invalid --output %q: want %s or %s", opts.output, outputTable, outputJSON))
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default ./config.json or ./configs/config.json)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "Output format: table or json")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "CLI diagnostic log level")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newWhoamiCmd(opts))
	cmd.AddCommand(newProfileCmd(opts))
	cmd.AddCommand(newOrgsCmd(opts))
	cmd.AddCommand(newUsersCmd(opts))
	return cmd
}

// Execute runs the root command and exits with its exit code
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
