package cmd

import (
	"fmt"

	"orgconsole/models"

	"github.com/spf13/cobra"
)

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Browse the users directory",
	}
	cmd.AddCommand(newUsersListCmd(opts))
	return cmd
}

func newUsersListCmd(opts *rootOptions) *cobra.Command {
	var organization int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, optionally filtered by organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if organization < 0 {
				return withCode(exitUsage, fmt.Errorf("invalid --organization %d", organization))
			}
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}

			var users []models.User
			if organization > 0 {
				users, err = a.console.UsersByOrganization(cmd.Context(), organization)
			} else if err = a.console.Refresh(cmd.Context()); err == nil {
				users = a.console.Snapshot().Users
			}
			if err != nil {
				return backendError(err)
			}
			return writeUsers(cmd.OutOrStdout(), opts.output, users)
		},
	}

	cmd.Flags().Int64Var(&organization, "organization", 0, "Only users of this organization id")
	return cmd
}
