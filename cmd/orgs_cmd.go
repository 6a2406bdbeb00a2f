package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newOrgsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orgs",
		Aliases: []string{"organizations"},
		Short:   "Browse organizations",
	}
	cmd.AddCommand(newOrgsListCmd(opts))
	cmd.AddCommand(newOrgsMembersCmd(opts))
	return cmd
}

func newOrgsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all organizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			if err := a.console.Refresh(cmd.Context()); err != nil {
				return backendError(err)
			}
			return writeOrganizations(cmd.OutOrStdout(), opts.output, a.console.Snapshot().Organizations)
		},
	}
}

func newOrgsMembersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "members <organization-id>",
		Short: "List the users of one organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			users, err := a.console.OrganizationUsers(cmd.Context(), id)
			if err != nil {
				return backendError(err)
			}
			return writeUsers(cmd.OutOrStdout(), opts.output, users)
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, withCode(exitUsage, fmt.Errorf("invalid id %q", raw))
	}
	return id, nil
}
