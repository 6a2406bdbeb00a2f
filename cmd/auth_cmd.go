package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"orgconsole/models"
	"orgconsole/services"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				if username, err = prompt(cmd, in, "Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(cmd, in, "Password: "); err != nil {
					return err
				}
			}

			notice, err := a.submit(cmd, services.OpenLogin{}, map[string]string{
				"username": username,
				"password": password,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if notice != nil {
				fmt.Fprintln(out, notice.Message)
			}
			if user := a.console.Snapshot().State.Auth; user != nil {
				fmt.Fprintf(out, "Welcome, %s (%s)\n", user.DisplayName(), user.OrganizationName)
			}
			a.logger.Debugf("Session token stored in %s", a.tokens.Path())
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when empty)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			if a.tokens.Token() == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}

			a.console.Logout(cmd.Context())
			if notice := a.console.Snapshot().Notice; notice != nil {
				fmt.Fprintln(cmd.OutOrStdout(), notice.Message)
			}
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			user, err := a.console.Profile(cmd.Context())
			if err != nil {
				return backendError(err)
			}
			return writeProfile(cmd.OutOrStdout(), opts.output, user)
		},
	}
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	var update models.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the logged-in user's details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if update == (models.ProfileUpdate{}) {
				return withCode(exitUsage, errors.New("nothing to update: pass at least one of --email, --first-name, --last-name, --phone, --position"))
			}
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			user, err := a.console.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return backendError(err)
			}
			return writeProfile(cmd.OutOrStdout(), opts.output, user)
		},
	}

	cmd.Flags().StringVar(&update.Email, "email", "", "New email")
	cmd.Flags().StringVar(&update.FirstName, "first-name", "", "New first name")
	cmd.Flags().StringVar(&update.LastName, "last-name", "", "New last name")
	cmd.Flags().StringVar(&update.PhoneNumber, "phone", "", "New phone number")
	cmd.Flags().StringVar(&update.Position, "position", "", "New position")
	return cmd
}

// prompt reads one line from in; the prompt goes to stderr so stdout stays parseable
func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", withCode(exitUsage, fmt.Errorf("failed to read input: %w", err))
	}
	return strings.TrimRight(line, "\r\n"), nil
}
