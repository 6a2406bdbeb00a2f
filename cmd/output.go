package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"orgconsole/models"
	"orgconsole/utils"
	"orgconsole/views"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func writeJSON(w io.Writer, v interface{}) error {
	out := utils.PrintPrettyJSON(v)
	if out == "" {
		return withCode(exitFailure, fmt.Errorf("failed to encode output"))
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeOrganizations(w io.Writer, format string, orgs []models.Organization) error {
	if format == outputJSON {
		if orgs == nil {
			orgs = []models.Organization{}
		}
		return writeJSON(w, orgs)
	}
	if len(orgs) == 0 {
		_, err := fmt.Fprintln(w, "No organizations found.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tUSERS\tCREATED")
	for _, o := range orgs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", o.ID, o.Name, views.OrNA(o.Address), o.UsersCount, views.Date(o.CreatedAt))
	}
	return tw.Flush()
}

func writeUsers(w io.Writer, format string, users []models.User) error {
	if format == outputJSON {
		if users == nil {
			users = []models.User{}
		}
		return writeJSON(w, users)
	}
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No users found.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tORGANIZATION\tPOSITION\tPHONE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.FullName(), u.Email,
			views.OrNA(u.OrganizationName), views.OrNA(u.Position), views.OrNA(u.PhoneNumber))
	}
	return tw.Flush()
}

func writeProfile(w io.Writer, format string, user *models.AuthUser) error {
	if format == outputJSON {
		return writeJSON(w, user)
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Username:\t%s\n", user.Username)
	fmt.Fprintf(tw, "Name:\t%s\n", views.OrNA(user.DisplayName()))
	fmt.Fprintf(tw, "Email:\t%s\n", views.OrNA(user.Email))
	fmt.Fprintf(tw, "Organization:\t%s (%s)\n", views.OrNA(user.OrganizationName), strconv.FormatInt(user.Organization, 10))
	return tw.Flush()
}
