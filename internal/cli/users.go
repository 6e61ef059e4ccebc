package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kioskworks/kioskctl/internal/console"
)

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage operator accounts"}
	cmd.AddCommand(newUsersListCommand(), newUsersCreateCommand(), newUsersDeleteCommand())
	return cmd
}

func newUsersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownApp(a)

			users, err := a.Controller.ListUsers(cmd.Context())
			if err != nil {
				return describeActionError(err)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\n", u.ID, u.Email)
			}
			return w.Flush()
		},
	}
}

func newUsersCreateCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownApp(a)

			user, err := a.Controller.CreateUser(cmd.Context(), email)
			if err != nil {
				return describeActionError(err)
			}
			fmt.Printf("created account %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address for the new account")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUsersDeleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || targetID == 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			if !yes {
				return errors.New("refusing to delete without --yes")
			}
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownApp(a)

			if err := a.Controller.DeleteUser(cmd.Context(), targetID); err != nil {
				return describeActionError(err)
			}
			fmt.Printf("deleted account %d\n", targetID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

// describeActionError turns controller errors into operator-facing
// messages without losing the underlying cause.
func describeActionError(err error) error {
	var verr *console.ValidationError
	switch {
	case errors.As(err, &verr):
		return fmt.Errorf("invalid input: %s", verr.Reason)
	case errors.Is(err, console.ErrSelfAction):
		return errors.New("this action cannot target your own account")
	case errors.Is(err, console.ErrNotPermitted):
		return fmt.Errorf("not permitted: %w", err)
	default:
		return fmt.Errorf("the operation failed, please retry: %w", err)
	}
}
