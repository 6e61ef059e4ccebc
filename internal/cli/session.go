package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session identity and capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownApp(a)

			sess, ok := a.Session.Session()
			if !ok {
				return fmt.Errorf("no active session")
			}
			fmt.Printf("user id: %d\n", sess.UserID)
			if sess.Capabilities.Len() == 0 {
				fmt.Println("capabilities: none")
				return nil
			}
			fmt.Println("capabilities:")
			for _, c := range sess.Capabilities.Sorted() {
				fmt.Printf("  %s\n", c)
			}
			return nil
		},
	}
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownApp(a)

			if err := a.Session.End(cmd.Context()); err != nil {
				// Local state is already cleared; the remote failure is
				// still worth surfacing.
				return fmt.Errorf("local session cleared, but the remote session may still be active: %w", err)
			}
			fmt.Println("session ended")
			return nil
		},
	}
}
