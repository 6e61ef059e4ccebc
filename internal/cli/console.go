package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kioskworks/kioskctl/internal/tui"
)

func newConsoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open the interactive console",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownApp(a)

			selfID, ok := a.Session.CurrentUserID()
			if !ok {
				return fmt.Errorf("no active session")
			}
			return tui.Run(a.Controller, selfID)
		},
	}
}
