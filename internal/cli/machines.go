package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kioskworks/kioskctl/internal/fleet"
)

var machineStatusStyles = map[fleet.Status]lipgloss.Style{
	fleet.StatusOperational: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	fleet.StatusMaintenance: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	fleet.StatusOffline:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

func newMachinesCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "machines", Short: "Browse the vending machine fleet"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all machines in the fleet catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			machines, err := fleet.Load()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tADDRESS\tSTATUS")
			for _, m := range machines {
				status := string(m.Status)
				if style, ok := machineStatusStyles[m.Status]; ok {
					status = style.Render(status)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Address(), status)
			}
			return w.Flush()
		},
	})
	return cmd
}
