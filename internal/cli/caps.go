package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kioskworks/kioskctl/internal/domain"
)

func newCapsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "caps", Short: "Inspect and change account capabilities"}
	cmd.AddCommand(newCapsShowCommand(), newCapsGrantCommand(), newCapsRevokeCommand())
	return cmd
}

func parseUserIDArg(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", arg)
	}
	return id, nil
}

func newCapsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show the capabilities an account holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetID, err := parseUserIDArg(args[0])
			if err != nil {
				return err
			}
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownApp(a)

			caps, err := a.Controller.UserCapabilities(cmd.Context(), targetID)
			if err != nil {
				return describeActionError(err)
			}
			if caps.Len() == 0 {
				fmt.Printf("account %d holds no capabilities\n", targetID)
				return nil
			}
			for _, c := range caps.Sorted() {
				fmt.Println(c)
			}
			return nil
		},
	}
}

func newCapsGrantCommand() *cobra.Command {
	var caps []string
	cmd := &cobra.Command{
		Use:   "grant <user-id>",
		Short: "Grant capabilities from your own set to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetID, err := parseUserIDArg(args[0])
			if err != nil {
				return err
			}
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownApp(a)

			selection := domain.CapabilitiesFromStrings(caps).Sorted()
			if err := a.Controller.Grant(cmd.Context(), targetID, selection); err != nil {
				return describeActionError(err)
			}
			fmt.Printf("granted %d capabilities to account %d\n", len(selection), targetID)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&caps, "cap", nil, "capability to grant (repeatable)")
	_ = cmd.MarkFlagRequired("cap")
	return cmd
}

func newCapsRevokeCommand() *cobra.Command {
	var caps []string
	cmd := &cobra.Command{
		Use:   "revoke <user-id>",
		Short: "Revoke capabilities within your own set from an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetID, err := parseUserIDArg(args[0])
			if err != nil {
				return err
			}
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownApp(a)

			selection := domain.CapabilitiesFromStrings(caps).Sorted()
			if err := a.Controller.Revoke(cmd.Context(), targetID, selection); err != nil {
				return describeActionError(err)
			}
			fmt.Printf("revoked %d capabilities from account %d\n", len(selection), targetID)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&caps, "cap", nil, "capability to revoke (repeatable)")
	_ = cmd.MarkFlagRequired("cap")
	return cmd
}
