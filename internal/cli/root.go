// Package cli wires the console commands. Every command that talks to
// the account service assembles the application through the injector and
// establishes the session before running.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kioskworks/kioskctl/internal/app"
	"github.com/kioskworks/kioskctl/internal/di"
	"github.com/kioskworks/kioskctl/internal/session"
)

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kioskctl",
		Short:         "Operator console for the kiosk fleet platform",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(
		newConsoleCommand(),
		newUsersCommand(),
		newCapsCommand(),
		newMachinesCommand(),
		newWhoamiCommand(),
		newLogoutCommand(),
		newStubCommand(),
	)
	return cmd
}

// loadApp builds the application and initializes the session cache. A
// failed identity fetch is terminal: the operator is told to sign in
// again instead of seeing protected surfaces.
func loadApp(ctx context.Context) (*app.App, error) {
	a, err := di.InitializeApp()
	if err != nil {
		return nil, err
	}
	if _, err := a.Session.Initialize(ctx); err != nil {
		shutdownApp(a)
		if errors.Is(err, session.ErrSessionFetchFailed) {
			return nil, fmt.Errorf("session could not be established; check KIOSKCTL_TOKEN and sign in again: %w", err)
		}
		return nil, err
	}
	return a, nil
}

func shutdownApp(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Observability.Shutdown(ctx); err != nil {
		a.Logger.Warn("telemetry shutdown failed", "error", err)
	}
}
