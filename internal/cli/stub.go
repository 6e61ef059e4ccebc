package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kioskworks/kioskctl/internal/config"
	"github.com/kioskworks/kioskctl/internal/observability"
	"github.com/kioskworks/kioskctl/internal/stubserver"
)

func newStubCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "stub", Short: "Local development account service"}
	cmd.AddCommand(newStubServeCommand(), newStubTokenCommand())
	return cmd
}

func loadStubConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateStub(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newStubServeCommand() *cobra.Command {
	var operatorEmail string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stub account service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadStubConfig()
			if err != nil {
				return err
			}
			logger := observability.NewBootstrapLogger(cfg)

			store, err := stubserver.OpenStore(cfg.StubDatabasePath)
			if err != nil {
				return err
			}
			operator, err := store.Seed(operatorEmail)
			if err != nil {
				return fmt.Errorf("seed stub database: %w", err)
			}
			tokens := stubserver.NewTokenManager(cfg.StubJWTSecret, cfg.StubJWTIssuer, cfg.StubJWTAudience, cfg.StubTokenTTL)
			token, err := tokens.Issue(operator.ID)
			if err != nil {
				return err
			}
			logger.Info("stub operator ready", "email", operator.Email, "account_id", operator.ID)
			fmt.Printf("export KIOSKCTL_TOKEN=%s\n", token)

			srv := &http.Server{
				Addr:              ":" + cfg.StubHTTPPort,
				Handler:           stubserver.NewServer(store, tokens, logger).Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("stub listening", "addr", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&operatorEmail, "operator-email", "admin@kioskworks.dev", "email of the seeded operator account")
	return cmd
}

func newStubTokenCommand() *cobra.Command {
	var accountID uint64
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an existing stub account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadStubConfig()
			if err != nil {
				return err
			}
			store, err := stubserver.OpenStore(cfg.StubDatabasePath)
			if err != nil {
				return err
			}
			if _, err := store.GetAccount(accountID); err != nil {
				return fmt.Errorf("account %d not found in stub database", accountID)
			}
			tokens := stubserver.NewTokenManager(cfg.StubJWTSecret, cfg.StubJWTIssuer, cfg.StubJWTAudience, cfg.StubTokenTTL)
			token, err := tokens.Issue(accountID)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&accountID, "user-id", 0, "account id to issue the token for")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
