package di

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/kioskworks/kioskctl/internal/api"
	"github.com/kioskworks/kioskctl/internal/app"
	"github.com/kioskworks/kioskctl/internal/config"
	"github.com/kioskworks/kioskctl/internal/console"
	"github.com/kioskworks/kioskctl/internal/observability"
	"github.com/kioskworks/kioskctl/internal/session"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var ClientSet = wire.NewSet(
	provideAccountClient,
	wire.Bind(new(api.AccountService), new(*api.Client)),
)

var SessionSet = wire.NewSet(
	provideSessionStore,
	wire.Bind(new(session.Store), new(*session.FileStore)),
	session.NewCache,
	wire.Bind(new(session.CapabilityView), new(*session.Cache)),
)

var ConsoleSet = wire.NewSet(console.NewController)

var AppSet = wire.NewSet(app.New)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrap := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrap)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideAccountClient(cfg *config.Config, logger *slog.Logger) *api.Client {
	return api.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout, api.WithLogger(logger))
}

func provideSessionStore(cfg *config.Config) *session.FileStore {
	return session.NewFileStore(cfg.StateDir)
}
