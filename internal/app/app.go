package app

import (
	"log/slog"

	"github.com/kioskworks/kioskctl/internal/config"
	"github.com/kioskworks/kioskctl/internal/console"
	"github.com/kioskworks/kioskctl/internal/observability"
	"github.com/kioskworks/kioskctl/internal/session"
)

// App bundles the assembled console: configuration, telemetry, the
// session cache and the action controller the commands run against.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Session       *session.Cache
	Controller    *console.Controller
	Observability *observability.Runtime
}

func New(cfg *config.Config, logger *slog.Logger, sess *session.Cache, controller *console.Controller, runtime *observability.Runtime) *App {
	return &App{Config: cfg, Logger: logger, Session: sess, Controller: controller, Observability: runtime}
}
