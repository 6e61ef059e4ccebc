//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/kioskworks/kioskctl/internal/app"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		ClientSet,
		SessionSet,
		ConsoleSet,
		AppSet,
	))
}
