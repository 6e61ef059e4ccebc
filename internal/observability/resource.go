package observability

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/kioskworks/kioskctl/internal/config"
)

// consoleResource describes this console process to every exporter. The
// hostname distinguishes operators when several consoles report to the
// same collector.
func consoleResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	host, _ := os.Hostname()
	return resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("service.namespace", "kioskworks"),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
			attribute.String("host.name", host),
		),
	)
}
