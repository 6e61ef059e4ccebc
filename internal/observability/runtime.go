package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kioskworks/kioskctl/internal/config"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime bundles the telemetry providers for one console invocation.
// Console processes are short-lived, so Shutdown must run before exit or
// the batched exporters silently drop whatever a command produced.
type Runtime struct {
	LoggerProvider *sdklog.LoggerProvider
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider

	shutdowns []func(context.Context) error
}

// InitRuntime brings up logs, metrics and tracing in order. A failure
// mid-way tears down whatever already started, so the caller never holds
// a half-initialized runtime.
func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	r := &Runtime{}

	lp, err := InitLogs(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if lp != nil {
		r.LoggerProvider = lp
		r.shutdowns = append(r.shutdowns, lp.Shutdown)
	}

	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		_ = r.Shutdown(ctx)
		return nil, err
	}
	if mp != nil {
		r.MeterProvider = mp
		r.shutdowns = append(r.shutdowns, mp.Shutdown)
	}

	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		_ = r.Shutdown(ctx)
		return nil, err
	}
	if tp != nil {
		r.TracerProvider = tp
		r.shutdowns = append(r.shutdowns, tp.Shutdown)
	}
	return r, nil
}

// Shutdown flushes and stops every provider, joining the errors. Safe on
// a nil runtime so callers can defer it unconditionally.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, stop := range r.shutdowns {
		if err := stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.shutdowns = nil
	return errors.Join(errs...)
}
