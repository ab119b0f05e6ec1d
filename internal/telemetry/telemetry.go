package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// flusher is the lifecycle shared by the SDK tracer, meter and logger
// providers.
type flusher interface {
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Telemetry exports the showcase pipeline spans, request metrics and
// bridged zap records over OTLP.
//
// A collector that cannot be reached never stops the service: the affected
// signal falls back to the global no-op provider and the instance reports
// itself degraded.
type Telemetry struct {
	config *Config

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider

	healthy  atomic.Bool
	degraded atomic.Bool

	mu     sync.Mutex
	issues []error
}

// New builds the providers described by cfg and installs them as the
// process-wide otel globals. A disabled cfg yields an instance whose
// accessors return the globals unchanged.
func New(ctx context.Context, cfg *Config) (*Telemetry, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	t := &Telemetry{config: cfg}
	t.healthy.Store(true)
	if !cfg.Enabled {
		return t, nil
	}

	res, err := newResource(cfg)
	if err != nil {
		t.setDegraded("resource creation failed: %w", err)
		return t, nil
	}

	if tp, err := newTracerProvider(ctx, cfg, res); err != nil {
		t.setDegraded("tracer provider failed: %w", err)
	} else {
		t.tracerProvider = tp
		otel.SetTracerProvider(tp)
	}

	if mp, err := newMeterProvider(ctx, cfg, res); err != nil {
		t.setDegraded("meter provider failed: %w", err)
	} else if mp != nil {
		t.meterProvider = mp
		otel.SetMeterProvider(mp)
	}

	if lp, err := newLoggerProvider(ctx, cfg, res, nil); err != nil {
		t.setDegraded("logger provider failed: %w", err)
	} else {
		t.loggerProvider = lp
		global.SetLoggerProvider(lp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return t, nil
}

// Tracer returns a tracer from the exporting provider, or from the global
// one when tracing is off.
func (t *Telemetry) Tracer(name string, opts ...oteltrace.TracerOption) oteltrace.Tracer {
	if t == nil || t.tracerProvider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return t.tracerProvider.Tracer(name, opts...)
}

// Meter returns a meter from the exporting provider, or from the global
// one when metrics are off.
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if t == nil || t.meterProvider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return t.meterProvider.Meter(name, opts...)
}

// LoggerProvider is what the otelzap core writes through when logging.otel
// is set.
func (t *Telemetry) LoggerProvider() log.LoggerProvider {
	if t == nil || t.loggerProvider == nil {
		return global.GetLoggerProvider()
	}
	return t.loggerProvider
}

type signalProvider struct {
	signal string
	p      flusher
}

// providers lists the running SDK providers.
func (t *Telemetry) providers() []signalProvider {
	var out []signalProvider
	if t.tracerProvider != nil {
		out = append(out, signalProvider{"trace", t.tracerProvider})
	}
	if t.meterProvider != nil {
		out = append(out, signalProvider{"meter", t.meterProvider})
	}
	if t.loggerProvider != nil {
		out = append(out, signalProvider{"logger", t.loggerProvider})
	}
	return out
}

// Shutdown flushes and stops every provider. Without a deadline on ctx,
// shutdown.timeout bounds it.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok && t.config != nil && t.config.Shutdown.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Shutdown.Timeout)
		defer cancel()
	}

	var errs []error
	for _, entry := range t.providers() {
		if err := entry.p.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s provider shutdown: %w", entry.signal, err))
		}
	}

	t.healthy.Store(false)
	return errors.Join(errs...)
}

// ForceFlush pushes buffered spans, metrics and log records to the collector.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	for _, entry := range t.providers() {
		if err := entry.p.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s flush: %w", entry.signal, err))
		}
	}
	return errors.Join(errs...)
}

// HealthStatus is Healthy until Shutdown and Degraded once any provider
// failed to start.
type HealthStatus struct {
	Healthy  bool
	Degraded bool
}

func (t *Telemetry) Health() HealthStatus {
	if t == nil {
		return HealthStatus{Healthy: false, Degraded: true}
	}
	return HealthStatus{
		Healthy:  t.healthy.Load(),
		Degraded: t.degraded.Load(),
	}
}

// IsEnabled reports whether export was requested and shutdown has not run.
func (t *Telemetry) IsEnabled() bool {
	if t == nil || t.config == nil {
		return false
	}
	return t.config.Enabled && t.healthy.Load()
}

// Issues returns the provider errors recorded at startup, for the caller
// to log once its logger exists.
func (t *Telemetry) Issues() []error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]error(nil), t.issues...)
}

func (t *Telemetry) setDegraded(format string, args ...any) {
	t.degraded.Store(true)
	t.mu.Lock()
	t.issues = append(t.issues, fmt.Errorf(format, args...))
	t.mu.Unlock()
}
