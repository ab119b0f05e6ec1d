package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, tel)

	assert.NotNil(t, tel.Tracer("test"))
	assert.NotNil(t, tel.Meter("test"))
	assert.False(t, tel.IsEnabled())
	assert.Equal(t, HealthStatus{Healthy: true}, tel.Health())
	assert.Empty(t, tel.Issues())
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_InvalidConfig(t *testing.T) {
	tel, err := New(context.Background(), &Config{Enabled: true})
	require.Error(t, err)
	assert.Nil(t, tel)
	assert.Contains(t, err.Error(), "invalid telemetry config")
}

func TestTelemetry_NilSafe(t *testing.T) {
	var tel *Telemetry

	assert.NotPanics(t, func() {
		_ = tel.Tracer("test")
		_ = tel.Meter("test")
		_ = tel.Health()
		_ = tel.IsEnabled()
		_ = tel.Issues()
		_ = tel.Shutdown(context.Background())
		_ = tel.ForceFlush(context.Background())
	})
	assert.Equal(t, HealthStatus{Healthy: false, Degraded: true}, tel.Health())
}

func TestNewTracerProvider_CustomExporter(t *testing.T) {
	cfg := NewDefaultConfig()
	res, err := newResource(cfg)
	require.NoError(t, err)

	exporter := tracetest.NewInMemoryExporter()
	tp, err := newTracerProvider(context.Background(), cfg, res, WithTraceExporter(exporter))
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "pipeline.run")
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "pipeline.run", spans[0].Name)
	assert.Contains(t, spans[0].Resource.Attributes(), attribute.String("service.name", "showcase"))

	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Metrics.Enabled = false

	mp, err := newMeterProvider(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, mp)
}

func TestTestTelemetry(t *testing.T) {
	tt := NewTestTelemetry()
	ctx := context.Background()

	_, span := tt.Tracer("test").Start(ctx, "test-span")
	span.SetAttributes(attribute.Int("results", 3), attribute.String("trigger", "manual"))
	span.End()

	tt.AssertSpanExists(t, "test-span")
	tt.AssertSpanAttribute(t, "test-span", "results", int64(3))
	tt.AssertSpanAttribute(t, "test-span", "trigger", "manual")

	counter, err := tt.Meter("test").Int64Counter("test.count")
	require.NoError(t, err)
	counter.Add(ctx, 2)

	rm, err := tt.Collect(ctx)
	require.NoError(t, err)
	m, ok := MetricByName(rm, "test.count")
	require.True(t, ok)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, tt.Shutdown(ctx))
	assert.False(t, tt.Health().Healthy)
}

// recordingLogExporter keeps every exported record in memory.
type recordingLogExporter struct {
	mu       sync.Mutex
	bodies   []string
	shutdown bool
}

func (e *recordingLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *recordingLogExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown = true
	return nil
}

func (e *recordingLogExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingLogExporter) snapshot() ([]string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.bodies...), e.shutdown
}

func TestNewLoggerProvider_ExportsRecords(t *testing.T) {
	ctx := context.Background()
	cfg := NewDefaultConfig()
	res, err := newResource(cfg)
	require.NoError(t, err)

	exp := &recordingLogExporter{}
	lp, err := newLoggerProvider(ctx, cfg, res, exp)
	require.NoError(t, err)

	tel := &Telemetry{config: cfg, loggerProvider: lp}
	tel.healthy.Store(true)
	assert.Same(t, lp, tel.LoggerProvider())

	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("catalog loaded"))
	tel.LoggerProvider().Logger("showcase").Emit(ctx, rec)

	require.NoError(t, tel.ForceFlush(ctx))
	bodies, _ := exp.snapshot()
	assert.Equal(t, []string{"catalog loaded"}, bodies)

	require.NoError(t, tel.Shutdown(ctx))
	_, stopped := exp.snapshot()
	assert.True(t, stopped, "shutdown stops the logger provider")
}

func TestLoggerProvider_FallsBackToGlobal(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, global.GetLoggerProvider(), tel.LoggerProvider())

	var nilTel *Telemetry
	assert.NotNil(t, nilTel.LoggerProvider())
}

func TestNew_EnabledInstallsLoggerProvider(t *testing.T) {
	prevLogs, prevTraces := global.GetLoggerProvider(), otel.GetTracerProvider()
	t.Cleanup(func() {
		global.SetLoggerProvider(prevLogs)
		otel.SetTracerProvider(prevTraces)
	})

	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.Metrics.Enabled = false

	// OTLP exporters connect lazily, so an unreachable collector still
	// yields running providers.
	tel, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, tel.loggerProvider)
	assert.Equal(t, tel.LoggerProvider(), global.GetLoggerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = tel.Shutdown(ctx)
}
