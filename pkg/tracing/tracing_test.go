package tracing

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), DefaultConfig("storefront"))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_OTLP(t *testing.T) {
	restoreGlobals(t)

	cfg := DefaultConfig("storefront")
	cfg.Enabled = true
	cfg.OTLPEndpoint = "http://127.0.0.1:0/"

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)
	_ = shutdown(context.Background())
}

func TestInitTracer_Stdout(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	cfg := DefaultConfig("storefront")
	cfg.Enabled = true
	cfg.Exporter = ExporterStdout
	cfg.StdoutWriter = &buf

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)

	_, span := Tracer("test").Start(context.Background(), "render home")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "render home")
}

func TestInitTracer_UnknownExporter(t *testing.T) {
	cfg := DefaultConfig("storefront")
	cfg.Enabled = true
	cfg.Exporter = "zipkin"

	_, err := InitTracer(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zipkin")
}

func TestHostPort(t *testing.T) {
	assert.Equal(t, "collector:4318", hostPort("collector:4318"))
	assert.Equal(t, "collector:4318", hostPort("http://collector:4318/"))
	assert.Equal(t, "otel.example.com", hostPort("https://otel.example.com"))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestTransport_PropagatesTraceContext(t *testing.T) {
	restoreGlobals(t)

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var gotTraceparent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTraceparent = r.Header.Get("traceparent")
	}))
	defer server.Close()

	ctx, parent := tp.Tracer("test").Start(context.Background(), "page")
	client := &http.Client{Transport: Transport(nil)}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/cart", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	parent.End()

	assert.NotEmpty(t, gotTraceparent)

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "HTTP GET /api/cart")
}
