package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestSetupPrometheusExporterDisabled(t *testing.T) {
	reader, mux, err := SetupPrometheusExporter(PrometheusConfig{})
	require.NoError(t, err)
	assert.Nil(t, reader)
	assert.Nil(t, mux)
}

func TestSetupPrometheusExporterServesRegistry(t *testing.T) {
	reader, mux, err := SetupPrometheusExporter(PrometheusConfig{Enabled: true, Endpoint: "/diff-metrics"})
	require.NoError(t, err)

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	counter, err := provider.Meter("test").Int64Counter("diff.checks")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/diff-metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "diff_checks")
	assert.Contains(t, string(body), "go_goroutines")

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
