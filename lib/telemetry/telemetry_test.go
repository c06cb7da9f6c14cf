package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestShutdownZeroValue(t *testing.T) {
	require.NoError(t, Telemetry{}.Shutdown(context.Background()))
}

func TestProtocol(t *testing.T) {
	testCases := []struct {
		name     string
		conn     OtlpConnConfig
		protocol exportProtocol
		endpoint string
	}{
		{name: "empty", conn: OtlpConnConfig{}, protocol: protocolNone},
		{name: "headers only", conn: OtlpConnConfig{Headers: map[string]string{"a": "b"}}, protocol: protocolNone},
		{name: "http", conn: OtlpConnConfig{HttpEndpoint: "http://localhost:4318"}, protocol: protocolHttp, endpoint: "http://localhost:4318"},
		{
			name:     "grpc wins",
			conn:     OtlpConnConfig{GrpcEndpoint: "http://localhost:4317", HttpEndpoint: "http://localhost:4318"},
			protocol: protocolGrpc,
			endpoint: "http://localhost:4317",
		},
	}
	for _, test := range testCases {
		require.Equal(t, test.protocol, test.conn.protocol(), test.name)
		require.Equal(t, test.endpoint, test.conn.endpoint(), test.name)
	}
}

func TestSetupTracesOnly(t *testing.T) {
	otel.SetMeterProvider(noop.NewMeterProvider())

	tel, err := Setup(context.Background(), "listingscraper-test", Config{
		Otlp: OtlpConfig{
			Traces: OtlpConnConfig{HttpEndpoint: "http://127.0.0.1:4318/v1/traces"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.Equal(t, tel.TracerProvider, otel.GetTracerProvider())
	require.IsType(t, noop.MeterProvider{}, otel.GetMeterProvider())

	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupNothingConfigured(t *testing.T) {
	tel, err := Setup(context.Background(), "listingscraper-test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
}
