package main

import (
	"testing"

	"github.com/arloliu/segsieve/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestMetricsServer(t *testing.T) {
	srv := newMetricsServer("127.0.0.1:0", prometheus.NewRegistry(), logging.NewNop())

	require.NoError(t, srv.Start())
	require.NoError(t, srv.Shutdown())
}

func TestMetricsServer_BadAddress(t *testing.T) {
	srv := newMetricsServer("not-an-address", prometheus.NewRegistry(), logging.NewNop())
	require.Error(t, srv.Start())
}
