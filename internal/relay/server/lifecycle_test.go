package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManagedServer_StartServeShutdown(t *testing.T) {
	srv := New(Config{}, nil, nil)
	ms := NewManagedServer("relay", DefaultHTTPConfig("127.0.0.1:0", srv.Handler(), zap.NewNop()))
	require.NoError(t, ms.Start())

	resp, err := http.Get(fmt.Sprintf("http://%s/health", ms.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ms.Shutdown(ctx)
	srv.Close()

	_, open := <-ms.Err()
	require.False(t, open)
}

func TestManagedServer_BindError(t *testing.T) {
	first := NewManagedServer("a", DefaultHTTPConfig("127.0.0.1:0", http.NotFoundHandler(), zap.NewNop()))
	require.NoError(t, first.Start())
	defer first.Shutdown(context.Background())

	second := NewManagedServer("b", DefaultHTTPConfig(first.Addr().String(), http.NotFoundHandler(), zap.NewNop()))
	require.Error(t, second.Start())
	require.Nil(t, second.Addr())
}
