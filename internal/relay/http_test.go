package relay_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"utter/internal/relay"
	"utter/internal/relay/server"
)

func TestNewHTTP_Schemes(t *testing.T) {
	cases := map[string]string{
		"ws://localhost:8080":       "http://localhost:8080",
		"wss://relay.example/ws":    "https://relay.example",
		"http://127.0.0.1:9000/":    "http://127.0.0.1:9000",
		"https://relay.example?x=1": "https://relay.example",
	}
	for in, want := range cases {
		c, err := relay.NewHTTP(in)
		require.NoError(t, err, in)
		require.Equal(t, want, c.Base, in)
	}

	_, err := relay.NewHTTP("ftp://relay.example")
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := server.New(server.Config{}, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c, err := relay.NewHTTP("ws" + strings.TrimPrefix(ts.URL, "http"))
	require.NoError(t, err)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", h.Status)
	require.Zero(t, h.Devices)
}

func TestHealth_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	c, err := relay.NewHTTP(ts.URL)
	require.NoError(t, err)
	_, err = c.Health(context.Background())
	require.ErrorContains(t, err, "404")
}
