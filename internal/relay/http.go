package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Health is the relay's /health response.
type Health struct {
	Status  string `json:"status"`
	Devices int    `json:"devices"`
}

// HTTP talks to a relay's plain HTTP endpoints.
type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP accepts either the relay's WebSocket URL or an http(s) base URL.
func NewHTTP(relayURL string) (*HTTP, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, fmt.Errorf("relay url: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		return nil, fmt.Errorf("relay url: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/ws"), "/")
	u.RawQuery = ""
	return &HTTP{Base: u.String(), HTTP: http.DefaultClient}, nil
}

// Health fetches the relay's liveness and directory size.
func (c *HTTP) Health(ctx context.Context) (Health, error) {
	var out Health
	if err := c.getJSON(ctx, "/health", &out); err != nil {
		return Health{}, err
	}
	return out, nil
}

func (c *HTTP) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay get %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
