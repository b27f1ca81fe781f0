package client_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"utter/internal/client"
	"utter/internal/crypto"
	"utter/internal/domain"
	"utter/internal/relay/server"
)

type inbox struct {
	client.NopListener
	mu     sync.Mutex
	msgs   []string
	states []client.State
}

func (i *inbox) OnMessage(m domain.DecryptedMessage) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.msgs = append(i.msgs, string(m.Plaintext))
}

func (i *inbox) OnState(s client.State) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.states = append(i.states, s)
}

func (i *inbox) snapshot() ([]string, []client.State) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.msgs...), append([]client.State(nil), i.states...)
}

type device struct {
	c      *client.Client
	box    *inbox
	cancel context.CancelFunc
	done   chan struct{}
}

func startRelay(t *testing.T) (*server.Server, string) {
	t.Helper()
	return startRelayWith(t, server.Config{})
}

func startRelayWith(t *testing.T, cfg server.Config) (*server.Server, string) {
	t.Helper()
	srv := server.New(cfg, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func startDevice(t *testing.T, url string, dev domain.Device) *device {
	t.Helper()
	return startDeviceWith(t, url, dev, nil)
}

func startDeviceWith(t *testing.T, url string, dev domain.Device, dialer client.Dialer) *device {
	t.Helper()
	priv, pub, err := crypto.GenerateX25519()
	require.NoError(t, err)

	box := &inbox{}
	c := client.New(client.Config{
		RelayURL:       url,
		Device:         dev,
		ReconnectDelay: 50 * time.Millisecond,
		Dialer:         dialer,
		Listener:       box,
	}, domain.Identity{Private: priv, Public: pub})

	ctx, cancel := context.WithCancel(context.Background())
	d := &device{c: c, box: box, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(d.done)
		_ = c.Run(ctx)
	}()
	t.Cleanup(d.stop)
	return d
}

func (d *device) stop() {
	d.cancel()
	<-d.done
}

func waitFor(t *testing.T, c *client.Client, cond func(client.Status) bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx, cond))
}

func hasDevice(id domain.DeviceID) func(client.Status) bool {
	return func(s client.Status) bool {
		for _, d := range s.Devices {
			if d.ID == id {
				return true
			}
		}
		return false
	}
}

func TestHelloThroughRelay(t *testing.T) {
	_, url := startRelay(t)
	a := startDevice(t, url, domain.Device{ID: "a1", Name: "phone", Type: domain.DeviceTypeController})
	b := startDevice(t, url, domain.Device{ID: "b1", Name: "laptop", Type: domain.DeviceTypeTarget})

	waitFor(t, a.c, hasDevice("b1"))
	require.NoError(t, a.c.SelectTarget("b1"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.c.SendWait(ctx, []byte("hello")))

	waitFor(t, b.c, func(s client.Status) bool { return s.Received == 1 })
	msgs, _ := b.box.snapshot()
	require.Equal(t, []string{"hello"}, msgs)
}

func TestReconnectRestoresTargetByName(t *testing.T) {
	srv, url := startRelay(t)
	a := startDevice(t, url, domain.Device{ID: "a1", Name: "phone"})
	b := startDevice(t, url, domain.Device{ID: "b1", Name: "laptop", Type: domain.DeviceTypeTarget})

	waitFor(t, a.c, hasDevice("b1"))
	require.NoError(t, a.c.SelectTarget("b1"))

	// Relay drops the controller; it must come back on its own.
	require.True(t, srv.Kick("a1"))
	waitFor(t, a.c, func(s client.Status) bool { return s.Reconnects >= 1 && s.State == client.StateRegistered })

	_, states := a.box.snapshot()
	require.Contains(t, states, client.StateReconnecting)
	require.Contains(t, states, client.StateConnecting)
	require.Equal(t, client.StateRegistered, states[len(states)-1])

	// The target goes away and returns under a new transient id.
	b.stop()
	waitFor(t, a.c, func(s client.Status) bool { return s.Target.DeviceID == "" })
	require.Equal(t, "laptop", a.c.Target().DeviceName)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.ErrorIs(t, a.c.SendWait(ctx, []byte("lost")), client.ErrRecipientUnavailable)

	b2 := startDevice(t, url, domain.Device{ID: "b2", Name: "laptop", Type: domain.DeviceTypeTarget})
	waitFor(t, a.c, func(s client.Status) bool { return s.Target.DeviceID == "b2" })

	require.NoError(t, a.c.SendWait(ctx, []byte("welcome back")))
	waitFor(t, b2.c, func(s client.Status) bool { return s.Received == 1 })
	msgs, _ := b2.box.snapshot()
	require.Equal(t, []string{"welcome back"}, msgs)
}

func TestSendToUnknownRecipient(t *testing.T) {
	srv, url := startRelay(t)
	a := startDevice(t, url, domain.Device{ID: "a1", Name: "phone"})
	startDevice(t, url, domain.Device{ID: "b1", Name: "laptop"})

	waitFor(t, a.c, hasDevice("b1"))
	require.NoError(t, a.c.SelectTarget("b1"))

	// Remove b1 from the relay before the controller hears about it.
	srv.Directory().Unregister("b1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.ErrorIs(t, a.c.SendWait(ctx, []byte("x")), client.ErrRecipientUnavailable)
}

func TestClientKeepaliveOutlastsSlowRelayPings(t *testing.T) {
	// The relay pings far less often than the client's read window.
	_, url := startRelayWith(t, server.Config{PingInterval: 5 * time.Second, PongTimeout: time.Second})
	a := startDeviceWith(t, url, domain.Device{ID: "a1", Name: "phone"}, client.WebSocketDialer{
		PingInterval: 100 * time.Millisecond,
		PongTimeout:  200 * time.Millisecond,
	})
	waitFor(t, a.c, func(s client.Status) bool { return s.State == client.StateRegistered })

	time.Sleep(1500 * time.Millisecond)

	st := a.c.Status()
	require.Equal(t, client.StateRegistered, st.State)
	require.Zero(t, st.Reconnects)
	require.NoError(t, st.LastError)
}
