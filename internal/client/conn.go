package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"utter/internal/protocol/wire"
)

// Conn is one message-oriented connection to the relay.
type Conn interface {
	// Read blocks until a frame arrives. Transport failures end the session.
	Read() (wire.Message, error)
	// Write sends a frame. It is safe to call from several goroutines.
	Write(m wire.Message) error
	Close() error
}

// Dialer opens connections to a relay.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebSocketDialer dials the relay over WebSocket and keeps the socket alive
// from both ends: it answers the relay's pings and sends its own every
// PingInterval. The connection is declared dead when nothing, pings and
// pongs included, arrives for PingInterval + PongTimeout. Since the client's
// own pings are answered promptly, the relay's ping cadence may be slower
// than that window.
type WebSocketDialer struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	Logger       *zap.Logger
}

func (d WebSocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	ping, pong := d.PingInterval, d.PongTimeout
	if ping <= 0 {
		ping = 20 * time.Second
	}
	if pong <= 0 {
		pong = 10 * time.Second
	}
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &wsConn{ws: ws, readWait: ping + pong, writeWait: pong, log: log, done: make(chan struct{})}
	c.extend()
	ws.SetPingHandler(func(data string) error {
		c.extend()
		err := ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(c.writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})
	ws.SetPongHandler(func(string) error {
		c.extend()
		return nil
	})
	go c.keepalive(ping)
	return c, nil
}

type wsConn struct {
	ws        *websocket.Conn
	readWait  time.Duration
	writeWait time.Duration
	log       *zap.Logger

	wmu       sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func (c *wsConn) extend() {
	_ = c.ws.SetReadDeadline(time.Now().Add(c.readWait))
}

// keepalive pings the relay until the connection is closed. A failed ping
// is left to the reader, whose deadline then expires.
func (c *wsConn) keepalive(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait)); err != nil {
				c.log.Debug("keepalive ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *wsConn) Read() (wire.Message, error) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return wire.Message{}, err
		}
		c.extend()
		m, err := wire.Decode(data)
		if err != nil {
			c.log.Warn("ignoring malformed frame from relay", zap.Error(err))
			continue
		}
		return m, nil
	}
}

func (c *wsConn) Write(m wire.Message) error {
	b, err := wire.Encode(m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.Type, err)
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeWait))
	return c.ws.Close()
}
