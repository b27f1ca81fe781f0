package server

import "time"

// Config tunes session keepalive and buffering.
type Config struct {
	PingInterval   time.Duration // how often the relay pings each session
	PongTimeout    time.Duration // grace after a ping before the session is dead
	CloseTimeout   time.Duration // deadline for the close handshake
	SendBuffer     int           // frames queued per session before drops
	MaxMessageSize int64         // largest accepted inbound frame
}

// DefaultConfig returns the recommended keepalive parameters.
func DefaultConfig() Config {
	return Config{
		PingInterval:   20 * time.Second,
		PongTimeout:    10 * time.Second,
		CloseTimeout:   5 * time.Second,
		SendBuffer:     64,
		MaxMessageSize: 1 << 20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = d.PongTimeout
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = d.CloseTimeout
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = d.SendBuffer
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	return c
}

// readWait is how long a session may stay silent, pongs included.
func (c Config) readWait() time.Duration { return c.PingInterval + c.PongTimeout }
