// Package logging provides structured logging configuration.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration options.
type Config struct {
	Level   string // debug|info|warn|error
	Format  string // json|console
	Service string // value of the "service" field, e.g. utter-relay
}

// New creates a new configured zap logger.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
			return nil, err
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "json"
	}

	var zcfg zap.Config
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.LevelKey = "level"
	zcfg.EncoderConfig.MessageKey = "msg"
	zcfg.EncoderConfig.CallerKey = "caller"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}

	service := cfg.Service
	if service == "" {
		service = "utter"
	}
	return logger.With(zap.String("service", service)), nil
}

// Sync flushes any buffered log entries.
func Sync(logger *zap.Logger) {
	_ = logger.Sync()
}

// FromEnv creates a Config from environment variables.
func FromEnv(service string) Config {
	return Config{
		Level:   getenv("UTTER_LOG_LEVEL", "info"),
		Format:  getenv("UTTER_LOG_FORMAT", "json"),
		Service: service,
	}
}

func getenv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// Component returns a zap field for the component name.
func Component(name string) zap.Field { return zap.String("component", name) }

// Addr returns a zap field for an address.
func Addr(addr string) zap.Field { return zap.String("addr", addr) }

// RemoteAddr returns a zap field for a peer address.
func RemoteAddr(addr string) zap.Field { return zap.String("remote_addr", addr) }

// ConnID returns a zap field for a relay connection id.
func ConnID(id string) zap.Field { return zap.String("conn_id", id) }

// DeviceID returns a zap field for a device id.
func DeviceID(id string) zap.Field { return zap.String("device_id", id) }

// DeviceName returns a zap field for a device name.
func DeviceName(name string) zap.Field { return zap.String("device_name", name) }

// From returns a zap field for a message sender.
func From(id string) zap.Field { return zap.String("from", id) }

// To returns a zap field for a message recipient.
func To(id string) zap.Field { return zap.String("to", id) }

// Bytes returns a zap field for a payload size.
func Bytes(n int) zap.Field { return zap.Int("bytes", n) }

// MsgType returns a zap field for a wire message type.
func MsgType(t string) zap.Field { return zap.String("msg_type", t) }

// State returns a zap field for a connection state.
func State(s string) zap.Field { return zap.String("state", s) }
