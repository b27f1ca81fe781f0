package app

import (
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"utter/internal/auth"
	"utter/internal/client"
	"utter/internal/domain"
	"utter/internal/relay/server"
	identitysvc "utter/internal/services/identity"
	"utter/internal/store"
)

// Version is reported to the relay at registration.
var Version = "dev"

// Wire bundles the stores and services the CLI needs.
type Wire struct {
	Config   Config
	Identity domain.IdentityService
	Targets  domain.TargetStore
	Logger   *zap.Logger
}

// NewWire constructs the dependency graph from cfg, creating the home
// directory with owner-only permissions.
func NewWire(cfg Config, logger *zap.Logger) (*Wire, error) {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, fmt.Errorf("create home %s: %w", cfg.Home, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wire{
		Config:   cfg,
		Identity: identitysvc.New(store.NewIdentityFileStore(cfg.Home)),
		Targets:  store.NewTargetFileStore(cfg.Home),
		Logger:   logger,
	}, nil
}

// Device describes the local device as it registers with the relay.
func (w *Wire) Device() domain.Device {
	return domain.Device{
		ID:       domain.DeviceID(w.Config.DeviceID),
		Name:     w.Config.DeviceName,
		Type:     domain.DeviceType(w.Config.DeviceType),
		Version:  Version,
		Platform: runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}

// NewClient loads (or creates) the identity and builds a relay client for it.
func (w *Wire) NewClient(listener client.Listener) (*client.Client, error) {
	id, fp, err := w.Identity.LoadOrGenerateIdentity(w.Config.Passphrase)
	if err != nil {
		return nil, err
	}
	w.Logger.Debug("identity loaded", zap.String("fingerprint", fp.String()))

	return client.New(client.Config{
		RelayURL:       w.Config.RelayURL,
		Device:         w.Device(),
		Token:          w.Config.Token,
		ReconnectDelay: w.Config.ReconnectDelay,
		Dialer: client.WebSocketDialer{
			PingInterval: w.Config.PingInterval,
			PongTimeout:  w.Config.PongTimeout,
			Logger:       w.Logger,
		},
		Targets:  w.Targets,
		Listener: listener,
		Logger:   w.Logger,
	}, id), nil
}

// NewRelay builds a relay server from cfg.
func NewRelay(cfg RelayConfig, logger *zap.Logger) *server.Server {
	return server.New(server.Config{
		PingInterval: cfg.PingInterval,
		PongTimeout:  cfg.PongTimeout,
		CloseTimeout: cfg.CloseTimeout,
		SendBuffer:   cfg.SendBuffer,
	}, auth.FromTokens(cfg.AuthTokens), logger)
}
