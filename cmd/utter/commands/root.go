package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"utter/internal/app"
	"utter/internal/client"
	"utter/internal/logging"
)

var (
	cfg    app.Config
	wire   *app.Wire
	logger *zap.Logger
)

func Execute() error {
	cfg = app.LoadConfig()

	root := &cobra.Command{
		Use:          "utter",
		Short:        "End-to-end encrypted messaging between your devices",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(logging.FromEnv("utter"))
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cfg, logger)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logging.Sync(logger)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.Home, "home", cfg.Home, "config dir (env UTTER_HOME)")
	pf.StringVarP(&cfg.Passphrase, "passphrase", "p", cfg.Passphrase, "passphrase sealing the identity key (env UTTER_PASSPHRASE)")
	pf.StringVar(&cfg.RelayURL, "relay", cfg.RelayURL, "relay WebSocket URL (env UTTER_RELAY_URL)")
	pf.StringVar(&cfg.DeviceID, "device-id", cfg.DeviceID, "device id announced to the relay (env UTTER_DEVICE_ID)")
	pf.StringVar(&cfg.DeviceName, "device-name", cfg.DeviceName, "device name announced to the relay (env UTTER_DEVICE_NAME)")
	pf.StringVar(&cfg.DeviceType, "device-type", cfg.DeviceType, "controller or target (env UTTER_DEVICE_TYPE)")
	pf.StringVar(&cfg.Token, "token", cfg.Token, "registration token (env UTTER_TOKEN)")
	pf.DurationVar(&cfg.ReconnectDelay, "reconnect-delay", cfg.ReconnectDelay, "wait between reconnect attempts (env UTTER_RECONNECT_DELAY)")
	pf.DurationVar(&cfg.PingInterval, "ping-interval", cfg.PingInterval, "keepalive ping interval (env UTTER_PING_INTERVAL)")
	pf.DurationVar(&cfg.PongTimeout, "pong-timeout", cfg.PongTimeout, "reconnect after PingInterval plus this much silence (env UTTER_PONG_TIMEOUT)")

	root.AddCommand(initCmd(), fingerprintCmd(), statusCmd(), devicesCmd(), sendCmd(), listenCmd())
	return root.Execute()
}

// connect starts a client in the background and waits for registration.
// The returned stop function disconnects and waits for Run to return.
func connect(ctx context.Context, listener client.Listener, timeout time.Duration) (*client.Client, func(), error) {
	c, err := wire.NewClient(listener)
	if err != nil {
		return nil, nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(runCtx)
	}()
	stop := func() {
		cancel()
		<-done
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, timeout)
	defer waitCancel()
	if err := c.Wait(waitCtx, func(s client.Status) bool { return s.State == client.StateRegistered }); err != nil {
		last := c.Status().LastError
		stop()
		if last != nil {
			return nil, nil, last
		}
		return nil, nil, err
	}
	return c, stop, nil
}
