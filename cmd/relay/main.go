package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"utter/internal/app"
	"utter/internal/logging"
	"utter/internal/relay/server"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cfg := app.LoadRelayConfig()
	var tokens string

	cmd := &cobra.Command{
		Use:          "relay",
		Short:        "Run the utter WebSocket relay",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("auth-tokens") {
				cfg.AuthTokens = app.SplitList(tokens)
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address (env UTTER_RELAY_ADDR)")
	f.DurationVar(&cfg.PingInterval, "ping-interval", cfg.PingInterval, "keepalive ping interval (env UTTER_PING_INTERVAL)")
	f.DurationVar(&cfg.PongTimeout, "pong-timeout", cfg.PongTimeout, "drop sessions silent this long after a ping (env UTTER_PONG_TIMEOUT)")
	f.DurationVar(&cfg.CloseTimeout, "close-timeout", cfg.CloseTimeout, "close handshake deadline (env UTTER_CLOSE_TIMEOUT)")
	f.IntVar(&cfg.SendBuffer, "send-buffer", cfg.SendBuffer, "frames queued per session (env UTTER_SEND_BUFFER)")
	f.StringVar(&tokens, "auth-tokens", "", "comma-separated registration tokens; empty trusts everyone (env UTTER_AUTH_TOKENS)")
	return cmd
}

func run(ctx context.Context, cfg app.RelayConfig) error {
	logger, err := logging.New(logging.FromEnv("utter-relay"))
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	relay := app.NewRelay(cfg, logger)
	ms := server.NewManagedServer("relay", server.DefaultHTTPConfig(cfg.Addr, relay.Handler(), logger))
	if err := ms.Start(); err != nil {
		logger.Error("relay failed to start", zap.Error(err))
		return err
	}
	logger.Info("relay started",
		zap.Duration("ping_interval", cfg.PingInterval),
		zap.Duration("pong_timeout", cfg.PongTimeout),
		zap.Bool("auth", len(cfg.AuthTokens) > 0),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down relay")
	case serveErr = <-ms.Err():
		logger.Error("relay stopped", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.CloseTimeout+5*time.Second)
	defer cancel()
	ms.Shutdown(shutdownCtx)
	relay.Close()

	logger.Info("relay stopped")
	return serveErr
}
