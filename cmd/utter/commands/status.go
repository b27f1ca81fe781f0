package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"utter/internal/relay"
)

func statusCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the local identity, saved target and relay health",
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := wire.Identity.FingerprintIdentity(cfg.Passphrase)
			if err != nil {
				return fmt.Errorf("no identity yet, run `utter init`: %w", err)
			}
			fmt.Printf("Device:      %s (%s, %s)\n", cfg.DeviceID, cfg.DeviceName, cfg.DeviceType)
			fmt.Printf("Fingerprint: %s\n", fp)

			if t, ok, err := wire.Targets.LoadTarget(); err == nil && ok {
				fmt.Printf("Target:      %s (%s)\n", t.DeviceName, t.DeviceID)
			}

			hc, err := relay.NewHTTP(cfg.RelayURL)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			h, err := hc.Health(ctx)
			if err != nil {
				fmt.Printf("Relay:       %s unreachable: %v\n", cfg.RelayURL, err)
				return nil
			}
			fmt.Printf("Relay:       %s %s, %d device(s) online\n", cfg.RelayURL, h.Status, h.Devices)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "relay health check timeout")
	return cmd
}
