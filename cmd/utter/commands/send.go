package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"utter/internal/client"
	"utter/internal/domain"
)

// send <message...>: encrypt and send a message to the selected target.
func sendCmd() *cobra.Command {
	var (
		toID    string
		toName  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send <message...>",
		Short: "Encrypt and send a message to the target device",
		Long: `Encrypt and send a message to the target device.

The target is chosen with --to (device id) or --to-name (device name) and
remembered for later runs. A remembered name is re-bound automatically when
the target reconnects under a new id.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, stop, err := connect(cmd.Context(), nil, timeout)
			if err != nil {
				return err
			}
			defer stop()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			// Wait for the first directory snapshot before resolving the target.
			if err := c.Wait(ctx, func(s client.Status) bool { return len(s.Devices) > 0 }); err != nil {
				return fmt.Errorf("no other devices on the relay: %w", err)
			}

			switch {
			case toID != "":
				if err := c.SelectTarget(domain.DeviceID(toID)); err != nil {
					return err
				}
			case toName != "":
				c.SelectTargetByName(toName)
			}
			if c.Target().IsZero() {
				return fmt.Errorf("%w: use --to or --to-name", client.ErrNoTarget)
			}

			err = c.SendWait(ctx, []byte(strings.Join(args, " ")))
			switch {
			case errors.Is(err, client.ErrNoPublicKey):
				return fmt.Errorf("%w; nothing was sent", err)
			case err != nil:
				return err
			}
			t := c.Target()
			fmt.Printf("delivered to %s (%s)\n", t.DeviceName, t.DeviceID)
			return nil
		},
	}
	cmd.Flags().StringVar(&toID, "to", "", "target device id")
	cmd.Flags().StringVar(&toName, "to-name", "", "target device name")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the relay")
	cmd.MarkFlagsMutuallyExclusive("to", "to-name")
	return cmd
}
