package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"utter/internal/client"
	"utter/internal/domain"
)

type printer struct{}

func (printer) OnState(s client.State) {
	fmt.Fprintf(os.Stderr, "-- %s\n", s)
}

func (printer) OnDevices(d []domain.Device) {
	fmt.Fprintf(os.Stderr, "-- %d other device(s) online\n", len(d))
}

func (printer) OnMessage(m domain.DecryptedMessage) {
	ts := time.UnixMilli(m.Timestamp).Local().Format(time.TimeOnly)
	fmt.Printf("[%s] %s: %s\n", ts, m.From, m.Plaintext)
}

func (printer) OnError(err error) {
	fmt.Fprintf(os.Stderr, "-- error: %v\n", err)
}

func listenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Stay connected and print incoming messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := wire.NewClient(printer{})
			if err != nil {
				return err
			}
			return c.Run(ctx)
		},
	}
}
