package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"utter/internal/client"
	"utter/internal/domain"
)

type devicesListener struct {
	client.NopListener
	snapshots chan []domain.Device
}

func (l devicesListener) OnDevices(d []domain.Device) {
	select {
	case l.snapshots <- d:
	default:
	}
}

func devicesCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List devices connected to the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			l := devicesListener{snapshots: make(chan []domain.Device, 1)}
			c, stop, err := connect(cmd.Context(), l, timeout)
			if err != nil {
				return err
			}
			defer stop()

			var list []domain.Device
			select {
			case list = <-l.snapshots:
			case <-time.After(timeout):
				return fmt.Errorf("relay sent no directory within %s", timeout)
			}

			target := c.Target()
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tNAME\tTYPE\tENCRYPTION\tLAST SEEN")
			for _, d := range list {
				mark := ""
				if d.ID == target.DeviceID {
					mark = "*"
				}
				enc := "yes"
				if !d.HasPublicKey() {
					enc = "no key"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					mark, d.ID, d.Name, d.Type, enc, d.LastSeen.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the relay")
	return cmd
}
