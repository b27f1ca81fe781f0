package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"utter/internal/crypto"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate the identity key if missing and print its fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, fp, err := wire.Identity.LoadOrGenerateIdentity(cfg.Passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Identity ready in %s\nFingerprint: %s\nPublic key:  %s\n",
				cfg.Home, fp, crypto.B64(id.Public.Slice()))
			return nil
		},
	}
}
