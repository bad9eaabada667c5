package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"armorcrypt/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the account identity key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := loadAccount()
			if err != nil {
				return err
			}
			defer account.Wipe()
			keys := account.IdentityKeys()
			pub, err := crypto.B64Decode(keys.Curve25519)
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", crypto.Fingerprint(pub))
			return nil
		},
	}
}
