package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an account identity and store it securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if _, ok, err := wire.Store.Load(accountName, passphrase); err == nil && ok {
				return fmt.Errorf("account already exists in %s", home)
			}
			account, err := newAccount()
			if err != nil {
				return err
			}
			if err := saveAccount(account); err != nil {
				return err
			}
			keys := account.IdentityKeys()
			fmt.Printf("Account created.\ncurve25519: %s\ned25519:    %s\n", keys.Curve25519, keys.Ed25519)
			return nil
		},
	}
}
