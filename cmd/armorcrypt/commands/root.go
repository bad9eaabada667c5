package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"armorcrypt/internal/app"
	"armorcrypt/internal/protocol/olm"
)

var (
	home       string
	passphrase string
	wire       *app.Wire
)

const accountName = "account"

func Execute() error {
	root := &cobra.Command{
		Use:   "armorcrypt",
		Short: "Session and key management for end-to-end encrypted messaging",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".armorcrypt")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			wire = app.NewWire(app.Config{Home: home})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.armorcrypt)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting stored state")

	root.AddCommand(initCmd(), fingerprintCmd(), onetimeCmd(), groupCmd())
	return root.Execute()
}

func newAccount() (*olm.Account, error) {
	return olm.NewAccount(wire.Rand)
}

// loadAccount unpickles the stored account.
func loadAccount() (*olm.Account, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase required (-p)")
	}
	blob, ok, err := wire.Store.Load(accountName, passphrase)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no account found; run `armorcrypt init` first")
	}
	return olm.UnpickleAccount(nil, blob)
}

// saveAccount pickles the account back to the store. The pickle key is
// empty: the store's passphrase envelope protects the file at rest.
func saveAccount(a *olm.Account) error {
	blob, err := a.Pickle(nil)
	if err != nil {
		return err
	}
	return wire.Store.Save(accountName, passphrase, blob)
}
