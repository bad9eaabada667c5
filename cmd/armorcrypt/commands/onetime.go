package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func onetimeCmd() *cobra.Command {
	var count uint
	cmd := &cobra.Command{
		Use:   "onetime",
		Short: "Generate one-time keys and print the public halves",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := loadAccount()
			if err != nil {
				return err
			}
			defer account.Wipe()
			keys, err := account.GenerateOneTimeKeys(wire.Rand, count)
			if err != nil {
				return err
			}
			if err := saveAccount(account); err != nil {
				return err
			}
			out, err := json.MarshalIndent(keys, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().UintVar(&count, "count", 5, "number of keys to generate")
	return cmd
}
