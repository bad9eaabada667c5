package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"armorcrypt/internal/crypto"
	"armorcrypt/internal/protocol/megolm"
)

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage group ratchet sessions",
	}
	cmd.AddCommand(groupNewCmd(), groupExportCmd())
	return cmd
}

func groupNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create an outbound group session",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := loadAccount()
			if err != nil {
				return err
			}
			defer account.Wipe()
			session, err := megolm.NewOutbound(wire.Rand, account.IdentityKeys().Curve25519)
			if err != nil {
				return err
			}
			defer session.Wipe()
			if err := saveGroupSession(session); err != nil {
				return err
			}
			fmt.Printf("Session created.\nid: %s\n", session.ID())
			return nil
		},
	}
}

func groupExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a group session key at its current ratchet position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadGroupSession(args[0])
			if err != nil {
				return err
			}
			defer session.Wipe()
			key, err := session.SessionKey()
			if err != nil {
				return err
			}
			fmt.Println(key)
			return nil
		},
	}
}

// Group sessions are stored one file per session, named by a fingerprint of
// the session id (ids are base64 and not filename-safe).
func groupSessionName(id string) string {
	return "group-" + crypto.Fingerprint([]byte(id))
}

func saveGroupSession(s *megolm.Session) error {
	blob, err := s.Pickle(nil)
	if err != nil {
		return err
	}
	return wire.Store.Save(groupSessionName(string(s.ID())), passphrase, blob)
}

func loadGroupSession(id string) (*megolm.Session, error) {
	blob, ok, err := wire.Store.Load(groupSessionName(id), passphrase)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no group session %q", id)
	}
	return megolm.Unpickle(nil, blob)
}
