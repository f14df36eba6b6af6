package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"packsync/internal/crypto"
	"packsync/internal/domain"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a signing identity and store it encrypted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			priv, pub, err := crypto.GenerateEd25519()
			if err != nil {
				return err
			}
			fp := crypto.Fingerprint(pub.Slice())
			id := domain.Identity{
				KeyID:     domain.KeyID(fp),
				Pub:       pub,
				Priv:      priv,
				CreatedAt: time.Now().UnixMilli(),
			}
			if err := wire.Identity.SaveIdentity(id, passphrase); err != nil {
				return err
			}
			fmt.Printf("Identity created.\nKey id: %s\nFingerprint: %s\n", id.KeyID, fp)
			return nil
		},
	}
}

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the identity fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.LoadIdentity(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Key id: %s\nFingerprint: %s\n", id.KeyID, crypto.Fingerprint(id.Pub.Slice()))
			return nil
		},
	}
}
