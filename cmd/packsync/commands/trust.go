package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"packsync/internal/domain"
)

func trustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trust",
		Short: "Manage trusted signing keys",
	}
	cmd.AddCommand(trustListCmd(), trustAddCmd(), trustRevokeCmd())
	return cmd
}

func trustListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trusted keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := wire.Trust.List()
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("No trusted keys.")
				return nil
			}
			for _, k := range keys {
				label := k.Label
				if label == "" {
					label = "-"
				}
				fmt.Printf("%s  %s  %s  %s\n",
					k.KeyID, k.Fingerprint, k.TrustedAt.Format("2006-01-02 15:04"), label)
			}
			return nil
		},
	}
}

func trustAddCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "add <key-id> <public-key-hex>",
		Short: "Trust a signing key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := parsePublicKey(args[1])
			if err != nil {
				return err
			}
			rec, err := wire.Trust.Trust(domain.KeyID(args[0]), pub, label)
			if err != nil {
				return err
			}
			fmt.Printf("Trusted %s (fingerprint %s)\n", rec.KeyID, rec.Fingerprint)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "display label for the key")
	return cmd
}

func trustRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <key-id>",
		Short: "Revoke a trusted key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Trust.Revoke(domain.KeyID(args[0])); err != nil {
				return err
			}
			fmt.Printf("Revoked %s\n", args[0])
			return nil
		},
	}
}

func parsePublicKey(s string) (domain.Ed25519Public, error) {
	var pub domain.Ed25519Public
	raw, err := hex.DecodeString(s)
	if err != nil {
		return pub, fmt.Errorf("public key must be hex: %w", err)
	}
	if len(raw) != len(pub) {
		return pub, fmt.Errorf("public key must be %d bytes, got %d", len(pub), len(raw))
	}
	copy(pub[:], raw)
	return pub, nil
}
