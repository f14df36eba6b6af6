package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"packsync/internal/canonical"
	"packsync/internal/crypto"
	"packsync/internal/domain"
	"packsync/internal/minisign"
)

func signCmd() *cobra.Command {
	var packID string
	cmd := &cobra.Command{
		Use:   "sign <file>",
		Short: "Hash and sign a pack file, writing <file>.minisig",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			id, err := wire.Identity.LoadIdentity(passphrase)
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			digest := domain.DigestOf(data)

			if packID == "" {
				packID = uuid.NewString()
			}
			createdAt := time.Now().UnixMilli()

			tuple := canonical.PackSigning{
				PackID:    domain.PackID(packID),
				SHA256:    digest,
				Size:      int64(len(data)),
				KeyID:     id.KeyID,
				CreatedAt: createdAt,
			}
			signed, err := tuple.Bytes()
			if err != nil {
				return err
			}

			sig := &minisign.Signature{
				UntrustedComment: fmt.Sprintf("signature for pack %s", packID),
				SignatureBytes:   crypto.SignEd25519(id.Priv, signed),
				TrustedComment:   fmt.Sprintf("timestamp:%d key_id:%s", createdAt, id.KeyID),
			}
			text := sig.Format()

			if err := os.WriteFile(path+".minisig", []byte(text), 0o644); err != nil {
				return err
			}

			// Register the pack locally so the verify path can run end to end.
			blobRef := "pack-" + packID
			if err := wire.Blobs.Write(blobRef, data); err != nil {
				return err
			}
			pack := domain.ContentPack{
				ID:            domain.PackID(packID),
				SizeBytes:     int64(len(data)),
				SHA256:        digest,
				KeyID:         id.KeyID,
				SignatureText: text,
				Status:        domain.StatusUnverified,
				CreatedAt:     createdAt,
				BlobRef:       blobRef,
			}
			if err := wire.Packs.Put(pack); err != nil {
				return err
			}

			fmt.Printf("Signed %s\nPack id: %s\nDigest: %s\n", path, packID, digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&packID, "pack-id", "", "pack identifier (default random)")
	return cmd
}
