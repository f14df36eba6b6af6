package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"packsync/internal/domain"
	"packsync/internal/hashwork"
	"packsync/internal/verify"
)

func verifyCmd() *cobra.Command {
	var keyHex, source string
	cmd := &cobra.Command{
		Use:   "verify <pack-id>",
		Short: "Verify a pack's signature against the trust store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, ok, err := wire.Packs.Get(domain.PackID(args[0]))
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrPackNotFound
			}

			presented, err := presentedKey(keyHex, pack.KeyID)
			if err != nil {
				return err
			}

			verifier := verify.New(wire.Trust, wire.Packs, wire.Blobs, wire.Log,
				verify.WithDecider(verify.DeciderFunc(promptTrust)),
				verify.WithProgress(func(p hashwork.Progress) {
					if p.TotalBytes > 0 {
						fmt.Fprintf(os.Stderr, "\rhashing %d/%d bytes", p.BytesProcessed, p.TotalBytes)
					}
				}),
			)

			out, err := verifier.Verify(cmd.Context(), pack, presented, source)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}

			fmt.Printf("Status: %s\n", out.Status)
			if out.Reason != "" {
				fmt.Printf("Reason: %s\n", out.Reason)
			}
			if out.Status == domain.StatusValid {
				fmt.Printf("Digest: %s\nKey: %s (%s)\n", out.Digest, out.KeyID, out.Fingerprint)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&keyHex, "key", "", "presented signer public key (hex; defaults to the trusted key)")
	cmd.Flags().StringVar(&source, "source", "local", "where the pack came from, shown in the trust prompt")
	return cmd
}

// presentedKey resolves the signer key offered for verification: an explicit
// --key flag, or the already-trusted key for the pack's key id.
func presentedKey(keyHex string, keyID domain.KeyID) (domain.Ed25519Public, error) {
	if keyHex != "" {
		return parsePublicKey(keyHex)
	}
	rec, ok, err := wire.Trust.Get(keyID)
	if err != nil {
		return domain.Ed25519Public{}, err
	}
	if !ok {
		return domain.Ed25519Public{}, fmt.Errorf("key %s is not trusted yet; pass --key", keyID)
	}
	return rec.PublicKey, nil
}

// promptTrust asks the operator whether to trust an unknown signing key.
func promptTrust(ctx context.Context, prompt verify.TrustPrompt) (bool, string, error) {
	fmt.Printf("Unknown signing key %s\nFingerprint: %s\nSource: %s\nTrust this key? [y/N]: ",
		prompt.KeyID, prompt.Fingerprint, prompt.SourceLabel)

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer <- strings.TrimSpace(line)
	}()

	select {
	case <-ctx.Done():
		return false, "", ctx.Err()
	case line := <-answer:
		if strings.EqualFold(line, "y") || strings.EqualFold(line, "yes") {
			return true, "", nil
		}
		return false, "", nil
	}
}
