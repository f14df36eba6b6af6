package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"packsync/internal/domain"
	"packsync/internal/envelope"
	"packsync/internal/replay"
	"packsync/internal/store"
	"packsync/internal/syncer"
)

func syncCmd() *cobra.Command {
	var peerKeyHex, sharedSecret string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the background sync agent until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if sharedSecret == "" {
				return fmt.Errorf("shared secret required (--secret)")
			}
			id, err := wire.Identity.LoadIdentity(passphrase)
			if err != nil {
				return err
			}
			peerPub, err := parsePublicKey(peerKeyHex)
			if err != nil {
				return err
			}

			syncTopic := domain.Topic(wire.Config.Topic)
			key, err := envelope.DeriveKey(sharedSecret, envelope.SaltForTopic(string(syncTopic)))
			if err != nil {
				return err
			}

			guard, err := replay.NewGuard(replay.DefaultTTL,
				replay.WithStore(store.NewReplayFileStore(wire.Config.Home)),
				replay.WithLogger(wire.Log),
			)
			if err != nil {
				return err
			}
			env, err := envelope.New(syncTopic, key, id.Priv, peerPub, guard, wire.Log)
			if err != nil {
				return err
			}

			inbox := filepath.Join(wire.Config.Home, "inbox")
			if err := os.MkdirAll(inbox, 0o700); err != nil {
				return err
			}
			apply := func(docID domain.DocID, payload []byte) {
				dest := filepath.Join(inbox, string(docID)+".json")
				if err := os.WriteFile(dest, payload, 0o600); err != nil {
					wire.Log.WithError(err).WithField("doc", docID).Warn("could not store document")
					return
				}
				fmt.Printf("Received %s (%d bytes)\n", docID, len(payload))
			}

			agent := syncer.NewAgent(syncTopic, env, wire.Bus, wire.Cadence, apply, wire.Log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Syncing topic %q at %s cadence. Ctrl-C to stop.\n",
				syncTopic, wire.Cadence.Profile())
			return agent.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&peerKeyHex, "peer-key", "", "peer signing public key (hex)")
	cmd.Flags().StringVar(&sharedSecret, "secret", "", "shared secret the topic key derives from")
	_ = cmd.MarkFlagRequired("peer-key")
	return cmd
}
