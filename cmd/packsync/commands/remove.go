package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"packsync/internal/domain"
)

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <pack-id>",
		Short: "Remove a pack's metadata, cached responses, blob and index entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := wire.Removal.RemovePack(cmd.Context(), domain.PackID(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("Removed %s (evicted %d cached responses, reindexed %d documents)\n",
				args[0], report.CacheEvicted, report.DocsReindexed)
			return nil
		},
	}
}
