package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past planning runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := stores.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			if err := store.Init(cmd.Context()); err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.ListAnalyses(cmd.Context(), limit)
			if err != nil {
				return err
			}

			for _, info := range infos {
				log.Info().
					Str("analysis", info.ID).
					Time("created_at", info.CreatedAt).
					Int("rows", info.RowCount).
					Int("actions", info.TotalActions).
					Msg("Analysis")
			}
			if len(infos) == 0 {
				log.Info().Msg("No analyses recorded yet")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "adplan.db", "history database path")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries to list")

	return cmd
}
