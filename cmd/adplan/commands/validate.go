package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/mapping"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the mapping configuration",
		Long: `Load the mapping configuration, apply defaults and check its
structure: required fields, attribute templates and the side-effect
generator blocks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mapping.LoadFile(mappingPath)
			if err != nil {
				return err
			}

			log.Info().
				Str("mapping", mappingPath).
				Str("defaultOU", cfg.DefaultOU).
				Int("attributes", len(cfg.Attributes)).
				Bool("createMissingOUs", cfg.CreateMissingOUs).
				Bool("overwriteExisting", cfg.OverwriteExisting).
				Msg("Mapping configuration is valid")
			return nil
		},
	}
}
