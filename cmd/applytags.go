package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/core/services/integration"
	logger2 "gitlab.com/casesync.net/internal/global/logger"
	"gitlab.com/casesync.net/internal/static/errs"
)

func newApplyTagsCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "apply-tags",
		Short: "Write recorded case-id tags into the feature files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logger2.Logger.With("command", cmd.Name())
			defer logger.Sync()

			cfg := loadConfig()
			b, err := openBackends(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer b.close()

			var ledger secondary.TagActionRepository
			switch source {
			case "report":
				ledger = b.report
			case "database":
				if b.database == nil {
					return fmt.Errorf("%w: DATABASE_URL is not set", errs.ErrConfiguration)
				}
				ledger = b.database
			default:
				return fmt.Errorf("%w: unknown source %q", errs.ErrConfiguration, source)
			}

			applied, err := integration.ApplyTags(ctx, ledger, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d tag(s)\n", applied)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "report", "where pending actions are read from: report or database")
	return cmd
}
