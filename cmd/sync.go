package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gitlab.com/casesync.net/internal/adapter/testrail"
	"gitlab.com/casesync.net/internal/config"
	"gitlab.com/casesync.net/internal/core/services/integration"
	logger2 "gitlab.com/casesync.net/internal/global/logger"
	"gitlab.com/casesync.net/internal/static/errs"
)

func newSyncCmd() *cobra.Command {
	var labels []string
	var featuresRoot string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create TestRail cases for untagged scenarios",
		Long: `sync scans the feature tree of every configured suite, creates a case for
each scenario without an @C<id> tag and records the tag edits in the sync
report (and the database ledger when DATABASE_URL is set). Run apply-tags
afterwards to write the tags into the feature files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := logger2.Logger.With("command", cmd.Name())
			defer logger.Sync()

			cfg := loadConfig()
			if featuresRoot != "" {
				cfg.CorpusConfig.Root = featuresRoot
			}
			if !cfg.TestRail.Enabled {
				return fmt.Errorf("%w: TESTRAIL_ENABLED must be true to synchronize", errs.ErrConfiguration)
			}
			if err := cfg.TestRail.Validate(); err != nil {
				return err
			}

			suites, err := selectSuites(cfg.CorpusConfig, labels)
			if err != nil {
				return err
			}

			b, err := openBackends(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer b.close()

			client := testrail.NewClient(cfg.TestRail, cfg.ClientConfig, logger)
			pipeline := integration.NewPipeline(cfg.CorpusConfig, client, b.suiteLocker(), cfg.TestRail.ProjectID, logger, b.ledgers()...)

			reports, err := pipeline.Sync(ctx, suites)
			created, failed := 0, 0
			for _, r := range reports {
				if r == nil {
					continue
				}
				created += r.Created
				failed += r.Failed
			}
			if err != nil {
				return err
			}

			logger.Info("Synchronization complete", "created", created, "failed", failed, "report", b.report.Path())
			if created > 0 {
				logger.Info("Run apply-tags to write the new case ids into the feature files")
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d scenario(s) left without a case", errs.ErrCaseCreation, failed)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&labels, "suite", nil, "suite labels to synchronize (default all)")
	cmd.Flags().StringVar(&featuresRoot, "features-root", "", "override FEATURES_ROOT")
	return cmd
}

func selectSuites(corpus *config.CorpusConfig, labels []string) ([]config.SuiteConfig, error) {
	if len(labels) == 0 {
		return corpus.Suites, nil
	}
	suites := make([]config.SuiteConfig, 0, len(labels))
	for _, label := range labels {
		sc, ok := corpus.Suite(label)
		if !ok {
			return nil, fmt.Errorf("%w: unknown suite %q", errs.ErrConfiguration, label)
		}
		suites = append(suites, sc)
	}
	return suites, nil
}
