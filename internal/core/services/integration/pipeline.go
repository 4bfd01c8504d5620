package integration

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gitlab.com/casesync.net/internal/config"
	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/core/services/casesync"
	"gitlab.com/casesync.net/internal/core/services/scanner"
	"gitlab.com/casesync.net/internal/core/services/suite"
	"gitlab.com/casesync.net/internal/core/services/tagwriter"
)

// Pipeline runs the offline side: synchronizing the corpus with TestRail and
// writing the resulting tags back.
type Pipeline struct {
	corpus   *config.CorpusConfig
	resolver *suite.Resolver
	sync     casesync.ICaseSynchronizer
	ledgers  []secondary.TagActionRepository
	logger   primary.Logger
}

// NewPipeline creates a pipeline; every ledger receives the tag actions of a pass.
func NewPipeline(
	corpus *config.CorpusConfig,
	repo secondary.RemoteTestRepository,
	locker secondary.SuiteLocker,
	projectID int64,
	logger primary.Logger,
	ledgers ...secondary.TagActionRepository,
) *Pipeline {
	return &Pipeline{
		corpus:   corpus,
		resolver: suite.NewResolver(repo, locker, projectID, logger),
		sync:     casesync.NewSynchronizer(repo, logger),
		ledgers:  ledgers,
		logger:   logger,
	}
}

// Sync synchronizes the given suites concurrently. A suite that cannot be
// resolved fails the call; case creation failures only show in the reports.
func (p *Pipeline) Sync(ctx context.Context, suites []config.SuiteConfig) ([]*casesync.Report, error) {
	reports := make([]*casesync.Report, len(suites))

	g, gctx := errgroup.WithContext(ctx)
	for i, sc := range suites {
		g.Go(func() error {
			report, err := p.syncSuite(gctx, sc)
			reports[i] = report
			return err
		})
	}
	err := g.Wait()

	for _, report := range reports {
		if report == nil || len(report.Actions) == 0 {
			continue
		}
		for _, ledger := range p.ledgers {
			if saveErr := ledger.SaveActions(ctx, report.Actions); saveErr != nil {
				p.logger.Error("Failed to record tag actions", "suiteId", report.SuiteID, "error", saveErr)
				err = errors.Join(err, saveErr)
			}
		}
	}
	return reports, err
}

func (p *Pipeline) syncSuite(ctx context.Context, sc config.SuiteConfig) (*casesync.Report, error) {
	suiteID, err := p.resolver.Resolve(ctx, sc.Name, sc.Description)
	if err != nil {
		return nil, err
	}

	root := p.corpus.SuiteRoot(sc)
	p.logger.Info("Synchronizing suite", "suite", sc.Name, "suiteId", suiteID, "root", root)
	s := scanner.New(root, p.logger)
	report, err := p.sync.Sync(ctx, suiteID, s.Scenarios(ctx))
	if err != nil {
		return report, fmt.Errorf("synchronizing %s: %w", sc.Label, err)
	}

	for _, failure := range report.Failures() {
		p.logger.Warn("Scenario left without case", "suite", sc.Name, "title", failure.Scenario.Title, "error", failure.Err)
	}
	return report, nil
}

// ApplyTags writes the pending actions of ledger into the corpus and marks the
// written ones applied. It returns how many actions were applied.
func ApplyTags(ctx context.Context, ledger secondary.TagActionRepository, logger primary.Logger) (int, error) {
	pending, err := ledger.PendingActions(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		logger.Info("No pending tag actions")
		return 0, nil
	}

	applied, writeErr := tagwriter.New(logger).Apply(pending)
	if err := ledger.MarkApplied(ctx, applied); err != nil {
		return 0, errors.Join(writeErr, err)
	}

	logger.Info("Tag write-back finished", "pending", len(pending), "applied", len(applied))
	return len(applied), writeErr
}
