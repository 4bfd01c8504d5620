// Package actionrepository stores tag actions in PostgreSQL so they survive
// between the synchronization pass and the tag write-back.
package actionrepository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/domain"
)

var _ secondary.TagActionRepository = &ActionRepository{}

type ActionRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

func NewActionRepository(db *sqlx.DB, logger primary.Logger) *ActionRepository {
	return &ActionRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the ledger table when it does not exist yet.
func (r *ActionRepository) EnsureSchema(ctx context.Context) error {
	tbl := domain.GetTagActionTable()
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s UUID PRIMARY KEY,
			%s BIGINT NOT NULL,
			%s BIGINT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s INTEGER NOT NULL,
			%s TIMESTAMPTZ NOT NULL,
			%s TIMESTAMPTZ
		)`,
		tbl.TableName(),
		tbl.ID, tbl.SuiteID, tbl.CaseID, tbl.Tag, tbl.Title,
		tbl.SourcePath, tbl.Line, tbl.CreatedAt, tbl.AppliedAt,
	)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		r.logger.Error("Failed to create tag action table", "error", err)
		return fmt.Errorf("failed to create tag action table: %w", err)
	}
	return nil
}

func (r *ActionRepository) SaveActions(ctx context.Context, actions []domain.TagAction) error {
	if len(actions) == 0 {
		return nil
	}

	tbl := domain.GetTagActionTable()
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES (:%s, :%s, :%s, :%s, :%s, :%s, :%s, :%s, :%s)
		ON CONFLICT (%s) DO NOTHING`,
		tbl.TableName(),
		tbl.ID, tbl.SuiteID, tbl.CaseID, tbl.Tag, tbl.Title, tbl.SourcePath, tbl.Line, tbl.CreatedAt, tbl.AppliedAt,
		tbl.ID, tbl.SuiteID, tbl.CaseID, tbl.Tag, tbl.Title, tbl.SourcePath, tbl.Line, tbl.CreatedAt, tbl.AppliedAt,
		tbl.ID,
	)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if the transaction is committed

	for _, a := range actions {
		if _, err := tx.NamedExecContext(ctx, query, a); err != nil {
			r.logger.Error("Failed to save tag action", "id", a.ID, "error", err)
			return fmt.Errorf("failed to save tag action %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit tag actions", "error", err)
		return fmt.Errorf("failed to commit tag actions: %w", err)
	}

	r.logger.Debug("Saved tag actions", "count", len(actions))
	return nil
}

func (r *ActionRepository) PendingActions(ctx context.Context) ([]domain.TagAction, error) {
	tbl := domain.GetTagActionTable()
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s IS NULL
		ORDER BY %s, %s`,
		tbl.ID, tbl.SuiteID, tbl.CaseID, tbl.Tag, tbl.Title, tbl.SourcePath, tbl.Line, tbl.CreatedAt, tbl.AppliedAt,
		tbl.TableName(),
		tbl.AppliedAt,
		tbl.SourcePath, tbl.Line,
	)

	var actions []domain.TagAction
	if err := r.db.SelectContext(ctx, &actions, query); err != nil {
		r.logger.Error("Failed to get pending tag actions", "error", err)
		return nil, fmt.Errorf("failed to get pending tag actions: %w", err)
	}
	return actions, nil
}

func (r *ActionRepository) MarkApplied(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}

	tbl := domain.GetTagActionTable()
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = ANY($1::uuid[]) AND %s IS NULL`,
		tbl.TableName(), tbl.AppliedAt, tbl.ID, tbl.AppliedAt)

	result, err := r.db.ExecContext(ctx, query, pq.Array(values))
	if err != nil {
		r.logger.Error("Failed to mark tag actions applied", "error", err)
		return fmt.Errorf("failed to mark tag actions applied: %w", err)
	}

	rows, _ := result.RowsAffected()
	r.logger.Info("Marked tag actions applied", "requested", len(ids), "updated", rows)
	return nil
}
