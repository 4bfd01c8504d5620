package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/casesync.net/internal/domain"
)

// TagActionRepository stores the tag edits a synchronization pass asks for
// until they are written back into the feature documents.
type TagActionRepository interface {
	SaveActions(ctx context.Context, actions []domain.TagAction) error

	// PendingActions returns actions not yet applied, ordered by source path and line
	PendingActions(ctx context.Context) ([]domain.TagAction, error)

	MarkApplied(ctx context.Context, ids []uuid.UUID) error
}
