package primary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/casesync.net/internal/domain"
)

// ScenarioHooks is what a test runner calls around every scenario execution.
// Implementations must be safe for concurrent scenarios and must never fail the caller.
type ScenarioHooks interface {
	// ScenarioStarted registers an execution and returns its id
	ScenarioStarted(ctx context.Context, scenario domain.Scenario) uuid.UUID

	// ScenarioFinished reports the outcome of the execution
	ScenarioFinished(ctx context.Context, executionID uuid.UUID, outcome domain.Outcome)

	// ScenarioAborted forgets the execution without reporting anything
	ScenarioAborted(executionID uuid.UUID)
}
