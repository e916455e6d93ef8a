package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
)

// ExecutionStore is the durable home of executions and their tasks. The
// engine is the single writer for any given execution; the store only has to
// keep concurrent writes for different executions from interfering and to
// make every committed write visible to subsequent reads in the process.
//
// CompleteTask and FailTask update the task row and the execution's derived
// progress/outputs in one transaction, so no reader can ever observe a
// terminal task whose execution progress has not caught up.
type ExecutionStore interface {
	// CreateExecution persists the execution and all its task records in
	// one transaction.
	CreateExecution(ctx context.Context, execution *domain.WorkflowExecution) error

	// GetExecution loads an execution with its tasks ordered by
	// order_index. Returns domain.ErrExecutionNotFound for unknown ids.
	GetExecution(ctx context.Context, executionID uuid.UUID) (*domain.WorkflowExecution, error)

	// ListRunning returns the ids of executions currently RUNNING.
	ListRunning(ctx context.Context) ([]uuid.UUID, error)

	// MarkExecutionRunning moves a PENDING execution to RUNNING.
	MarkExecutionRunning(ctx context.Context, executionID uuid.UUID) error

	MarkTaskRunning(ctx context.Context, taskID uuid.UUID, startedAt time.Time) error

	CompleteTask(ctx context.Context, executionID, taskID uuid.UUID, result datatypes.JSON, completedAt time.Time, progress int, outputs datatypes.JSON) error

	FailTask(ctx context.Context, executionID, taskID uuid.UUID, errMessage string, completedAt time.Time, progress int, outputs datatypes.JSON) error

	// FinalizeExecution moves the execution to a terminal status. The
	// store must refuse to move an already-terminal execution so a
	// finalize can never be applied twice.
	FinalizeExecution(ctx context.Context, executionID uuid.UUID, status domain.WorkflowStatus, progress int, attribution datatypes.JSON, completedAt time.Time) error
}

// Notifier delivers full execution snapshots to external observers after
// each mutation. Delivery is at-least-once; a slow observer may miss
// intermediate states (latest wins) but always sees the terminal snapshot.
type Notifier interface {
	PublishExecutionUpdated(ctx context.Context, execution *domain.WorkflowExecution) error

	// Subscribe opens a snapshot stream for one execution. The returned
	// cancel func releases the subscription and closes the channel.
	Subscribe(ctx context.Context, executionID uuid.UUID) (<-chan *domain.WorkflowExecution, func(), error)
}
