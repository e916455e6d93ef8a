package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/BuzzwordStrategies/MarketingOS/internal/core/ports"
	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
)

// Store is the in-memory execution store. Reads return deep copies so
// observers never see the engine's in-flight mutations. Task transitions and
// the execution's derived progress commit under one lock acquisition, which
// gives the same atomicity the Postgres store gets from a transaction.
type Store struct {
	mu         sync.RWMutex
	executions map[uuid.UUID]*domain.WorkflowExecution
	taskIndex  map[uuid.UUID]uuid.UUID // task id -> execution id
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		executions: make(map[uuid.UUID]*domain.WorkflowExecution),
		taskIndex:  make(map[uuid.UUID]uuid.UUID),
	}
}

var _ ports.ExecutionStore = (*Store)(nil)

func (s *Store) CreateExecution(_ context.Context, execution *domain.WorkflowExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.executions[execution.ID]; ok {
		return fmt.Errorf("execution %s already exists", execution.ID)
	}
	s.executions[execution.ID] = cloneExecution(execution)
	for _, t := range execution.Tasks {
		s.taskIndex[t.ID] = execution.ID
	}
	return nil
}

func (s *Store) GetExecution(_ context.Context, executionID uuid.UUID) (*domain.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	execution, ok := s.executions[executionID]
	if !ok {
		return nil, domain.ErrExecutionNotFound
	}
	return cloneExecution(execution), nil
}

func (s *Store) ListRunning(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []uuid.UUID
	for id, execution := range s.executions {
		if execution.Status == domain.WorkflowRunning {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) MarkExecutionRunning(_ context.Context, executionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	execution, ok := s.executions[executionID]
	if !ok {
		return domain.ErrExecutionNotFound
	}
	if execution.Status == domain.WorkflowPending {
		execution.Status = domain.WorkflowRunning
		execution.UpdatedAt = time.Now()
	}
	return nil
}

func (s *Store) MarkTaskRunning(_ context.Context, taskID uuid.UUID, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	task.Status = domain.TaskRunning
	st := startedAt
	task.StartedAt = &st
	task.UpdatedAt = time.Now()
	return nil
}

func (s *Store) CompleteTask(_ context.Context, executionID, taskID uuid.UUID, result datatypes.JSON, completedAt time.Time, progress int, outputs datatypes.JSON) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	task.Status = domain.TaskCompleted
	task.Result = append(datatypes.JSON(nil), result...)
	ct := completedAt
	task.CompletedAt = &ct
	task.UpdatedAt = time.Now()
	return s.advanceExecution(executionID, progress, outputs)
}

func (s *Store) FailTask(_ context.Context, executionID, taskID uuid.UUID, errMessage string, completedAt time.Time, progress int, outputs datatypes.JSON) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	task.Status = domain.TaskFailed
	task.ErrorMessage = errMessage
	ct := completedAt
	task.CompletedAt = &ct
	task.UpdatedAt = time.Now()
	return s.advanceExecution(executionID, progress, outputs)
}

func (s *Store) FinalizeExecution(_ context.Context, executionID uuid.UUID, status domain.WorkflowStatus, progress int, attribution datatypes.JSON, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	execution, ok := s.executions[executionID]
	if !ok {
		return domain.ErrExecutionNotFound
	}
	// First finalize wins; later attempts are no-ops.
	if execution.Status.IsTerminal() {
		return nil
	}
	execution.Status = status
	execution.ProgressPercent = progress
	if attribution != nil {
		execution.Attribution = append(datatypes.JSON(nil), attribution...)
	}
	ct := completedAt
	execution.CompletedAt = &ct
	execution.UpdatedAt = time.Now()
	return nil
}

// advanceExecution is called with the lock held.
func (s *Store) advanceExecution(executionID uuid.UUID, progress int, outputs datatypes.JSON) error {
	execution, ok := s.executions[executionID]
	if !ok {
		return domain.ErrExecutionNotFound
	}
	if execution.Status.IsTerminal() {
		return nil
	}
	execution.ProgressPercent = progress
	execution.Outputs = append(datatypes.JSON(nil), outputs...)
	execution.UpdatedAt = time.Now()
	return nil
}

// findTask is called with the lock held.
func (s *Store) findTask(taskID uuid.UUID) (*domain.WorkflowTask, error) {
	executionID, ok := s.taskIndex[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s not found", taskID)
	}
	execution := s.executions[executionID]
	for i := range execution.Tasks {
		if execution.Tasks[i].ID == taskID {
			return &execution.Tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %s not found", taskID)
}

func cloneExecution(in *domain.WorkflowExecution) *domain.WorkflowExecution {
	out := *in
	out.Inputs = append(datatypes.JSON(nil), in.Inputs...)
	out.Outputs = append(datatypes.JSON(nil), in.Outputs...)
	out.Attribution = append(datatypes.JSON(nil), in.Attribution...)
	out.Tasks = make([]domain.WorkflowTask, len(in.Tasks))
	for i, t := range in.Tasks {
		tc := t
		tc.Result = append(datatypes.JSON(nil), t.Result...)
		if t.StartedAt != nil {
			st := *t.StartedAt
			tc.StartedAt = &st
		}
		if t.CompletedAt != nil {
			ct := *t.CompletedAt
			tc.CompletedAt = &ct
		}
		out.Tasks[i] = tc
	}
	return &out
}
