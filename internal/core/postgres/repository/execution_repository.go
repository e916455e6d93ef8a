package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BuzzwordStrategies/MarketingOS/internal/core/ports"
	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
)

type executionRepository struct {
	db *gorm.DB
}

// NewExecutionRepository creates the Postgres-backed execution store.
func NewExecutionRepository(db *gorm.DB) ports.ExecutionStore {
	return &executionRepository{db: db}
}

// Migrate creates or updates the executions and tasks tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.WorkflowExecution{}, &domain.WorkflowTask{})
}

func (r *executionRepository) CreateExecution(ctx context.Context, execution *domain.WorkflowExecution) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Tasks are created through the association in the same
		// transaction, so the execution is never visible without them.
		return tx.Create(execution).Error
	})
}

func (r *executionRepository) GetExecution(ctx context.Context, executionID uuid.UUID) (*domain.WorkflowExecution, error) {
	var execution domain.WorkflowExecution
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Where("id = ?", executionID).
		First(&execution).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrExecutionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &execution, nil
}

func (r *executionRepository) ListRunning(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.WorkflowExecution{}).
		Where("status = ?", domain.WorkflowRunning).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *executionRepository) MarkExecutionRunning(ctx context.Context, executionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.WorkflowExecution{}).
		Where("id = ? AND status = ?", executionID, domain.WorkflowPending).
		Update("status", domain.WorkflowRunning).Error
}

func (r *executionRepository) MarkTaskRunning(ctx context.Context, taskID uuid.UUID, startedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.WorkflowTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":     domain.TaskRunning,
			"started_at": startedAt,
		}).Error
}

// CompleteTask commits the task result and the execution's recomputed
// progress in one transaction, so progress can never lag a terminal task for
// any reader.
func (r *executionRepository) CompleteTask(ctx context.Context, executionID, taskID uuid.UUID, result datatypes.JSON, completedAt time.Time, progress int, outputs datatypes.JSON) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.WorkflowTask{}).
			Where("id = ?", taskID).
			Updates(map[string]interface{}{
				"status":       domain.TaskCompleted,
				"result":       result,
				"completed_at": completedAt,
			}).Error; err != nil {
			return err
		}
		return r.advanceExecution(tx, executionID, progress, outputs)
	})
}

func (r *executionRepository) FailTask(ctx context.Context, executionID, taskID uuid.UUID, errMessage string, completedAt time.Time, progress int, outputs datatypes.JSON) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.WorkflowTask{}).
			Where("id = ?", taskID).
			Updates(map[string]interface{}{
				"status":        domain.TaskFailed,
				"error_message": errMessage,
				"completed_at":  completedAt,
			}).Error; err != nil {
			return err
		}
		return r.advanceExecution(tx, executionID, progress, outputs)
	})
}

// advanceExecution records derived progress and accumulated outputs. The
// status guard keeps a late write from resurrecting an execution that
// already reached a terminal status.
func (r *executionRepository) advanceExecution(tx *gorm.DB, executionID uuid.UUID, progress int, outputs datatypes.JSON) error {
	return tx.Model(&domain.WorkflowExecution{}).
		Where("id = ? AND status NOT IN ?", executionID, terminalStatuses()).
		Updates(map[string]interface{}{
			"progress_percent": progress,
			"outputs":          outputs,
		}).Error
}

func (r *executionRepository) FinalizeExecution(ctx context.Context, executionID uuid.UUID, status domain.WorkflowStatus, progress int, attribution datatypes.JSON, completedAt time.Time) error {
	updates := map[string]interface{}{
		"status":           status,
		"progress_percent": progress,
		"completed_at":     completedAt,
	}
	if attribution != nil {
		updates["attribution"] = attribution
	}
	// RowsAffected == 0 means the execution was already terminal; the
	// first finalize won and this one is a no-op.
	return r.db.WithContext(ctx).
		Model(&domain.WorkflowExecution{}).
		Where("id = ? AND status NOT IN ?", executionID, terminalStatuses()).
		Updates(updates).Error
}

func terminalStatuses() []domain.WorkflowStatus {
	return []domain.WorkflowStatus{
		domain.WorkflowCompleted,
		domain.WorkflowFailed,
		domain.WorkflowCancelled,
	}
}
