package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskRunning   TaskStatus = "RUNNING"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskFailed    TaskStatus = "FAILED"
)

// WorkflowTask is one unit of orchestrated work inside an execution. Name,
// category and hint are copied from the template at creation time so
// definitions can change between runs without breaking history.
type WorkflowTask struct {
	ID          uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	ExecutionID uuid.UUID    `gorm:"type:uuid;index;not null" json:"execution_id"`
	OrderIndex  int          `gorm:"not null" json:"order_index"`
	Name        string       `gorm:"type:varchar(100);not null" json:"name"`
	Category    TaskCategory `gorm:"type:varchar(50);not null" json:"category"`
	Hint        string       `gorm:"type:varchar(100)" json:"hint,omitempty"`
	Critical    bool         `gorm:"default:false" json:"critical"`

	Status       TaskStatus     `gorm:"type:varchar(20);index;default:'PENDING'" json:"status"`
	Result       datatypes.JSON `gorm:"type:jsonb" json:"result,omitempty"`
	ErrorMessage string         `gorm:"type:text" json:"error_message,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask instantiates a pending task record from a template.
func NewTask(executionID uuid.UUID, orderIndex int, tmpl TaskTemplate) *WorkflowTask {
	return &WorkflowTask{
		ID:          uuid.New(),
		ExecutionID: executionID,
		OrderIndex:  orderIndex,
		Name:        tmpl.Name,
		Category:    tmpl.Category,
		Hint:        tmpl.ExecutorHint,
		Critical:    tmpl.Critical,
		Status:      TaskPending,
		CreatedAt:   time.Now(),
	}
}

// IsTerminal reports whether the task reached a final status.
func (t *WorkflowTask) IsTerminal() bool {
	return t.Status == TaskCompleted || t.Status == TaskFailed
}
