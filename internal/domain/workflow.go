package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "PENDING"
	WorkflowRunning   WorkflowStatus = "RUNNING"
	WorkflowCompleted WorkflowStatus = "COMPLETED"
	WorkflowFailed    WorkflowStatus = "FAILED"
	WorkflowCancelled WorkflowStatus = "CANCELLED"
)

// IsTerminal reports whether s is a final status.
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowCompleted || s == WorkflowFailed || s == WorkflowCancelled
}

// statusRank orders statuses so transitions can only move forward.
var statusRank = map[WorkflowStatus]int{
	WorkflowPending:   0,
	WorkflowRunning:   1,
	WorkflowCompleted: 2,
	WorkflowFailed:    2,
	WorkflowCancelled: 2,
}

// CanTransition reports whether moving from s to next is a legal forward
// move in the state machine. Terminal states accept no transition.
func (s WorkflowStatus) CanTransition(next WorkflowStatus) bool {
	if s.IsTerminal() {
		return false
	}
	return statusRank[next] > statusRank[s]
}

// WorkflowExecution is one concrete run of a workflow definition for a
// specific actor. Created together with its tasks in one transaction,
// mutated in place by the engine, finalized exactly once.
type WorkflowExecution struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WorkflowID string    `gorm:"type:varchar(50);index;not null" json:"workflow_id"`
	ActorID    uuid.UUID `gorm:"type:uuid;index;not null" json:"actor_id"`
	OwnerID    uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`

	Status WorkflowStatus `gorm:"type:varchar(20);index;default:'PENDING'" json:"status"`
	// ProgressPercent is derived from task counts and never settable on
	// its own; see Progress.
	ProgressPercent int `gorm:"default:0" json:"progress_percent"`

	Inputs      datatypes.JSON `gorm:"type:jsonb" json:"inputs"`
	Outputs     datatypes.JSON `gorm:"type:jsonb" json:"outputs,omitempty"`
	Attribution datatypes.JSON `gorm:"type:jsonb" json:"attribution,omitempty"`

	Tasks []WorkflowTask `gorm:"foreignKey:ExecutionID" json:"tasks"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewExecution instantiates a pending execution with one task record per
// template, in definition order.
func NewExecution(def *WorkflowDefinition, actorID, ownerID uuid.UUID, inputs datatypes.JSON) *WorkflowExecution {
	exec := &WorkflowExecution{
		ID:         uuid.New(),
		WorkflowID: def.ID,
		ActorID:    actorID,
		OwnerID:    ownerID,
		Status:     WorkflowPending,
		Inputs:     inputs,
		CreatedAt:  time.Now(),
	}
	for i, tmpl := range def.TaskTemplates {
		exec.Tasks = append(exec.Tasks, *NewTask(exec.ID, i, tmpl))
	}
	return exec
}

// Progress computes the percentage of tasks that reached a terminal status.
func Progress(terminalTasks, totalTasks int) int {
	if totalTasks == 0 {
		return 0
	}
	return int(math.Round(100 * float64(terminalTasks) / float64(totalTasks)))
}

// IsFinished reports whether the execution reached a terminal status.
func (e *WorkflowExecution) IsFinished() bool {
	return e.Status.IsTerminal()
}
