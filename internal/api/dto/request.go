package dto

import "github.com/google/uuid"

type ExecuteWorkflowRequest struct {
	WorkflowType string         `json:"workflowType" binding:"required"`
	Inputs       map[string]any `json:"inputs" binding:"required"`
}

type ExecuteWorkflowResponse struct {
	ID                       uuid.UUID `json:"id"`
	Status                   string    `json:"status"`
	Progress                 int       `json:"progress"`
	EstimatedDurationMinutes int       `json:"estimatedDuration"`
}

type RunningWorkflowsResponse struct {
	Running []uuid.UUID `json:"running"`
	Count   int         `json:"count"`
}

type CancelResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
