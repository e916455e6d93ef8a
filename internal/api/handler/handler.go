package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/BuzzwordStrategies/MarketingOS/internal/api/dto"
	"github.com/BuzzwordStrategies/MarketingOS/internal/api/middleware"
	"github.com/BuzzwordStrategies/MarketingOS/internal/catalog"
	"github.com/BuzzwordStrategies/MarketingOS/internal/core/ports"
	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
	"github.com/BuzzwordStrategies/MarketingOS/internal/engine"
)

// WorkflowHandler exposes the engine over HTTP and WebSocket.
type WorkflowHandler struct {
	engine   *engine.Engine
	catalog  *catalog.Catalog
	notifier ports.Notifier
	upgrader websocket.Upgrader
}

func NewWorkflowHandler(eng *engine.Engine, cat *catalog.Catalog, notifier ports.Notifier) *WorkflowHandler {
	return &WorkflowHandler{
		engine:   eng,
		catalog:  cat,
		notifier: notifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Register mounts the workflow routes on the given group.
func (h *WorkflowHandler) Register(api *gin.RouterGroup) {
	api.POST("/workflows/execute", h.ExecuteWorkflow)
	api.GET("/workflows/running", h.ListRunning)
	api.GET("/workflows/:id", h.GetExecution)
	api.POST("/workflows/:id/cancel", h.CancelExecution)
	api.GET("/workflows/:id/stream", h.StreamExecution)
}

// ExecuteWorkflow accepts a launch request, validates it synchronously and
// returns 202 once the execution has been created and scheduled.
func (h *WorkflowHandler) ExecuteWorkflow(c *gin.Context) {
	var req dto.ExecuteWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	actorID := c.MustGet(middleware.ContextActorID).(uuid.UUID)
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)

	execution, err := h.engine.Execute(c.Request.Context(), actorID, ownerID, req.WorkflowType, req.Inputs)
	if err != nil {
		var missing *domain.MissingInputError
		switch {
		case errors.Is(err, domain.ErrUnknownWorkflow):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.As(err, &missing):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	def, _ := h.catalog.Lookup(req.WorkflowType)
	c.JSON(http.StatusAccepted, dto.ExecuteWorkflowResponse{
		ID:                       execution.ID,
		Status:                   string(execution.Status),
		Progress:                 execution.ProgressPercent,
		EstimatedDurationMinutes: def.EstimatedDurationMinutes,
	})
}

// ListRunning returns the ids of executions currently RUNNING.
func (h *WorkflowHandler) ListRunning(c *gin.Context) {
	ids, err := h.engine.Running(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	c.JSON(http.StatusOK, dto.RunningWorkflowsResponse{Running: ids, Count: len(ids)})
}

// GetExecution returns the current execution state with nested tasks, for
// polling-style clients.
func (h *WorkflowHandler) GetExecution(c *gin.Context) {
	executionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid execution id"})
		return
	}

	execution, err := h.engine.Get(c.Request.Context(), executionID)
	if errors.Is(err, domain.ErrExecutionNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, execution)
}

// CancelExecution requests cooperative cancellation. Cancelling an
// already-terminal execution succeeds without effect.
func (h *WorkflowHandler) CancelExecution(c *gin.Context) {
	executionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid execution id"})
		return
	}

	if err := h.engine.Cancel(c.Request.Context(), executionID); err != nil {
		if errors.Is(err, domain.ErrExecutionNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.CancelResponse{ID: executionID, Status: "cancellation requested"})
}

// StreamExecution upgrades to WebSocket and pushes execution snapshots until
// the execution reaches a terminal status or the client goes away.
func (h *WorkflowHandler) StreamExecution(c *gin.Context) {
	executionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid execution id"})
		return
	}

	// Subscribe before loading the initial snapshot: a transition
	// committed between the two then shows up either in the snapshot or
	// on the channel, so the terminal state can never fall in a gap.
	updates, unsubscribe, err := h.notifier.Subscribe(c.Request.Context(), executionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	defer unsubscribe()

	execution, err := h.engine.Get(c.Request.Context(), executionID)
	if errors.Is(err, domain.ErrExecutionNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Handler: websocket upgrade failed for %s: %v", executionID, err)
		return
	}
	defer conn.Close()

	// The client never sends data; the reader exists to surface close
	// frames while the write loop waits on the next snapshot.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(execution); err != nil {
		return
	}
	if execution.IsFinished() {
		return
	}

	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
			if snapshot.IsFinished() {
				return
			}
		case <-closed:
			return
		}
	}
}
