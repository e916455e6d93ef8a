package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/BuzzwordStrategies/MarketingOS/internal/attribution"
	"github.com/BuzzwordStrategies/MarketingOS/internal/catalog"
	"github.com/BuzzwordStrategies/MarketingOS/internal/core/ports"
	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
	"github.com/BuzzwordStrategies/MarketingOS/internal/executor"
	"github.com/BuzzwordStrategies/MarketingOS/internal/metrics"
)

// Config bounds the engine's task and persistence behavior.
type Config struct {
	// TaskTimeout caps each executor call so a hung provider cannot leave
	// an execution RUNNING forever.
	TaskTimeout time.Duration
	// StoreAttempts bounds the retries for each store write before the
	// execution is failed with a store error.
	StoreAttempts int
	// StoreRetryDelay is the pause between store write attempts.
	StoreRetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 2 * time.Minute
	}
	if c.StoreAttempts <= 0 {
		c.StoreAttempts = 3
	}
	if c.StoreRetryDelay < 0 {
		c.StoreRetryDelay = 0
	}
	return c
}

// Engine drives workflow executions through their task executors. One engine
// is constructed at startup and handed to the request handlers; each accepted
// execution runs on its own goroutine, strictly sequentially through its
// tasks, so many executions can be in flight at once without blocking each
// other.
type Engine struct {
	catalog   *catalog.Catalog
	store     ports.ExecutionStore
	notifier  ports.Notifier
	registry  executor.Registry
	estimator attribution.Estimator
	metrics   *metrics.Metrics
	cfg       Config

	rootCtx  context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	running map[uuid.UUID]context.CancelFunc
}

// New wires an engine from its collaborators.
func New(cat *catalog.Catalog, store ports.ExecutionStore, notifier ports.Notifier, registry executor.Registry, estimator attribution.Estimator, m *metrics.Metrics, cfg Config) *Engine {
	rootCtx, shutdown := context.WithCancel(context.Background())
	return &Engine{
		catalog:   cat,
		store:     store,
		notifier:  notifier,
		registry:  registry,
		estimator: estimator,
		metrics:   m,
		cfg:       cfg.withDefaults(),
		rootCtx:   rootCtx,
		shutdown:  shutdown,
		running:   make(map[uuid.UUID]context.CancelFunc),
	}
}

// Execute validates the launch request synchronously, creates the execution
// and its task records atomically, and hands the execution to a background
// goroutine that outlives the request. The returned execution is the PENDING
// snapshot the caller was handed.
func (e *Engine) Execute(ctx context.Context, actorID, ownerID uuid.UUID, workflowType string, inputs map[string]any) (*domain.WorkflowExecution, error) {
	def, err := e.catalog.Lookup(workflowType)
	if err != nil {
		return nil, err
	}
	if err := validateInputs(def, inputs); err != nil {
		return nil, err
	}

	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}

	execution := domain.NewExecution(def, actorID, ownerID, inputsJSON)
	if err := e.store.CreateExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("create execution: %w", err)
	}
	e.metrics.ExecutionsStarted.Inc()

	// The run context signals cancellation only. Persistence uses the
	// engine's root context so a cancelled execution can still be
	// finalized.
	runCtx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.running[execution.ID] = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go e.run(runCtx, execution.ID, def)

	return execution, nil
}

// Get returns the current state of an execution.
func (e *Engine) Get(ctx context.Context, executionID uuid.UUID) (*domain.WorkflowExecution, error) {
	return e.store.GetExecution(ctx, executionID)
}

// Running lists the ids of executions currently RUNNING.
func (e *Engine) Running(ctx context.Context) ([]uuid.UUID, error) {
	return e.store.ListRunning(ctx)
}

// Cancel requests cooperative cancellation of an execution. Cancelling an
// execution that already reached a terminal status is a no-op, not an error.
func (e *Engine) Cancel(ctx context.Context, executionID uuid.UUID) error {
	e.mu.Lock()
	cancel, inFlight := e.running[executionID]
	e.mu.Unlock()
	if inFlight {
		cancel()
		return nil
	}

	execution, err := e.store.GetExecution(ctx, executionID)
	if err != nil {
		return err
	}
	if execution.IsFinished() {
		return nil
	}
	// Known to the store but not to this process (e.g. orphaned by a
	// restart): finalize it directly.
	if err := e.store.FinalizeExecution(ctx, executionID, domain.WorkflowCancelled, execution.ProgressPercent, nil, time.Now()); err != nil {
		return err
	}
	e.metrics.ExecutionsFinished.WithLabelValues(string(domain.WorkflowCancelled)).Inc()
	e.notify(executionID)
	return nil
}

// Shutdown stops accepting cancellations for new work and waits for every
// in-flight execution goroutine to finish or ctx to expire.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.shutdown()
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run drives one execution through its tasks in definition order.
func (e *Engine) run(runCtx context.Context, executionID uuid.UUID, def *domain.WorkflowDefinition) {
	defer e.wg.Done()
	defer func() {
		e.mu.Lock()
		delete(e.running, executionID)
		e.mu.Unlock()
	}()

	execution, err := e.store.GetExecution(e.rootCtx, executionID)
	if err != nil {
		log.Printf("Engine: execution %s vanished before start: %v", executionID, err)
		return
	}

	var inputs map[string]any
	if err := json.Unmarshal(execution.Inputs, &inputs); err != nil {
		log.Printf("Engine: execution %s has unreadable inputs: %v", executionID, err)
		e.finalize(executionID, domain.WorkflowFailed, 0, nil)
		return
	}

	outputs := make(map[string]executor.Result, len(execution.Tasks))
	total := len(execution.Tasks)
	processed := 0
	failed := false
	cancelled := false

	// PENDING -> RUNNING on accepting the first task.
	if err := e.persist(func(ctx context.Context) error {
		return e.store.MarkExecutionRunning(ctx, executionID)
	}); err != nil {
		e.failWithStoreError(executionID, 0, err)
		return
	}
	e.notify(executionID)

	for i := range execution.Tasks {
		// Cancellation is cooperative and observed between tasks only;
		// an in-flight executor call is an opaque unit of work.
		if runCtx.Err() != nil || e.rootCtx.Err() != nil {
			cancelled = true
			break
		}

		task := &execution.Tasks[i]
		tmpl := def.TaskTemplates[i]

		if err := e.persist(func(ctx context.Context) error {
			return e.store.MarkTaskRunning(ctx, task.ID, time.Now())
		}); err != nil {
			e.failWithStoreError(executionID, domain.Progress(processed, total), err)
			return
		}
		e.notify(executionID)

		result, taskErr := e.executeTask(tmpl, inputs, outputs)
		processed++
		progress := domain.Progress(processed, total)

		if taskErr != nil {
			log.Printf("Engine: execution %s task %q failed: %v", executionID, task.Name, taskErr)
			failed = true
			e.metrics.TasksFinished.WithLabelValues(string(tmpl.Category), string(domain.TaskFailed)).Inc()
			outputsJSON := encodeJSON(outputs)
			if err := e.persist(func(ctx context.Context) error {
				return e.store.FailTask(ctx, executionID, task.ID, taskErr.Error(), time.Now(), progress, outputsJSON)
			}); err != nil {
				e.failWithStoreError(executionID, progress, err)
				return
			}
		} else {
			outputs[task.Name] = result
			e.metrics.TasksFinished.WithLabelValues(string(tmpl.Category), string(domain.TaskCompleted)).Inc()
			resultJSON := encodeJSON(result)
			outputsJSON := encodeJSON(outputs)
			if err := e.persist(func(ctx context.Context) error {
				return e.store.CompleteTask(ctx, executionID, task.ID, resultJSON, time.Now(), progress, outputsJSON)
			}); err != nil {
				e.failWithStoreError(executionID, progress, err)
				return
			}
		}
		e.notify(executionID)

		// A failed critical task stops further scheduling; remaining
		// tasks stay PENDING.
		if taskErr != nil && tmpl.Critical {
			break
		}
	}

	status := domain.WorkflowCompleted
	switch {
	case cancelled:
		status = domain.WorkflowCancelled
	case failed:
		status = domain.WorkflowFailed
	}

	var attributionJSON datatypes.JSON
	if status == domain.WorkflowCompleted {
		attributionJSON = encodeJSON(e.estimator.Estimate(def, outputs))
	}
	e.finalize(executionID, status, domain.Progress(processed, total), attributionJSON)
}

// executeTask resolves the handler and runs it under the per-task timeout.
func (e *Engine) executeTask(tmpl domain.TaskTemplate, inputs map[string]any, outputs map[string]executor.Result) (executor.Result, error) {
	handler, err := e.registry.Resolve(tmpl.Category)
	if err != nil {
		return nil, err
	}

	taskCtx, cancel := context.WithTimeout(context.Background(), e.cfg.TaskTimeout)
	defer cancel()

	start := time.Now()
	result, err := handler(taskCtx, tmpl, executor.Context{Inputs: inputs, PriorOutputs: outputs})
	e.metrics.TaskDuration.WithLabelValues(string(tmpl.Category)).Observe(time.Since(start).Seconds())
	return result, err
}

func (e *Engine) finalize(executionID uuid.UUID, status domain.WorkflowStatus, progress int, attributionJSON datatypes.JSON) {
	if err := e.persist(func(ctx context.Context) error {
		return e.store.FinalizeExecution(ctx, executionID, status, progress, attributionJSON, time.Now())
	}); err != nil {
		log.Printf("Engine: failed to finalize execution %s as %s: %v", executionID, status, err)
		return
	}
	e.metrics.ExecutionsFinished.WithLabelValues(string(status)).Inc()
	e.notify(executionID)
}

func (e *Engine) failWithStoreError(executionID uuid.UUID, progress int, storeErr error) {
	log.Printf("Engine: store error on execution %s: %v", executionID, storeErr)
	e.finalize(executionID, domain.WorkflowFailed, progress, nil)
}

// persist runs a store write with bounded retries.
func (e *Engine) persist(op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < e.cfg.StoreAttempts; attempt++ {
		if attempt > 0 && e.cfg.StoreRetryDelay > 0 {
			time.Sleep(e.cfg.StoreRetryDelay)
		}
		if err = op(context.Background()); err == nil {
			return nil
		}
	}
	return err
}

// notify publishes the execution's current stored state to subscribers.
func (e *Engine) notify(executionID uuid.UUID) {
	execution, err := e.store.GetExecution(context.Background(), executionID)
	if err != nil {
		log.Printf("Engine: cannot load execution %s for notify: %v", executionID, err)
		return
	}
	if err := e.notifier.PublishExecutionUpdated(context.Background(), execution); err != nil {
		log.Printf("Engine: notify failed for execution %s: %v", executionID, err)
	}
}

// encodeJSON degrades an unencodable value to an error payload so a bad
// executor result can never wedge persistence or silently drop a write.
func encodeJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	return b
}

func validateInputs(def *domain.WorkflowDefinition, inputs map[string]any) error {
	for _, key := range def.RequiredInputs {
		v, ok := inputs[key]
		if !ok || v == nil {
			return &domain.MissingInputError{Field: key}
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return &domain.MissingInputError{Field: key}
		}
	}
	return nil
}
