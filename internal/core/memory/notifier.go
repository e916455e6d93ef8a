package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/BuzzwordStrategies/MarketingOS/internal/core/ports"
	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
)

// Notifier is the in-process snapshot fan-out. Each subscriber gets a
// buffered channel of size one; when the subscriber lags, the stale snapshot
// is dropped and replaced, so the latest state (including the terminal one)
// always gets through.
type Notifier struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]map[int]chan *domain.WorkflowExecution
	nextID      int
}

// NewNotifier creates an empty in-memory notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		subscribers: make(map[uuid.UUID]map[int]chan *domain.WorkflowExecution),
	}
}

var _ ports.Notifier = (*Notifier)(nil)

func (n *Notifier) PublishExecutionUpdated(_ context.Context, execution *domain.WorkflowExecution) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subscribers[execution.ID] {
		select {
		case ch <- execution:
		default:
			// Latest wins: evict the unread snapshot.
			select {
			case <-ch:
			default:
			}
			ch <- execution
		}
	}
	return nil
}

func (n *Notifier) Subscribe(_ context.Context, executionID uuid.UUID) (<-chan *domain.WorkflowExecution, func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subscribers[executionID] == nil {
		n.subscribers[executionID] = make(map[int]chan *domain.WorkflowExecution)
	}
	id := n.nextID
	n.nextID++
	ch := make(chan *domain.WorkflowExecution, 1)
	n.subscribers[executionID][id] = ch

	unsubscribe := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if subs, ok := n.subscribers[executionID]; ok {
			if _, ok := subs[id]; ok {
				delete(subs, id)
				close(ch)
			}
			if len(subs) == 0 {
				delete(n.subscribers, executionID)
			}
		}
	}
	return ch, unsubscribe, nil
}
