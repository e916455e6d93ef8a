package redis

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/BuzzwordStrategies/MarketingOS/internal/core/ports"
	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
)

const channelPrefix = "workflows:executions:"

// Notifier broadcasts execution snapshots over Redis Pub/Sub, one channel
// per execution id, so other processes (or the WebSocket layer) can follow
// an execution live.
type Notifier struct {
	client *redis.Client
}

// NewNotifier creates a Redis-backed notifier.
func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

var _ ports.Notifier = (*Notifier)(nil)

func (n *Notifier) PublishExecutionUpdated(ctx context.Context, execution *domain.WorkflowExecution) error {
	payload, err := json.Marshal(execution)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, channelPrefix+execution.ID.String(), payload).Err()
}

// Subscribe opens a continuous snapshot stream for one execution. The
// forwarding goroutine stops when ctx ends or the returned cancel func runs.
func (n *Notifier) Subscribe(ctx context.Context, executionID uuid.UUID) (<-chan *domain.WorkflowExecution, func(), error) {
	pubsub := n.client.Subscribe(ctx, channelPrefix+executionID.String())
	msgChan := make(chan *domain.WorkflowExecution)

	go func() {
		defer close(msgChan)
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			var execution domain.WorkflowExecution
			if err := json.Unmarshal([]byte(msg.Payload), &execution); err != nil {
				log.Printf("Notifier: dropping malformed snapshot for %s: %v", executionID, err)
				continue
			}
			select {
			case msgChan <- &execution:
			case <-ctx.Done():
				return
			}
		}
	}()

	unsubscribe := func() {
		pubsub.Close()
	}
	return msgChan, unsubscribe, nil
}
