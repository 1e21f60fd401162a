package queue

import (
	"context"

	"relay/internal/domain"
)

// Publisher publishes fan-out jobs to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, job FanoutJob) error
	Close() error
}

// JobHandler handles a consumed fan-out job.
type JobHandler func(ctx context.Context, job FanoutJob) error

// Consumer consumes fan-out jobs from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler JobHandler) error
	Close() error
}

const (
	// FanoutQueueName carries one job per queued voice message.
	FanoutQueueName = "relay.fanout"

	// FanoutDLQName receives jobs rejected as unparseable or invalid.
	FanoutDLQName = "dlq.relay.fanout"

	// queueMaxPriority is the RabbitMQ x-max-priority value for the work queue.
	queueMaxPriority int32 = 2
)

// PriorityValue maps domain priority to RabbitMQ message priority so urgent
// broadcasts jump ahead of normal ones under backlog.
func PriorityValue(priority domain.Priority) uint8 {
	switch priority {
	case domain.PriorityUrgent:
		return 2
	case domain.PriorityNormal:
		return 1
	default:
		return 0
	}
}
