package application

import "context"

// EventPublisher publishes domain events. Satisfied by events.Producer;
// injected so use cases stay testable without a broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType, key string, data interface{}) error
}
