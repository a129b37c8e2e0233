package app

import (
	"context"

	"github.com/transfa/banking-service/pkg/rabbitmq"
	"go.uber.org/zap"
)

// publishEvent sends a notification after a successful write. Broker failures are
// logged and never fail the operation that produced the event.
func publishEvent(ctx context.Context, publisher rabbitmq.Publisher, logger *zap.Logger, routingKey string, payload interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, routingKey, payload); err != nil {
		logger.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
