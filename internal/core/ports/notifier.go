package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/notification"
)

// Notifier hands a message over for delivery. Dispatch is fire-and-forget:
// an error only means the message was not accepted.
type Notifier interface {
	Dispatch(ctx context.Context, msg notification.Message) error
}

// NotificationSink is the transport a Notifier publishes to.
type NotificationSink interface {
	Publish(ctx context.Context, msg notification.Message) error
}
