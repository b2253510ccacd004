package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	goredis "github.com/redis/go-redis/v9"
)

const defaultChannelPrefix = "fulfillment:"

var _ ports.NotificationSink = (*PubSubSink)(nil)

// PubSubSink publishes notifications as JSON on one channel per audience.
type PubSubSink struct {
	client goredis.UniversalClient
	prefix string
}

func NewPubSubSink(client goredis.UniversalClient, prefix string) (*PubSubSink, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("client")
	}
	if prefix == "" {
		prefix = defaultChannelPrefix
	}
	return &PubSubSink{client: client, prefix: prefix}, nil
}

// Channel returns the channel msg is published on.
func (s *PubSubSink) Channel(msg notification.Message) string {
	return s.prefix + msg.Channel()
}

func (s *PubSubSink) Publish(ctx context.Context, msg notification.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	if err = s.client.Publish(ctx, s.Channel(msg), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
