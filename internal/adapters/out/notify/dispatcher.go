// Package notify delivers notifications in the background so that state
// changes never wait on the notification transport.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	DefaultBufferSize     = 256
	DefaultPublishTimeout = 5 * time.Second
)

var (
	ErrBufferFull = errors.New("notification buffer is full")
	ErrStopped    = errors.New("notification dispatcher is stopped")
)

var _ ports.Notifier = (*Dispatcher)(nil)

// Dispatcher queues messages on a buffered channel and publishes them to a
// sink from a single worker. Messages that do not fit in the buffer are
// dropped.
type Dispatcher struct {
	sink    ports.NotificationSink
	queue   chan notification.Message
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.RWMutex
	started bool
	stopped bool
	done    chan struct{}
}

func NewDispatcher(sink ports.NotificationSink, bufferSize int, logger *slog.Logger) (*Dispatcher, error) {
	if sink == nil {
		return nil, errs.NewValueIsRequiredError("sink")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Dispatcher{
		sink:    sink,
		queue:   make(chan notification.Message, bufferSize),
		timeout: DefaultPublishTimeout,
		logger:  logger.With("component", "notification_dispatcher"),
		done:    make(chan struct{}),
	}, nil
}

// Dispatch queues msg without blocking.
func (d *Dispatcher) Dispatch(ctx context.Context, msg notification.Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrStopped
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		d.logger.WarnContext(ctx, "Notification dropped",
			"event", msg.Event,
			"audience", msg.Audience,
			"order_id", msg.OrderID,
			"company_id", msg.CompanyID,
		)
		return ErrBufferFull
	}
}

// Start launches the worker. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.stopped {
		return
	}
	d.started = true

	go d.run()
	d.logger.Info("Notification dispatcher started", "buffer", cap(d.queue))
}

// Stop refuses new messages, publishes what is already queued and waits for
// the worker until ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	started := d.started
	close(d.queue)
	d.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case <-d.done:
		d.logger.InfoContext(ctx, "Notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for msg := range d.queue {
		d.publish(msg)
	}
}

func (d *Dispatcher) publish(msg notification.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sink.Publish(ctx, msg); err != nil {
		d.logger.WarnContext(ctx, "Failed to publish notification",
			"event", msg.Event,
			"audience", msg.Audience,
			"order_id", msg.OrderID,
			"company_id", msg.CompanyID,
			"error", err,
		)
	}
}
