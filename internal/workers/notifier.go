// internal/workers/notifier.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

const (
	defaultNotifyQueue   = "critical"
	defaultNotifyRetries = 5
	defaultNotifyTimeout = 30 * time.Second
	defaultOnceRetention = 24 * time.Hour
)

// TaskEnqueuer is the part of *asynq.Client the notifier uses.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NotifierConfig configures how notification tasks are enqueued.
type NotifierConfig struct {
	Queue    string
	MaxRetry int
	Timeout  time.Duration
	// Retention keeps delivered NotifyOnce tasks so their key keeps deduplicating.
	Retention time.Duration
}

// AsynqNotifier hands notifications to the worker through asynq.
type AsynqNotifier struct {
	client TaskEnqueuer
	config NotifierConfig
	logger *slog.Logger
}

var _ ports.Notifier = (*AsynqNotifier)(nil)

// NewAsynqNotifier creates a notifier enqueuing on client.
func NewAsynqNotifier(client TaskEnqueuer, config NotifierConfig, logger *slog.Logger) *AsynqNotifier {
	if config.Queue == "" {
		config.Queue = defaultNotifyQueue
	}
	if config.MaxRetry <= 0 {
		config.MaxRetry = defaultNotifyRetries
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultNotifyTimeout
	}
	if config.Retention <= 0 {
		config.Retention = defaultOnceRetention
	}
	return &AsynqNotifier{
		client: client,
		config: config,
		logger: logger.With(slog.String("component", "notifier")),
	}
}

// Notify enqueues n for delivery.
func (n *AsynqNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	return n.enqueue(ctx, notification, n.options()...)
}

// NotifyOnce enqueues n unless a notification with the same key was enqueued
// within the retention window.
func (n *AsynqNotifier) NotifyOnce(ctx context.Context, notification domain.Notification, key string) error {
	opts := append(n.options(), asynq.TaskID(key), asynq.Retention(n.config.Retention))

	err := n.enqueue(ctx, notification, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		n.logger.DebugContext(ctx, "notification already enqueued", slog.String("key", key))
		return nil
	}
	return err
}

func (n *AsynqNotifier) options() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(n.config.Queue),
		asynq.MaxRetry(n.config.MaxRetry),
		asynq.Timeout(n.config.Timeout),
	}
}

func (n *AsynqNotifier) enqueue(ctx context.Context, notification domain.Notification, opts ...asynq.Option) error {
	task, err := NewRequestNotificationTask(notification, opts...)
	if err != nil {
		return err
	}

	info, err := n.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	n.logger.DebugContext(ctx, "notification enqueued",
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue),
		slog.String("request_id", notification.RequestID.String()),
		slog.String("user_id", notification.UserID))
	return nil
}
