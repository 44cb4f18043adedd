// internal/workers/notifications_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/logistics-be/internal/core/domain"
)

// NotificationProcessor delivers request notifications to the push gateway.
type NotificationProcessor struct {
	gatewayURL string
	token      string
	client     *http.Client
	logger     *slog.Logger
}

// NewNotificationProcessor creates a new notification processor. With an empty
// gatewayURL notifications are only logged.
func NewNotificationProcessor(gatewayURL, token string, timeout time.Duration, logger *slog.Logger) *NotificationProcessor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NotificationProcessor{
		gatewayURL: gatewayURL,
		token:      token,
		client:     &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("processor", "notification")),
	}
}

// DeliverNotification handles TypeRequestNotification tasks.
func (p *NotificationProcessor) DeliverNotification(ctx context.Context, t *asynq.Task) error {
	var n domain.Notification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if n.UserID == "" {
		return fmt.Errorf("notification without recipient: %w", asynq.SkipRetry)
	}

	if p.gatewayURL == "" {
		p.logger.InfoContext(ctx, "notification would be sent",
			slog.String("user_id", n.UserID),
			slog.String("request_id", n.RequestID.String()),
			slog.String("title", n.Title),
			slog.String("description", n.Description))
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %v: %w", err, asynq.SkipRetry)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach push gateway: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		p.logger.WarnContext(ctx, "push gateway rejected notification",
			slog.String("user_id", n.UserID),
			slog.Int("status_code", resp.StatusCode))
		return fmt.Errorf("push gateway rejected notification with %d: %w", resp.StatusCode, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "notification delivered",
		slog.String("user_id", n.UserID),
		slog.String("request_id", n.RequestID.String()))
	return nil
}
