// internal/workers/overdue_processor.go
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

const defaultOverdueBatchSize = 500

// OnceNotifier enqueues a notification at most once per key.
type OnceNotifier interface {
	NotifyOnce(ctx context.Context, n domain.Notification, key string) error
}

// OverdueProcessor reminds requesters of in-progress requests past their
// return date.
type OverdueProcessor struct {
	requests  ports.RequestRepository
	notifier  OnceNotifier
	batchSize int
	now       func() time.Time
	logger    *slog.Logger
}

// NewOverdueProcessor creates a new overdue processor
func NewOverdueProcessor(requests ports.RequestRepository, notifier OnceNotifier, batchSize int, logger *slog.Logger) *OverdueProcessor {
	if batchSize <= 0 {
		batchSize = defaultOverdueBatchSize
	}
	return &OverdueProcessor{
		requests:  requests,
		notifier:  notifier,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With(slog.String("processor", "overdue")),
	}
}

// WithClock overrides the processor clock.
func (p *OverdueProcessor) WithClock(now func() time.Time) *OverdueProcessor {
	p.now = now
	return p
}

// ScanOverdue handles TypeOverdueScan tasks. Reminders are keyed per request
// and day, so a retried or repeated scan does not notify twice the same day.
func (p *OverdueProcessor) ScanOverdue(ctx context.Context, t *asynq.Task) error {
	asOf := p.now()
	p.logger.InfoContext(ctx, "scanning for overdue requests", slog.Time("as_of", asOf))

	overdue, err := p.requests.ListOverdue(ctx, asOf, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list overdue requests: %w", err)
	}

	var (
		reminded int
		failures []error
	)
	for _, req := range overdue {
		outstanding, err := req.Outstanding()
		if err != nil {
			p.logger.ErrorContext(ctx, "skipping request with corrupt ledger",
				slog.String("request_id", req.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		open := make(map[string]int, len(outstanding))
		for item, qty := range outstanding {
			if qty > 0 {
				open[item] = qty
			}
		}
		if len(open) == 0 {
			continue
		}

		key := fmt.Sprintf("overdue:%s:%s", req.ID, asOf.Format("2006-01-02"))
		if err := p.notifier.NotifyOnce(ctx, domain.OverdueNotification(req, open), key); err != nil {
			p.logger.WarnContext(ctx, "failed to enqueue overdue reminder",
				slog.String("request_id", req.ID.String()),
				slog.String("error", err.Error()))
			failures = append(failures, err)
			continue
		}
		reminded++
	}

	p.logger.InfoContext(ctx, "overdue scan complete",
		slog.Int("overdue", len(overdue)),
		slog.Int("reminded", reminded),
		slog.Int("failed", len(failures)))

	if len(failures) > 0 {
		return fmt.Errorf("failed to enqueue %d overdue reminders: %w", len(failures), errors.Join(failures...))
	}
	return nil
}
