// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/ammerola/logistics-be/internal/core/domain"
)

const (
	TypeRequestNotification = "request:notify"
	TypeOverdueScan         = "request:overdue_scan"
)

// NewRequestNotificationTask wraps n as a push delivery task.
func NewRequestNotificationTask(n domain.Notification, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return asynq.NewTask(TypeRequestNotification, payload, opts...), nil
}

// NewOverdueScanTask builds the periodic overdue scan task.
func NewOverdueScanTask(opts ...asynq.Option) *asynq.Task {
	return asynq.NewTask(TypeOverdueScan, nil, opts...)
}
