// internal/workers/notifications_processor_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/workers"
	"github.com/ammerola/logistics-be/test/helpers"
)

func notificationTask(t *testing.T, n domain.Notification) *asynq.Task {
	t.Helper()
	task, err := workers.NewRequestNotificationTask(n)
	require.NoError(t, err)
	return task
}

func TestNotificationProcessor_DeliverNotification(t *testing.T) {
	n := domain.Notification{
		UserID:      "user-1",
		RequestID:   uuid.New(),
		Title:       "Return recorded",
		Description: "1 return(s) recorded.",
	}

	tests := []struct {
		name          string
		status        int
		expectedError bool
		skipRetry     bool
	}{
		{name: "delivered", status: http.StatusAccepted},
		{name: "gateway_error_is_retried", status: http.StatusBadGateway, expectedError: true},
		{name: "rate_limited_is_retried", status: http.StatusTooManyRequests, expectedError: true},
		{name: "rejected_is_not_retried", status: http.StatusBadRequest, expectedError: true, skipRetry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received domain.Notification
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "Bearer push-token", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			processor := workers.NewNotificationProcessor(server.URL, "push-token", time.Second, helpers.TestLogger())
			err := processor.DeliverNotification(context.Background(), notificationTask(t, n))

			assert.Equal(t, n, received)
			if !tt.expectedError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestNotificationProcessor_NoGatewayLogsOnly(t *testing.T) {
	processor := workers.NewNotificationProcessor("", "", 0, helpers.TestLogger())

	err := processor.DeliverNotification(context.Background(), notificationTask(t, domain.Notification{UserID: "user-1"}))
	assert.NoError(t, err)
}

func TestNotificationProcessor_BadPayload(t *testing.T) {
	processor := workers.NewNotificationProcessor("", "", 0, helpers.TestLogger())

	err := processor.DeliverNotification(context.Background(), asynq.NewTask(workers.TypeRequestNotification, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = processor.DeliverNotification(context.Background(), notificationTask(t, domain.Notification{}))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestNotificationProcessor_GatewayUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	processor := workers.NewNotificationProcessor(url, "", time.Second, helpers.TestLogger())
	err := processor.DeliverNotification(context.Background(), notificationTask(t, domain.Notification{UserID: "user-1"}))

	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}
