// internal/workers/notifier_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/workers"
	"github.com/ammerola/logistics-be/test/helpers"
	"github.com/ammerola/logistics-be/test/mocks"
)

func TestAsynqNotifier_Notify(t *testing.T) {
	ctrl := gomock.NewController(t)
	enqueuer := mocks.NewMockTaskEnqueuer(ctrl)
	notifier := workers.NewAsynqNotifier(enqueuer, workers.NotifierConfig{Queue: "critical", MaxRetry: 3}, helpers.TestLogger())

	n := domain.Notification{UserID: "user-1", RequestID: uuid.New(), Title: "Request approved"}

	enqueuer.EXPECT().
		EnqueueContext(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
			assert.Equal(t, workers.TypeRequestNotification, task.Type())

			var got domain.Notification
			require.NoError(t, json.Unmarshal(task.Payload(), &got))
			assert.Equal(t, n, got)

			return &asynq.TaskInfo{ID: "task-1", Queue: "critical"}, nil
		})

	require.NoError(t, notifier.Notify(context.Background(), n))
}

func TestAsynqNotifier_NotifyError(t *testing.T) {
	ctrl := gomock.NewController(t)
	enqueuer := mocks.NewMockTaskEnqueuer(ctrl)
	notifier := workers.NewAsynqNotifier(enqueuer, workers.NotifierConfig{}, helpers.TestLogger())

	enqueuer.EXPECT().EnqueueContext(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))

	err := notifier.Notify(context.Background(), domain.Notification{UserID: "user-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestAsynqNotifier_NotifyOnce(t *testing.T) {
	t.Run("duplicate_key_is_not_an_error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		enqueuer := mocks.NewMockTaskEnqueuer(ctrl)
		notifier := workers.NewAsynqNotifier(enqueuer, workers.NotifierConfig{}, helpers.TestLogger())

		enqueuer.EXPECT().EnqueueContext(gomock.Any(), gomock.Any()).Return(nil, asynq.ErrTaskIDConflict)

		assert.NoError(t, notifier.NotifyOnce(context.Background(), domain.Notification{UserID: "user-1"}, "overdue:x:2026-03-01"))
	})

	t.Run("sets_task_id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		enqueuer := mocks.NewMockTaskEnqueuer(ctrl)
		notifier := workers.NewAsynqNotifier(enqueuer, workers.NotifierConfig{}, helpers.TestLogger())

		var captured *asynq.Task
		enqueuer.EXPECT().
			EnqueueContext(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
				captured = task
				return &asynq.TaskInfo{ID: "overdue:x:2026-03-01", Queue: "critical"}, nil
			})

		require.NoError(t, notifier.NotifyOnce(context.Background(), domain.Notification{UserID: "user-1"}, "overdue:x:2026-03-01"))
		require.NotNil(t, captured)
		assert.Equal(t, workers.TypeRequestNotification, captured.Type())
	})
}
