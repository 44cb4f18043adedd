// internal/workers/overdue_processor_test.go
package workers_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/logistics-be/internal/adapters/memory"
	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/workers"
	"github.com/ammerola/logistics-be/test/helpers"
	"github.com/ammerola/logistics-be/test/mocks"
)

var (
	scanHandler = domain.Actor{ID: "handler-1", Role: domain.RoleHandler}
	scanTime    = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
)

func storeRequest(t *testing.T, repo *memory.RequestRepository, returnDate time.Time, approve bool, lines ...domain.BorrowLine) *domain.Request {
	t.Helper()

	req, err := domain.NewRequest(domain.NewRequestInput{
		UserID:     "user-1",
		Title:      "Spring fair",
		Location:   "Main hall",
		EventDate:  returnDate.Add(-24 * time.Hour),
		ReturnDate: returnDate,
		Items:      lines,
	}, returnDate.Add(-48*time.Hour))
	require.NoError(t, err)
	if approve {
		require.NoError(t, req.Approve(scanHandler, "", returnDate.Add(-47*time.Hour)))
	}
	require.NoError(t, repo.Create(context.Background(), req))
	return req
}

func TestOverdueProcessor_ScanOverdue(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRequestRepository()

	overdue := storeRequest(t, repo, scanTime.Add(-24*time.Hour), true,
		domain.BorrowLine{Item: "Chairs", Quantity: 10},
		domain.BorrowLine{Item: "Tables", Quantity: 2},
	)
	_, err := repo.Update(ctx, overdue.ID, func(r *domain.Request) error {
		_, err := r.ApplyReturn(scanHandler, "Tables", 2, scanTime.Add(-time.Hour))
		return err
	})
	require.NoError(t, err)

	storeRequest(t, repo, scanTime.Add(24*time.Hour), true, domain.BorrowLine{Item: "Chairs", Quantity: 1})
	storeRequest(t, repo, scanTime.Add(-24*time.Hour), false, domain.BorrowLine{Item: "Chairs", Quantity: 1})

	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockOnceNotifier(ctrl)
	notifier.EXPECT().
		NotifyOnce(gomock.Any(), gomock.Any(), "overdue:"+overdue.ID.String()+":2026-03-10").
		DoAndReturn(func(ctx context.Context, n domain.Notification, key string) error {
			assert.Equal(t, "user-1", n.UserID)
			assert.Equal(t, overdue.ID, n.RequestID)
			assert.Contains(t, n.Description, "Chairs x10")
			assert.False(t, strings.Contains(n.Description, "Tables"))
			return nil
		})

	processor := workers.NewOverdueProcessor(repo, notifier, 10, helpers.TestLogger()).
		WithClock(func() time.Time { return scanTime })

	require.NoError(t, processor.ScanOverdue(ctx, workers.NewOverdueScanTask()))
}

func TestOverdueProcessor_EnqueueFailureIsRetried(t *testing.T) {
	repo := memory.NewRequestRepository()
	storeRequest(t, repo, scanTime.Add(-time.Hour), true, domain.BorrowLine{Item: "Chairs", Quantity: 1})

	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockOnceNotifier(ctrl)
	notifier.EXPECT().NotifyOnce(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	processor := workers.NewOverdueProcessor(repo, notifier, 0, helpers.TestLogger()).
		WithClock(func() time.Time { return scanTime })

	err := processor.ScanOverdue(context.Background(), workers.NewOverdueScanTask())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestOverdueProcessor_ListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	requests := mocks.NewMockRequestRepository(ctrl)
	requests.EXPECT().ListOverdue(gomock.Any(), scanTime, 25).Return(nil, errors.New("db down"))

	processor := workers.NewOverdueProcessor(requests, mocks.NewMockOnceNotifier(ctrl), 25, helpers.TestLogger()).
		WithClock(func() time.Time { return scanTime })

	err := processor.ScanOverdue(context.Background(), workers.NewOverdueScanTask())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list overdue requests")
}
