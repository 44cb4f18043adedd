// internal/core/services/inventory_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
	"github.com/ammerola/logistics-be/internal/core/services"
	"github.com/ammerola/logistics-be/test/helpers"
	"github.com/ammerola/logistics-be/test/mocks"
)

func TestInventoryService_CreateItem(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Actor
		item    *domain.InventoryItem
		wantErr error
	}{
		{
			name:  "handler_creates",
			actor: handler,
			item:  &domain.InventoryItem{Name: "  Projector ", TotalQuantity: 2},
		},
		{
			name:    "requester_forbidden",
			actor:   requester,
			item:    &domain.InventoryItem{Name: "Projector", TotalQuantity: 2},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "duplicate_name",
			actor:   handler,
			item:    &domain.InventoryItem{Name: "Chairs", TotalQuantity: 5},
			wantErr: domain.ErrItemExists,
		},
		{
			name:    "negative_total",
			actor:   handler,
			item:    &domain.InventoryItem{Name: "Projector", TotalQuantity: -1},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing_name",
			actor:   handler,
			item:    &domain.InventoryItem{TotalQuantity: 1},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.stock(t, "Chairs", 40)

			created, err := f.items.CreateItem(context.Background(), tt.actor, tt.item)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Projector", created.Name)
			assert.Equal(t, domain.DefaultCategory, created.Category)

			count, err := f.inventory.Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})
	}
}

func TestInventoryService_UpsertItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, created, err := f.items.UpsertItem(ctx, handler, &domain.InventoryItem{Name: "Tables", TotalQuantity: 8})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 8, item.TotalQuantity)

	_, created, err = f.items.UpsertItem(ctx, handler, &domain.InventoryItem{Name: "Tables", TotalQuantity: 12, Category: "furniture"})
	require.NoError(t, err)
	assert.False(t, created)

	view, err := f.items.GetItem(ctx, "Tables")
	require.NoError(t, err)
	assert.Equal(t, 12, view.TotalQuantity)
	assert.Equal(t, 12, view.Available)
	assert.Equal(t, "furniture", view.Category)

	_, _, err = f.items.UpsertItem(ctx, requester, &domain.InventoryItem{Name: "Tables", TotalQuantity: 1})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestInventoryService_DeleteItemInUse(t *testing.T) {
	f := newFixture(t)
	f.stock(t, "Chairs", 40)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	ctx := context.Background()

	req := f.create(t, requester, domain.BorrowLine{Item: "Chairs", Quantity: 5})

	err := f.items.DeleteItem(ctx, handler, "Chairs")
	assert.True(t, errors.Is(err, domain.ErrItemInUse), "got %v", err)

	err = f.items.DeleteItem(ctx, requester, "Chairs")
	assert.True(t, errors.Is(err, domain.ErrForbidden), "got %v", err)

	_, err = f.service.Cancel(ctx, requester, req.ID, "")
	require.NoError(t, err)

	require.NoError(t, f.items.DeleteItem(ctx, handler, "Chairs"))

	_, err = f.items.GetItem(ctx, "Chairs")
	assert.True(t, errors.Is(err, domain.ErrItemNotFound))

	err = f.items.DeleteItem(ctx, handler, "Chairs")
	assert.True(t, errors.Is(err, domain.ErrItemNotFound))
}

func TestInventoryService_AvailabilityTracksLedgers(t *testing.T) {
	f := newFixture(t, withCache(t))
	f.stock(t, "Chairs", 40)
	f.stock(t, "Tables", 8)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	ctx := context.Background()

	availableOf := func(name string) int {
		t.Helper()
		views, err := f.items.ListAvailability(ctx)
		require.NoError(t, err)
		for _, v := range views {
			if v.Name == name {
				return v.Available
			}
		}
		t.Fatalf("item %q missing from availability", name)
		return 0
	}

	assert.Equal(t, 40, availableOf("Chairs"))

	req := f.approved(t,
		domain.BorrowLine{Item: "Chairs", Quantity: 15},
		domain.BorrowLine{Item: "Tables", Quantity: 8},
	)
	assert.Equal(t, 25, availableOf("Chairs"))
	assert.Equal(t, 0, availableOf("Tables"))

	_, err := f.service.Return(ctx, requester, req.ID, []domain.ReturnInput{
		{Item: "Chairs", Quantity: 5},
		{Item: "Tables", Quantity: 8},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, availableOf("Chairs"))
	assert.Equal(t, 8, availableOf("Tables"))

	_, err = f.service.ReturnAllRemaining(ctx, requester, req.ID, "Chairs")
	require.NoError(t, err)
	assert.Equal(t, 40, availableOf("Chairs"))

	item, err := f.inventory.FindByName(ctx, "Chairs")
	require.NoError(t, err)
	assert.Equal(t, 40, item.TotalQuantity, "totals are never touched by returns")
}

func TestInventoryService_CacheFailureFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().GetOrSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("redis: connection refused"))

	f := newFixture(t)
	f.stock(t, "Chairs", 40)

	svc := services.NewInventoryService(f.inventory, f.requests, cache, 0, helpers.TestLogger())
	views, err := svc.ListAvailability(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 40, views[0].Available)

	items, err := svc.ListItems(context.Background(), ports.InventoryListParams{Category: "furniture"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestInventoryService_MutationsDropReadModels(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().DeletePattern(gomock.Any(), "readmodel:*").Return(nil)
	cache.EXPECT().DeletePattern(gomock.Any(), "readmodel:*").Return(errors.New("redis: connection refused"))

	f := newFixture(t)
	svc := services.NewInventoryService(f.inventory, f.requests, cache, 0, helpers.TestLogger())
	ctx := context.Background()

	_, created, err := svc.UpsertItem(ctx, handler, &domain.InventoryItem{Name: "Chairs", TotalQuantity: 40})
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, svc.DeleteItem(ctx, handler, "Chairs"), "a failed invalidation does not fail the mutation")
}
