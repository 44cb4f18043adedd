// internal/core/ports/inventory_service.go
package ports

import (
	"context"

	"github.com/ammerola/logistics-be/internal/core/domain"
)

// InventoryService is the Inventory Store contract exposed to handlers.
// Mutations are handler-only.
type InventoryService interface {
	GetItem(ctx context.Context, name string) (*domain.ItemAvailability, error)
	ListItems(ctx context.Context, params InventoryListParams) ([]*domain.InventoryItem, error)
	ListAvailability(ctx context.Context) ([]domain.ItemAvailability, error)
	CreateItem(ctx context.Context, actor domain.Actor, item *domain.InventoryItem) (*domain.InventoryItem, error)
	UpsertItem(ctx context.Context, actor domain.Actor, item *domain.InventoryItem) (*domain.InventoryItem, bool, error)
	DeleteItem(ctx context.Context, actor domain.Actor, name string) error
}
