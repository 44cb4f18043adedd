// internal/core/ports/inventory_repository.go
package ports

import (
	"context"

	"github.com/ammerola/logistics-be/internal/core/domain"
)

// InventoryRepository defines the persistence port for inventory items.
// Lookups return (nil, nil) when the item does not exist.
type InventoryRepository interface {
	Save(ctx context.Context, item *domain.InventoryItem) error
	Upsert(ctx context.Context, item *domain.InventoryItem) (created bool, err error)
	FindByName(ctx context.Context, name string) (*domain.InventoryItem, error)
	FindByNames(ctx context.Context, names []string) ([]*domain.InventoryItem, error)
	List(ctx context.Context, params InventoryListParams) ([]*domain.InventoryItem, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// InventoryListParams filters inventory listings.
type InventoryListParams struct {
	Category string
	Search   string
}
