// internal/adapters/memory/inventory_repository.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

// InventoryRepository provides in-memory inventory storage
type InventoryRepository struct {
	mu    sync.RWMutex
	items map[string]domain.InventoryItem
}

// Verify interface compliance
var _ ports.InventoryRepository = (*InventoryRepository)(nil)

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{items: make(map[string]domain.InventoryItem)}
}

func (r *InventoryRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.Name]; exists {
		return fmt.Errorf("%q: %w", item.Name, domain.ErrItemExists)
	}
	r.items[item.Name] = *item
	return nil
}

func (r *InventoryRepository) Upsert(ctx context.Context, item *domain.InventoryItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.items[item.Name]
	if exists {
		item.CreatedAt = existing.CreatedAt
	}
	r.items[item.Name] = *item
	return !exists, nil
}

func (r *InventoryRepository) FindByName(ctx context.Context, name string) (*domain.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[name]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *InventoryRepository) FindByNames(ctx context.Context, names []string) ([]*domain.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.InventoryItem, 0, len(names))
	for _, name := range names {
		if item, ok := r.items[name]; ok {
			out = append(out, &item)
		}
	}
	return out, nil
}

func (r *InventoryRepository) List(ctx context.Context, params ports.InventoryListParams) ([]*domain.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(params.Search)
	out := make([]*domain.InventoryItem, 0, len(r.items))
	for _, item := range r.items {
		if params.Category != "" && item.Category != params.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		out = append(out, &item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InventoryRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[name]; !ok {
		return fmt.Errorf("%q: %w", name, domain.ErrItemNotFound)
	}
	delete(r.items, name)
	return nil
}

func (r *InventoryRepository) Exists(ctx context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[name]
	return ok, nil
}

func (r *InventoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.items)), nil
}
