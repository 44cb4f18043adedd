// internal/core/services/inventory.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

// Read models derived from the ledgers share one key prefix so a single
// pattern delete drops them all after a mutation.
const (
	readModelPrefix      = "readmodel:"
	availabilityCacheKey = readModelPrefix + "inventory:availability"
	dashboardCacheKey    = readModelPrefix + "dashboard:summary"

	defaultCacheTTL = 30 * time.Second
)

// InventoryService handles inventory business logic
type InventoryService struct {
	repo     ports.InventoryRepository
	requests ports.RequestRepository
	cache    ports.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService interface.
var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service. cache may be nil.
func NewInventoryService(
	repo ports.InventoryRepository,
	requests ports.RequestRepository,
	cache ports.CacheRepository,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *InventoryService {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &InventoryService{
		repo:     repo,
		requests: requests,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With(slog.String("service", "inventory")),
	}
}

// GetItem returns an item with its current availability.
func (s *InventoryService) GetItem(ctx context.Context, name string) (*domain.ItemAvailability, error) {
	name = domain.NormalizeItemName(name)

	item, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%q: %w", name, domain.ErrItemNotFound)
	}

	active, err := s.requests.ListActive(ctx, []string{item.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to load active requests: %w", err)
	}

	view, err := domain.Availability(item, active)
	if err != nil {
		s.logger.ErrorContext(ctx, "availability computation failed",
			slog.String("item", item.Name),
			slog.String("error", err.Error()))
		return nil, err
	}
	return &view, nil
}

// ListItems returns the raw procurement records.
func (s *InventoryService) ListItems(ctx context.Context, params ports.InventoryListParams) ([]*domain.InventoryItem, error) {
	items, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// ListAvailability returns every item with outstanding and available counts.
// The result is cached briefly; admission control never reads this cache.
func (s *InventoryService) ListAvailability(ctx context.Context) ([]domain.ItemAvailability, error) {
	if s.cache == nil {
		return s.computeAvailability(ctx)
	}

	var (
		views    []domain.ItemAvailability
		fetchErr error
	)
	err := s.cache.GetOrSet(ctx, availabilityCacheKey, &views, func() (interface{}, error) {
		fresh, err := s.computeAvailability(ctx)
		fetchErr = err
		return fresh, err
	}, s.cacheTTL)
	if fetchErr != nil {
		return nil, fetchErr
	}
	if err != nil {
		s.logger.WarnContext(ctx, "availability cache unavailable, computing directly",
			slog.String("error", err.Error()))
		return s.computeAvailability(ctx)
	}
	return views, nil
}

func (s *InventoryService) computeAvailability(ctx context.Context) ([]domain.ItemAvailability, error) {
	items, err := s.repo.List(ctx, ports.InventoryListParams{})
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	active, err := s.requests.ListActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load active requests: %w", err)
	}

	views := make([]domain.ItemAvailability, 0, len(items))
	for _, item := range items {
		view, err := domain.Availability(item, active)
		if err != nil {
			s.logger.ErrorContext(ctx, "availability computation failed",
				slog.String("item", item.Name),
				slog.String("error", err.Error()))
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// CreateItem stores a new item. It fails with ErrItemExists if the name is taken.
func (s *InventoryService) CreateItem(ctx context.Context, actor domain.Actor, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	if err := requireHandler(actor); err != nil {
		return nil, err
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.PrepareForStorage()

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}
	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "created inventory item",
		slog.String("item", item.Name),
		slog.Int("total_quantity", item.TotalQuantity),
		slog.String("actor", actor.ID))
	return item, nil
}

// UpsertItem creates or replaces an item. Totals are procurement-managed and
// are never adjusted by borrow or return flows.
func (s *InventoryService) UpsertItem(ctx context.Context, actor domain.Actor, item *domain.InventoryItem) (*domain.InventoryItem, bool, error) {
	if err := requireHandler(actor); err != nil {
		return nil, false, err
	}
	if err := item.Validate(); err != nil {
		return nil, false, err
	}
	item.PrepareForStorage()

	created, err := s.repo.Upsert(ctx, item)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert item: %w", err)
	}
	s.invalidate(ctx)

	if !created {
		active, err := s.requests.ListActive(ctx, []string{item.Name})
		if err == nil {
			if available, err := domain.AvailableQuantity(item, active); err == nil && available < 0 {
				s.logger.WarnContext(ctx, "item total is below outstanding borrows",
					slog.String("item", item.Name),
					slog.Int("available", available))
			}
		}
	}

	s.logger.InfoContext(ctx, "upserted inventory item",
		slog.String("item", item.Name),
		slog.Int("total_quantity", item.TotalQuantity),
		slog.Bool("created", created),
		slog.String("actor", actor.ID))
	return item, created, nil
}

// DeleteItem removes an item unless an active request still has it outstanding.
func (s *InventoryService) DeleteItem(ctx context.Context, actor domain.Actor, name string) error {
	if err := requireHandler(actor); err != nil {
		return err
	}
	name = domain.NormalizeItemName(name)

	exists, err := s.repo.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check item existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%q: %w", name, domain.ErrItemNotFound)
	}

	active, err := s.requests.ListActive(ctx, []string{name})
	if err != nil {
		return fmt.Errorf("failed to load active requests: %w", err)
	}
	outstanding, err := domain.OutstandingQuantity(name, active)
	if err != nil {
		return err
	}
	if outstanding > 0 {
		return fmt.Errorf("%q has %d outstanding: %w", name, outstanding, domain.ErrItemInUse)
	}

	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "deleted inventory item",
		slog.String("item", name),
		slog.String("actor", actor.ID))
	return nil
}

func (s *InventoryService) invalidate(ctx context.Context) {
	invalidateReadModels(ctx, s.cache, s.logger)
}

func invalidateReadModels(ctx context.Context, cache ports.CacheRepository, logger *slog.Logger) {
	if cache == nil {
		return
	}
	if err := cache.DeletePattern(ctx, readModelPrefix+"*"); err != nil {
		logger.WarnContext(ctx, "failed to invalidate cached read models",
			slog.String("error", err.Error()))
	}
}

func requireHandler(actor domain.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.IsHandler() {
		return fmt.Errorf("%w: handler role required", domain.ErrForbidden)
	}
	return nil
}
