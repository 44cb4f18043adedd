// internal/adapters/db/inventory_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

const uniqueViolation = "23505"

var inventoryColumns = []string{
	"name", "total_quantity", "category", "description", "created_at", "updated_at",
}

// InventoryRepository implements ports.InventoryRepository on PostgreSQL.
type InventoryRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.InventoryRepository = (*InventoryRepository)(nil)

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *Database, logger *slog.Logger) *InventoryRepository {
	return &InventoryRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "inventory")),
	}
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Save creates a new inventory item
func (r *InventoryRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	query, args, err := psql().Insert("inventory_items").
		Columns(inventoryColumns...).
		Values(item.Name, item.TotalQuantity, item.Category, item.Description, item.CreatedAt, item.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%q: %w", item.Name, domain.ErrItemExists)
		}
		return fmt.Errorf("failed to save inventory item: %w", err)
	}

	r.logger.DebugContext(ctx, "inventory item saved", slog.String("item", item.Name))
	return nil
}

// Upsert inserts or replaces an item, keeping the original created_at.
func (r *InventoryRepository) Upsert(ctx context.Context, item *domain.InventoryItem) (bool, error) {
	query, args, err := psql().Insert("inventory_items").
		Columns(inventoryColumns...).
		Values(item.Name, item.TotalQuantity, item.Category, item.Description, item.CreatedAt, item.UpdatedAt).
		Suffix(`ON CONFLICT (name) DO UPDATE SET
			total_quantity = EXCLUDED.total_quantity,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, (xmax = 0) AS inserted`).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var inserted bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&item.CreatedAt, &inserted); err != nil {
		return false, fmt.Errorf("failed to upsert inventory item: %w", err)
	}
	return inserted, nil
}

// FindByName returns nil when the item does not exist.
func (r *InventoryRepository) FindByName(ctx context.Context, name string) (*domain.InventoryItem, error) {
	query, args, err := psql().Select(inventoryColumns...).
		From("inventory_items").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	item, err := scanInventoryItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find inventory item: %w", err)
	}
	return item, nil
}

func (r *InventoryRepository) FindByNames(ctx context.Context, names []string) ([]*domain.InventoryItem, error) {
	if len(names) == 0 {
		return []*domain.InventoryItem{}, nil
	}

	query, args, err := psql().Select(inventoryColumns...).
		From("inventory_items").
		Where(squirrel.Eq{"name": names}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return r.queryItems(ctx, query, args...)
}

func (r *InventoryRepository) List(ctx context.Context, params ports.InventoryListParams) ([]*domain.InventoryItem, error) {
	qb := psql().Select(inventoryColumns...).From("inventory_items")

	if params.Category != "" {
		qb = qb.Where(squirrel.Eq{"category": params.Category})
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := "%" + search + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
		})
	}

	query, args, err := qb.OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return r.queryItems(ctx, query, args...)
}

func (r *InventoryRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM inventory_items WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%q: %w", name, domain.ErrItemNotFound)
	}
	return nil
}

func (r *InventoryRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM inventory_items WHERE name = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check inventory item: %w", err)
	}
	return exists, nil
}

func (r *InventoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM inventory_items").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count inventory items: %w", err)
	}
	return count, nil
}

func (r *InventoryRepository) queryItems(ctx context.Context, query string, args ...interface{}) ([]*domain.InventoryItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	items, err := ScanMany(rows, func(row pgx.Rows) (*domain.InventoryItem, error) {
		return scanInventoryItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan inventory: %w", err)
	}
	return items, nil
}

func scanInventoryItem(row pgx.Row) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{}
	err := row.Scan(
		&item.Name, &item.TotalQuantity, &item.Category,
		&item.Description, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}
