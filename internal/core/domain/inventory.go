// internal/core/domain/inventory.go
package domain

import (
	"math"
	"strings"
	"time"
)

const (
	// DefaultCategory is applied to items stored without a category.
	DefaultCategory = "general"

	MaxItemNameLength = 120

	// MaxQuantity bounds every stored quantity to the INTEGER columns.
	MaxQuantity = math.MaxInt32
)

// InventoryItem is the procurement record of an item. TotalQuantity is what is
// owned, not what is currently available; availability is computed from the
// borrow and return ledgers at read time.
type InventoryItem struct {
	Name          string    `json:"name"`
	TotalQuantity int       `json:"totalQuantity"`
	Category      string    `json:"category"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ItemAvailability is an inventory item together with the quantity currently
// committed to active requests.
type ItemAvailability struct {
	InventoryItem
	Outstanding int `json:"outstanding"`
	Available   int `json:"available"`
}

// NormalizeItemName returns the canonical key form of an item name.
func NormalizeItemName(name string) string {
	return strings.TrimSpace(name)
}

// Validate checks the invariants of an inventory item.
func (i *InventoryItem) Validate() error {
	name := NormalizeItemName(i.Name)
	if name == "" {
		return Validationf("name is required")
	}
	if len(name) > MaxItemNameLength {
		return Validationf("name must be at most %d characters", MaxItemNameLength)
	}
	if i.TotalQuantity < 0 {
		return Validationf("totalQuantity cannot be negative")
	}
	if i.TotalQuantity > MaxQuantity {
		return Validationf("totalQuantity must be at most %d", MaxQuantity)
	}
	return nil
}

// PrepareForStorage normalizes fields and stamps timestamps before persistence.
func (i *InventoryItem) PrepareForStorage() {
	now := time.Now().UTC()

	i.Name = NormalizeItemName(i.Name)
	i.Category = strings.TrimSpace(i.Category)
	if i.Category == "" {
		i.Category = DefaultCategory
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	i.UpdatedAt = now
}
