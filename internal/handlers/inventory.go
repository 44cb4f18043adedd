// internal/handlers/inventory.go
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

// InventoryHandler handles inventory-related HTTP requests
type InventoryHandler struct {
	service ports.InventoryService
	logger  *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "inventory")),
	}
}

// GetItem handles GET /api/v1/inventory/{item}
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("item")

	item, err := h.service.GetItem(r.Context(), name)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, item)
}

// ListInventory handles GET /api/v1/inventory. The optional category and
// search filters narrow the availability list to matching catalogue records.
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := ports.InventoryListParams{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
	}

	views, err := h.service.ListAvailability(ctx)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	if params.Category != "" || params.Search != "" {
		matches, err := h.service.ListItems(ctx, params)
		if err != nil {
			respondDomainError(w, r, h.logger, err)
			return
		}
		views = filterAvailability(views, matches)
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"items": views,
		"count": len(views),
	})
}

// CreateItem handles POST /api/v1/inventory
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	var body InventoryItemBody
	if fields, err := decodeBody(w, r, &body); err != nil {
		respondDecodeError(w, r, h.logger, fields, err)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		respondDecodeError(w, r, h.logger, map[string]string{"InventoryItemBody.Name": "required"},
			domain.Validationf("name is required"))
		return
	}

	item, err := h.service.CreateItem(r.Context(), actor, body.ToDomain(body.Name))
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, item)
}

// UpsertItem handles PUT /api/v1/inventory/{item}. The path names the item;
// a name in the body, if present, must match it.
func (h *InventoryHandler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	name := domain.NormalizeItemName(r.PathValue("item"))

	var body InventoryItemBody
	if fields, err := decodeBody(w, r, &body); err != nil {
		respondDecodeError(w, r, h.logger, fields, err)
		return
	}
	if body.Name != "" && domain.NormalizeItemName(body.Name) != name {
		respondDomainError(w, r, h.logger, domain.Validationf("body name %q does not match path %q", body.Name, name))
		return
	}

	item, created, err := h.service.UpsertItem(r.Context(), actor, body.ToDomain(name))
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, h.logger, status, item)
}

// DeleteItem handles DELETE /api/v1/inventory/{item}
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	name := domain.NormalizeItemName(r.PathValue("item"))

	if err := h.service.DeleteItem(r.Context(), actor, name); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "inventory item deleted",
		slog.String("item", name),
		slog.String("actor", actor.ID))

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message": "Inventory item deleted successfully",
		"item":    name,
	})
}

func filterAvailability(views []domain.ItemAvailability, matches []*domain.InventoryItem) []domain.ItemAvailability {
	keep := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		keep[m.Name] = struct{}{}
	}

	out := make([]domain.ItemAvailability, 0, len(matches))
	for _, v := range views {
		if _, ok := keep[v.Name]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Request/Response DTOs

// InventoryItemBody is the body of POST /inventory and PUT /inventory/{item}.
type InventoryItemBody struct {
	Name          string `json:"name,omitempty" validate:"omitempty,max=120"`
	TotalQuantity *int   `json:"totalQuantity" validate:"required,gte=0"`
	Category      string `json:"category,omitempty" validate:"omitempty,max=60"`
	Description   string `json:"description,omitempty"`
}

// ToDomain converts the body to a domain model named name
func (b *InventoryItemBody) ToDomain(name string) *domain.InventoryItem {
	item := &domain.InventoryItem{
		Name:        name,
		Category:    b.Category,
		Description: b.Description,
	}
	if b.TotalQuantity != nil {
		item.TotalQuantity = *b.TotalQuantity
	}
	return item
}
