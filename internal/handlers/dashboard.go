// internal/handlers/dashboard.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

// DashboardHandler handles dashboard operations
type DashboardHandler struct {
	requests  ports.RequestService
	inventory ports.InventoryService
	logger    *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(requests ports.RequestService, inventory ports.InventoryService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		requests:  requests,
		inventory: inventory,
		logger:    logger.With(slog.String("handler", "dashboard")),
	}
}

// DashboardData is the body of GET /api/v1/dashboard.
type DashboardData struct {
	*ports.RequestSummary
	// Exhausted lists items with nothing left to lend.
	Exhausted []domain.ItemAvailability `json:"exhausted"`
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.requests.Summary(ctx)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	views, err := h.inventory.ListAvailability(ctx)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	data := DashboardData{RequestSummary: summary, Exhausted: []domain.ItemAvailability{}}
	for _, v := range views {
		if v.Available <= 0 {
			data.Exhausted = append(data.Exhausted, v)
		}
	}

	respondJSON(w, h.logger, http.StatusOK, data)
}
