// internal/handlers/export.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var availabilityHeaders = []string{"Item", "Category", "Total", "Outstanding", "Available", "Description"}

// ExportHandler handles inventory export requests
type ExportHandler struct {
	inventory ports.InventoryService
	now       func() time.Time
	logger    *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(inventory ports.InventoryService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		inventory: inventory,
		now:       time.Now,
		logger:    logger.With(slog.String("handler", "export")),
	}
}

// ExportAvailability handles GET /api/v1/inventory/export
func (h *ExportHandler) ExportAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	views, err := h.inventory.ListAvailability(ctx)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	data, err := generateAvailabilityWorkbook(views)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file", slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "InternalError", "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("inventory_availability_%s.xlsx", h.now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "availability export completed",
		slog.Int("total_rows", len(views)),
		slog.String("filename", filename))
}

func generateAvailabilityWorkbook(views []domain.ItemAvailability) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Availability")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range availabilityHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, v := range views {
		row := sheet.AddRow()
		row.AddCell().SetString(v.Name)
		row.AddCell().SetString(v.Category)
		row.AddCell().SetInt(v.TotalQuantity)
		row.AddCell().SetInt(v.Outstanding)
		row.AddCell().SetInt(v.Available)
		row.AddCell().SetString(v.Description)
	}

	sheet.SetColWidth(1, len(availabilityHeaders), 18)

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}
	return buffer.Bytes(), nil
}
