// cmd/seeder/catalogue.go
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/logistics-be/internal/core/domain"
)

// catalogueRow is one parsed procurement row and the sheet row it came from.
type catalogueRow struct {
	Row  int
	Item *domain.InventoryItem
}

// rowError reports a catalogue row that could not be parsed.
type rowError struct {
	Row int
	Err error
}

func (e rowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// column positions of the catalogue sheet: name, total_quantity, category, description
const (
	colName = iota
	colTotal
	colCategory
	colDescription
)

// parseCatalogue reads the first sheet of an xlsx workbook. The first row is a
// header. Blank rows are skipped; malformed rows are reported and skipped.
func parseCatalogue(file *xlsx.File) ([]catalogueRow, []rowError, error) {
	if len(file.Sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in catalogue")
	}
	sheet := file.Sheets[0]

	var (
		rows   []catalogueRow
		issues []rowError
	)
	seen := make(map[string]int)

	err := sheet.ForEachRow(func(r *xlsx.Row) error {
		rowIdx := r.GetCoordinate() + 1
		if rowIdx == 1 {
			return nil
		}

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}

		name := domain.NormalizeItemName(get(colName))
		totalStr := get(colTotal)
		if name == "" && totalStr == "" {
			return nil
		}

		total, err := strconv.Atoi(totalStr)
		if err != nil {
			issues = append(issues, rowError{Row: rowIdx, Err: fmt.Errorf("total_quantity %q is not an integer", totalStr)})
			return nil
		}

		item := &domain.InventoryItem{
			Name:          name,
			TotalQuantity: total,
			Category:      get(colCategory),
			Description:   get(colDescription),
		}
		if err := item.Validate(); err != nil {
			issues = append(issues, rowError{Row: rowIdx, Err: err})
			return nil
		}
		if first, dup := seen[name]; dup {
			issues = append(issues, rowError{Row: rowIdx, Err: fmt.Errorf("%q already listed on row %d", name, first)})
			return nil
		}
		seen[name] = rowIdx

		rows = append(rows, catalogueRow{Row: rowIdx, Item: item})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return rows, issues, nil
}
