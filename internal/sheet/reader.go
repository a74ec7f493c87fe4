// Package sheet turns spreadsheet bytes into typed tables.
package sheet

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/nconklindev/bomdiff/internal/types"

	"github.com/xuri/excelize/v2"
)

func openWorkbook(name string, data []byte) (*excelize.File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, types.NewParseError(name, "", "grid", err)
	}
	return f, nil
}

// ListSheets returns the workbook's sheet names in workbook order.
func ListSheets(name string, data []byte) ([]string, error) {
	f, err := openWorkbook(name, data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// ReadGrid reads every row of a sheet as raw cell values.
// Row i of the grid is spreadsheet row i+1, so leading blank rows are kept.
func ReadGrid(name string, data []byte, sheetName string) (types.Grid, error) {
	f, err := openWorkbook(name, data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, types.NewParseError(name, sheetName, "grid", err)
	}

	grid := make(types.Grid, len(rows))
	for rowIdx, row := range rows {
		cells := make([]types.Cell, len(row))
		for colIdx, raw := range row {
			if raw == "" {
				continue
			}
			cellName, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			cellType, err := f.GetCellType(sheetName, cellName)
			if err != nil {
				cellType = excelize.CellTypeUnset
			}
			cells[colIdx] = parseValue(raw, cellType)
		}
		grid[rowIdx] = cells
	}

	return grid, nil
}

// parseValue keeps the container's own typing: numbers stay numbers, text stays text.
func parseValue(raw string, cellType excelize.CellType) types.Cell {
	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	return raw
}
