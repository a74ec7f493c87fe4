package sheet

import (
	"github.com/nconklindev/bomdiff/internal/types"
)

// TypeRows pairs every row below the header with the field names.
// Each record holds exactly one entry per field; absent cells are nil.
// Rows without any value are skipped.
func TypeRows(grid types.Grid, headerIdx int, fields []string) []types.Record {
	var records []types.Record

	for rowIdx := headerIdx + 1; rowIdx < len(grid); rowIdx++ {
		row := grid[rowIdx]
		record := make(types.Record, len(fields))
		hasData := false

		for colIdx, field := range fields {
			var value types.Cell
			if colIdx < len(row) {
				value = row[colIdx]
			}
			if value != nil && value != "" {
				hasData = true
			}
			record[field] = value
		}

		if hasData {
			records = append(records, record)
		}
	}

	return records
}

// BuildTable runs header detection, naming and typing over a grid.
// It returns the table and the detected header row index.
func BuildTable(grid types.Grid, file, sheetName string, window int) (*types.Table, int) {
	table := &types.Table{File: file, Sheet: sheetName}
	if len(grid) == 0 {
		return table, 0
	}

	headerIdx := DetectHeaderRow(grid, window)
	table.Fields = NameColumns(grid[headerIdx])
	table.Records = TypeRows(grid, headerIdx, table.Fields)

	return table, headerIdx
}

// LoadTable reads one sheet and builds its table.
func LoadTable(file string, data []byte, sheetName string, window int) (*types.Table, int, error) {
	grid, err := ReadGrid(file, data, sheetName)
	if err != nil {
		return nil, 0, err
	}

	table, headerIdx := BuildTable(grid, file, sheetName, window)
	return table, headerIdx, nil
}
