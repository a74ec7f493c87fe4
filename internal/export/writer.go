package export

import (
	"fmt"
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/nconklindev/bomdiff/internal/types"
	"github.com/xuri/excelize/v2"
)

const (
	// FileName is the name of the exported workbook.
	FileName = "merged_tables.xlsx"
	// SheetName is the only sheet in the exported workbook.
	SheetName = "Merged"

	HeaderFill = "B1F0F0"

	minColWidth = 8
	maxColWidth = 60
)

// Write renders the sheet as xlsx bytes: a bold filled header row and thin
// borders on every written cell.
func Write(s *Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "000000"},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{HeaderFill}},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("cell style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("stream writer: %w", err)
	}

	for i, width := range columnWidths(s) {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	header := make([]interface{}, len(s.Headers))
	for i, h := range s.Headers {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for r, row := range s.Rows {
		values := make([]interface{}, len(s.Headers))
		for i := range values {
			var v types.Cell
			if i < len(row) {
				v = row[i]
			}
			values[i] = excelize.Cell{StyleID: cellStyle, Value: v}
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the sheet to path.
func WriteFile(s *Sheet, path string) error {
	data, err := Write(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "right", "bottom"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "000000", Style: 1}
	}
	return borders
}

func columnWidths(s *Sheet) []float64 {
	widths := make([]float64, len(s.Headers))
	for i, h := range s.Headers {
		widths[i] = float64(runewidth.StringWidth(h))
	}
	for _, row := range s.Rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := float64(runewidth.StringWidth(types.CellString(row[i]))); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, w := range widths {
		widths[i] = min(max(w+2, minColWidth), maxColWidth)
	}
	return widths
}
