package sheet

import (
	"errors"
	"testing"

	"github.com/nconklindev/bomdiff/internal/types"

	"github.com/xuri/excelize/v2"
)

func TestTypeRows(t *testing.T) {
	grid := types.Grid{
		{"Bill of materials"},
		{"Ref", "Qty", "Desc"},
		{"R1", 2.0},
		{},
		{"C1", 1.0, "Cap", "extra"},
	}
	fields := []string{"Ref", "Qty", "Desc"}

	records := TypeRows(grid, 1, fields)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if len(records[0]) != 3 {
		t.Errorf("Expected one entry per field, got %v", records[0])
	}
	if records[0]["Desc"] != nil {
		t.Errorf("Expected missing cell to be nil, got %v", records[0]["Desc"])
	}
	if records[1]["Ref"] != "C1" || records[1]["Qty"] != 1.0 {
		t.Errorf("Unexpected second record: %v", records[1])
	}
}

func workbookBytes(t *testing.T, fill func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	fill(f)

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestLoadTable(t *testing.T) {
	data := workbookBytes(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "Assembly 42")
		f.SetCellValue("Sheet1", "A3", "Part")
		f.SetCellValue("Sheet1", "B3", "Qty")
		f.SetCellValue("Sheet1", "C3", "Qty")
		f.SetCellValue("Sheet1", "A4", "P-100")
		f.SetCellValue("Sheet1", "B4", 4)
		f.SetCellValue("Sheet1", "C4", 2.5)
		f.SetCellValue("Sheet1", "A5", "P-200")
		f.NewSheet("Other")
	})

	sheets, err := ListSheets("bom.xlsx", data)
	if err != nil {
		t.Fatalf("ListSheets failed: %v", err)
	}
	if len(sheets) != 2 || sheets[0] != "Sheet1" || sheets[1] != "Other" {
		t.Errorf("Unexpected sheets: %v", sheets)
	}

	table, headerIdx, err := LoadTable("bom.xlsx", data, "Sheet1", HeaderWindow)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	if headerIdx != 2 {
		t.Errorf("Expected header index 2, got %d", headerIdx)
	}
	expectedFields := []string{"Part", "Qty", "Qty-2"}
	for i, f := range expectedFields {
		if table.Fields[i] != f {
			t.Errorf("Field %d: expected %s, got %s", i, f, table.Fields[i])
		}
	}
	if len(table.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(table.Records))
	}
	if table.Records[0]["Qty"] != 4.0 {
		t.Errorf("Expected float64(4), got %v (type: %T)", table.Records[0]["Qty"], table.Records[0]["Qty"])
	}
	if table.Records[0]["Qty-2"] != 2.5 {
		t.Errorf("Expected 2.5, got %v", table.Records[0]["Qty-2"])
	}
	if table.Records[1]["Qty"] != nil {
		t.Errorf("Expected nil for missing cell, got %v", table.Records[1]["Qty"])
	}
}

func TestReadGridNumericText(t *testing.T) {
	data := workbookBytes(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "00123")
		f.SetCellValue("Sheet1", "B1", 123)
	})

	grid, err := ReadGrid("codes.xlsx", data, "Sheet1")
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}
	if grid[0][0] != "00123" {
		t.Errorf("Expected text cell to stay text, got %v (type: %T)", grid[0][0], grid[0][0])
	}
	if grid[0][1] != 123.0 {
		t.Errorf("Expected numeric cell, got %v (type: %T)", grid[0][1], grid[0][1])
	}
}

func TestReadGridInvalidContainer(t *testing.T) {
	_, err := ReadGrid("notes.txt", []byte("not a workbook"), "Sheet1")
	if err == nil {
		t.Fatal("Expected an error for a non-spreadsheet")
	}

	var parseErr *types.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected *types.ParseError, got %T", err)
	}
	if parseErr.Component != "grid" || parseErr.File != "notes.txt" {
		t.Errorf("Unexpected ParseError fields: %+v", parseErr)
	}
}
