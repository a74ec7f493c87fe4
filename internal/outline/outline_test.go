package outline

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/nconklindev/bomdiff/internal/types"

	"github.com/xuri/excelize/v2"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestExtract(t *testing.T) {
	rows := []RowMeta{
		{Row: 1},
		{Row: 2, Level: intPtr(0)},
		{Row: 3, Level: intPtr(1), Hidden: boolPtr(true)},
		{Row: 4, Level: intPtr(2)},
		{Row: 5},
	}

	got := Extract(rows, 2)

	if _, ok := got[0]; ok {
		t.Errorf("Rows at or above the header must be dropped: %v", got)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d: %v", len(got), got)
	}
	if got[1] != (types.OutlineInfo{Level: 1, Hidden: true}) {
		t.Errorf("Row 3 -> index 1: got %+v", got[1])
	}
	if got[2].Level != 2 || got[2].Hidden {
		t.Errorf("Row 4 -> index 2: got %+v", got[2])
	}
	if got[3] != (types.OutlineInfo{}) {
		t.Errorf("Missing attributes should default, got %+v", got[3])
	}
}

func TestMaxDepth(t *testing.T) {
	if got := MaxDepth(nil); got != 0 {
		t.Errorf("MaxDepth(nil) = %d; want 0", got)
	}
	o := types.Outline{2: {Level: 1}, 3: {Level: 3}, 4: {Level: 0}}
	if got := MaxDepth(o); got != 3 {
		t.Errorf("MaxDepth() = %d; want 3", got)
	}
}

func TestParseSheetRows(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1"><c r="A1" t="s"><v>0</v></c></row>
    <row r="2" outlineLevel="1"><c r="A2"><v>1</v></c></row>
    <row r="4" outlineLevel="2" hidden="1"/>
  </sheetData>
</worksheet>`)

	rows, err := parseSheetRows(data)
	if err != nil {
		t.Fatalf("parseSheetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0].Level != nil || rows[0].Hidden != nil {
		t.Errorf("Row 1 should have no attributes: %+v", rows[0])
	}
	if rows[1].Row != 2 || rows[1].Level == nil || *rows[1].Level != 1 {
		t.Errorf("Unexpected row 2: %+v", rows[1])
	}
	if rows[2].Row != 4 || *rows[2].Level != 2 || !*rows[2].Hidden {
		t.Errorf("Unexpected row 4: %+v", rows[2])
	}
}

func TestResolvePartPath(t *testing.T) {
	tests := []struct {
		target   string
		expected string
	}{
		{"worksheets/sheet2.xml", "xl/worksheets/sheet2.xml"},
		{"/xl/worksheets/sheet3.xml", "xl/worksheets/sheet3.xml"},
		{"../xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}

	for _, tt := range tests {
		if got := resolvePartPath(tt.target); got != tt.expected {
			t.Errorf("resolvePartPath(%q) = %q; want %q", tt.target, got, tt.expected)
		}
	}
}

func TestReadRowMetadata(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	f.NewSheet("Grouped")
	for row := 1; row <= 4; row++ {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue("Grouped", cell, row)
	}
	if err := f.SetRowOutlineLevel("Grouped", 3, 1); err != nil {
		t.Fatal(err)
	}
	if err := f.SetRowOutlineLevel("Grouped", 4, 2); err != nil {
		t.Fatal(err)
	}
	if err := f.SetRowVisible("Grouped", 4, false); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	rows, err := ReadRowMetadata("grouped.xlsx", buf.Bytes(), "Grouped")
	if err != nil {
		t.Fatalf("ReadRowMetadata failed: %v", err)
	}

	levels := make(map[int]int)
	hidden := make(map[int]bool)
	for _, r := range rows {
		if r.Level != nil {
			levels[r.Row] = *r.Level
		}
		if r.Hidden != nil {
			hidden[r.Row] = *r.Hidden
		}
	}
	if levels[3] != 1 || levels[4] != 2 {
		t.Errorf("Unexpected levels: %v", levels)
	}
	if !hidden[4] || hidden[3] {
		t.Errorf("Unexpected hidden flags: %v", hidden)
	}
}

func TestReadRowMetadataInvalid(t *testing.T) {
	_, err := ReadRowMetadata("broken.xlsx", []byte("plain text"), "Sheet1")

	var parseErr *types.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected *types.ParseError, got %v", err)
	}
	if parseErr.Component != "outline" {
		t.Errorf("Expected outline component, got %q", parseErr.Component)
	}
}

func TestParseSheetRowsMalformedRowIndex(t *testing.T) {
	for _, r := range []string{"x", "0", "-3"} {
		data := []byte(`<worksheet><sheetData><row r="1"/><row r="` + r + `" outlineLevel="1"/></sheetData></worksheet>`)
		if _, err := parseSheetRows(data); err == nil {
			t.Errorf("r=%q: expected an error", r)
		}
	}
}

func TestParseSheetRowsMissingRowIndex(t *testing.T) {
	data := []byte(`<worksheet><sheetData><row/><row r="5"/><row/></sheetData></worksheet>`)

	rows, err := parseSheetRows(data)
	if err != nil {
		t.Fatalf("parseSheetRows failed: %v", err)
	}
	got := []int{rows[0].Row, rows[1].Row, rows[2].Row}
	if got[0] != 1 || got[1] != 5 || got[2] != 6 {
		t.Errorf("Row indexes = %v; want [1 5 6]", got)
	}
}

func zipParts(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range parts {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const (
	testWorkbook = `<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets>
    <sheet name="First" sheetId="1" r:id="rId1"/>
    <sheet name="BOM" sheetId="2" r:id="rId2"/>
  </sheets>
</workbook>`
	testRels = `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="/xl/worksheets/bom.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`
)

func TestReadRowMetadataResolvesSheetPart(t *testing.T) {
	data := zipParts(t, map[string]string{
		"xl/workbook.xml":            testWorkbook,
		"xl/_rels/workbook.xml.rels": testRels,
		"xl/worksheets/sheet1.xml":   `<worksheet><sheetData><row r="1"/></sheetData></worksheet>`,
		"xl/worksheets/bom.xml":      `<worksheet><sheetData><row r="7" outlineLevel="3"/></sheetData></worksheet>`,
	})

	tests := []struct {
		sheet string
		row   int
	}{
		{"BOM", 7},
		{"First", 1},
		{"Unknown", 1},
	}

	for _, tt := range tests {
		rows, err := ReadRowMetadata("parts.xlsx", data, tt.sheet)
		if err != nil {
			t.Fatalf("%s: ReadRowMetadata failed: %v", tt.sheet, err)
		}
		if len(rows) != 1 || rows[0].Row != tt.row {
			t.Errorf("%s: rows = %+v; want one row %d", tt.sheet, rows, tt.row)
		}
	}
}

func TestReadRowMetadataMalformedSheet(t *testing.T) {
	tests := []struct {
		name  string
		parts map[string]string
	}{
		{"missing worksheet part", map[string]string{"xl/workbook.xml": testWorkbook}},
		{"bad row index", map[string]string{"xl/worksheets/sheet1.xml": `<worksheet><sheetData><row r="A"/></sheetData></worksheet>`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRowMetadata("parts.xlsx", zipParts(t, tt.parts), "First")

			var parseErr *types.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Expected *types.ParseError, got %v", err)
			}
		})
	}
}
