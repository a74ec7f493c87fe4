// Package outline reads worksheet row grouping and turns it into per-row hierarchy levels.
package outline

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/nconklindev/bomdiff/internal/types"
)

// DefaultSheetPath is used when a sheet cannot be resolved through the workbook parts.
const DefaultSheetPath = "xl/worksheets/sheet1.xml"

// RowMeta is one <row> element of a worksheet. Level and Hidden are nil when the
// attribute is absent.
type RowMeta struct {
	// Row is the 1-based absolute row index.
	Row    int
	Level  *int
	Hidden *bool
}

// ReadRowMetadata lists the grouping attributes of every row element in a sheet.
func ReadRowMetadata(name string, data []byte, sheetName string) ([]RowMeta, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, types.NewParseError(name, sheetName, "outline", err)
	}

	sheetPath := sheetPart(r, sheetName)
	sheetXML, err := fs.ReadFile(r, sheetPath)
	if errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("worksheet part %s not found", sheetPath)
	}
	if err != nil {
		return nil, types.NewParseError(name, sheetName, "outline", err)
	}

	rows, err := parseSheetRows(sheetXML)
	if err != nil {
		return nil, types.NewParseError(name, sheetName, "outline", err)
	}
	return rows, nil
}

type workbookPart struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"id,attr"`
	} `xml:"sheets>sheet"`
}

type relsPart struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// sheetPart follows workbook.xml and its relationships from a sheet name to the
// worksheet part. Anything it cannot resolve maps to DefaultSheetPath.
func sheetPart(r *zip.Reader, sheetName string) string {
	var wb workbookPart
	if !unmarshalPart(r, "xl/workbook.xml", &wb) {
		return DefaultSheetPath
	}
	var rels relsPart
	if !unmarshalPart(r, "xl/_rels/workbook.xml.rels", &rels) {
		return DefaultSheetPath
	}

	for _, sheet := range wb.Sheets {
		if sheet.Name != sheetName {
			continue
		}
		for _, rel := range rels.Relationships {
			if rel.ID == sheet.RID && strings.HasSuffix(rel.Type, "/worksheet") {
				return resolvePartPath(rel.Target)
			}
		}
	}
	return DefaultSheetPath
}

func unmarshalPart(r *zip.Reader, path string, v any) bool {
	data, err := fs.ReadFile(r, path)
	if err != nil {
		return false
	}
	return xml.Unmarshal(data, v) == nil
}

func parseSheetRows(data []byte) ([]RowMeta, error) {
	var rows []RowMeta
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}

		var meta RowMeta
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "r":
				row, err := strconv.Atoi(attr.Value)
				if err != nil || row < 1 {
					return nil, fmt.Errorf("row element %d: invalid r attribute %q", len(rows)+1, attr.Value)
				}
				meta.Row = row
			case "outlineLevel":
				if level, err := strconv.Atoi(attr.Value); err == nil && level >= 0 {
					meta.Level = &level
				}
			case "hidden":
				hidden := attr.Value == "1" || attr.Value == "true"
				meta.Hidden = &hidden
			}
		}
		// rows without r follow the previous one
		if meta.Row == 0 {
			meta.Row = 1
			if len(rows) > 0 {
				meta.Row = rows[len(rows)-1].Row + 1
			}
		}
		rows = append(rows, meta)

		if err := decoder.Skip(); err != nil {
			return nil, err
		}
	}

	return rows, nil
}

// resolvePartPath resolves a relationship target relative to xl/.
func resolvePartPath(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	if strings.HasPrefix(target, "../") {
		for strings.HasPrefix(target, "../") {
			target = strings.TrimPrefix(target, "../")
		}
		return target
	}
	return "xl/" + target
}
