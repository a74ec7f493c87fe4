package types

import (
	"strconv"
	"strings"
)

// Cell is a single scalar read from a sheet: string, float64, bool or nil.
type Cell = any

// Grid is a sheet's cells by 0-based row. Trailing cells may be absent.
type Grid [][]Cell

// Record maps a field name to its cell value for one data row.
type Record map[string]Cell

// Table is a typed view of one sheet below its header row.
type Table struct {
	File    string
	Sheet   string
	Fields  []string
	Records []Record
}

// OutlineInfo is the grouping state of one data row.
type OutlineInfo struct {
	Level  int
	Hidden bool
}

// Outline maps a header-relative row index to its OutlineInfo.
type Outline map[int]OutlineInfo

// FieldMapping declares that Left and Right name the same logical column.
type FieldMapping struct {
	Left   string
	Right  string
	Active bool
}

// Usable reports whether the engine should honor the mapping.
func (m FieldMapping) Usable() bool {
	return m.Active && m.Left != "" && m.Right != ""
}

// Column is one output column: the key used in MergedRow and the header shown to users.
type Column struct {
	Key   string
	Label string
}

// MergedRow is one row of the aligned output keyed by Column.Key.
type MergedRow map[string]Cell

const (
	LeftPrefix      = "Left."
	RightPrefix     = "Right."
	LevelPrefix     = "Level_"
	LevelValueField = "LevelValue"
)

// IsLevelField reports whether name is a hierarchy marker column that is never prefixed.
func IsLevelField(name string) bool {
	return strings.HasPrefix(name, LevelPrefix) || name == LevelValueField
}

// CellString renders a cell the way it is compared and exported.
func CellString(c Cell) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// IsBlank reports whether the cell has no visible content.
func IsBlank(c Cell) bool {
	return strings.TrimSpace(CellString(c)) == ""
}
