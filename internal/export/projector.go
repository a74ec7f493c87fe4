// Package export shapes merge results into the final workbook layout and writes it.
package export

import (
	"strings"
	"unicode"

	"github.com/nconklindev/bomdiff/internal/merge"
	"github.com/nconklindev/bomdiff/internal/refdes"
	"github.com/nconklindev/bomdiff/internal/types"
)

const (
	DefaultLeftLabel  = "Compare_" + types.LeftPrefix
	DefaultRightLabel = "Compare_" + types.RightPrefix

	CanceledPrefix = "Canceled_"
	AddedPrefix    = "Added_"
)

// descriptionLabels are checked in order against normalized field names.
var descriptionLabels = []string{
	"description",
	"descr",
	"desc",
	"part description",
	"item description",
	"designation",
	"name",
}

var placeholders = map[string]bool{"": true, "--": true, ".": true}

// Options controls the export projection.
type Options struct {
	// Key fields as named in the source tables.
	LeftKey  string
	RightKey string

	// Header prefixes for the comparison copies.
	LeftLabel  string
	RightLabel string

	// RangeFields are Left field names (or "Left." keys) that get Canceled_/Added_ columns.
	RangeFields []string
}

// Sheet is a header row plus data rows aligned with it.
type Sheet struct {
	Headers []string
	Rows    [][]types.Cell
}

type column struct {
	header string
	value  func(types.MergedRow) types.Cell
}

type pair struct {
	name  string
	left  types.Column
	right types.Column
}

// Project derives the export layout from a merge result.
func Project(res *merge.Result, opts Options) *Sheet {
	if opts.LeftLabel == "" {
		opts.LeftLabel = DefaultLeftLabel
	}
	if opts.RightLabel == "" {
		opts.RightLabel = DefaultRightLabel
	}

	consumed := make(map[string]bool)
	var cols []column

	for _, c := range res.Columns {
		if types.IsLevelField(c.Key) {
			consumed[c.Key] = true
			cols = append(cols, cellColumn(c.Label, c.Key))
		}
	}

	if col, ok := keyColumn(res.Columns, opts, consumed); ok {
		cols = append(cols, col)
	}
	if col, ok := descriptionColumn(res.Columns, consumed); ok {
		cols = append(cols, col)
	}

	pairs := comparePairs(res.Columns, consumed)

	for _, c := range res.Columns {
		if !consumed[c.Key] {
			cols = append(cols, cellColumn(c.Label, c.Key))
		}
	}

	for _, p := range pairs {
		cols = append(cols,
			cellColumn(opts.LeftLabel+p.name, p.left.Key),
			cellColumn(opts.RightLabel+strings.TrimPrefix(p.right.Label, types.RightPrefix), p.right.Key),
		)
	}

	cols = append(cols, rangeColumns(res.Columns, opts.RangeFields)...)

	sheet := &Sheet{Headers: make([]string, len(cols))}
	for i, c := range cols {
		sheet.Headers[i] = c.header
	}

	for _, row := range res.Rows {
		if !pairsDiffer(row, pairs) {
			continue
		}
		out := make([]types.Cell, len(cols))
		for i, c := range cols {
			out[i] = c.value(row)
		}
		sheet.Rows = append(sheet.Rows, out)
	}

	return sheet
}

func cellColumn(header, key string) column {
	return column{header: header, value: func(row types.MergedRow) types.Cell { return row[key] }}
}

// coalesce returns the first non-blank cell of the given keys.
func coalesce(header string, keys ...string) column {
	return column{header: header, value: func(row types.MergedRow) types.Cell {
		for _, k := range keys {
			if !types.IsBlank(row[k]) {
				return row[k]
			}
		}
		return ""
	}}
}

func keyColumn(columns []types.Column, opts Options, consumed map[string]bool) (column, bool) {
	var keys []string
	header := opts.LeftKey
	if c, ok := findByLabel(columns, types.LeftPrefix+opts.LeftKey); ok && opts.LeftKey != "" {
		keys = append(keys, c.Key)
	}
	if c, ok := findByLabel(columns, types.RightPrefix+opts.RightKey); ok && opts.RightKey != "" {
		keys = append(keys, c.Key)
		if header == "" {
			header = opts.RightKey
		}
	}
	if len(keys) == 0 {
		return column{}, false
	}
	for _, k := range keys {
		consumed[k] = true
	}
	return coalesce(header, keys...), true
}

// descriptionColumn picks the first column whose name looks like a description,
// searching Left columns before Right ones. Its counterpart on the other side is consumed too.
func descriptionColumn(columns []types.Column, consumed map[string]bool) (column, bool) {
	for _, prefix := range []string{types.LeftPrefix, types.RightPrefix} {
		for _, c := range columns {
			if consumed[c.Key] || !strings.HasPrefix(c.Key, prefix) {
				continue
			}
			name := strings.TrimPrefix(c.Label, prefix)
			if !isDescription(name) {
				continue
			}

			keys := []string{c.Key}
			if other, ok := counterpart(columns, c.Key); ok && !consumed[other.Key] {
				keys = append(keys, other.Key)
			}
			for _, k := range keys {
				consumed[k] = true
			}
			return coalesce(name, keys...), true
		}
	}
	return column{}, false
}

func isDescription(name string) bool {
	n := normalize(name)
	if n == "" {
		return false
	}
	for _, label := range descriptionLabels {
		if strings.Contains(n, normalize(label)) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// comparePairs returns every Left/Right pair whose columns are both unconsumed.
func comparePairs(columns []types.Column, consumed map[string]bool) []pair {
	var pairs []pair
	for _, c := range columns {
		if consumed[c.Key] || !strings.HasPrefix(c.Key, types.LeftPrefix) {
			continue
		}
		right, ok := counterpart(columns, c.Key)
		if !ok || consumed[right.Key] {
			continue
		}
		pairs = append(pairs, pair{
			name:  strings.TrimPrefix(c.Key, types.LeftPrefix),
			left:  c,
			right: right,
		})
	}
	return pairs
}

func rangeColumns(columns []types.Column, fields []string) []column {
	var cols []column
	seen := make(map[string]bool)
	for _, f := range fields {
		name := strings.TrimPrefix(f, types.LeftPrefix)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		leftKey := types.LeftPrefix + name
		rightKey := types.RightPrefix + name
		if _, ok := findByKey(columns, leftKey); !ok {
			continue
		}

		cols = append(cols,
			column{header: CanceledPrefix + name, value: func(row types.MergedRow) types.Cell {
				canceled, _ := refdes.Compare(types.CellString(row[leftKey]), types.CellString(row[rightKey]))
				return strings.Join(canceled, ",")
			}},
			column{header: AddedPrefix + name, value: func(row types.MergedRow) types.Cell {
				_, added := refdes.Compare(types.CellString(row[leftKey]), types.CellString(row[rightKey]))
				return strings.Join(added, ",")
			}},
		)
	}
	return cols
}

// pairsDiffer reports whether any comparison pair carries a real difference.
// Without pairs every row is kept.
func pairsDiffer(row types.MergedRow, pairs []pair) bool {
	if len(pairs) == 0 {
		return true
	}
	for _, p := range pairs {
		left := strings.TrimSpace(types.CellString(row[p.left.Key]))
		right := strings.TrimSpace(types.CellString(row[p.right.Key]))
		if left == right || (placeholders[left] && placeholders[right]) {
			continue
		}
		return true
	}
	return false
}

func counterpart(columns []types.Column, key string) (types.Column, bool) {
	switch {
	case strings.HasPrefix(key, types.LeftPrefix):
		return findByKey(columns, types.RightPrefix+strings.TrimPrefix(key, types.LeftPrefix))
	case strings.HasPrefix(key, types.RightPrefix):
		return findByKey(columns, types.LeftPrefix+strings.TrimPrefix(key, types.RightPrefix))
	}
	return types.Column{}, false
}

func findByKey(columns []types.Column, key string) (types.Column, bool) {
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return types.Column{}, false
}

func findByLabel(columns []types.Column, label string) (types.Column, bool) {
	for _, c := range columns {
		if c.Label == label {
			return c, true
		}
	}
	return types.Column{}, false
}
