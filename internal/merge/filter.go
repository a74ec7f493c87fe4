package merge

import (
	"slices"
	"strings"

	"github.com/nconklindev/bomdiff/internal/refdes"
	"github.com/nconklindev/bomdiff/internal/types"
)

// MaxExpandColumns is how many columns can have their designator ranges expanded.
const MaxExpandColumns = 2

// expandRanges rewrites string cells containing a hyphen in the given columns.
func expandRanges(rows []types.MergedRow, columns []string) {
	var targets []string
	for _, col := range columns {
		if col == "" || slices.Contains(targets, col) {
			continue
		}
		targets = append(targets, col)
		if len(targets) == MaxExpandColumns {
			break
		}
	}
	if len(targets) == 0 {
		return
	}

	for _, row := range rows {
		for _, col := range targets {
			if s, ok := row[col].(string); ok && strings.Contains(s, "-") {
				row[col] = refdes.Expand(s)
			}
		}
	}
}

// changedRows keeps rows where at least one Left/Right pair differs after trimming.
func changedRows(rows []types.MergedRow, l *layout) []types.MergedRow {
	pairs := l.pairs()
	kept := make([]types.MergedRow, 0, len(rows))

	for _, row := range rows {
		if rowChanged(row, pairs) {
			kept = append(kept, row)
		}
	}

	return kept
}

func rowChanged(row types.MergedRow, pairs [][2]string) bool {
	for _, p := range pairs {
		left := strings.TrimSpace(types.CellString(row[p[0]]))
		right := strings.TrimSpace(types.CellString(row[p[1]]))
		if left != right {
			return true
		}
	}
	return false
}
