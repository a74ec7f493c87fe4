package outline

import (
	"github.com/nconklindev/bomdiff/internal/types"
)

// Extract keys row grouping by header-relative index (absolute row - header index).
// Rows at or above the header index are dropped. Missing levels default to 0 and
// missing hidden flags to false.
func Extract(rows []RowMeta, headerIdx int) types.Outline {
	result := make(types.Outline)

	for _, row := range rows {
		if row.Row <= headerIdx {
			continue
		}

		info := types.OutlineInfo{}
		if row.Level != nil {
			info.Level = *row.Level
		}
		if row.Hidden != nil {
			info.Hidden = *row.Hidden
		}
		result[row.Row-headerIdx] = info
	}

	return result
}

// MaxDepth returns the deepest level in o, or 0 for an empty outline.
func MaxDepth(o types.Outline) int {
	maxLevel := 0
	for _, info := range o {
		if info.Level > maxLevel {
			maxLevel = info.Level
		}
	}
	return maxLevel
}
