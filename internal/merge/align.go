package merge

import (
	"strings"

	"github.com/nconklindev/bomdiff/internal/types"
)

// OutlineOffset is added to an output position to find its outline entry.
// The outline is keyed by (absolute 1-based row - header index), so the first
// data row sits at 2. Downstream reports depend on this exact alignment.
const OutlineOffset = 2

// RootLevelValue marks an ungrouped row that still carries a key.
const RootLevelValue = "..1"

type slotKind int

const (
	// slotPaired is a Left row with its Right counterpart looked up by key.
	slotPaired slotKind = iota
	// slotInserted is a Right row whose key never occurs in Left.
	slotInserted
)

// slot is one output row before rendering.
type slot struct {
	kind  slotKind
	left  types.Record
	right types.Record
}

// keyIndex maps a trimmed key value to its record. A repeated key keeps the last record.
type keyIndex map[string]types.Record

func buildIndex(records []types.Record, keyField string) keyIndex {
	idx := make(keyIndex, len(records))
	for _, rec := range records {
		idx[keyOf(rec, keyField)] = rec
	}
	return idx
}

func keyOf(rec types.Record, keyField string) string {
	if rec == nil {
		return ""
	}
	return strings.TrimSpace(types.CellString(rec[keyField]))
}

// align walks both tables by position. For each position the Left row is emitted
// with its keyed counterpart, then the Right row is inserted right after it when
// its key is absent from Left altogether. Right rows whose key exists anywhere in
// Left are represented by that Left row and never inserted.
func align(in Input) []slot {
	leftRecords := in.Left.Records
	rightRecords := in.Right.Records
	leftIdx := buildIndex(leftRecords, in.LeftKey)
	rightIdx := buildIndex(rightRecords, in.RightKey)

	n := max(len(leftRecords), len(rightRecords))
	slots := make([]slot, 0, n)

	for i := 0; i < n; i++ {
		if i < len(leftRecords) {
			left := leftRecords[i]
			slots = append(slots, slot{
				kind:  slotPaired,
				left:  left,
				right: rightIdx[keyOf(left, in.LeftKey)],
			})
		}

		if i < len(rightRecords) {
			right := rightRecords[i]
			if _, inLeft := leftIdx[keyOf(right, in.RightKey)]; !inLeft {
				slots = append(slots, slot{kind: slotInserted, right: right})
			}
		}
	}

	return slots
}

// render turns slots into merged rows. Hierarchy markers are looked up by output
// position, so an inserted row shifts the markers of every row after it.
func render(in Input, l *layout, slots []slot) []types.MergedRow {
	rows := make([]types.MergedRow, 0, len(slots))

	for pos, s := range slots {
		row := baseRow(in, l, pos)

		switch s.kind {
		case slotPaired:
			for _, c := range l.left {
				row[c.Key] = s.left[c.Field]
			}
			for _, c := range l.right {
				if s.right != nil {
					row[c.Key] = s.right[c.Field]
				} else {
					row[c.Key] = ""
				}
			}
		case slotInserted:
			for _, c := range l.left {
				row[c.Key] = ""
			}
			for _, c := range l.right {
				row[c.Key] = s.right[c.Field]
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// baseRow builds the hierarchy columns for output position pos.
func baseRow(in Input, l *layout, pos int) types.MergedRow {
	row := make(types.MergedRow, len(l.levels)+1+len(l.left)+len(l.right))
	for _, name := range l.levels {
		row[name] = ""
	}
	row[types.LevelValueField] = ""

	if in.Outline == nil {
		return row
	}

	if info, ok := in.Outline[pos+OutlineOffset]; ok {
		level := info.Level
		if level >= 0 && level < len(l.levels) {
			marker := level + 1
			row[l.levels[level]] = marker
			row[types.LevelValueField] = strings.Repeat(".", marker+1) + types.CellString(marker)
		}
		return row
	}

	if pos < len(in.Left.Records) && keyOf(in.Left.Records[pos], in.LeftKey) != "" {
		row[types.LevelValueField] = RootLevelValue
	}

	return row
}
