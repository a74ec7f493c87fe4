package merge

import (
	"fmt"
	"strings"

	"github.com/nconklindev/bomdiff/internal/outline"
	"github.com/nconklindev/bomdiff/internal/types"
)

// fieldColumn copies Field from a source record into the merged row under Key.
type fieldColumn struct {
	Field string
	Key   string
	Label string
	Level bool
}

type layout struct {
	levels []string
	left   []fieldColumn
	right  []fieldColumn
}

func newLayout(in Input) *layout {
	depth := 0
	if in.Outline != nil {
		depth = outline.MaxDepth(in.Outline)
	}
	l := &layout{levels: make([]string, depth+1)}
	for i := range l.levels {
		l.levels[i] = fmt.Sprintf("%s%d", types.LevelPrefix, i+1)
	}

	leftSelected := toSet(in.LeftFields)
	rightSelected := toSet(in.RightFields)
	aliases := activeAliases(in.Mappings, leftSelected)

	used := make(map[string]bool)
	for _, field := range in.Left.Fields {
		if !leftSelected[field] {
			continue
		}
		col := fieldColumn{Field: field, Key: types.LeftPrefix + field, Label: types.LeftPrefix + field}
		if types.IsLevelField(field) {
			col = fieldColumn{Field: field, Key: field, Label: field, Level: true}
		}
		if used[col.Key] {
			continue
		}
		used[col.Key] = true
		l.left = append(l.left, col)
	}

	// a same-named Right field loses its slot to the mapped one
	reserved := make(map[string]bool, len(aliases))
	for _, alias := range aliases {
		reserved[types.RightPrefix+alias] = true
	}

	for _, field := range in.Right.Fields {
		alias, mapped := aliases[field]
		if !rightSelected[field] && !mapped {
			continue
		}
		col := fieldColumn{Field: field, Key: types.RightPrefix + field, Label: types.RightPrefix + field}
		switch {
		case types.IsLevelField(field):
			col = fieldColumn{Field: field, Key: field, Label: field, Level: true}
		case mapped:
			col.Key = types.RightPrefix + alias
		case reserved[col.Key]:
			continue
		}
		if used[col.Key] {
			continue
		}
		used[col.Key] = true
		l.right = append(l.right, col)
	}

	return l
}

// activeAliases returns Right field -> Left field for every usable mapping whose
// Left field is selected. The first mapping wins for a repeated Left or Right field.
func activeAliases(mappings []types.FieldMapping, leftSelected map[string]bool) map[string]string {
	aliases := make(map[string]string)
	seenLeft := make(map[string]bool)
	for _, m := range mappings {
		if !m.Usable() || !leftSelected[m.Left] || seenLeft[m.Left] {
			continue
		}
		if _, taken := aliases[m.Right]; taken {
			continue
		}
		seenLeft[m.Left] = true
		aliases[m.Right] = m.Left
	}
	return aliases
}

func (l *layout) columns() []types.Column {
	cols := make([]types.Column, 0, len(l.levels)+1+len(l.left)+len(l.right))
	for _, name := range l.levels {
		cols = append(cols, types.Column{Key: name, Label: name})
	}
	cols = append(cols, types.Column{Key: types.LevelValueField, Label: types.LevelValueField})

	seen := make(map[string]bool, cap(cols))
	for _, c := range cols {
		seen[c.Key] = true
	}
	for _, group := range [][]fieldColumn{l.left, l.right} {
		for _, c := range group {
			if seen[c.Key] {
				continue
			}
			seen[c.Key] = true
			cols = append(cols, types.Column{Key: c.Key, Label: c.Label})
		}
	}
	return cols
}

// pairs returns the Left/Right key pairs compared by the change filter.
func (l *layout) pairs() [][2]string {
	var pairs [][2]string
	for _, c := range l.left {
		if c.Level {
			continue
		}
		name := strings.TrimPrefix(c.Key, types.LeftPrefix)
		pairs = append(pairs, [2]string{c.Key, types.RightPrefix + name})
	}
	return pairs
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
