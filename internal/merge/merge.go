// Package merge aligns two tables by key and keeps only the rows that changed.
package merge

import (
	"fmt"

	"github.com/nconklindev/bomdiff/internal/types"
)

// Input is everything the engine needs. Merge never modifies it.
type Input struct {
	Left  *types.Table
	Right *types.Table

	LeftKey  string
	RightKey string

	// Selected fields per side. Output follows each table's own field order.
	LeftFields  []string
	RightFields []string

	Mappings []types.FieldMapping

	// Outline of the Left sheet; nil when the sheet has no grouping metadata.
	Outline types.Outline

	// ExpandColumns are merged column keys (e.g. "Left.RefDes") whose ranges are expanded.
	ExpandColumns []string
}

// Result is the engine output.
type Result struct {
	Columns []types.Column
	Rows    []types.MergedRow
	// Total is the number of aligned rows before unchanged rows were dropped.
	Total int
}

// Labels returns the header text of every column in order.
func (r *Result) Labels() []string {
	labels := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		labels[i] = c.Label
	}
	return labels
}

// Keys returns the row key of every column in order.
func (r *Result) Keys() []string {
	keys := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		keys[i] = c.Key
	}
	return keys
}

// Merge aligns in.Left and in.Right and returns the changed rows.
func Merge(in Input) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	layout := newLayout(in)
	slots := align(in)
	rows := render(in, layout, slots)

	expandRanges(rows, in.ExpandColumns)

	return &Result{
		Columns: layout.columns(),
		Rows:    changedRows(rows, layout),
		Total:   len(rows),
	}, nil
}

// Columns returns the column layout Merge would produce for in without aligning any rows.
func Columns(in Input) ([]types.Column, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	return newLayout(in).columns(), nil
}

func validate(in Input) error {
	if in.Left == nil || in.Right == nil {
		return fmt.Errorf("%w: both tables must be loaded", types.ErrInputMissing)
	}
	if in.LeftKey == "" && in.RightKey == "" {
		return fmt.Errorf("%w: no key field selected", types.ErrInputMissing)
	}
	return nil
}
