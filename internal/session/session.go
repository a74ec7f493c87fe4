// Package session holds the mutable state of one comparison: two loaded sheets,
// the user's selections and the last merge result.
package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/nconklindev/bomdiff/internal/export"
	"github.com/nconklindev/bomdiff/internal/merge"
	"github.com/nconklindev/bomdiff/internal/outline"
	"github.com/nconklindev/bomdiff/internal/sheet"
	"github.com/nconklindev/bomdiff/internal/types"
	"go.uber.org/zap"
)

// SideID selects one of the two compared files.
type SideID int

const (
	Left SideID = iota
	Right
)

func (id SideID) String() string {
	if id == Left {
		return "left"
	}
	return "right"
}

// Side is one loaded file and the selections made on it.
type Side struct {
	File   string
	Sheets []string
	Sheet  string

	Table       *types.Table
	HeaderIndex int
	// Outline is only read for the Left side; nil when unavailable.
	Outline types.Outline

	Selected []string
	Key      string

	data []byte
}

// Loaded reports whether a sheet has been parsed into a table.
func (s *Side) Loaded() bool {
	return s.Table != nil
}

// IsSelected reports whether field is part of the selection.
func (s *Side) IsSelected(field string) bool {
	return slices.Contains(s.Selected, field)
}

// Options are the session settings taken from configuration.
type Options struct {
	HeaderWindow int
	LeftLabel    string
	RightLabel   string
}

// Session is the single mutable state container behind the TUI and the CLI.
type Session struct {
	ID string

	Mappings      []types.FieldMapping
	ExpandColumns []string
	Result        *merge.Result

	sides  [2]*Side
	opts   Options
	base   *zap.Logger
	logger *zap.Logger
}

// New creates an empty session.
func New(logger *zap.Logger, opts Options) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{opts: opts, base: logger}
	s.Reset()
	return s
}

// Reset discards every file, selection and result and starts a new session id.
func (s *Session) Reset() {
	s.ID = uuid.NewString()
	s.logger = s.base.With(zap.String("session", s.ID))
	s.sides = [2]*Side{{}, {}}
	s.Mappings = nil
	s.ExpandColumns = nil
	s.Result = nil
	s.logger.Debug("session reset")
}

// Side returns the state of one side.
func (s *Session) Side(id SideID) *Side {
	return s.sides[id]
}

// LoadFile replaces a side with a new file and lists its sheets.
func (s *Session) LoadFile(id SideID, name string, data []byte) error {
	side := &Side{File: name, data: data}
	s.sides[id] = side
	s.Result = nil
	s.pruneMappings()

	sheets, err := sheet.ListSheets(name, data)
	if err != nil {
		s.logger.Warn("failed to read workbook",
			zap.Stringer("side", id),
			zap.String("file", name),
			zap.Error(err))
		side.Table = &types.Table{File: name}
		return err
	}
	side.Sheets = sheets

	s.logger.Info("file loaded",
		zap.Stringer("side", id),
		zap.String("file", name),
		zap.Int("bytes", len(data)),
		zap.Strings("sheets", sheets))
	return nil
}

// SelectSheet parses a sheet of the loaded file into the side's table. Field and
// key selections on that side are cleared. A parse failure leaves an empty table.
func (s *Session) SelectSheet(id SideID, name string) error {
	side := s.sides[id]
	if side.data == nil {
		return fmt.Errorf("%w: no file loaded on the %s side", types.ErrInputMissing, id)
	}

	side.Sheet = name
	side.Selected = nil
	side.Key = ""
	side.Outline = nil
	s.Result = nil

	table, headerIdx, err := sheet.LoadTable(side.File, side.data, name, s.opts.HeaderWindow)
	if err != nil {
		s.logger.Warn("failed to parse sheet",
			zap.Stringer("side", id),
			zap.String("file", side.File),
			zap.String("sheet", name),
			zap.Error(err))
		side.Table = &types.Table{File: side.File, Sheet: name}
		side.HeaderIndex = 0
		s.pruneMappings()
		return err
	}
	side.Table = table
	side.HeaderIndex = headerIdx
	s.pruneMappings()

	if id == Left {
		s.loadOutline(side)
	}

	s.logger.Info("sheet parsed",
		zap.Stringer("side", id),
		zap.String("file", side.File),
		zap.String("sheet", name),
		zap.Int("headerIndex", headerIdx),
		zap.Int("fields", len(table.Fields)),
		zap.Int("rows", len(table.Records)),
		zap.Int("outlineRows", len(side.Outline)))
	return nil
}

func (s *Session) loadOutline(side *Side) {
	rows, err := outline.ReadRowMetadata(side.File, side.data, side.Sheet)
	if err != nil {
		s.logger.Warn("no outline metadata",
			zap.String("file", side.File),
			zap.String("sheet", side.Sheet),
			zap.Error(err))
		return
	}
	side.Outline = outline.Extract(rows, side.HeaderIndex)
}

// ToggleField adds field to or removes it from the side's selection.
func (s *Session) ToggleField(id SideID, field string) error {
	side := s.sides[id]
	if err := side.checkField(field); err != nil {
		return err
	}

	if i := slices.Index(side.Selected, field); i >= 0 {
		side.Selected = slices.Delete(side.Selected, i, i+1)
	} else {
		side.Selected = append(side.Selected, field)
	}
	s.Result = nil
	return nil
}

// SelectAllFields selects every field of the side, or clears the selection when
// everything is already selected.
func (s *Session) SelectAllFields(id SideID) {
	side := s.sides[id]
	if !side.Loaded() {
		return
	}

	if len(side.Selected) == len(side.Table.Fields) {
		side.Selected = nil
	} else {
		side.Selected = slices.Clone(side.Table.Fields)
	}
	s.Result = nil
}

// SetKey chooses the key field of a side. Choosing the current key clears it.
func (s *Session) SetKey(id SideID, field string) error {
	side := s.sides[id]
	if err := side.checkField(field); err != nil {
		return err
	}

	if side.Key == field {
		side.Key = ""
	} else {
		side.Key = field
	}
	s.Result = nil
	return nil
}

// SetMapping declares left and right as the same field. An empty right removes
// the mapping of left.
func (s *Session) SetMapping(left, right string) error {
	if err := s.sides[Left].checkField(left); err != nil {
		return err
	}
	if right != "" {
		if err := s.sides[Right].checkField(right); err != nil {
			return err
		}
	}

	s.Result = nil
	i := slices.IndexFunc(s.Mappings, func(m types.FieldMapping) bool { return m.Left == left })
	switch {
	case right == "" && i >= 0:
		s.Mappings = slices.Delete(s.Mappings, i, i+1)
	case right == "":
	case i >= 0:
		s.Mappings[i].Right = right
		s.Mappings[i].Active = true
	default:
		s.Mappings = append(s.Mappings, types.FieldMapping{Left: left, Right: right, Active: true})
	}
	return nil
}

// ToggleMapping switches the mapping of left on or off without forgetting it.
func (s *Session) ToggleMapping(left string) bool {
	for i := range s.Mappings {
		if s.Mappings[i].Left == left {
			s.Mappings[i].Active = !s.Mappings[i].Active
			s.Result = nil
			return true
		}
	}
	return false
}

// MappingFor returns the Right field mapped to left, if any.
func (s *Session) MappingFor(left string) (types.FieldMapping, bool) {
	for _, m := range s.Mappings {
		if m.Left == left {
			return m, true
		}
	}
	return types.FieldMapping{}, false
}

// MergeColumns lists the merged column keys that range expansion can target.
func (s *Session) MergeColumns() []string {
	cols, err := merge.Columns(s.Input())
	if err != nil {
		return nil
	}

	var keys []string
	for _, c := range cols {
		if !types.IsLevelField(c.Key) {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// SetExpandColumns chooses up to merge.MaxExpandColumns columns for range expansion.
func (s *Session) SetExpandColumns(cols ...string) error {
	var picked []string
	for _, c := range cols {
		if c == "" || slices.Contains(picked, c) {
			continue
		}
		picked = append(picked, c)
	}
	if len(picked) > merge.MaxExpandColumns {
		return fmt.Errorf("at most %d range columns can be expanded, got %d", merge.MaxExpandColumns, len(picked))
	}

	available := s.MergeColumns()
	for _, c := range picked {
		if !slices.Contains(available, c) {
			return fmt.Errorf("column %q is not part of the merge", c)
		}
	}

	s.ExpandColumns = picked
	s.Result = nil
	return nil
}

// Input assembles the engine input from the current selections.
func (s *Session) Input() merge.Input {
	left, right := s.sides[Left], s.sides[Right]
	return merge.Input{
		Left:          left.Table,
		Right:         right.Table,
		LeftKey:       left.Key,
		RightKey:      right.Key,
		LeftFields:    slices.Clone(left.Selected),
		RightFields:   slices.Clone(right.Selected),
		Mappings:      slices.Clone(s.Mappings),
		Outline:       left.Outline,
		ExpandColumns: slices.Clone(s.ExpandColumns),
	}
}

// Merge runs the engine over the current selections and keeps the result.
func (s *Session) Merge() (*merge.Result, error) {
	res, err := merge.Merge(s.Input())
	if err != nil {
		s.logger.Warn("merge rejected", zap.Error(err))
		return nil, err
	}

	s.Result = res
	s.logger.Info("merge done",
		zap.Int("aligned", res.Total),
		zap.Int("changed", len(res.Rows)),
		zap.Int("columns", len(res.Columns)))
	return res, nil
}

// ExportSheet projects the last merge result into the export layout.
func (s *Session) ExportSheet() (*export.Sheet, error) {
	if s.Result == nil {
		return nil, fmt.Errorf("%w: nothing merged yet", types.ErrInputMissing)
	}

	return export.Project(s.Result, export.Options{
		LeftKey:     s.sides[Left].Key,
		RightKey:    s.sides[Right].Key,
		LeftLabel:   s.opts.LeftLabel,
		RightLabel:  s.opts.RightLabel,
		RangeFields: s.rangeFields(),
	}), nil
}

// Export renders the last merge result as workbook bytes.
func (s *Session) Export() ([]byte, error) {
	out, err := s.ExportSheet()
	if err != nil {
		return nil, err
	}

	data, err := export.Write(out)
	if err != nil {
		s.logger.Error("export failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("export written",
		zap.Int("columns", len(out.Headers)),
		zap.Int("rows", len(out.Rows)),
		zap.Int("bytes", len(data)))
	return data, nil
}

// ExportFile writes the last merge result to path.
func (s *Session) ExportFile(path string) (*export.Sheet, error) {
	out, err := s.ExportSheet()
	if err != nil {
		return nil, err
	}
	if err := export.WriteFile(out, path); err != nil {
		s.logger.Error("export failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	s.logger.Info("export written",
		zap.String("path", path),
		zap.Int("columns", len(out.Headers)),
		zap.Int("rows", len(out.Rows)))
	return out, nil
}

// rangeFields are the Left fields among the expanded columns.
func (s *Session) rangeFields() []string {
	var fields []string
	for _, c := range s.ExpandColumns {
		if strings.HasPrefix(c, types.LeftPrefix) {
			fields = append(fields, strings.TrimPrefix(c, types.LeftPrefix))
		}
	}
	return fields
}

// pruneMappings drops mappings and expand columns that refer to fields no longer loaded.
func (s *Session) pruneMappings() {
	left, right := s.sides[Left], s.sides[Right]
	s.Mappings = slices.DeleteFunc(s.Mappings, func(m types.FieldMapping) bool {
		return left.checkField(m.Left) != nil || right.checkField(m.Right) != nil
	})
	s.ExpandColumns = nil
}

var errNoTable = errors.New("no sheet parsed")

func (s *Side) checkField(field string) error {
	if !s.Loaded() {
		return fmt.Errorf("%w: %w", types.ErrInputMissing, errNoTable)
	}
	if !slices.Contains(s.Table.Fields, field) {
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}
