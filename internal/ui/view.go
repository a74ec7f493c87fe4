package ui

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nconklindev/bomdiff/internal/merge"
	"github.com/nconklindev/bomdiff/internal/session"
	"github.com/nconklindev/bomdiff/internal/types"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	minCellWidth = 4
	maxCellWidth = 24
)

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateLoading:
		return m.viewLoading()
	case stateSheetSelection:
		return m.viewSheetSelection()
	case stateFieldSelection:
		return m.viewFieldSelection()
	case stateMapping:
		return m.viewMapping()
	case stateRangeSelection:
		return m.viewRangeSelection()
	case statePreview:
		return m.viewPreview()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	title := TitleStyle.Render("bomdiff - BOM Spreadsheet Diff")
	prompt := SubtitleStyle.Render(fmt.Sprintf("Select the %s workbook", sideName(m.side)))
	if m.side == session.Right {
		picked := SubtitleStyle.Render("Left: " + filepath.Base(m.session.Side(session.Left).File) + " • ")
		prompt = lipgloss.JoinHorizontal(lipgloss.Top, picked, prompt)
	}

	s.WriteString(lipgloss.JoinVertical(lipgloss.Left, title, prompt))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("ctrl+r: start over • q: quit"))

	return s.String()
}

func (m Model) viewLoading() string {
	return BoxStyle.Render(fmt.Sprintf("%s Reading %s...", m.spinner.View(), filepath.Base(m.loading)))
}

func (m Model) viewSheetSelection() string {
	var s strings.Builder
	side := m.session.Side(m.side)

	s.WriteString(TitleStyle.Render(fmt.Sprintf("Select %s Sheet", sideName(m.side))))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s", filepath.Base(side.File))))
	s.WriteString("\n\n")

	for i, name := range side.Sheets {
		s.WriteString(listLine(i == m.cursor, false, name))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: navigate • enter: parse sheet • esc: pick another file • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewFieldSelection() string {
	var s strings.Builder
	side := m.session.Side(m.side)

	s.WriteString(TitleStyle.Render(fmt.Sprintf("%s Fields", sideName(m.side))))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s • sheet %s • %d rows",
		filepath.Base(side.File), side.Sheet, len(side.Table.Records))))
	s.WriteString("\n\n")

	if len(side.Table.Fields) == 0 {
		s.WriteString(ErrorStyle.Render("No fields: the sheet is empty or could not be read"))
		s.WriteString("\n")
	}

	for i, field := range side.Table.Fields {
		line := listLine(i == m.cursor, side.IsSelected(field), field)
		if field == side.Key {
			line += " " + KeyStyle.Render("(key)")
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: navigate • space: toggle • x: key • a: all • tab: other side • enter: mappings • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewMapping() string {
	var s strings.Builder
	left := m.session.Side(session.Left)

	s.WriteString(TitleStyle.Render("Field Mappings"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Pair Left fields with differently named Right fields"))
	s.WriteString("\n\n")

	for i, field := range left.Table.Fields {
		target := "-"
		mapping, ok := m.session.MappingFor(field)
		if ok {
			target = mapping.Right
		}

		line := fmt.Sprintf("%s → %s", field, target)
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}
		line = cursor + " " + line

		switch {
		case i == m.cursor:
			line = SelectedStyle.Render(line)
		case ok && !mapping.Active:
			line = InactiveStyle.Render(line)
		case ok:
			line = CheckedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: navigate • ←/→: change target • space: enable/disable • enter: range columns • esc: back"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewRangeSelection() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Designator Ranges"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Expand ranges like R1-R4 in up to %d columns", merge.MaxExpandColumns)))
	s.WriteString("\n\n")

	cols := m.session.MergeColumns()
	if len(cols) == 0 {
		s.WriteString(UnselectedStyle.Render("Select fields and a key first"))
		s.WriteString("\n")
	}
	for i, col := range cols {
		s.WriteString(listLine(i == m.cursor, slices.Contains(m.session.ExpandColumns, col), col))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: navigate • space: toggle • enter: merge • esc: back"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewPreview() string {
	var s strings.Builder
	res := m.session.Result

	s.WriteString(TitleStyle.Render("Changed Rows"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d of %d aligned rows differ", len(res.Rows), res.Total)))
	s.WriteString("\n")
	s.WriteString(m.table.View())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render(fmt.Sprintf("↑/↓: scroll • e: export to %s • esc: back to fields • ctrl+r: start over • q: quit", m.outputPath)))

	return s.String()
}

func (m Model) viewComplete() string {
	var s strings.Builder
	res := m.session.Result

	s.WriteString(TitleStyle.Render("✓ Export Complete!"))
	s.WriteString("\n\n")

	maxPathLen := max(m.width-20, 30)
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s", truncateLeft(m.outputPath, maxPathLen))))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Columns: %d\n", len(m.exported.Headers)))
	s.WriteString(fmt.Sprintf("Rows exported: %d\n", len(m.exported.Rows)))
	s.WriteString(fmt.Sprintf("Rows changed: %d of %d\n", len(res.Rows), res.Total))

	ratio := 0.0
	if res.Total > 0 {
		ratio = float64(len(res.Rows)) / float64(res.Total)
	}
	s.WriteString("\n")
	s.WriteString(m.progress.ViewAs(ratio))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("ctrl+r: compare other files • enter: exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("esc: go back • ctrl+r: start over • q: quit"))

	return BoxStyle.Render(s.String())
}

func listLine(current, checked bool, text string) string {
	cursor := " "
	if current {
		cursor = ">"
	}
	mark := " "
	if checked {
		mark = "✓"
	}

	line := fmt.Sprintf("%s [%s] %s", cursor, mark, text)
	switch {
	case current:
		return SelectedStyle.Render(line)
	case checked:
		return CheckedStyle.Render(line)
	}
	return UnselectedStyle.Render(line)
}

// previewTable lays out a merge result for the terminal. Cells wider than
// maxCellWidth are truncated.
func previewTable(res *merge.Result, width, height int) table.Model {
	if res == nil {
		return table.New()
	}

	cols := make([]table.Column, len(res.Columns))
	for i, c := range res.Columns {
		w := runewidth.StringWidth(c.Label)
		for _, row := range res.Rows {
			w = max(w, runewidth.StringWidth(types.CellString(row[c.Key])))
		}
		w = min(max(w, minCellWidth), maxCellWidth)
		cols[i] = table.Column{Title: runewidth.Truncate(c.Label, w, "…"), Width: w}
	}

	rows := make([]table.Row, len(res.Rows))
	for i, row := range res.Rows {
		cells := make(table.Row, len(res.Columns))
		for j, c := range res.Columns {
			cells[j] = runewidth.Truncate(types.CellString(row[c.Key]), cols[j].Width, "…")
		}
		rows[i] = cells
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(height-10, 5)),
		table.WithStyles(tableStyles()),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	return t
}

func truncateLeft(s string, limit int) string {
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	return "..." + runewidth.TruncateLeft(s, runewidth.StringWidth(s)-limit+3, "")
}

func sideName(side session.SideID) string {
	if side == session.Left {
		return "Left"
	}
	return "Right"
}
