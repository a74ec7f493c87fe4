package ui

import (
	"os"
	"slices"

	"github.com/nconklindev/bomdiff/internal/export"
	"github.com/nconklindev/bomdiff/internal/merge"
	"github.com/nconklindev/bomdiff/internal/session"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	stateLoading
	stateSheetSelection
	stateFieldSelection
	stateMapping
	stateRangeSelection
	statePreview
	stateComplete
	stateError
)

type Model struct {
	state   state
	side    session.SideID
	session *session.Session

	filepicker filepicker.Model
	spinner    spinner.Model
	table      table.Model
	progress   progress.Model

	cursor     int
	loading    string
	outputPath string
	exported   *export.Sheet
	err        error
	// back is where esc leads from the error screen.
	back state

	width  int
	height int
}

type fileLoadedMsg struct {
	side session.SideID
	name string
	data []byte
	err  error
}

// NewModel builds the TUI over s. Exports are written to outputPath.
func NewModel(s *session.Session, outputPath string) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".xlsx", ".xlsm"}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(accent)),
	)

	return Model{
		state:      stateFilePicker,
		side:       session.Left,
		session:    s,
		filepicker: fp,
		spinner:    sp,
		progress:   progress.New(progress.WithGradient(string(accent), string(highlight))),
		outputPath: outputPath,
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// room for title, subtitle and help
		m.filepicker.SetHeight(max(msg.Height-14, 5))
		if m.state == statePreview {
			m.table = previewTable(m.session.Result, m.width, m.height)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			return m.reset()
		}
		if m.state != stateFilePicker {
			return m.handleKey(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}

	case fileLoadedMsg:
		return m.fileLoaded(msg)

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.state = stateLoading
			m.loading = path
			return m, tea.Batch(loadFile(m.side, path), m.spinner.Tick)
		}
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateSheetSelection:
		return m.updateSheetSelection(msg)
	case stateFieldSelection:
		return m.updateFieldSelection(msg)
	case stateMapping:
		return m.updateMapping(msg)
	case stateRangeSelection:
		return m.updateRangeSelection(msg)
	case statePreview:
		return m.updatePreview(msg)

	case stateComplete:
		switch msg.String() {
		case "q", "enter", "esc":
			return m, tea.Quit
		}

	case stateError:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc", "enter":
			m.state = m.back
			m.err = nil
			m.cursor = 0
			if m.state == stateFilePicker {
				return m, m.filepicker.Init()
			}
		}
	}

	return m, nil
}

func (m Model) updateSheetSelection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sheets := m.session.Side(m.side).Sheets

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(sheets)-1 {
			m.cursor++
		}
	case "esc":
		m.state = stateFilePicker
		return m, m.filepicker.Init()
	case "enter":
		if len(sheets) == 0 {
			return m, nil
		}
		if err := m.session.SelectSheet(m.side, sheets[m.cursor]); err != nil {
			return m.fail(err, stateSheetSelection), nil
		}
		m.cursor = 0
		if m.side == session.Left {
			m.side = session.Right
			m.state = stateFilePicker
			return m, m.filepicker.Init()
		}
		m.side = session.Left
		m.state = stateFieldSelection
	}

	return m, nil
}

func (m Model) updateFieldSelection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	side := m.session.Side(m.side)
	fields := side.Table.Fields

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(fields)-1 {
			m.cursor++
		}
	case "tab":
		m.side = other(m.side)
		m.cursor = 0
	case " ":
		if len(fields) > 0 {
			_ = m.session.ToggleField(m.side, fields[m.cursor])
		}
	case "x":
		if len(fields) > 0 {
			_ = m.session.SetKey(m.side, fields[m.cursor])
		}
	case "a":
		m.session.SelectAllFields(m.side)
	case "enter":
		m.cursor = 0
		m.state = stateMapping
	}

	return m, nil
}

func (m Model) updateMapping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := m.session.Side(session.Left).Table.Fields

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(fields)-1 {
			m.cursor++
		}
	case "right", "l":
		if len(fields) > 0 {
			m.cycleMapping(fields[m.cursor], 1)
		}
	case "left", "h":
		if len(fields) > 0 {
			m.cycleMapping(fields[m.cursor], -1)
		}
	case " ":
		if len(fields) > 0 {
			m.session.ToggleMapping(fields[m.cursor])
		}
	case "esc":
		m.cursor = 0
		m.state = stateFieldSelection
	case "enter":
		m.cursor = 0
		m.state = stateRangeSelection
	}

	return m, nil
}

// cycleMapping moves the Right target of left through "" and every Right field.
func (m Model) cycleMapping(left string, step int) {
	options := append([]string{""}, m.session.Side(session.Right).Table.Fields...)

	current := ""
	if mapping, ok := m.session.MappingFor(left); ok {
		current = mapping.Right
	}
	i := slices.Index(options, current)
	next := options[(i+step+len(options))%len(options)]

	_ = m.session.SetMapping(left, next)
}

func (m Model) updateRangeSelection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.session.MergeColumns()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(cols)-1 {
			m.cursor++
		}
	case " ":
		if len(cols) == 0 {
			return m, nil
		}
		picked := slices.Clone(m.session.ExpandColumns)
		col := cols[m.cursor]
		if i := slices.Index(picked, col); i >= 0 {
			picked = slices.Delete(picked, i, i+1)
		} else {
			if len(picked) == merge.MaxExpandColumns {
				picked = picked[1:]
			}
			picked = append(picked, col)
		}
		_ = m.session.SetExpandColumns(picked...)
	case "esc":
		m.cursor = 0
		m.state = stateMapping
	case "enter":
		res, err := m.session.Merge()
		if err != nil {
			return m.fail(err, stateFieldSelection), nil
		}
		m.table = previewTable(res, m.width, m.height)
		m.state = statePreview
	}

	return m, nil
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.cursor = 0
		m.state = stateFieldSelection
		return m, nil
	case "e":
		out, err := m.session.ExportFile(m.outputPath)
		if err != nil {
			return m.fail(err, statePreview), nil
		}
		m.exported = out
		m.state = stateComplete
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) fileLoaded(msg fileLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.fail(msg.err, stateFilePicker), nil
	}
	if err := m.session.LoadFile(msg.side, msg.name, msg.data); err != nil {
		return m.fail(err, stateFilePicker), nil
	}

	m.cursor = 0
	m.state = stateSheetSelection
	return m, nil
}

func (m Model) fail(err error, back state) Model {
	m.err = err
	m.back = back
	m.state = stateError
	return m
}

func (m Model) reset() (tea.Model, tea.Cmd) {
	m.session.Reset()
	m.state = stateFilePicker
	m.side = session.Left
	m.cursor = 0
	m.err = nil
	m.exported = nil
	m.table = table.Model{}
	return m, m.filepicker.Init()
}

func loadFile(side session.SideID, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return fileLoadedMsg{side: side, name: path, data: data, err: err}
	}
}

func other(side session.SideID) session.SideID {
	if side == session.Left {
		return session.Right
	}
	return session.Left
}
