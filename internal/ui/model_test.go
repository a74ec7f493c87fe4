package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nconklindev/bomdiff/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func keys(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_FullFlow(t *testing.T) {
	out := filepath.Join(t.TempDir(), "merged.xlsx")
	m := NewModel(session.New(nil, session.Options{}), out)

	left := workbookBytes(t, [][]any{{"id", "q"}, {1, 5}, {2, 7}})
	right := workbookBytes(t, [][]any{{"id", "q"}, {1, 5}, {3, 9}})

	m = send(m, fileLoadedMsg{side: session.Left, name: "left.xlsx", data: left})
	if m.state != stateSheetSelection {
		t.Fatalf("state = %v, want sheet selection", m.state)
	}
	if !strings.Contains(m.View(), "Sheet1") {
		t.Errorf("sheet list not rendered: %s", m.View())
	}

	m = send(m, keys("enter"))
	if m.state != stateFilePicker || m.side != session.Right {
		t.Fatalf("state = %v side = %v, want Right file picker", m.state, m.side)
	}

	m = send(m, fileLoadedMsg{side: session.Right, name: "right.xlsx", data: right}, keys("enter"))
	if m.state != stateFieldSelection || m.side != session.Left {
		t.Fatalf("state = %v side = %v, want Left field selection", m.state, m.side)
	}

	m = send(m, keys("a"), keys("x"), keys("tab"), keys("a"), keys("x"))
	if !strings.Contains(m.View(), "(key)") {
		t.Errorf("key marker not rendered: %s", m.View())
	}

	m = send(m, keys("enter"))
	if m.state != stateMapping {
		t.Fatalf("state = %v, want mapping", m.state)
	}

	m = send(m, keys("enter"))
	if m.state != stateRangeSelection {
		t.Fatalf("state = %v, want range selection", m.state)
	}

	m = send(m, keys("enter"))
	if m.state != statePreview {
		t.Fatalf("state = %v, want preview (err = %v)", m.state, m.err)
	}
	if got := len(m.session.Result.Rows); got != 2 {
		t.Errorf("changed rows = %d, want 2", got)
	}
	if !strings.Contains(m.View(), "2 of 3") {
		t.Errorf("preview summary missing: %s", m.View())
	}

	m = send(m, keys("e"))
	if m.state != stateComplete {
		t.Fatalf("state = %v, want complete (err = %v)", m.state, m.err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("export not written: %v", err)
	}

	m = send(m, keys("ctrl+r"))
	if m.state != stateFilePicker || m.session.Side(session.Left).Loaded() {
		t.Errorf("ctrl+r should reset to an empty session")
	}
}

func TestModel_MergeWithoutKeyShowsError(t *testing.T) {
	m := NewModel(session.New(nil, session.Options{}), filepath.Join(t.TempDir(), "out.xlsx"))
	data := workbookBytes(t, [][]any{{"id"}, {1}})

	m = send(m,
		fileLoadedMsg{side: session.Left, name: "a.xlsx", data: data}, keys("enter"),
		fileLoadedMsg{side: session.Right, name: "b.xlsx", data: data}, keys("enter"),
		keys("enter"), keys("enter"), keys("enter"),
	)

	if m.state != stateError {
		t.Fatalf("state = %v, want error", m.state)
	}
	if !strings.Contains(m.View(), "no key field selected") {
		t.Errorf("error view = %s", m.View())
	}

	m = send(m, keys("esc"))
	if m.state != stateFieldSelection {
		t.Errorf("esc should return to field selection, got %v", m.state)
	}
}

func TestModel_UnreadableFile(t *testing.T) {
	m := NewModel(session.New(nil, session.Options{}), "out.xlsx")

	m = send(m, fileLoadedMsg{side: session.Left, name: "bad.xlsx", data: []byte("nope")})
	if m.state != stateError {
		t.Fatalf("state = %v, want error", m.state)
	}

	m = send(m, keys("esc"))
	if m.state != stateFilePicker {
		t.Errorf("esc should return to the file picker, got %v", m.state)
	}
}

func TestModel_MappingCycle(t *testing.T) {
	m := NewModel(session.New(nil, session.Options{}), "out.xlsx")
	left := workbookBytes(t, [][]any{{"PN", "Qty"}, {"A", 1}})
	right := workbookBytes(t, [][]any{{"PartNo", "Quantity"}, {"A", 2}})

	m = send(m,
		fileLoadedMsg{side: session.Left, name: "a.xlsx", data: left}, keys("enter"),
		fileLoadedMsg{side: session.Right, name: "b.xlsx", data: right}, keys("enter"),
		keys("enter"),
	)
	if m.state != stateMapping {
		t.Fatalf("state = %v, want mapping", m.state)
	}

	m = send(m, keys("l"))
	if mp, ok := m.session.MappingFor("PN"); !ok || mp.Right != "PartNo" {
		t.Errorf("mapping after one step = %+v, %v", mp, ok)
	}

	m = send(m, keys("l"), keys("space"))
	mp, ok := m.session.MappingFor("PN")
	if !ok || mp.Right != "Quantity" || mp.Active {
		t.Errorf("mapping after two steps and toggle = %+v, %v", mp, ok)
	}

	m = send(m, keys("h"), keys("h"))
	if _, ok := m.session.MappingFor("PN"); ok {
		t.Errorf("cycling back to the start should clear the mapping")
	}
}
