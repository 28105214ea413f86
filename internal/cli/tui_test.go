package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m PickerModel, keys ...string) (PickerModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(PickerModel)
	}
	return m, cmd
}

func TestNewPickerModel(t *testing.T) {
	m := NewPickerModel()
	if len(m.Items) == 0 {
		t.Fatal("picker has no items")
	}
	if m.Items[0].Group != "primitives" {
		t.Errorf("first group = %q, want primitives", m.Items[0].Group)
	}
}

func TestPickerToggle(t *testing.T) {
	m, _ := send(NewPickerModel(), "x", "j", "j", " ", "k", "x", "x")
	want := []string{m.Items[0].Name, m.Items[2].Name}
	got := m.Chosen()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Chosen() = %v, want %v", got, want)
	}
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
}

func TestPickerEnterNeedsSelection(t *testing.T) {
	m, cmd := send(NewPickerModel(), "enter")
	if m.Done || cmd != nil {
		t.Error("enter with nothing marked should not finish")
	}

	m, cmd = send(m, " ", "enter")
	if !m.Done || cmd == nil {
		t.Error("enter with a marked item should finish")
	}
}

func TestPickerQuit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m, cmd := send(NewPickerModel(), k)
		if !m.Canceled || cmd == nil {
			t.Errorf("%q should cancel and quit", k)
		}
	}
}

func TestPickerScroll(t *testing.T) {
	m := NewPickerModel()
	m.Height = 3
	keys := make([]string, 5)
	for i := range keys {
		keys[i] = "down"
	}
	m, _ = send(m, keys...)
	if m.Cursor != 5 || m.Offset != 3 {
		t.Errorf("Cursor, Offset = %d, %d; want 5, 3", m.Cursor, m.Offset)
	}
	m, _ = send(m, "up", "up", "up", "up")
	if m.Cursor != 1 || m.Offset != 1 {
		t.Errorf("Cursor, Offset = %d, %d; want 1, 1", m.Cursor, m.Offset)
	}
}

func TestPickerView(t *testing.T) {
	m, _ := send(NewPickerModel(), " ")
	if v := m.View(); v == "" {
		t.Error("View() is empty")
	}
}
