package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unolab/unolayout/pkg/registry"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PickerModel - Interactive component selection
// =============================================================================

// pickerItem is one selectable component.
type pickerItem struct {
	Name  string
	Group string
	Doc   string
}

// PickerModel is the bubbletea model for choosing the components of a new
// recipe. Space toggles, enter confirms.
type PickerModel struct {
	Items    []pickerItem
	Cursor   int
	Marked   map[int]bool
	Height   int
	Offset   int
	Done     bool
	Canceled bool
}

// NewPickerModel lists every registered component in group order.
func NewPickerModel() PickerModel {
	groups := registry.Groups()
	var items []pickerItem
	for _, g := range groupOrder() {
		for _, s := range groups[g] {
			items = append(items, pickerItem{Name: s.Name, Group: g, Doc: s.Doc})
		}
	}
	return PickerModel{
		Items:  items,
		Marked: map[int]bool{},
		Height: 15,
	}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Canceled = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Items) > 0 {
				m.Marked[m.Cursor] = !m.Marked[m.Cursor]
			}
		case "enter":
			if len(m.Chosen()) == 0 {
				return m, nil
			}
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// Chosen returns the marked component names in list order.
func (m PickerModel) Chosen() []string {
	var out []string
	for i, it := range m.Items {
		if m.Marked[i] {
			out = append(out, it.Name)
		}
	}
	return out
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Components"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Items) {
		end = len(m.Items)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Marked[i] {
			mark = "[x]"
		}
		rows = append(rows, []string{cursor + mark, it.Name, it.Group, it.Doc})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Component", "Group", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorDim)
			}
			switch {
			case idx == m.Cursor && m.Marked[idx]:
				return base.Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return base.Foreground(colorCyan).Bold(true)
			case m.Marked[idx]:
				return base.Foreground(colorGreen)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d selected", m.Cursor+1, len(m.Items), len(m.Chosen()))))

	return b.String()
}
