package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PlaceholderListModel - Interactive insertion point selection
// =============================================================================

// PlaceholderListModel is the bubbletea model for picking the placeholder an
// element is inserted at.
type PlaceholderListModel struct {
	Placeholders []ladder.Node
	Cursor       int
	Selected     string
	Height       int
	Offset       int

	rows [][]string
}

// NewPlaceholderListModel creates a picker over the placeholders of r, which
// must have been rendered.
func NewPlaceholderListModel(r *ladder.Rung) PlaceholderListModel {
	return PlaceholderListModel{
		Placeholders: r.Placeholders(),
		Height:       15,
		rows:         placeholderRows(r),
	}
}

func (m PlaceholderListModel) Init() tea.Cmd {
	return nil
}

func (m PlaceholderListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Placeholders)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Placeholders) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Placeholders[m.Cursor].ID
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PlaceholderListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Insertion Point"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	b.WriteString(placeholderTable(m.rows[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Placeholders))))

	return b.String()
}

// pickPlaceholder runs the picker and returns the chosen placeholder id, or
// "" when the user quit without choosing.
func pickPlaceholder(r *ladder.Rung) (string, error) {
	final, err := tea.NewProgram(NewPlaceholderListModel(r)).Run()
	if err != nil {
		return "", err
	}
	return final.(PlaceholderListModel).Selected, nil
}
