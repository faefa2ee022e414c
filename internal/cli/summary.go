package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/ladderkit/pkg/ladder"
)

// rungSummary counts the elements of one rung.
type rungSummary struct {
	ID        string
	Contacts  int
	Coils     int
	Blocks    int
	Branches  int
	Variables int
	Err       error
}

func summarize(r *ladder.Rung) rungSummary {
	s := rungSummary{ID: r.ID, Err: r.Validate()}
	for _, n := range r.Nodes {
		switch n.Kind {
		case ladder.KindContact:
			s.Contacts++
		case ladder.KindCoil:
			s.Coils++
		case ladder.KindBlock:
			s.Blocks++
		case ladder.KindParallelOpen:
			s.Branches++
		case ladder.KindVariable:
			s.Variables++
		}
	}
	return s
}

func (s rungSummary) status() string {
	if s.Err != nil {
		return "invalid"
	}
	return "ok"
}

// rungTable renders one row per rung.
func rungTable(rows []rungSummary) string {
	data := make([][]string, len(rows))
	for i, s := range rows {
		data[i] = []string{
			s.ID,
			strconv.Itoa(s.Contacts),
			strconv.Itoa(s.Coils),
			strconv.Itoa(s.Blocks),
			strconv.Itoa(s.Branches),
			strconv.Itoa(s.Variables),
			s.status(),
		}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Rung", "Contacts", "Coils", "Blocks", "Branches", "Variables", "Status").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 6 && row < len(rows) {
				if rows[row].Err != nil {
					return StyleError
				}
				return StyleSuccess
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// placeholderRows lists the placeholders of r as table rows.
func placeholderRows(r *ladder.Rung) [][]string {
	var rows [][]string
	for _, n := range r.Placeholders() {
		pd, _ := n.Placeholder()
		mark := ""
		if pd.Selected {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			n.ID,
			pd.RelatedID,
			string(pd.Side),
			fmt.Sprintf("%.0f,%.0f", n.Position.X, n.Position.Y),
		})
	}
	return rows
}

// placeholderTable renders placeholder rows with the row at cursor
// highlighted. A negative cursor highlights nothing.
func placeholderTable(rows [][]string, cursor int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Placeholder", "Related", "Side", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case row == cursor:
				return listSelectedStyle
			case col == 2 || col == 3 || col == 4:
				return listDimStyle
			}
			return listNormalStyle
		})
	return t.Render()
}
