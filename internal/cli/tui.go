package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/setcatalog"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tableHeaderStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// SetListModel - Interactive set selection
// =============================================================================

// SetListModel is the bubbletea model for picking a set. Typing narrows the
// list through Filter; backspace widens it again.
type SetListModel struct {
	Sets     []setcatalog.Set
	Query    string
	Filter   func(query string) []setcatalog.Set
	Cursor   int
	Offset   int
	Height   int
	Selected *setcatalog.Set
}

// NewSetListModel creates a picker over the initial suggestions.
func NewSetListModel(sets []setcatalog.Set, filter func(string) []setcatalog.Set) SetListModel {
	return SetListModel{Sets: sets, Filter: filter, Height: 15}
}

func (m SetListModel) Init() tea.Cmd {
	return nil
}

func (m SetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.Cursor, m.Offset = moveUp(m.Cursor, m.Offset)
		case tea.KeyDown:
			m.Cursor, m.Offset = moveDown(m.Cursor, m.Offset, m.Height, len(m.Sets))
		case tea.KeyEnter:
			if len(m.Sets) == 0 {
				return m, nil
			}
			set := m.Sets[m.Cursor]
			m.Selected = &set
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Query != "" {
				r := []rune(m.Query)
				m = m.refilter(string(r[:len(r)-1]))
			}
		case tea.KeyRunes, tea.KeySpace:
			m = m.refilter(m.Query + string(msg.Runes))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m SetListModel) refilter(query string) SetListModel {
	m.Query = query
	if m.Filter != nil {
		m.Sets = m.Filter(query)
	}
	m.Cursor, m.Offset = 0, 0
	return m
}

func (m SetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Set"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to search  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n\n")
	b.WriteString(StyleHighlight.Render("› ") + listNormalStyle.Render(m.Query))
	b.WriteString("\n")

	if len(m.Sets) == 0 {
		b.WriteString("\n" + listDimStyle.Render("  no matching sets") + "\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Sets))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Sets[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, s.Code, s.Name, formatReleased(s.ReleasedAt), fmt.Sprint(s.CardCount)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Code", "Name", "Released", "Cards").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 3 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Sets))))

	return b.String()
}

// =============================================================================
// PrintingListModel - Interactive printing selection
// =============================================================================

// PrintingListModel is the bubbletea model for picking an alternate printing
// of a card.
type PrintingListModel struct {
	Printings []deck.Printing
	Current   string // printing ID currently in the deck
	Cursor    int
	Offset    int
	Height    int
	Selected  *deck.Printing
}

// NewPrintingListModel creates a picker with the cursor on the current
// printing.
func NewPrintingListModel(printings []deck.Printing, current string) PrintingListModel {
	m := PrintingListModel{Printings: printings, Current: current, Height: 15}
	for i, p := range printings {
		if p.ID == current {
			m.Cursor = i
			if i >= m.Height {
				m.Offset = i - m.Height + 1
			}
		}
	}
	return m
}

func (m PrintingListModel) Init() tea.Cmd {
	return nil
}

func (m PrintingListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Cursor, m.Offset = moveUp(m.Cursor, m.Offset)
		case "down", "j":
			m.Cursor, m.Offset = moveDown(m.Cursor, m.Offset, m.Height, len(m.Printings))
		case "enter":
			if len(m.Printings) == 0 {
				return m, nil
			}
			p := m.Printings[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PrintingListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Printing"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Printings))
	for i := m.Offset; i < end; i++ {
		p := m.Printings[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := " "
		if p.ID == m.Current {
			mark = StyleHighlight.Render("●")
		}
		line := fmt.Sprintf("%s%s %-6s #%-5s %s", cursor, mark, p.SetCode, p.CollectorNumber, p.SetName)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Printings))))
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func moveUp(cursor, offset int) (int, int) {
	if cursor > 0 {
		cursor--
		if cursor < offset {
			offset = cursor
		}
	}
	return cursor, offset
}

func moveDown(cursor, offset, height, n int) (int, int) {
	if cursor < n-1 {
		cursor++
		if cursor >= offset+height {
			offset = cursor - height + 1
		}
	}
	return cursor, offset
}

// formatReleased renders a YYYY-MM-DD release date as "Jun 14, 2024".
func formatReleased(s string) string {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}
