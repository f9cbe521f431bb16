package console

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// DeleteConfirmMsg carries the answer of the delete dialog.
type DeleteConfirmMsg struct {
	Confirm bool
}

// DeleteConfirmModel asks Yes/No before a delete. It defaults to No.
type DeleteConfirmModel struct {
	width  int
	kind   string
	target string
	focus  int // 0=yes, 1=no
}

func NewDeleteConfirmModel(kind, target string) *DeleteConfirmModel {
	return &DeleteConfirmModel{kind: kind, target: target, focus: 1}
}

func (m *DeleteConfirmModel) Init() tea.Cmd  { return nil }
func (m *DeleteConfirmModel) SetWidth(w int) { m.width = w }

// Target returns the kind and name the dialog asks about.
func (m *DeleteConfirmModel) Target() (string, string) { return m.kind, m.target }

func answer(confirm bool) tea.Cmd {
	return func() tea.Msg { return DeleteConfirmMsg{Confirm: confirm} }
}

func (m *DeleteConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "esc", "ctrl+c", "n":
		return m, answer(false)
	case "y":
		return m, answer(true)
	case "enter":
		return m, answer(m.focus == 0)
	case "left", "right", "tab", "shift+tab", "h", "l":
		m.focus = (m.focus + 1) % 2
	}
	return m, nil
}

func (m *DeleteConfirmModel) View() string {
	innerWidth := max(30, m.width-4)
	bg := lipgloss.NewStyle().
		Background(lipgloss.Color("250")).
		Foreground(lipgloss.Black).
		Width(innerWidth)
	title := bg.Bold(true).Align(lipgloss.Center).Render(fmt.Sprintf("Delete %s %q?", m.kind, m.target))
	help := bg.Faint(true).Align(lipgloss.Center).Render("←/→ Switch • Enter: Confirm • Esc: Cancel")
	separator := lipgloss.NewStyle().Background(lipgloss.Color("250")).Render(" ")
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		renderButton("Yes", m.focus == 0), separator, renderButton("No", m.focus != 0))
	body := bg.Align(lipgloss.Center).Render(buttons)
	spacer := bg.Render("")
	return lipgloss.JoinVertical(lipgloss.Left, title, spacer, body, spacer, help)
}

func renderButton(label string, focused bool) string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("240")).
		Width(8).
		Align(lipgloss.Center)
	if focused {
		style = style.Background(lipgloss.Color("203")).Bold(true)
	}
	return style.Render(label)
}
