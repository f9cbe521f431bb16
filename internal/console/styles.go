package console

import "github.com/charmbracelet/lipgloss/v2"

// Color constants
const (
	ColorBlack      = "0"
	ColorDarkerBlue = "4"
	ColorCyan       = "6"
	ColorGrey       = "7"
	ColorRed        = "9"
	ColorWhite      = "15"
)

var (
	TabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorDarkerBlue)).
			Foreground(lipgloss.Color(ColorGrey)).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorCyan)).
			Foreground(lipgloss.Color(ColorBlack)).
			Bold(true).
			Padding(0, 1)

	PanelItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorGrey))

	PanelItemSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorCyan)).
				Foreground(lipgloss.Color(ColorBlack))

	// Marks the row holding the store's current selection.
	PanelItemPinnedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorWhite)).
				Bold(true)

	GroupHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorCyan)).
				Bold(true)

	PanelFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(ColorCyan))

	FunctionKeyStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorBlack)).
				Foreground(lipgloss.Color(ColorWhite)).
				Padding(0, 0, 0, 1)

	FunctionKeyDescriptionStyle = lipgloss.NewStyle().
					Background(lipgloss.Color(ColorCyan)).
					Foreground(lipgloss.Color(ColorBlack)).
					Padding(0, 1, 0, 0)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorGrey))

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorRed)).
				Bold(true)
)
