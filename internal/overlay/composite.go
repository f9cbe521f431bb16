package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Composite places fg over bg. Offsets shift the anchored position; the
// result is clamped so fg stays inside bg. Styling of the uncovered
// background cells is preserved.
func Composite(fg, bg string, xPos, yPos Position, xOff, yOff int) string {
	if fg == "" {
		return bg
	}
	if bg == "" {
		return fg
	}
	fgWidth, fgHeight := lipgloss.Width(fg), lipgloss.Height(fg)
	bgWidth, bgHeight := lipgloss.Width(bg), lipgloss.Height(bg)
	if fgWidth >= bgWidth && fgHeight >= bgHeight {
		return fg
	}

	x, y := offsets(fg, bg, xPos, yPos, xOff, yOff)
	x = clamp(x, 0, bgWidth-fgWidth)
	y = clamp(y, 0, bgHeight-fgHeight)

	fgLines := lines(fg)
	var sb strings.Builder
	for i, bgLine := range lines(bg) {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if i < y || i >= y+fgHeight {
			sb.WriteString(bgLine)
			continue
		}

		pos := 0
		if x > 0 {
			left := ansi.Truncate(bgLine, x, "")
			pos = ansi.StringWidth(left)
			sb.WriteString(left)
			if pos < x {
				sb.WriteString(strings.Repeat(" ", x-pos))
				pos = x
			}
		}

		fgLine := fgLines[i-y]
		sb.WriteString(fgLine)
		pos += ansi.StringWidth(fgLine)

		lineWidth := ansi.StringWidth(bgLine)
		if pos < lineWidth {
			sb.WriteString(ansi.TruncateLeft(bgLine, pos, ""))
		}
	}
	return sb.String()
}

func offsets(fg, bg string, xPos, yPos Position, xOff, yOff int) (int, int) {
	var x, y int
	switch xPos {
	case Center:
		x = lipgloss.Width(bg)/2 - lipgloss.Width(fg)/2
	case Right:
		x = lipgloss.Width(bg) - lipgloss.Width(fg)
	}
	switch yPos {
	case Center:
		y = lipgloss.Height(bg)/2 - lipgloss.Height(fg)/2
	case Bottom:
		y = lipgloss.Height(bg) - lipgloss.Height(fg)
	}
	return x + xOff, y + yOff
}

// clamp bounds v to [lower, upper]; an empty range leaves v alone.
func clamp(v, lower, upper int) int {
	if upper < lower {
		return v
	}
	return min(max(v, lower), upper)
}

func lines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
