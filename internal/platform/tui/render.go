package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/neonsnake/internal/controller"
	"github.com/vovakirdan/neonsnake/internal/core"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault: lipgloss.NewStyle(),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
}

// Board glyphs. Each grid cell is cellWidth terminal columns wide so the
// board looks square.
const (
	cellWidth = 2
	glyphHead = '█'
	glyphBody = '▓'
	glyphFood = '●'
	glyphDot  = '·'
)

// BoardSize returns the screen size of an n×n board including its border.
func BoardSize(n int) (w, h int) {
	return n*cellWidth + 2, n + 2
}

// DrawBoard draws the snapshot's grid with its border's top-left corner at
// (x, y).
func DrawBoard(s *core.Screen, snap controller.Snapshot, x, y int) {
	n := snap.GridSize
	w, h := BoardSize(n)

	border := core.ColorCyan
	if snap.Mode == controller.ModeTraining {
		border = core.ColorMagenta
	}
	s.DrawBox(x, y, w, h, border)

	for gy := 0; gy < n; gy++ {
		for gx := 0; gx < n; gx++ {
			sx, sy := x+1+gx*cellWidth, y+1+gy
			s.SetColored(sx, sy, glyphDot, core.ColorGray)
			s.SetColored(sx+1, sy, ' ', core.ColorDefault)
		}
	}

	drawCell(s, x, y, snap.Food, glyphFood, ' ', core.ColorRed)

	// Body first so the head always wins on overlap.
	for i := len(snap.Snake) - 1; i >= 1; i-- {
		drawCell(s, x, y, snap.Snake[i], glyphBody, glyphBody, core.ColorGreen)
	}
	if len(snap.Snake) > 0 {
		drawCell(s, x, y, snap.Snake[0], glyphHead, glyphHead, core.ColorCyan)
	}
}

func drawCell(s *core.Screen, x, y int, c core.Coord, left, right rune, color core.Color) {
	sx, sy := x+1+c.X*cellWidth, y+1+c.Y
	s.SetColored(sx, sy, left, color)
	s.SetColored(sx+1, sy, right, color)
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}
