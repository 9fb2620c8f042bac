package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

// TileHeight is the number of text lines per tile; the label sits on the middle one.
const TileHeight = 3

// Board renders grids with the colours of a theme.
type Board struct {
	theme  config.ThemeConfig
	line   lipgloss.Style
	styles map[int]lipgloss.Style
}

// NewBoard creates a board renderer for theme.
func NewBoard(theme config.ThemeConfig) *Board {
	return &Board{
		theme:  theme,
		line:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.GridLine)),
		styles: make(map[int]lipgloss.Style),
	}
}

// Width returns the rendered width of a board in columns.
func (b *Board) Width() int {
	return t2048.Size*(t2048.CellWidth+1) + 1
}

// tile returns the style for a tile value, building it on first use.
func (b *Board) tile(value int) lipgloss.Style {
	if s, ok := b.styles[value]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Background(lipgloss.Color(b.theme.Background(value))).
		Foreground(lipgloss.Color(b.theme.Foreground(value))).
		Bold(b.theme.Bold(value))
	b.styles[value] = s
	return s
}

// Render draws g with box-drawing borders. Each tile is CellWidth columns
// wide and TileHeight lines high.
func (b *Board) Render(g t2048.Grid) string {
	sep := b.line.Render("│")
	lines := make([]string, 0, t2048.Size*(TileHeight+1)+1)

	lines = append(lines, b.line.Render(t2048.Border("┌", "┬", "┐", t2048.CellWidth)))
	for r := range t2048.Size {
		for h := range TileHeight {
			var sb strings.Builder
			sb.WriteString(sep)
			for c := range t2048.Size {
				label := ""
				if h == TileHeight/2 {
					label = t2048.Label(g[r][c], t2048.CellWidth)
				}
				sb.WriteString(b.tile(g[r][c]).Render(t2048.Center(label, t2048.CellWidth)))
				sb.WriteString(sep)
			}
			lines = append(lines, sb.String())
		}
		if r < t2048.Size-1 {
			lines = append(lines, b.line.Render(t2048.Border("├", "┼", "┤", t2048.CellWidth)))
		}
	}
	lines = append(lines, b.line.Render(t2048.Border("└", "┴", "┘", t2048.CellWidth)))

	return strings.Join(lines, "\n")
}
