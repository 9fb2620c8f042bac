package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
)

func TestBoardDimensions(t *testing.T) {
	b := NewBoard(testTheme())
	out := b.Render(t2048.Grid{})

	assert.Equal(t, t2048.Size*(TileHeight+1)+1, lipgloss.Height(out))
	assert.Equal(t, 29, b.Width())
	for i, line := range strings.Split(out, "\n") {
		assert.Equal(t, b.Width(), lipgloss.Width(line), "line %d", i)
	}
}

func TestBoardLabels(t *testing.T) {
	b := NewBoard(testTheme())
	g := t2048.Grid{
		{2, 0, 0, 2048},
		{0, 1048576, 0, 0},
	}
	out := b.Render(g)
	lines := strings.Split(out, "\n")

	// Labels sit on the middle line of each tile row.
	assert.Contains(t, lines[1+TileHeight/2], "2048")
	assert.Contains(t, lines[1+TileHeight/2], "2")
	assert.Contains(t, lines[1+TileHeight+1+TileHeight/2], "1049k")
	assert.NotContains(t, lines[1], "2")
}

func TestBoardCachesStyles(t *testing.T) {
	b := NewBoard(testTheme())
	b.Render(t2048.Grid{{2, 2, 4, 0}})
	assert.Len(t, b.styles, 3)
}
