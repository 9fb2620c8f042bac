package t2048

import (
	"strconv"
	"strings"
)

// CellWidth is the interior width of a cell in text renderings.
const CellWidth = 6

// Label returns the text shown for a tile of the given value within width
// columns. Empty cells have no label; values too wide are shown in thousands.
func Label(value, width int) string {
	if value == 0 {
		return ""
	}
	s := strconv.Itoa(value)
	if len(s) <= width {
		return s
	}
	return strconv.Itoa((value+500)/1000) + "k"
}

// Center pads text on both sides to width, truncating if it does not fit.
func Center(text string, width int) string {
	if len(text) >= width {
		return text[:width]
	}
	left := (width - len(text)) / 2
	right := width - len(text) - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

// Border builds a horizontal grid border such as "┌──┬──┐".
func Border(left, middle, right string, cellWidth int) string {
	segment := strings.Repeat("─", cellWidth)
	parts := make([]string, Size)
	for i := range parts {
		parts[i] = segment
	}
	return left + strings.Join(parts, middle) + right
}

// Format draws the grid with box-drawing borders, one text line per row.
func Format(g Grid) string {
	var sb strings.Builder

	sb.WriteString(Border("┌", "┬", "┐", CellWidth))
	sb.WriteByte('\n')
	for r := range Size {
		sb.WriteString("│")
		for c := range Size {
			sb.WriteString(Center(Label(g[r][c], CellWidth), CellWidth))
			sb.WriteString("│")
		}
		sb.WriteByte('\n')
		if r < Size-1 {
			sb.WriteString(Border("├", "┼", "┤", CellWidth))
			sb.WriteByte('\n')
		}
	}
	sb.WriteString(Border("└", "┴", "┘", CellWidth))

	return sb.String()
}
