package output

import "strings"

// BoxStyle defines the character set for drawing boxes
type BoxStyle struct {
	TopLeft, TopRight       rune
	BottomLeft, BottomRight rune
	Horizontal, Vertical    rune
}

var (
	// ASCIIStyle uses simple ASCII characters for box drawing
	ASCIIStyle = BoxStyle{'+', '+', '+', '+', '-', '|'}

	// UnicodeStyle uses Unicode box drawing characters
	UnicodeStyle = BoxStyle{'┌', '┐', '└', '┘', '─', '│'}
)

// Canvas is a fixed-size grid of runes
type Canvas struct {
	Width  int
	Height int
	cells  [][]rune
	style  BoxStyle
}

// NewCanvas creates a blank canvas
func NewCanvas(width, height int, style BoxStyle) *Canvas {
	cells := make([][]rune, height)
	for y := range cells {
		cells[y] = []rune(strings.Repeat(" ", width))
	}
	return &Canvas{Width: width, Height: height, cells: cells, style: style}
}

// Set writes r at (x, y), ignoring positions off the canvas
func (c *Canvas) Set(x, y int, r rune) {
	if x >= 0 && x < c.Width && y >= 0 && y < c.Height {
		c.cells[y][x] = r
	}
}

// Box draws an outline; boxes smaller than 2x2 are skipped
func (c *Canvas) Box(x, y, w, h int) {
	if w < 2 || h < 2 {
		return
	}
	for i := 1; i < w-1; i++ {
		c.Set(x+i, y, c.style.Horizontal)
		c.Set(x+i, y+h-1, c.style.Horizontal)
	}
	for i := 1; i < h-1; i++ {
		c.Set(x, y+i, c.style.Vertical)
		c.Set(x+w-1, y+i, c.style.Vertical)
	}
	c.Set(x, y, c.style.TopLeft)
	c.Set(x+w-1, y, c.style.TopRight)
	c.Set(x, y+h-1, c.style.BottomLeft)
	c.Set(x+w-1, y+h-1, c.style.BottomRight)
}

// Text writes s starting at (x, y), clipped to maxLen runes
func (c *Canvas) Text(x, y int, s string, maxLen int) {
	for i, r := range []rune(truncate(s, maxLen)) {
		c.Set(x+i, y, r)
	}
}

// String renders the canvas, one line per row
func (c *Canvas) String() string {
	lines := make([]string, len(c.cells))
	for y, row := range c.cells {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}
