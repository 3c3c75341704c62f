// Package render draws render-capable components onto a terminal screen.
package render

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Canvas maps world coordinates onto screen cells. One world unit is one cell;
// positions are rounded to the nearest cell.
type Canvas struct {
	screen tcell.Screen
	drawn  int
}

func NewCanvas(screen tcell.Screen) *Canvas {
	return &Canvas{screen: screen}
}

// Size returns the drawable width and height in cells.
func (c *Canvas) Size() (int, int) { return c.screen.Size() }

// Clear blanks the back buffer and resets the glyph counter.
func (c *Canvas) Clear() {
	c.screen.Clear()
	c.drawn = 0
}

// Glyph draws glyph centred on world position (x, y). Glyphs falling outside
// the screen are dropped. Wide glyphs also claim the next column.
func (c *Canvas) Glyph(x, y float64, glyph string, style tcell.Style) bool {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return false
	}
	sx, sy := int(math.Round(x)), int(math.Round(y))
	w, h := c.screen.Size()
	width := runewidth.StringWidth(glyph)
	if sx < 0 || sy < 0 || sy >= h || sx+max(width, 1) > w {
		return false
	}
	c.screen.SetContent(sx, sy, runes[0], runes[1:], style)
	if width == 2 {
		c.screen.SetContent(sx+1, sy, ' ', nil, style)
	}
	c.drawn++
	return true
}

// Text writes s starting at cell (x, y), advancing by each rune's width and
// stopping at the right edge.
func (c *Canvas) Text(x, y int, s string, style tcell.Style) {
	w, _ := c.screen.Size()
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if x+rw > w {
			break
		}
		c.screen.SetContent(x, y, r, nil, style)
		x += max(rw, 1)
	}
}

// Drawn is the number of glyphs drawn since the last Clear.
func (c *Canvas) Drawn() int { return c.drawn }

// Show presents the frame.
func (c *Canvas) Show() { c.screen.Show() }

func (c *Canvas) Screen() tcell.Screen { return c.screen }

// Fini restores the terminal.
func (c *Canvas) Fini() { c.screen.Fini() }

// ParseColor maps a colour name to a style foreground, falling back to the
// default colour for unknown names.
func ParseColor(name string) tcell.Style {
	if col, ok := tcell.ColorNames[name]; ok {
		return tcell.StyleDefault.Foreground(col)
	}
	return tcell.StyleDefault
}
