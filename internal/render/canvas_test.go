package render

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	ss := tcell.NewSimulationScreen("UTF-8")
	if err := ss.Init(); err != nil {
		t.Fatal(err)
	}
	ss.SetSize(20, 5)
	return ss
}

func TestGlyphPlacement(t *testing.T) {
	ss := newSimScreen(t)
	c := NewCanvas(ss)

	if !c.Glyph(3.4, 1.6, "o", tcell.StyleDefault) {
		t.Fatal("glyph inside the screen dropped")
	}
	if c.Glyph(-1, 0, "o", tcell.StyleDefault) || c.Glyph(0, 5, "o", tcell.StyleDefault) {
		t.Error("glyph outside the screen drawn")
	}
	if c.Glyph(19, 0, "🎈", tcell.StyleDefault) {
		t.Error("wide glyph overflowing the right edge drawn")
	}
	c.Show()

	mainc, _, _, _ := ss.GetContent(3, 2)
	if mainc != 'o' {
		t.Errorf("cell (3,2) = %q", mainc)
	}
	if c.Drawn() != 1 {
		t.Errorf("drawn = %d", c.Drawn())
	}
	c.Clear()
	if c.Drawn() != 0 {
		t.Error("Clear kept the counter")
	}
}

func TestWideGlyphClaimsTwoCells(t *testing.T) {
	ss := newSimScreen(t)
	c := NewCanvas(ss)
	c.Glyph(0, 0, "🎈", tcell.StyleDefault)
	c.Text(0, 1, "score 12", tcell.StyleDefault)
	c.Show()

	second, _, _, _ := ss.GetContent(1, 0)
	if second != ' ' {
		t.Errorf("second column = %q", second)
	}
	r, _, _, _ := ss.GetContent(6, 1)
	if r != '1' {
		t.Errorf("text cell = %q", r)
	}
}

func TestParseColor(t *testing.T) {
	fg, _, _ := ParseColor("red").Decompose()
	if fg != tcell.ColorRed {
		t.Errorf("red = %v", fg)
	}
	if ParseColor("no-such-colour") != tcell.StyleDefault {
		t.Error("unknown colour not defaulted")
	}
}
