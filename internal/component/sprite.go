package component

import (
	"github.com/l1jgo/poolecs/internal/core/ecs"
	"github.com/l1jgo/poolecs/internal/render"
	"gopkg.in/yaml.v3"
)

// Sprite draws a glyph at its entity's transform.
type Sprite struct {
	Glyph   string
	Color   string
	Visible bool

	canvas *render.Canvas
}

func (s *Sprite) Init() { s.Visible = true }

// Attach sets the canvas the sprite draws on. Sprites without a canvas
// render nothing.
func (s *Sprite) Attach(c *render.Canvas) { s.canvas = c }

func (s *Sprite) Render(tr ecs.Positioner) {
	if !s.Visible || s.canvas == nil {
		return
	}
	x, y := tr.Position()
	s.canvas.Glyph(x, y, s.Glyph, render.ParseColor(s.Color))
}

type spriteDoc struct {
	Glyph   string `yaml:"glyph"`
	Color   string `yaml:"color,omitempty"`
	Visible bool   `yaml:"visible"`
}

func (s *Sprite) Serialize(n *yaml.Node) bool {
	return n.Encode(spriteDoc{Glyph: s.Glyph, Color: s.Color, Visible: s.Visible}) == nil
}

func (s *Sprite) Load(n *yaml.Node) bool {
	doc := spriteDoc{Visible: true}
	if err := n.Decode(&doc); err != nil || doc.Glyph == "" {
		return false
	}
	s.Glyph, s.Color, s.Visible = doc.Glyph, doc.Color, doc.Visible
	return true
}
