package component

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type Shape uint8

const (
	ShapeRect Shape = iota
	ShapeCircle
)

func (s Shape) String() string {
	if s == ShapeCircle {
		return "circle"
	}
	return "rect"
}

func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Shape) UnmarshalText(b []byte) error {
	switch string(b) {
	case "rect":
		*s = ShapeRect
	case "circle":
		*s = ShapeCircle
	default:
		return fmt.Errorf("unknown collider shape %q", b)
	}
	return nil
}

// Collider2D is an axis-aligned rectangle or a circle centred on the
// transform plus Offset. For circles W is the diameter.
type Collider2D struct {
	Shape Shape
	W, H  float64
	OffX  float64
	OffY  float64
}

func (c *Collider2D) Init() { c.W, c.H = 1, 1 }

func (c *Collider2D) centre(tr *Transform2D) (float64, float64) {
	return tr.X + c.OffX, tr.Y + c.OffY
}

// Overlaps tests c at tr against o at otr.
func (c *Collider2D) Overlaps(tr *Transform2D, o *Collider2D, otr *Transform2D) bool {
	ax, ay := c.centre(tr)
	bx, by := o.centre(otr)
	switch {
	case c.Shape == ShapeCircle && o.Shape == ShapeCircle:
		r := (c.W + o.W) / 2
		dx, dy := ax-bx, ay-by
		return dx*dx+dy*dy <= r*r
	case c.Shape == ShapeRect && o.Shape == ShapeRect:
		return abs(ax-bx)*2 <= c.W+o.W && abs(ay-by)*2 <= c.H+o.H
	case c.Shape == ShapeCircle:
		return rectCircle(bx, by, o.W, o.H, ax, ay, c.W/2)
	default:
		return rectCircle(ax, ay, c.W, c.H, bx, by, o.W/2)
	}
}

func rectCircle(rx, ry, w, h, cx, cy, r float64) bool {
	nx := clamp(cx, rx-w/2, rx+w/2)
	ny := clamp(cy, ry-h/2, ry+h/2)
	dx, dy := cx-nx, cy-ny
	return dx*dx+dy*dy <= r*r
}

func clamp(v, lo, hi float64) float64 { return max(lo, min(v, hi)) }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

type colliderDoc struct {
	Shape      Shape `yaml:"shape"`
	Dimensions Vec2  `yaml:"dimensions"`
	Offset     Vec2  `yaml:"offset"`
}

func (c *Collider2D) Serialize(n *yaml.Node) bool {
	return n.Encode(colliderDoc{
		Shape:      c.Shape,
		Dimensions: Vec2{c.W, c.H},
		Offset:     Vec2{c.OffX, c.OffY},
	}) == nil
}

func (c *Collider2D) Load(n *yaml.Node) bool {
	var doc colliderDoc
	if err := n.Decode(&doc); err != nil {
		return false
	}
	c.Shape = doc.Shape
	c.W, c.H = doc.Dimensions.X, doc.Dimensions.Y
	c.OffX, c.OffY = doc.Offset.X, doc.Offset.Y
	return true
}
