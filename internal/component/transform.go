package component

import "gopkg.in/yaml.v3"

// Transform2D is the position source of its pool. One world unit is one
// terminal cell.
type Transform2D struct {
	X, Y     float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
}

func (t *Transform2D) Init() {
	t.ScaleX, t.ScaleY = 1, 1
}

func (t *Transform2D) Position() (float64, float64) { return t.X, t.Y }

func (t *Transform2D) Translate(dx, dy float64) {
	t.X += dx
	t.Y += dy
}

type transformDoc struct {
	Position Vec2    `yaml:"position"`
	Rotation float64 `yaml:"rotation"`
	Scale    Vec2    `yaml:"scale"`
}

func (t *Transform2D) Serialize(n *yaml.Node) bool {
	return n.Encode(transformDoc{
		Position: Vec2{t.X, t.Y},
		Rotation: t.Rotation,
		Scale:    Vec2{t.ScaleX, t.ScaleY},
	}) == nil
}

// Load keeps the current scale when the document omits it.
func (t *Transform2D) Load(n *yaml.Node) bool {
	doc := transformDoc{Scale: Vec2{t.ScaleX, t.ScaleY}}
	if err := n.Decode(&doc); err != nil {
		return false
	}
	t.X, t.Y = doc.Position.X, doc.Position.Y
	t.Rotation = doc.Rotation
	t.ScaleX, t.ScaleY = doc.Scale.X, doc.Scale.Y
	return true
}

// Vec2 is the document form of a 2D vector.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}
