package component

import (
	"math"
	"time"

	"gopkg.in/yaml.v3"
)

// Gravity in cells per second squared; positive y points down the screen.
const Gravity = 9.8

// Rigidbody2D moves its entity's transform. It has no update capability of
// its own; PhysicsSystem integrates it together with the transform.
type Rigidbody2D struct {
	VX, VY       float64
	DragScale    float64
	GravityScale float64
}

// Integrate applies gravity and drag, then moves tr. Velocities that decay
// below a small threshold snap to zero.
func (rb *Rigidbody2D) Integrate(tr *Transform2D, dt time.Duration) {
	s := dt.Seconds()
	rb.VY += Gravity * s * rb.GravityScale
	if rb.VX == 0 && rb.VY == 0 {
		return
	}
	rb.VX -= rb.VX * rb.DragScale * s
	rb.VY -= rb.VY * rb.DragScale * s
	if math.Hypot(rb.VX, rb.VY) > 0.001 {
		tr.Translate(rb.VX*s, rb.VY*s)
		return
	}
	rb.VX, rb.VY = 0, 0
}

type rigidbodyDoc struct {
	Velocity     Vec2    `yaml:"velocity"`
	DragScale    float64 `yaml:"drag_scale"`
	GravityScale float64 `yaml:"gravity_scale"`
}

func (rb *Rigidbody2D) Serialize(n *yaml.Node) bool {
	return n.Encode(rigidbodyDoc{
		Velocity:     Vec2{rb.VX, rb.VY},
		DragScale:    rb.DragScale,
		GravityScale: rb.GravityScale,
	}) == nil
}

func (rb *Rigidbody2D) Load(n *yaml.Node) bool {
	var doc rigidbodyDoc
	if err := n.Decode(&doc); err != nil {
		return false
	}
	rb.VX, rb.VY = doc.Velocity.X, doc.Velocity.Y
	rb.DragScale = doc.DragScale
	rb.GravityScale = doc.GravityScale
	return true
}
