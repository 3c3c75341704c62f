package system

import (
	"time"

	"github.com/l1jgo/poolecs/internal/component"
	"github.com/l1jgo/poolecs/internal/core/ecs"
	coresys "github.com/l1jgo/poolecs/internal/core/system"
)

// PhysicsSystem integrates rigidbodies, bounces them off the side walls and
// queues bubbles that fall past the bottom edge. Phase 3 (PostUpdate).
type PhysicsSystem struct {
	scene *Scene
}

func NewPhysicsSystem(scene *Scene) *PhysicsSystem {
	return &PhysicsSystem{scene: scene}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *PhysicsSystem) Update(dt time.Duration) {
	w := s.scene.World
	b := s.scene.Bounds()
	ecs.Each2(w, func(id ecs.EntityID, tr *component.Transform2D, rb *component.Rigidbody2D) {
		rb.Integrate(tr, dt)
		switch {
		case tr.X < 0:
			tr.X = -tr.X
			rb.VX = -rb.VX
		case tr.X > b.W-1:
			tr.X = 2*(b.W-1) - tr.X
			rb.VX = -rb.VX
		}
		if tr.Y >= b.H && id.Pool() == s.scene.Bubbles {
			w.MarkForDestruction(id)
		}
	})
}
