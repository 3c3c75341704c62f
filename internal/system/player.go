package system

import (
	"time"

	"github.com/l1jgo/poolecs/internal/component"
	"github.com/l1jgo/poolecs/internal/core/ecs"
	coresys "github.com/l1jgo/poolecs/internal/core/system"
	"go.uber.org/zap"
)

// PlayerSystem moves the player along the bottom row and ends the run when a
// bubble touches it. Phase 3 (PostUpdate), after physics.
type PlayerSystem struct {
	scene *Scene
	log   *zap.Logger
}

func NewPlayerSystem(scene *Scene, log *zap.Logger) *PlayerSystem {
	return &PlayerSystem{scene: scene, log: log}
}

func (s *PlayerSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *PlayerSystem) Update(dt time.Duration) {
	if !s.scene.Running() {
		return
	}
	w := s.scene.World
	b := s.scene.Bounds()
	hit := false
	ecs.Each3(w, func(_ ecs.EntityID, tr *component.Transform2D, col *component.Collider2D, pc *component.PlayerController) {
		tr.X += float64(pc.Input) * pc.Speed * dt.Seconds()
		half := col.W/2 - 0.5
		tr.X = max(half-col.OffX, min(tr.X, b.W-1-half-col.OffX))
		if s.touching(tr, col) {
			hit = true
		}
	})
	if hit {
		if err := s.scene.End(); err != nil {
			s.log.Warn("end run", zap.Error(err))
		}
	}
}

func (s *PlayerSystem) touching(tr *component.Transform2D, col *component.Collider2D) bool {
	w := s.scene.World
	pool, err := w.EntityPool(s.scene.Bubbles)
	if err != nil {
		return false
	}
	mask, err := w.Mask(s.scene.Types.Transform, s.scene.Types.Collider)
	if err != nil {
		return false
	}
	em, err := pool.ConvertPoolMaskToEntityMask(mask)
	if err != nil {
		return false
	}
	for id := range pool.Entities(em) {
		otr, _ := ecs.Get[component.Transform2D](w, id)
		ocol, _ := ecs.Get[component.Collider2D](w, id)
		if col.Overlaps(tr, ocol, otr) {
			return true
		}
	}
	return false
}
