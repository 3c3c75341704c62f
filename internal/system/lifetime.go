package system

import (
	"time"

	"github.com/l1jgo/poolecs/internal/component"
	"github.com/l1jgo/poolecs/internal/core/ecs"
	coresys "github.com/l1jgo/poolecs/internal/core/system"
)

// LifetimeSystem queues entities whose lifetime has run out. Phase 3
// (PostUpdate).
type LifetimeSystem struct {
	world *ecs.World
}

func NewLifetimeSystem(world *ecs.World) *LifetimeSystem {
	return &LifetimeSystem{world: world}
}

func (s *LifetimeSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *LifetimeSystem) Update(_ time.Duration) {
	for id := range s.world.Entities(mustMask[component.Lifetime](s.world)) {
		if l, err := ecs.Get[component.Lifetime](s.world, id); err == nil && l.Expired() {
			s.world.MarkForDestruction(id)
		}
	}
}
