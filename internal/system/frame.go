package system

import (
	"time"

	"github.com/l1jgo/poolecs/internal/core/ecs"
	"github.com/l1jgo/poolecs/internal/core/event"
	coresys "github.com/l1jgo/poolecs/internal/core/system"
)

// UpdateSystem runs every update-capable component. Phase 2 (Update).
type UpdateSystem struct {
	world *ecs.World
}

func NewUpdateSystem(world *ecs.World) *UpdateSystem {
	return &UpdateSystem{world: world}
}

func (s *UpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UpdateSystem) Update(dt time.Duration) {
	s.world.UpdateComponents(dt)
}

// EventSystem publishes last frame's events and delivers them to
// subscribers. Phase 1 (PreUpdate).
type EventSystem struct {
	bus       *event.Bus
	delivered uint64
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.delivered += uint64(s.bus.DispatchAll())
}

// Delivered is the total number of events handed to subscribers.
func (s *EventSystem) Delivered() uint64 { return s.delivered }
