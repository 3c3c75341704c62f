package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: poll input, swap event buffers
	PhasePreUpdate               // 1: deliver last frame's events
	PhaseUpdate                  // 2: component updates, scripts
	PhasePostUpdate              // 3: physics, spawning
	PhaseRender                  // 4: render components, present
	PhasePersist                 // 5: snapshots
	PhaseCleanup                 // 6: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseRender:
		return "render"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
