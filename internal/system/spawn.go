package system

import (
	"slices"
	"time"

	"github.com/l1jgo/poolecs/internal/component"
	"github.com/l1jgo/poolecs/internal/core/ecs"
	coresys "github.com/l1jgo/poolecs/internal/core/system"
	"go.uber.org/zap"
)

// SpawnSystem instantiates one random prefab per pending spawn at a random
// column near the top and randomly flips its horizontal velocity. Phase 3
// (PostUpdate).
type SpawnSystem struct {
	scene   *Scene
	log     *zap.Logger
	spawned uint64
}

func NewSpawnSystem(scene *Scene, log *zap.Logger) *SpawnSystem {
	return &SpawnSystem{scene: scene, log: log}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SpawnSystem) Update(_ time.Duration) {
	w := s.scene.World
	// collected first: spawning grows other pools
	ids := slices.Collect(w.Entities(mustMask[component.Spawner](w)))
	for _, id := range ids {
		sp, err := ecs.Get[component.Spawner](w, id)
		if err != nil {
			continue
		}
		for n := sp.Take(); n > 0 && len(sp.Prefabs) > 0; n-- {
			s.spawn(sp.Prefabs[s.scene.rng.IntN(len(sp.Prefabs))])
		}
	}
}

func (s *SpawnSystem) spawn(name string) {
	p, ok := s.scene.Prefabs.Get(name)
	if !ok {
		s.log.Warn("unknown prefab", zap.String("prefab", name))
		return
	}
	w := s.scene.World
	id, err := p.Instantiate(w, s.scene.Schema)
	if err != nil {
		s.log.Debug("spawn failed", zap.String("prefab", name), zap.Error(err))
		return
	}
	b := s.scene.Bounds()
	rng := s.scene.rng
	if tr, err := ecs.Get[component.Transform2D](w, id); err == nil {
		tr.X = float64(rng.IntN(max(int(b.W), 1)))
		tr.Y = float64(rng.IntN(max(int(b.H)/4, 1)))
	}
	if rb, err := ecs.Get[component.Rigidbody2D](w, id); err == nil && rng.IntN(2) == 0 {
		rb.VX = -rb.VX
	}
	s.spawned++
}

// Spawned is the total number of entities created.
func (s *SpawnSystem) Spawned() uint64 { return s.spawned }

// mustMask builds the mask of a single component type. Unregistered types
// yield a mask no pool contains.
func mustMask[T any](w *ecs.World) ecs.PoolMask {
	m, err := ecs.MaskOf[T](w)
	if err != nil {
		var none ecs.PoolMask
		none.Set(ecs.InvalidComponentID)
		return none
	}
	return m
}
