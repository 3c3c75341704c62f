package system

import (
	"context"
	"time"

	"github.com/l1jgo/poolecs/internal/core/ecs"
	coresys "github.com/l1jgo/poolecs/internal/core/system"
	"github.com/l1jgo/poolecs/internal/prefab"
	"go.uber.org/zap"
)

// PrefabStore persists prefab documents outside the prefab directory.
type PrefabStore interface {
	SavePrefab(ctx context.Context, p *prefab.Prefab) error
}

// SnapshotSystem periodically records an entity as a prefab, writing it to
// the prefab directory and, when configured, to a store. Phase 5 (Persist).
type SnapshotSystem struct {
	scene     *Scene
	entity    ecs.EntityID
	name      string
	dir       string
	store     PrefabStore
	log       *zap.Logger
	tickCount int
	interval  int // snapshot every N ticks
	saved     int
}

func NewSnapshotSystem(scene *Scene, entity ecs.EntityID, name, dir string, store PrefabStore, log *zap.Logger, intervalTicks int) *SnapshotSystem {
	return &SnapshotSystem{
		scene:    scene,
		entity:   entity,
		name:     name,
		dir:      dir,
		store:    store,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *SnapshotSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	if err := s.Snapshot(); err != nil {
		s.log.Warn("snapshot failed", zap.String("prefab", s.name), zap.Error(err))
	}
}

// Snapshot records the entity immediately. Called on shutdown as well.
func (s *SnapshotSystem) Snapshot() error {
	p, err := prefab.FromEntity(s.scene.World, s.scene.Schema, s.entity, s.name)
	if err != nil {
		return err
	}
	if s.dir != "" {
		path, err := p.Save(s.dir)
		if err != nil {
			return err
		}
		s.log.Debug("snapshot saved", zap.String("path", path))
	}
	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.SavePrefab(ctx, p); err != nil {
			return err
		}
	}
	s.saved++
	return nil
}

// Saved is the number of successful snapshots.
func (s *SnapshotSystem) Saved() int { return s.saved }
