package system

import (
	"time"

	"github.com/l1jgo/poolecs/internal/core/ecs"
	coresys "github.com/l1jgo/poolecs/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	log   *zap.Logger
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if err := s.world.FlushDestroyQueue(); err != nil {
		s.log.Warn("deferred destroy", zap.Error(err))
	}
}
