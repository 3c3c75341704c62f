package system

import (
	"fmt"
	"time"

	"github.com/l1jgo/poolecs/internal/core/ecs"
	coresys "github.com/l1jgo/poolecs/internal/core/system"
	"github.com/l1jgo/poolecs/internal/render"
)

// RenderSystem redraws the frame: every render-capable component, then the
// score line. Phase 4 (Render).
type RenderSystem struct {
	world  *ecs.World
	canvas *render.Canvas
	scene  *Scene
}

func NewRenderSystem(world *ecs.World, canvas *render.Canvas, scene *Scene) *RenderSystem {
	return &RenderSystem{world: world, canvas: canvas, scene: scene}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

func (s *RenderSystem) Update(_ time.Duration) {
	s.canvas.Clear()
	s.world.RenderEntities()
	if s.scene != nil {
		s.canvas.Text(0, 0, s.hud(), render.ParseColor("white"))
	}
	s.canvas.Show()
}

func (s *RenderSystem) hud() string {
	sc := s.scene.Score()
	if sc == nil {
		return ""
	}
	if !sc.Running {
		return fmt.Sprintf("best %.1fs  [r] restart  [q] quit", sc.Best.Seconds())
	}
	return fmt.Sprintf("score %.1fs  best %.1fs", sc.Current.Seconds(), sc.Best.Seconds())
}
