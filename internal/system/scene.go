package system

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/l1jgo/poolecs/internal/component"
	"github.com/l1jgo/poolecs/internal/core/ecs"
	"github.com/l1jgo/poolecs/internal/data"
	"github.com/l1jgo/poolecs/internal/prefab"
	"github.com/l1jgo/poolecs/internal/schema"
	"github.com/l1jgo/poolecs/internal/scripting"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	BackgroundPool = "Background_Pool"
	BubblePool     = "Bubble_Pool"
	PlayerPool     = "Player_Pool"
)

// Bounds is the playfield size in cells.
type Bounds struct {
	W, H float64
}

// SceneConfig carries the tunables of a scene.
type SceneConfig struct {
	Bounds        Bounds
	SpawnInterval time.Duration
	BubblePrefabs []string
	Script        string // Lua script attached to the background, if any
	Seed          uint64
}

// Scene owns the demo's pools and its two long-lived entities: the player
// and the background, which carries the spawner and the score counter.
type Scene struct {
	World   *ecs.World
	Types   *component.Catalogue
	Schema  *schema.Document
	Prefabs *prefab.Library

	Background, Bubbles, Players ecs.PoolID
	Player, Controller           ecs.EntityID

	cfg SceneConfig
	rng *rand.Rand
	log *zap.Logger
}

// NewScene creates every pool in table, then the player and background
// entities, and starts the first run.
func NewScene(w *ecs.World, types *component.Catalogue, doc *schema.Document, lib *prefab.Library,
	table *data.PoolTable, cfg SceneConfig, log *zap.Logger) (*Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scene{
		World:   w,
		Types:   types,
		Schema:  doc,
		Prefabs: lib,
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		log:     log,
	}
	ids := make(map[string]ecs.PoolID, table.Count())
	for _, e := range table.All() {
		ct, err := types.Resolve(e.Components)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", e.Name, err)
		}
		id, err := w.CreateEntityPool(e.Name, e.Capacity, ct...)
		if err != nil {
			return nil, err
		}
		ids[e.Name] = id
	}
	for name, dst := range map[string]*ecs.PoolID{
		BackgroundPool: &s.Background,
		BubblePool:     &s.Bubbles,
		PlayerPool:     &s.Players,
	} {
		id, ok := ids[name]
		if !ok {
			return nil, fmt.Errorf("pool table: %w: %s", ecs.ErrUnknownPool, name)
		}
		*dst = id
	}

	if err := s.spawnPlayer(); err != nil {
		return nil, err
	}
	if err := s.spawnBackground(); err != nil {
		return nil, err
	}
	if err := s.Restart(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scene) Bounds() Bounds { return s.cfg.Bounds }

// Rand is the scene's deterministic random source.
func (s *Scene) Rand() *rand.Rand { return s.rng }

func (s *Scene) spawnPlayer() error {
	t := s.Types
	id, err := s.World.CreateEntityWithComponents(s.Players, t.Transform, t.Sprite, t.Player, t.Collider)
	if err != nil {
		return fmt.Errorf("spawn player: %w", err)
	}
	tr, _ := ecs.Get[component.Transform2D](s.World, id)
	tr.Y = s.cfg.Bounds.H - 1
	sp, _ := ecs.Get[component.Sprite](s.World, id)
	sp.Glyph, sp.Color = "A", "yellow"
	s.Player = id
	return nil
}

func (s *Scene) spawnBackground() error {
	t := s.Types
	id, err := s.World.CreateEntityWithComponents(s.Background, t.Transform, t.Score)
	if err != nil {
		return fmt.Errorf("spawn background: %w", err)
	}
	s.Controller = id
	if s.cfg.Script == "" {
		return nil
	}
	sc, err := ecs.Assign[scripting.Script](s.World, id)
	if err != nil {
		return fmt.Errorf("background script: %w", err)
	}
	sc.Name = s.cfg.Script
	return nil
}

// Score returns the background's score counter.
func (s *Scene) Score() *component.ScoreCounter {
	sc, _ := ecs.Get[component.ScoreCounter](s.World, s.Controller)
	return sc
}

// Running reports whether a run is in progress.
func (s *Scene) Running() bool {
	sc := s.Score()
	return sc != nil && sc.Running
}

// Restart centres and shows the player, gives the background a spawner and
// starts the score.
func (s *Scene) Restart() error {
	tr, err := ecs.Get[component.Transform2D](s.World, s.Player)
	if err != nil {
		return err
	}
	tr.X = float64(int(s.cfg.Bounds.W / 2))
	sp, _ := ecs.Get[component.Sprite](s.World, s.Player)
	sp.Visible = true

	if !ecs.Has[component.Spawner](s.World, s.Controller) {
		spawner, err := ecs.Assign[component.Spawner](s.World, s.Controller)
		if err != nil {
			return err
		}
		spawner.Interval = s.cfg.SpawnInterval
		spawner.Prefabs = s.cfg.BubblePrefabs
	}
	s.Score().Start()
	s.log.Info("run started")
	return nil
}

// End hides the player, stops spawning, clears every bubble and stops the
// score.
func (s *Scene) End() error {
	sp, err := ecs.Get[component.Sprite](s.World, s.Player)
	if err != nil {
		return err
	}
	sp.Visible = false
	var errs error
	if ecs.Has[component.Spawner](s.World, s.Controller) {
		errs = multierr.Append(errs, ecs.Remove[component.Spawner](s.World, s.Controller))
	}
	errs = multierr.Append(errs, s.World.DestroyAllEntities(s.Bubbles))
	sc := s.Score()
	s.log.Info("run ended",
		zap.Duration("score", sc.Current),
		zap.Duration("best", sc.Best),
	)
	sc.End()
	return errs
}
