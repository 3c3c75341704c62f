package component

import (
	"fmt"
	"slices"

	"github.com/l1jgo/poolecs/internal/core/ecs"
	"github.com/l1jgo/poolecs/internal/render"
	"github.com/l1jgo/poolecs/internal/scripting"
)

// Catalogue holds the component types of one world. Types that need a
// collaborator get it injected by their constructor. canvas and engine may be
// nil; the components then stay inert.
type Catalogue struct {
	Transform *ecs.ComponentType
	Rigidbody *ecs.ComponentType
	Collider  *ecs.ComponentType
	Sprite    *ecs.ComponentType
	Spawner   *ecs.ComponentType
	Score     *ecs.ComponentType
	Lifetime  *ecs.ComponentType
	Player    *ecs.ComponentType
	Script    *ecs.ComponentType

	byName map[string]*ecs.ComponentType
}

func NewCatalogue(canvas *render.Canvas, engine *scripting.Engine) *Catalogue {
	c := &Catalogue{
		Transform: ecs.NewComponentType[Transform2D](ecs.WithName[Transform2D]("Transform2D")),
		Rigidbody: ecs.NewComponentType[Rigidbody2D](ecs.WithName[Rigidbody2D]("Rigidbody2D"), ecs.Copyable[Rigidbody2D]()),
		Collider:  ecs.NewComponentType[Collider2D](ecs.WithName[Collider2D]("Collider2D"), ecs.Copyable[Collider2D]()),
		Sprite: ecs.NewComponentType[Sprite](
			ecs.WithName[Sprite]("Sprite"),
			ecs.WithConstructor(func(s *Sprite) { s.Attach(canvas) }),
			ecs.Copyable[Sprite](),
		),
		Spawner:  ecs.NewComponentType[Spawner](ecs.WithName[Spawner]("Spawner")),
		Score:    ecs.NewComponentType[ScoreCounter](ecs.WithName[ScoreCounter]("ScoreCounter")),
		Lifetime: ecs.NewComponentType[Lifetime](ecs.WithName[Lifetime]("Lifetime"), ecs.Copyable[Lifetime]()),
		Player:   ecs.NewComponentType[PlayerController](ecs.WithName[PlayerController]("PlayerController")),
		Script: ecs.NewComponentType[scripting.Script](
			ecs.WithName[scripting.Script]("Script"),
			ecs.WithConstructor(func(s *scripting.Script) { s.Attach(engine) }),
		),
	}
	c.byName = make(map[string]*ecs.ComponentType)
	for _, t := range c.All() {
		c.byName[t.Name()] = t
	}
	return c
}

// All returns every type in a fixed order.
func (c *Catalogue) All() []*ecs.ComponentType {
	return []*ecs.ComponentType{
		c.Transform, c.Rigidbody, c.Collider, c.Sprite, c.Spawner,
		c.Score, c.Lifetime, c.Player, c.Script,
	}
}

// Lookup resolves a type by its schema name.
func (c *Catalogue) Lookup(name string) (*ecs.ComponentType, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Resolve maps names to types, failing on the first unknown name.
func (c *Catalogue) Resolve(names []string) ([]*ecs.ComponentType, error) {
	types := make([]*ecs.ComponentType, 0, len(names))
	for _, n := range names {
		t, ok := c.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown component type %q (have %v)", n, c.Names())
		}
		types = append(types, t)
	}
	return types, nil
}

func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
