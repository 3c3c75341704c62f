package ecs

import (
	"reflect"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Capability is a behaviour a component type may implement. Types opt in
// structurally by implementing the matching interface on their pointer type.
type Capability uint8

const (
	CapUpdate Capability = 1 << iota
	CapTransform
	CapRender
	CapSerialize
	CapCopy
)

func (c Capability) String() string {
	var parts []string
	for _, p := range []struct {
		c    Capability
		name string
	}{
		{CapUpdate, "update"},
		{CapTransform, "transform"},
		{CapRender, "render"},
		{CapSerialize, "serialize"},
		{CapCopy, "copy"},
	} {
		if c&p.c != 0 {
			parts = append(parts, p.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Initializer is called after a component is zeroed in place.
type Initializer interface{ Init() }

// Destroyer is called before a component's storage is zeroed.
type Destroyer interface{ Destroy() }

// Updater components are visited by World.UpdateComponents.
type Updater interface{ Update(dt time.Duration) }

// Positioner marks the transform component of a pool. Render calls receive
// the entity's Positioner.
type Positioner interface{ Position() (x, y float64) }

// Renderer components are visited by World.RenderEntities.
type Renderer interface{ Render(transform Positioner) }

// Serializable components write and read their fields through an opaque
// document node. Returning false marks the component as failed without
// aborting the caller.
type Serializable interface {
	Serialize(node *yaml.Node) bool
	Load(node *yaml.Node) bool
}

// functions is the per-type dispatch table. Every slot except construct and
// destruct may be nil, meaning the type lacks that capability.
type functions struct {
	construct func(p any)
	copy      func(dst, src any)
	destruct  func(p any)
	update    func(p any, dt time.Duration)
	render    func(p any, transform Positioner)
	serialize func(p any, node *yaml.Node) bool
	load      func(p any, node *yaml.Node) bool
	accepts   func(v any) bool
}

// ComponentType describes one component type: its name, its capabilities and
// the function table a ComponentPool dispatches through. It carries no id;
// ids belong to the World that registers it.
type ComponentType struct {
	name       string
	rtype      reflect.Type
	caps       Capability
	fns        functions
	newStorage func(capacity int) storage
}

func (t *ComponentType) Name() string             { return t.name }
func (t *ComponentType) Type() reflect.Type       { return t.rtype }
func (t *ComponentType) Capabilities() Capability { return t.caps }
func (t *ComponentType) Has(c Capability) bool    { return t.caps&c == c }

type typeConfig[T any] struct {
	name     string
	ctor     func(*T)
	copyable bool
}

// TypeOption customises NewComponentType.
type TypeOption[T any] func(*typeConfig[T])

// WithName overrides the type name written to schema documents.
func WithName[T any](name string) TypeOption[T] {
	return func(c *typeConfig[T]) { c.name = name }
}

// WithConstructor runs fn on every freshly constructed component, after Init.
// It is the place to inject collaborators such as a canvas or a script engine.
func WithConstructor[T any](fn func(*T)) TypeOption[T] {
	return func(c *typeConfig[T]) { c.ctor = fn }
}

// Copyable gives T the copy capability using plain value assignment.
func Copyable[T any]() TypeOption[T] {
	return func(c *typeConfig[T]) { c.copyable = true }
}

// NewComponentType builds the function table for T by checking which
// capability interfaces *T implements.
func NewComponentType[T any](opts ...TypeOption[T]) *ComponentType {
	cfg := typeConfig[T]{}
	for _, o := range opts {
		o(&cfg)
	}
	rt := reflect.TypeFor[T]()
	t := &ComponentType{
		name:  cfg.name,
		rtype: rt,
		newStorage: func(capacity int) storage {
			return &arena[T]{data: make([]T, capacity)}
		},
	}
	if rt.Size() == 0 {
		t.newStorage = func(capacity int) storage {
			return &cellArena[T]{data: make([]cell[T], capacity)}
		}
	}
	if t.name == "" {
		t.name = rt.String()
	}

	var probe any = new(T)
	ctor := cfg.ctor
	t.fns.construct = func(p any) {
		c := p.(*T)
		var zero T
		*c = zero
		if in, ok := p.(Initializer); ok {
			in.Init()
		}
		if ctor != nil {
			ctor(c)
		}
	}
	t.fns.destruct = func(p any) {
		if d, ok := p.(Destroyer); ok {
			d.Destroy()
		}
		var zero T
		*p.(*T) = zero
	}
	t.fns.accepts = func(v any) bool {
		_, ok := v.(*T)
		return ok
	}

	if _, ok := probe.(interface{ CopyFrom(*T) }); ok {
		t.caps |= CapCopy
		t.fns.copy = func(dst, src any) {
			d := dst.(*T)
			var zero T
			*d = zero
			any(d).(interface{ CopyFrom(*T) }).CopyFrom(src.(*T))
		}
	} else if cfg.copyable {
		t.caps |= CapCopy
		t.fns.copy = func(dst, src any) {
			*dst.(*T) = *src.(*T)
		}
	}
	if _, ok := probe.(Updater); ok {
		t.caps |= CapUpdate
		t.fns.update = func(p any, dt time.Duration) { p.(Updater).Update(dt) }
	}
	if _, ok := probe.(Positioner); ok {
		t.caps |= CapTransform
	}
	if _, ok := probe.(Renderer); ok {
		t.caps |= CapRender
		t.fns.render = func(p any, tr Positioner) { p.(Renderer).Render(tr) }
	}
	if _, ok := probe.(Serializable); ok {
		t.caps |= CapSerialize
		t.fns.serialize = func(p any, n *yaml.Node) bool { return p.(Serializable).Serialize(n) }
		t.fns.load = func(p any, n *yaml.Node) bool { return p.(Serializable).Load(n) }
	}
	return t
}

// storage is the contiguous backing array of one ComponentPool.
type storage interface {
	at(slot uint32) any
	len() int
}

type arena[T any] struct {
	data []T
}

func (a *arena[T]) at(slot uint32) any { return &a.data[slot] }
func (a *arena[T]) len() int           { return len(a.data) }

// cell pads a zero-size T so every slot has its own address; reverse lookup
// keys on that address.
type cell[T any] struct {
	v T
	_ byte
}

type cellArena[T any] struct {
	data []cell[T]
}

func (a *cellArena[T]) at(slot uint32) any { return &a.data[slot].v }
func (a *cellArena[T]) len() int           { return len(a.data) }
