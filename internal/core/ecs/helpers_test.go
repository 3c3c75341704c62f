package ecs

import (
	"time"

	"gopkg.in/yaml.v3"
)

type position struct{ X, Y float64 }

func (p *position) Position() (float64, float64) { return p.X, p.Y }

type velocity struct {
	DX, DY  float64
	Updates int
}

func (v *velocity) Update(dt time.Duration) { v.Updates++ }

type sprite struct {
	Renders int
	LastX   float64
}

func (s *sprite) Render(tr Positioner) {
	s.Renders++
	s.LastX, _ = tr.Position()
}

type health struct {
	HP        int
	destroyed *int
}

func (h *health) Init() { h.HP = 100 }

func (h *health) Destroy() {
	if h.destroyed != nil {
		*h.destroyed++
	}
}

func (h *health) CopyFrom(src *health) { *h = *src }

type healthDoc struct {
	HP int `yaml:"hp"`
}

func (h *health) Serialize(n *yaml.Node) bool { return n.Encode(healthDoc{HP: h.HP}) == nil }

func (h *health) Load(n *yaml.Node) bool {
	var d healthDoc
	if err := n.Decode(&d); err != nil {
		return false
	}
	h.HP = d.HP
	return true
}

type broken struct{}

func (*broken) Serialize(*yaml.Node) bool { return false }
func (*broken) Load(*yaml.Node) bool      { return false }

type tag struct{ V int }

// other transform, for ambiguity checks
type anchor struct{ X float64 }

func (a *anchor) Position() (float64, float64) { return a.X, 0 }

var (
	positionType = NewComponentType[position](WithName[position]("Position"))
	velocityType = NewComponentType[velocity](WithName[velocity]("Velocity"))
	spriteType   = NewComponentType[sprite](WithName[sprite]("Sprite"))
	healthType   = NewComponentType[health](WithName[health]("Health"))
	brokenType   = NewComponentType[broken](WithName[broken]("Broken"))
	tagType      = NewComponentType[tag](WithName[tag]("Tag"), Copyable[tag]())
	anchorType   = NewComponentType[anchor](WithName[anchor]("Anchor"))
)

type recordingObserver struct {
	pools     []string
	created   []EntityID
	destroyed []EntityID
}

func (o *recordingObserver) PoolCreated(_ PoolID, name string) { o.pools = append(o.pools, name) }
func (o *recordingObserver) EntityCreated(id EntityID)         { o.created = append(o.created, id) }
func (o *recordingObserver) EntityDestroyed(id EntityID)       { o.destroyed = append(o.destroyed, id) }

func mustPool(t interface {
	Helper()
	Fatalf(string, ...any)
}, w *World, name string, capacity int, types ...*ComponentType) PoolID {
	t.Helper()
	id, err := w.CreateEntityPool(name, capacity, types...)
	if err != nil {
		t.Fatalf("CreateEntityPool(%q): %v", name, err)
	}
	return id
}
