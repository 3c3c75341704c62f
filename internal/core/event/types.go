package event

import "github.com/l1jgo/poolecs/internal/core/ecs"

type PoolCreated struct {
	Pool ecs.PoolID
	Name string
}

type EntityCreated struct {
	Entity ecs.EntityID
}

type EntityDestroyed struct {
	Entity ecs.EntityID
}

// WorldObserver forwards World structural changes onto a Bus.
type WorldObserver struct {
	Bus *Bus
}

func (o WorldObserver) PoolCreated(id ecs.PoolID, name string) {
	Emit(o.Bus, PoolCreated{Pool: id, Name: name})
}

func (o WorldObserver) EntityCreated(id ecs.EntityID) {
	Emit(o.Bus, EntityCreated{Entity: id})
}

func (o WorldObserver) EntityDestroyed(id ecs.EntityID) {
	Emit(o.Bus, EntityDestroyed{Entity: id})
}

var _ ecs.Observer = WorldObserver{}
