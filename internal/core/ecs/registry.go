package ecs

import (
	"fmt"
	"reflect"
)

// Registry assigns World-wide component ids on first use and tracks which
// ids implement which capability. Ids are never reused.
type Registry struct {
	types  []*ComponentType
	byType map[reflect.Type]ComponentID
	byName map[string]ComponentID

	update    PoolMask
	transform PoolMask
	render    PoolMask
	serialize PoolMask
}

func NewRegistry() *Registry {
	return &Registry{
		types:  make([]*ComponentType, 0, 16),
		byType: make(map[reflect.Type]ComponentID, 16),
		byName: make(map[string]ComponentID, 16),
	}
}

// Register returns the id of t, assigning the next free id if its Go type
// has not been seen. A second descriptor for an already registered Go type
// gets the existing id; the first descriptor's function table stays in use.
func (r *Registry) Register(t *ComponentType) (ComponentID, error) {
	if id, ok := r.byType[t.rtype]; ok {
		return id, nil
	}
	if len(r.types) >= MaxComponentTypes {
		return InvalidComponentID, fmt.Errorf("register %s: %w", t.name, ErrTooManyComponents)
	}
	id := ComponentID(len(r.types))
	r.types = append(r.types, t)
	r.byType[t.rtype] = id
	if _, taken := r.byName[t.name]; !taken {
		r.byName[t.name] = id
	}
	if t.Has(CapUpdate) {
		r.update.Set(id)
	}
	if t.Has(CapTransform) {
		r.transform.Set(id)
	}
	if t.Has(CapRender) {
		r.render.Set(id)
	}
	if t.Has(CapSerialize) {
		r.serialize.Set(id)
	}
	return id, nil
}

// Lookup returns the id already assigned to t's Go type.
func (r *Registry) Lookup(t *ComponentType) (ComponentID, bool) {
	if t == nil {
		return InvalidComponentID, false
	}
	id, ok := r.byType[t.rtype]
	return id, ok
}

func (r *Registry) lookupType(rt reflect.Type) (ComponentID, bool) {
	id, ok := r.byType[rt]
	return id, ok
}

// ByName finds a registered type by its schema name.
func (r *Registry) ByName(name string) (*ComponentType, ComponentID, bool) {
	id, ok := r.byName[name]
	if !ok {
		return nil, InvalidComponentID, false
	}
	return r.types[id], id, true
}

// Type returns the descriptor registered under id.
func (r *Registry) Type(id ComponentID) (*ComponentType, bool) {
	if int(id) >= len(r.types) {
		return nil, false
	}
	return r.types[id], true
}

// Count is the number of ids handed out so far.
func (r *Registry) Count() int { return len(r.types) }

// Implements reports whether the type behind id declared capability c.
func (r *Registry) Implements(id ComponentID, c Capability) bool {
	t, ok := r.Type(id)
	return ok && t.Has(c)
}

// CapabilityMask returns every registered id implementing c. Only the
// dispatched capabilities (update, transform, render, serialize) are tracked.
func (r *Registry) CapabilityMask(c Capability) PoolMask {
	switch c {
	case CapUpdate:
		return r.update
	case CapTransform:
		return r.transform
	case CapRender:
		return r.render
	case CapSerialize:
		return r.serialize
	}
	return PoolMask{}
}
