package ecs

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ComponentPool owns fixed storage for one component type, addressed by
// slot index. A slot's value is live only while the owning entity's mask bit
// is set; the EntityPool keeps that in step with Construct and Destruct.
type ComponentPool struct {
	typ      *ComponentType
	capacity uint32
	data     storage
	// owners maps a live component pointer back to its slot.
	owners map[any]uint32
}

func newComponentPool(t *ComponentType, capacity uint32) *ComponentPool {
	return &ComponentPool{
		typ:      t,
		capacity: capacity,
		data:     t.newStorage(int(capacity)),
		owners:   make(map[any]uint32, min(int(capacity), 256)),
	}
}

func (p *ComponentPool) Type() *ComponentType { return p.typ }
func (p *ComponentPool) Capacity() uint32     { return p.capacity }
func (p *ComponentPool) Live() int            { return len(p.owners) }

// Get returns the *T stored at slot, live or not.
func (p *ComponentPool) Get(slot uint32) (any, error) {
	if slot >= p.capacity {
		return nil, fmt.Errorf("%s slot %d of %d: %w", p.typ.name, slot, p.capacity, ErrSlotOutOfRange)
	}
	return p.data.at(slot), nil
}

func (p *ComponentPool) Construct(slot uint32) (any, error) {
	c, err := p.Get(slot)
	if err != nil {
		return nil, err
	}
	p.typ.fns.construct(c)
	p.owners[c] = slot
	return c, nil
}

// ConstructCopy initialises slot as a copy of src, which must be a *T.
func (p *ComponentPool) ConstructCopy(slot uint32, src any) (any, error) {
	if p.typ.fns.copy == nil {
		return nil, &CapabilityError{Type: p.typ.name, Capability: CapCopy}
	}
	if src == nil || !p.typ.fns.accepts(src) {
		return nil, fmt.Errorf("copy into %s from %T: %w", p.typ.name, src, ErrTypeMismatch)
	}
	c, err := p.Get(slot)
	if err != nil {
		return nil, err
	}
	p.typ.fns.copy(c, src)
	p.owners[c] = slot
	return c, nil
}

func (p *ComponentPool) Destruct(slot uint32) error {
	c, err := p.Get(slot)
	if err != nil {
		return err
	}
	p.typ.fns.destruct(c)
	delete(p.owners, c)
	return nil
}

func (p *ComponentPool) Update(slot uint32, dt time.Duration) error {
	if p.typ.fns.update == nil {
		return &CapabilityError{Type: p.typ.name, Capability: CapUpdate}
	}
	c, err := p.Get(slot)
	if err != nil {
		return err
	}
	p.typ.fns.update(c, dt)
	return nil
}

// Render calls the component's Render with transform, which must implement
// Positioner.
func (p *ComponentPool) Render(slot uint32, transform any) error {
	if p.typ.fns.render == nil {
		return &CapabilityError{Type: p.typ.name, Capability: CapRender}
	}
	tr, ok := transform.(Positioner)
	if !ok {
		return fmt.Errorf("render %s with %T: %w", p.typ.name, transform, ErrTypeMismatch)
	}
	c, err := p.Get(slot)
	if err != nil {
		return err
	}
	p.typ.fns.render(c, tr)
	return nil
}

func (p *ComponentPool) Serialize(slot uint32, node *yaml.Node) error {
	if p.typ.fns.serialize == nil {
		return &CapabilityError{Type: p.typ.name, Capability: CapSerialize}
	}
	c, err := p.Get(slot)
	if err != nil {
		return err
	}
	if !p.typ.fns.serialize(c, node) {
		return fmt.Errorf("serialize %s slot %d: %w", p.typ.name, slot, ErrSerializeFailed)
	}
	return nil
}

func (p *ComponentPool) Load(slot uint32, node *yaml.Node) error {
	if p.typ.fns.load == nil {
		return &CapabilityError{Type: p.typ.name, Capability: CapSerialize}
	}
	c, err := p.Get(slot)
	if err != nil {
		return err
	}
	if !p.typ.fns.load(c, node) {
		return fmt.Errorf("load %s slot %d: %w", p.typ.name, slot, ErrSerializeFailed)
	}
	return nil
}

// ReverseLookup maps a live component pointer back to its slot. Pointers
// that are not live components of this pool are rejected.
func (p *ComponentPool) ReverseLookup(ptr any) (uint32, bool) {
	if ptr == nil || !p.typ.fns.accepts(ptr) {
		return 0, false
	}
	slot, ok := p.owners[ptr]
	return slot, ok
}
