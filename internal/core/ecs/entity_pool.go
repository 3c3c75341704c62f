package ecs

import (
	"fmt"
	"iter"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Slot is the owned ground truth behind an EntityID. While the slot is free
// its ID carries InvalidEntityIndex and the version the next occupant gets.
type Slot struct {
	ID   EntityID
	Mask EntityMask
}

// EntityPool manages a fixed-capacity set of entities that all share the same
// registered component types. Slots are allocated with generational indices
// and a free list; component storage never moves.
type EntityPool struct {
	id       PoolID
	name     string
	capacity uint32

	slots    []Slot
	freeList []uint32
	retired  int

	components []*ComponentPool
	globals    []ComponentID
	local      [MaxComponentTypes + 1]LocalIndex
	registered PoolMask
	transform  LocalIndex
}

// newEntityPool builds a pool for types, whose global ids are given in the
// same order.
func newEntityPool(id PoolID, name string, capacity uint32, types []*ComponentType, globals []ComponentID) *EntityPool {
	p := &EntityPool{
		id:         id,
		name:       name,
		capacity:   capacity,
		slots:      make([]Slot, 0, min(int(capacity), 1024)),
		freeList:   make([]uint32, 0, 64),
		components: make([]*ComponentPool, len(types)),
		globals:    append([]ComponentID(nil), globals...),
		transform:  InvalidLocalIndex,
	}
	for i := range p.local {
		p.local[i] = InvalidLocalIndex
	}
	for i, t := range types {
		li := LocalIndex(i)
		p.components[i] = newComponentPool(t, capacity)
		p.local[globals[i]] = li
		p.registered.Set(globals[i])
		if t.Has(CapTransform) && p.transform == InvalidLocalIndex {
			p.transform = li
		}
	}
	return p
}

func (p *EntityPool) ID() PoolID           { return p.id }
func (p *EntityPool) Name() string         { return p.name }
func (p *EntityPool) Capacity() int        { return int(p.capacity) }
func (p *EntityPool) Registered() PoolMask { return p.registered }

// Len is the number of slots ever allocated, alive or free.
func (p *EntityPool) Len() int { return len(p.slots) }

// Alive is the number of entities currently alive.
func (p *EntityPool) Alive() int { return len(p.slots) - len(p.freeList) - p.retired }

// Retired is the number of slots quarantined after exhausting their versions.
func (p *EntityPool) Retired() int { return p.retired }

// ComponentCount is the number of component types registered in the pool.
func (p *EntityPool) ComponentCount() int { return len(p.components) }

// TransformIndex returns the local index of the pool's transform component.
func (p *EntityPool) TransformIndex() (LocalIndex, bool) {
	return p.transform, p.transform != InvalidLocalIndex
}

// LocalIndexOf translates a global component id into this pool's index.
func (p *EntityPool) LocalIndexOf(id ComponentID) (LocalIndex, bool) {
	li := p.local[id]
	return li, li != InvalidLocalIndex
}

// GlobalID translates a local index back to the World-wide id.
func (p *EntityPool) GlobalID(li LocalIndex) (ComponentID, bool) {
	if int(li) >= len(p.globals) {
		return InvalidComponentID, false
	}
	return p.globals[li], true
}

// ComponentPool returns the storage for a local index.
func (p *EntityPool) ComponentPool(li LocalIndex) (*ComponentPool, error) {
	if int(li) >= len(p.components) {
		return nil, fmt.Errorf("pool %q local index %d: %w", p.name, li, ErrComponentNotRegistered)
	}
	return p.components[li], nil
}

// Slot returns a copy of the slot record.
func (p *EntityPool) Slot(slot uint32) (Slot, bool) {
	if slot >= uint32(len(p.slots)) {
		return Slot{}, false
	}
	return p.slots[slot], true
}

// ── Entity management ─────────────────────────────────────────────

func (p *EntityPool) CreateEntity() (EntityID, error) {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		s := &p.slots[idx]
		s.ID = s.ID.withIndex(idx)
		return s.ID, nil
	}
	if uint32(len(p.slots)) >= p.capacity {
		return InvalidEntityID, fmt.Errorf("pool %q capacity %d: %w", p.name, p.capacity, ErrPoolFull)
	}
	id := NewEntityID(uint32(len(p.slots)), p.id, 0)
	p.slots = append(p.slots, Slot{ID: id})
	return id, nil
}

// CreateEntities fills buf with new entities. When buf is larger than the
// remaining capacity only the available entities are created; the count is
// returned together with ErrPoolFull and the created ids stay valid.
func (p *EntityPool) CreateEntities(buf []EntityID) (int, error) {
	want := len(buf)
	if want == 0 {
		return 0, nil
	}
	available := len(p.freeList) + int(p.capacity) - len(p.slots)
	n := min(want, available)
	for i := 0; i < n; i++ {
		id, err := p.CreateEntity()
		if err != nil {
			return i, err
		}
		buf[i] = id
	}
	if n < want {
		return n, fmt.Errorf("pool %q created %d of %d entities: %w", p.name, n, want, ErrPoolFull)
	}
	return n, nil
}

// IsEntityDeleted reports whether id no longer names a live entity of this
// pool. Ids from other pools count as deleted.
func (p *EntityPool) IsEntityDeleted(id EntityID) bool {
	if id.Pool() != p.id || !id.IsValid() {
		return true
	}
	idx := id.Index()
	if idx >= uint32(len(p.slots)) {
		return true
	}
	return p.slots[idx].ID != id
}

// IsSlotDeleted reports whether the slot is free, retired or never allocated.
func (p *EntityPool) IsSlotDeleted(slot uint32) bool {
	if slot >= uint32(len(p.slots)) {
		return true
	}
	return !p.slots[slot].ID.IsValid()
}

// resolve turns an id into a slot index, rejecting stale and foreign ids.
func (p *EntityPool) resolve(id EntityID) (uint32, error) {
	if id.Pool() != p.id {
		return 0, fmt.Errorf("%s in pool %q: %w", id, p.name, ErrWrongPool)
	}
	if p.IsEntityDeleted(id) {
		return 0, fmt.Errorf("%s: %w", id, ErrEntityDestroyed)
	}
	return id.Index(), nil
}

func (p *EntityPool) liveSlot(slot uint32) error {
	if slot >= uint32(len(p.slots)) {
		return fmt.Errorf("pool %q slot %d: %w", p.name, slot, ErrSlotOutOfRange)
	}
	if !p.slots[slot].ID.IsValid() {
		return fmt.Errorf("pool %q slot %d: %w", p.name, slot, ErrEntityDestroyed)
	}
	return nil
}

func (p *EntityPool) DestroyEntity(id EntityID) error {
	slot, err := p.resolve(id)
	if err != nil {
		return err
	}
	return p.destroySlot(slot)
}

func (p *EntityPool) DestroyEntityAt(slot uint32) error {
	if err := p.liveSlot(slot); err != nil {
		return err
	}
	return p.destroySlot(slot)
}

// destroySlot destructs every enabled component, invalidates the handle and
// recycles the slot. A slot whose next version would hit the reserved value
// is retired instead of recycled.
func (p *EntityPool) destroySlot(slot uint32) error {
	p.removeAll(slot)
	s := &p.slots[slot]
	old := s.ID
	next := old.Version() + 1
	if next >= InvalidEntityVersion {
		s.ID = NewEntityID(InvalidEntityIndex, p.id, old.Version())
		p.retired++
		return fmt.Errorf("%s retired: %w", old, ErrVersionExhausted)
	}
	s.ID = NewEntityID(InvalidEntityIndex, p.id, next)
	p.freeList = append(p.freeList, slot)
	return nil
}

// DestroyEntities destroys every id or none: all ids are checked first.
// Version exhaustion on individual slots is reported after the batch.
func (p *EntityPool) DestroyEntities(ids []EntityID) error {
	slots := make([]uint32, len(ids))
	seen := make(map[uint32]struct{}, len(ids))
	for i, id := range ids {
		slot, err := p.resolve(id)
		if err != nil {
			return err
		}
		if _, dup := seen[slot]; dup {
			return fmt.Errorf("%s: %w", id, ErrDuplicateEntity)
		}
		seen[slot] = struct{}{}
		slots[i] = slot
	}
	var errs []error
	for _, slot := range slots {
		if err := p.destroySlot(slot); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

// DestroyAllEntities destroys every live entity in the pool.
func (p *EntityPool) DestroyAllEntities() error {
	var errs []error
	for it := p.Begin(0); !it.Done(); it.Next() {
		if err := p.destroySlot(it.Slot()); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

// Entities yields every live entity whose mask contains mask, in slot order.
func (p *EntityPool) Entities(mask EntityMask) iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		for it := p.Begin(mask); !it.Done(); it.Next() {
			if !yield(it.Entity()) {
				return
			}
		}
	}
}

// ── Component management ─────────────────────────────────────────

// checkAssign validates an assignment without mutating anything.
func (p *EntityPool) checkAssign(slot uint32, li LocalIndex) error {
	if int(li) >= len(p.components) {
		return fmt.Errorf("pool %q local index %d: %w", p.name, li, ErrComponentNotRegistered)
	}
	if err := p.liveSlot(slot); err != nil {
		return err
	}
	if p.slots[slot].Mask.Has(li) {
		return fmt.Errorf("%s on %s: %w", p.components[li].typ.name, p.slots[slot].ID, ErrComponentEnabled)
	}
	return nil
}

// AssignComponent default-constructs the component in place and enables it.
func (p *EntityPool) AssignComponent(slot uint32, li LocalIndex) (any, error) {
	if err := p.checkAssign(slot, li); err != nil {
		return nil, err
	}
	c, err := p.components[li].Construct(slot)
	if err != nil {
		return nil, err
	}
	p.slots[slot].Mask.Set(li)
	return c, nil
}

// AssignComponentByCopy copy-constructs the component from src, a *T.
func (p *EntityPool) AssignComponentByCopy(slot uint32, li LocalIndex, src any) (any, error) {
	if err := p.checkAssign(slot, li); err != nil {
		return nil, err
	}
	c, err := p.components[li].ConstructCopy(slot, src)
	if err != nil {
		return nil, err
	}
	p.slots[slot].Mask.Set(li)
	return c, nil
}

// AssignComponentToSlots assigns li to every slot or to none.
func (p *EntityPool) AssignComponentToSlots(slots []uint32, li LocalIndex) error {
	if err := p.checkBatch(slots, li); err != nil {
		return err
	}
	for _, s := range slots {
		if _, err := p.AssignComponent(s, li); err != nil {
			return err
		}
	}
	return nil
}

// AssignComponentToSlotsByCopy copies src into every slot or into none.
func (p *EntityPool) AssignComponentToSlotsByCopy(slots []uint32, li LocalIndex, src any) error {
	if err := p.checkBatch(slots, li); err != nil {
		return err
	}
	cp := p.components[li]
	if cp.typ.fns.copy == nil {
		return &CapabilityError{Type: cp.typ.name, Capability: CapCopy}
	}
	if src == nil || !cp.typ.fns.accepts(src) {
		return fmt.Errorf("copy into %s from %T: %w", cp.typ.name, src, ErrTypeMismatch)
	}
	for _, s := range slots {
		if _, err := p.AssignComponentByCopy(s, li, src); err != nil {
			return err
		}
	}
	return nil
}

func (p *EntityPool) checkBatch(slots []uint32, li LocalIndex) error {
	seen := make(map[uint32]struct{}, len(slots))
	for _, s := range slots {
		if err := p.checkAssign(s, li); err != nil {
			return err
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("pool %q slot %d: %w", p.name, s, ErrDuplicateEntity)
		}
		seen[s] = struct{}{}
	}
	return nil
}

func (p *EntityPool) RemoveComponent(slot uint32, li LocalIndex) error {
	if int(li) >= len(p.components) {
		return fmt.Errorf("pool %q local index %d: %w", p.name, li, ErrComponentNotRegistered)
	}
	if err := p.liveSlot(slot); err != nil {
		return err
	}
	s := &p.slots[slot]
	if !s.Mask.Has(li) {
		return fmt.Errorf("%s on %s: %w", p.components[li].typ.name, s.ID, ErrComponentNotEnabled)
	}
	if err := p.components[li].Destruct(slot); err != nil {
		return err
	}
	s.Mask.Clear(li)
	return nil
}

// RemoveAllComponents resets an entity to no components without freeing it.
func (p *EntityPool) RemoveAllComponents(slot uint32) error {
	if err := p.liveSlot(slot); err != nil {
		return err
	}
	p.removeAll(slot)
	return nil
}

func (p *EntityPool) removeAll(slot uint32) {
	s := &p.slots[slot]
	for m := s.Mask; m != 0; {
		li := m.First()
		m.Clear(li)
		// slot < capacity always holds for allocated slots.
		_ = p.components[li].Destruct(slot)
	}
	s.Mask = 0
}

// HasComponent reports whether a live slot has li enabled.
func (p *EntityPool) HasComponent(slot uint32, li LocalIndex) bool {
	if p.IsSlotDeleted(slot) {
		return false
	}
	return p.slots[slot].Mask.Has(li)
}

// GetComponent returns the live *T for li. It never returns storage of a
// destroyed entity or a disabled component.
func (p *EntityPool) GetComponent(slot uint32, li LocalIndex) (any, error) {
	if int(li) >= len(p.components) {
		return nil, fmt.Errorf("pool %q local index %d: %w", p.name, li, ErrComponentNotRegistered)
	}
	if err := p.liveSlot(slot); err != nil {
		return nil, err
	}
	if !p.slots[slot].Mask.Has(li) {
		return nil, fmt.Errorf("%s on %s: %w", p.components[li].typ.name, p.slots[slot].ID, ErrComponentNotEnabled)
	}
	return p.components[li].Get(slot)
}

func (p *EntityPool) SerializeComponent(slot uint32, li LocalIndex, node *yaml.Node) error {
	if _, err := p.GetComponent(slot, li); err != nil {
		return err
	}
	return p.components[li].Serialize(slot, node)
}

func (p *EntityPool) LoadComponent(slot uint32, li LocalIndex, node *yaml.Node) error {
	if _, err := p.GetComponent(slot, li); err != nil {
		return err
	}
	return p.components[li].Load(slot, node)
}

// ConvertPoolMaskToEntityMask translates a global mask into local indices.
// Every id in the mask must be registered in this pool.
func (p *EntityPool) ConvertPoolMaskToEntityMask(mask PoolMask) (EntityMask, error) {
	var out EntityMask
	var err error
	mask.Each(func(id ComponentID) {
		if err != nil {
			return
		}
		li := p.local[id]
		if li == InvalidLocalIndex {
			err = fmt.Errorf("pool %q component id %d: %w", p.name, id, ErrComponentNotRegistered)
			return
		}
		out.Set(li)
	})
	return out, err
}

// reverseLookup finds the live entity owning ptr in any of the pool's
// component storages.
func (p *EntityPool) reverseLookup(ptr any) (EntityID, bool) {
	for _, cp := range p.components {
		if slot, ok := cp.ReverseLookup(ptr); ok {
			return p.slots[slot].ID, true
		}
	}
	return InvalidEntityID, false
}
