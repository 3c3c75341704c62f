package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// World is the top-level ECS container. It owns every EntityPool, assigns
// global component ids, dispatches update and render across pools, and keeps
// a deferred destruction queue flushed by CleanupSystem each tick.
type World struct {
	registry     *Registry
	pools        []*EntityPool
	byName       map[string]PoolID
	destroyQueue []EntityID

	log      *zap.Logger
	schema   SchemaWriter
	observer Observer
	maxPools int

	// renderSkips remembers (pool, component) pairs already logged as
	// unrenderable.
	renderSkips map[renderSkip]struct{}
}

type renderSkip struct {
	pool PoolID
	id   ComponentID
}

// Option configures a World.
type Option func(*World)

func WithLogger(log *zap.Logger) Option {
	return func(w *World) { w.log = log }
}

// WithSchemaWriter sets where pool schemas are recorded on creation.
func WithSchemaWriter(s SchemaWriter) Option {
	return func(w *World) { w.schema = s }
}

func WithObserver(o Observer) Option {
	return func(w *World) { w.observer = o }
}

// WithPoolLimit lowers the number of pools the World accepts. Values outside
// 1..MaxPools are ignored.
func WithPoolLimit(n int) Option {
	return func(w *World) {
		if n > 0 && n <= MaxPools {
			w.maxPools = n
		}
	}
}

func NewWorld(opts ...Option) *World {
	w := &World{
		registry:     NewRegistry(),
		pools:        make([]*EntityPool, 0, 8),
		byName:       make(map[string]PoolID, 8),
		destroyQueue: make([]EntityID, 0, 64),
		log:          zap.NewNop(),
		observer:     nopObserver{},
		maxPools:     MaxPools,
		renderSkips:  make(map[renderSkip]struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *World) Registry() *Registry { return w.registry }
func (w *World) PoolCount() int      { return len(w.pools) }

// ── Pools ───────────────────────────────────────────────────────────

// CreateEntityPool creates a pool of the given capacity registering types in
// order, so types[i] gets local index i. Every precondition is checked before
// any id is assigned.
func (w *World) CreateEntityPool(name string, capacity int, types ...*ComponentType) (PoolID, error) {
	if err := w.checkPool(name, capacity, types); err != nil {
		return InvalidPoolID, err
	}

	globals := make([]ComponentID, len(types))
	for i, t := range types {
		id, err := w.registry.Register(t)
		if err != nil {
			return InvalidPoolID, fmt.Errorf("create pool %q: %w", name, err)
		}
		globals[i] = id
	}

	id := PoolID(len(w.pools))
	p := newEntityPool(id, name, uint32(capacity), types, globals)
	if w.schema != nil {
		if err := w.schema.WritePoolSchema(p.schema()); err != nil {
			return InvalidPoolID, fmt.Errorf("create pool %q: write schema: %w", name, err)
		}
	}
	w.pools = append(w.pools, p)
	w.byName[name] = id

	w.log.Info("entity pool created",
		zap.String("pool", name),
		zap.Uint16("id", uint16(id)),
		zap.Int("capacity", capacity),
		zap.Int("components", len(types)),
	)
	w.observer.PoolCreated(id, name)
	return id, nil
}

func (w *World) checkPool(name string, capacity int, types []*ComponentType) error {
	if len(types) == 0 {
		return fmt.Errorf("create pool %q: %w", name, ErrNoComponents)
	}
	if capacity <= 0 || capacity > MaxEntitiesPerPool {
		return fmt.Errorf("create pool %q capacity %d: %w", name, capacity, ErrInvalidCapacity)
	}
	if len(types) > MaxComponentsPerPool {
		return fmt.Errorf("create pool %q with %d types: %w", name, len(types), ErrTooManyComponents)
	}
	if len(w.pools) >= w.maxPools {
		return fmt.Errorf("create pool %q: %w", name, ErrTooManyPools)
	}
	if _, taken := w.byName[name]; taken {
		return fmt.Errorf("create pool %q: %w", name, ErrDuplicatePool)
	}

	seen := make(map[reflect.Type]struct{}, len(types))
	fresh := 0
	var transforms []string
	for _, t := range types {
		if t == nil {
			return fmt.Errorf("create pool %q: nil component type: %w", name, ErrTypeMismatch)
		}
		if _, dup := seen[t.rtype]; dup {
			return fmt.Errorf("create pool %q: %s: %w", name, t.name, ErrDuplicateComponent)
		}
		seen[t.rtype] = struct{}{}
		if _, ok := w.registry.Lookup(t); !ok {
			fresh++
		}
		if t.Has(CapTransform) {
			transforms = append(transforms, t.name)
		}
	}
	if len(transforms) > 1 {
		return fmt.Errorf("create pool %q: %v: %w", name, transforms, ErrAmbiguousTransform)
	}
	if w.registry.Count()+fresh > MaxComponentTypes {
		return fmt.Errorf("create pool %q: %w", name, ErrTooManyComponents)
	}
	return nil
}

func (w *World) EntityPool(id PoolID) (*EntityPool, error) {
	if int(id) >= len(w.pools) {
		return nil, fmt.Errorf("pool %d: %w", id, ErrUnknownPool)
	}
	return w.pools[id], nil
}

func (w *World) PoolByName(name string) (*EntityPool, bool) {
	id, ok := w.byName[name]
	if !ok {
		return nil, false
	}
	return w.pools[id], true
}

// Pools yields every pool in id order.
func (w *World) Pools() iter.Seq[*EntityPool] {
	return func(yield func(*EntityPool) bool) {
		for _, p := range w.pools {
			if !yield(p) {
				return
			}
		}
	}
}

// PoolSchema returns the layout record written when the pool was created.
func (w *World) PoolSchema(id PoolID) (PoolSchema, error) {
	p, err := w.EntityPool(id)
	if err != nil {
		return PoolSchema{}, err
	}
	return p.schema(), nil
}

// ComponentID returns the global id assigned to t, if any pool uses it.
func (w *World) ComponentID(t *ComponentType) (ComponentID, bool) {
	return w.registry.Lookup(t)
}

// Mask builds a query mask from registered types.
func (w *World) Mask(types ...*ComponentType) (PoolMask, error) {
	var m PoolMask
	for _, t := range types {
		id, ok := w.registry.Lookup(t)
		if !ok {
			return PoolMask{}, fmt.Errorf("mask %s: %w", typeName(t), ErrComponentNotRegistered)
		}
		m.Set(id)
	}
	return m, nil
}

// Registered is the union of every pool's component types. Types known to
// the registry but used by no pool are absent.
func (w *World) Registered() PoolMask {
	var m PoolMask
	for _, p := range w.pools {
		m = m.Or(p.registered)
	}
	return m
}

func typeName(t *ComponentType) string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// poolOf returns the pool an entity id claims to belong to.
func (w *World) poolOf(id EntityID) (*EntityPool, error) {
	if int(id.Pool()) >= len(w.pools) {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownPool)
	}
	return w.pools[id.Pool()], nil
}

// locate resolves an entity and a component type to pool, slot and local
// index.
func (w *World) locate(id EntityID, t *ComponentType) (*EntityPool, uint32, LocalIndex, error) {
	p, err := w.poolOf(id)
	if err != nil {
		return nil, 0, 0, err
	}
	slot, err := p.resolve(id)
	if err != nil {
		return nil, 0, 0, err
	}
	li, err := w.localIndex(p, t)
	if err != nil {
		return nil, 0, 0, err
	}
	return p, slot, li, nil
}

func (w *World) localIndex(p *EntityPool, t *ComponentType) (LocalIndex, error) {
	gid, ok := w.registry.Lookup(t)
	if !ok {
		return InvalidLocalIndex, fmt.Errorf("%s in pool %q: %w", typeName(t), p.name, ErrComponentNotRegistered)
	}
	li, ok := p.LocalIndexOf(gid)
	if !ok {
		return InvalidLocalIndex, fmt.Errorf("%s in pool %q: %w", t.name, p.name, ErrComponentNotRegistered)
	}
	return li, nil
}

// ── Entities ────────────────────────────────────────────────────────

func (w *World) CreateEntity(pool PoolID) (EntityID, error) {
	p, err := w.EntityPool(pool)
	if err != nil {
		return InvalidEntityID, err
	}
	id, err := p.CreateEntity()
	if err != nil {
		return InvalidEntityID, err
	}
	w.observer.EntityCreated(id)
	return id, nil
}

// CreateEntities creates up to n entities. When the pool runs out of room the
// ids created so far are returned together with ErrPoolFull.
func (w *World) CreateEntities(pool PoolID, n int) ([]EntityID, error) {
	p, err := w.EntityPool(pool)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	ids := make([]EntityID, n)
	got, err := p.CreateEntities(ids)
	ids = ids[:got]
	for _, id := range ids {
		w.observer.EntityCreated(id)
	}
	return ids, err
}

// CreateEntityWithComponents creates an entity with every type in types
// default-constructed. Nothing is created when a type is not registered in
// the pool.
func (w *World) CreateEntityWithComponents(pool PoolID, types ...*ComponentType) (EntityID, error) {
	p, err := w.EntityPool(pool)
	if err != nil {
		return InvalidEntityID, err
	}
	locals := make([]LocalIndex, len(types))
	var mask EntityMask
	for i, t := range types {
		li, err := w.localIndex(p, t)
		if err != nil {
			return InvalidEntityID, err
		}
		if mask.Has(li) {
			return InvalidEntityID, fmt.Errorf("%s: %w", t.name, ErrDuplicateComponent)
		}
		mask.Set(li)
		locals[i] = li
	}
	id, err := p.CreateEntity()
	if err != nil {
		return InvalidEntityID, err
	}
	for _, li := range locals {
		if _, err := p.AssignComponent(id.Index(), li); err != nil {
			_ = p.destroySlot(id.Index())
			return InvalidEntityID, err
		}
	}
	w.observer.EntityCreated(id)
	return id, nil
}

// IsEntityDeleted reports whether id no longer names a live entity.
func (w *World) IsEntityDeleted(id EntityID) bool {
	p, err := w.poolOf(id)
	if err != nil {
		return true
	}
	return p.IsEntityDeleted(id)
}

// DestroyEntity destructs every component of id and frees its slot. A slot
// that ran out of versions is still destroyed but reports ErrVersionExhausted.
func (w *World) DestroyEntity(id EntityID) error {
	p, err := w.poolOf(id)
	if err != nil {
		return err
	}
	slot, err := p.resolve(id)
	if err != nil {
		return err
	}
	err = p.destroySlot(slot)
	w.destroyed(id, err)
	return err
}

// destroyed reports a completed destroy, which may carry ErrVersionExhausted.
func (w *World) destroyed(id EntityID, err error) {
	if err != nil {
		w.log.Warn("entity slot retired", zap.Stringer("entity", id), zap.Error(err))
	}
	w.observer.EntityDestroyed(id)
}

// DestroyEntities destroys all ids or none of them.
func (w *World) DestroyEntities(ids []EntityID) error {
	type target struct {
		pool *EntityPool
		slot uint32
	}
	targets := make([]target, len(ids))
	seen := make(map[EntityID]struct{}, len(ids))
	for i, id := range ids {
		p, err := w.poolOf(id)
		if err != nil {
			return err
		}
		slot, err := p.resolve(id)
		if err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%s: %w", id, ErrDuplicateEntity)
		}
		seen[id] = struct{}{}
		targets[i] = target{p, slot}
	}
	var errs error
	for i, t := range targets {
		err := t.pool.destroySlot(t.slot)
		w.destroyed(ids[i], err)
		errs = multierr.Append(errs, err)
	}
	return errs
}

// DestroyAllEntities empties one pool.
func (w *World) DestroyAllEntities(pool PoolID) error {
	p, err := w.EntityPool(pool)
	if err != nil {
		return err
	}
	var errs error
	for it := p.Begin(0); !it.Done(); it.Next() {
		id := it.Entity()
		err := p.destroySlot(it.Slot())
		w.destroyed(id, err)
		errs = multierr.Append(errs, err)
	}
	return errs
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// PendingDestruction is the number of queued entities.
func (w *World) PendingDestruction() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued entities. Entities already gone by
// the time the queue is flushed are skipped.
// Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() error {
	var errs error
	for _, id := range w.destroyQueue {
		if w.IsEntityDeleted(id) {
			continue
		}
		errs = multierr.Append(errs, w.DestroyEntity(id))
	}
	w.destroyQueue = w.destroyQueue[:0]
	return errs
}

// Entities yields every live entity of every pool matching mask.
func (w *World) Entities(mask PoolMask) iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		for it := w.Begin(mask); !it.Done(); it.Next() {
			if !yield(it.Entity()) {
				return
			}
		}
	}
}

// ── Components ──────────────────────────────────────────────────────

// AssignComponent default-constructs a t on id and returns the *T.
func (w *World) AssignComponent(id EntityID, t *ComponentType) (any, error) {
	p, slot, li, err := w.locate(id, t)
	if err != nil {
		return nil, err
	}
	return p.AssignComponent(slot, li)
}

// AssignComponentByCopy copy-constructs a t on id from src, a *T.
func (w *World) AssignComponentByCopy(id EntityID, t *ComponentType, src any) (any, error) {
	p, slot, li, err := w.locate(id, t)
	if err != nil {
		return nil, err
	}
	return p.AssignComponentByCopy(slot, li, src)
}

type batchTarget struct {
	pool  *EntityPool
	slots []uint32
	li    LocalIndex
}

// batch groups ids by pool and validates an assignment of t to each of
// them. It mutates nothing.
func (w *World) batch(ids []EntityID, t *ComponentType) ([]batchTarget, error) {
	var out []batchTarget
	index := make(map[PoolID]int)
	for _, id := range ids {
		p, slot, li, err := w.locate(id, t)
		if err != nil {
			return nil, err
		}
		i, ok := index[p.id]
		if !ok {
			i = len(out)
			index[p.id] = i
			out = append(out, batchTarget{pool: p, li: li})
		}
		out[i].slots = append(out[i].slots, slot)
	}
	for _, b := range out {
		if err := b.pool.checkBatch(b.slots, b.li); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AssignComponentToEntities assigns t to every id or to none.
func (w *World) AssignComponentToEntities(ids []EntityID, t *ComponentType) error {
	targets, err := w.batch(ids, t)
	if err != nil {
		return err
	}
	for _, b := range targets {
		if err := b.pool.AssignComponentToSlots(b.slots, b.li); err != nil {
			return err
		}
	}
	return nil
}

// AssignComponentToEntitiesByCopy copies src into every id or into none.
func (w *World) AssignComponentToEntitiesByCopy(ids []EntityID, t *ComponentType, src any) error {
	targets, err := w.batch(ids, t)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}
	if !t.Has(CapCopy) {
		return &CapabilityError{Type: t.name, Capability: CapCopy}
	}
	if src == nil || !t.fns.accepts(src) {
		return fmt.Errorf("copy into %s from %T: %w", t.name, src, ErrTypeMismatch)
	}
	for _, b := range targets {
		if err := b.pool.AssignComponentToSlotsByCopy(b.slots, b.li, src); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) RemoveComponent(id EntityID, t *ComponentType) error {
	p, slot, li, err := w.locate(id, t)
	if err != nil {
		return err
	}
	return p.RemoveComponent(slot, li)
}

func (w *World) RemoveAllComponents(id EntityID) error {
	p, err := w.poolOf(id)
	if err != nil {
		return err
	}
	slot, err := p.resolve(id)
	if err != nil {
		return err
	}
	return p.RemoveAllComponents(slot)
}

// GetComponent returns the live *T of id, never storage of a destroyed entity
// or a removed component.
func (w *World) GetComponent(id EntityID, t *ComponentType) (any, error) {
	p, slot, li, err := w.locate(id, t)
	if err != nil {
		return nil, err
	}
	return p.GetComponent(slot, li)
}

func (w *World) HasComponent(id EntityID, t *ComponentType) bool {
	p, slot, li, err := w.locate(id, t)
	if err != nil {
		return false
	}
	return p.HasComponent(slot, li)
}

// ── Dispatch ────────────────────────────────────────────────────────

// UpdateComponents calls Update on every enabled update-capable component of
// every live entity, one component type at a time in id order.
func (w *World) UpdateComponents(dt time.Duration) {
	w.registry.update.And(w.Registered()).Each(func(gid ComponentID) {
		var mask PoolMask
		mask.Set(gid)

		cached := InvalidPoolID
		var cp *ComponentPool
		for it := w.Begin(mask); !it.Done(); it.Next() {
			if pid := it.PoolID(); pid != cached {
				li, _ := it.Pool().LocalIndexOf(gid)
				cp = it.Pool().components[li]
				cached = pid
			}
			if err := cp.Update(it.Slot(), dt); err != nil {
				w.log.Error("component update failed", zap.Stringer("entity", it.Entity()), zap.Error(err))
			}
		}
	})
}

// RenderEntities calls Render on every enabled render-capable component,
// passing the entity's transform. Pools without a transform type are skipped,
// as are entities whose transform is not enabled.
func (w *World) RenderEntities() {
	w.registry.render.And(w.Registered()).Each(func(gid ComponentID) {
		var mask PoolMask
		mask.Set(gid)

		cached := InvalidPoolID
		var cp, tp *ComponentPool
		var tli LocalIndex
		it := w.Begin(mask)
		for !it.Done() {
			p := it.Pool()
			if pid := it.PoolID(); pid != cached {
				var ok bool
				tli, ok = p.TransformIndex()
				if !ok {
					w.logRenderSkip(p, gid)
					it.SkipPool()
					continue
				}
				li, _ := p.LocalIndexOf(gid)
				cp = p.components[li]
				tp = p.components[tli]
				cached = pid
			}
			if p.slots[it.Slot()].Mask.Has(tli) {
				tr, _ := tp.Get(it.Slot())
				if err := cp.Render(it.Slot(), tr); err != nil {
					w.log.Error("component render failed", zap.Stringer("entity", it.Entity()), zap.Error(err))
				}
			}
			it.Next()
		}
	})
}

func (w *World) logRenderSkip(p *EntityPool, gid ComponentID) {
	key := renderSkip{p.id, gid}
	if _, done := w.renderSkips[key]; done {
		return
	}
	w.renderSkips[key] = struct{}{}
	t, _ := w.registry.Type(gid)
	w.log.Debug("pool has no transform, skipping render",
		zap.String("pool", p.name),
		zap.String("component", typeName(t)),
	)
}

// ── Lookup and serialization ────────────────────────────────────────

// FindComponentOwnerEntity returns the live entity owning the component ptr
// points at, or InvalidEntityID.
func (w *World) FindComponentOwnerEntity(ptr any) EntityID {
	if ptr == nil {
		return InvalidEntityID
	}
	for _, p := range w.pools {
		if id, ok := p.reverseLookup(ptr); ok {
			return id
		}
	}
	return InvalidEntityID
}

// SerializedComponent is one component's fields written to a document node.
type SerializedComponent struct {
	Type  string
	Index LocalIndex
	Node  *yaml.Node
}

// SerializeEntity writes every enabled serializable component of id. Failed
// components are left out and their errors combined; the rest are returned.
func (w *World) SerializeEntity(id EntityID) ([]SerializedComponent, error) {
	p, err := w.poolOf(id)
	if err != nil {
		return nil, err
	}
	slot, err := p.resolve(id)
	if err != nil {
		return nil, err
	}
	var out []SerializedComponent
	var errs error
	for m := p.slots[slot].Mask; m != 0; {
		li := m.First()
		m.Clear(li)
		cp := p.components[li]
		if !cp.typ.Has(CapSerialize) {
			continue
		}
		node := &yaml.Node{}
		if err := cp.Serialize(slot, node); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, SerializedComponent{Type: cp.typ.name, Index: li, Node: node})
	}
	return out, errs
}

// LoadComponent reads the fields of an enabled component of id from node.
func (w *World) LoadComponent(id EntityID, t *ComponentType, node *yaml.Node) error {
	p, slot, li, err := w.locate(id, t)
	if err != nil {
		return err
	}
	return p.LoadComponent(slot, li, node)
}
