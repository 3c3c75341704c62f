package ecs

// PoolIterator walks the live slots of one EntityPool whose mask contains a
// query mask, in ascending slot order. An iterator that has run past the last
// allocated slot is Done and compares Equal to every other exhausted
// iterator of the same pool, whatever its cursor.
type PoolIterator struct {
	pool  *EntityPool
	index uint32
	mask  EntityMask
}

// Begin positions an iterator on the first slot matching mask. An empty mask
// matches every live entity.
func (p *EntityPool) Begin(mask EntityMask) PoolIterator {
	it := PoolIterator{pool: p, mask: mask}
	it.seek()
	return it
}

// End returns the exhausted iterator for mask.
func (p *EntityPool) End(mask EntityMask) PoolIterator {
	return PoolIterator{pool: p, index: uint32(len(p.slots)), mask: mask}
}

func (it *PoolIterator) matches(i uint32) bool {
	s := &it.pool.slots[i]
	return s.ID.IsValid() && s.Mask.Contains(it.mask)
}

// seek moves forward from the current index to the next match.
func (it *PoolIterator) seek() {
	n := uint32(len(it.pool.slots))
	for it.index < n && !it.matches(it.index) {
		it.index++
	}
}

func (it *PoolIterator) Next() {
	if it.Done() {
		return
	}
	it.index++
	it.seek()
}

// Prev moves to the previous matching slot. It reports false and leaves the
// cursor where it was when there is none.
func (it *PoolIterator) Prev() bool {
	if it.pool == nil {
		return false
	}
	i := min(it.index, uint32(len(it.pool.slots)))
	for i > 0 {
		i--
		if it.matches(i) {
			it.index = i
			return true
		}
	}
	return false
}

// Done reports whether the cursor is one past the last allocated slot.
func (it *PoolIterator) Done() bool {
	return it.pool == nil || it.index >= uint32(len(it.pool.slots))
}

// Equal treats any two exhausted iterators as equal.
func (it *PoolIterator) Equal(o PoolIterator) bool {
	return it.index == o.index || (it.Done() && o.Done())
}

// Valid reports whether the cursor sits on a live matching slot. It turns
// false when the current entity is destroyed under the iterator.
func (it *PoolIterator) Valid() bool {
	return !it.Done() && it.matches(it.index)
}

func (it *PoolIterator) Slot() uint32 { return it.index }

func (it *PoolIterator) Entity() EntityID {
	if it.Done() {
		return InvalidEntityID
	}
	return it.pool.slots[it.index].ID
}

// Component returns the current entity's component at local index li.
func (it *PoolIterator) Component(li LocalIndex) (any, error) {
	return it.pool.GetComponent(it.index, li)
}

func (it *PoolIterator) HasComponent(li LocalIndex) bool {
	return it.pool.HasComponent(it.index, li)
}

// Iterator walks every live entity of every pool whose registered types
// contain a global query mask. Pools are visited in id order and entities in
// slot order inside each pool.
type Iterator struct {
	world *World
	pool  int
	mask  PoolMask
	cur   PoolIterator
}

// Begin positions a cross-pool iterator on the first matching entity.
func (w *World) Begin(mask PoolMask) Iterator {
	it := Iterator{world: w, pool: -1, mask: mask}
	it.enterNext()
	return it
}

// End returns the exhausted cross-pool iterator.
func (w *World) End(mask PoolMask) Iterator {
	return Iterator{world: w, pool: len(w.pools), mask: mask}
}

// enterNext moves to the first matching entity of the next pool that
// registers every type in the mask.
func (it *Iterator) enterNext() {
	for it.pool++; it.pool < len(it.world.pools); it.pool++ {
		if it.enter(it.pool) && !it.cur.Done() {
			return
		}
	}
	it.cur = PoolIterator{}
}

func (it *Iterator) enter(i int) bool {
	p := it.world.pools[i]
	if !p.registered.Contains(it.mask) {
		return false
	}
	// Contains guarantees every id is local to p.
	em, _ := p.ConvertPoolMaskToEntityMask(it.mask)
	it.cur = p.Begin(em)
	return true
}

func (it *Iterator) Next() {
	if it.Done() {
		return
	}
	it.cur.Next()
	if it.cur.Done() {
		it.enterNext()
	}
}

// Prev steps back to the previous matching entity, crossing into earlier
// pools when needed. It reports false when there is none.
func (it *Iterator) Prev() bool {
	if !it.Done() && it.cur.Prev() {
		return true
	}
	for i := min(it.pool, len(it.world.pools)) - 1; i >= 0; i-- {
		saved := it.cur
		if !it.enter(i) {
			continue
		}
		it.cur.index = uint32(len(it.cur.pool.slots))
		if it.cur.Prev() {
			it.pool = i
			return true
		}
		it.cur = saved
	}
	return false
}

// SkipPool abandons the rest of the current pool.
func (it *Iterator) SkipPool() {
	if !it.Done() {
		it.enterNext()
	}
}

// Done reports whether every matching pool has been exhausted.
func (it *Iterator) Done() bool {
	return it.pool >= len(it.world.pools)
}

// Equal compares pool and cursor, except that exhausted iterators are always
// equal.
func (it *Iterator) Equal(o Iterator) bool {
	if it.pool != o.pool {
		return false
	}
	return it.Done() || it.cur.index == o.cur.index
}

func (it *Iterator) PoolID() PoolID {
	if it.Done() {
		return InvalidPoolID
	}
	return PoolID(it.pool)
}

func (it *Iterator) Pool() *EntityPool {
	if it.Done() {
		return nil
	}
	return it.world.pools[it.pool]
}

func (it *Iterator) Slot() uint32     { return it.cur.index }
func (it *Iterator) Entity() EntityID { return it.cur.Entity() }

// Component returns the current entity's component for a global id.
func (it *Iterator) Component(id ComponentID) (any, error) {
	p := it.Pool()
	if p == nil {
		return nil, ErrUnknownPool
	}
	li, ok := p.LocalIndexOf(id)
	if !ok {
		return nil, ErrComponentNotRegistered
	}
	return p.GetComponent(it.cur.index, li)
}

func (it *Iterator) HasComponent(id ComponentID) bool {
	p := it.Pool()
	if p == nil {
		return false
	}
	li, ok := p.LocalIndexOf(id)
	return ok && p.HasComponent(it.cur.index, li)
}
