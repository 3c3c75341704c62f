package ecs

import "math/bits"

// ComponentID is the World-wide id of a component type, assigned on first use.
type ComponentID uint8

// LocalIndex is the position of a component type inside one EntityPool.
type LocalIndex uint8

const (
	// MaxComponentTypes is the number of distinct component types a World can
	// register. Id 255 is reserved.
	MaxComponentTypes = 255
	// MaxComponentsPerPool bounds the per-entity mask to a single word.
	MaxComponentsPerPool = 64

	InvalidComponentID ComponentID = 255
	InvalidLocalIndex  LocalIndex  = 255
)

// PoolMask is a set of global component ids. It describes which types a pool
// registers and which types a cross-pool query requires.
type PoolMask [4]uint64

func (m *PoolMask) Set(id ComponentID) {
	m[id>>6] |= 1 << (id & 63)
}

func (m *PoolMask) Clear(id ComponentID) {
	m[id>>6] &^= 1 << (id & 63)
}

func (m PoolMask) Has(id ComponentID) bool {
	return m[id>>6]&(1<<(id&63)) != 0
}

// Contains reports whether every id in sub is also in m.
func (m PoolMask) Contains(sub PoolMask) bool {
	return m.And(sub) == sub
}

func (m PoolMask) And(o PoolMask) PoolMask {
	return PoolMask{m[0] & o[0], m[1] & o[1], m[2] & o[2], m[3] & o[3]}
}

func (m PoolMask) Or(o PoolMask) PoolMask {
	return PoolMask{m[0] | o[0], m[1] | o[1], m[2] | o[2], m[3] | o[3]}
}

func (m PoolMask) IsEmpty() bool {
	return m[0]|m[1]|m[2]|m[3] == 0
}

func (m PoolMask) Count() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) + bits.OnesCount64(m[3])
}

// Each calls fn for every id in ascending order.
func (m PoolMask) Each(fn func(ComponentID)) {
	for word, w := range m {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			fn(ComponentID(word<<6 + bit))
			w &= w - 1
		}
	}
}

// EntityMask is the per-entity set of enabled local indices.
type EntityMask uint64

func (m *EntityMask) Set(i LocalIndex)   { *m |= 1 << i }
func (m *EntityMask) Clear(i LocalIndex) { *m &^= 1 << i }

func (m EntityMask) Has(i LocalIndex) bool {
	return i < MaxComponentsPerPool && m&(1<<i) != 0
}

func (m EntityMask) Contains(sub EntityMask) bool { return m&sub == sub }

func (m EntityMask) IsEmpty() bool { return m == 0 }

// First returns the lowest set index, or InvalidLocalIndex for an empty mask.
func (m EntityMask) First() LocalIndex {
	if m == 0 {
		return InvalidLocalIndex
	}
	return LocalIndex(bits.TrailingZeros64(uint64(m)))
}
