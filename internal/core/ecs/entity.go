package ecs

import "fmt"

// EntityID packs a 24-bit slot index, a 12-bit pool id and a 28-bit version
// into 64 bits: index<<40 | pool<<28 | version.
type EntityID uint64

// PoolID identifies an EntityPool inside a World.
type PoolID uint16

const (
	indexBits   = 24
	poolBits    = 12
	versionBits = 28

	indexShift = poolBits + versionBits
	poolShift  = versionBits

	// InvalidEntityIndex marks a free slot. Indices run 0..InvalidEntityIndex-1.
	InvalidEntityIndex uint32 = 1<<indexBits - 1
	// InvalidPoolID is never handed out by a World.
	InvalidPoolID PoolID = 1<<poolBits - 1
	// InvalidEntityVersion is reserved; a slot whose next version would reach
	// it is retired instead.
	InvalidEntityVersion uint32 = 1<<versionBits - 1

	// MaxEntitiesPerPool is the largest capacity an EntityPool accepts.
	MaxEntitiesPerPool = int(InvalidEntityIndex)
	// MaxPools is the number of pools a single World can own.
	MaxPools = int(InvalidPoolID)
)

// InvalidEntityID is returned by lookups that find nothing.
const InvalidEntityID = EntityID(uint64(InvalidEntityIndex)<<indexShift |
	uint64(InvalidPoolID)<<poolShift |
	uint64(InvalidEntityVersion))

func NewEntityID(index uint32, pool PoolID, version uint32) EntityID {
	return EntityID(uint64(index&InvalidEntityIndex)<<indexShift |
		uint64(uint16(pool)&uint16(InvalidPoolID))<<poolShift |
		uint64(version&InvalidEntityVersion))
}

func (id EntityID) Index() uint32   { return uint32(id >> indexShift) }
func (id EntityID) Pool() PoolID    { return PoolID(uint16(id>>poolShift) & uint16(InvalidPoolID)) }
func (id EntityID) Version() uint32 { return uint32(id) & InvalidEntityVersion }

// IsValid reports whether the index field holds a real slot index. A valid
// id can still be stale; only the owning pool can tell.
func (id EntityID) IsValid() bool { return id.Index() != InvalidEntityIndex }

// withIndex returns id with its index field replaced, keeping pool and version.
func (id EntityID) withIndex(index uint32) EntityID {
	return NewEntityID(index, id.Pool(), id.Version())
}

func (id EntityID) String() string {
	if id == InvalidEntityID {
		return "entity(invalid)"
	}
	if !id.IsValid() {
		return fmt.Sprintf("entity(free pool=%d v=%d)", id.Pool(), id.Version())
	}
	return fmt.Sprintf("entity(%d pool=%d v=%d)", id.Index(), id.Pool(), id.Version())
}
