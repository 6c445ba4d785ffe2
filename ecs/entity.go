package ecs

import "fmt"

// EntityId is a tagged 64-bit identity word: an index, a generation, and a
// handful of meta flags. Packing the role bits into the word itself avoids a
// parallel discriminator array, which would double cache pressure on every
// lookup (Design Notes, "Tagged-word identity").
//
// Layout (low to high bits): index (40 bits) | generation (20 bits) | meta (4 bits).
// The meta bits mean different things depending on where the EntityId is
// stored: in a SparseSet's dense vector they record update-tracking state
// (inserted/modified); in a SparseArray's sparse slot they record the
// slot's role (dead / owned / shared).
type EntityId uint64

const (
	entityIndexBits      = 40
	entityGenerationBits = 20

	entityIndexMask = (uint64(1) << entityIndexBits) - 1
	entityGenMask   = (uint64(1) << entityGenerationBits) - 1

	entityGenShift  = entityIndexBits
	entityMetaShift = entityIndexBits + entityGenerationBits

	metaOwned    = uint64(1) << (entityMetaShift + 0)
	metaShared   = uint64(1) << (entityMetaShift + 1)
	metaInserted = uint64(1) << (entityMetaShift + 2)
	metaModified = uint64(1) << (entityMetaShift + 3)

	metaMask = metaOwned | metaShared | metaInserted | metaModified
)

// DeadId is the sentinel EntityId for unallocated sparse slots and broken
// shared chains: no live entity's sparse payload compares equal to it.
const DeadId EntityId = 0

// NewEntityId builds an EntityId from its index and generation parts, with
// no meta bits set.
func NewEntityId(index, generation uint64) EntityId {
	return EntityId((index & entityIndexMask) | (generation&entityGenMask)<<entityGenShift)
}

// newOwnedAt builds a sparse-slot payload marking `index` as the dense
// position owning generation `gen`'s component.
func newOwnedAt(index uint64, gen uint64) EntityId {
	return NewEntityId(index, gen) | EntityId(metaOwned)
}

// newSharedAt builds a sparse-slot payload marking the slot as shared,
// recording the observer's own generation in the index field (§3.1: "a
// shared entry's index field stores the generation of the entity that
// requested the share").
func newSharedAt(observerGen uint64) EntityId {
	return NewEntityId(observerGen, 0) | EntityId(metaShared)
}

// Index returns the low index field.
func (e EntityId) Index() uint64 {
	return uint64(e) & entityIndexMask
}

// Gen returns the generation field.
func (e EntityId) Gen() uint64 {
	return (uint64(e) >> entityGenShift) & entityGenMask
}

// IsDead reports whether e is the dead sentinel.
func (e EntityId) IsDead() bool {
	return e == DeadId
}

// IsOwned reports whether, as a sparse-slot payload, e denotes an owned
// component at dense index Index().
func (e EntityId) IsOwned() bool {
	return uint64(e)&metaOwned != 0
}

// IsShared reports whether, as a sparse-slot payload, e denotes a shared
// observer whose requesting generation is stored in Index().
func (e EntityId) IsShared() bool {
	return uint64(e)&metaShared != 0
}

// IsInserted reports whether, as a dense entry, e was inserted since the
// last update-tracking clear.
func (e EntityId) IsInserted() bool {
	return uint64(e)&metaInserted != 0
}

// IsModified reports whether, as a dense entry, e was modified since the
// last update-tracking clear.
func (e EntityId) IsModified() bool {
	return uint64(e)&metaModified != 0
}

// SetInserted marks e as inserted (dense-entry use only).
func (e *EntityId) SetInserted() {
	*e = EntityId(uint64(*e) | metaInserted)
}

// SetModified marks e as modified (dense-entry use only).
func (e *EntityId) SetModified() {
	*e = EntityId(uint64(*e) | metaModified)
}

// ClearMeta drops all role/update-tracking bits, leaving index and
// generation untouched.
func (e *EntityId) ClearMeta() {
	*e = EntityId(uint64(*e) &^ metaMask)
}

// SetIndex overwrites the index field in place (used while repacking).
func (e *EntityId) SetIndex(index uint64) {
	*e = EntityId((uint64(*e) &^ entityIndexMask) | (index & entityIndexMask))
}

// CopyIndex copies only the index field from src into e.
func (e *EntityId) CopyIndex(src EntityId) {
	e.SetIndex(src.Index())
}

// CopyGen copies only the generation field from src into e.
func (e *EntityId) CopyGen(src EntityId) {
	*e = EntityId((uint64(*e) &^ (entityGenMask << entityGenShift)) | (src.Gen() << entityGenShift))
}

// CopyIndexGen copies both index and generation fields from src into e,
// leaving e's own meta bits untouched.
func (e *EntityId) CopyIndexGen(src EntityId) {
	e.SetIndex(src.Index())
	e.CopyGen(src)
}

func (e EntityId) String() string {
	if e.IsDead() {
		return "EntityId(dead)"
	}
	return fmt.Sprintf("EntityId(%d.%d)", e.Index(), e.Gen())
}

// EntityIdAllocator creates and recycles EntityIds with monotonically
// increasing per-slot generations (§3.1, §8 property 2: generation
// monotonicity). Grounded on the teacher's EntityManager (entity.go)
// generalized from a 32-bit packed Entity to the 64-bit EntityId; unlike
// the teacher, a recycled slot's generation is bumped rather than reset to
// zero — see DESIGN.md for why the teacher's reset-on-reuse is dropped.
type EntityIdAllocator struct {
	generations []uint64
	freeList    []uint64
}

// NewEntityIdAllocator creates an empty allocator.
func NewEntityIdAllocator() *EntityIdAllocator {
	return &EntityIdAllocator{}
}

// Create allocates a fresh EntityId, recycling a freed slot when available.
func (a *EntityIdAllocator) Create() EntityId {
	if n := len(a.freeList); n > 0 {
		index := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		return NewEntityId(index, a.generations[index])
	}

	index := uint64(len(a.generations))
	a.generations = append(a.generations, 0)
	return NewEntityId(index, 0)
}

// Destroy recycles entity's slot for reuse, bumping the slot's generation.
// Returns false if entity is stale (its generation no longer matches the
// slot's current generation).
func (a *EntityIdAllocator) Destroy(entity EntityId) bool {
	index := entity.Index()
	if index >= uint64(len(a.generations)) {
		return false
	}
	if a.generations[index] != entity.Gen() {
		return false
	}

	a.generations[index] = (a.generations[index] + 1) & entityGenMask
	a.freeList = append(a.freeList, index)
	return true
}

// IsValid reports whether entity's generation matches its slot's current
// generation.
func (a *EntityIdAllocator) IsValid(entity EntityId) bool {
	index := entity.Index()
	if index >= uint64(len(a.generations)) {
		return false
	}
	return a.generations[index] == entity.Gen()
}

// Len returns the number of slots ever allocated (live or recycled).
func (a *EntityIdAllocator) Len() int {
	return len(a.generations)
}

// Clear resets the allocator to empty.
func (a *EntityIdAllocator) Clear() {
	a.generations = a.generations[:0]
	a.freeList = a.freeList[:0]
}
