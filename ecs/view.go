package ecs

// View is the uniform read/mutate surface over a single component storage
// described in §4.3, wrapping a *SparseSet[T] so query and iteration code
// doesn't need to know whether a storage is packed, tracked, or shared.
type View[T any] struct {
	storage *SparseSet[T]
}

// NewView wraps storage for use by queries and iterators.
func NewView[T any](storage *SparseSet[T]) *View[T] {
	return &View[T]{storage: storage}
}

// Len returns the number of components and whether that count is exact: a
// packed prefix's length is exact for the pack's own type set, but an
// unpacked storage's Len is only an upper bound once combined with other
// views in a query (§4.3, §4.4's factored-length heuristic relies on this
// distinction).
func (v *View[T]) Len() (count int, isExact bool) {
	if v.storage.Metadata().isPacked() {
		return v.storage.Metadata().packLen(), true
	}
	return v.storage.Len(), false
}

// Metadata exposes the storage's pack/update/share bookkeeping.
func (v *View[T]) Metadata() *PackMetadata[T] { return v.storage.Metadata() }

// Dense returns the storage's dense entity vector.
func (v *View[T]) Dense() []EntityId { return v.storage.Dense() }

// TypeID returns the component type this view covers.
func (v *View[T]) TypeID() TypeID { return v.storage.TypeID() }

// IntoAbstract erases T-specific typing down to the minimal lookup surface
// a QueryPlanner-driven iterator needs (§4.3).
func (v *View[T]) IntoAbstract() AbstractStorage[T] {
	return AbstractStorage[T]{storage: v.storage}
}

// AbstractStorage is the per-step lookup handle a Tight/Loose/Mixed
// iterator uses to read or write a component once it has already decided,
// via the QueryPlanner, that the row qualifies.
type AbstractStorage[T any] struct {
	storage *SparseSet[T]
}

// Get returns entity's component without marking it modified.
func (a AbstractStorage[T]) Get(entity EntityId) (*T, bool) {
	return a.storage.Get(entity)
}

// GetMut returns entity's component, marking it modified if the storage is
// update-tracked (§4.3's write-back rule).
func (a AbstractStorage[T]) GetMut(entity EntityId) (*T, bool) {
	return a.storage.GetMut(entity)
}

// GetByIndex returns the component at a known dense row with no membership
// test, for use once the driving row has already been classified as a
// match.
func (a AbstractStorage[T]) GetByIndex(index int) *T {
	return a.storage.GetByIndex(index)
}

// markModifiedByIndex applies GetMut's write-back rule to a row reached by
// dense index instead of entity lookup, for tracked mutable iteration over
// a driving/lockstep position (§4.5).
func (a AbstractStorage[T]) markModifiedByIndex(index int) {
	a.storage.markModified(index)
}
