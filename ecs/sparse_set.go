package ecs

import (
	"fmt"

	"go.uber.org/zap"
)

// OldComponentKind classifies what Insert found at a slot before
// overwriting it (§4.1).
type OldComponentKind int

const (
	// OldNone means the slot held nothing usable: either truly empty, or
	// an entity with a newer generation already exists there.
	OldNone OldComponentKind = iota
	// OldOwned means entity already owned a component here, now replaced.
	OldOwned
	// OldGenOwned means a stale-generation entity at the same index owned
	// a component that was never removed with its entity.
	OldGenOwned
	// OldShared means entity was sharing a component here; the share was
	// broken and replaced with an owned component.
	OldShared
	// OldGenShared is OldShared's stale-generation counterpart.
	OldGenShared
)

// OldComponent is the classified prior state of a slot, returned by
// Insert (§4.1).
type OldComponent[T any] struct {
	Kind  OldComponentKind
	Value T
}

// SparseSet is the per-component-type storage described in §3.3: a paged
// sparse index into parallel dense/data vectors, plus pack and update-
// tracking metadata. Grounded on the teacher's SparseSet (sparse_set.go),
// generalized from an Entity-only set to a generic T-carrying one, with
// pack discipline and sharing lifted from the original source
// (original_source/src/sparse_set/mod.rs).
type SparseSet[T any] struct {
	sparse   *SparseArray
	dense    []EntityId
	data     []T
	metadata *PackMetadata[T]
	typeID   TypeID
	log      *zap.Logger
}

// NewSparseSet creates an empty, unpacked, untracked SparseSet for T.
func NewSparseSet[T any](opts ...Option) *SparseSet[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &SparseSet[T]{
		sparse:   NewSparseArray(),
		metadata: newPackMetadata[T](),
		typeID:   TypeIDOf[T](),
		log:      namedOrNop(cfg.log, "sparseset"),
	}
}

// TypeID returns the TypeID this storage holds components of.
func (s *SparseSet[T]) TypeID() TypeID { return s.typeID }

// Len returns the number of components currently stored.
func (s *SparseSet[T]) Len() int { return len(s.dense) }

// Dense returns the dense entity vector. Callers must not retain it across
// a mutation.
func (s *SparseSet[T]) Dense() []EntityId { return s.dense }

// Metadata returns the storage's pack/update/share bookkeeping.
func (s *SparseSet[T]) Metadata() *PackMetadata[T] { return s.metadata }

// IndexOf returns the dense index of entity's owned component, following
// the shared chain (§3.5) if entity merely observes one. Recursion depth is
// bounded by chain length; cycles cannot occur by construction (Design
// Notes, "Shared chain cycles").
func (s *SparseSet[T]) IndexOf(entity EntityId) (int, bool) {
	if idx, ok := s.IndexOfOwned(entity); ok {
		return idx, true
	}
	sparseEntity := s.sparse.Get(entity.Index())
	if sparseEntity.IsShared() && sparseEntity.Index() == entity.Gen() {
		if target, ok := s.metadata.Shared.get(entity); ok {
			return s.IndexOf(target)
		}
	}
	return 0, false
}

// IndexOfOwned returns the dense index of entity's owned component,
// ignoring any shared chain.
func (s *SparseSet[T]) IndexOfOwned(entity EntityId) (int, bool) {
	sparseEntity := s.sparse.Get(entity.Index())
	if sparseEntity.IsOwned() && sparseEntity.Gen() == entity.Gen() {
		return int(sparseEntity.Index()), true
	}
	return 0, false
}

// Contains reports whether entity owns or shares a component here.
func (s *SparseSet[T]) Contains(entity EntityId) bool {
	_, ok := s.IndexOf(entity)
	return ok
}

// ContainsOwned reports whether entity owns (not merely shares) a component.
func (s *SparseSet[T]) ContainsOwned(entity EntityId) bool {
	_, ok := s.IndexOfOwned(entity)
	return ok
}

// SharedID returns the entity that `shared` currently observes, if any.
func (s *SparseSet[T]) SharedID(shared EntityId) (EntityId, bool) {
	sparseEntity := s.sparse.Get(shared.Index())
	if sparseEntity.IsShared() && sparseEntity.Index() == shared.Gen() {
		return s.metadata.Shared.get(shared)
	}
	return DeadId, false
}

// Get returns entity's component, following shared chains.
func (s *SparseSet[T]) Get(entity EntityId) (*T, bool) {
	idx, ok := s.IndexOf(entity)
	if !ok {
		return nil, false
	}
	return &s.data[idx], true
}

// GetMut returns a mutable handle to entity's component, marking it
// modified if this storage is update-tracked and the slot wasn't already
// inserted this window (§4.3: "on mut access... set it to modified").
func (s *SparseSet[T]) GetMut(entity EntityId) (*T, bool) {
	idx, ok := s.IndexOf(entity)
	if !ok {
		return nil, false
	}
	if s.metadata.Update != nil {
		denseEntity := &s.dense[idx]
		if !denseEntity.IsInserted() {
			denseEntity.SetModified()
		}
	}
	return &s.data[idx], true
}

// GetByIndex returns the component at a known dense index directly, with
// no membership test — used by Tight/Loose iteration (§4.5). A driving or
// lockstep index that falls outside the dense vector means the QueryPlanner
// handed the iterator a stale Plan: an internal invariant violation, not a
// caller error, so it is logged and the process aborts rather than reading
// out of bounds.
func (s *SparseSet[T]) GetByIndex(index int) *T {
	if index < 0 || index >= len(s.data) {
		s.log.Error("dense index out of range",
			zap.String("type", s.typeID.String()),
			zap.Int("index", index),
			zap.Int("len", len(s.data)),
		)
		panic(fmt.Sprintf("ecs: GetByIndex(%d) out of range for %s (len %d)", index, s.typeID, len(s.data)))
	}
	return &s.data[index]
}

// markModified marks the component at dense index idx modified, applying
// the same write-back rule GetMut does (§4.3), but by index rather than by
// entity lookup — used by tracked mutable iteration for the driving/
// lockstep rows that read via GetByIndex (§4.5's "update write-back during
// iteration").
func (s *SparseSet[T]) markModified(index int) {
	if s.metadata.Update == nil {
		return
	}
	denseEntity := &s.dense[index]
	if !denseEntity.IsInserted() {
		denseEntity.SetModified()
	}
}

// Insert adds or overwrites entity's component. See §4.1 for the full
// classification of what was previously at the slot.
func (s *SparseSet[T]) Insert(entity EntityId, value T) OldComponent[T] {
	slot := s.sparse.Allocate(entity.Index())

	switch {
	case slot.IsDead():
		*slot = newOwnedAt(uint64(len(s.dense)), entity.Gen())
		tracked := entity
		tracked.ClearMeta()
		if s.metadata.Update != nil {
			tracked.SetInserted()
		}
		s.dense = append(s.dense, tracked)
		s.data = append(s.data, value)
		return OldComponent[T]{Kind: OldNone}

	case slot.IsOwned():
		if entity.Gen() < slot.Gen() {
			return OldComponent[T]{Kind: OldNone}
		}
		oldData := s.data[slot.Index()]
		s.data[slot.Index()] = value

		kind := OldOwned
		if entity.Gen() != slot.Gen() {
			kind = OldGenOwned
		}
		slot.CopyGen(entity)

		denseEntity := &s.dense[slot.Index()]
		if s.metadata.Update != nil && !denseEntity.IsInserted() {
			denseEntity.SetModified()
		}
		denseEntity.CopyIndexGen(entity)

		return OldComponent[T]{Kind: kind, Value: oldData}

	default: // shared
		if entity.Gen() < slot.Index() {
			return OldComponent[T]{Kind: OldNone}
		}
		kind := OldShared
		if entity.Gen() != slot.Index() {
			kind = OldGenShared
		}
		s.metadata.Shared.set(entity, DeadId)

		*slot = newOwnedAt(uint64(len(s.dense)), entity.Gen())
		tracked := entity
		tracked.ClearMeta()
		if s.metadata.Update != nil {
			tracked.SetInserted()
		}
		s.dense = append(s.dense, tracked)
		s.data = append(s.data, value)

		return OldComponent[T]{Kind: kind}
	}
}

// Remove removes entity's component (§4.1). Fails with
// ErrMissingPackStorage if this storage is Tight/Loose packed or observed
// by a Loose pack: the caller must Unpack first.
func (s *SparseSet[T]) Remove(entity EntityId) (OldComponent[T], error) {
	if len(s.metadata.ObserverTypes) == 0 && s.metadata.Kind == PackNone {
		old := s.actualRemove(entity)
		if update := s.metadata.Update; update != nil {
			if old.Kind == OldOwned {
				update.Removed = append(update.Removed, entity)
			}
		}
		return old, nil
	}
	return OldComponent[T]{}, fmt.Errorf("%w: %s", ErrMissingPackStorage, s.typeID)
}

// Delete removes entity's component and, if update-tracked, records it in
// the deleted buffer instead of returning the value to the caller (§4.1).
func (s *SparseSet[T]) Delete(entity EntityId) error {
	if len(s.metadata.ObserverTypes) != 0 || s.metadata.Kind != PackNone {
		return fmt.Errorf("%w: %s", ErrMissingPackStorage, s.typeID)
	}
	s.actualDelete(entity)
	return nil
}

// actualRemove performs the swap-remove regardless of pack state; it is the
// primitive both Remove and cascading entity deletion (Registry) build on,
// mirroring the source's actual_remove/actual_delete split from its
// try_remove/try_delete gate.
func (s *SparseSet[T]) actualRemove(entity EntityId) OldComponent[T] {
	sparseEntity := s.sparse.Get(entity.Index())

	switch {
	case sparseEntity.IsOwned() && entity.Gen() >= sparseEntity.Gen():
		// unpackIndex patches the victim's sparse slot, so it is cleared after.
		idx := s.unpackIndex(int(sparseEntity.Index()))
		*s.sparse.Allocate(entity.Index()) = DeadId

		component := s.data[idx]
		lastIdx := len(s.dense) - 1
		if idx != lastIdx {
			s.dense[idx] = s.dense[lastIdx]
			s.data[idx] = s.data[lastIdx]
			s.sparse.Allocate(s.dense[idx].Index()).SetIndex(uint64(idx))
		}
		s.dense = s.dense[:lastIdx]
		s.data = s.data[:lastIdx]

		kind := OldOwned
		if entity.Gen() != sparseEntity.Gen() {
			kind = OldGenOwned
		}
		return OldComponent[T]{Kind: kind, Value: component}

	case sparseEntity.IsShared() && entity.Gen() >= sparseEntity.Index():
		*s.sparse.Allocate(entity.Index()) = DeadId
		s.metadata.Shared.set(entity, DeadId)

		kind := OldShared
		if entity.Gen() != sparseEntity.Index() {
			kind = OldGenShared
		}
		return OldComponent[T]{Kind: kind}

	default:
		return OldComponent[T]{Kind: OldNone}
	}
}

// unpackIndex decrements a tight/loose pack's prefix length if the removed
// slot fell inside it, swapping the former prefix boundary into the
// victim's place first (mirror of §4.2's "leaving the pack"). It returns
// the victim's post-swap position, since the swap physically relocates it
// to the old boundary when the pack shrinks.
func (s *SparseSet[T]) unpackIndex(idx int) int {
	n := s.metadata.packLen()
	if n < 0 || idx >= n {
		return idx
	}
	if idx < 0 || n > len(s.dense) {
		s.log.Error("pack prefix desynced from dense vector",
			zap.String("type", s.typeID.String()),
			zap.Int("idx", idx),
			zap.Int("packLen", n),
			zap.Int("denseLen", len(s.dense)),
		)
		panic(fmt.Sprintf("ecs: pack prefix (len %d) desynced from dense vector (len %d) for %s", n, len(s.dense), s.typeID))
	}
	n--
	s.metadata.setPackLen(n)
	s.log.Debug("entity left pack prefix",
		zap.String("type", s.typeID.String()),
		zap.Int("idx", idx),
		zap.Int("newPackLen", n),
	)

	s.dense[idx], s.dense[n] = s.dense[n], s.dense[idx]
	s.data[idx], s.data[n] = s.data[n], s.data[idx]
	s.sparse.Allocate(s.dense[idx].Index()).SetIndex(uint64(idx))
	s.sparse.Allocate(s.dense[n].Index()).SetIndex(uint64(n))
	return n
}

// Unpack removes entity from this storage's pack prefix without touching
// its storage membership otherwise. Unlike unpackIndex (the swap-discipline
// primitive every removal uses internally), this is the operation a
// Registry cascades to the storages listed in another storage's
// DeleteEntity return value (§4.6): those storages observe the deleted
// type through a Loose pack, so their own tight prefix may no longer be
// coherent for entity once the observed type's component is gone. A no-op
// if entity doesn't own a component here, or isn't inside the prefix.
func (s *SparseSet[T]) Unpack(entity EntityId) {
	idx, ok := s.IndexOfOwned(entity)
	if !ok {
		return
	}
	s.unpackIndex(idx)
}

func (s *SparseSet[T]) actualDelete(entity EntityId) {
	old := s.actualRemove(entity)
	if old.Kind == OldOwned {
		if update := s.metadata.Update; update != nil {
			update.Deleted = append(update.Deleted, DeletedEntry[T]{Entity: entity, Component: old.Value})
		}
	}
}

// Clear removes every component from the storage (§6). If update-tracked,
// every removed component is recorded as deleted.
func (s *SparseSet[T]) Clear() {
	for _, id := range s.dense {
		*s.sparse.Allocate(id.Index()) = DeadId
	}
	s.metadata.setPackLen(0)

	if update := s.metadata.Update; update != nil {
		for i, id := range s.dense {
			update.Deleted = append(update.Deleted, DeletedEntry[T]{Entity: id, Component: s.data[i]})
		}
	}

	s.dense = s.dense[:0]
	s.data = s.data[:0]
}

// Reserve pre-allocates capacity for at least additional more components.
func (s *SparseSet[T]) Reserve(additional int) {
	if cap(s.dense)-len(s.dense) < additional {
		grown := make([]EntityId, len(s.dense), len(s.dense)+additional)
		copy(grown, s.dense)
		s.dense = grown
	}
	if cap(s.data)-len(s.data) < additional {
		grown := make([]T, len(s.data), len(s.data)+additional)
		copy(grown, s.data)
		s.data = grown
	}
}

// Share makes `shared` observe `owned`'s component instead of owning one
// itself (§4.1, §3.5). Fails with ErrShare if shared already owns a
// component here. Sharing an entity with itself is a silent no-op.
func (s *SparseSet[T]) Share(owned, shared EntityId) error {
	if owned == shared {
		return nil
	}
	slot := s.sparse.Allocate(shared.Index())
	if slot.IsOwned() && shared.Gen() == slot.Gen() {
		return fmt.Errorf("%w: %s", ErrShare, s.typeID)
	}

	*slot = newSharedAt(shared.Gen())
	// Write the link directly: SharedTable.set treats a DeadId target as
	// "drop the link", and entity id(0,0) has the same bit pattern as DeadId.
	s.metadata.Shared.targets[shared] = owned
	s.log.Debug("share chain formed",
		zap.String("type", s.typeID.String()),
		zap.String("owned", owned.String()),
		zap.String("shared", shared.String()),
	)
	return nil
}

// Unshare makes entity stop observing another entity. Fails with
// ErrUnshare if entity wasn't sharing; unsharing twice is idempotent (the
// second call just returns the error, per §7).
func (s *SparseSet[T]) Unshare(entity EntityId) error {
	sparseEntity := s.sparse.Get(entity.Index())
	if !(sparseEntity.IsShared() && sparseEntity.Index() == entity.Gen()) {
		return fmt.Errorf("%w: %s", ErrUnshare, s.typeID)
	}
	*s.sparse.Allocate(entity.Index()) = DeadId
	s.metadata.Shared.set(entity, DeadId)
	s.log.Debug("share chain broken",
		zap.String("type", s.typeID.String()),
		zap.String("entity", entity.String()),
	)
	return nil
}

// UpdatePack turns on insert/modify/remove/delete tracking. A no-op if
// already tracked.
func (s *SparseSet[T]) UpdatePack() {
	if s.metadata.Update == nil {
		s.metadata.Update = &UpdateTracking[T]{}
	}
}

// TryRemoved returns the ids of removed components since the last clear.
func (s *SparseSet[T]) TryRemoved() ([]EntityId, error) {
	if s.metadata.Update == nil {
		return nil, ErrNotUpdatePack
	}
	return s.metadata.Update.Removed, nil
}

// TryDeleted returns the deleted (entity, component) pairs since the last
// clear.
func (s *SparseSet[T]) TryDeleted() ([]DeletedEntry[T], error) {
	if s.metadata.Update == nil {
		return nil, ErrNotUpdatePack
	}
	return s.metadata.Update.Deleted, nil
}

// TryTakeRemoved takes ownership of the removed buffer, leaving an empty
// one of the same capacity in its place.
func (s *SparseSet[T]) TryTakeRemoved() ([]EntityId, error) {
	if s.metadata.Update == nil {
		return nil, ErrNotUpdatePack
	}
	taken := s.metadata.Update.Removed
	s.metadata.Update.Removed = make([]EntityId, 0, cap(taken))
	return taken, nil
}

// TryTakeDeleted takes ownership of the deleted buffer, leaving an empty
// one of the same capacity in its place.
func (s *SparseSet[T]) TryTakeDeleted() ([]DeletedEntry[T], error) {
	if s.metadata.Update == nil {
		return nil, ErrNotUpdatePack
	}
	taken := s.metadata.Update.Deleted
	s.metadata.Update.Deleted = make([]DeletedEntry[T], 0, cap(taken))
	return taken, nil
}

// TryClearInserted moves every inserted component to the neutral state.
func (s *SparseSet[T]) TryClearInserted() error {
	if s.metadata.Update == nil {
		return ErrNotUpdatePack
	}
	for i := range s.dense {
		if s.dense[i].IsInserted() {
			s.dense[i].ClearMeta()
		}
	}
	return nil
}

// TryClearModified moves every modified component to the neutral state.
func (s *SparseSet[T]) TryClearModified() error {
	if s.metadata.Update == nil {
		return ErrNotUpdatePack
	}
	for i := range s.dense {
		if s.dense[i].IsModified() {
			s.dense[i].ClearMeta()
		}
	}
	return nil
}

// TryClearInsertedAndModified moves every inserted or modified component to
// the neutral state.
func (s *SparseSet[T]) TryClearInsertedAndModified() error {
	if s.metadata.Update == nil {
		return ErrNotUpdatePack
	}
	for i := range s.dense {
		s.dense[i].ClearMeta()
	}
	return nil
}

// Apply calls f(a's component, b's component), marking a modified if
// tracked. a and b must resolve to different slots.
func (s *SparseSet[T]) Apply(a, b EntityId, f func(a *T, b *T)) error {
	aIdx, ok := s.IndexOf(a)
	if !ok {
		return fmt.Errorf("%w: %s", ErrApplyMissingComponent, a)
	}
	bIdx, ok := s.IndexOf(b)
	if !ok {
		return fmt.Errorf("%w: %s", ErrApplyMissingComponent, b)
	}
	if aIdx == bIdx {
		return ErrApplyIdenticalIds
	}

	if s.metadata.Update != nil {
		if d := &s.dense[aIdx]; !d.IsInserted() {
			d.SetModified()
		}
	}

	f(&s.data[aIdx], &s.data[bIdx])
	return nil
}

// ApplyMut is Apply with both operands mutable.
func (s *SparseSet[T]) ApplyMut(a, b EntityId, f func(a, b *T)) error {
	aIdx, ok := s.IndexOf(a)
	if !ok {
		return fmt.Errorf("%w: %s", ErrApplyMissingComponent, a)
	}
	bIdx, ok := s.IndexOf(b)
	if !ok {
		return fmt.Errorf("%w: %s", ErrApplyMissingComponent, b)
	}
	if aIdx == bIdx {
		return ErrApplyIdenticalIds
	}

	if s.metadata.Update != nil {
		if d := &s.dense[aIdx]; !d.IsInserted() {
			d.SetModified()
		}
		if d := &s.dense[bIdx]; !d.IsInserted() {
			d.SetModified()
		}
	}

	f(&s.data[aIdx], &s.data[bIdx])
	return nil
}
