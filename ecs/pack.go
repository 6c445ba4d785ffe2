package ecs

import (
	"reflect"
	"sort"
)

// TypeID identifies a component type across storages, used to compare the
// type sets two packs cover. Grounded on the teacher's ComponentRegistry,
// which keys storages by reflect.Type.
type TypeID = reflect.Type

// TypeIDOf returns the TypeID for T.
func TypeIDOf[T any]() TypeID {
	var zero T
	return reflect.TypeOf(&zero).Elem()
}

// sortedTypeIDs returns ids sorted for stable, comparable pack membership
// tests (§4.4 step 2: "Collect type_ids, sort them").
func sortedTypeIDs(ids []TypeID) []TypeID {
	out := make([]TypeID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

func sameTypeSet(a, b []TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isSubset reports whether every id in subset also appears in superset.
// Both slices are assumed sorted.
func isSubset(subset, superset []TypeID) bool {
	if len(subset) > len(superset) {
		return false
	}
	j := 0
	for _, id := range subset {
		for j < len(superset) && superset[j] != id {
			j++
		}
		if j == len(superset) {
			return false
		}
		j++
	}
	return true
}

// PackKind classifies how a storage's dense prefix is co-sorted with other
// storages (§3.4).
type PackKind int

const (
	// PackNone means the storage stands alone; dense is insertion-ordered.
	PackNone PackKind = iota
	// PackTight means the first Len elements of every tight-pack member's
	// dense vector contain exactly the same set of entities, in the same
	// order.
	PackTight
	// PackLoose means the TightTypes prefix is co-sorted across the tight
	// members, and the LooseTypes are guaranteed to contain the same
	// entities somewhere in their dense vector, not necessarily at the
	// same index.
	PackLoose
)

// TightPack is the Tight(types, len) variant of §3.4.
type TightPack struct {
	Types []TypeID
	Len   int
}

// isPackable reports whether this tight pack's type set is a subset of
// queryTypes (queryTypes must already be sorted).
func (t *TightPack) isPackable(queryTypes []TypeID) bool {
	return isSubset(t.Types, queryTypes)
}

// LoosePack is the Loose(tight_types, loose_types, len) variant of §3.4.
type LoosePack struct {
	TightTypes []TypeID
	LooseTypes []TypeID
	Len        int
}

func (l *LoosePack) isPackable(queryTypes []TypeID) bool {
	all := append(append([]TypeID{}, l.TightTypes...), l.LooseTypes...)
	all = sortedTypeIDs(all)
	return isSubset(all, queryTypes)
}

// UpdateTracking is the optional triple of §3.4: inserted/modified markers
// live in dense-entry meta bits; Removed and Deleted accumulate entries for
// entities whose component left the set since the last clear.
type UpdateTracking[T any] struct {
	Removed []EntityId
	Deleted []DeletedEntry[T]
}

// DeletedEntry pairs a deleted entity with the component value it owned.
type DeletedEntry[T any] struct {
	Entity    EntityId
	Component T
}

// SharedTable maps an observer entity to the entity it currently shares a
// component from, forming the chain described in §3.5. A fresh link always
// targets an already-existing slot, which statically prevents cycles
// (Design Notes, "Shared chain cycles").
type SharedTable struct {
	targets map[EntityId]EntityId
}

func newSharedTable() *SharedTable {
	return &SharedTable{targets: make(map[EntityId]EntityId)}
}

func (s *SharedTable) set(observer, target EntityId) {
	if target.IsDead() {
		delete(s.targets, observer)
		return
	}
	s.targets[observer] = target
}

func (s *SharedTable) get(observer EntityId) (EntityId, bool) {
	target, ok := s.targets[observer]
	return target, ok
}

// PackMetadata is a SparseSet's pack/update/share bookkeeping (§3.4, §3.5).
type PackMetadata[T any] struct {
	Kind  PackKind
	Tight TightPack
	Loose LoosePack

	Update *UpdateTracking[T]
	Shared *SharedTable

	// ObserverTypes lists the TypeIDs of storages that hold a Loose pack
	// observing this one; a non-empty set blocks Remove/Delete the same
	// way an own Tight/Loose pack does (mirrors the source's
	// metadata.observer_types gate on try_remove/try_delete).
	ObserverTypes []TypeID
}

func newPackMetadata[T any]() *PackMetadata[T] {
	return &PackMetadata[T]{Shared: newSharedTable()}
}

// packLen returns the current pack prefix length, or -1 if PackNone.
func (m *PackMetadata[T]) packLen() int {
	switch m.Kind {
	case PackTight:
		return m.Tight.Len
	case PackLoose:
		return m.Loose.Len
	default:
		return -1
	}
}

func (m *PackMetadata[T]) setPackLen(n int) {
	switch m.Kind {
	case PackTight:
		m.Tight.Len = n
	case PackLoose:
		m.Loose.Len = n
	}
}

func (m *PackMetadata[T]) isPacked() bool {
	return m.Kind != PackNone
}
