package ecs

import "go.uber.org/zap"

// ErasedStorage is the type-erased capability every SparseSet[T] exposes to
// a Registry, so cascading entity deletion doesn't need a type parameter
// per storage (§4.6). Ground: teacher's IComponentStorage
// (component_storage.go), generalized from Entity-keyed removal to the
// pack/share-aware operations a real cascade needs.
type ErasedStorage interface {
	TypeID() TypeID
	// DeleteEntity removes entity's component if present (owned or
	// shared), returning the TypeIDs of any Loose packs observing this
	// storage that now need their tight prefix checked, mirroring the
	// source's storage_to_unpack out-parameter.
	DeleteEntity(entity EntityId) []TypeID
	// Unpack drops entity from this storage's own pack prefix without
	// touching its storage membership, used when the Registry cascades a
	// delete to the storages an observer's DeleteEntity call names.
	Unpack(entity EntityId)
	// Share makes shared observe owned's component in this storage.
	Share(owned, shared EntityId) error
	// Clear empties the storage entirely.
	Clear()
}

// DeleteEntity adapts SparseSet[T]'s typed Remove/Unshare pair to the
// erased contract: a present owned component is removed with actualDelete
// semantics (no pack gate, since cascading deletion must always succeed),
// a present shared link is dropped, and the storage's own ObserverTypes
// are reported back so the caller can rebalance any Loose pack they drive.
func (s *SparseSet[T]) DeleteEntity(entity EntityId) []TypeID {
	sparseEntity := s.sparse.Get(entity.Index())
	switch {
	case sparseEntity.IsOwned() && entity.Gen() >= sparseEntity.Gen():
		s.actualDelete(entity)
		return s.metadata.ObserverTypes
	case sparseEntity.IsShared() && entity.Gen() >= sparseEntity.Index():
		*s.sparse.Allocate(entity.Index()) = DeadId
		s.metadata.Shared.set(entity, DeadId)
	}
	return nil
}

// Registry is the type-erased storage directory described in §4.6: it maps
// a component type to its ErasedStorage capability, letting cascading
// entity deletion and cross-type sharing operate without the caller
// juggling a typed SparseSet[T] per component. It is not the outer world:
// no systems, no scheduling, no borrow tokens — ground: teacher's
// ComponentRegistry plus Design Notes §9's typed-handle registry option.
type Registry struct {
	storages map[TypeID]ErasedStorage
	log      *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		storages: make(map[TypeID]ErasedStorage),
		log:      namedOrNop(cfg.log, "registry"),
	}
}

// Register adds storage under its own TypeID, replacing any prior storage
// registered for that type.
func Register[T any](r *Registry, storage *SparseSet[T]) {
	r.storages[storage.TypeID()] = storage
}

// StorageOf returns the SparseSet[T] registered for T and true, or nil and
// false if none was registered. The type assertion is the comma-ok form, so
// a storage of another type under T's TypeID also yields nil and false
// rather than a panic.
func StorageOf[T any](r *Registry) (*SparseSet[T], bool) {
	erased, ok := r.storages[TypeIDOf[T]()]
	if !ok {
		return nil, false
	}
	storage, ok := erased.(*SparseSet[T])
	return storage, ok
}

// DeleteEntity cascades entity's removal across every registered storage
// (§4.6), ground on original_source's UnknownStorage::delete walking every
// storage; iteration is over a Go map so the visiting order is unspecified,
// which is fine since each storage's own delete is independent of the
// others. For every TypeID a storage's DeleteEntity names as observing it
// through a Loose pack, that storage's Unpack is called so its own tight
// prefix stays coherent (mirrors the source's storage_to_unpack handling).
func (r *Registry) DeleteEntity(entity EntityId) {
	for _, storage := range r.storages {
		for _, observer := range storage.DeleteEntity(entity) {
			if target, ok := r.storages[observer]; ok {
				target.Unpack(entity)
			}
		}
	}
}

// Clear empties every registered storage.
func (r *Registry) Clear() {
	for _, storage := range r.storages {
		storage.Clear()
	}
}

// Len returns the number of component types currently registered.
func (r *Registry) Len() int {
	return len(r.storages)
}
