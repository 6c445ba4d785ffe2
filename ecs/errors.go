package ecs

import "errors"

// Sentinel error kinds (§7). Each is recoverable the way the table in
// spec.md describes; callers match them with errors.Is. Grounded on the
// corpus's dominant idiom of package-level sentinel errors wrapped with
// fmt.Errorf("%w: ...") for context (ground: edirooss-zmux-server's
// ErrChannelNotFound style).
var (
	// ErrMissingPackStorage is returned by Remove/Delete on a storage that
	// is Tight- or Loose-packed (or observed by a Loose pack): the caller
	// must Unpack first.
	ErrMissingPackStorage = errors.New("ecs: remove/delete not allowed on a packed storage")

	// ErrNotUpdatePack is returned by update-tracking queries on a storage
	// that never called UpdatePack.
	ErrNotUpdatePack = errors.New("ecs: storage is not update-tracked")

	// ErrShare is returned by Share when the observer already owns a
	// component of this type.
	ErrShare = errors.New("ecs: observer already owns a component of this type")

	// ErrUnshare is returned by Unshare on a slot that isn't shared.
	ErrUnshare = errors.New("ecs: entity is not sharing a component of this type")

	// ErrApplyMissingComponent is returned by Apply/ApplyMut when an
	// operand entity has no component in the storage.
	ErrApplyMissingComponent = errors.New("ecs: apply operand has no component")

	// ErrApplyIdenticalIds is returned by Apply/ApplyMut when both operand
	// entities resolve to the same storage slot.
	ErrApplyIdenticalIds = errors.New("ecs: apply operands alias the same component")

	// ErrGetStorage surfaces a view-acquisition failure propagated verbatim
	// from the (unspecified) outer runtime's borrow registry.
	ErrGetStorage = errors.New("ecs: storage view could not be acquired")
)
