package ecs

import "testing"

func TestRegistryDeleteEntityCascades(t *testing.T) {
	r := NewRegistry()
	positions := NewSparseSet[position]()
	healths := NewSparseSet[health]()
	Register(r, positions)
	Register(r, healths)

	alloc := NewEntityIdAllocator()
	e := alloc.Create()
	positions.Insert(e, position{1, 1})
	healths.Insert(e, health{HP: 5})

	r.DeleteEntity(e)

	if positions.Contains(e) {
		t.Fatal("positions still has a component after Registry.DeleteEntity")
	}
	if healths.Contains(e) {
		t.Fatal("healths still has a component after Registry.DeleteEntity")
	}
}

func TestRegistryDeleteEntityUnpacksLoosePackObservers(t *testing.T) {
	r := NewRegistry()
	positions := NewSparseSet[position]()
	velocities := NewSparseSet[velocity]()
	healths := NewSparseSet[health]()
	Register(r, positions)
	Register(r, velocities)
	Register(r, healths)

	_, ids := setupEntities(2)
	for _, e := range ids {
		positions.Insert(e, position{})
		velocities.Insert(e, velocity{})
		healths.Insert(e, health{})
	}

	tightTypes := sortedTypeIDs([]TypeID{positions.TypeID(), velocities.TypeID()})
	positions.Metadata().Kind = PackLoose
	positions.Metadata().Loose = LoosePack{TightTypes: tightTypes, LooseTypes: []TypeID{healths.TypeID()}, Len: 2}
	velocities.Metadata().Kind = PackLoose
	velocities.Metadata().Loose = LoosePack{TightTypes: tightTypes, LooseTypes: []TypeID{healths.TypeID()}, Len: 2}
	// healths is the loose-typed member: it isn't itself packed, but it
	// names positions and velocities as the tight storages that must be
	// unpacked when one of its entities goes away.
	healths.Metadata().ObserverTypes = tightTypes

	r.DeleteEntity(ids[0])

	if positions.Metadata().Loose.Len != 1 {
		t.Fatalf("positions pack length = %d after cascading delete, want 1", positions.Metadata().Loose.Len)
	}
	if velocities.Metadata().Loose.Len != 1 {
		t.Fatalf("velocities pack length = %d after cascading delete, want 1", velocities.Metadata().Loose.Len)
	}
	if positions.Contains(ids[0]) || velocities.Contains(ids[0]) || healths.Contains(ids[0]) {
		t.Fatal("ids[0] still present in some storage after Registry.DeleteEntity")
	}
	if !positions.Contains(ids[1]) || !velocities.Contains(ids[1]) || !healths.Contains(ids[1]) {
		t.Fatal("ids[1] lost a component it should have survived with")
	}
}

func TestRegistryStorageOfRoundTrips(t *testing.T) {
	r := NewRegistry()
	positions := NewSparseSet[position]()
	Register(r, positions)

	got, ok := StorageOf[position](r)
	if !ok || got != positions {
		t.Fatalf("StorageOf[position] = %v, %v, want the registered storage", got, ok)
	}

	if _, ok := StorageOf[health](r); ok {
		t.Fatal("StorageOf[health] succeeded for an unregistered type")
	}
}

func TestRegistryClearEmptiesEveryStorage(t *testing.T) {
	r := NewRegistry()
	positions := NewSparseSet[position]()
	Register(r, positions)
	alloc := NewEntityIdAllocator()
	positions.Insert(alloc.Create(), position{1, 1})

	r.Clear()

	if positions.Len() != 0 {
		t.Fatalf("positions.Len() = %d after Registry.Clear, want 0", positions.Len())
	}
}
