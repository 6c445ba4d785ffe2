package ecs

import "testing"

func TestIterator2MixedSkipsNonMatchingEntities(t *testing.T) {
	positions := NewSparseSet[position]()
	healths := NewSparseSet[health]()
	_, ids := setupEntities(3)

	for _, e := range ids {
		positions.Insert(e, position{X: int(e.Index())})
	}
	healths.Insert(ids[0], health{HP: 1})
	healths.Insert(ids[2], health{HP: 2})

	it, ok := NewIterator2(NewView(positions), NewView(healths))
	if !ok {
		t.Fatal("NewIterator2 reported cannot-fast-iterate for an untracked mixed query")
	}
	seen := map[uint64]int{}
	for {
		e, _, h, ok := it.Next()
		if !ok {
			break
		}
		seen[e.Index()] = h.HP
	}

	if len(seen) != 2 {
		t.Fatalf("visited %d entities, want 2", len(seen))
	}
	if seen[ids[0].Index()] != 1 || seen[ids[2].Index()] != 2 {
		t.Fatalf("seen = %v, want matching HP for ids[0] and ids[2]", seen)
	}
	if _, ok := seen[ids[1].Index()]; ok {
		t.Fatal("visited an entity with no health component")
	}
}

func TestIterator3TightPackLockstep(t *testing.T) {
	positions := NewSparseSet[position]()
	velocities := NewSparseSet[velocity]()
	healths := NewSparseSet[health]()
	_, ids := setupEntities(3)

	for _, e := range ids {
		positions.Insert(e, position{X: int(e.Index())})
		velocities.Insert(e, velocity{DX: int(e.Index())})
		healths.Insert(e, health{HP: int(e.Index())})
	}

	types := sortedTypeIDs([]TypeID{positions.TypeID(), velocities.TypeID(), healths.TypeID()})
	positions.Metadata().Kind = PackTight
	positions.Metadata().Tight = TightPack{Types: types, Len: 3}
	velocities.Metadata().Kind = PackTight
	velocities.Metadata().Tight = TightPack{Types: types, Len: 3}
	healths.Metadata().Kind = PackTight
	healths.Metadata().Tight = TightPack{Types: types, Len: 3}

	it, ok := NewIterator3(NewView(positions), NewView(velocities), NewView(healths))
	if !ok {
		t.Fatal("NewIterator3 reported cannot-fast-iterate for a fully tight-packed query")
	}
	count := 0
	for {
		e, p, v, h, ok := it.Next()
		if !ok {
			break
		}
		if p.X != int(e.Index()) || v.DX != int(e.Index()) || h.HP != int(e.Index()) {
			t.Fatalf("entity %v: mismatched components p=%v v=%v h=%v", e, p, v, h)
		}
		count++
	}
	if count != 3 {
		t.Fatalf("iterated %d entities, want 3", count)
	}
}

func TestIterator2NextMutMarksModified(t *testing.T) {
	positions := NewSparseSet[position]()
	velocities := NewSparseSet[velocity]()
	positions.UpdatePack()
	_, ids := setupEntities(2)

	for _, e := range ids {
		positions.Insert(e, position{X: int(e.Index())})
		velocities.Insert(e, velocity{DX: int(e.Index())})
	}
	if err := positions.TryClearInserted(); err != nil {
		t.Fatalf("TryClearInserted returned error: %v", err)
	}

	it, ok := NewIterator2(NewView(positions), NewView(velocities))
	if !ok {
		t.Fatal("NewIterator2 reported cannot-fast-iterate for a mixed query whose tracked view is unpacked")
	}
	for {
		_, p, v, ok := it.NextMut()
		if !ok {
			break
		}
		p.X += v.DX
	}

	for i := range ids {
		if !positions.dense[i].IsModified() {
			t.Fatalf("dense row %d not marked modified after NextMut — write-back rule did not fire during iteration", i)
		}
	}
}

func TestIterator1WalksWholeStorage(t *testing.T) {
	positions := NewSparseSet[position]()
	_, ids := setupEntities(5)
	for _, e := range ids {
		positions.Insert(e, position{X: int(e.Index())})
	}

	it, ok := NewIterator1(NewView(positions))
	if !ok {
		t.Fatal("NewIterator1 reported cannot-fast-iterate for a single untracked view")
	}
	count := 0
	for {
		_, p, ok := it.Next()
		if !ok {
			break
		}
		count++
		_ = p
	}
	if count != 5 {
		t.Fatalf("iterated %d entities, want 5", count)
	}
}
