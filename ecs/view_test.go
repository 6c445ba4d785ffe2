package ecs

import "testing"

func TestViewLenIsInexactWhenUnpacked(t *testing.T) {
	s := NewSparseSet[position]()
	alloc := NewEntityIdAllocator()
	s.Insert(alloc.Create(), position{})
	s.Insert(alloc.Create(), position{})

	v := NewView(s)
	count, exact := v.Len()
	if count != 2 {
		t.Fatalf("Len() count = %d, want 2", count)
	}
	if exact {
		t.Fatal("an unpacked storage reported Len() as exact")
	}
}

func TestViewLenIsExactWhenPacked(t *testing.T) {
	s := NewSparseSet[position]()
	alloc := NewEntityIdAllocator()
	s.Insert(alloc.Create(), position{})
	s.Metadata().Kind = PackTight
	s.Metadata().Tight = TightPack{Types: []TypeID{s.TypeID()}, Len: 1}

	v := NewView(s)
	count, exact := v.Len()
	if count != 1 || !exact {
		t.Fatalf("Len() = %d, %v, want 1, true", count, exact)
	}
}

func TestViewAbstractStorageGetMutTracksModification(t *testing.T) {
	s := NewSparseSet[position]()
	s.UpdatePack()
	alloc := NewEntityIdAllocator()
	e := alloc.Create()
	s.Insert(e, position{1, 1})
	s.TryClearInserted()

	abstract := NewView(s).IntoAbstract()
	mut, ok := abstract.GetMut(e)
	if !ok {
		t.Fatal("GetMut(e) = false, want true")
	}
	mut.X = 99

	if !s.dense[0].IsModified() {
		t.Fatal("AbstractStorage.GetMut did not propagate the modified flag")
	}
}
