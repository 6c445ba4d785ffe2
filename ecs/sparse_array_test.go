package ecs

import "testing"

func TestSparseArrayUnallocatedReadsReturnDead(t *testing.T) {
	s := NewSparseArray()
	if got := s.Get(1000); got != DeadId {
		t.Fatalf("Get on an unallocated bucket = %v, want DeadId", got)
	}
}

func TestSparseArraySetAndGet(t *testing.T) {
	s := NewSparseArray()
	payload := NewEntityId(5, 2) | EntityId(metaOwned)

	s.Set(40, payload) // forces a second bucket (bucketSize = 32)
	if got := s.Get(40); got != payload {
		t.Fatalf("Get(40) = %v, want %v", got, payload)
	}
	if got := s.Get(39); got != DeadId {
		t.Fatalf("Get(39) = %v, want DeadId (untouched slot in the same bucket)", got)
	}
}

func TestSparseArrayClearPreservesCapacity(t *testing.T) {
	s := NewSparseArray()
	s.Set(100, NewEntityId(1, 1)|EntityId(metaOwned))
	bucketsBefore := len(s.buckets)

	s.Clear()

	if len(s.buckets) != bucketsBefore {
		t.Fatalf("Clear() changed bucket count: %d -> %d", bucketsBefore, len(s.buckets))
	}
	if got := s.Get(100); got != DeadId {
		t.Fatalf("Get(100) after Clear = %v, want DeadId", got)
	}
}
