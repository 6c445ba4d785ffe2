package ecs

import (
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyGenerationMonotonicallyIncreases checks §8 property 2: a
// recycled slot's generation never decreases and is never reused twice.
func TestPropertyGenerationMonotonicallyIncreases(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := NewEntityIdAllocator()
		live := map[uint64]EntityId{}
		seenGen := map[uint64]map[uint64]bool{}

		steps := rapid.IntRange(1, 200).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if len(live) == 0 || rapid.Bool().Draw(t, "create") {
				e := a.Create()
				idx := e.Index()
				if seenGen[idx] == nil {
					seenGen[idx] = map[uint64]bool{}
				}
				if seenGen[idx][e.Gen()] {
					t.Fatalf("generation %d reused for index %d", e.Gen(), idx)
				}
				seenGen[idx][e.Gen()] = true
				live[idx] = e
			} else {
				var victim EntityId
				for _, e := range live {
					victim = e
					break
				}
				if !a.Destroy(victim) {
					t.Fatalf("Destroy(%v) failed for a live entity", victim)
				}
				delete(live, victim.Index())
			}
		}
	})
}

// TestPropertyInsertGetRoundTrip checks §8 property 1: inserting a value
// and immediately reading it back returns exactly what was written.
func TestPropertyInsertGetRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewSparseSet[int]()
		alloc := NewEntityIdAllocator()
		e := alloc.Create()
		v := rapid.Int().Draw(t, "value")

		s.Insert(e, v)
		got, ok := s.Get(e)
		if !ok {
			t.Fatal("Get returned ok = false right after Insert")
		}
		if *got != v {
			t.Fatalf("Get() = %d, want %d", *got, v)
		}
	})
}

// TestPropertySwapRemovePreservesSurvivors checks §8 property 3: removing
// one entity from a SparseSet never disturbs any surviving entity's
// component value.
func TestPropertySwapRemovePreservesSurvivors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 30).Draw(t, "n")
		victimIdx := rapid.IntRange(0, n-1).Draw(t, "victim")

		s := NewSparseSet[int]()
		alloc := NewEntityIdAllocator()
		ids := make([]EntityId, n)
		for i := 0; i < n; i++ {
			ids[i] = alloc.Create()
			s.Insert(ids[i], i)
		}

		victim := ids[victimIdx]
		if _, err := s.Remove(victim); err != nil {
			t.Fatalf("Remove returned error: %v", err)
		}

		for i, e := range ids {
			if i == victimIdx {
				if s.Contains(e) {
					t.Fatalf("removed entity %v still present", e)
				}
				continue
			}
			got, ok := s.Get(e)
			if !ok {
				t.Fatalf("surviving entity %v lost its component", e)
			}
			if *got != i {
				t.Fatalf("survivor %v: component = %d, want %d", e, *got, i)
			}
		}
		if s.Len() != n-1 {
			t.Fatalf("Len() = %d, want %d", s.Len(), n-1)
		}
	})
}

// TestPropertySharingTransitivity checks §8 property 5 over a single share
// link: right after Share, the observer resolves to the same component value
// as the entity it shares from.
func TestPropertySharingTransitivity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewSparseSet[int]()
		alloc := NewEntityIdAllocator()
		owner := alloc.Create()
		observer := alloc.Create()
		v := rapid.Int().Draw(t, "value")

		s.Insert(owner, v)
		if err := s.Share(owner, observer); err != nil {
			t.Fatalf("Share returned error: %v", err)
		}

		ownerVal, _ := s.Get(owner)
		observerVal, ok := s.Get(observer)
		if !ok {
			t.Fatal("observer lost its shared component")
		}
		if *observerVal != *ownerVal {
			t.Fatalf("observer = %d, owner = %d, want equal", *observerVal, *ownerVal)
		}
	})
}
