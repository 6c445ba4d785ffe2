package ecs

// fetchComponent resolves one storage's component for row i/entity entity,
// given whether this storage is the plan's driving view or moves in
// lockstep with it (§4.5): driving and lockstep rows are read by dense
// index directly; everything else needs a membership-gated lookup by
// entity, since it isn't guaranteed to be at the same row.
func fetchComponent[T any](a AbstractStorage[T], i int, entity EntityId, driving, lockstep bool) (*T, bool) {
	if driving || lockstep {
		return a.GetByIndex(i), true
	}
	return a.Get(entity)
}

// fetchComponentMut is fetchComponent's tracked-write counterpart (§4.5's
// "update write-back during iteration"): driving/lockstep rows are still
// read by index, since a Tight/Loose pack guarantees the row, but the
// write-back rule has to be applied explicitly because GetByIndex has no
// entity to hang a tracked access off of; every other row already gets the
// write-back for free from GetMut.
func fetchComponentMut[T any](a AbstractStorage[T], i int, entity EntityId, driving, lockstep bool) (*T, bool) {
	if driving || lockstep {
		a.markModifiedByIndex(i)
		return a.GetByIndex(i), true
	}
	return a.GetMut(entity)
}

// Iterator1 walks a single view; classification degenerates to scanning
// its whole dense vector.
type Iterator1[T1 any] struct {
	a1     AbstractStorage[T1]
	plan   Plan
	dense  []EntityId
	cursor int
}

// NewIterator1 builds an iterator over v1 (§4.4/§4.5). The second return is
// false when the QueryPlanner cannot fast-iterate (§4.4 step 1); there is
// no iterator to use in that case.
func NewIterator1[T1 any](v1 *View[T1]) (*Iterator1[T1], bool) {
	plan, ok := classify([]viewMeta{metaOf(v1)})
	if !ok {
		return nil, false
	}
	return &Iterator1[T1]{a1: v1.IntoAbstract(), plan: plan, dense: v1.Dense()}, true
}

// Next advances the iterator, returning false once exhausted.
func (it *Iterator1[T1]) Next() (EntityId, *T1, bool) {
	if it.cursor >= it.plan.Len {
		return DeadId, nil, false
	}
	i := it.cursor
	it.cursor++
	entity := it.dense[i]
	return entity, it.a1.GetByIndex(i), true
}

// NextMut advances the iterator like Next, but marks the yielded component
// modified if the view is update-tracked (§4.5's write-back rule).
func (it *Iterator1[T1]) NextMut() (EntityId, *T1, bool) {
	if it.cursor >= it.plan.Len {
		return DeadId, nil, false
	}
	i := it.cursor
	it.cursor++
	entity := it.dense[i]
	it.a1.markModifiedByIndex(i)
	return entity, it.a1.GetByIndex(i), true
}

// Iterator2 jointly walks two views, classified Tight/Loose/Mixed per §4.4
// and driven per §4.5.
type Iterator2[T1, T2 any] struct {
	a1     AbstractStorage[T1]
	a2     AbstractStorage[T2]
	plan   Plan
	dense  []EntityId
	cursor int
}

// NewIterator2 builds a joint iterator over v1 and v2. The second return is
// false when the QueryPlanner cannot fast-iterate (§4.4 step 1).
func NewIterator2[T1, T2 any](v1 *View[T1], v2 *View[T2]) (*Iterator2[T1, T2], bool) {
	plan, ok := classify([]viewMeta{metaOf(v1), metaOf(v2)})
	if !ok {
		return nil, false
	}
	dense := v1.Dense()
	if plan.Driving == 1 {
		dense = v2.Dense()
	}
	return &Iterator2[T1, T2]{a1: v1.IntoAbstract(), a2: v2.IntoAbstract(), plan: plan, dense: dense}, true
}

// Next advances the iterator, skipping rows where a non-driving view
// doesn't hold the component, until it finds a match or is exhausted.
func (it *Iterator2[T1, T2]) Next() (EntityId, *T1, *T2, bool) {
	for it.cursor < it.plan.Len {
		i := it.cursor
		it.cursor++
		entity := it.dense[i]

		c1, ok1 := fetchComponent(it.a1, i, entity, it.plan.Driving == 0, it.plan.Lockstep[0])
		if !ok1 {
			continue
		}
		c2, ok2 := fetchComponent(it.a2, i, entity, it.plan.Driving == 1, it.plan.Lockstep[1])
		if !ok2 {
			continue
		}
		return entity, c1, c2, true
	}
	return DeadId, nil, nil, false
}

// NextMut advances the iterator like Next, marking every tracked view's
// yielded component modified (§4.5's write-back rule).
func (it *Iterator2[T1, T2]) NextMut() (EntityId, *T1, *T2, bool) {
	for it.cursor < it.plan.Len {
		i := it.cursor
		it.cursor++
		entity := it.dense[i]

		c1, ok1 := fetchComponentMut(it.a1, i, entity, it.plan.Driving == 0, it.plan.Lockstep[0])
		if !ok1 {
			continue
		}
		c2, ok2 := fetchComponentMut(it.a2, i, entity, it.plan.Driving == 1, it.plan.Lockstep[1])
		if !ok2 {
			continue
		}
		return entity, c1, c2, true
	}
	return DeadId, nil, nil, false
}

// Iterator3 jointly walks three views (§4.4/§4.5).
type Iterator3[T1, T2, T3 any] struct {
	a1     AbstractStorage[T1]
	a2     AbstractStorage[T2]
	a3     AbstractStorage[T3]
	plan   Plan
	dense  []EntityId
	cursor int
}

// NewIterator3 builds a joint iterator over v1, v2, and v3. The second
// return is false when the QueryPlanner cannot fast-iterate (§4.4 step 1).
func NewIterator3[T1, T2, T3 any](v1 *View[T1], v2 *View[T2], v3 *View[T3]) (*Iterator3[T1, T2, T3], bool) {
	metas := []viewMeta{metaOf(v1), metaOf(v2), metaOf(v3)}
	plan, ok := classify(metas)
	if !ok {
		return nil, false
	}
	dense := [][]EntityId{v1.Dense(), v2.Dense(), v3.Dense()}[plan.Driving]
	return &Iterator3[T1, T2, T3]{a1: v1.IntoAbstract(), a2: v2.IntoAbstract(), a3: v3.IntoAbstract(), plan: plan, dense: dense}, true
}

// Next advances the iterator.
func (it *Iterator3[T1, T2, T3]) Next() (EntityId, *T1, *T2, *T3, bool) {
	for it.cursor < it.plan.Len {
		i := it.cursor
		it.cursor++
		entity := it.dense[i]

		c1, ok1 := fetchComponent(it.a1, i, entity, it.plan.Driving == 0, it.plan.Lockstep[0])
		if !ok1 {
			continue
		}
		c2, ok2 := fetchComponent(it.a2, i, entity, it.plan.Driving == 1, it.plan.Lockstep[1])
		if !ok2 {
			continue
		}
		c3, ok3 := fetchComponent(it.a3, i, entity, it.plan.Driving == 2, it.plan.Lockstep[2])
		if !ok3 {
			continue
		}
		return entity, c1, c2, c3, true
	}
	return DeadId, nil, nil, nil, false
}

// NextMut advances the iterator like Next, marking every tracked view's
// yielded component modified (§4.5's write-back rule).
func (it *Iterator3[T1, T2, T3]) NextMut() (EntityId, *T1, *T2, *T3, bool) {
	for it.cursor < it.plan.Len {
		i := it.cursor
		it.cursor++
		entity := it.dense[i]

		c1, ok1 := fetchComponentMut(it.a1, i, entity, it.plan.Driving == 0, it.plan.Lockstep[0])
		if !ok1 {
			continue
		}
		c2, ok2 := fetchComponentMut(it.a2, i, entity, it.plan.Driving == 1, it.plan.Lockstep[1])
		if !ok2 {
			continue
		}
		c3, ok3 := fetchComponentMut(it.a3, i, entity, it.plan.Driving == 2, it.plan.Lockstep[2])
		if !ok3 {
			continue
		}
		return entity, c1, c2, c3, true
	}
	return DeadId, nil, nil, nil, false
}

// Iterator4 jointly walks four views (§4.4/§4.5).
type Iterator4[T1, T2, T3, T4 any] struct {
	a1     AbstractStorage[T1]
	a2     AbstractStorage[T2]
	a3     AbstractStorage[T3]
	a4     AbstractStorage[T4]
	plan   Plan
	dense  []EntityId
	cursor int
}

// NewIterator4 builds a joint iterator over v1..v4. The second return is
// false when the QueryPlanner cannot fast-iterate (§4.4 step 1).
func NewIterator4[T1, T2, T3, T4 any](v1 *View[T1], v2 *View[T2], v3 *View[T3], v4 *View[T4]) (*Iterator4[T1, T2, T3, T4], bool) {
	metas := []viewMeta{metaOf(v1), metaOf(v2), metaOf(v3), metaOf(v4)}
	plan, ok := classify(metas)
	if !ok {
		return nil, false
	}
	dense := [][]EntityId{v1.Dense(), v2.Dense(), v3.Dense(), v4.Dense()}[plan.Driving]
	return &Iterator4[T1, T2, T3, T4]{
		a1: v1.IntoAbstract(), a2: v2.IntoAbstract(), a3: v3.IntoAbstract(), a4: v4.IntoAbstract(),
		plan: plan, dense: dense,
	}, true
}

// Next advances the iterator.
func (it *Iterator4[T1, T2, T3, T4]) Next() (EntityId, *T1, *T2, *T3, *T4, bool) {
	for it.cursor < it.plan.Len {
		i := it.cursor
		it.cursor++
		entity := it.dense[i]

		c1, ok1 := fetchComponent(it.a1, i, entity, it.plan.Driving == 0, it.plan.Lockstep[0])
		if !ok1 {
			continue
		}
		c2, ok2 := fetchComponent(it.a2, i, entity, it.plan.Driving == 1, it.plan.Lockstep[1])
		if !ok2 {
			continue
		}
		c3, ok3 := fetchComponent(it.a3, i, entity, it.plan.Driving == 2, it.plan.Lockstep[2])
		if !ok3 {
			continue
		}
		c4, ok4 := fetchComponent(it.a4, i, entity, it.plan.Driving == 3, it.plan.Lockstep[3])
		if !ok4 {
			continue
		}
		return entity, c1, c2, c3, c4, true
	}
	return DeadId, nil, nil, nil, nil, false
}

// NextMut advances the iterator like Next, marking every tracked view's
// yielded component modified (§4.5's write-back rule).
func (it *Iterator4[T1, T2, T3, T4]) NextMut() (EntityId, *T1, *T2, *T3, *T4, bool) {
	for it.cursor < it.plan.Len {
		i := it.cursor
		it.cursor++
		entity := it.dense[i]

		c1, ok1 := fetchComponentMut(it.a1, i, entity, it.plan.Driving == 0, it.plan.Lockstep[0])
		if !ok1 {
			continue
		}
		c2, ok2 := fetchComponentMut(it.a2, i, entity, it.plan.Driving == 1, it.plan.Lockstep[1])
		if !ok2 {
			continue
		}
		c3, ok3 := fetchComponentMut(it.a3, i, entity, it.plan.Driving == 2, it.plan.Lockstep[2])
		if !ok3 {
			continue
		}
		c4, ok4 := fetchComponentMut(it.a4, i, entity, it.plan.Driving == 3, it.plan.Lockstep[3])
		if !ok4 {
			continue
		}
		return entity, c1, c2, c3, c4, true
	}
	return DeadId, nil, nil, nil, nil, false
}

// Iterator5 jointly walks five views (§4.4/§4.5).
type Iterator5[T1, T2, T3, T4, T5 any] struct {
	a1     AbstractStorage[T1]
	a2     AbstractStorage[T2]
	a3     AbstractStorage[T3]
	a4     AbstractStorage[T4]
	a5     AbstractStorage[T5]
	plan   Plan
	dense  []EntityId
	cursor int
}

// NewIterator5 builds a joint iterator over v1..v5. The second return is
// false when the QueryPlanner cannot fast-iterate (§4.4 step 1).
func NewIterator5[T1, T2, T3, T4, T5 any](v1 *View[T1], v2 *View[T2], v3 *View[T3], v4 *View[T4], v5 *View[T5]) (*Iterator5[T1, T2, T3, T4, T5], bool) {
	metas := []viewMeta{metaOf(v1), metaOf(v2), metaOf(v3), metaOf(v4), metaOf(v5)}
	plan, ok := classify(metas)
	if !ok {
		return nil, false
	}
	dense := [][]EntityId{v1.Dense(), v2.Dense(), v3.Dense(), v4.Dense(), v5.Dense()}[plan.Driving]
	return &Iterator5[T1, T2, T3, T4, T5]{
		a1: v1.IntoAbstract(), a2: v2.IntoAbstract(), a3: v3.IntoAbstract(), a4: v4.IntoAbstract(), a5: v5.IntoAbstract(),
		plan: plan, dense: dense,
	}, true
}

// Next advances the iterator.
func (it *Iterator5[T1, T2, T3, T4, T5]) Next() (EntityId, *T1, *T2, *T3, *T4, *T5, bool) {
	for it.cursor < it.plan.Len {
		i := it.cursor
		it.cursor++
		entity := it.dense[i]

		c1, ok1 := fetchComponent(it.a1, i, entity, it.plan.Driving == 0, it.plan.Lockstep[0])
		if !ok1 {
			continue
		}
		c2, ok2 := fetchComponent(it.a2, i, entity, it.plan.Driving == 1, it.plan.Lockstep[1])
		if !ok2 {
			continue
		}
		c3, ok3 := fetchComponent(it.a3, i, entity, it.plan.Driving == 2, it.plan.Lockstep[2])
		if !ok3 {
			continue
		}
		c4, ok4 := fetchComponent(it.a4, i, entity, it.plan.Driving == 3, it.plan.Lockstep[3])
		if !ok4 {
			continue
		}
		c5, ok5 := fetchComponent(it.a5, i, entity, it.plan.Driving == 4, it.plan.Lockstep[4])
		if !ok5 {
			continue
		}
		return entity, c1, c2, c3, c4, c5, true
	}
	return DeadId, nil, nil, nil, nil, nil, false
}

// NextMut advances the iterator like Next, marking every tracked view's
// yielded component modified (§4.5's write-back rule).
func (it *Iterator5[T1, T2, T3, T4, T5]) NextMut() (EntityId, *T1, *T2, *T3, *T4, *T5, bool) {
	for it.cursor < it.plan.Len {
		i := it.cursor
		it.cursor++
		entity := it.dense[i]

		c1, ok1 := fetchComponentMut(it.a1, i, entity, it.plan.Driving == 0, it.plan.Lockstep[0])
		if !ok1 {
			continue
		}
		c2, ok2 := fetchComponentMut(it.a2, i, entity, it.plan.Driving == 1, it.plan.Lockstep[1])
		if !ok2 {
			continue
		}
		c3, ok3 := fetchComponentMut(it.a3, i, entity, it.plan.Driving == 2, it.plan.Lockstep[2])
		if !ok3 {
			continue
		}
		c4, ok4 := fetchComponentMut(it.a4, i, entity, it.plan.Driving == 3, it.plan.Lockstep[3])
		if !ok4 {
			continue
		}
		c5, ok5 := fetchComponentMut(it.a5, i, entity, it.plan.Driving == 4, it.plan.Lockstep[4])
		if !ok5 {
			continue
		}
		return entity, c1, c2, c3, c4, c5, true
	}
	return DeadId, nil, nil, nil, nil, nil, false
}

// Iterator6 jointly walks six views, the arity cap this module settles on
// (SPEC_FULL.md §4.4).
type Iterator6[T1, T2, T3, T4, T5, T6 any] struct {
	a1     AbstractStorage[T1]
	a2     AbstractStorage[T2]
	a3     AbstractStorage[T3]
	a4     AbstractStorage[T4]
	a5     AbstractStorage[T5]
	a6     AbstractStorage[T6]
	plan   Plan
	dense  []EntityId
	cursor int
}

// NewIterator6 builds a joint iterator over v1..v6. The second return is
// false when the QueryPlanner cannot fast-iterate (§4.4 step 1).
func NewIterator6[T1, T2, T3, T4, T5, T6 any](v1 *View[T1], v2 *View[T2], v3 *View[T3], v4 *View[T4], v5 *View[T5], v6 *View[T6]) (*Iterator6[T1, T2, T3, T4, T5, T6], bool) {
	metas := []viewMeta{metaOf(v1), metaOf(v2), metaOf(v3), metaOf(v4), metaOf(v5), metaOf(v6)}
	plan, ok := classify(metas)
	if !ok {
		return nil, false
	}
	dense := [][]EntityId{v1.Dense(), v2.Dense(), v3.Dense(), v4.Dense(), v5.Dense(), v6.Dense()}[plan.Driving]
	return &Iterator6[T1, T2, T3, T4, T5, T6]{
		a1: v1.IntoAbstract(), a2: v2.IntoAbstract(), a3: v3.IntoAbstract(),
		a4: v4.IntoAbstract(), a5: v5.IntoAbstract(), a6: v6.IntoAbstract(),
		plan: plan, dense: dense,
	}, true
}

// Next advances the iterator.
func (it *Iterator6[T1, T2, T3, T4, T5, T6]) Next() (EntityId, *T1, *T2, *T3, *T4, *T5, *T6, bool) {
	for it.cursor < it.plan.Len {
		i := it.cursor
		it.cursor++
		entity := it.dense[i]

		c1, ok1 := fetchComponent(it.a1, i, entity, it.plan.Driving == 0, it.plan.Lockstep[0])
		if !ok1 {
			continue
		}
		c2, ok2 := fetchComponent(it.a2, i, entity, it.plan.Driving == 1, it.plan.Lockstep[1])
		if !ok2 {
			continue
		}
		c3, ok3 := fetchComponent(it.a3, i, entity, it.plan.Driving == 2, it.plan.Lockstep[2])
		if !ok3 {
			continue
		}
		c4, ok4 := fetchComponent(it.a4, i, entity, it.plan.Driving == 3, it.plan.Lockstep[3])
		if !ok4 {
			continue
		}
		c5, ok5 := fetchComponent(it.a5, i, entity, it.plan.Driving == 4, it.plan.Lockstep[4])
		if !ok5 {
			continue
		}
		c6, ok6 := fetchComponent(it.a6, i, entity, it.plan.Driving == 5, it.plan.Lockstep[5])
		if !ok6 {
			continue
		}
		return entity, c1, c2, c3, c4, c5, c6, true
	}
	return DeadId, nil, nil, nil, nil, nil, nil, false
}

// NextMut advances the iterator like Next, marking every tracked view's
// yielded component modified (§4.5's write-back rule).
func (it *Iterator6[T1, T2, T3, T4, T5, T6]) NextMut() (EntityId, *T1, *T2, *T3, *T4, *T5, *T6, bool) {
	for it.cursor < it.plan.Len {
		i := it.cursor
		it.cursor++
		entity := it.dense[i]

		c1, ok1 := fetchComponentMut(it.a1, i, entity, it.plan.Driving == 0, it.plan.Lockstep[0])
		if !ok1 {
			continue
		}
		c2, ok2 := fetchComponentMut(it.a2, i, entity, it.plan.Driving == 1, it.plan.Lockstep[1])
		if !ok2 {
			continue
		}
		c3, ok3 := fetchComponentMut(it.a3, i, entity, it.plan.Driving == 2, it.plan.Lockstep[2])
		if !ok3 {
			continue
		}
		c4, ok4 := fetchComponentMut(it.a4, i, entity, it.plan.Driving == 3, it.plan.Lockstep[3])
		if !ok4 {
			continue
		}
		c5, ok5 := fetchComponentMut(it.a5, i, entity, it.plan.Driving == 4, it.plan.Lockstep[4])
		if !ok5 {
			continue
		}
		c6, ok6 := fetchComponentMut(it.a6, i, entity, it.plan.Driving == 5, it.plan.Lockstep[5])
		if !ok6 {
			continue
		}
		return entity, c1, c2, c3, c4, c5, c6, true
	}
	return DeadId, nil, nil, nil, nil, nil, nil, false
}
