package ecs

// PlanKind is the join strategy a QueryPlanner settles on for a given set of
// storages (§4.4).
type PlanKind int

const (
	// PlanTight means every storage belongs to the same tight pack spanning
	// exactly the queried type set: the pack's co-sorted prefix can be
	// walked index-by-index with no membership checks at all.
	PlanTight PlanKind = iota
	// PlanLoose means a tight sub-pack's prefix drives iteration, while the
	// remaining (loosely packed) storages are looked up by entity per step.
	PlanLoose
	// PlanMixed means no single pack covers every queried storage: the
	// cheapest storage by estimated access cost drives the scan, and every
	// other storage is membership-tested per candidate entity.
	PlanMixed
)

// accessFactor weighs an unpacked storage's per-element lookup against a
// packed one's direct index: walking N elements of an unpacked storage and
// testing membership in every other view costs roughly accessFactor times
// what walking N elements of an already co-sorted prefix costs. Ground:
// original_source/src/iter/fast/into_iter.rs's ACCESS_FACTOR = 3.
const accessFactor = 3

// viewMeta is the arity-erased description of one storage entering a query,
// letting classify operate without a type parameter per storage (Go has no
// variadic generics to express the original's macro-generated arities 1..10
// directly — see SPEC_FULL.md §4.4).
type viewMeta struct {
	typeID        TypeID
	kind          PackKind
	tightTypes    []TypeID
	looseTypes    []TypeID
	packLen       int
	denseLen      int
	observerTypes []TypeID
	// isExact mirrors View.Len()'s own isExact: true when this view is
	// packed, so its reported length is the pack's own prefix rather than
	// an upper bound that depends on the other views in the query.
	isExact bool
	// tracked is true when this view's storage has update tracking turned
	// on (§4.3/§4.4 step 1).
	tracked bool
}

// Plan is a QueryPlanner's decision: which strategy to use, which view (by
// position in the input slice) drives the scan, how many candidate rows to
// scan, and which views move in lockstep with the driving view (so no
// membership test, and its component is fetched by the same row index
// rather than by entity lookup).
type Plan struct {
	Kind     PlanKind
	Driving  int
	Len      int
	Lockstep []bool
}

// classify implements §4.4's algorithm: prefer a Tight pack spanning every
// queried type, then a Loose pack, falling back to Mixed driven by the
// cheapest storage. The second return is false ("cannot fast-iterate") when
// step 1's rejection fires: any view update-tracked with an exact length
// while another view is present means some position will need a
// membership test this pass, which would mis-attribute that view's own
// modifications (§4.4 step 1).
func classify(views []viewMeta) (Plan, bool) {
	n := len(views)
	if n > 1 {
		for _, v := range views {
			if v.tracked && v.isExact {
				return Plan{}, false
			}
		}
	}

	queryTypes := make([]TypeID, n)
	for i, v := range views {
		queryTypes[i] = v.typeID
	}
	queryTypes = sortedTypeIDs(queryTypes)

	if plan, ok := classifyTight(views, queryTypes); ok {
		return plan, true
	}
	if plan, ok := classifyLoose(views, queryTypes); ok {
		return plan, true
	}
	return classifyMixed(views, queryTypes), true
}

func classifyTight(views []viewMeta, queryTypes []TypeID) (Plan, bool) {
	n := len(views)
	if n == 0 || views[0].kind != PackTight {
		return Plan{}, false
	}
	tightSet := sortedTypeIDs(views[0].tightTypes)
	if !sameTypeSet(tightSet, queryTypes) {
		return Plan{}, false
	}
	minLen := views[0].packLen
	for _, v := range views[1:] {
		if v.kind != PackTight || !sameTypeSet(sortedTypeIDs(v.tightTypes), queryTypes) {
			return Plan{}, false
		}
		if v.packLen < minLen {
			minLen = v.packLen
		}
	}
	lockstep := make([]bool, n)
	for i := range lockstep {
		lockstep[i] = true
	}
	return Plan{Kind: PlanTight, Driving: 0, Len: minLen, Lockstep: lockstep}, true
}

func classifyLoose(views []viewMeta, queryTypes []TypeID) (Plan, bool) {
	n := len(views)
	if n == 0 || views[0].kind != PackLoose {
		return Plan{}, false
	}
	tightSet := sortedTypeIDs(views[0].tightTypes)
	fullSet := sortedTypeIDs(append(append([]TypeID{}, views[0].tightTypes...), views[0].looseTypes...))
	if !sameTypeSet(fullSet, queryTypes) {
		return Plan{}, false
	}
	minLen := views[0].packLen
	for _, v := range views[1:] {
		thisFull := sortedTypeIDs(append(append([]TypeID{}, v.tightTypes...), v.looseTypes...))
		if v.kind != PackLoose || !sameTypeSet(thisFull, queryTypes) {
			return Plan{}, false
		}
		if v.packLen < minLen {
			minLen = v.packLen
		}
	}

	lockstep := make([]bool, n)
	driving := -1
	for i, v := range views {
		member := false
		for _, t := range tightSet {
			if t == v.typeID {
				member = true
				break
			}
		}
		lockstep[i] = member
		if member && driving == -1 {
			driving = i
		}
	}
	if driving == -1 {
		driving = 0
	}
	return Plan{Kind: PlanLoose, Driving: driving, Len: minLen, Lockstep: lockstep}, true
}

func classifyMixed(views []viewMeta, queryTypes []TypeID) Plan {
	n := len(views)
	driving := 0
	best := factoredLen(views[0], queryTypes, n)
	for i := 1; i < n; i++ {
		f := factoredLen(views[i], queryTypes, n)
		if f < best {
			best = f
			driving = i
		}
	}

	length := views[driving].denseLen
	if isPackableMeta(views[driving], queryTypes) {
		length = views[driving].packLen
	}
	return Plan{Kind: PlanMixed, Driving: driving, Len: length, Lockstep: make([]bool, n)}
}

// factoredLen estimates the cost of scanning v against queryTypes (§4.4
// step 3): its own pack's length if the pack covers the query; otherwise
// len + len*(n-1)*ACCESS_FACTOR when v's own length is exact (nothing else
// in the query would need a membership test against it), else
// len*n*ACCESS_FACTOR, reflecting a membership test against every one of
// the n queried views.
func factoredLen(v viewMeta, queryTypes []TypeID, n int) int {
	if isPackableMeta(v, queryTypes) {
		return v.packLen
	}
	if v.isExact {
		return v.denseLen + v.denseLen*(n-1)*accessFactor
	}
	return v.denseLen * n * accessFactor
}

func isPackableMeta(v viewMeta, queryTypes []TypeID) bool {
	switch v.kind {
	case PackTight:
		return isSubset(sortedTypeIDs(v.tightTypes), queryTypes)
	case PackLoose:
		full := sortedTypeIDs(append(append([]TypeID{}, v.tightTypes...), v.looseTypes...))
		return isSubset(full, queryTypes)
	default:
		return false
	}
}

func metaOf[T any](view *View[T]) viewMeta {
	m := view.Metadata()
	_, isExact := view.Len()
	v := viewMeta{
		typeID:        view.TypeID(),
		kind:          m.Kind,
		packLen:       m.packLen(),
		denseLen:      len(view.Dense()),
		observerTypes: m.ObserverTypes,
		isExact:       isExact,
		tracked:       m.Update != nil,
	}
	switch m.Kind {
	case PackTight:
		v.tightTypes = m.Tight.Types
	case PackLoose:
		v.tightTypes = m.Loose.TightTypes
		v.looseTypes = m.Loose.LooseTypes
	}
	return v
}
