package search

import "upside-down-research.com/oss/planner/internal/search/openlist"

// OpenListKind selects which of the four open-list variants an
// OpenList wraps.
type OpenListKind int

const (
	OpenStandard OpenListKind = iota
	OpenBounded
	OpenDouble
	OpenPruned
)

// OpenList adapts the openlist package's four generic variants to
// NodeRef/Arena, translating heap membership changes into the arena's
// retain/release refcounting.
type OpenList struct {
	arena *Arena
	kind  OpenListKind

	standard *openlist.Standard
	bounded  *openlist.Bounded
	double   *openlist.Double
	pruned   *openlist.Pruned
}

// NewStandardOpenList builds a plain binary heap open list.
func NewStandardOpenList(arena *Arena, less openlist.Comparator) *OpenList {
	return &OpenList{arena: arena, kind: OpenStandard, standard: openlist.NewStandard(less)}
}

// NewBoundedOpenList builds a fixed-capacity random-replacement open list.
func NewBoundedOpenList(arena *Arena, less openlist.Comparator, depth int) *OpenList {
	return &OpenList{arena: arena, kind: OpenBounded, bounded: openlist.NewBounded(less, depth)}
}

// NewDoubleOpenList builds a double alternating heap open list.
func NewDoubleOpenList(arena *Arena, primaryLess, altLess openlist.Comparator, depth, interval int) *OpenList {
	return &OpenList{arena: arena, kind: OpenDouble, double: openlist.NewDouble(primaryLess, altLess, depth, interval)}
}

// NewPrunedOpenList builds a soft-limit pruned open list.
func NewPrunedOpenList(arena *Arena, less openlist.Comparator, softLimit int) *OpenList {
	return &OpenList{arena: arena, kind: OpenPruned, pruned: openlist.NewPruned(less, softLimit)}
}

// SetAlternating switches a pruned open list into dual-bounded mode; a
// no-op on the other variants.
func (o *OpenList) SetAlternating(bottom, top int) {
	if o.pruned != nil {
		o.pruned.SetAlternating(bottom, top)
	}
}

// Insert adds ref to the open list, retaining/releasing arena references
// for every heap membership gained or lost.
func (o *OpenList) Insert(ref NodeRef) {
	n := o.arena.Get(ref)
	switch o.kind {
	case OpenStandard:
		o.standard.Insert(n)
		o.arena.Retain(ref)

	case OpenBounded:
		evicted := o.bounded.Insert(n)
		o.admitOrReject(ref, evicted)

	case OpenDouble:
		res := o.double.Insert(n)
		if res.InPrimary {
			o.arena.Retain(ref)
		}
		if res.InSecondary {
			o.arena.Retain(ref)
		}
		o.releaseIfNotSelf(ref, res.Evicted1)
		o.releaseIfNotSelf(ref, res.Evicted2)

	case OpenPruned:
		rejected, evicted := o.pruned.Insert(n)
		if rejected == nil {
			o.arena.Retain(ref)
		}
		o.releaseIfNotSelf(ref, evicted)
	}
}

// admitOrReject handles the common bounded-heap shape: evicted is nil
// (inserted below capacity), ref itself (rejected outright), or some other
// incumbent node (displaced).
func (o *OpenList) admitOrReject(ref NodeRef, evicted openlist.Item) {
	if evicted == nil {
		o.arena.Retain(ref)
		return
	}
	if evicted.(*Node).Self() == ref {
		return
	}
	o.arena.Retain(ref)
	o.arena.Release(evicted.(*Node).Self())
}

func (o *OpenList) releaseIfNotSelf(ref NodeRef, it openlist.Item) {
	if it == nil {
		return
	}
	if evictedRef := it.(*Node).Self(); evictedRef != ref {
		o.arena.Release(evictedRef)
	}
}

// Pop removes and returns the next NodeRef. The heap-membership reference
// it held is NOT released here: releasing it immediately could free the
// node (if this was its only reference) before the caller ever reads it.
// Ownership of that one reference transfers to the caller, who must call
// Arena.Release(ref) exactly once when done with this pop — which the
// driver does at the end of each loop iteration, by which point the node
// is normally already protected by its own closed-list entry.
func (o *OpenList) Pop() (NodeRef, bool) {
	var it openlist.Item
	switch o.kind {
	case OpenStandard:
		it = o.standard.PopTop()
	case OpenBounded:
		it = o.bounded.Pop()
	case OpenDouble:
		it, _ = o.double.Pop()
	case OpenPruned:
		it = o.pruned.Pop()
	}
	if it == nil {
		return NoRef, false
	}
	return it.(*Node).Self(), true
}

// Empty reports whether the open list holds no items.
func (o *OpenList) Empty() bool {
	switch o.kind {
	case OpenStandard:
		return o.standard.Empty()
	case OpenBounded:
		return o.bounded.Empty()
	case OpenDouble:
		return o.double.Empty()
	case OpenPruned:
		return o.pruned.Empty()
	}
	return true
}

// Size returns the open list's current occupancy.
func (o *OpenList) Size() int {
	switch o.kind {
	case OpenStandard:
		return o.standard.Size()
	case OpenBounded:
		return o.bounded.Size()
	case OpenDouble:
		return o.double.Size()
	case OpenPruned:
		return o.pruned.Size()
	}
	return 0
}
