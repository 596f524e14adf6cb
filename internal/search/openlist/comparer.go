// Package openlist implements the open-list family: a standard binary
// heap, a bounded random-replacement heap, a double alternating heap, and
// a pruned soft-limit/dual-bounded list. All variants order nodes by a
// lexicographic key over (h1, h2, h3, g) (greedy search omits g).
package openlist

// Item is the minimal read-only view an open-list needs of a search node.
// search.Node implements this; the package is kept decoupled from
// internal/search to avoid an import cycle (driver.go imports openlist).
type Item interface {
	H1n() float64
	AltH1n() float64
	H2n() float64
	H3n() float64
	Gn() float64
}

func fn(it Item) float64 { return it.Gn() + it.H1n() }

// Comparator reports whether a has strictly higher search priority than b
// (i.e. a should be popped before b).
type Comparator func(a, b Item) bool

// NodeComparer orders by ascending (f, h1, g).
func NodeComparer(a, b Item) bool {
	if fn(a) != fn(b) {
		return fn(a) < fn(b)
	}
	if a.H1n() != b.H1n() {
		return a.H1n() < b.H1n()
	}
	return a.Gn() < b.Gn()
}

// NodeComparerDH orders by ascending (f, h1, h2).
func NodeComparerDH(a, b Item) bool {
	if fn(a) != fn(b) {
		return fn(a) < fn(b)
	}
	if a.H1n() != b.H1n() {
		return a.H1n() < b.H1n()
	}
	return a.H2n() < b.H2n()
}

// NodeComparer3H orders by ascending (h1, h2, h3). This is the default
// for greedy best-first BFWS search (g omitted).
func NodeComparer3H(a, b Item) bool {
	if a.H1n() != b.H1n() {
		return a.H1n() < b.H1n()
	}
	if a.H2n() != b.H2n() {
		return a.H2n() < b.H2n()
	}
	return a.H3n() < b.H3n()
}

// AltNodeComparer3H is the double-heap's secondary comparator: it ranks
// by lifted-feature novelty first, ascending (alt_h1, h2, h3).
func AltNodeComparer3H(a, b Item) bool {
	if a.AltH1n() != b.AltH1n() {
		return a.AltH1n() < b.AltH1n()
	}
	if a.H2n() != b.H2n() {
		return a.H2n() < b.H2n()
	}
	return a.H3n() < b.H3n()
}

// invert returns a comparator reporting the opposite priority order —
// used to build the "inverse" max-heap in Pruned.
func invert(c Comparator) Comparator {
	return func(a, b Item) bool { return c(b, a) }
}
