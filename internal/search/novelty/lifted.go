package novelty

import (
	"strings"

	"upside-down-research.com/oss/planner/internal/strips"
)

// Splitter derives a stable lifted-predicate string from a fluent's
// signature. The default splits on "_" and takes the prefix, but this is
// brittle against fluent names that embed their own underscores, so it is a
// configurable option rather than a hard-coded convention.
type Splitter func(signature string) string

// DefaultSplitter implements "split on _, take prefix".
func DefaultSplitter(signature string) string {
	if i := strings.IndexByte(signature, '_'); i >= 0 {
		return signature[:i]
	}
	return signature
}

// LiftedIndex maps every fluent to a dense lifted-predicate index.
type LiftedIndex struct {
	fluentToLifted []int
	numLifted      int
}

// BuildLiftedIndex derives the fluent -> lifted-predicate index array used
// by lifted-feature novelty scoring.
func BuildLiftedIndex(fluents []strips.Fluent, split Splitter) *LiftedIndex {
	if split == nil {
		split = DefaultSplitter
	}
	li := &LiftedIndex{fluentToLifted: make([]int, len(fluents))}
	seen := map[string]int{}
	for _, f := range fluents {
		name := split(f.Signature())
		idx, ok := seen[name]
		if !ok {
			idx = li.numLifted
			seen[name] = idx
			li.numLifted++
		}
		li.fluentToLifted[f.Index()] = idx
	}
	return li
}

// NumLifted returns L, the number of distinct lifted-predicate symbols.
func (li *LiftedIndex) NumLifted() int { return li.numLifted }

// Of returns the lifted-predicate index of fluent f.
func (li *LiftedIndex) Of(f strips.FluentIdx) int { return li.fluentToLifted[f] }

// FeatureVector is a length-L vector of saturating counts, the per-node
// structural signature used to detect lifted-feature novelty.
type FeatureVector []uint8

// key returns a comparable value for map-indexing: Go slices aren't
// comparable, so the canonical table keys by the string form of the
// vector's bytes, which is exactly its byte content.
func (fv FeatureVector) key() string {
	return string(fv)
}

// FeatureKey is the stable identity of one canonical feature vector in the
// table; node.FeatPtr points at one of these so that "no duplicate feature
// vectors exist".
type FeatureKey struct {
	Vector FeatureVector
}

// FeatureTable is the canonicalization + occurrence-counting map over
// feature vectors. It may optionally be keyed by partition (the
// "partitioned lifted-feature counting" variant).
type FeatureTable struct {
	lifted *LiftedIndex

	global     map[string]*entry
	partitioned map[uint64]map[string]*entry
	byPartition bool
}

type entry struct {
	key   *FeatureKey
	count uint8
}

// NewFeatureTable builds a feature table over the given lifted index.
// byPartition selects the partitioned variant.
func NewFeatureTable(lifted *LiftedIndex, byPartition bool) *FeatureTable {
	t := &FeatureTable{lifted: lifted, byPartition: byPartition}
	if byPartition {
		t.partitioned = make(map[uint64]map[string]*entry)
	} else {
		t.global = make(map[string]*entry)
	}
	return t
}

// RootVector computes the length-L feature vector for a state from
// scratch, by counting how many true fluents map to each lifted predicate.
func (t *FeatureTable) RootVector(fluents []strips.FluentIdx) FeatureVector {
	fv := make(FeatureVector, t.lifted.NumLifted())
	for _, f := range fluents {
		li := t.lifted.Of(f)
		if fv[li] < 255 {
			fv[li]++
		}
	}
	return fv
}

// IncrementalVector derives a child's feature vector from its parent's
// canonical vector by applying the (deduplicated) added/deleted fluents of
// the action that produced the child.
func (t *FeatureTable) IncrementalVector(parent FeatureVector, added, deleted []strips.FluentIdx) FeatureVector {
	fv := make(FeatureVector, len(parent))
	copy(fv, parent)

	dedupAdd := dedup(added)
	dedupDel := dedup(deleted)

	for f := range dedupDel {
		li := t.lifted.Of(f)
		if fv[li] > 0 {
			fv[li]--
		}
	}
	for f := range dedupAdd {
		li := t.lifted.Of(f)
		if fv[li] < 255 {
			fv[li]++
		}
	}
	return fv
}

func dedup(fs []strips.FluentIdx) map[strips.FluentIdx]bool {
	m := make(map[strips.FluentIdx]bool, len(fs))
	for _, f := range fs {
		m[f] = true
	}
	return m
}

// Canonicalize looks up fv in the table (optionally scoped to partition),
// inserting it with count 1 if absent. It returns the canonical FeatureKey
// pointer to store as the node's FeatPtr, and the occurrence value
// recorded for the node: 0 if this is the first time fv has been seen,
// otherwise the prior count (before the saturating increment).
func (t *FeatureTable) Canonicalize(partition uint64, fv FeatureVector) (*FeatureKey, uint8) {
	m := t.global
	if t.byPartition {
		m = t.partitioned[partition]
		if m == nil {
			m = make(map[string]*entry)
			t.partitioned[partition] = m
		}
	}

	k := fv.key()
	e, ok := m[k]
	if !ok {
		e = &entry{key: &FeatureKey{Vector: fv}, count: 1}
		m[k] = e
		return e.key, 0
	}
	prior := e.count
	if e.count < 255 {
		e.count++
	}
	return e.key, prior
}

// AltH1 converts an occurrence count into the "-1/(1+occurrence)" score
// recorded as the node's AltH1.
func AltH1(occurrence uint8) float64 {
	return -1.0 / float64(1+int(occurrence))
}
