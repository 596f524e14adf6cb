// Package novelty implements the partition novelty table and the
// lifted-feature counter used to detect novel search states.
package novelty

import (
	"upside-down-research.com/oss/planner/internal/strips"
)

// MaxPartitionSize bounds r (the relevant-fluent counter) for the
// partition formula 1000*GC + r. This module takes the guard option: Partition reports !ok
// instead of colliding.
const MaxPartitionSize = 1000

// NoPartitionKey is the sentinel meaning "no partition".
const NoPartitionKey = ^uint64(0)

// Partition computes the partition key 1000*GC + r. ok is false (meaning
// "skip evaluation", mirroring the MAX_UNSIGNED sentinel) whenever r would
// make the formula collide with a neighbouring GC bucket.
func Partition(gc, r int) (key uint64, ok bool) {
	if r < 0 || r >= MaxPartitionSize || gc < 0 {
		return NoPartitionKey, false
	}
	return uint64(gc)*MaxPartitionSize + uint64(r), true
}

// DefaultMemoryBudgetMB is the default memory budget used to decide whether
// arity-2 tuples are affordable.
const DefaultMemoryBudgetMB = 2048

// onDowngrade is called (if non-nil) whenever the table silently downgrades
// its requested arity from 2 to 1 because of the memory budget.
type onDowngrade func(estimatedMB float64)

// PartitionTable is the per-(partition, tuple) occurrence-count table.
// Arity 1 is mandatory; arity 2 is optional and may be silently
// downgraded to 1 if it would exceed the memory budget.
type PartitionTable struct {
	numFluents int
	arity      int
	maxMB      float64
	saturate   uint32 // 0 means "no saturation"

	counts1 map[uint64][]uint32 // partition -> [numFluents]count
	counts2 map[uint64]map[uint64]uint32

	onDowngrade onDowngrade
}

// NewPartitionTable builds a table over numFluents fluents, requesting the
// given arity (1 or 2) subject to maxMB. downgradeCB is an optional
// callback invoked if the requested arity is downgraded.
func NewPartitionTable(numFluents, requestedArity int, maxMB float64, downgradeCB func(estimatedMB float64)) *PartitionTable {
	if maxMB <= 0 {
		maxMB = DefaultMemoryBudgetMB
	}
	t := &PartitionTable{
		numFluents:  numFluents,
		arity:       requestedArity,
		maxMB:       maxMB,
		counts1:     make(map[uint64][]uint32),
		counts2:     make(map[uint64]map[uint64]uint32),
		onDowngrade: downgradeCB,
	}
	if requestedArity >= 2 {
		// Rough per-entry cost estimate: one uint32 per tuple, tuples are
		// sparse (map-backed) so this is a ceiling, not an exact figure —
		// good enough to decide whether arity 2 is affordable.
		estMB := float64(numFluents) * float64(numFluents) * 4.0 / (1024.0 * 1024.0)
		if estMB > t.maxMB {
			t.arity = 1
			if t.onDowngrade != nil {
				t.onDowngrade(estMB)
			}
		}
	}
	return t
}

// SetSaturation configures count saturation at threshold (0 disables
// saturation, the default).
func (t *PartitionTable) SetSaturation(threshold uint32) { t.saturate = threshold }

// Arity returns the table's effective arity (possibly downgraded).
func (t *PartitionTable) Arity() int { return t.arity }

// pairIndex computes the arity-2 tuple index min(a,b) + max(a,b)*F.
// Returns ok=false if a==b (ignored for arity 2).
func pairIndex(a, b strips.FluentIdx, numFluents int) (idx uint64, ok bool) {
	if a == b {
		return 0, false
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return uint64(lo) + uint64(hi)*uint64(numFluents), true
}

// Metric selects between the classical-width minimum-count result and the
// "-1/(1+count)" count-mode metric.
type Metric int

const (
	// MetricWidth returns the raw minimum tuple count (lower = more novel,
	// 0 = genuinely novel).
	MetricWidth Metric = iota
	// MetricCount returns -1/(1+minCount), always in (-1, 0].
	MetricCount
)

// Evaluate scores node's state against its partition, incrementing counts
// as a side effect. If node's partition is NoPartitionKey, evaluation is
// skipped and 0 is returned.
func (t *PartitionTable) Evaluate(partition uint64, fluents []strips.FluentIdx, metric Metric) float64 {
	if partition == NoPartitionKey {
		return 0
	}

	row := t.counts1[partition]
	if row == nil {
		row = make([]uint32, t.numFluents)
		t.counts1[partition] = row
	}

	minCount := ^uint32(0)
	for _, f := range fluents {
		c := row[f]
		if c < minCount {
			minCount = c
		}
		row[f] = t.bump(c)
	}

	if t.arity >= 2 {
		pairs := t.counts2[partition]
		if pairs == nil {
			pairs = make(map[uint64]uint32)
			t.counts2[partition] = pairs
		}
		for i := 0; i < len(fluents); i++ {
			for j := i + 1; j < len(fluents); j++ {
				idx, ok := pairIndex(fluents[i], fluents[j], t.numFluents)
				if !ok {
					continue
				}
				c := pairs[idx]
				if c < minCount {
					minCount = c
				}
				pairs[idx] = t.bump(c)
			}
		}
	}

	if len(fluents) == 0 {
		minCount = 0
	}

	if metric == MetricCount {
		return -1.0 / float64(1+minCount)
	}
	return float64(minCount)
}

func (t *PartitionTable) bump(c uint32) uint32 {
	if t.saturate > 0 && c >= t.saturate {
		return c
	}
	return c + 1
}

// Count returns the current occurrence count for a single-fluent tuple in
// a partition, used by tests.
func (t *PartitionTable) Count(partition uint64, f strips.FluentIdx) uint32 {
	row := t.counts1[partition]
	if row == nil {
		return 0
	}
	return row[f]
}
