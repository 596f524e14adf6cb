package search

import (
	"upside-down-research.com/oss/planner/internal/landmark"
	"upside-down-research.com/oss/planner/internal/relaxedplan"
	"upside-down-research.com/oss/planner/internal/search/novelty"
	"upside-down-research.com/oss/planner/internal/strips"
)

// Evaluator is the composite evaluator: it runs the
// fixed five-step pipeline over a newly created node, wiring the landmark
// manager, relaxed-plan oracle, partition novelty table and
// lifted-feature counter. The landmark delta it applies is left in place;
// undoing it is up to the caller.
type Evaluator struct {
	arena    *Arena
	landmark landmark.Manager
	oracle   relaxedplan.Oracle

	partitions *novelty.PartitionTable
	metric     novelty.Metric
	features   *novelty.FeatureTable

	rpTracking bool
	bestGC     int
	haveBestGC bool
}

// NewEvaluator wires the four evaluation components together.
func NewEvaluator(arena *Arena, lm landmark.Manager, oracle relaxedplan.Oracle, partitions *novelty.PartitionTable, metric novelty.Metric, features *novelty.FeatureTable, rpTracking bool) *Evaluator {
	return &Evaluator{
		arena:      arena,
		landmark:   lm,
		oracle:     oracle,
		partitions: partitions,
		metric:     metric,
		features:   features,
		rpTracking: rpTracking,
	}
}

// BestGC returns the lowest goal-count observed by this evaluator so far,
// or (0, false) if no node has been evaluated yet.
func (e *Evaluator) BestGC() (int, bool) {
	return e.bestGC, e.haveBestGC
}

// scratch buffers reused across Evaluate calls to avoid per-node
// allocation; the evaluator is guaranteed single-flight per arena.
type scratch struct {
	consumed, unconsumed []strips.FluentIdx
	preferred            []strips.ActionIdx
	relaxedAdds          []strips.FluentIdx
}

// Evaluate runs the five-step pipeline against ref, whose state must
// already be materialized. It returns false if the node is a relaxed-
// deadend and must be discarded by the caller.
func (e *Evaluator) Evaluate(ref NodeRef, sc *scratch) bool {
	n := e.arena.Get(ref)
	parent := e.arena.Get(n.parent)

	// Step 1: eval_landmark_delta. n.Added/n.Deleted are the resolved
	// post-state delta (conditional effects folded in, no-ops filtered),
	// materialized by EnsureState — not the action's static declaration.
	e.landmark.ApplyAction(n.Added, n.Deleted, &sc.consumed, &sc.unconsumed)
	n.LandConsumed = append([]strips.FluentIdx(nil), sc.consumed...)
	n.LandUnconsumed = append([]strips.FluentIdx(nil), sc.unconsumed...)
	n.GC = e.landmark.CountUnachieved()
	if !e.haveBestGC || n.GC < e.bestGC {
		e.bestGC = n.GC
		e.haveBestGC = true
	}

	// Step 2: conditional relaxed-plan refresh.
	gcDecreased := parent != nil && n.GC < parent.GC
	if e.rpTracking && gcDecreased {
		var h float32
		e.oracle.Eval(n.state, &h, &sc.preferred, &sc.relaxedAdds)
		if h == relaxedplan.Infeasible {
			n.RelaxedDeadend = true
			return false
		}
		n.RPVec = append([]strips.FluentIdx(nil), sc.relaxedAdds...)
		n.RPSet = make(map[strips.FluentIdx]bool, len(n.RPVec))
		for _, f := range n.RPVec {
			n.RPSet[f] = true
		}
	}

	// Step 3: r = rp_fluents_achieved_along_path.
	n.R = e.relevantFluentsAchievedAlongPath(ref)

	// Step 4: partition novelty -> H1.
	partition, ok := novelty.Partition(n.GC, n.R)
	if ok {
		n.Partition = partition
		n.H1 = e.partitions.Evaluate(partition, n.state.Fluents(), e.metric)
	} else {
		n.Partition = novelty.NoPartitionKey
		n.H1 = 0
	}

	// Step 5: lifted-feature count -> AltH1. Use the resolved post-state
	// delta (n.Added/n.Deleted), not the action's static declaration: the
	// feature vector must stay idempotent under conditional effects and
	// no-op adds/deletes, exactly as the materialized State does.
	var fv novelty.FeatureVector
	if parent != nil && parent.FeatPtr != nil {
		fv = e.features.IncrementalVector(parent.FeatPtr.Vector, n.Added, n.Deleted)
	} else {
		fv = e.features.RootVector(n.state.Fluents())
	}
	key, occurrence := e.features.Canonicalize(n.Partition, fv)
	n.FeatPtr = key
	n.AltH1 = novelty.AltH1(occurrence)

	return true
}

// relevantFluentsAchievedAlongPath walks up from ref to the nearest
// ancestor carrying a non-nil RPSet, then counts the distinct fluents in
// that set that were added by actions along the sub-path back down to ref.
func (e *Evaluator) relevantFluentsAchievedAlongPath(ref NodeRef) int {
	var subpath []NodeRef
	var rpOwner *Node
	for r := ref; r != NoRef; {
		cur := e.arena.Get(r)
		subpath = append(subpath, r)
		if cur.RPSet != nil {
			rpOwner = cur
			break
		}
		r = cur.parent
	}
	if rpOwner == nil {
		return 0
	}

	achieved := make(map[strips.FluentIdx]bool)
	// subpath is ref..rpOwner (inclusive); walk it in root-to-node order,
	// skipping the rp-owner itself (its action predates rp-set adoption).
	// node.Added is the resolved post-state delta (conditional effects
	// folded in, no-ops filtered), not the action's static declaration.
	for i := len(subpath) - 2; i >= 0; i-- {
		node := e.arena.Get(subpath[i])
		for _, f := range node.Added {
			if rpOwner.RPSet[f] {
				achieved[f] = true
			}
		}
	}
	return len(achieved)
}
