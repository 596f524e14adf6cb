// Package landmark implements the consumed landmark/goal-count manager.
// Landmark-graph construction is out of scope; GoalCountGraph is the
// reference contract implementation: a flat unachieved-goal-literal
// counter that supports the same apply/update/undo/reset lifecycle a
// real landmark graph would.
package landmark

import "upside-down-research.com/oss/planner/internal/strips"

// Manager is the consumed landmark-graph contract. All methods
// operate incrementally along the current search path; the driver
// guarantees the graph reflects the root-to-node path before each
// evaluation.
type Manager interface {
	ApplyState(fluents []strips.FluentIdx, outConsumed, outUnconsumed *[]strips.FluentIdx)
	ApplyAction(added, deleted []strips.FluentIdx, outConsumed, outUnconsumed *[]strips.FluentIdx)
	ResetGraph()
	UpdateGraph(consumed, unconsumed []strips.FluentIdx)
	UndoGraph(consumed, unconsumed []strips.FluentIdx)
	CountUnachieved() int
}

// GoalCountGraph is the simplest faithful landmark manager: its "landmarks"
// are exactly the problem's goal literals, and CountUnachieved is the
// number of goal literals not currently true. consumed/unconsumed record,
// for a single apply, which goal literals flipped to achieved/unachieved.
type GoalCountGraph struct {
	isGoal     []bool
	achieved   []bool
	unachieved int
}

// NewGoalCountGraph builds a manager over numFluents fluents, where goals
// lists the goal literals (landmarks).
func NewGoalCountGraph(numFluents int, goals []strips.FluentIdx) *GoalCountGraph {
	g := &GoalCountGraph{
		isGoal:   make([]bool, numFluents),
		achieved: make([]bool, numFluents),
	}
	for _, f := range goals {
		g.isGoal[f] = true
		g.unachieved++
	}
	return g
}

// ApplyState recomputes achieved/unachieved from scratch against a full
// fluent set (used once, for the root). Any goal literal present in
// fluents is reported consumed; any goal literal the graph previously
// considered achieved but that is absent from fluents is reported
// unconsumed (regression support).
func (g *GoalCountGraph) ApplyState(fluents []strips.FluentIdx, outConsumed, outUnconsumed *[]strips.FluentIdx) {
	*outConsumed = (*outConsumed)[:0]
	*outUnconsumed = (*outUnconsumed)[:0]
	present := make(map[strips.FluentIdx]bool, len(fluents))
	for _, f := range fluents {
		present[f] = true
	}
	for f := range g.isGoal {
		if !g.isGoal[f] {
			continue
		}
		fi := strips.FluentIdx(f)
		if present[fi] && !g.achieved[f] {
			g.achieved[f] = true
			g.unachieved--
			*outConsumed = append(*outConsumed, fi)
		} else if !present[fi] && g.achieved[f] {
			g.achieved[f] = false
			g.unachieved++
			*outUnconsumed = append(*outUnconsumed, fi)
		}
	}
}

// ApplyAction applies the incremental effect of an action to the landmark
// counters, given the fluents that actually flipped true (added) and false
// (deleted) in the post-state — conditional effects resolved, no-ops
// filtered, e.g. as returned by strips.State.ProgressLazy. Every added
// fluent that is a goal literal and was not yet achieved becomes consumed;
// every deleted fluent that is a goal literal and was achieved becomes
// unconsumed.
func (g *GoalCountGraph) ApplyAction(added, deleted []strips.FluentIdx, outConsumed, outUnconsumed *[]strips.FluentIdx) {
	*outConsumed = (*outConsumed)[:0]
	*outUnconsumed = (*outUnconsumed)[:0]
	for _, f := range added {
		if int(f) < len(g.isGoal) && g.isGoal[f] && !g.achieved[f] {
			g.achieved[f] = true
			g.unachieved--
			*outConsumed = append(*outConsumed, f)
		}
	}
	for _, f := range deleted {
		if int(f) < len(g.isGoal) && g.isGoal[f] && g.achieved[f] {
			g.achieved[f] = false
			g.unachieved++
			*outUnconsumed = append(*outUnconsumed, f)
		}
	}
}

// ResetGraph clears all achieved markers, returning the graph to the state
// where every goal literal is unachieved. Used before a root-to-node
// path replay.
func (g *GoalCountGraph) ResetGraph() {
	for f := range g.achieved {
		g.achieved[f] = false
	}
	g.unachieved = 0
	for f := range g.isGoal {
		if g.isGoal[f] {
			g.unachieved++
		}
	}
}

// UpdateGraph replays a previously recorded consumed/unconsumed delta
// forward, without recomputation.
func (g *GoalCountGraph) UpdateGraph(consumed, unconsumed []strips.FluentIdx) {
	for _, f := range consumed {
		if !g.achieved[f] {
			g.achieved[f] = true
			g.unachieved--
		}
	}
	for _, f := range unconsumed {
		if g.achieved[f] {
			g.achieved[f] = false
			g.unachieved++
		}
	}
}

// UndoGraph reverses a single delta previously applied by UpdateGraph.
func (g *GoalCountGraph) UndoGraph(consumed, unconsumed []strips.FluentIdx) {
	for _, f := range consumed {
		if g.achieved[f] {
			g.achieved[f] = false
			g.unachieved++
		}
	}
	for _, f := range unconsumed {
		if !g.achieved[f] {
			g.achieved[f] = true
			g.unachieved--
		}
	}
}

// CountUnachieved returns the number of goal literals not currently true.
func (g *GoalCountGraph) CountUnachieved() int {
	return g.unachieved
}
