// Package relaxedplan implements the consumed relaxed-plan oracle contract.
// The extraction algorithm itself is out of scope; HMaxOracle is a
// reference delete-relaxation fixed-point implementation sufficient to
// drive the engine end to end in tests and the CLI demo — it is not a
// tuned planner.
package relaxedplan

import (
	"math"

	"upside-down-research.com/oss/planner/internal/strips"
)

// Infeasible is returned as the heuristic value when no relaxed plan
// exists from the given state.
const Infeasible = math.MaxFloat32

// Oracle is the consumed relaxed-plan contract: given a state,
// estimate a relaxed-plan cost and report the fluents some relaxed plan
// would add ("relevant fluents", used by the engine's r-counter).
type Oracle interface {
	Eval(s *strips.State, outH *float32, outPreferred *[]strips.ActionIdx, outRelaxedAdds *[]strips.FluentIdx)
}

// HMaxOracle computes the delete-relaxation fixed point (ignoring delete
// lists) breadth-first over fluents, then extracts one relaxed plan by
// walking back from the goal through the first action that achieved each
// needed fluent — the textbook hFF-style relaxed-plan extraction.
type HMaxOracle struct {
	problem strips.Problem
}

// NewHMaxOracle builds an oracle bound to a grounded problem.
func NewHMaxOracle(problem strips.Problem) *HMaxOracle {
	return &HMaxOracle{problem: problem}
}

// Eval computes the relaxed plan from state s. outH receives Infeasible if
// the delete-relaxation fixed point never reaches all goal fluents.
// outPreferred receives the first-layer applicable actions that were used
// in the relaxed plan. outRelaxedAdds receives every fluent added by some
// action in the extracted relaxed plan (the "relevant fluents" set).
func (o *HMaxOracle) Eval(s *strips.State, outH *float32, outPreferred *[]strips.ActionIdx, outRelaxedAdds *[]strips.FluentIdx) {
	*outPreferred = (*outPreferred)[:0]
	*outRelaxedAdds = (*outRelaxedAdds)[:0]

	actions := o.problem.Actions()
	reached := make([]bool, o.problem.NumFluents())
	achievedBy := make([]strips.ActionIdx, o.problem.NumFluents())
	for i := range achievedBy {
		achievedBy[i] = strips.NoOp
	}
	for _, f := range s.Fluents() {
		reached[f] = true
	}

	applied := make([]bool, len(actions))
	changed := true
	for changed {
		changed = false
		for _, a := range actions {
			if applied[a.Idx] {
				continue
			}
			if !relaxedApplicable(a, reached) {
				continue
			}
			applied[a.Idx] = true
			changed = true
			for _, f := range a.AddVec() {
				if !reached[f] {
					reached[f] = true
					achievedBy[f] = a.Idx
				}
			}
			for _, ce := range a.CeffVec() {
				if relaxedCondApplicable(&ce, reached) {
					for _, f := range ce.Add {
						if !reached[f] {
							reached[f] = true
							achievedBy[f] = a.Idx
						}
					}
				}
			}
		}
	}

	var unreachedGoal bool
	var goalFluents []strips.FluentIdx
	for i := 0; i < o.problem.NumFluents(); i++ {
		if o.problem.IsInGoal(strips.FluentIdx(i)) {
			goalFluents = append(goalFluents, strips.FluentIdx(i))
			if !reached[i] {
				unreachedGoal = true
			}
		}
	}

	if unreachedGoal {
		*outH = Infeasible
		return
	}

	// Extract a relaxed plan by walking back from the goal fluents through
	// the actions that first achieved each needed fluent.
	needed := map[strips.FluentIdx]bool{}
	for _, g := range goalFluents {
		needed[g] = true
	}
	usedAction := map[strips.ActionIdx]bool{}
	queue := append([]strips.FluentIdx{}, goalFluents...)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		a := achievedBy[f]
		if a == strips.NoOp || usedAction[a] {
			continue
		}
		usedAction[a] = true
		for _, pre := range actions[a].Pre {
			if !needed[pre] {
				needed[pre] = true
				queue = append(queue, pre)
			}
		}
	}

	seenAdd := map[strips.FluentIdx]bool{}
	for a := range usedAction {
		firstLayer := true
		for _, pre := range actions[a].Pre {
			if !s.Entails(pre) {
				firstLayer = false
				break
			}
		}
		if firstLayer {
			*outPreferred = append(*outPreferred, a)
		}
		for _, f := range actions[a].AddVec() {
			if !seenAdd[f] {
				seenAdd[f] = true
				*outRelaxedAdds = append(*outRelaxedAdds, f)
			}
		}
	}

	*outH = float32(len(usedAction))
}

func relaxedApplicable(a *strips.Action, reached []bool) bool {
	for _, f := range a.Pre {
		if !reached[f] {
			return false
		}
	}
	return true
}

func relaxedCondApplicable(ce *strips.ConditionalEffect, reached []bool) bool {
	for _, f := range ce.Pre {
		if !reached[f] {
			return false
		}
	}
	return true
}
