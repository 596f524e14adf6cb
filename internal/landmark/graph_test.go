package landmark

import (
	"testing"

	"upside-down-research.com/oss/planner/internal/strips"
)

func TestGoalCountGraphApplyStateAndUnachieved(t *testing.T) {
	g := NewGoalCountGraph(4, []strips.FluentIdx{1, 3})

	if g.CountUnachieved() != 2 {
		t.Fatalf("expected 2 unachieved goals initially, got %d", g.CountUnachieved())
	}

	var consumed, unconsumed []strips.FluentIdx
	g.ApplyState([]strips.FluentIdx{0, 1}, &consumed, &unconsumed)

	if g.CountUnachieved() != 1 {
		t.Fatalf("expected 1 unachieved goal after applying state with fluent 1, got %d", g.CountUnachieved())
	}
	if len(consumed) != 1 || consumed[0] != 1 {
		t.Errorf("expected consumed=[1], got %v", consumed)
	}
}

func TestPathReplayLaw(t *testing.T) {
	// Replaying a node's ancestry of deltas in order must produce the
	// same graph state as computing from scratch.
	g := NewGoalCountGraph(4, []strips.FluentIdx{0, 2})

	a1 := &strips.Action{Add: []strips.FluentIdx{0}}
	a2 := &strips.Action{Add: []strips.FluentIdx{2}}

	var c1, u1, c2, u2 []strips.FluentIdx
	g.ApplyAction(a1.AddVec(), a1.DelVec(), &c1, &u1)
	g.ApplyAction(a2.AddVec(), a2.DelVec(), &c2, &u2)

	if g.CountUnachieved() != 0 {
		t.Fatalf("expected both goals achieved, got %d unachieved", g.CountUnachieved())
	}

	g.ResetGraph()
	if g.CountUnachieved() != 2 {
		t.Fatalf("reset should restore unachieved count to 2, got %d", g.CountUnachieved())
	}

	g.UpdateGraph(c1, u1)
	g.UpdateGraph(c2, u2)
	if g.CountUnachieved() != 0 {
		t.Fatalf("replay should reproduce the same graph state, got %d unachieved", g.CountUnachieved())
	}

	g.UndoGraph(c2, u2)
	if g.CountUnachieved() != 1 {
		t.Fatalf("undoing the last delta should restore 1 unachieved, got %d", g.CountUnachieved())
	}
}

func TestGoalCountGraphApplyActionFollowsResolvedDelta(t *testing.T) {
	// ApplyAction must react to the true, already-resolved post-state delta
	// (conditional effects folded in, no-ops filtered), not to an action's
	// static AddVec/DelVec declaration.
	g := NewGoalCountGraph(4, []strips.FluentIdx{1, 3})

	a := &strips.Action{
		Pre: []strips.FluentIdx{0},
		Add: []strips.FluentIdx{1},
		CondEffects: []strips.ConditionalEffect{
			{Pre: []strips.FluentIdx{0}, Add: []strips.FluentIdx{3}},
		},
	}
	s := strips.NewState(4, []strips.FluentIdx{0})

	var added, deleted, consumed, unconsumed []strips.FluentIdx
	s.ProgressLazy(a, &added, &deleted)
	g.ApplyAction(added, deleted, &consumed, &unconsumed)

	if g.CountUnachieved() != 0 {
		t.Fatalf("expected both goal literals consumed via resolved conditional effect, got %d unachieved", g.CountUnachieved())
	}
	if len(consumed) != 2 {
		t.Fatalf("expected consumed to report both goal literals (direct add and conditional add), got %v", consumed)
	}

	// Re-applying the same resolved delta against the already-achieved
	// state is a no-op at the State level, so ProgressLazy reports nothing
	// new, and ApplyAction must not perturb the counters either.
	var added2, deleted2, consumed2, unconsumed2 []strips.FluentIdx
	s.ProgressLazy(a, &added2, &deleted2)
	g.ApplyAction(added2, deleted2, &consumed2, &unconsumed2)

	if g.CountUnachieved() != 0 {
		t.Fatalf("expected unachieved count unchanged by a no-op delta, got %d", g.CountUnachieved())
	}
	if len(consumed2) != 0 || len(unconsumed2) != 0 {
		t.Fatalf("expected no consumed/unconsumed from a no-op delta, got consumed=%v unconsumed=%v", consumed2, unconsumed2)
	}
}
