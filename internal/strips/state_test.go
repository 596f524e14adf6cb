package strips

import "testing"

func TestStateEntailsAndClone(t *testing.T) {
	s := NewState(4, []FluentIdx{0, 2})

	if !s.Entails(0) || !s.Entails(2) {
		t.Fatal("expected fluents 0 and 2 to hold")
	}
	if s.Entails(1) || s.Entails(3) {
		t.Fatal("expected fluents 1 and 3 to not hold")
	}

	clone := s.Clone()
	clone.insert(1)
	if s.Entails(1) {
		t.Error("mutating clone should not affect original")
	}
	if !clone.Entails(1) {
		t.Error("clone should reflect its own mutation")
	}
}

func TestProgressRegressLazyRoundTrip(t *testing.T) {
	s := NewState(4, []FluentIdx{0})
	a := &Action{
		Add: []FluentIdx{1, 2},
		Del: []FluentIdx{0},
	}

	var added, deleted []FluentIdx
	s.ProgressLazy(a, &added, &deleted)

	if !s.Entails(1) || !s.Entails(2) || s.Entails(0) {
		t.Fatalf("unexpected state after progress: %v", s.Fluents())
	}
	if len(added) != 2 || len(deleted) != 1 {
		t.Fatalf("expected 2 added, 1 deleted; got added=%v deleted=%v", added, deleted)
	}

	s.RegressLazy(added, deleted)
	if !s.Entails(0) || s.Entails(1) || s.Entails(2) {
		t.Fatalf("regress did not restore original state: %v", s.Fluents())
	}
}

func TestProgressLazyFiltersNoOps(t *testing.T) {
	// Adding an already-true fluent, or deleting an absent one, must not be
	// reported in added/deleted.
	s := NewState(4, []FluentIdx{1})
	a := &Action{
		Add: []FluentIdx{1, 2}, // 1 already true
		Del: []FluentIdx{3},    // 3 already false
	}

	var added, deleted []FluentIdx
	s.ProgressLazy(a, &added, &deleted)

	if len(added) != 1 || added[0] != 2 {
		t.Errorf("expected only fluent 2 reported added, got %v", added)
	}
	if len(deleted) != 0 {
		t.Errorf("expected nothing reported deleted, got %v", deleted)
	}
}

func TestConditionalEffects(t *testing.T) {
	s := NewState(4, []FluentIdx{0})
	a := &Action{
		CondEffects: []ConditionalEffect{
			{Pre: []FluentIdx{0}, Add: []FluentIdx{1}},
			{Pre: []FluentIdx{2}, Add: []FluentIdx{3}}, // precondition false, should not fire
		},
	}

	var added, deleted []FluentIdx
	s.ProgressLazy(a, &added, &deleted)

	if !s.Entails(1) {
		t.Error("conditional effect with satisfied precondition should have fired")
	}
	if s.Entails(3) {
		t.Error("conditional effect with unsatisfied precondition must not fire")
	}
}

func TestHashStableAcrossEqualStates(t *testing.T) {
	a := NewState(8, []FluentIdx{1, 3, 5})
	b := NewState(8, []FluentIdx{5, 3, 1})

	if a.Hash() != b.Hash() {
		t.Error("equal states must hash identically")
	}
	if !a.Equal(b) {
		t.Error("states with the same fluent set must compare equal")
	}
}

func TestGroundedProblemApplicableSetDeterministicOrder(t *testing.T) {
	fx := &Fixture{
		Fluents: []string{"a", "b", "c"},
		Init:    []int{0},
		Goal:    []int{2},
		Actions: []FixtureAction{
			{Name: "op_b", Pre: []int{0}, Add: []int{1}, Cost: 1},
			{Name: "op_c", Pre: []int{1}, Add: []int{2}, Cost: 1},
			{Name: "op_noop_from_a", Pre: []int{0}, Add: []int{}, Cost: 1},
		},
	}
	p, err := NewGroundedProblem(fx)
	if err != nil {
		t.Fatalf("NewGroundedProblem: %v", err)
	}

	init := p.Init()
	var applicable []ActionIdx
	p.ApplicableSetV2(init, &applicable)

	if len(applicable) != 2 {
		t.Fatalf("expected 2 applicable actions from init, got %d", len(applicable))
	}
	if applicable[0] != 0 || applicable[1] != 2 {
		t.Errorf("expected deterministic action-index order [0 2], got %v", applicable)
	}

	if p.Goal(init) {
		t.Error("init should not satisfy goal")
	}
	next := p.Next(init, 0)
	next = p.Next(next, 1)
	if !p.Goal(next) {
		t.Error("expected goal satisfied after op_b, op_c")
	}
}
