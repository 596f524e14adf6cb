package novelty

import (
	"testing"

	"upside-down-research.com/oss/planner/internal/strips"
)

func TestPartitionFormulaGuard(t *testing.T) {
	key, ok := Partition(2, 5)
	if !ok || key != 2005 {
		t.Fatalf("expected (2005, true), got (%d, %v)", key, ok)
	}

	_, ok = Partition(2, MaxPartitionSize)
	if ok {
		t.Error("expected partition to refuse r >= MaxPartitionSize rather than collide")
	}
}

func TestPartitionTableNoveltyDecreasesWithRepetition(t *testing.T) {
	tbl := NewPartitionTable(8, 1, DefaultMemoryBudgetMB, nil)

	p, _ := Partition(0, 0)
	first := tbl.Evaluate(p, []strips.FluentIdx{1, 2}, MetricWidth)
	second := tbl.Evaluate(p, []strips.FluentIdx{1, 2}, MetricWidth)

	if first != 0 {
		t.Errorf("first visit should be maximally novel (min count 0), got %v", first)
	}
	if second != 1 {
		t.Errorf("second visit should see min count 1, got %v", second)
	}
	if tbl.Count(p, 1) != 2 {
		t.Errorf("expected fluent 1 counted twice in partition, got %d", tbl.Count(p, 1))
	}
}

func TestPartitionTableDowngradesArityOnMemoryBudget(t *testing.T) {
	var downgraded bool
	tbl := NewPartitionTable(100000, 2, 0.001, func(mb float64) { downgraded = true })

	if !downgraded {
		t.Error("expected arity downgrade callback to fire for an oversized arity-2 table")
	}
	if tbl.Arity() != 1 {
		t.Errorf("expected arity downgraded to 1, got %d", tbl.Arity())
	}
}

func TestLiftedIndexSplitsOnUnderscorePrefix(t *testing.T) {
	fluents := []strips.Fluent{
		{Idx: 0, Sig: "at_robot_room1"},
		{Idx: 1, Sig: "at_robot_room2"},
		{Idx: 2, Sig: "holding_key1"},
	}
	li := BuildLiftedIndex(fluents, nil)

	if li.NumLifted() != 2 {
		t.Fatalf("expected 2 distinct lifted predicates, got %d", li.NumLifted())
	}
	if li.Of(0) != li.Of(1) {
		t.Error("at_robot_room1 and at_robot_room2 should map to the same lifted predicate")
	}
	if li.Of(0) == li.Of(2) {
		t.Error("at_* and holding_* should map to different lifted predicates")
	}
}

func TestFeatureTableCanonicalizationAndIdempotence(t *testing.T) {
	fluents := []strips.Fluent{
		{Idx: 0, Sig: "p_a"},
		{Idx: 1, Sig: "p_b"},
		{Idx: 2, Sig: "q_a"},
	}
	li := BuildLiftedIndex(fluents, nil)
	ft := NewFeatureTable(li, false)

	root := ft.RootVector([]strips.FluentIdx{0, 2})
	key1, occ1 := ft.Canonicalize(NoPartitionKey, root)
	if occ1 != 0 {
		t.Errorf("first insertion should record occurrence 0, got %d", occ1)
	}

	// "Feature idempotence" law: rebuilding from scratch must
	// equal incremental construction from the parent.
	child := ft.IncrementalVector(root, []strips.FluentIdx{1}, []strips.FluentIdx{0})
	rebuilt := ft.RootVector([]strips.FluentIdx{1, 2})

	if string(child) != string(rebuilt) {
		t.Errorf("incremental vector %v != rebuilt vector %v", child, rebuilt)
	}

	key2, occ2 := ft.Canonicalize(NoPartitionKey, root)
	if key2 != key1 {
		t.Error("canonicalization of an equal vector must return the same pointer")
	}
	if occ2 != 1 {
		t.Errorf("second canonicalization of the same vector should report prior count 1, got %d", occ2)
	}

	_, occ3 := ft.Canonicalize(NoPartitionKey, root)
	if occ3 != 2 {
		t.Errorf("third canonicalization should report prior count 2, got %d", occ3)
	}
}

func TestDuplicatesInAddedDeletedAreCollapsed(t *testing.T) {
	fluents := []strips.Fluent{{Idx: 0, Sig: "p_a"}, {Idx: 1, Sig: "q_b"}}
	li := BuildLiftedIndex(fluents, nil)
	ft := NewFeatureTable(li, false)

	parent := ft.RootVector(nil)
	// Duplicate 1 in added must only increment its lifted count once.
	child := ft.IncrementalVector(parent, []strips.FluentIdx{1, 1}, nil)
	if child[li.Of(1)] != 1 {
		t.Errorf("expected lifted count 1 after deduped double-add, got %d", child[li.Of(1)])
	}
}
