package search

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/planner/internal/config"
	"upside-down-research.com/oss/planner/internal/landmark"
	"upside-down-research.com/oss/planner/internal/o11y"
	"upside-down-research.com/oss/planner/internal/relaxedplan"
	"upside-down-research.com/oss/planner/internal/report"
	"upside-down-research.com/oss/planner/internal/search/novelty"
	"upside-down-research.com/oss/planner/internal/search/openlist"
	"upside-down-research.com/oss/planner/internal/strips"
)

// Status is the terminal state a Driver.Run returns: exactly one of a
// found plan, an exhausted open list, a tripped time budget, or a
// tripped memory budget.
type Status int

const (
	// StatusReady means Run has not been called yet.
	StatusReady Status = iota
	StatusSolved
	StatusExhausted
	StatusTimeOut
	StatusOOM
)

func (s Status) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusExhausted:
		return "exhausted"
	case StatusTimeOut:
		return "timeout"
	case StatusOOM:
		return "oom"
	default:
		return "ready"
	}
}

// Result summarizes one completed search run.
type Result struct {
	RunID      string
	Status     Status
	Plan       []strips.ActionIdx
	Cost       float32
	GoalNode   NodeRef
	Expansions int
	Generated  int
	Deadends   int
	BestGC     int
	Elapsed    time.Duration
}

// Driver runs the best-first search loop: pop, already-expanded check,
// depth-bound check, materialize, goal test, time/memory budget checks,
// closed-list check, expand, close.
type Driver struct {
	problem   strips.Problem
	arena     *Arena
	evaluator *Evaluator
	landmark  landmark.Manager
	closed    *Closed
	open      *OpenList
	opts      config.EngineOptions
	metrics   *o11y.SearchMetrics
	runID     string

	expansions int
	generated  int
	deadends   int
}

// NewDriver wires every search component from opts and returns a
// Driver ready to Run against problem. metrics may be nil to disable
// Prometheus instrumentation. runID stamps the run (callers that export
// metrics/reports under the same ID should generate it with
// github.com/google/uuid and pass it in, rather than let two components
// mint two different IDs for one run).
func NewDriver(problem strips.Problem, opts config.EngineOptions, metrics *o11y.SearchMetrics, runID string) *Driver {
	arena := NewArena()

	var goals []strips.FluentIdx
	for i := 0; i < problem.NumFluents(); i++ {
		if problem.IsInGoal(strips.FluentIdx(i)) {
			goals = append(goals, strips.FluentIdx(i))
		}
	}
	lm := landmark.NewGoalCountGraph(problem.NumFluents(), goals)
	oracle := relaxedplan.NewHMaxOracle(problem)

	metric := novelty.MetricWidth
	if opts.NoveltyMetric == config.NoveltyMetricCount {
		metric = novelty.MetricCount
	}
	partitions := novelty.NewPartitionTable(problem.NumFluents(), opts.NoveltyArity, 0, func(estimatedMB float64) {
		log.Warn("novelty arity downgraded to 1", "estimated_mb", estimatedMB)
	})
	partitions.SetSaturation(opts.NoveltySaturation)

	var splitter novelty.Splitter
	switch opts.LiftedSplitter {
	case config.SplitterUnderscorePrefix, "":
		splitter = novelty.DefaultSplitter
	}
	lifted := novelty.BuildLiftedIndex(problem.Fluents(), splitter)
	features := novelty.NewFeatureTable(lifted, opts.FeaturesByPartition)

	evaluator := NewEvaluator(arena, lm, oracle, partitions, metric, features, opts.RPTracking)
	closed := NewClosed(arena)

	open := buildOpenList(arena, opts)

	return &Driver{
		problem:   problem,
		arena:     arena,
		evaluator: evaluator,
		landmark:  lm,
		closed:    closed,
		open:      open,
		opts:      opts,
		metrics:   metrics,
		runID:     runID,
	}
}

func buildOpenList(arena *Arena, opts config.EngineOptions) *OpenList {
	primary := openlist.NodeComparer3H
	switch opts.OpenList {
	case config.OpenListBounded:
		return NewBoundedOpenList(arena, primary, opts.BoundedDepth)
	case config.OpenListDouble:
		return NewDoubleOpenList(arena, primary, openlist.AltNodeComparer3H, opts.BoundedDepth, opts.DoubleAltInterval)
	case config.OpenListPruned:
		ol := NewPrunedOpenList(arena, primary, opts.PrunedSoftLimit)
		if opts.PrunedAlternating {
			ol.SetAlternating(opts.PrunedBottom, opts.PrunedTop)
		}
		return ol
	default:
		return NewStandardOpenList(arena, primary)
	}
}

// RunID returns the uuid stamped for this driver's run.
func (d *Driver) RunID() string { return d.runID }

// Run executes the search loop to completion, applying the resource
// budgets from opts: wall-clock time, and resident memory
// sampled every MemorySampleInterval expansions via runtime.ReadMemStats.
//
// Budget exhaustion and infeasibility are reported through Result.Status,
// never as an error. The error return is reserved for internal invariant
// violations — an arena ref popped from the open list resolving to a nil
// node, which would mean the refcounting discipline in OpenList/Arena has
// a bug, not that the problem is hard.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	log.Info("search run starting", "run_id", d.runID, "open_list", d.opts.OpenList)

	root := d.arena.NewRoot(d.problem.Init())
	rootNode := d.arena.Get(root)

	var consumed, unconsumed []strips.FluentIdx
	d.landmark.ApplyState(rootNode.State().Fluents(), &consumed, &unconsumed)
	rootNode.GC = d.landmark.CountUnachieved()
	rootNode.H2 = float64(rootNode.GC)

	d.open.Insert(root)

	depthBound := d.opts.DepthBound
	if depthBound <= 0 {
		depthBound = 1 << 30
	}

	sc := &scratch{}

	for {
		select {
		case <-ctx.Done():
			return d.finish(StatusTimeOut, NoRef, start), nil
		default:
		}

		ref, ok := d.open.Pop()
		if !ok {
			return d.finish(StatusExhausted, NoRef, start), nil
		}
		n := d.arena.Get(ref)
		if n == nil {
			return nil, fmt.Errorf("search: popped ref %v resolved to a nil node", ref)
		}

		// Step 2: already-expanded means this is a stale duplicate popped
		// out of a second heap (double open list); discard and continue.
		if n.expanded {
			d.arena.Release(ref)
			continue
		}

		// Step 3: depth bound on g. Close without expanding.
		if float64(n.g) >= float64(depthBound) {
			n.expanded = true
			d.closed.Insert(ref)
			d.arena.Release(ref)
			continue
		}

		// Step 4: materialize state.
		if !n.HasState() {
			d.arena.EnsureState(d.problem, ref)
		}

		// Step 5: goal test.
		if d.problem.Goal(n.State()) {
			log.Info("goal found", "run_id", d.runID, "g", n.G(), "expansions", d.expansions)
			return d.finish(StatusSolved, ref, start), nil
		}

		// Step 6: wall-clock budget.
		if d.opts.TimeBudget > 0 && time.Since(start) > d.opts.TimeBudget {
			d.arena.Release(ref)
			return d.finish(StatusTimeOut, NoRef, start), nil
		}

		// Step 7: resident-memory budget, sampled every N expansions.
		sampleInterval := d.opts.MemorySampleInterval
		if sampleInterval <= 0 {
			sampleInterval = 10000
		}
		if d.opts.MemoryBudgetMB > 0 && d.expansions%sampleInterval == 0 {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			usedMB := float64(ms.Alloc) / (1024 * 1024)
			if usedMB > d.opts.MemoryBudgetMB {
				log.Warn("memory budget exceeded", "run_id", d.runID, "used_mb", usedMB, "budget_mb", d.opts.MemoryBudgetMB)
				d.arena.Release(ref)
				return d.finish(StatusOOM, NoRef, start), nil
			}
		}

		// Step 8: mark expanded, check the closed list.
		n.expanded = true
		switch d.closed.IsClosed(ref) {
		case RedundantClosed:
			d.arena.Release(ref)
			continue
		case Reopened, NotClosed:
			// fall through to expansion
		}

		// Step 9: process(node) — enumerate successors, evaluate, insert
		// survivors into open; discard relaxed dead-ends.
		d.expand(ref, n, sc)

		// Step 10: insert the expanded node into the closed list.
		d.closed.Insert(ref)
		d.arena.Release(ref)

		if bestGC, have := d.evaluator.BestGC(); have && d.metrics != nil {
			d.metrics.SetBestGC(bestGC)
		}
		if d.metrics != nil {
			d.metrics.SetOpenSize(d.open.Size())
		}
	}
}

func (d *Driver) expand(ref NodeRef, n *Node, sc *scratch) {
	d.expansions++
	if d.metrics != nil {
		d.metrics.RecordExpansion()
	}

	var applicable []strips.ActionIdx
	d.problem.ApplicableSetV2(n.State(), &applicable)
	d.generated += len(applicable)
	if d.metrics != nil {
		d.metrics.RecordGenerated(len(applicable))
	}

	// Replay the landmark deltas along the root-to-node path so the shared
	// graph reflects this node's path before its successors are evaluated.
	d.landmark.ResetGraph()
	chain := d.arena.Ancestors(ref)
	d.landmark.ApplyState(d.arena.Get(chain[0]).State().Fluents(), &sc.consumed, &sc.unconsumed)
	for _, r := range chain[1:] {
		anc := d.arena.Get(r)
		d.landmark.UpdateGraph(anc.LandConsumed, anc.LandUnconsumed)
	}

	for _, a := range applicable {
		cost := d.problem.Cost(n.State(), a)
		succ := d.arena.NewSuccessor(ref, a, n.G()+cost)
		d.arena.EnsureState(d.problem, succ)

		ok := d.evaluator.Evaluate(succ, sc)
		// Undo this successor's delta so its siblings see the same path.
		sn := d.arena.Get(succ)
		d.landmark.UndoGraph(sn.LandConsumed, sn.LandUnconsumed)
		if !ok {
			d.deadends++
			if d.metrics != nil {
				d.metrics.RecordDeadend()
			}
			d.arena.Discard(succ)
			continue
		}
		d.open.Insert(succ)
	}
}

func (d *Driver) finish(status Status, goalRef NodeRef, start time.Time) *Result {
	elapsed := time.Since(start)
	bestGC, _ := d.evaluator.BestGC()
	res := &Result{
		RunID:      d.runID,
		Status:     status,
		GoalNode:   goalRef,
		Expansions: d.expansions,
		Generated:  d.generated,
		Deadends:   d.deadends,
		BestGC:     bestGC,
		Elapsed:    elapsed,
	}

	if status == StatusSolved && goalRef != NoRef {
		chain := d.arena.Ancestors(goalRef)
		actions := make([]strips.ActionIdx, 0, len(chain)-1)
		var cost float32
		for _, r := range chain[1:] {
			node := d.arena.Get(r)
			actions = append(actions, node.Action())
			cost += d.problem.Actions()[node.Action()].CostVal
		}
		res.Plan = actions
		res.Cost = cost
	}

	log.Info("search run finished", "run_id", d.runID, "status", status.String(),
		"expansions", d.expansions, "generated", d.generated, "deadends", d.deadends,
		"elapsed", elapsed)
	return res
}

// ActionSignatures renders a plan as its action signature strings, in
// order, for use with report.Writer.WritePlan.
func (d *Driver) ActionSignatures(plan []strips.ActionIdx) []string {
	sigs := make([]string, len(plan))
	actions := d.problem.Actions()
	for i, a := range plan {
		sigs[i] = actions[a].Signature()
	}
	return sigs
}

// ToReportStatus converts a Status to the report package's JSON-facing
// Status enum.
func (s Status) ToReportStatus() report.Status {
	switch s {
	case StatusSolved:
		return report.StatusSolved
	case StatusTimeOut:
		return report.StatusTimeOut
	case StatusOOM:
		return report.StatusOOM
	default:
		return report.StatusExhausted
	}
}
