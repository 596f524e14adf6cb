// Package search implements the core of the planner: the node lifecycle,
// the composite evaluator, the closed list and the search driver. Novelty
// scoring lives in the novelty subpackage and the open-list family in the
// openlist subpackage.
package search

import (
	"upside-down-research.com/oss/planner/internal/search/novelty"
	"upside-down-research.com/oss/planner/internal/strips"
)

// NodeRef is an arena index identifying a Node. It replaces raw pointers so
// that parent links and multi-heap membership can be refcounted explicitly.
type NodeRef int32

// NoRef is the NodeRef sentinel for "no parent" (the root).
const NoRef NodeRef = -1

// NoPartition is the sentinel meaning "evaluation skipped" for the
// partition novelty table.
const NoPartition = ^uint64(0)

// Node is one element of the search tree. State may be nil
// (unmaterialized) for any non-root node until EnsureState is called.
type Node struct {
	state  *strips.State
	parent NodeRef
	action strips.ActionIdx
	self   NodeRef

	g     float32
	gUnit int

	H1    float64 // partition-novelty metric
	AltH1 float64 // lifted-feature novelty metric
	H2    float64 // secondary heuristic (GC, by default)
	H3    float64 // tertiary heuristic

	R         int    // relevant-fluent counter
	Partition uint64 // 1000*GC + r, or NoPartition
	M         uint8  // saturating occurrence count for this node's partition tuple
	GC        int    // goal-count

	LandConsumed   []strips.FluentIdx
	LandUnconsumed []strips.FluentIdx

	// Added and Deleted are the fluents that actually flipped true/false when
	// this node's state was materialized from its parent: conditional
	// effects resolved, no-ops filtered. Populated by EnsureState; nil for
	// the root and for any node whose state has not yet been materialized.
	Added   []strips.FluentIdx
	Deleted []strips.FluentIdx

	RPSet map[strips.FluentIdx]bool // nil unless this node carries a fresh relaxed-plan set
	RPVec []strips.FluentIdx

	FeatPtr *novelty.FeatureKey // canonical lifted-feature vector, owned by the feature table

	RelaxedDeadend bool
	closedFlag     bool
	expanded       bool // set once this node has been processed; a later pop of the same node from a second heap is then skipped

	heapRefs  int // number of open-list heaps currently holding this node
	openDelete int
	popCount   int
}

// Self returns this node's own arena reference.
func (n *Node) Self() NodeRef { return n.self }

// Parent returns the parent's arena reference, or NoRef for the root.
func (n *Node) Parent() NodeRef { return n.parent }

// Action returns the action that produced this node, or strips.NoOp for the
// root.
func (n *Node) Action() strips.ActionIdx { return n.action }

// G returns the path cost.
func (n *Node) G() float32 { return n.g }

// GUnit returns the hop count.
func (n *Node) GUnit() int { return n.gUnit }

// Closed reports whether this node has been inserted into the closed list.
func (n *Node) Closed() bool { return n.closedFlag }

// H1n, AltH1n, H2n, H3n and Gn satisfy openlist.Item so that a *Node can be
// inserted directly into any open-list variant.
func (n *Node) H1n() float64    { return n.H1 }
func (n *Node) AltH1n() float64 { return n.AltH1 }
func (n *Node) H2n() float64    { return n.H2 }
func (n *Node) H3n() float64    { return n.H3 }
func (n *Node) Gn() float64     { return float64(n.g) }

// HasState reports whether this node's state has already been
// materialized.
func (n *Node) HasState() bool { return n.state != nil }

// State returns the node's materialized state. Callers must call
// EnsureState first if HasState is false.
func (n *Node) State() *strips.State { return n.state }

// Arena owns the lifetime of every Node produced during one engine
// invocation. Nodes are released from heaps and the closed list via
// explicit refcounts, rather than relying on an ownership model where a
// node can be freed while a second heap still holds a live reference to
// it.
type Arena struct {
	nodes    []*Node
	freelist []NodeRef
}

// NewArena creates an empty node arena.
func NewArena() *Arena {
	return &Arena{}
}

// NewRoot creates the root node: a fresh state clone, no parent, action
// NoOp, g=0, gUnit=0.
func (a *Arena) NewRoot(state *strips.State) NodeRef {
	n := &Node{
		state:  state,
		parent: NoRef,
		action: strips.NoOp,
	}
	return a.put(n)
}

// NewSuccessor creates a successor node with an unmaterialized state.
func (a *Arena) NewSuccessor(parent NodeRef, action strips.ActionIdx, g float32) NodeRef {
	p := a.Get(parent)
	n := &Node{
		parent: parent,
		action: action,
		g:      g,
		gUnit:  p.gUnit + 1,
	}
	return a.put(n)
}

func (a *Arena) put(n *Node) NodeRef {
	if len(a.freelist) > 0 {
		ref := a.freelist[len(a.freelist)-1]
		a.freelist = a.freelist[:len(a.freelist)-1]
		n.self = ref
		a.nodes[ref] = n
		return ref
	}
	ref := NodeRef(len(a.nodes))
	n.self = ref
	a.nodes = append(a.nodes, n)
	return ref
}

// Get dereferences a NodeRef. Returns nil if the node has already been
// destroyed — callers that hold a stale ref after Release have an internal
// invariant violation.
func (a *Arena) Get(ref NodeRef) *Node {
	if ref < 0 || int(ref) >= len(a.nodes) {
		return nil
	}
	return a.nodes[ref]
}

// Retain increments the heap-reference count when a node is inserted into
// an open-list heap.
func (a *Arena) Retain(ref NodeRef) {
	if n := a.Get(ref); n != nil {
		n.heapRefs++
	}
}

// Release decrements the heap-reference count when a node is evicted from
// or popped out of an open-list heap, destroying the node once no heap and
// no closed-list entry still reference it.
func (a *Arena) Release(ref NodeRef) {
	n := a.Get(ref)
	if n == nil {
		return
	}
	n.heapRefs--
	a.maybeFree(n)
}

// MarkClosed records that the closed list now holds this node, adding one
// implicit reference.
func (a *Arena) MarkClosed(ref NodeRef) {
	if n := a.Get(ref); n != nil {
		n.closedFlag = true
	}
}

// ReleaseClosed removes the closed-list's implicit reference, e.g. during
// closed-list teardown or reopen-on-better-g eviction.
func (a *Arena) ReleaseClosed(ref NodeRef) {
	n := a.Get(ref)
	if n == nil {
		return
	}
	n.closedFlag = false
	a.maybeFree(n)
}

// Discard destroys a node that was never retained by any heap or the
// closed list, e.g. a freshly generated successor evaluated as a relaxed
// dead-end before it ever reaches the open list.
func (a *Arena) Discard(ref NodeRef) {
	n := a.Get(ref)
	if n == nil {
		return
	}
	a.maybeFree(n)
}

func (a *Arena) maybeFree(n *Node) {
	if n.heapRefs <= 0 && !n.closedFlag {
		a.nodes[n.self] = nil
		a.freelist = append(a.freelist, n.self)
	}
}

// Ancestors returns the root-to-node chain of NodeRefs, including node
// itself, used by path replay.
func (a *Arena) Ancestors(node NodeRef) []NodeRef {
	var chain []NodeRef
	for r := node; r != NoRef; {
		chain = append(chain, r)
		r = a.Get(r).parent
	}
	// reverse to root-to-node order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// EnsureState materializes n's state by progressing the parent's state
// once, if it is not already materialized, recording the fluents that
// actually flipped (n.Added, n.Deleted) for consumers that need the true
// post-state delta rather than the action's static declaration.
func (a *Arena) EnsureState(problem strips.Problem, ref NodeRef) *strips.State {
	n := a.Get(ref)
	if n.state != nil {
		return n.state
	}
	parent := a.Get(n.parent)
	n.state, n.Added, n.Deleted = problem.NextWithDelta(parent.state, n.action)
	return n.state
}
