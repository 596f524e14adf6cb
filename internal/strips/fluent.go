// Package strips implements the grounded STRIPS state/action model consumed
// by the search engine: dense fluent and action indices, a bitset state with
// O(1) membership, and lazy progress/regress. PDDL parsing and grounding are
// out of scope; GroundedProblem is a reference model loadable from a JSON
// fixture.
package strips

// FluentIdx is a dense index into [0, F) identifying a grounded fluent.
type FluentIdx uint32

// ActionIdx is a dense index into [0, A) identifying a grounded action.
// NoOp is the sentinel meaning "no action" (used by the root search node).
type ActionIdx uint32

// NoOp denotes the absence of an action, i.e. the root of a search tree.
const NoOp ActionIdx = ^ActionIdx(0)

// Fluent describes a single grounded fluent: its index and its signature
// (a string such as "at_robot_room3" from which a lifted-predicate name can
// be derived by splitting on "_").
type Fluent struct {
	Idx  FluentIdx
	Sig  string
}

// Signature returns the fluent's wire signature.
func (f Fluent) Signature() string { return f.Sig }

// Index returns the fluent's dense index.
func (f Fluent) Index() FluentIdx { return f.Idx }
