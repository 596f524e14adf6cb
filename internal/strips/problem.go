package strips

import (
	"encoding/json"
	"fmt"
	"os"
)

// Problem is the consumed STRIPS model contract: everything the
// search engine needs from a grounded planning problem. PDDL parsing and
// grounding happen upstream of this interface; GroundedProblem below is a
// reference implementation loadable from a JSON fixture, used by the CLI
// and by tests.
type Problem interface {
	NumFluents() int
	NumActions() int
	Fluents() []Fluent
	Actions() []*Action
	ApplicableSetV2(s *State, out *[]ActionIdx)
	Next(s *State, a ActionIdx) *State
	NextWithDelta(s *State, a ActionIdx) (next *State, added, deleted []FluentIdx)
	Cost(s *State, a ActionIdx) float32
	Goal(s *State) bool
	Init() *State
	IsInGoal(f FluentIdx) bool
}

// GroundedProblem is a reference Problem implementation: a fully grounded
// STRIPS instance held in memory, with a deterministic applicable-action
// order (action index order).
type GroundedProblem struct {
	fluents    []Fluent
	actions    []*Action
	init       []FluentIdx
	goalFluent []bool
}

// Fixture is the JSON wire format for a grounded problem: the substitute for
// PDDL parsing + grounding, which remain out of scope for this module.
type Fixture struct {
	Fluents []string        `json:"fluents"`
	Init    []int           `json:"init"`
	Goal    []int           `json:"goal"`
	Actions []FixtureAction `json:"actions"`
}

// FixtureAction is one grounded action in the JSON fixture format.
type FixtureAction struct {
	Name        string               `json:"name"`
	Pre         []int                `json:"pre"`
	Add         []int                `json:"add"`
	Del         []int                `json:"del"`
	Cost        float32              `json:"cost"`
	CondEffects []FixtureCondEffect  `json:"cond_effects,omitempty"`
}

// FixtureCondEffect is one conditional effect in the JSON fixture format.
type FixtureCondEffect struct {
	Pre []int `json:"pre"`
	Add []int `json:"add"`
	Del []int `json:"del"`
}

// LoadFixture reads and parses a grounded-problem JSON fixture from path.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %q: %w", path, err)
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture %q: %w", path, err)
	}
	return &fx, nil
}

// NewGroundedProblem builds a GroundedProblem from an already-parsed
// fixture.
func NewGroundedProblem(fx *Fixture) (*GroundedProblem, error) {
	numFl := len(fx.Fluents)
	p := &GroundedProblem{
		fluents:    make([]Fluent, numFl),
		init:       toFluentIdxSlice(fx.Init),
		goalFluent: make([]bool, numFl),
	}
	for i, sig := range fx.Fluents {
		p.fluents[i] = Fluent{Idx: FluentIdx(i), Sig: sig}
	}
	for _, g := range fx.Goal {
		if g < 0 || g >= numFl {
			return nil, fmt.Errorf("goal fluent %d out of range [0,%d)", g, numFl)
		}
		p.goalFluent[g] = true
	}
	for i, fa := range fx.Actions {
		ceffs := make([]ConditionalEffect, len(fa.CondEffects))
		for j, ce := range fa.CondEffects {
			ceffs[j] = ConditionalEffect{
				Pre: toFluentIdxSlice(ce.Pre),
				Add: toFluentIdxSlice(ce.Add),
				Del: toFluentIdxSlice(ce.Del),
			}
		}
		p.actions = append(p.actions, &Action{
			Idx:         ActionIdx(i),
			Sig:         fa.Name,
			Pre:         toFluentIdxSlice(fa.Pre),
			Add:         toFluentIdxSlice(fa.Add),
			Del:         toFluentIdxSlice(fa.Del),
			CondEffects: ceffs,
			CostVal:     fa.Cost,
		})
	}
	return p, nil
}

func toFluentIdxSlice(in []int) []FluentIdx {
	out := make([]FluentIdx, len(in))
	for i, v := range in {
		out[i] = FluentIdx(v)
	}
	return out
}

func (p *GroundedProblem) NumFluents() int { return len(p.fluents) }
func (p *GroundedProblem) NumActions() int { return len(p.actions) }
func (p *GroundedProblem) Fluents() []Fluent { return p.fluents }
func (p *GroundedProblem) Actions() []*Action { return p.actions }

// ApplicableSetV2 appends to out, in action-index order, every action whose
// precondition holds in s, in deterministic action-index order.
func (p *GroundedProblem) ApplicableSetV2(s *State, out *[]ActionIdx) {
	*out = (*out)[:0]
	for _, a := range p.actions {
		if a.applicable(s) {
			*out = append(*out, a.Idx)
		}
	}
}

// Next returns a fresh state obtained by applying action a to s.
func (p *GroundedProblem) Next(s *State, a ActionIdx) *State {
	next, _, _ := p.NextWithDelta(s, a)
	return next
}

// NextWithDelta returns a fresh state obtained by applying action a to s,
// along with the fluents that actually flipped true (added) or false
// (deleted) in the process. Unlike Action.AddVec/DelVec, the returned
// slices reflect conditional effects and exclude no-ops: they are exactly
// what ProgressLazy determined had changed.
func (p *GroundedProblem) NextWithDelta(s *State, a ActionIdx) (next *State, added, deleted []FluentIdx) {
	c := s.Clone()
	c.ProgressLazy(p.actions[a], &added, &deleted)
	return c, added, deleted
}

// Cost returns the cost of applying action a in state s.
func (p *GroundedProblem) Cost(s *State, a ActionIdx) float32 {
	return p.actions[a].CostVal
}

// Goal reports whether every goal fluent holds in s.
func (p *GroundedProblem) Goal(s *State) bool {
	for i, want := range p.goalFluent {
		if want && !s.Entails(FluentIdx(i)) {
			return false
		}
	}
	return true
}

// Init returns a fresh clone of the problem's initial state.
func (p *GroundedProblem) Init() *State {
	return NewState(len(p.fluents), p.init)
}

// IsInGoal reports whether fluent f is a goal literal.
func (p *GroundedProblem) IsInGoal(f FluentIdx) bool {
	return int(f) < len(p.goalFluent) && p.goalFluent[f]
}
