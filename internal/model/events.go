package model

// Gate is an internal fault-tree node: a role-bearing element holding
// one Formula. It participates in the gate-cycle graph keyed by its
// formula's gate-typed arguments (spec §3, §4.8 step 1).
type Gate struct {
	RoleElement
	Formula *Formula
	// mark is used by SetupForAnalysis's top-event pass: set when this
	// gate is referenced as an argument by another gate in the same
	// fault tree. Cleared at the start of every SetupForAnalysis call
	// so the pass is idempotent (spec §4.8, §8 "Idempotent setup").
	mark bool
}

func (g *Gate) formulaArg() {}

// IsTopEvent reports whether g was never referenced as another gate's
// formula argument within its own fault tree, as computed by the most
// recent SetupForAnalysis pass.
func (g *Gate) IsTopEvent() bool { return !g.mark }

// Mark records that g was referenced as another gate's formula
// argument. ClearMark resets that record; SetupForAnalysis calls
// ClearMark on every gate before recomputing marks, making the pass
// idempotent.
func (g *Gate) Mark()      { g.mark = true }
func (g *Gate) ClearMark() { g.mark = false }

// BasicEvent is a fault-tree leaf: role-bearing, with an optional
// probability/rate Expression, and possibly a member of a CcfGroup.
type BasicEvent struct {
	RoleElement
	Expression Expression // nil if never given one
	CcfMember  bool
}

func (b *BasicEvent) formulaArg() {}

// HasExpression reports whether a probability expression was supplied,
// used by the probability-analysis basic-event check (spec §3 invariant 4).
func (b *BasicEvent) HasExpression() bool { return b.Expression != nil }

// HouseEvent is a fault-tree leaf with a fixed boolean state.
type HouseEvent struct {
	RoleElement
	State bool
}

func (h *HouseEvent) formulaArg() {}

// Process-wide HouseEvent singletons representing constant true/false,
// referenceable from any formula regardless of scope (spec §3 Ownership,
// §9 Shared constants).
var (
	HouseEventTrue  = &HouseEvent{RoleElement: RoleElement{Element: Element{Name: "true"}, Role: RolePublic}, State: true}
	HouseEventFalse = &HouseEvent{RoleElement: RoleElement{Element: Element{Name: "false"}, Role: RolePublic}, State: false}
)

// Parameter is a named, typed value usable from any expression that
// references it by name. Unused is cleared the first time a
// ParameterExpression resolves to this parameter (spec §3).
type Parameter struct {
	RoleElement
	Unit       Unit
	Expression Expression
	Unused     bool
}
