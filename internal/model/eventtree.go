package model

// FunctionalEvent is a named decision point in an EventTree, referenced
// by name from Fork.FunctionalEvent (spec §3).
type FunctionalEvent struct {
	Element
}

// Instruction is one step of a Branch's or Sequence's instruction list.
// Currently the only variant is CollectExpression (spec §3 Sequence).
type Instruction interface {
	instruction()
}

// CollectExpression records an expression to be collected when a
// sequence or branch fires.
type CollectExpression struct {
	Expression Expression
}

func (CollectExpression) instruction() {}

// BranchTarget is what a Branch resolves to: a Fork, a NamedBranch, or
// a Sequence (spec §3 EventTree.Branch.target).
type BranchTarget interface {
	branchTarget()
}

// Path is one outcome of a Fork, keyed by a state label, leading to a
// further Branch.
type Path struct {
	State  string
	Branch *Branch
}

// Fork names the functional event being decided and the set of
// resulting Paths (spec §4.6 DefineBranch "fork" case).
type Fork struct {
	FunctionalEvent *FunctionalEvent
	Paths           []Path
}

func (*Fork) branchTarget() {}

// NamedBranch is a reusable branch body addressable by name within its
// event tree (spec §3, §4.6 DefineBranch "branch" case).
type NamedBranch struct {
	Element
	Branch *Branch
}

func (*NamedBranch) branchTarget() {}

// Sequence is a global, named instruction list, also reachable as an
// event-tree branch target (spec §3, §4.6 DefineBranch "sequence" case).
type Sequence struct {
	Element
	Instructions []Instruction
	Line         int
}

func (*Sequence) branchTarget() {}

// EntityName, EntityBasePath, and IsPrivate implement symtab.Named:
// sequences are always global (spec §3 Sequence).
func (s *Sequence) EntityName() string     { return s.Name }
func (s *Sequence) EntityBasePath() string { return "" }
func (s *Sequence) IsPrivate() bool        { return false }

// Branch is an ordered instruction list followed by a target: a Fork,
// a NamedBranch, or a Sequence (spec §3).
type Branch struct {
	Instructions []Instruction
	Target       BranchTarget
	Line         int
}

// EventTree owns its functional events, named branches (by declaration
// order), and an initial_state branch. Sequences referenced from this
// tree are owned globally by the Model, not here (spec §3).
type EventTree struct {
	Element
	FunctionalEvents []*FunctionalEvent
	NamedBranches    []*NamedBranch
	Forks            []*Fork
	InitialState     *Branch
}

// FindFunctionalEvent returns the tree's functional event with the
// given name, or nil.
func (t *EventTree) FindFunctionalEvent(name string) *FunctionalEvent {
	for _, fe := range t.FunctionalEvents {
		if fe.Name == name {
			return fe
		}
	}
	return nil
}

// FindNamedBranch returns the tree's named branch with the given name,
// or nil.
func (t *EventTree) FindNamedBranch(name string) *NamedBranch {
	for _, nb := range t.NamedBranches {
		if nb.Name == name {
			return nb
		}
	}
	return nil
}

// EntityName, EntityBasePath, and IsPrivate implement symtab.Named:
// event trees are always global, addressed by their own name.
func (t *EventTree) EntityName() string     { return t.Name }
func (t *EventTree) EntityBasePath() string { return "" }
func (t *EventTree) IsPrivate() bool        { return false }
