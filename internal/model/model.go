package model

import (
	"github.com/openpsa-mef/loader/internal/symtab"
)

// Model is the root container: it owns every entity and expression
// constructed while loading, and exposes the entity-kind getters and
// scoped resolvers described in spec §6. Construct with New.
type Model struct {
	MissionTime Expression

	gates       *symtab.Table[*Gate]
	basicEvents *symtab.Table[*BasicEvent]
	houseEvents *symtab.Table[*HouseEvent]
	parameters  *symtab.Table[*Parameter]
	ccfGroups   *symtab.Table[*CcfGroup]
	sequences   *symtab.Table[*Sequence]
	eventTrees  *symtab.Table[*EventTree]
	faultTrees  *symtab.Table[*FaultTree]

	// Ordered insertion-order lists, kept alongside the symtab tables
	// so that iteration is deterministic across runs over the same
	// input (spec §8 "Order determinism"), which a bare map cannot
	// guarantee.
	gateOrder       []*Gate
	basicEventOrder []*BasicEvent
	houseEventOrder []*HouseEvent
	parameterOrder  []*Parameter
	ccfGroupOrder   []*CcfGroup
	sequenceOrder   []*Sequence
	eventTreeOrder  []*EventTree
	faultTreeOrder  []*FaultTree

	// expressions is the deferred-validation list every expression
	// manufactured by the factory is appended to; Validate() on each
	// only runs after cycle detection (spec §4.2, §4.8 step 5).
	expressions []Expression
}

// New returns an empty Model seeded with the given mission time.
func New(missionTime float64) *Model {
	return &Model{
		MissionTime: &ConstantExpression{Value: missionTime},
		gates:       symtab.New[*Gate]("gate"),
		basicEvents: symtab.New[*BasicEvent]("basic event"),
		houseEvents: symtab.New[*HouseEvent]("house event"),
		parameters:  symtab.New[*Parameter]("parameter"),
		ccfGroups:   symtab.New[*CcfGroup]("CCF group"),
		sequences:   symtab.New[*Sequence]("sequence"),
		eventTrees:  symtab.New[*EventTree]("event tree"),
		faultTrees:  symtab.New[*FaultTree]("fault tree"),
	}
}

// AddGate registers g in the SymbolTable and the gate iteration order.
func (m *Model) AddGate(g *Gate) error {
	if err := m.gates.Insert(g); err != nil {
		return err
	}
	m.gateOrder = append(m.gateOrder, g)
	return nil
}

// AddBasicEvent registers b. See AddGate.
func (m *Model) AddBasicEvent(b *BasicEvent) error {
	if err := m.basicEvents.Insert(b); err != nil {
		return err
	}
	m.basicEventOrder = append(m.basicEventOrder, b)
	return nil
}

// AddHouseEvent registers h. See AddGate.
func (m *Model) AddHouseEvent(h *HouseEvent) error {
	if err := m.houseEvents.Insert(h); err != nil {
		return err
	}
	m.houseEventOrder = append(m.houseEventOrder, h)
	return nil
}

// AddParameter registers p. See AddGate.
func (m *Model) AddParameter(p *Parameter) error {
	if err := m.parameters.Insert(p); err != nil {
		return err
	}
	m.parameterOrder = append(m.parameterOrder, p)
	return nil
}

// AddCcfGroup registers c. See AddGate.
func (m *Model) AddCcfGroup(c *CcfGroup) error {
	if err := m.ccfGroups.Insert(c); err != nil {
		return err
	}
	m.ccfGroupOrder = append(m.ccfGroupOrder, c)
	return nil
}

// AddSequence registers s. See AddGate.
func (m *Model) AddSequence(s *Sequence) error {
	if err := m.sequences.Insert(s); err != nil {
		return err
	}
	m.sequenceOrder = append(m.sequenceOrder, s)
	return nil
}

// AddEventTree registers t. See AddGate.
func (m *Model) AddEventTree(t *EventTree) error {
	if err := m.eventTrees.Insert(t); err != nil {
		return err
	}
	m.eventTreeOrder = append(m.eventTreeOrder, t)
	return nil
}

// AddFaultTree registers t. See AddGate.
func (m *Model) AddFaultTree(t *FaultTree) error {
	if err := m.faultTrees.Insert(t); err != nil {
		return err
	}
	m.faultTreeOrder = append(m.faultTreeOrder, t)
	return nil
}

// RecordExpression appends expr to the deferred-validation list (spec §4.2).
func (m *Model) RecordExpression(expr Expression) {
	m.expressions = append(m.expressions, expr)
}

// Expressions returns every expression ever manufactured, in
// construction order.
func (m *Model) Expressions() []Expression { return m.expressions }

// Gates, BasicEvents, HouseEvents, Parameters, CcfGroups, Sequences,
// EventTrees, and FaultTrees return every registered entity of that
// kind, in registration order (spec §6 "Interface exposed").
func (m *Model) Gates() []*Gate              { return m.gateOrder }
func (m *Model) BasicEvents() []*BasicEvent  { return m.basicEventOrder }
func (m *Model) HouseEvents() []*HouseEvent  { return m.houseEventOrder }
func (m *Model) Parameters() []*Parameter    { return m.parameterOrder }
func (m *Model) CcfGroups() []*CcfGroup      { return m.ccfGroupOrder }
func (m *Model) Sequences() []*Sequence      { return m.sequenceOrder }
func (m *Model) EventTrees() []*EventTree    { return m.eventTreeOrder }
func (m *Model) FaultTrees() []*FaultTree    { return m.faultTreeOrder }

// GetGate resolves name from basePath's scope (spec §4.1, §6).
func (m *Model) GetGate(name, basePath string) (*Gate, error) {
	return m.gates.Lookup(name, basePath)
}

// GetBasicEvent resolves name from basePath's scope.
func (m *Model) GetBasicEvent(name, basePath string) (*BasicEvent, error) {
	return m.basicEvents.Lookup(name, basePath)
}

// GetHouseEvent resolves name from basePath's scope.
func (m *Model) GetHouseEvent(name, basePath string) (*HouseEvent, error) {
	return m.houseEvents.Lookup(name, basePath)
}

// GetParameter resolves name from basePath's scope, clearing the
// parameter's Unused flag on success (spec §3 Parameter.unused).
func (m *Model) GetParameter(name, basePath string) (*Parameter, error) {
	p, err := m.parameters.Lookup(name, basePath)
	if err != nil {
		return nil, err
	}
	p.Unused = false
	return p, nil
}

// GetCcfGroup resolves name from basePath's scope.
func (m *Model) GetCcfGroup(name, basePath string) (*CcfGroup, error) {
	return m.ccfGroups.Lookup(name, basePath)
}

// GetSequence resolves a global sequence by name.
func (m *Model) GetSequence(name string) (*Sequence, error) {
	return m.sequences.Lookup(name, "")
}

// GetEventTree resolves a global event tree by name.
func (m *Model) GetEventTree(name string) (*EventTree, error) {
	return m.eventTrees.Lookup(name, "")
}

// GetFaultTree resolves a global fault tree by name.
func (m *Model) GetFaultTree(name string) (*FaultTree, error) {
	return m.faultTrees.Lookup(name, "")
}

// GetEvent resolves name from basePath's scope against every event
// kind (gate, basic event, house event) in turn, for untyped "event"
// references (spec §4.1, §4.3).
func (m *Model) GetEvent(name, basePath string) (FormulaArg, error) {
	if g, err := m.GetGate(name, basePath); err == nil {
		return g, nil
	}
	if b, err := m.GetBasicEvent(name, basePath); err == nil {
		return b, nil
	}
	if h, err := m.GetHouseEvent(name, basePath); err == nil {
		return h, nil
	}
	return nil, &symtab.UndefinedEntityError{Kind: "event", Name: name, BasePath: basePath}
}
