// Package registrar implements the register-only first pass of the
// loader (spec §4.4, §9 "Forward references"): constructing and
// inserting gates, basic/house events, parameters, sequences, and CCF
// groups into the model's symbol table, and recording a pending
// "to-be-defined" work item for every entity whose body needs
// forward-reference-capable resolution. Grounded on the teacher's
// internal/builder graph-node construction pass (build.go createNodes),
// generalized from a flat node list to model-typed, kind-specific
// constructors.
package registrar

import (
	"fmt"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/openpsa-mef/loader/internal/xmlio"
)

// WorkKind tags a pending work-list item with the entity kind it holds,
// used by the resolver to dispatch to the right definer (spec §9
// "Dynamic dispatch on entity kind").
type WorkKind int

const (
	WorkGate WorkKind = iota
	WorkBasicEvent
	WorkParameter
	WorkCcfGroup
	WorkSequence
	WorkEventTree
)

// WorkItem is one pending "define" task: an entity whose shell was
// registered in pass one, plus the XML node its body should be parsed
// from and the file it came from (spec §9, SPEC_FULL recovered feature
// about per-work-item file tracking).
type WorkItem struct {
	Kind   WorkKind
	Entity any
	Node   xmlio.Node
	File   string
}

// Registrar constructs and registers entities into mdl, appending a
// WorkItem to Pending for every entity with deferred body resolution.
type Registrar struct {
	mdl     *model.Model
	Pending []WorkItem
	file    string
}

// NewRegistrar returns a Registrar bound to mdl. SetFile must be called
// before registering entities from a new input file so pending work
// items carry the right source path.
func NewRegistrar(mdl *model.Model) *Registrar {
	return &Registrar{mdl: mdl}
}

// SetFile records the path of the file subsequent Register calls read
// their XML nodes from.
func (r *Registrar) SetFile(path string) { r.file = path }

func (r *Registrar) defer_(kind WorkKind, entity any, node xmlio.Node) {
	r.Pending = append(r.Pending, WorkItem{Kind: kind, Entity: entity, Node: node, File: r.file})
}

// Defer appends a work item for an entity kind registered outside this
// package (eventtreebuild's EventTree), keeping the pending list a
// single ordered sequence across every entity kind (spec §9 "Dynamic
// dispatch on entity kind").
func (r *Registrar) Defer(kind WorkKind, entity any, node xmlio.Node) {
	r.defer_(kind, entity, node)
}

// decorate reads an entity's label and attribute list, the common
// element decoration step every registrar variant performs (spec §4.4
// step 2).
func decorate(node xmlio.Node, elem *model.Element) {
	for _, child := range node.Children() {
		switch child.Name() {
		case "label":
			elem.Label = child.Text()
		case "attributes":
			for _, attrNode := range child.Children() {
				if attrNode.Name() != "attribute" {
					continue
				}
				name, _ := attrNode.Attr("name")
				value, _ := attrNode.Attr("value")
				typ, _ := attrNode.Attr("type")
				elem.Attributes = append(elem.Attributes, model.Attribute{Name: name, Value: value, Type: typ})
			}
		}
	}
}

// resolveRole reads node's optional `role` attribute, defaulting to
// parentRole (spec §4.4 step 1).
func resolveRole(node xmlio.Node, parentRole model.Role) (model.Role, error) {
	roleStr, _ := node.Attr("role")
	return model.ParseRole(roleStr, parentRole)
}

// requireName reads node's required `name` attribute.
func requireName(node xmlio.Node) (string, error) {
	name, ok := node.Attr("name")
	if !ok {
		return "", fmt.Errorf("%w: <%s> is missing a required 'name' attribute", merr.ErrValidation, node.Name())
	}
	return name, nil
}

// RegisterGate constructs and registers a Gate from a <define-gate>
// node (spec §4.4).
func (r *Registrar) RegisterGate(node xmlio.Node, basePath string, parentRole model.Role) (*model.Gate, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	role, err := resolveRole(node, parentRole)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}

	g := &model.Gate{RoleElement: model.RoleElement{
		Element:  model.Element{Name: name},
		BasePath: basePath,
		Role:     role,
	}}
	decorate(node, &g.Element)

	if err := r.mdl.AddGate(g); err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	r.defer_(WorkGate, g, node)
	return g, nil
}

// RegisterBasicEvent constructs and registers a BasicEvent from a
// <define-basic-event> node.
func (r *Registrar) RegisterBasicEvent(node xmlio.Node, basePath string, parentRole model.Role) (*model.BasicEvent, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	role, err := resolveRole(node, parentRole)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}

	b := &model.BasicEvent{RoleElement: model.RoleElement{
		Element:  model.Element{Name: name},
		BasePath: basePath,
		Role:     role,
	}}
	decorate(node, &b.Element)

	if err := r.mdl.AddBasicEvent(b); err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	r.defer_(WorkBasicEvent, b, node)
	return b, nil
}

// RegisterHouseEvent constructs, thinly parses, and registers a
// HouseEvent from a <define-house-event> node. A HouseEvent's
// <constant value="true|false"/> is read immediately (spec §4.4 step 3)
// since it needs no forward reference.
func (r *Registrar) RegisterHouseEvent(node xmlio.Node, basePath string, parentRole model.Role) (*model.HouseEvent, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	role, err := resolveRole(node, parentRole)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}

	h := &model.HouseEvent{RoleElement: model.RoleElement{
		Element:  model.Element{Name: name},
		BasePath: basePath,
		Role:     role,
	}}
	decorate(node, &h.Element)

	for _, child := range node.Children() {
		if child.Name() != "constant" {
			continue
		}
		v, ok := child.Attr("value")
		if !ok {
			return nil, merr.AtLine(child.Line(), fmt.Errorf("%w: <constant> requires a 'value' attribute", merr.ErrValidation))
		}
		switch v {
		case "true":
			h.State = true
		case "false":
			h.State = false
		default:
			return nil, merr.AtLine(child.Line(), fmt.Errorf("%w: invalid house event value '%s'", merr.ErrValidation, v))
		}
	}

	if err := r.mdl.AddHouseEvent(h); err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	return h, nil
}

// RegisterParameter constructs, thinly parses, and registers a
// Parameter from a <define-parameter> node.
func (r *Registrar) RegisterParameter(node xmlio.Node, basePath string, parentRole model.Role) (*model.Parameter, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	role, err := resolveRole(node, parentRole)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}

	unit := model.UnitNone
	if unitStr, ok := node.Attr("unit"); ok {
		unit, err = model.ParseUnit(unitStr)
		if err != nil {
			return nil, merr.AtLine(node.Line(), err)
		}
	}

	p := &model.Parameter{
		RoleElement: model.RoleElement{
			Element:  model.Element{Name: name},
			BasePath: basePath,
			Role:     role,
		},
		Unit:   unit,
		Unused: true,
	}
	decorate(node, &p.Element)

	if err := r.mdl.AddParameter(p); err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	r.defer_(WorkParameter, p, node)
	return p, nil
}

// RegisterSequence constructs and registers a Sequence from a
// <define-sequence> node. Sequences are always global (spec §3).
func (r *Registrar) RegisterSequence(node xmlio.Node) (*model.Sequence, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}

	s := &model.Sequence{Element: model.Element{Name: name}, Line: node.Line()}
	decorate(node, &s.Element)

	if err := r.mdl.AddSequence(s); err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	r.defer_(WorkSequence, s, node)
	return s, nil
}

// RegisterCcfGroup constructs a CcfGroup from a <define-CCF-group>
// node, selecting its model subclass by the `model` attribute and
// parsing its <members> immediately (spec §4.4 step 3, §4.6).
func (r *Registrar) RegisterCcfGroup(node xmlio.Node, basePath string, parentRole model.Role, addMember func(*model.BasicEvent) error) (*model.CcfGroup, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	role, err := resolveRole(node, parentRole)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	modelStr, ok := node.Attr("model")
	if !ok {
		return nil, merr.AtLine(node.Line(), fmt.Errorf("%w: <define-CCF-group> is missing a 'model' attribute", merr.ErrValidation))
	}
	ccfModel, err := model.ParseCcfModel(modelStr)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}

	c := &model.CcfGroup{RoleElement: model.RoleElement{
		Element:  model.Element{Name: name},
		BasePath: basePath,
		Role:     role,
	}, Model: ccfModel}
	decorate(node, &c.Element)

	for _, child := range node.Children() {
		if child.Name() != "members" {
			continue
		}
		for _, memberNode := range child.Children() {
			if memberNode.Name() != "basic-event" {
				continue
			}
			memberName, err := requireName(memberNode)
			if err != nil {
				return nil, merr.AtLine(memberNode.Line(), err)
			}
			member := &model.BasicEvent{RoleElement: model.RoleElement{
				Element:  model.Element{Name: memberName},
				BasePath: basePath,
				Role:     role,
			}, CcfMember: true}
			if err := c.AddMember(member); err != nil {
				return nil, merr.AtLine(memberNode.Line(), err)
			}
			if err := r.mdl.AddBasicEvent(member); err != nil {
				return nil, merr.AtLine(memberNode.Line(), err)
			}
			if addMember != nil {
				if err := addMember(member); err != nil {
					return nil, merr.AtLine(memberNode.Line(), err)
				}
			}
		}
	}

	if err := r.mdl.AddCcfGroup(c); err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	r.defer_(WorkCcfGroup, c, node)
	return c, nil
}
