// Package containerwalker walks a fault tree or component's XML body in
// the fixed registration order spec §4.5 requires, threading base-path
// and role inheritance down into sub-components and handing each
// element off to the registrar. Grounded on the teacher's
// internal/builder recursive link-resolution walk, generalized from a
// flat step list to a recursively nested container tree.
package containerwalker

import (
	"fmt"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/openpsa-mef/loader/internal/registrar"
	"github.com/openpsa-mef/loader/internal/xmlio"
)

// Walker walks fault trees and components, registering their contents
// via reg.
type Walker struct {
	reg *registrar.Registrar
}

// NewWalker returns a Walker that registers through reg.
func NewWalker(reg *registrar.Registrar) *Walker {
	return &Walker{reg: reg}
}

// WalkFaultTree registers the top-level contents of a <define-fault-tree>
// node and returns the constructed FaultTree. The tree's own name is
// the root of its base-path scope, inherited by its top-level role-bearing
// children. Role defaults to public at the fault-tree root (spec §4.5).
func (w *Walker) WalkFaultTree(node xmlio.Node) (*model.FaultTree, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, err
	}

	ft := &model.FaultTree{Element: model.Element{Name: name}}

	if err := w.walkContainer(node, name, model.RolePublic,
		func(h *model.HouseEvent) { ft.HouseEvents = append(ft.HouseEvents, h) },
		func(b *model.BasicEvent) { ft.BasicEvents = append(ft.BasicEvents, b) },
		func(p *model.Parameter) { ft.Parameters = append(ft.Parameters, p) },
		func(g *model.Gate) { ft.Gates = append(ft.Gates, g) },
		func(c *model.CcfGroup) { ft.CcfGroups = append(ft.CcfGroups, c) },
		func(sub *model.Component) { ft.Components = append(ft.Components, sub) },
	); err != nil {
		return nil, err
	}

	return ft, nil
}

// WalkComponent registers the contents of a <define-component> node,
// nested at parentBasePath with parentRole as the inherited default
// (spec §4.5): the component's own base_path becomes
// "<parentBasePath>.<name>". The component itself is returned
// unattached; the caller inserts it into its parent's Components list
// only after this call returns successfully, so that name collisions
// are reported in source order (bottom-up insertion, spec §4.5).
func (w *Walker) WalkComponent(node xmlio.Node, parentBasePath string, parentRole model.Role) (*model.Component, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, err
	}
	role, err := resolveOwnRole(node, parentRole)
	if err != nil {
		return nil, err
	}
	basePath := parentBasePath + "." + name

	c := &model.Component{RoleElement: model.RoleElement{
		Element:  model.Element{Name: name},
		BasePath: parentBasePath,
		Role:     role,
	}}

	if err := w.walkContainer(node, basePath, role,
		func(h *model.HouseEvent) { c.HouseEvents = append(c.HouseEvents, h) },
		func(b *model.BasicEvent) { c.BasicEvents = append(c.BasicEvents, b) },
		func(p *model.Parameter) { c.Parameters = append(c.Parameters, p) },
		func(g *model.Gate) { c.Gates = append(c.Gates, g) },
		func(cc *model.CcfGroup) { c.CcfGroups = append(c.CcfGroups, cc) },
		func(sub *model.Component) { c.Components = append(c.Components, sub) },
	); err != nil {
		return nil, err
	}

	return c, nil
}

// walkContainer registers a container's contents in the fixed order
// house-events, basic-events, parameters, gates, CCF groups,
// sub-components (spec §4.5), appending each to the caller-supplied
// collector. Sub-components are walked (and so fully registered) before
// being appended, giving bottom-up insertion.
func (w *Walker) walkContainer(
	node xmlio.Node,
	basePath string,
	role model.Role,
	addHouseEvent func(*model.HouseEvent),
	addBasicEvent func(*model.BasicEvent),
	addParameter func(*model.Parameter),
	addGate func(*model.Gate),
	addCcfGroup func(*model.CcfGroup),
	addComponent func(*model.Component),
) error {
	children := node.Children()

	for _, tag := range []string{"define-house-event"} {
		for _, child := range children {
			if child.Name() != tag {
				continue
			}
			h, err := w.reg.RegisterHouseEvent(child, basePath, role)
			if err != nil {
				return err
			}
			addHouseEvent(h)
		}
	}
	for _, child := range children {
		if child.Name() != "define-basic-event" {
			continue
		}
		b, err := w.reg.RegisterBasicEvent(child, basePath, role)
		if err != nil {
			return err
		}
		addBasicEvent(b)
	}
	for _, child := range children {
		if child.Name() != "define-parameter" {
			continue
		}
		p, err := w.reg.RegisterParameter(child, basePath, role)
		if err != nil {
			return err
		}
		addParameter(p)
	}
	for _, child := range children {
		if child.Name() != "define-gate" {
			continue
		}
		g, err := w.reg.RegisterGate(child, basePath, role)
		if err != nil {
			return err
		}
		addGate(g)
	}
	for _, child := range children {
		if child.Name() != "define-CCF-group" {
			continue
		}
		cg, err := w.reg.RegisterCcfGroup(child, basePath, role, nil)
		if err != nil {
			return err
		}
		addCcfGroup(cg)
	}
	seenComponents := make(map[string]bool)
	for _, child := range children {
		if child.Name() != "define-component" {
			continue
		}
		sub, err := w.WalkComponent(child, basePath, role)
		if err != nil {
			return err
		}
		if seenComponents[sub.Name] {
			return merr.AtLine(child.Line(), &duplicateComponentError{Name: sub.Name})
		}
		seenComponents[sub.Name] = true
		addComponent(sub)
	}

	return nil
}

// duplicateComponentError reports two sibling <define-component> elements
// declaring the same name within the same container (spec §4.5;
// original_source/src/initializer.cc wraps component->Add in a
// ValidationError catch for the same collision).
type duplicateComponentError struct{ Name string }

func (e *duplicateComponentError) Error() string {
	return fmt.Sprintf("%v: duplicate component '%s'", merr.ErrValidation, e.Name)
}

func (e *duplicateComponentError) Unwrap() error { return merr.ErrValidation }

func requireName(node xmlio.Node) (string, error) {
	name, ok := node.Attr("name")
	if !ok {
		return "", merr.AtLine(node.Line(), &missingNameError{Tag: node.Name()})
	}
	return name, nil
}

func resolveOwnRole(node xmlio.Node, parentRole model.Role) (model.Role, error) {
	roleStr, _ := node.Attr("role")
	role, err := model.ParseRole(roleStr, parentRole)
	if err != nil {
		return parentRole, merr.AtLine(node.Line(), err)
	}
	return role, nil
}

type missingNameError struct{ Tag string }

func (e *missingNameError) Error() string {
	return "<" + e.Tag + "> is missing a required 'name' attribute"
}
