// Package resolver implements DeferredResolver: the second pass that
// walks the registrar's pending work list in registration order and
// defines each entity's body now that every name in the input set is
// known (spec §4.7, §9 "Forward references"). Grounded on the
// teacher's internal/builder.BuildStatic linkNodes pass, generalized
// from a flat dependency-edge walk to a tagged-variant dispatch over
// six distinct entity kinds.
package resolver

import (
	"fmt"

	"github.com/openpsa-mef/loader/internal/ccf"
	"github.com/openpsa-mef/loader/internal/eventtreebuild"
	"github.com/openpsa-mef/loader/internal/exprfactory"
	"github.com/openpsa-mef/loader/internal/formula"
	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/openpsa-mef/loader/internal/registrar"
	"github.com/openpsa-mef/loader/internal/xmlio"
)

// Resolver dispatches each pending work item to the collaborator that
// knows how to define that entity kind's body.
type Resolver struct {
	mdl      *model.Model
	exprs    *exprfactory.Factory
	formulas *formula.Builder
	ccfs     *ccf.Processor
	trees    *eventtreebuild.Builder
}

// New returns a Resolver wired to the shared per-load collaborators.
func New(mdl *model.Model, exprs *exprfactory.Factory, formulas *formula.Builder, ccfs *ccf.Processor, trees *eventtreebuild.Builder) *Resolver {
	return &Resolver{mdl: mdl, exprs: exprs, formulas: formulas, ccfs: ccfs, trees: trees}
}

// Resolve iterates pending in registration order, dispatching each item
// to its definer (spec §4.7). Errors are annotated with the item's
// source file (the line is usually already present from the node that
// raised it) and re-raised, aborting the whole load (spec §5, §7).
func (r *Resolver) Resolve(pending []registrar.WorkItem) error {
	for _, item := range pending {
		if err := r.define(item); err != nil {
			return merr.WithFile(item.File, err)
		}
	}
	return nil
}

func (r *Resolver) define(item registrar.WorkItem) error {
	switch item.Kind {
	case registrar.WorkGate:
		return r.defineGate(item.Entity.(*model.Gate), item.Node)
	case registrar.WorkBasicEvent:
		return r.defineBasicEvent(item.Entity.(*model.BasicEvent), item.Node)
	case registrar.WorkParameter:
		return r.defineParameter(item.Entity.(*model.Parameter), item.Node)
	case registrar.WorkCcfGroup:
		return r.ccfs.Define(item.Entity.(*model.CcfGroup), item.Node)
	case registrar.WorkSequence:
		return r.trees.DefineSequence(item.Entity.(*model.Sequence), item.Node)
	case registrar.WorkEventTree:
		return r.trees.DefineEventTree(item.Entity.(*model.EventTree), item.Node)
	default:
		return fmt.Errorf("resolver: unknown work kind %v", item.Kind)
	}
}

// defineGate parses the unique non-label, non-attribute child as a
// formula, then validates it (spec §4.7 Gate definer).
func (r *Resolver) defineGate(g *model.Gate, node xmlio.Node) error {
	formulaNode, err := bodyChild(node)
	if err != nil {
		return merr.AtLine(node.Line(), err)
	}
	f, err := r.formulas.Build(formulaNode, g.BasePath)
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return merr.AtLine(f.Line, err)
	}
	g.Formula = f
	return nil
}

// defineBasicEvent attaches at most one expression child. When
// multiple expression children are present (which RelaxNG schema
// validation would normally rule out), the last one wins, preserving
// the original implementation's undocumented behavior rather than
// tightening it (spec §9 Open Questions).
func (r *Resolver) defineBasicEvent(b *model.BasicEvent, node xmlio.Node) error {
	children := bodyChildren(node)
	if len(children) == 0 {
		return nil
	}
	expr, err := r.exprs.Build(children[len(children)-1], b.BasePath)
	if err != nil {
		return err
	}
	b.Expression = expr
	return nil
}

// defineParameter attaches the parameter's exactly-one expression child.
func (r *Resolver) defineParameter(p *model.Parameter, node xmlio.Node) error {
	child, err := bodyChild(node)
	if err != nil {
		return merr.AtLine(node.Line(), err)
	}
	expr, err := r.exprs.Build(child, p.BasePath)
	if err != nil {
		return err
	}
	p.Expression = expr
	return nil
}

// bodyChildren returns node's children excluding <label> and
// <attributes>, the common element-decoration tags already consumed at
// registration time (spec §4.4 step 2, §4.7).
func bodyChildren(node xmlio.Node) []xmlio.Node {
	var out []xmlio.Node
	for _, c := range node.Children() {
		if c.Name() == "label" || c.Name() == "attributes" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// bodyChild returns node's single non-label, non-attribute child,
// failing if there isn't exactly one.
func bodyChild(node xmlio.Node) (xmlio.Node, error) {
	children := bodyChildren(node)
	if len(children) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one body element, got %d", merr.ErrInvalidArgument, len(children))
	}
	return children[0], nil
}
