// Package validator implements the post-load checks of spec §4.8:
// cycle detection over gates, event-tree branches, and parameters;
// the probability-analysis basic-event-expression requirement; batched
// per-expression validation; and SetupForAnalysis. Grounded on the
// teacher's internal/dag DetectCycles call site in build.go (cycle
// check run once every node exists), generalized to three distinct
// graphs and followed by the domain-specific batched checks this
// loader needs that the teacher's DAG validation does not.
package validator

import (
	"errors"
	"fmt"

	"github.com/openpsa-mef/loader/internal/dag"
	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
)

// Validator runs the ordered post-load checks against mdl.
type Validator struct {
	mdl                 *model.Model
	probabilityAnalysis bool
}

// New returns a Validator bound to mdl. probabilityAnalysis mirrors
// Settings.ProbabilityAnalysis (spec §4.8 step 3).
func New(mdl *model.Model, probabilityAnalysis bool) *Validator {
	return &Validator{mdl: mdl, probabilityAnalysis: probabilityAnalysis}
}

// Validate runs every check in spec §4.8's order, stopping at the
// first cycle check that fails (cycles make later checks meaningless)
// but batching the remaining checks' offenders into single errors.
func (v *Validator) Validate() error {
	if err := v.checkGateCycles(); err != nil {
		return err
	}
	if err := v.checkBranchCycles(); err != nil {
		return err
	}
	if v.probabilityAnalysis {
		if err := v.checkBasicEventExpressions(); err != nil {
			return err
		}
	}
	if err := v.checkParameterCycles(); err != nil {
		return err
	}
	if err := v.checkExpressions(); err != nil {
		return err
	}
	return nil
}

// CycleError reports a cycle found in one of the three acyclic graphs
// (spec §3 invariant 3, §7).
type CycleError struct {
	Kind  string
	Cycle []string
}

func (e *CycleError) Error() string { return dag.ErrorFor(e.Kind, e.Cycle).Error() }
func (e *CycleError) Unwrap() error { return merr.ErrCycle }

// checkGateCycles walks the gate → formula-argument (gate-typed)
// subgraph (spec §4.8 step 1).
func (v *Validator) checkGateCycles() error {
	gates := v.mdl.Gates()
	ids := make([]string, 0, len(gates))
	byID := make(map[string]*model.Gate, len(gates))
	for _, g := range gates {
		id := g.FullName()
		ids = append(ids, id)
		byID[id] = g
	}

	edges := func(id string) []string {
		g := byID[id]
		if g == nil || g.Formula == nil {
			return nil
		}
		var out []string
		for _, dep := range gateArgs(g.Formula) {
			out = append(out, dep.FullName())
		}
		return out
	}

	if cycle := dag.DetectCycle(ids, edges); cycle != nil {
		return &CycleError{Kind: "gate", Cycle: cycle}
	}
	return nil
}

// gateArgs returns the gates f references, including those inside
// inline sub-formulas.
func gateArgs(f *model.Formula) []*model.Gate {
	var out []*model.Gate
	for _, arg := range f.Args {
		switch a := arg.(type) {
		case *model.Gate:
			out = append(out, a)
		case *model.Formula:
			out = append(out, gateArgs(a)...)
		}
	}
	return out
}

// checkBranchCycles walks the named-branch → target subgraph (spec
// §4.8 step 2); only branch targets that are themselves named branches
// contribute edges.
func (v *Validator) checkBranchCycles() error {
	for _, tree := range v.mdl.EventTrees() {
		ids := make([]string, 0, len(tree.NamedBranches))
		byID := make(map[string]*model.NamedBranch, len(tree.NamedBranches))
		for _, nb := range tree.NamedBranches {
			ids = append(ids, nb.Name)
			byID[nb.Name] = nb
		}

		edges := func(id string) []string {
			nb := byID[id]
			if nb == nil || nb.Branch == nil {
				return nil
			}
			if target, ok := nb.Branch.Target.(*model.NamedBranch); ok {
				return []string{target.Name}
			}
			return nil
		}

		if cycle := dag.DetectCycle(ids, edges); cycle != nil {
			return &CycleError{Kind: "branch", Cycle: cycle}
		}
	}
	return nil
}

// checkParameterCycles walks the parameter → parameter-reference
// subgraph induced by each parameter's expression tree (spec §4.8
// step 4).
func (v *Validator) checkParameterCycles() error {
	params := v.mdl.Parameters()
	ids := make([]string, 0, len(params))
	byID := make(map[string]*model.Parameter, len(params))
	for _, p := range params {
		id := p.FullName()
		ids = append(ids, id)
		byID[id] = p
	}

	edges := func(id string) []string {
		p := byID[id]
		if p == nil || p.Expression == nil {
			return nil
		}
		var out []string
		collectParameterRefs(p.Expression, &out)
		return out
	}

	if cycle := dag.DetectCycle(ids, edges); cycle != nil {
		return &CycleError{Kind: "parameter", Cycle: cycle}
	}
	return nil
}

func collectParameterRefs(expr model.Expression, out *[]string) {
	if ref, ok := expr.(*model.ParameterExpression); ok {
		*out = append(*out, ref.Param.FullName())
		return
	}
	for _, arg := range expr.Args() {
		collectParameterRefs(arg, out)
	}
}

// checkBasicEventExpressions requires every basic event to have a
// probability expression, collecting all offenders into one error
// (spec §3 invariant 4, §4.8 step 3, §7 "batch errors").
func (v *Validator) checkBasicEventExpressions() error {
	var errs []error
	for _, b := range v.mdl.BasicEvents() {
		if !b.HasExpression() {
			errs = append(errs, fmt.Errorf("basic event '%s' has no expression", b.FullName()))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// checkExpressions invokes Validate() on every expression recorded by
// the factory and batches offenders (spec §4.8 step 5).
func (v *Validator) checkExpressions() error {
	var errs []error
	for _, expr := range v.mdl.Expressions() {
		if err := expr.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, group := range v.mdl.CcfGroups() {
		if err := group.ApplyModel(); err != nil {
			errs = append(errs, fmt.Errorf("CCF group validation: %w", err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// SetupForAnalysis clears gate marks, computes each fault tree's top
// events, and applies every CCF group's model to its members (spec
// §4.8 "Finally"). It is idempotent given no intervening mutation
// (spec §8 "Idempotent setup").
func (v *Validator) SetupForAnalysis() error {
	for _, g := range v.mdl.Gates() {
		g.ClearMark()
	}
	for _, g := range v.mdl.Gates() {
		if g.Formula == nil {
			continue
		}
		for _, dep := range gateArgs(g.Formula) {
			dep.Mark()
		}
	}

	for _, group := range v.mdl.CcfGroups() {
		if err := group.ApplyModel(); err != nil {
			return err
		}
	}

	return nil
}

// TopEvents returns the gates of ft that were never referenced as
// another gate's formula argument, as computed by the most recent
// SetupForAnalysis call (spec §4.8 "collects each fault tree's top
// events").
func TopEvents(ft *model.FaultTree) []*model.Gate {
	var out []*model.Gate
	for _, g := range ft.Gates {
		if g.IsTopEvent() {
			out = append(out, g)
		}
	}
	for _, c := range ft.Components {
		out = append(out, topEventsInComponent(c)...)
	}
	return out
}

func topEventsInComponent(c *model.Component) []*model.Gate {
	var out []*model.Gate
	for _, g := range c.Gates {
		if g.IsTopEvent() {
			out = append(out, g)
		}
	}
	for _, sub := range c.Components {
		out = append(out, topEventsInComponent(sub)...)
	}
	return out
}
