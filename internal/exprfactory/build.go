package exprfactory

import (
	"fmt"
	"strconv"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/openpsa-mef/loader/internal/xmlio"
)

// Factory is the ExpressionFactory of spec §4.2: it walks one XML
// expression node (and its children, recursively) into a model.Expression,
// resolving parameter references against mdl and recording every
// manufactured expression on the model's deferred-validation list.
type Factory struct {
	table *Table
	mdl   *model.Model
}

// NewFactory returns a Factory bound to mdl, preloaded with the default
// MEF expression dispatch table.
func NewFactory(mdl *model.Model) *Factory {
	return &Factory{table: New(), mdl: mdl}
}

// Build constructs the Expression described by node, given the base
// path its containing entity was declared at (needed to resolve
// <parameter> references through the model's scope rules).
func (f *Factory) Build(node xmlio.Node, basePath string) (model.Expression, error) {
	expr, err := f.build(node, basePath)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	return expr, nil
}

// build constructs the Expression described by node and records it on
// the model's deferred-validation list before returning (spec §4.2);
// every recursive call below goes back through build so every
// sub-expression, not just the root, is recorded exactly once.
func (f *Factory) build(node xmlio.Node, basePath string) (model.Expression, error) {
	expr, err := f.buildOne(node, basePath)
	if err != nil {
		return nil, err
	}
	f.mdl.RecordExpression(expr)
	return expr, nil
}

func (f *Factory) buildOne(node xmlio.Node, basePath string) (model.Expression, error) {
	switch node.Name() {
	case "int", "float":
		return f.buildNumericLiteral(node)
	case "bool":
		return f.buildBoolLiteral(node)
	case "pi":
		return model.Pi, nil
	case "parameter":
		return f.buildParameterRef(node, basePath)
	case "system-mission-time":
		return f.buildMissionTimeRef(node)
	case "histogram":
		return f.buildHistogram(node, basePath)
	case "switch":
		return f.buildSwitch(node, basePath)
	default:
		return f.buildDispatched(node, basePath)
	}
}

func (f *Factory) buildNumericLiteral(node xmlio.Node) (model.Expression, error) {
	value, _ := node.Attr("value")
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid numeric literal '%s'", merr.ErrValidation, value)
	}
	return &model.ConstantExpression{Value: v}, nil
}

func (f *Factory) buildBoolLiteral(node xmlio.Node) (model.Expression, error) {
	value, _ := node.Attr("value")
	switch value {
	case "true", "1":
		return model.One, nil
	case "false", "0":
		return model.Zero, nil
	default:
		return nil, fmt.Errorf("%w: invalid boolean literal '%s'", merr.ErrValidation, value)
	}
}

func (f *Factory) buildParameterRef(node xmlio.Node, basePath string) (model.Expression, error) {
	name, _ := node.Attr("name")
	param, err := f.mdl.GetParameter(name, basePath)
	if err != nil {
		return nil, err
	}
	unit := model.UnitNone
	if unitStr, ok := node.Attr("unit"); ok {
		var err error
		unit, err = model.ParseUnit(unitStr)
		if err != nil {
			return nil, err
		}
	}
	ref := &model.ParameterExpression{Param: param, Unit: unit}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return ref, nil
}

func (f *Factory) buildMissionTimeRef(node xmlio.Node) (model.Expression, error) {
	unit := model.UnitNone
	if unitStr, ok := node.Attr("unit"); ok {
		var err error
		unit, err = model.ParseUnit(unitStr)
		if err != nil {
			return nil, err
		}
	}
	return &model.MissionTimeExpression{Unit: unit}, nil
}

// buildHistogram implements spec §4.2 bespoke case 1: the first child
// is the lower boundary, every subsequent child is a <bin> with exactly
// two sub-expressions (upper boundary, weight).
func (f *Factory) buildHistogram(node xmlio.Node, basePath string) (model.Expression, error) {
	children := node.Children()
	if len(children) < 2 {
		return nil, fmt.Errorf("%w: histogram requires a lower boundary and at least one bin", merr.ErrInvalidArgument)
	}
	lower, err := f.build(children[0], basePath)
	if err != nil {
		return nil, err
	}

	bins := make([]model.HistogramBin, 0, len(children)-1)
	for _, binNode := range children[1:] {
		if binNode.Name() != "bin" {
			return nil, fmt.Errorf("%w: expected <bin>, got <%s>", merr.ErrValidation, binNode.Name())
		}
		binChildren := binNode.Children()
		if len(binChildren) != 2 {
			return nil, fmt.Errorf("%w: <bin> requires exactly 2 sub-expressions, got %d", merr.ErrInvalidArgument, len(binChildren))
		}
		upper, err := f.build(binChildren[0], basePath)
		if err != nil {
			return nil, err
		}
		weight, err := f.build(binChildren[1], basePath)
		if err != nil {
			return nil, err
		}
		bins = append(bins, model.HistogramBin{Upper: upper, Weight: weight})
	}

	h := &model.HistogramExpression{Lower: lower, Bins: bins}
	return h, nil
}

// buildSwitch implements spec §4.2 bespoke case 4: the last child is
// the default value, every preceding child is a <case> with exactly
// one condition expression and one value expression.
func (f *Factory) buildSwitch(node xmlio.Node, basePath string) (model.Expression, error) {
	children := node.Children()
	if len(children) < 1 {
		return nil, fmt.Errorf("%w: switch requires a default value", merr.ErrInvalidArgument)
	}

	cases := make([]model.SwitchCase, 0, len(children)-1)
	for _, caseNode := range children[:len(children)-1] {
		if caseNode.Name() != "case" {
			return nil, fmt.Errorf("%w: expected <case>, got <%s>", merr.ErrValidation, caseNode.Name())
		}
		caseChildren := caseNode.Children()
		if len(caseChildren) != 2 {
			return nil, fmt.Errorf("%w: <case> requires exactly 2 sub-expressions, got %d", merr.ErrInvalidArgument, len(caseChildren))
		}
		cond, err := f.build(caseChildren[0], basePath)
		if err != nil {
			return nil, err
		}
		val, err := f.build(caseChildren[1], basePath)
		if err != nil {
			return nil, err
		}
		cases = append(cases, model.SwitchCase{Condition: cond, Value: val})
	}

	def, err := f.build(children[len(children)-1], basePath)
	if err != nil {
		return nil, err
	}

	return &model.SwitchExpression{Cases: cases, Default: def}, nil
}

// buildDispatched handles every remaining operator tag by recursively
// building each child expression and then dispatching to the table's
// arity-checked constructor.
func (f *Factory) buildDispatched(node xmlio.Node, basePath string) (model.Expression, error) {
	children := node.Children()
	args := make([]model.Expression, 0, len(children))
	for _, c := range children {
		expr, err := f.build(c, basePath)
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
	}
	return f.table.Build(node.Name(), args)
}
