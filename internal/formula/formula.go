// Package formula builds model.Formula values from their MEF XML
// <and>/<or>/.../<atleast> nodes, resolving each argument reference
// through the model's scoped symbol table (spec §4.3). Grounded on the
// teacher's internal/builder link-resolution style (explicit dependency
// edges resolved against a name map) adapted to formula arguments
// instead of step dependencies.
package formula

import (
	"fmt"
	"strconv"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/openpsa-mef/loader/internal/xmlio"
)

// operatorTags maps an MEF formula XML tag to its Operator, covering
// every connective except vote, whose tag is "atleast" (spec §3).
var operatorTags = map[string]model.Operator{
	"and":  model.OpAnd,
	"or":   model.OpOr,
	"not":  model.OpNot,
	"xor":  model.OpXor,
	"nand": model.OpNand,
	"nor":  model.OpNor,
}

// Builder constructs Formula values against mdl's symbol tables.
type Builder struct {
	mdl *model.Model
}

// NewBuilder returns a Builder bound to mdl.
func NewBuilder(mdl *model.Model) *Builder {
	return &Builder{mdl: mdl}
}

// Build parses node as a formula at basePath, recursing into inline
// sub-formulas and resolving entity-reference arguments (spec §4.3).
func (b *Builder) Build(node xmlio.Node, basePath string) (*model.Formula, error) {
	f, err := b.build(node, basePath)
	if err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	return f, nil
}

func (b *Builder) build(node xmlio.Node, basePath string) (*model.Formula, error) {
	op, voteNumber, err := b.operator(node)
	if err != nil {
		return nil, err
	}

	if op == model.OpNull {
		arg, err := b.resolveNullArg(node, basePath)
		if err != nil {
			return nil, err
		}
		return &model.Formula{Operator: op, Args: []model.FormulaArg{arg}, VoteNumber: voteNumber, Line: node.Line()}, nil
	}

	args := make([]model.FormulaArg, 0, len(node.Children()))
	for _, child := range node.Children() {
		arg, err := b.resolveArg(child, basePath)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	f := &model.Formula{Operator: op, Args: args, VoteNumber: voteNumber, Line: node.Line()}
	return f, nil
}

// resolveNullArg resolves a null (pass-through) formula's sole argument:
// node itself, either a boolean constant or a named entity reference
// (spec §4.3; original_source/src/initializer.cc's kNull branch adds the
// formula node itself as the single argument).
func (b *Builder) resolveNullArg(node xmlio.Node, basePath string) (model.FormulaArg, error) {
	if node.Name() == "constant" {
		return b.resolveConstant(node)
	}
	return b.resolveReference(node, basePath)
}

// operator determines a formula node's Operator and, for vote, its
// threshold (spec §4.3): a `name` attribute or a `constant` tag both
// mean null (pass-through); otherwise the tag itself names the operator.
func (b *Builder) operator(node xmlio.Node) (model.Operator, int, error) {
	if _, hasName := node.Attr("name"); hasName {
		return model.OpNull, 0, nil
	}
	if node.Name() == "constant" {
		return model.OpNull, 0, nil
	}
	if node.Name() == "atleast" {
		minStr, ok := node.Attr("min")
		if !ok {
			return "", 0, fmt.Errorf("%w: <atleast> requires a 'min' attribute", merr.ErrValidation)
		}
		min, err := strconv.Atoi(minStr)
		if err != nil || min < 1 {
			return "", 0, fmt.Errorf("%w: invalid vote threshold '%s'", merr.ErrValidation, minStr)
		}
		return model.OpVote, min, nil
	}
	op, ok := operatorTags[node.Name()]
	if !ok {
		return "", 0, fmt.Errorf("%w: unknown formula operator tag '%s'", merr.ErrValidation, node.Name())
	}
	return op, 0, nil
}

// resolveArg resolves one formula child: a boolean constant to the
// shared HouseEvent singleton, an inline sub-formula to a recursively
// built Formula, or an entity reference to a Gate/BasicEvent/HouseEvent
// (spec §4.3).
func (b *Builder) resolveArg(node xmlio.Node, basePath string) (model.FormulaArg, error) {
	if node.Name() == "constant" {
		return b.resolveConstant(node)
	}
	if _, isOperator := operatorTags[node.Name()]; (isOperator || node.Name() == "atleast") {
		if _, hasName := node.Attr("name"); !hasName {
			return b.build(node, basePath)
		}
	}
	return b.resolveReference(node, basePath)
}

func (b *Builder) resolveConstant(node xmlio.Node) (model.FormulaArg, error) {
	value, _ := node.Attr("value")
	switch value {
	case "true", "1":
		return model.HouseEventTrue, nil
	case "false", "0":
		return model.HouseEventFalse, nil
	default:
		return nil, fmt.Errorf("%w: invalid boolean constant '%s'", merr.ErrValidation, value)
	}
}

// resolveReference resolves node as a named entity reference. The
// `type` attribute, or failing that node's own tag, supplies the
// expected kind; "event" (or an unrecognized tag used bare, e.g. a
// plain <event> node) means "any event kind" (spec §4.3).
func (b *Builder) resolveReference(node xmlio.Node, basePath string) (model.FormulaArg, error) {
	name, ok := node.Attr("name")
	if !ok {
		return nil, fmt.Errorf("%w: formula argument is missing a 'name' attribute", merr.ErrValidation)
	}

	kind, ok := node.Attr("type")
	if !ok {
		kind = node.Name()
	}

	switch kind {
	case "gate":
		return b.mdl.GetGate(name, basePath)
	case "basic-event":
		return b.mdl.GetBasicEvent(name, basePath)
	case "house-event":
		return b.mdl.GetHouseEvent(name, basePath)
	case "event":
		return b.mdl.GetEvent(name, basePath)
	default:
		return b.mdl.GetEvent(name, basePath)
	}
}
