// Package ccf defines a CcfGroup's body once all names are known:
// its distribution and its factors, leveled or positional (spec §4.6,
// §4.7 CcfGroup definer). Member registration itself happens earlier,
// in internal/registrar (spec §4.4 step 3), since members need no
// forward reference.
package ccf

import (
	"fmt"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/openpsa-mef/loader/internal/xmlio"
)

// ExprBuilder constructs an Expression from an XML node, bound to the
// group's base path.
type ExprBuilder func(node xmlio.Node, basePath string) (model.Expression, error)

// Processor defines CcfGroup bodies.
type Processor struct {
	buildExpr ExprBuilder
}

// NewProcessor returns a Processor that builds factor/distribution
// expressions via buildExpr.
func NewProcessor(buildExpr ExprBuilder) *Processor {
	return &Processor{buildExpr: buildExpr}
}

// Define iterates node's children (the group's body, excluding the
// <members> already consumed at registration time) and dispatches
// <distribution>, <factor>, and <factors> (spec §4.6).
func (p *Processor) Define(group *model.CcfGroup, node xmlio.Node) error {
	for _, child := range node.Children() {
		switch child.Name() {
		case "members":
			continue // already processed by the registrar
		case "distribution":
			expr, err := p.oneExpression(child, group.BasePath)
			if err != nil {
				return err
			}
			group.Distribution = expr
		case "factor":
			if err := p.defineFactor(group, child); err != nil {
				return err
			}
		case "factors":
			for _, factorNode := range child.Children() {
				if factorNode.Name() != "factor" {
					continue
				}
				if err := p.defineFactor(group, factorNode); err != nil {
					return err
				}
			}
		default:
			return merr.AtLine(child.Line(), fmt.Errorf("%w: unknown CCF group element <%s>", merr.ErrValidation, child.Name()))
		}
	}
	return nil
}

func (p *Processor) defineFactor(group *model.CcfGroup, node xmlio.Node) error {
	expr, err := p.oneExpression(node, group.BasePath)
	if err != nil {
		return err
	}
	level := 0
	if levelStr, ok := node.Attr("level"); ok {
		var parsed int
		if _, err := fmt.Sscanf(levelStr, "%d", &parsed); err != nil || parsed < 1 {
			return merr.AtLine(node.Line(), fmt.Errorf("%w: invalid CCF factor level '%s'", merr.ErrValidation, levelStr))
		}
		level = parsed
	}
	group.AddFactor(expr, level)
	return nil
}

func (p *Processor) oneExpression(node xmlio.Node, basePath string) (model.Expression, error) {
	children := node.Children()
	if len(children) != 1 {
		return nil, merr.AtLine(node.Line(), fmt.Errorf("%w: <%s> requires exactly one expression child, got %d", merr.ErrInvalidArgument, node.Name(), len(children)))
	}
	return p.buildExpr(children[0], basePath)
}
