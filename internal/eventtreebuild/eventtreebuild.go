// Package eventtreebuild implements EventTreeBuilder: registering an
// event tree's functional events, sequences, and named-branch shells up
// front, then defining each branch body once every name in the file set
// is known (spec §4.6). Grounded on the teacher's internal/builder
// links_explicit.go forward-reference resolution, adapted from
// depends_on string lists to the fork/sequence/branch target shapes MEF
// branches resolve to.
package eventtreebuild

import (
	"fmt"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/openpsa-mef/loader/internal/registrar"
	"github.com/openpsa-mef/loader/internal/xmlio"
)

// ExprBuilder constructs an Expression from an expression XML node,
// bound to the model and base path the caller already holds a Factory
// for. Branches and sequences need this for their collect-expression
// instructions (spec §3 Sequence).
type ExprBuilder func(xmlio.Node) (model.Expression, error)

// Builder registers and later defines event trees against mdl.
type Builder struct {
	mdl        *model.Model
	reg        *registrar.Registrar
	exprBuild  ExprBuilder
}

// NewBuilder returns a Builder bound to mdl, registering sequences
// through reg so they participate in the normal deferred work list, and
// building collect-expression instructions via exprBuild.
func NewBuilder(mdl *model.Model, reg *registrar.Registrar, exprBuild ExprBuilder) *Builder {
	return &Builder{mdl: mdl, reg: reg, exprBuild: exprBuild}
}

// RegisterEventTree collects the tree's functional events, registers its
// global sequences, and collects its named-branch shells (bodies
// deferred), in that order, then adds the tree itself to the model
// (spec §4.6).
func (b *Builder) RegisterEventTree(node xmlio.Node) (*model.EventTree, error) {
	name, ok := node.Attr("name")
	if !ok {
		return nil, merr.AtLine(node.Line(), fmt.Errorf("%w: <define-event-tree> is missing a 'name' attribute", merr.ErrValidation))
	}

	tree := &model.EventTree{Element: model.Element{Name: name}}

	for _, child := range node.Children() {
		if child.Name() != "define-functional-event" {
			continue
		}
		feName, ok := child.Attr("name")
		if !ok {
			return nil, merr.AtLine(child.Line(), fmt.Errorf("%w: <define-functional-event> is missing a 'name' attribute", merr.ErrValidation))
		}
		tree.FunctionalEvents = append(tree.FunctionalEvents, &model.FunctionalEvent{Element: model.Element{Name: feName}})
	}

	for _, child := range node.Children() {
		if child.Name() != "define-sequence" {
			continue
		}
		if _, err := b.reg.RegisterSequence(child); err != nil {
			return nil, err
		}
	}

	for _, child := range node.Children() {
		if child.Name() != "define-branch" {
			continue
		}
		nbName, ok := child.Attr("name")
		if !ok {
			return nil, merr.AtLine(child.Line(), fmt.Errorf("%w: <define-branch> is missing a 'name' attribute", merr.ErrValidation))
		}
		tree.NamedBranches = append(tree.NamedBranches, &model.NamedBranch{Element: model.Element{Name: nbName}})
	}

	if err := b.mdl.AddEventTree(tree); err != nil {
		return nil, merr.AtLine(node.Line(), err)
	}
	b.reg.Defer(registrar.WorkEventTree, tree, node)
	return tree, nil
}

// DefineSequence parses node's children as a flat instruction list and
// attaches them to seq (spec §4.7 Sequence definer).
func (b *Builder) DefineSequence(seq *model.Sequence, node xmlio.Node) error {
	instructions, err := b.parseInstructions(node.Children())
	if err != nil {
		return err
	}
	seq.Instructions = instructions
	return nil
}

// DefineEventTree defines every named branch (in declared order) and
// the tree's initial_state, now that all names in the input set are
// known (spec §4.6, §4.7 EventTree definer).
func (b *Builder) DefineEventTree(tree *model.EventTree, node xmlio.Node) error {
	branchNodes := make(map[string]xmlio.Node, len(tree.NamedBranches))
	for _, child := range node.Children() {
		if child.Name() != "define-branch" {
			continue
		}
		name, _ := child.Attr("name")
		branchNodes[name] = child
	}

	for _, nb := range tree.NamedBranches {
		bodyNode, ok := branchNodes[nb.Name]
		if !ok {
			continue
		}
		branch, err := b.defineBranch(tree, bodyNode)
		if err != nil {
			return err
		}
		nb.Branch = branch
	}

	for _, child := range node.Children() {
		if child.Name() != "initial-state" {
			continue
		}
		branch, err := b.defineBranch(tree, child)
		if err != nil {
			return err
		}
		tree.InitialState = branch
	}

	return nil
}

// defineBranch implements DefineBranch (spec §4.6): node's children
// split into a leading list of instructions and a trailing target
// element (fork, sequence-by-name-reference, or branch-by-name-reference).
func (b *Builder) defineBranch(tree *model.EventTree, node xmlio.Node) (*model.Branch, error) {
	children := node.Children()
	if len(children) == 0 {
		return nil, merr.AtLine(node.Line(), fmt.Errorf("%w: branch body has no target", merr.ErrValidation))
	}

	instructionNodes := children[:len(children)-1]
	targetNode := children[len(children)-1]

	instructions, err := b.parseInstructions(instructionNodes)
	if err != nil {
		return nil, err
	}

	branch := &model.Branch{Instructions: instructions, Line: node.Line()}

	target, err := b.resolveTarget(tree, targetNode)
	if err != nil {
		return nil, err
	}
	branch.Target = target

	return branch, nil
}

func (b *Builder) resolveTarget(tree *model.EventTree, node xmlio.Node) (model.BranchTarget, error) {
	switch node.Name() {
	case "fork":
		return b.resolveFork(tree, node)
	case "sequence":
		name, ok := node.Attr("name")
		if !ok {
			return nil, merr.AtLine(node.Line(), fmt.Errorf("%w: <sequence> reference is missing a 'name' attribute", merr.ErrValidation))
		}
		seq, err := b.mdl.GetSequence(name)
		if err != nil {
			return nil, merr.AtLine(node.Line(), err)
		}
		return seq, nil
	case "branch":
		name, ok := node.Attr("name")
		if !ok {
			return nil, merr.AtLine(node.Line(), fmt.Errorf("%w: <branch> reference is missing a 'name' attribute", merr.ErrValidation))
		}
		nb := tree.FindNamedBranch(name)
		if nb == nil {
			return nil, merr.AtLine(node.Line(), fmt.Errorf("%w: undefined branch '%s' in event tree '%s'", merr.ErrValidation, name, tree.Name))
		}
		return nb, nil
	default:
		return nil, merr.AtLine(node.Line(), fmt.Errorf("%w: unknown branch target <%s>", merr.ErrValidation, node.Name()))
	}
}

// resolveFork implements the "fork" target case (spec §4.6): its
// functional-event attribute must name a registered functional event
// of tree, and each child <path> carries a state label and a recursive
// branch body. The new Fork is appended to the tree's owned Forks list.
func (b *Builder) resolveFork(tree *model.EventTree, node xmlio.Node) (*model.Fork, error) {
	feName, ok := node.Attr("functional-event")
	if !ok {
		return nil, merr.AtLine(node.Line(), fmt.Errorf("%w: <fork> is missing a 'functional-event' attribute", merr.ErrValidation))
	}
	fe := tree.FindFunctionalEvent(feName)
	if fe == nil {
		return nil, merr.AtLine(node.Line(), fmt.Errorf("%w: undefined functional event '%s' in event tree '%s'", merr.ErrValidation, feName, tree.Name))
	}

	fork := &model.Fork{FunctionalEvent: fe}
	for _, pathNode := range node.Children() {
		if pathNode.Name() != "path" {
			continue
		}
		state, ok := pathNode.Attr("state")
		if !ok {
			return nil, merr.AtLine(pathNode.Line(), fmt.Errorf("%w: <path> is missing a 'state' attribute", merr.ErrValidation))
		}
		pathBranch, err := b.defineBranch(tree, pathNode)
		if err != nil {
			return nil, err
		}
		fork.Paths = append(fork.Paths, model.Path{State: state, Branch: pathBranch})
	}

	tree.Forks = append(tree.Forks, fork)
	return fork, nil
}

// parseInstructions parses a branch's leading instruction nodes. The
// only instruction kind this module constructs is CollectExpression
// (spec §3 Sequence).
func (b *Builder) parseInstructions(nodes []xmlio.Node) ([]model.Instruction, error) {
	instructions := make([]model.Instruction, 0, len(nodes))
	for _, n := range nodes {
		if n.Name() != "collect-expression" {
			return nil, merr.AtLine(n.Line(), fmt.Errorf("%w: unknown instruction <%s>", merr.ErrValidation, n.Name()))
		}
		children := n.Children()
		if len(children) != 1 {
			return nil, merr.AtLine(n.Line(), fmt.Errorf("%w: <collect-expression> requires exactly one expression child", merr.ErrInvalidArgument))
		}
		expr, err := b.exprBuild(children[0])
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, model.CollectExpression{Expression: expr})
	}
	return instructions, nil
}
