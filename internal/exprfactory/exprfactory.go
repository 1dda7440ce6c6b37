// Package exprfactory dispatches an XML operator tag to a typed
// model.Expression constructor, enforcing each operator's arity (spec
// §4.2). It is grounded on the teacher's internal/bggoexpr "Expressioner
// + generic ParseBlock[T]" dispatch idiom, replacing the original
// implementation's compile-time Extractor<T,N> template metaprogramming
// with the data-driven registry spec §9 calls for: a per-tag descriptor
// of {arity-kind, constructor}.
package exprfactory

import (
	"fmt"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
)

// arityKind names how a constructor's argument count is checked.
type arityKind int

const (
	fixedArity arityKind = iota
	variadicArity
	customArity
)

// constructor builds a model.Expression from an already-resolved list
// of child expressions. Fixed- and variadic-arity entries share this
// signature; custom entries additionally validate shape internally.
type constructor func(args []model.Expression) (model.Expression, error)

// descriptor is one row of the dispatch table: how many arguments tag
// requires, and how to build the expression once they have been
// resolved.
type descriptor struct {
	kind    arityKind
	n       int // only meaningful when kind == fixedArity
	build   constructor
}

// Table is an ExpressionFactory's tag → descriptor dispatch map, keyed
// by MEF expression XML tag (spec §4.2's exact operator vocabulary).
type Table struct {
	entries map[string]descriptor
}

// New returns a Table preloaded with the full MEF expression vocabulary.
func New() *Table {
	t := &Table{entries: make(map[string]descriptor)}
	t.registerDefaults()
	return t
}

func (t *Table) register(tag string, kind arityKind, n int, build constructor) {
	t.entries[tag] = descriptor{kind: kind, n: n, build: build}
}

// Build dispatches tag to its constructor with the given already
// type-checked child expressions, enforcing the tag's declared arity
// (spec §4.2). An unknown tag fails with a validation error.
func (t *Table) Build(tag string, args []model.Expression) (model.Expression, error) {
	d, ok := t.entries[tag]
	if !ok {
		return nil, fmt.Errorf("%w: unknown expression tag '%s'", merr.ErrValidation, tag)
	}
	switch d.kind {
	case fixedArity:
		if len(args) != d.n {
			return nil, &InvalidArityError{Tag: tag, Got: len(args), Want: fmt.Sprintf("%d", d.n)}
		}
	case variadicArity:
		if len(args) < 2 {
			return nil, &InvalidArityError{Tag: tag, Got: len(args), Want: ">= 2"}
		}
	}
	expr, err := d.build(args)
	if err != nil {
		return nil, err
	}
	return expr, nil
}

// InvalidArityError reports an argument-count mismatch caught by the
// dispatch table itself (as opposed to a bespoke extractor's own
// arity check, e.g. PeriodicTest's).
type InvalidArityError struct {
	Tag  string
	Got  int
	Want string
}

func (e *InvalidArityError) Error() string {
	return fmt.Sprintf("%v: operator '%s' expects %s arguments, got %d", merr.ErrInvalidArgument, e.Tag, e.Want, e.Got)
}

func (e *InvalidArityError) Unwrap() error { return merr.ErrValidation }

func (t *Table) registerDefaults() {
	unary := func(op string) constructor {
		return func(args []model.Expression) (model.Expression, error) {
			return model.NewUnaryExpression(op, args[0]), nil
		}
	}
	binary := func(op string) constructor {
		return func(args []model.Expression) (model.Expression, error) {
			return model.NewBinaryExpression(op, args[0], args[1]), nil
		}
	}
	variadic := func(op string) constructor {
		return func(args []model.Expression) (model.Expression, error) {
			return model.NewVariadicExpression(op, args), nil
		}
	}

	// Unary arithmetic/trig/boolean, fixed arity 1.
	for _, op := range []string{"neg", "abs", "acos", "asin", "atan", "cos", "sin", "tan",
		"cosh", "sinh", "tanh", "exp", "log", "log10", "sqrt", "ceil", "floor", "not"} {
		t.register(op, fixedArity, 1, unary(op))
	}

	// Binary arithmetic/comparison, fixed arity 2.
	for _, op := range []string{"sub", "div", "mod", "pow", "lt", "gt", "leq", "geq", "df"} {
		t.register(op, fixedArity, 2, binary(op))
	}

	// Variadic arithmetic/boolean/comparison, at least 2 arguments.
	for _, op := range []string{"add", "mul", "min", "max", "mean", "and", "or", "eq"} {
		t.register(op, variadicArity, 0, variadic(op))
	}

	t.register("ite", fixedArity, 3, func(args []model.Expression) (model.Expression, error) {
		return model.NewITEExpression(args[0], args[1], args[2]), nil
	})

	// Distributions with fixed arity.
	t.register("exponential", fixedArity, 2, func(args []model.Expression) (model.Expression, error) {
		return model.NewExponentialExpression(args[0], args[1]), nil
	})
	t.register("uniform-deviate", fixedArity, 2, func(args []model.Expression) (model.Expression, error) {
		return model.NewUniformDeviateExpression(args[0], args[1]), nil
	})
	t.register("normal-deviate", fixedArity, 2, func(args []model.Expression) (model.Expression, error) {
		return model.NewNormalDeviateExpression(args[0], args[1]), nil
	})
	t.register("gamma-deviate", fixedArity, 2, func(args []model.Expression) (model.Expression, error) {
		return model.NewGammaDeviateExpression(args[0], args[1]), nil
	})
	t.register("beta-deviate", fixedArity, 2, func(args []model.Expression) (model.Expression, error) {
		return model.NewBetaDeviateExpression(args[0], args[1]), nil
	})

	// GLM and Weibull are fixed-shape in the original (4 and 3
	// arguments respectively) but are represented here as their full
	// argument vector, matching how the rest of this table treats
	// distributions whose arguments are all homogeneous expressions.
	t.register("GLM", fixedArity, 4, func(args []model.Expression) (model.Expression, error) {
		return model.NewGLMExpression(args), nil
	})
	t.register("Weibull", fixedArity, 3, func(args []model.Expression) (model.Expression, error) {
		return model.NewWeibullExpression(args), nil
	})

	// Custom-arity bespoke constructors (spec §4.2 bespoke cases 2, 3).
	t.register("lognormal-deviate", customArity, 0, func(args []model.Expression) (model.Expression, error) {
		return model.NewLognormalDeviateExpression(args)
	})
	t.register("periodic-test", customArity, 0, func(args []model.Expression) (model.Expression, error) {
		return model.NewPeriodicTestExpression(args)
	})
}
