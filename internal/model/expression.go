package model

import (
	"fmt"

	"github.com/openpsa-mef/loader/internal/merr"
)

// Expression is the common interface of every node in the expression
// tree: constants, references, arithmetic/boolean/comparison operators,
// ITE/Switch/Histogram, and the probability distributions. Grounded on
// initializer.cc's Expression class hierarchy and spec §3/§4.2.
type Expression interface {
	// Args returns the expression's operand sub-expressions, in order.
	// Leaf expressions (constants, references) return nil.
	Args() []Expression
	// Validate checks the expression's own constraints. Only
	// HistogramExpression (at least one bin) and ParameterExpression
	// (reference unit agrees with the defined unit) check anything; every
	// other variant, including the deviates, always succeeds. The
	// validator runs it on every recorded expression after cycle detection
	// (spec §4.2, §4.8 step 5); the factory also runs
	// ParameterExpression's check when it builds the reference.
	Validate() error
}

// exprBase supplies the common Args() storage every non-leaf expression
// embeds; Validate() is overridden per concrete type when it has real
// constraints to check.
type exprBase struct {
	args []Expression
}

func (e *exprBase) Args() []Expression { return e.args }
func (e *exprBase) Validate() error    { return nil }

// ConstantExpression is a fixed numeric or boolean literal: <int>,
// <float>, <bool>, <pi>.
type ConstantExpression struct {
	Value float64
}

func (c *ConstantExpression) Args() []Expression { return nil }
func (c *ConstantExpression) Validate() error    { return nil }

// Process-wide shared constants, safe as read-only references from any
// number of formulas/expressions (spec §3 Ownership, §9 Shared constants).
var (
	Zero = &ConstantExpression{Value: 0}
	One  = &ConstantExpression{Value: 1}
	Pi   = &ConstantExpression{Value: 3.14159265358979323846}
)

// MissionTimeExpression resolves to the Model's mission-time value at
// evaluation time; the loader only needs to carry the reference and the
// unit it was tagged with.
type MissionTimeExpression struct {
	Unit Unit
}

func (m *MissionTimeExpression) Args() []Expression { return nil }
func (m *MissionTimeExpression) Validate() error    { return nil }

// ParameterExpression is a reference to a named Parameter; resolving it
// clears the parameter's unused flag (spec §3).
type ParameterExpression struct {
	Param *Parameter
	Unit  Unit // as annotated at the reference site, may be UnitNone
}

func (p *ParameterExpression) Args() []Expression { return nil }

func (p *ParameterExpression) Validate() error {
	if p.Unit != UnitNone && p.Param.Unit != UnitNone && p.Unit != p.Param.Unit {
		return &UnitMismatchError{Parameter: p.Param.Name, Defined: p.Param.Unit, Referenced: p.Unit}
	}
	return nil
}

// UnitMismatchError reports a parameter reference whose unit attribute
// disagrees with the parameter's own defined unit (spec invariant 5).
type UnitMismatchError struct {
	Parameter          string
	Defined, Referenced Unit
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("unit mismatch for parameter '%s': defined as '%s', referenced as '%s'",
		e.Parameter, e.Defined, e.Referenced)
}

func (e *UnitMismatchError) Unwrap() error { return merr.ErrValidation }

// naryKind names the operator family for the generic N-ary
// arithmetic/boolean expression types below, used only for error
// messages and Validate dispatch.
type naryKind string

// Unary arithmetic/trig expressions: neg, abs, acos, asin, atan, cos,
// sin, tan, cosh, sinh, tanh, exp, log, log10, sqrt, ceil, floor, not.
type UnaryExpression struct {
	exprBase
	Op string
}

func NewUnaryExpression(op string, arg Expression) *UnaryExpression {
	return &UnaryExpression{exprBase: exprBase{args: []Expression{arg}}, Op: op}
}

// Binary expressions with exactly two arguments: sub, div, mod, pow,
// atleast-2-specific comparisons (lt, gt, leq, geq, df).
type BinaryExpression struct {
	exprBase
	Op string
}

func NewBinaryExpression(op string, lhs, rhs Expression) *BinaryExpression {
	return &BinaryExpression{exprBase: exprBase{args: []Expression{lhs, rhs}}, Op: op}
}

// VariadicExpression holds the n-ary operators that accept two or more
// arguments: add, mul, min, max, mean, and, or, eq.
type VariadicExpression struct {
	exprBase
	Op string
}

func NewVariadicExpression(op string, args []Expression) *VariadicExpression {
	return &VariadicExpression{exprBase: exprBase{args: args}, Op: op}
}

// ITEExpression is the if-then-else ternary: condition, then-value,
// else-value, in that order.
type ITEExpression struct{ exprBase }

func NewITEExpression(cond, then, els Expression) *ITEExpression {
	return &ITEExpression{exprBase{args: []Expression{cond, then, els}}}
}

// SwitchCase is one <case> clause of a Switch expression: a condition
// and the value it selects.
type SwitchCase struct {
	Condition Expression
	Value     Expression
}

// SwitchExpression evaluates each case in order and falls through to
// Default if none match (spec §4.2 bespoke case 4).
type SwitchExpression struct {
	Cases   []SwitchCase
	Default Expression
}

func (s *SwitchExpression) Args() []Expression {
	args := make([]Expression, 0, len(s.Cases)*2+1)
	for _, c := range s.Cases {
		args = append(args, c.Condition, c.Value)
	}
	return append(args, s.Default)
}

func (s *SwitchExpression) Validate() error { return nil }

// HistogramBin is one (upper-boundary, weight) pair of a Histogram.
type HistogramBin struct {
	Upper  Expression
	Weight Expression
}

// HistogramExpression represents a piecewise probability density: a
// lower boundary plus an ordered set of bins (spec §4.2 bespoke case 1).
type HistogramExpression struct {
	Lower Expression
	Bins  []HistogramBin
}

func (h *HistogramExpression) Args() []Expression {
	args := []Expression{h.Lower}
	for _, b := range h.Bins {
		args = append(args, b.Upper, b.Weight)
	}
	return args
}

func (h *HistogramExpression) Validate() error {
	if len(h.Bins) == 0 {
		return fmt.Errorf("%w: histogram must have at least one bin", ErrInvalidExpression)
	}
	return nil
}

// Boundaries returns the histogram's boundary values in order: the
// lower bound followed by each bin's upper bound. Weights returns each
// bin's weight in the same order. These assume every sub-expression is
// itself a ConstantExpression, which is the only shape the loader's
// ExpressionFactory produces from literal XML content; callers needing
// the general evaluated form belong to the (out of scope) analysis
// runtime.
func (h *HistogramExpression) Boundaries() []float64 {
	out := make([]float64, 0, len(h.Bins)+1)
	if c, ok := h.Lower.(*ConstantExpression); ok {
		out = append(out, c.Value)
	}
	for _, b := range h.Bins {
		if c, ok := b.Upper.(*ConstantExpression); ok {
			out = append(out, c.Value)
		}
	}
	return out
}

func (h *HistogramExpression) Weights() []float64 {
	out := make([]float64, 0, len(h.Bins))
	for _, b := range h.Bins {
		if c, ok := b.Weight.(*ConstantExpression); ok {
			out = append(out, c.Value)
		}
	}
	return out
}

// Distribution expressions. Each carries exactly the argument shape its
// name implies; arity is enforced by the ExpressionFactory's dispatch
// table (internal/exprfactory), not here.

type ExponentialExpression struct{ exprBase }

func NewExponentialExpression(rate, time Expression) *ExponentialExpression {
	return &ExponentialExpression{exprBase{args: []Expression{rate, time}}}
}

type GLMExpression struct{ exprBase }

func NewGLMExpression(args []Expression) *GLMExpression {
	return &GLMExpression{exprBase{args: args}}
}

type WeibullExpression struct{ exprBase }

func NewWeibullExpression(args []Expression) *WeibullExpression {
	return &WeibullExpression{exprBase{args: args}}
}

// PeriodicTestExpression covers the 4-, 5-, and 11-argument forms
// (spec §4.2 bespoke case 2); ArgCount records which was used so
// Validate (and any downstream analysis) can tell them apart.
type PeriodicTestExpression struct {
	exprBase
	ArgCount int
}

func NewPeriodicTestExpression(args []Expression) (*PeriodicTestExpression, error) {
	switch len(args) {
	case 4, 5, 11:
		return &PeriodicTestExpression{exprBase{args: args}, len(args)}, nil
	default:
		return nil, &InvalidArgumentCountError{Constructor: "periodic-test", Count: len(args), Allowed: []int{4, 5, 11}}
	}
}

type UniformDeviateExpression struct{ exprBase }

func NewUniformDeviateExpression(min, max Expression) *UniformDeviateExpression {
	return &UniformDeviateExpression{exprBase{args: []Expression{min, max}}}
}

type NormalDeviateExpression struct{ exprBase }

func NewNormalDeviateExpression(mean, stddev Expression) *NormalDeviateExpression {
	return &NormalDeviateExpression{exprBase{args: []Expression{mean, stddev}}}
}

// LognormalDeviateExpression covers the 2-argument (mean, error-factor
// at the model's default confidence) and 3-argument (mean, error
// factor, confidence level) forms (spec §4.2 bespoke case 3).
type LognormalDeviateExpression struct {
	exprBase
	ArgCount int
}

func NewLognormalDeviateExpression(args []Expression) (*LognormalDeviateExpression, error) {
	switch len(args) {
	case 2, 3:
		return &LognormalDeviateExpression{exprBase{args: args}, len(args)}, nil
	default:
		return nil, &InvalidArgumentCountError{Constructor: "lognormal-deviate", Count: len(args), Allowed: []int{2, 3}}
	}
}

type GammaDeviateExpression struct{ exprBase }

func NewGammaDeviateExpression(k, theta Expression) *GammaDeviateExpression {
	return &GammaDeviateExpression{exprBase{args: []Expression{k, theta}}}
}

type BetaDeviateExpression struct{ exprBase }

func NewBetaDeviateExpression(alpha, beta Expression) *BetaDeviateExpression {
	return &BetaDeviateExpression{exprBase{args: []Expression{alpha, beta}}}
}

// ErrInvalidExpression marks a structurally-valid-but-semantically-wrong
// expression (e.g. an empty histogram), discovered during Validate()
// rather than at construction time.
var ErrInvalidExpression = fmt.Errorf("invalid expression")

// InvalidArgumentCountError reports a wrong argument count for a
// constructor with an irregular arity (spec §4.2, §7 InvalidArgument).
type InvalidArgumentCountError struct {
	Constructor string
	Count       int
	Allowed     []int
}

func (e *InvalidArgumentCountError) Error() string {
	return fmt.Sprintf("invalid argument count %d for '%s'; allowed: %v", e.Count, e.Constructor, e.Allowed)
}

func (e *InvalidArgumentCountError) Unwrap() error { return merr.ErrValidation }
