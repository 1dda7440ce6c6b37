package exprfactory

import (
	"errors"
	"testing"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(v float64) model.Expression { return &model.ConstantExpression{Value: v} }

func TestTable_Build_FixedArity(t *testing.T) {
	tbl := New()

	t.Run("unary op with correct arity succeeds", func(t *testing.T) {
		expr, err := tbl.Build("neg", []model.Expression{lit(1)})
		require.NoError(t, err)
		assert.IsType(t, &model.UnaryExpression{}, expr)
	})

	t.Run("unary op with wrong arity fails", func(t *testing.T) {
		_, err := tbl.Build("neg", []model.Expression{lit(1), lit(2)})
		require.Error(t, err)
		var arityErr *InvalidArityError
		require.ErrorAs(t, err, &arityErr)
		assert.Equal(t, "neg", arityErr.Tag)
		assert.True(t, errors.Is(err, merr.ErrValidation))
	})

	t.Run("binary op with correct arity succeeds", func(t *testing.T) {
		expr, err := tbl.Build("sub", []model.Expression{lit(1), lit(2)})
		require.NoError(t, err)
		assert.IsType(t, &model.BinaryExpression{}, expr)
	})

	t.Run("ite requires exactly 3 arguments", func(t *testing.T) {
		_, err := tbl.Build("ite", []model.Expression{lit(1), lit(2)})
		require.Error(t, err)
	})
}

func TestTable_Build_VariadicArity(t *testing.T) {
	tbl := New()

	t.Run("two arguments is the minimum", func(t *testing.T) {
		expr, err := tbl.Build("add", []model.Expression{lit(1), lit(2)})
		require.NoError(t, err)
		assert.IsType(t, &model.VariadicExpression{}, expr)
	})

	t.Run("more than two arguments is fine", func(t *testing.T) {
		_, err := tbl.Build("and", []model.Expression{lit(1), lit(2), lit(3), lit(4)})
		require.NoError(t, err)
	})

	t.Run("fewer than two arguments fails", func(t *testing.T) {
		_, err := tbl.Build("or", []model.Expression{lit(1)})
		require.Error(t, err)
	})
}

func TestTable_Build_CustomArity(t *testing.T) {
	tbl := New()

	t.Run("lognormal-deviate accepts 2 arguments", func(t *testing.T) {
		_, err := tbl.Build("lognormal-deviate", []model.Expression{lit(1), lit(2)})
		require.NoError(t, err)
	})

	t.Run("lognormal-deviate accepts 3 arguments", func(t *testing.T) {
		_, err := tbl.Build("lognormal-deviate", []model.Expression{lit(1), lit(2), lit(3)})
		require.NoError(t, err)
	})

	t.Run("lognormal-deviate rejects 4 arguments", func(t *testing.T) {
		_, err := tbl.Build("lognormal-deviate", []model.Expression{lit(1), lit(2), lit(3), lit(4)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, merr.ErrValidation))
	})

	for _, n := range []int{4, 5, 11} {
		args := make([]model.Expression, n)
		for i := range args {
			args[i] = lit(float64(i))
		}
		t.Run("periodic-test accepts its documented arities", func(t *testing.T) {
			_, err := tbl.Build("periodic-test", args)
			require.NoError(t, err)
		})
	}

	t.Run("periodic-test rejects an undocumented arity", func(t *testing.T) {
		_, err := tbl.Build("periodic-test", []model.Expression{lit(1), lit(2), lit(3)})
		require.Error(t, err)
	})
}

func TestTable_Build_UnknownTag(t *testing.T) {
	tbl := New()
	_, err := tbl.Build("not-a-real-operator", nil)
	require.Error(t, err)
}
