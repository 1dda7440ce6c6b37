package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arg() FormulaArg { return HouseEventTrue }

func TestFormula_Validate(t *testing.T) {
	t.Run("not requires exactly 1 argument", func(t *testing.T) {
		assert.NoError(t, (&Formula{Operator: OpNot, Args: []FormulaArg{arg()}}).Validate())
		assert.Error(t, (&Formula{Operator: OpNot, Args: []FormulaArg{arg(), arg()}}).Validate())
	})

	t.Run("and/or/nand/nor require at least 2 arguments", func(t *testing.T) {
		for _, op := range []Operator{OpAnd, OpOr, OpNand, OpNor} {
			assert.Error(t, (&Formula{Operator: op, Args: []FormulaArg{arg()}}).Validate())
			assert.NoError(t, (&Formula{Operator: op, Args: []FormulaArg{arg(), arg()}}).Validate())
		}
	})

	t.Run("xor requires exactly 2 arguments", func(t *testing.T) {
		assert.Error(t, (&Formula{Operator: OpXor, Args: []FormulaArg{arg()}}).Validate())
		assert.NoError(t, (&Formula{Operator: OpXor, Args: []FormulaArg{arg(), arg()}}).Validate())
		assert.Error(t, (&Formula{Operator: OpXor, Args: []FormulaArg{arg(), arg(), arg()}}).Validate())
	})

	t.Run("vote threshold must satisfy 1 <= min < n", func(t *testing.T) {
		f := &Formula{Operator: OpVote, Args: []FormulaArg{arg(), arg(), arg()}, VoteNumber: 2}
		assert.NoError(t, f.Validate())

		tooLow := &Formula{Operator: OpVote, Args: []FormulaArg{arg(), arg()}, VoteNumber: 0}
		assert.Error(t, tooLow.Validate())

		tooHigh := &Formula{Operator: OpVote, Args: []FormulaArg{arg(), arg()}, VoteNumber: 2}
		err := tooHigh.Validate()
		require.Error(t, err)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("unknown operator fails", func(t *testing.T) {
		assert.Error(t, (&Formula{Operator: Operator("bogus"), Args: []FormulaArg{arg()}}).Validate())
	})
}
