package model

import (
	"errors"
	"testing"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCcfGroup_AddMember_RejectsDuplicate(t *testing.T) {
	g := &CcfGroup{RoleElement: RoleElement{Element: Element{Name: "ccf1"}}}
	require.NoError(t, g.AddMember(&BasicEvent{RoleElement: RoleElement{Element: Element{Name: "b1"}}}))

	err := g.AddMember(&BasicEvent{RoleElement: RoleElement{Element: Element{Name: "b1"}}})
	require.Error(t, err)
	var dup *DuplicateMemberError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "b1", dup.Member)
	assert.True(t, errors.Is(err, merr.ErrDuplicateArgument))
}

func TestCcfGroup_AddFactor_Positional(t *testing.T) {
	g := &CcfGroup{RoleElement: RoleElement{Element: Element{Name: "ccf1"}}}
	g.AddFactor(&ConstantExpression{Value: 0.1}, 0)
	g.AddFactor(&ConstantExpression{Value: 0.2}, 0)

	require.Len(t, g.Factors, 2)
	assert.Equal(t, 1, g.Factors[0].Level)
	assert.Equal(t, 2, g.Factors[1].Level)
}

func TestCcfGroup_AddFactor_Leveled(t *testing.T) {
	g := &CcfGroup{RoleElement: RoleElement{Element: Element{Name: "ccf1"}}}
	g.AddFactor(&ConstantExpression{Value: 0.1}, 3)
	g.AddFactor(&ConstantExpression{Value: 0.2}, 0) // positional after an explicit level

	require.Len(t, g.Factors, 2)
	assert.Equal(t, 3, g.Factors[0].Level)
	assert.Equal(t, 4, g.Factors[1].Level, "positional assignment continues past the highest explicit level seen")
}

func TestCcfGroup_ApplyModel(t *testing.T) {
	t.Run("fails with no members", func(t *testing.T) {
		g := &CcfGroup{RoleElement: RoleElement{Element: Element{Name: "ccf1"}}, Distribution: Zero}
		assert.Error(t, g.ApplyModel())
	})

	t.Run("fails with no distribution", func(t *testing.T) {
		g := &CcfGroup{RoleElement: RoleElement{Element: Element{Name: "ccf1"}}}
		require.NoError(t, g.AddMember(&BasicEvent{RoleElement: RoleElement{Element: Element{Name: "b1"}}}))
		assert.Error(t, g.ApplyModel())
	})

	t.Run("succeeds with members and a distribution", func(t *testing.T) {
		g := &CcfGroup{RoleElement: RoleElement{Element: Element{Name: "ccf1"}}, Distribution: Zero}
		require.NoError(t, g.AddMember(&BasicEvent{RoleElement: RoleElement{Element: Element{Name: "b1"}}}))
		assert.NoError(t, g.ApplyModel())
	})
}

func TestParseCcfModel(t *testing.T) {
	m, err := ParseCcfModel("beta-factor")
	require.NoError(t, err)
	assert.Equal(t, CcfBetaFactor, m)

	_, err = ParseCcfModel("not-a-model")
	assert.Error(t, err)
}
