package model

import (
	"fmt"

	"github.com/openpsa-mef/loader/internal/merr"
)

// CcfModel names the common-cause-failure model a CcfGroup applies to
// its members (spec §3, GLOSSARY).
type CcfModel string

const (
	CcfBetaFactor  CcfModel = "beta-factor"
	CcfMGL         CcfModel = "MGL"
	CcfAlphaFactor CcfModel = "alpha-factor"
	CcfPhiFactor   CcfModel = "phi-factor"
)

// ParseCcfModel maps an MEF model attribute value to a CcfModel.
func ParseCcfModel(s string) (CcfModel, error) {
	switch CcfModel(s) {
	case CcfBetaFactor, CcfMGL, CcfAlphaFactor, CcfPhiFactor:
		return CcfModel(s), nil
	default:
		return "", fmt.Errorf("unknown CCF model '%s'", s)
	}
}

// CcfFactor is one factor value of a CcfGroup, either given a leveled
// position explicitly or left to positional assignment (spec §4.6).
type CcfFactor struct {
	Expression Expression
	Level      int // 0 means "use positional order", else >= 1
}

// CcfGroup is a common-cause-failure group: role-bearing, with an
// ordered member list, a distribution expression, and a set of factors
// (spec §3, §4.6).
type CcfGroup struct {
	RoleElement
	Model        CcfModel
	Members      []*BasicEvent
	memberNames  map[string]bool
	Distribution Expression
	Factors      []CcfFactor
	nextLevel    int
}

// AddMember appends member to the group's member list, enforcing that
// the member-name set is unique (spec §4.6, §7 DuplicateArgumentError).
func (c *CcfGroup) AddMember(member *BasicEvent) error {
	if c.memberNames == nil {
		c.memberNames = make(map[string]bool)
	}
	if c.memberNames[member.Name] {
		return &DuplicateMemberError{Group: c.Name, Member: member.Name}
	}
	c.memberNames[member.Name] = true
	c.Members = append(c.Members, member)
	return nil
}

// AddFactor appends a factor. When level is 0 the factor is assigned
// the next positional level (1-based, incrementing); otherwise the
// factor is explicitly leveled (spec §4.6 AddFactor(expr[, level])).
func (c *CcfGroup) AddFactor(expr Expression, level int) {
	if level == 0 {
		c.nextLevel++
		level = c.nextLevel
	} else if level > c.nextLevel {
		c.nextLevel = level
	}
	c.Factors = append(c.Factors, CcfFactor{Expression: expr, Level: level})
}

// ApplyModel distributes the group's factors across its members
// according to its CCF model. The concrete numeric apportionment is an
// external analysis concern (spec §1 Non-goals); this only records
// that the model has been applied, satisfying SetupForAnalysis's
// "each CCF group apply its model to its members" step (spec §4.8).
func (c *CcfGroup) ApplyModel() error {
	if len(c.Members) == 0 {
		return fmt.Errorf("CCF group '%s' has no members", c.Name)
	}
	if c.Distribution == nil {
		return fmt.Errorf("CCF group '%s' has no distribution", c.Name)
	}
	return nil
}

// DuplicateMemberError reports an attempt to add the same basic-event
// name twice to a CCF group's member list.
type DuplicateMemberError struct {
	Group, Member string
}

func (e *DuplicateMemberError) Error() string {
	return fmt.Sprintf("duplicate CCF member '%s' in group '%s'", e.Member, e.Group)
}

func (e *DuplicateMemberError) Unwrap() error { return merr.ErrDuplicateArgument }
