package model

// Component is a role-bearing container nested within a fault tree,
// holding the same kinds of content as a FaultTree (spec §3).
type Component struct {
	RoleElement
	HouseEvents  []*HouseEvent
	BasicEvents  []*BasicEvent
	Parameters   []*Parameter
	Gates        []*Gate
	CcfGroups    []*CcfGroup
	Components   []*Component
}

// FaultTree is a top-level component: same content shape as Component,
// plus its own name scope root (spec §3).
type FaultTree struct {
	Element
	HouseEvents []*HouseEvent
	BasicEvents []*BasicEvent
	Parameters  []*Parameter
	Gates       []*Gate
	CcfGroups   []*CcfGroup
	Components  []*Component
}

// EntityName, EntityBasePath, and IsPrivate implement symtab.Named:
// fault trees are always global, addressed by their own name.
func (f *FaultTree) EntityName() string     { return f.Name }
func (f *FaultTree) EntityBasePath() string { return "" }
func (f *FaultTree) IsPrivate() bool        { return false }
