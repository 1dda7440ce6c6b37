package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntity struct {
	name     string
	basePath string
	private  bool
}

func (f *fakeEntity) EntityName() string     { return f.name }
func (f *fakeEntity) EntityBasePath() string { return f.basePath }
func (f *fakeEntity) IsPrivate() bool        { return f.private }

func TestTable_InsertAndLookup_Public(t *testing.T) {
	tbl := New[*fakeEntity]("widget")
	w := &fakeEntity{name: "w1"}
	require.NoError(t, tbl.Insert(w))

	got, err := tbl.Lookup("w1", "anywhere.deeply.nested")
	require.NoError(t, err)
	assert.Same(t, w, got)
}

func TestTable_InsertDuplicatePublic(t *testing.T) {
	tbl := New[*fakeEntity]("widget")
	require.NoError(t, tbl.Insert(&fakeEntity{name: "w1"}))

	err := tbl.Insert(&fakeEntity{name: "w1"})
	require.Error(t, err)
	var dup *DuplicateEntityError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "w1", dup.FullName)
}

func TestTable_PrivateVisibleOnlyUnderBasePath(t *testing.T) {
	tbl := New[*fakeEntity]("widget")
	w := &fakeEntity{name: "w1", basePath: "ft1.comp1", private: true}
	require.NoError(t, tbl.Insert(w))

	t.Run("visible from its own scope", func(t *testing.T) {
		got, err := tbl.Lookup("w1", "ft1.comp1")
		require.NoError(t, err)
		assert.Same(t, w, got)
	})

	t.Run("visible from a nested descendant scope", func(t *testing.T) {
		got, err := tbl.Lookup("w1", "ft1.comp1.comp2")
		require.NoError(t, err)
		assert.Same(t, w, got)
	})

	t.Run("not visible from a sibling scope", func(t *testing.T) {
		_, err := tbl.Lookup("w1", "ft1.comp2")
		require.Error(t, err)
		var undef *UndefinedEntityError
		require.ErrorAs(t, err, &undef)
	})

	t.Run("not visible globally", func(t *testing.T) {
		_, err := tbl.Lookup("w1", "")
		require.Error(t, err)
	})
}

func TestTable_PrivatePreferredOverPublicOfSameName(t *testing.T) {
	tbl := New[*fakeEntity]("widget")
	pub := &fakeEntity{name: "w1"}
	priv := &fakeEntity{name: "w1", basePath: "ft1", private: true}
	require.NoError(t, tbl.Insert(pub))
	require.NoError(t, tbl.Insert(priv))

	got, err := tbl.Lookup("w1", "ft1")
	require.NoError(t, err)
	assert.Same(t, priv, got, "a private entity in scope must shadow a same-named public entity")

	got, err = tbl.Lookup("w1", "ft2")
	require.NoError(t, err)
	assert.Same(t, pub, got, "outside the private scope, the public entity resolves")
}

func TestTable_LookupUndefined(t *testing.T) {
	tbl := New[*fakeEntity]("widget")
	_, err := tbl.Lookup("nope", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "undefined widget 'nope'")
}
