// Package symtab provides the per-kind name → entity lookup tables the
// loader resolves references through, honoring MEF's scoped visibility
// rules (spec §4.1). It is grounded on the teacher's
// internal/registry/registry.go map-of-maps shape, generalized with Go
// generics to a single reusable Table[T] instead of one struct field
// per entity kind.
package symtab

import (
	"fmt"
	"strings"

	"github.com/openpsa-mef/loader/internal/merr"
)

// Named is the minimum an entity must supply to live in a Table: its
// bare declared name, the scope it was declared in (its base_path),
// and whether it is visible only under that scope.
type Named interface {
	EntityName() string
	EntityBasePath() string
	IsPrivate() bool
}

// Table is a generic per-kind symbol table. The zero value is not
// usable; construct with New.
type Table[T Named] struct {
	kind string
	// public holds entities addressable by bare name from anywhere.
	public map[string]T
	// private holds entities addressable only under base_path or one
	// of its descendants, keyed by "base_path.name".
	private map[string]T
}

// New returns an empty Table for entities of the given kind name, used
// only to label diagnostics (e.g. "gate", "parameter").
func New[T Named](kind string) *Table[T] {
	return &Table[T]{kind: kind, public: make(map[string]T), private: make(map[string]T)}
}

// Insert registers entity under its own scope, failing with
// DuplicateEntityError if that scope already has an entry with the
// same name (spec §4.1).
func (t *Table[T]) Insert(entity T) error {
	name := entity.EntityName()
	if entity.IsPrivate() {
		key := scopedKey(entity.EntityBasePath(), name)
		if _, ok := t.private[key]; ok {
			return &DuplicateEntityError{Kind: t.kind, FullName: key}
		}
		t.private[key] = entity
		return nil
	}
	if _, ok := t.public[name]; ok {
		return &DuplicateEntityError{Kind: t.kind, FullName: name}
	}
	t.public[name] = entity
	return nil
}

// Lookup resolves name from the perspective of basePath: first tries a
// private match walking up from basePath to the root, then a public
// match by bare name (spec §4.1 resolution order).
func (t *Table[T]) Lookup(name, basePath string) (T, error) {
	for scope := basePath; ; scope = parentPath(scope) {
		if scope != "" {
			if entity, ok := t.private[scopedKey(scope, name)]; ok {
				return entity, nil
			}
		}
		if scope == "" {
			break
		}
	}
	if entity, ok := t.public[name]; ok {
		return entity, nil
	}
	var zero T
	return zero, &UndefinedEntityError{Kind: t.kind, Name: name, BasePath: basePath}
}

// All returns every registered entity (public then private, each in
// insertion-order-independent map order). Callers needing deterministic
// iteration should maintain their own ordered slice alongside Insert
// calls, as the Model's entity-kind getters do.
func (t *Table[T]) All() []T {
	out := make([]T, 0, len(t.public)+len(t.private))
	for _, e := range t.public {
		out = append(out, e)
	}
	for _, e := range t.private {
		out = append(out, e)
	}
	return out
}

func scopedKey(basePath, name string) string { return basePath + "." + name }

// parentPath strips the last dotted component of path, or returns ""
// if path has none left to strip.
func parentPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// DuplicateEntityError reports an attempt to register a name already
// present in the same scope (spec §4.1, §7).
type DuplicateEntityError struct {
	Kind, FullName string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("duplicate %s '%s'", e.Kind, e.FullName)
}

func (e *DuplicateEntityError) Unwrap() error { return merr.ErrValidation }

// UndefinedEntityError reports a reference to a name not found under
// any visible scope (spec §4.1, §7 ValidationError).
type UndefinedEntityError struct {
	Kind, Name, BasePath string
}

func (e *UndefinedEntityError) Error() string {
	if e.BasePath == "" {
		return fmt.Sprintf("undefined %s '%s'", e.Kind, e.Name)
	}
	return fmt.Sprintf("undefined %s '%s' (visible from '%s')", e.Kind, e.Name, e.BasePath)
}

func (e *UndefinedEntityError) Unwrap() error { return merr.ErrValidation }
