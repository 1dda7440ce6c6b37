// Package xmlio defines the narrow interface the loader uses to read an
// Open-PSA MEF document, and the optional schema-validation seam. Per
// spec §1/§6, the concrete XML parser and RelaxNG schema validator are
// external collaborators; this package only describes the shape the
// loader needs from them. internal/xmlio/stdxml is the one concrete
// adapter this module ships, built on the standard library because no
// third-party XML/RelaxNG library is available anywhere in the reference
// corpus this module was grounded on.
package xmlio

// Node is a read-only view of one XML element, wide enough for the
// loader's needs: tag name, attribute lookup, source line, ordered
// children, and direct text content (for leaf text nodes like <label>).
type Node interface {
	// Name returns the element's tag name, e.g. "define-gate".
	Name() string
	// Attr returns the named attribute's value and whether it was present.
	Attr(name string) (string, bool)
	// Line returns the 1-based source line the element started on, or 0
	// if unknown.
	Line() int
	// Children returns the element's direct child elements, in document
	// order. Text-only content is not represented as a child.
	Children() []Node
	// Text returns the element's direct text content (concatenated,
	// trimmed), for leaf elements such as <label>.
	Text() string
}

// Document is a parsed input file: its root element plus the file path it
// came from, used to render "In file '<path>'," diagnostics for errors
// raised long after the file itself has gone out of scope (spec §4.7).
type Document interface {
	Root() Node
	Path() string
}

// Parser turns raw bytes from a named file into a Document.
type Parser interface {
	Parse(path string) (Document, error)
}

// SchemaValidator checks a Document against the MEF RelaxNG schema before
// element interpretation begins (spec §6). The real RelaxNG schema and its
// validation engine are out of scope for this module (external
// collaborator); NoopValidator is the permissive default, and callers that
// need real schema enforcement inject their own implementation.
type SchemaValidator interface {
	Validate(doc Document) error
}

// NoopValidator accepts every document. It is the default SchemaValidator
// when the caller does not supply a real RelaxNG-backed one.
type NoopValidator struct{}

// Validate always succeeds.
func (NoopValidator) Validate(Document) error { return nil }
