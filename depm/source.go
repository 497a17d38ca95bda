package depm

import (
	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/common"
	"github.com/unparalleled-js/solidity/util"
)

// Source is a single named source unit.  Its content never changes once it is
// registered.
type Source struct {
	// Name is the source unit name: the key imports are resolved against.
	Name string

	// Content is the raw source text.
	Content string

	// AST is the parsed representation.  It is nil until the unit is parsed.
	AST *ast.SourceUnit

	keccak *util.Lazy[[32]byte]
}

// NewSource creates a new, unparsed source unit.
func NewSource(name, content string) *Source {
	src := &Source{
		Name:    name,
		Content: content,
	}

	src.keccak = util.NewLazy(func() ([32]byte, error) {
		return common.Keccak256([]byte(src.Content)), nil
	})

	return src
}

// KeccakHash returns the Keccak-256 hash of the content.  It is computed on
// first use.
func (s *Source) KeccakHash() [32]byte {
	h, _ := s.keccak.Get()
	return h
}

// -----------------------------------------------------------------------------

// Registry is the set of all source units of a run keyed by name.
type Registry struct {
	sources map[string]*Source
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]*Source)}
}

// Add registers a source unit, replacing any unit with the same name.
func (r *Registry) Add(src *Source) {
	r.sources[src.Name] = src
}

// Get looks up a unit by name.
func (r *Registry) Get(name string) (*Source, bool) {
	src, ok := r.sources[name]
	return src, ok
}

// Names returns every unit name in ascending order.
func (r *Registry) Names() []string {
	return util.SortedKeys(r.sources)
}
