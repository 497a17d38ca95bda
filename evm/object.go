package evm

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	solcommon "github.com/unparalleled-js/solidity/common"
)

// Object is a piece of bytecode together with the positions at which library
// addresses still have to be inserted.
type Object struct {
	// Bytecode holds zero bytes at every unresolved link reference.
	Bytecode []byte

	// LinkReferences maps byte offsets of 20 byte address slots to the fully
	// qualified name of the library whose address belongs there.
	LinkReferences map[int]string
}

// NewObject creates an object without link references.
func NewObject(code []byte) *Object {
	return &Object{
		Bytecode:       code,
		LinkReferences: make(map[int]string),
	}
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	c := &Object{
		Bytecode:       append([]byte(nil), o.Bytecode...),
		LinkReferences: make(map[int]string, len(o.LinkReferences)),
	}

	for offset, name := range o.LinkReferences {
		c.LinkReferences[offset] = name
	}

	return c
}

// Link returns a copy of the object with every reference to a library in the
// table replaced by its address.  References to unknown libraries are kept.
// The receiver is left untouched so linking the same object against another
// table later starts from the same unlinked state.
func (o *Object) Link(libraries map[string]common.Address) *Object {
	linked := o.Clone()

	for offset, name := range o.LinkReferences {
		addr, ok := LookupLibrary(libraries, name)
		if !ok {
			continue
		}

		copy(linked.Bytecode[offset:offset+common.AddressLength], addr.Bytes())
		delete(linked.LinkReferences, offset)
	}

	return linked
}

// LookupLibrary finds the address of a library by its fully qualified name
// and falls back to its bare name.
func LookupLibrary(libraries map[string]common.Address, fullyQualified string) (common.Address, bool) {
	if addr, ok := libraries[fullyQualified]; ok {
		return addr, true
	}

	if i := strings.LastIndexByte(fullyQualified, ':'); i >= 0 {
		addr, ok := libraries[fullyQualified[i+1:]]
		return addr, ok
	}

	return common.Address{}, false
}

// Unlinked returns the sorted names of all libraries still referenced.
func (o *Object) Unlinked() []string {
	set := make(map[string]struct{})
	for _, name := range o.LinkReferences {
		set[name] = struct{}{}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// ToHex renders the object as hex.  Unresolved references are rendered as
// placeholders so the output can be linked by external tools.
func (o *Object) ToHex() string {
	out := []byte(hex.EncodeToString(o.Bytecode))

	for offset, name := range o.LinkReferences {
		copy(out[offset*2:offset*2+2*common.AddressLength], Placeholder(name))
	}

	return string(out)
}

// Placeholder returns the 40 character placeholder of a library: `__$`, the
// first 34 hex digits of the Keccak-256 hash of its fully qualified name, and
// `$__`.
func Placeholder(fullyQualified string) string {
	hash := solcommon.Keccak256([]byte(fullyQualified))
	return "__$" + hex.EncodeToString(hash[:])[:34] + "$__"
}

// LinkReferencesJSON groups the link references by source and library name
// in the layout of standard JSON output.
func (o *Object) LinkReferencesJSON() map[string]map[string][]LinkRange {
	out := make(map[string]map[string][]LinkRange)

	offsets := make([]int, 0, len(o.LinkReferences))
	for offset := range o.LinkReferences {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)

	for _, offset := range offsets {
		name := o.LinkReferences[offset]

		source, lib := "", name
		if i := strings.LastIndexByte(name, ':'); i >= 0 {
			source, lib = name[:i], name[i+1:]
		}

		if out[source] == nil {
			out[source] = make(map[string][]LinkRange)
		}
		out[source][lib] = append(out[source][lib], LinkRange{Start: offset, Length: common.AddressLength})
	}

	return out
}

// LinkRange is a single address slot.
type LinkRange struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}
