package artifacts

import (
	"strings"

	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/common"
)

// InterfaceSymbols maps the signatures of a contract's functions, events and
// errors to their selectors and topics.
type InterfaceSymbols struct {
	Methods map[string]string `json:"methods"`
	Events  map[string]string `json:"events,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// InterfaceSymbols computes the selectors of a contract.
func (g *Generator) InterfaceSymbols(cd *ast.ContractDefinition) *InterfaceSymbols {
	syms := &InterfaceSymbols{Methods: make(map[string]string)}

	for _, fn := range cd.InterfaceFunctions() {
		syms.Methods[fn.Signature()] = common.SelectorHex(fn.Signature())
	}

	for _, ev := range cd.AllEvents() {
		if syms.Events == nil {
			syms.Events = make(map[string]string)
		}

		sig := ev.Signature()
		syms.Events[sig] = strings.TrimPrefix(common.Keccak256Hex([]byte(sig)), "0x")
	}

	for _, e := range cd.AllErrors() {
		if syms.Errors == nil {
			syms.Errors = make(map[string]string)
		}

		sig := e.Signature()
		syms.Errors[sig] = common.SelectorHex(sig)
	}

	return syms
}
