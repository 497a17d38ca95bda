package artifacts

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/unparalleled-js/solidity/ast"
)

// ABIParam is a single parameter of an ABI entry.
type ABIParam struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	InternalType string `json:"internalType"`

	// Indexed is only meaningful for event parameters.
	Indexed bool `json:"indexed"`
}

// ABIEntry is a function, event, error or special function of a contract
// interface.
type ABIEntry struct {
	Type            string
	Name            string
	Inputs          []ABIParam
	Outputs         []ABIParam
	StateMutability string
	Anonymous       bool
}

// MarshalJSON renders an entry with exactly the fields its kind carries.
func (e *ABIEntry) MarshalJSON() ([]byte, error) {
	params := func(ps []ABIParam, event bool) []map[string]interface{} {
		out := make([]map[string]interface{}, len(ps))
		for i, p := range ps {
			out[i] = map[string]interface{}{
				"name":         p.Name,
				"type":         p.Type,
				"internalType": p.InternalType,
			}

			if event {
				out[i]["indexed"] = p.Indexed
			}
		}

		return out
	}

	m := map[string]interface{}{"type": e.Type}
	switch e.Type {
	case "function":
		m["name"] = e.Name
		m["inputs"] = params(e.Inputs, false)
		m["outputs"] = params(e.Outputs, false)
		m["stateMutability"] = e.StateMutability
	case "constructor":
		m["inputs"] = params(e.Inputs, false)
		m["stateMutability"] = e.StateMutability
	case "fallback", "receive":
		m["stateMutability"] = e.StateMutability
	case "event":
		m["name"] = e.Name
		m["inputs"] = params(e.Inputs, true)
		m["anonymous"] = e.Anonymous
	case "error":
		m["name"] = e.Name
		m["inputs"] = params(e.Inputs, false)
	}

	return json.Marshal(m)
}

// ABI is the interface descriptor of a contract.
type ABI []*ABIEntry

// ABI generates the interface descriptor of a contract.  Entries are sorted by
// kind and then by name.
func (g *Generator) ABI(cd *ast.ContractDefinition) ABI {
	var abi ABI

	if !cd.IsLibrary() {
		if ctor := constructorOf(cd); ctor != nil {
			abi = append(abi, &ABIEntry{
				Type:            "constructor",
				Inputs:          abiParams(ctor.Params),
				StateMutability: ctor.Mutability.String(),
			})
		}

		for _, kind := range []ast.FunctionKind{ast.FuncFallback, ast.FuncReceive} {
			if fn := cd.SpecialFunction(kind); fn != nil {
				abi = append(abi, &ABIEntry{Type: kind.String(), StateMutability: fn.Mutability.String()})
			}
		}
	}

	for _, fn := range cd.InterfaceFunctions() {
		abi = append(abi, &ABIEntry{
			Type:            "function",
			Name:            fn.Name,
			Inputs:          abiParams(fn.Params),
			Outputs:         abiParams(fn.Returns),
			StateMutability: fn.Mutability.String(),
		})
	}

	for _, ev := range cd.AllEvents() {
		abi = append(abi, &ABIEntry{
			Type:      "event",
			Name:      ev.Name,
			Inputs:    abiParams(ev.Params),
			Anonymous: ev.Anonymous,
		})
	}

	for _, e := range cd.AllErrors() {
		abi = append(abi, &ABIEntry{Type: "error", Name: e.Name, Inputs: abiParams(e.Params)})
	}

	sort.SliceStable(abi, func(i, j int) bool {
		if abi[i].Type != abi[j].Type {
			return abi[i].Type < abi[j].Type
		}

		return abi[i].Name < abi[j].Name
	})

	return abi
}

// constructorOf returns the constructor that determines the deployment
// parameters: the most derived one.
func constructorOf(cd *ast.ContractDefinition) *ast.FunctionDefinition {
	lin := cd.Linearized
	if len(lin) == 0 {
		lin = []*ast.ContractDefinition{cd}
	}

	for _, base := range lin {
		if ctor := base.Constructor(); ctor != nil {
			return ctor
		}
	}

	return nil
}

func abiParams(params []*ast.Parameter) []ABIParam {
	out := make([]ABIParam, len(params))
	for i, p := range params {
		out[i] = ABIParam{
			Name:         p.Name,
			Type:         ast.ABIType(p.Type),
			InternalType: internalType(p.Type),
			Indexed:      p.Indexed,
		}
	}

	return out
}

func internalType(typ string) string {
	base := typ
	if i := strings.IndexByte(typ, '['); i >= 0 {
		base = typ[:i]
	}

	canon := ast.CanonicalType(base)
	switch {
	case typ == "address payable":
		return typ
	case !ast.IsElementary(canon):
		return "contract " + typ
	default:
		return ast.CanonicalType(typ)
	}
}
