package artifacts

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/unparalleled-js/solidity/ast"
)

// StorageLayout describes where the state variables of a contract live.
type StorageLayout struct {
	Storage []*StorageEntry         `json:"storage"`
	Types   map[string]*StorageType `json:"types"`
}

// StorageEntry is a single state variable.
type StorageEntry struct {
	Contract string `json:"contract"`
	Label    string `json:"label"`
	Offset   int    `json:"offset"`
	Slot     string `json:"slot"`
	Type     string `json:"type"`
}

// StorageType describes a type used in storage.
type StorageType struct {
	Encoding      string `json:"encoding"`
	Label         string `json:"label"`
	NumberOfBytes string `json:"numberOfBytes"`

	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
	Base  string `json:"base,omitempty"`
}

// StorageLayout computes the layout of the persistent or of the transient
// state variables.  Both start at slot zero.
func (g *Generator) StorageLayout(cd *ast.ContractDefinition, transient bool) *StorageLayout {
	sl := &StorageLayout{Storage: []*StorageEntry{}, Types: make(map[string]*StorageType)}

	lin := cd.Linearized
	if len(lin) == 0 {
		lin = []*ast.ContractDefinition{cd}
	}

	slot, offset := 0, 0
	for i := len(lin) - 1; i >= 0; i-- {
		base := lin[i]

		for _, v := range base.StateVariables {
			if v.Constant || v.Immutable || v.Transient != transient {
				continue
			}

			id, size, wholeSlots := sl.register(v.Type)

			// values that are not packable take whole slots and so does
			// everything after them
			if wholeSlots || offset+size > 32 {
				if offset > 0 {
					slot++
					offset = 0
				}
			}

			sl.Storage = append(sl.Storage, &StorageEntry{
				Contract: base.FullyQualifiedName(),
				Label:    v.Name,
				Offset:   offset,
				Slot:     strconv.Itoa(slot),
				Type:     id,
			})

			if wholeSlots {
				slot += (size + 31) / 32
			} else {
				offset += size
			}
		}
	}

	if len(sl.Types) == 0 {
		sl.Types = nil
	}

	return sl
}

// register adds a type and the types it is made of to the type table.  It
// returns the type identifier, the number of bytes and whether the type
// always occupies whole slots.
func (sl *StorageLayout) register(typ string) (string, int, bool) {
	if key, value, ok := ast.SplitMapping(typ); ok {
		keyID, _, _ := sl.register(key)
		valueID, _, _ := sl.register(value)

		id := "t_mapping(" + keyID + "," + valueID + ")"
		sl.Types[id] = &StorageType{Encoding: "mapping", Label: typ, NumberOfBytes: "32", Key: keyID, Value: valueID}
		return id, 32, true
	}

	if elem, ok := ast.ElementType(typ); ok {
		elemID, elemSize, elemWhole := sl.register(elem)

		n := ast.ArrayLength(typ)
		if n < 0 {
			id := "t_array(" + elemID + ")dyn_storage"
			sl.Types[id] = &StorageType{Encoding: "dynamic_array", Label: typ, NumberOfBytes: "32", Base: elemID}
			return id, 32, true
		}

		var size int
		if elemWhole {
			size = n * ((elemSize + 31) / 32) * 32
		} else {
			perSlot := 32 / elemSize
			size = (n + perSlot - 1) / perSlot * 32
		}

		id := "t_array(" + elemID + ")" + strconv.Itoa(n) + "_storage"
		sl.Types[id] = &StorageType{Encoding: "inplace", Label: typ, NumberOfBytes: strconv.Itoa(size), Base: elemID}
		return id, size, true
	}

	if typ != "address payable" {
		typ = ast.CanonicalType(typ)
	}

	id, label, size, encoding := elementaryStorage(typ)
	sl.Types[id] = &StorageType{Encoding: encoding, Label: label, NumberOfBytes: strconv.Itoa(size)}
	return id, size, encoding == "bytes"
}

// elementaryStorage describes a value type, string or bytes.  User defined
// types are contracts.
func elementaryStorage(typ string) (id, label string, size int, encoding string) {
	switch typ {
	case "bool":
		return "t_bool", typ, 1, "inplace"
	case "address":
		return "t_address", typ, common.AddressLength, "inplace"
	case "address payable":
		return "t_address_payable", typ, common.AddressLength, "inplace"
	case "string":
		return "t_string_storage", typ, 32, "bytes"
	case "bytes":
		return "t_bytes_storage", typ, 32, "bytes"
	}

	for _, prefix := range []string{"uint", "int"} {
		if bits, err := strconv.Atoi(strings.TrimPrefix(typ, prefix)); err == nil && strings.HasPrefix(typ, prefix) {
			return "t_" + typ, typ, bits / 8, "inplace"
		}
	}

	if n, err := strconv.Atoi(strings.TrimPrefix(typ, "bytes")); err == nil && strings.HasPrefix(typ, "bytes") {
		return "t_" + typ, typ, n, "inplace"
	}

	return "t_contract(" + typ + ")", "contract " + typ, common.AddressLength, "inplace"
}
