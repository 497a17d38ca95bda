package evm

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
)

func libraryCaller() *Object {
	// PUSH20 <X> DELEGATECALL
	code := append([]byte{byte(PUSH20)}, make([]byte, common.AddressLength)...)
	code = append(code, byte(DELEGATECALL))

	obj := NewObject(code)
	obj.LinkReferences[1] = "X.sol:X"
	return obj
}

func TestPlaceholderFormat(t *testing.T) {
	ph := Placeholder("X.sol:X")

	if len(ph) != 2*common.AddressLength {
		t.Fatalf("placeholder length = %d", len(ph))
	}

	if !strings.HasPrefix(ph, "__$") || !strings.HasSuffix(ph, "$__") {
		t.Errorf("malformed placeholder %q", ph)
	}

	if Placeholder("X.sol:X") != ph || Placeholder("Y.sol:X") == ph {
		t.Error("placeholders must depend on exactly the qualified name")
	}
}

func TestUnlinkedHexHasPlaceholder(t *testing.T) {
	obj := libraryCaller()

	hex := obj.ToHex()
	if !strings.Contains(hex, Placeholder("X.sol:X")) {
		t.Errorf("expected placeholder in %s", hex)
	}

	if diff := cmp.Diff([]string{"X.sol:X"}, obj.Unlinked()); diff != "" {
		t.Errorf("Unlinked() mismatch (-want +got):\n%s", diff)
	}
}

func TestLinkIsIdempotent(t *testing.T) {
	obj := libraryCaller()
	addr := common.HexToAddress("0x1234567890123456789012345678901234567890")
	table := map[string]common.Address{"X.sol:X": addr}

	once := obj.Link(table)
	twice := once.Link(table)

	if diff := cmp.Diff(once.Bytecode, twice.Bytecode); diff != "" {
		t.Errorf("relinking changed the code (-once +twice):\n%s", diff)
	}

	if len(once.Unlinked()) != 0 {
		t.Errorf("still unlinked: %v", once.Unlinked())
	}

	if strings.Contains(once.ToHex(), "__$") {
		t.Error("linked code still contains a placeholder")
	}

	if !strings.Contains(once.ToHex(), "1234567890123456789012345678901234567890") {
		t.Error("address missing from linked code")
	}

	// the unlinked object is untouched
	if len(obj.Unlinked()) != 1 {
		t.Error("Link modified its receiver")
	}
}

func TestLinkByBareName(t *testing.T) {
	obj := libraryCaller()
	addr := common.HexToAddress("0x00000000000000000000000000000000000000ff")

	linked := obj.Link(map[string]common.Address{"X": addr})
	if diff := cmp.Diff(addr.Bytes(), linked.Bytecode[1:21]); diff != "" {
		t.Errorf("address mismatch (-want +got):\n%s", diff)
	}
}

func TestLinkUnknownLibraryIsKept(t *testing.T) {
	obj := libraryCaller()

	linked := obj.Link(map[string]common.Address{"Other.sol:Y": {}})
	if diff := cmp.Diff(obj.ToHex(), linked.ToHex()); diff != "" {
		t.Errorf("unknown library changed the code (-want +got):\n%s", diff)
	}
}

func TestLinkReferencesJSON(t *testing.T) {
	obj := libraryCaller()

	want := map[string]map[string][]LinkRange{
		"X.sol": {"X": {{Start: 1, Length: 20}}},
	}

	if diff := cmp.Diff(want, obj.LinkReferencesJSON()); diff != "" {
		t.Errorf("link references mismatch (-want +got):\n%s", diff)
	}
}
