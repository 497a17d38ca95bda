package artifacts

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/sema"
)

const tokenSource = `// SPDX-License-Identifier: MIT
/// @title Token
/// @author Ann
/// @notice A simple token
/// @dev Not audited
contract Token {
    /// @notice Balances by owner
    mapping(address => uint256) public balances;
    uint8 small;
    bool flag;
    address owner;
    uint256 big;
    uint transient lock;
    uint constant LIMIT = 10;

    /// @notice Emitted on transfers
    event Transfer(address indexed from, address indexed to, uint256 amount);

    /// @notice Not enough balance
    error Insufficient(uint256 needed);

    constructor(uint supply) {}

    /// @notice Sends tokens
    /// @dev Reverts on insufficient balance
    /// @param to the receiver
    /// @param amount how much
    /// @return ok whether it worked
    function transfer(address to, uint amount) external returns (bool ok) { return true; }

    receive() external payable {}
}
`

func token(t *testing.T) *ast.ContractDefinition {
	t.Helper()

	a := sema.NewAnalyzer()
	su, diags := a.Parse("token.sol", tokenSource)
	if diags.HasErrors() {
		t.Fatalf("Parse() = %v", diags)
	}

	if diags := a.Analyze([]*ast.SourceUnit{su}); diags.HasErrors() {
		t.Fatalf("Analyze() = %v", diags)
	}

	return su.Contracts[0]
}

func TestABI(t *testing.T) {
	abi := NewGenerator().ABI(token(t))

	var kinds []string
	for _, e := range abi {
		kinds = append(kinds, e.Type+":"+e.Name)
	}

	want := []string{
		"constructor:",
		"error:Insufficient",
		"event:Transfer",
		"function:balances",
		"function:transfer",
		"receive:",
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("ABI entries (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(abi[5])
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != `{"stateMutability":"payable","type":"receive"}` {
		t.Errorf("receive entry = %s", data)
	}
}

func TestStorageLayout(t *testing.T) {
	g := NewGenerator()
	cd := token(t)

	type slot struct {
		Label  string
		Slot   string
		Offset int
	}

	collect := func(sl *StorageLayout) []slot {
		var out []slot
		for _, e := range sl.Storage {
			out = append(out, slot{e.Label, e.Slot, e.Offset})
		}
		return out
	}

	persistent := g.StorageLayout(cd, false)
	want := []slot{
		{"balances", "0", 0},
		{"small", "1", 0},
		{"flag", "1", 1},
		{"owner", "1", 2},
		{"big", "2", 0},
	}
	if diff := cmp.Diff(want, collect(persistent)); diff != "" {
		t.Errorf("storage (-want +got):\n%s", diff)
	}

	if persistent.Types["t_mapping(t_address,t_uint256)"] == nil {
		t.Errorf("mapping type missing from %v", persistent.Types)
	}

	transient := g.StorageLayout(cd, true)
	if diff := cmp.Diff([]slot{{"lock", "0", 0}}, collect(transient)); diff != "" {
		t.Errorf("transient storage (-want +got):\n%s", diff)
	}
}

func TestDocs(t *testing.T) {
	g := NewGenerator()
	cd := token(t)

	user := g.UserDoc(cd)
	if user.Notice != "A simple token" {
		t.Errorf("notice = %q", user.Notice)
	}

	wantMethods := map[string]NoticeDoc{
		"transfer(address,uint256)": {Notice: "Sends tokens"},
		"balances(address)":         {Notice: "Balances by owner"},
	}
	if diff := cmp.Diff(wantMethods, user.Methods); diff != "" {
		t.Errorf("user methods (-want +got):\n%s", diff)
	}

	dev := g.DevDoc(cd)
	if dev.Title != "Token" || dev.Author != "Ann" || dev.Details != "Not audited" {
		t.Errorf("dev doc header = %+v", dev)
	}

	wantTransfer := &MemberDevDoc{
		Details: "Reverts on insufficient balance",
		Params:  map[string]string{"to": "the receiver", "amount": "how much"},
		Returns: map[string]string{"ok": "whether it worked"},
	}
	if diff := cmp.Diff(wantTransfer, dev.Methods["transfer(address,uint256)"]); diff != "" {
		t.Errorf("dev doc of transfer (-want +got):\n%s", diff)
	}
}

func TestInterfaceSymbols(t *testing.T) {
	syms := NewGenerator().InterfaceSymbols(token(t))

	if got := syms.Methods["transfer(address,uint256)"]; got != "a9059cbb" {
		t.Errorf("transfer selector = %s", got)
	}

	want := "ddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
	if got := syms.Events["Transfer(address,address,uint256)"]; got != want {
		t.Errorf("Transfer topic = %s", got)
	}
}
