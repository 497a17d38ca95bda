package syntax

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/report"
)

const tokenSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.0;

import "./Math.sol";
import {Ownable as Owned, Pausable} from "lib/Access.sol";
import * as Utils from "../utils/Utils.sol";

/// @title A token
/// @notice Moves value around
abstract contract Base {
    uint256 internal total;
    function supply() public view virtual returns (uint256);
}

contract Token is Base, Owned("x") {
    /// the balances
    mapping(address => uint256) public balances;
    address payable owner;
    uint256[] transient history;
    uint256 public constant LIMIT = 10 ** 18;

    event Transfer(address indexed from, address indexed to, uint256 amount);
    error Insufficient(uint256 needed);

    struct Pair { uint a; uint b; }

    constructor() {
        owner = payable(msg.sender);
    }

    /// @notice Sends tokens
    /// @param to the receiver
    function transfer(address to, uint amount) external returns (bool ok) {
        if (balances[msg.sender] < amount) {
            revert Insufficient(amount);
        }
        balances[to] = Math.add(balances[to], amount);
        Helper h = new Helper();
        bytes memory code = type(Other).creationCode;
        msg.sender.call("");
        return true;
    }

    function supply() public view override returns (uint256) { return total; }

    receive() external payable {}
}

interface IToken {
    function transfer(address to, uint amount) returns (bool);
}

library Math {
    function add(uint a, uint b) public pure returns (uint) { return a + b; }
}
`

func TestParseToken(t *testing.T) {
	su, err := Parse("Token.sol", tokenSource)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if su.License != "MIT" {
		t.Errorf("License = %q", su.License)
	}

	if len(su.Pragmas) != 1 || su.Pragmas[0].Name != "solidity" || su.Pragmas[0].Value != "^0.8.0" {
		t.Errorf("Pragmas = %+v", su.Pragmas)
	}

	wantImports := []*ast.ImportDirective{
		{Path: "./Math.sol"},
		{Path: "lib/Access.sol", Symbols: []ast.ImportedSymbol{{Name: "Ownable", Alias: "Owned"}, {Name: "Pausable"}}},
		{Path: "../utils/Utils.sol", UnitAlias: "Utils"},
	}
	if diff := cmp.Diff(wantImports, su.Imports, cmpopts.IgnoreFields(ast.ImportDirective{}, "Span")); diff != "" {
		t.Errorf("Imports (-want +got):\n%s", diff)
	}

	var names []string
	for _, cd := range su.Contracts {
		names = append(names, cd.Name)
	}
	if diff := cmp.Diff([]string{"Base", "Token", "IToken", "Math"}, names); diff != "" {
		t.Fatalf("contracts (-want +got):\n%s", diff)
	}

	base, token, itoken, math := su.Contracts[0], su.Contracts[1], su.Contracts[2], su.Contracts[3]

	if !base.Abstract || base.CanBeDeployed() || base.Docs == nil || base.Docs.Title != "A token" {
		t.Errorf("Base = %+v", base)
	}
	if itoken.Kind != ast.KindInterface || itoken.Functions[0].Visibility != ast.VisibilityExternal {
		t.Errorf("IToken = %+v", itoken)
	}
	if !math.IsLibrary() {
		t.Errorf("Math kind = %v", math.Kind)
	}

	if diff := cmp.Diff([]string{"Base", "Owned"}, token.BaseNames); diff != "" {
		t.Errorf("BaseNames (-want +got):\n%s", diff)
	}

	var vars []string
	for _, v := range token.StateVariables {
		vars = append(vars, v.Name+":"+v.Type)
	}
	wantVars := []string{
		"balances:mapping(address => uint256)",
		"owner:address payable",
		"history:uint256[]",
		"LIMIT:uint256",
	}
	if diff := cmp.Diff(wantVars, vars); diff != "" {
		t.Errorf("state variables (-want +got):\n%s", diff)
	}
	if !token.StateVariables[2].Transient || !token.StateVariables[3].Constant {
		t.Errorf("variable attributes not parsed")
	}
	if token.StateVariables[0].Visibility != ast.VisibilityPublic {
		t.Errorf("balances visibility = %v", token.StateVariables[0].Visibility)
	}

	if len(token.Events) != 1 || token.Events[0].Signature() != "Transfer(address,address,uint256)" {
		t.Errorf("Events = %+v", token.Events)
	}
	if len(token.Errors) != 1 || token.Errors[0].Signature() != "Insufficient(uint256)" {
		t.Errorf("Errors = %+v", token.Errors)
	}

	var transfer *ast.FunctionDefinition
	for _, fn := range token.Functions {
		if fn.Name == "transfer" {
			transfer = fn
		}
	}
	if transfer == nil {
		t.Fatal("transfer not found")
	}
	if transfer.Signature() != "transfer(address,uint256)" || transfer.Visibility != ast.VisibilityExternal {
		t.Errorf("transfer = %+v", transfer)
	}
	if transfer.Docs == nil || transfer.Docs.Params["to"] != "the receiver" {
		t.Errorf("transfer docs = %+v", transfer.Docs)
	}

	type ref struct {
		Kind           ast.CallReferenceKind
		Target, Member string
	}
	var refs []ref
	for _, r := range transfer.Calls {
		refs = append(refs, ref{r.Kind, r.Target, r.Member})
	}
	wantRefs := []ref{
		{ast.RefMemberCall, "Math", "add"},
		{ast.RefCreation, "Helper", ""},
		{ast.RefCreationCode, "Other", "creationCode"},
	}
	if diff := cmp.Diff(wantRefs, refs); diff != "" {
		t.Errorf("references (-want +got):\n%s", diff)
	}
}

func TestParseErrorHasSpan(t *testing.T) {
	_, err := Parse("Bad.sol", "contract A {\n  uint x\n}")

	var lce *report.LocalCompileError
	if !errors.As(err, &lce) {
		t.Fatalf("Parse() error = %v, want *LocalCompileError", err)
	}
	if lce.Span == nil || lce.Span.StartLine != 2 {
		t.Errorf("span = %+v", lce.Span)
	}
}

func TestParseUnclosed(t *testing.T) {
	if _, err := Parse("Bad.sol", "contract A { function f() public {"); err == nil {
		t.Fatal("Parse() accepted unclosed block")
	}
}

func TestContextualKeywords(t *testing.T) {
	src := `import {Ownable} from "a.sol";
error Unauthorized(address from);

contract Wallet {
    address from;
    event Transfer(address indexed from, address indexed to, uint256 value);
    error Failed(uint256 error);

    function fallback(uint256 receive) public {}
    fallback() external {}
    receive() external payable {}
}
`
	su, err := Parse("Wallet.sol", src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(su.Imports) != 1 || su.Imports[0].Path != "a.sol" {
		t.Errorf("Imports = %+v", su.Imports)
	}

	w := su.Contracts[0]
	if len(w.StateVariables) != 1 || w.StateVariables[0].Name != "from" {
		t.Errorf("StateVariables = %+v", w.StateVariables)
	}

	if len(w.Events) != 1 || w.Events[0].Params[0].Name != "from" || !w.Events[0].Params[0].Indexed {
		t.Errorf("Events = %+v", w.Events)
	}
	if len(w.Errors) != 1 || w.Errors[0].Signature() != "Failed(uint256)" || w.Errors[0].Params[0].Name != "error" {
		t.Errorf("Errors = %+v", w.Errors)
	}

	type fn struct {
		Kind ast.FunctionKind
		Name string
	}
	var fns []fn
	for _, f := range w.Functions {
		fns = append(fns, fn{f.Kind, f.Name})
	}
	want := []fn{
		{ast.FuncFunction, "fallback"},
		{ast.FuncFallback, "fallback"},
		{ast.FuncReceive, "receive"},
	}
	if diff := cmp.Diff(want, fns); diff != "" {
		t.Errorf("functions (-want +got):\n%s", diff)
	}
}
