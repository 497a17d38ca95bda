package sema

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/report"
)

// parseAll parses the given units and binds plain imports by path.
func parseAll(t *testing.T, a *Analyzer, sources map[string]string, order ...string) []*ast.SourceUnit {
	t.Helper()

	var units []*ast.SourceUnit
	for _, name := range order {
		su, diags := a.Parse(name, sources[name])
		if diags.HasErrors() {
			t.Fatalf("Parse(%s) = %v", name, diags)
		}

		for _, imp := range su.Imports {
			imp.ResolvedName = imp.Path
		}

		units = append(units, su)
	}

	return units
}

func names(defs []*ast.ContractDefinition) []string {
	var out []string
	for _, cd := range defs {
		out = append(out, cd.Name)
	}

	return out
}

func TestLinearization(t *testing.T) {
	a := NewAnalyzer()
	units := parseAll(t, a, map[string]string{
		"a.sol": `// SPDX-License-Identifier: MIT
contract A {}
contract B is A {}
contract C is A {}
contract D is B, C {}`,
	}, "a.sol")

	if diags := a.Analyze(units); diags.HasErrors() {
		t.Fatalf("Analyze() = %v", diags)
	}

	d := units[0].Contracts[3]
	if diff := cmp.Diff([]string{"D", "C", "B", "A"}, names(d.Linearized)); diff != "" {
		t.Errorf("Linearized (-want +got):\n%s", diff)
	}
}

func TestReferencesAcrossImports(t *testing.T) {
	a := NewAnalyzer()
	units := parseAll(t, a, map[string]string{
		"lib.sol": `// SPDX-License-Identifier: MIT
library L {
    function ext(uint x) public pure returns (uint) { return x; }
    function inl(uint x) internal pure returns (uint) { return x; }
}
library M {
    function inl(uint x) internal pure returns (uint) { return x; }
}`,
		"main.sol": `// SPDX-License-Identifier: MIT
import "lib.sol";
contract Child { }
contract Base {
    function b() public returns (uint) { return L.ext(1); }
}
contract Main is Base {
    Child c = new Child();
    function f() public returns (uint) { return M.inl(2); }
}`,
	}, "lib.sol", "main.sol")

	if diags := a.Analyze(units); diags.HasErrors() {
		t.Fatalf("Analyze() = %v", diags)
	}

	main := units[1].Contracts[2]
	if diff := cmp.Diff([]string{"L"}, names(main.LibraryRefs)); diff != "" {
		t.Errorf("LibraryRefs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Child"}, names(main.CreationRefs)); diff != "" {
		t.Errorf("CreationRefs (-want +got):\n%s", diff)
	}
}

func TestSymbolImportAliases(t *testing.T) {
	a := NewAnalyzer()
	units := parseAll(t, a, map[string]string{
		"x.sol": "// SPDX-License-Identifier: MIT\ncontract X {}",
		"y.sol": "// SPDX-License-Identifier: MIT\nimport {X as Renamed} from \"x.sol\";\nimport \"x.sol\" as U;\ncontract Y is Renamed {}\ncontract Z is U.X {}",
	}, "x.sol", "y.sol")

	if diags := a.Analyze(units); diags.HasErrors() {
		t.Fatalf("Analyze() = %v", diags)
	}

	if got := names(units[1].Contracts[0].Linearized); len(got) != 2 || got[1] != "X" {
		t.Errorf("Y linearized = %v", got)
	}
	if got := names(units[1].Contracts[1].Linearized); len(got) != 2 || got[1] != "X" {
		t.Errorf("Z linearized = %v", got)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		errPart string
	}{
		{"unknown base", "contract A is Missing {}", "not found"},
		{"inherit library", "library L {}\ncontract A is L {}", "libraries cannot be inherited"},
		{"unimplemented", "contract A { function f() public; }", "should be marked as abstract"},
		{"new interface", "interface I {}\ncontract A { function f() public { new I(); } }", "cannot instantiate"},
		{"duplicate", "contract A {}\ncontract A {}", "already declared"},
		{"missing member", "library L {}\ncontract A { function f() public { L.g(); } }", "member `g` not found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAnalyzer()
			units := parseAll(t, a, map[string]string{"a.sol": tc.source}, "a.sol")

			diags := a.Analyze(units)
			if !diags.HasErrors() {
				t.Fatal("Analyze() reported no errors")
			}

			found := false
			for _, d := range diags {
				if d.Kind == report.KindType && strings.Contains(d.Message, tc.errPart) {
					found = true
				}
			}
			if !found {
				t.Errorf("no diagnostic containing %q in %v", tc.errPart, diags)
			}
		})
	}
}

func TestMissingLicenseWarns(t *testing.T) {
	_, diags := NewAnalyzer().Parse("a.sol", "contract A {}")
	if diags.HasErrors() || len(diags) != 1 || diags[0].Severity != report.SeverityWarning {
		t.Fatalf("Parse() diags = %v", diags)
	}
}

func TestParseErrorIsParseKind(t *testing.T) {
	_, diags := NewAnalyzer().Parse("a.sol", "contract {")
	if len(diags) != 1 || diags[0].Kind != report.KindParse || !diags.HasErrors() {
		t.Fatalf("Parse() diags = %v", diags)
	}
}
