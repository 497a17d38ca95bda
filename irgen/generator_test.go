package irgen

import (
	"strings"
	"testing"

	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/sema"
)

const testSource = `// SPDX-License-Identifier: MIT
library L {
    function ext(uint x) public pure returns (uint) { return x; }
}

contract Child {}

contract Y {
    uint counter;
    uint transient lock;

    constructor() payable {
        Child c = new Child();
    }

    function get() public view returns (uint) { return L.ext(counter); }
    function put(uint v) external { counter = v; }
    function helper() internal returns (uint) { return 1; }
}
`

// analyze parses and analyzes a single unit and returns its contracts by
// name.
func analyze(t *testing.T, source string) map[string]*ast.ContractDefinition {
	t.Helper()

	a := sema.NewAnalyzer()
	su, diags := a.Parse("main.sol", source)
	if diags.HasErrors() {
		t.Fatalf("Parse() = %v", diags)
	}

	if diags := a.Analyze([]*ast.SourceUnit{su}); diags.HasErrors() {
		t.Fatalf("Analyze() = %v", diags)
	}

	defs := make(map[string]*ast.ContractDefinition)
	for _, cd := range su.Contracts {
		defs[cd.Name] = cd
	}

	return defs
}

func TestGenerateIR(t *testing.T) {
	defs := analyze(t, testSource)
	settings := config.DefaultSettings()

	text, utility, err := NewGenerator().GenerateIR(defs["Y"], &settings)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"library:main.sol:L",
		"create:main.sol:Child",
		"callvalue.check",
		"get()",
		"put(uint256)",
		"internal.helper()",
		"storage.counter",
		"transient.lock",
		"@constructor",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("IR does not mention %q:\n%s", want, text)
		}
	}

	if len(utility) != 1 || !strings.Contains(utility[0].Contents, "selectors") {
		t.Errorf("utility = %v", utility)
	}
}

func TestTransientNeedsCancun(t *testing.T) {
	defs := analyze(t, testSource)
	settings := config.DefaultSettings()
	settings.EVMVersion = config.EVMShanghai

	if _, _, err := NewGenerator().GenerateIR(defs["Y"], &settings); err == nil {
		t.Error("expected an error for transient storage before cancun")
	}
}

func TestOptimizerRemovesDeadFunctions(t *testing.T) {
	defs := analyze(t, testSource)
	settings := config.DefaultSettings()

	text, _, err := NewGenerator().GenerateIR(defs["Y"], &settings)
	if err != nil {
		t.Fatal(err)
	}

	kept, err := NewOptimizer().Optimize("Y", text, &settings)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(kept, "internal.helper()") {
		t.Error("disabled optimizer removed a function")
	}

	settings.Optimizer.Enabled = true
	optimized, err := NewOptimizer().Optimize("Y", text, &settings)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(optimized, "internal.helper()") {
		t.Errorf("dead internal function survived:\n%s", optimized)
	}

	for _, want := range []string{"get()", "library:main.sol:L", "create:main.sol:Child"} {
		if !strings.Contains(optimized, want) {
			t.Errorf("optimized IR lost %q", want)
		}
	}

	// the input is left alone
	if !strings.Contains(text, "internal.helper()") {
		t.Error("Optimize modified the unoptimized IR")
	}
}

func TestOptimizerRejectsInvalidIR(t *testing.T) {
	settings := config.DefaultSettings()

	if _, err := NewOptimizer().Optimize("bad", "define nonsense", &settings); err == nil {
		t.Error("expected a parse error")
	}
}
