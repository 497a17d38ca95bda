package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// every combination of facets
func allConfigs() []Config {
	var out []Config
	for i := 0; i < 8; i++ {
		out = append(out, Config{
			IRCodegen:      i&1 != 0,
			IROptimization: i&2 != 0,
			Bytecode:       i&4 != 0,
		})
	}

	return out
}

func TestJoinLaws(t *testing.T) {
	for _, a := range allConfigs() {
		if a.Join(Config{}) != a {
			t.Errorf("%v join zero != %v", a, a)
		}
		if a.Join(a) != a {
			t.Errorf("%v join itself not idempotent", a)
		}

		for _, b := range allConfigs() {
			if a.Join(b) != b.Join(a) {
				t.Errorf("join not commutative for %v, %v", a, b)
			}

			for _, c := range allConfigs() {
				if a.Join(b).Join(c) != a.Join(b.Join(c)) {
					t.Errorf("join not associative for %v, %v, %v", a, b, c)
				}
			}
		}
	}
}

func TestNeedIR(t *testing.T) {
	tests := []struct {
		cfg          Config
		viaIR        bool
		needIR       bool
		codegenOnly  bool
		needOptimize bool
	}{
		{Config{}, false, false, true, false},
		{Config{Bytecode: true}, false, false, true, false},
		{Config{Bytecode: true}, true, true, false, true},
		{Config{IRCodegen: true}, false, true, true, false},
		{Config{IRCodegen: true, Bytecode: true}, true, true, false, true},
		{Config{IROptimization: true}, false, true, false, true},
	}

	for _, tc := range tests {
		if got := tc.cfg.NeedIR(tc.viaIR); got != tc.needIR {
			t.Errorf("%v.NeedIR(%v) = %v", tc.cfg, tc.viaIR, got)
		}
		if got := tc.cfg.NeedIRCodegenOnly(tc.viaIR); got != tc.codegenOnly {
			t.Errorf("%v.NeedIRCodegenOnly(%v) = %v", tc.cfg, tc.viaIR, got)
		}
		if got := tc.cfg.NeedIROptimization(tc.viaIR); got != tc.needOptimize {
			t.Errorf("%v.NeedIROptimization(%v) = %v", tc.cfg, tc.viaIR, got)
		}
	}
}

func TestParseOutputs(t *testing.T) {
	c, unknown := ParseOutputs([]string{"ir", "bytecode", "gasEstimates"})
	if diff := cmp.Diff(Config{IRCodegen: true, Bytecode: true}, c); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"gasEstimates"}, unknown); diff != "" {
		t.Errorf("unknown (-want +got):\n%s", diff)
	}

	if c, _ := ParseOutputs([]string{"*"}); c != Full {
		t.Errorf("ParseOutputs(*) = %v, want %v", c, Full)
	}
}
