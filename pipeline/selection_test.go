package pipeline

import "testing"

func TestDefaultWithoutRules(t *testing.T) {
	var s Selection
	if got := s.Requested("A.sol", "A"); got != Default {
		t.Fatalf("Requested() = %v, want %v", got, Default)
	}
	if Default != (Config{Bytecode: true}) {
		t.Fatalf("Default = %v", Default)
	}
}

func TestSelectionJoinsMatchingRules(t *testing.T) {
	s := Selection{}.
		Add(Wildcard, Wildcard, Config{Bytecode: true}).
		Add("B.sol", "Foo", Config{IRCodegen: true})

	tests := []struct {
		source, contract string
		want             Config
	}{
		{"B.sol", "Foo", Config{IRCodegen: true, Bytecode: true}},
		{"B.sol", "Bar", Config{Bytecode: true}},
		{"A.sol", "Foo", Config{Bytecode: true}},
	}

	for _, tc := range tests {
		if got := s.Requested(tc.source, tc.contract); got != tc.want {
			t.Errorf("Requested(%s, %s) = %v, want %v", tc.source, tc.contract, got, tc.want)
		}
	}
}

func TestSelectionOrderIndependent(t *testing.T) {
	rules := []Rule{
		{Source: "a.sol", Config: Config{IROptimization: true}},
		{Contract: "C", Config: Config{Bytecode: true}},
		{Source: "a.sol", Contract: "C", Config: Config{IRCodegen: true}},
	}

	forward := Selection(rules)
	backward := Selection{rules[2], rules[1], rules[0]}

	for _, name := range []string{"C", "D"} {
		if forward.Requested("a.sol", name) != backward.Requested("a.sol", name) {
			t.Errorf("rule order changes result for %s", name)
		}
	}
}

func TestExplicitEmptyRuleExcludes(t *testing.T) {
	s := Selection{}.Add("a.sol", "Helper", Config{})

	if got := s.Requested("a.sol", "Helper"); !got.Empty() {
		t.Errorf("Requested(Helper) = %v, want empty", got)
	}
	if got := s.Requested("a.sol", "Main"); got != Default {
		t.Errorf("Requested(Main) = %v, want default", got)
	}
}
