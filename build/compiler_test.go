package build

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/depm"
	"github.com/unparalleled-js/solidity/report"
)

// files serves source units from memory and records every request.
type files struct {
	contents  map[string]string
	requested []string
}

func (f *files) callback() depm.ReadCallback {
	return func(kind depm.ReadKind, name string) ([]byte, error) {
		f.requested = append(f.requested, name)

		content, ok := f.contents[name]
		if !ok {
			return nil, errors.New("no such file")
		}

		return []byte(content), nil
	}
}

func TestStatesAreMonotonic(t *testing.T) {
	c := NewCompiler()

	if c.State() != StateEmpty {
		t.Fatalf("State() = %s, want %s", c.State(), StateEmpty)
	}

	if err := c.Parse(); !errors.Is(err, ErrStatePrecondition) {
		t.Fatalf("Parse() before SetSources = %v, want a state error", err)
	}

	if _, err := c.ContractNames(); !errors.Is(err, ErrStatePrecondition) {
		t.Fatalf("ContractNames() before SetSources = %v, want a state error", err)
	}

	if err := c.SetSources(map[string]string{"main.sol": "contract C {}"}); err != nil {
		t.Fatal(err)
	}

	var visited []State
	for _, stop := range []State{StateParsed, StateParsedAndImported, StateAnalysisSuccessful, StateCompilationSuccessful} {
		if err := c.Compile(stop); err != nil {
			t.Fatalf("Compile(%s) = %v", stop, err)
		}

		visited = append(visited, c.State())
	}

	want := []State{StateParsed, StateParsedAndImported, StateAnalysisSuccessful, StateCompilationSuccessful}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("visited states mismatch (-want +got):\n%s", diff)
	}

	// stopping early never moves the state backwards
	if err := c.Compile(StateParsed); err != nil || c.State() != StateCompilationSuccessful {
		t.Errorf("Compile(%s) = %v in state %s", StateParsed, err, c.State())
	}

	if !c.CompilationSuccessful() {
		t.Error("CompilationSuccessful() = false")
	}

	c.Reset(false)
	if c.State() != StateEmpty {
		t.Errorf("State() after Reset = %s", c.State())
	}
}

func TestStopAfterGatesQueries(t *testing.T) {
	c := NewCompiler()
	if err := c.SetSources(map[string]string{"main.sol": "contract C {}"}); err != nil {
		t.Fatal(err)
	}

	if err := c.Compile(StateParsedAndImported); err != nil {
		t.Fatal(err)
	}

	if c.State() != StateParsedAndImported {
		t.Fatalf("State() = %s, want %s", c.State(), StateParsedAndImported)
	}

	names, err := c.ContractNames()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"main.sol:C"}, names); diff != "" {
		t.Errorf("ContractNames() mismatch (-want +got):\n%s", diff)
	}

	_, err = c.ContractABI("C")

	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("ContractABI() = %v, want a state error", err)
	}

	want := StateError{Op: "ContractABI", Required: StateAnalysisSuccessful, Actual: StateParsedAndImported}
	if diff := cmp.Diff(want, *se); diff != "" {
		t.Errorf("state error mismatch (-want +got):\n%s", diff)
	}

	// the failed query did not change anything
	if c.State() != StateParsedAndImported {
		t.Errorf("State() = %s after failed query", c.State())
	}

	if _, err := c.Object("C"); !errors.Is(err, ErrStatePrecondition) {
		t.Errorf("Object() = %v, want a state error", err)
	}
}

func TestSettingsFixedAfterParsing(t *testing.T) {
	c := NewCompiler()
	if err := c.SetViaIR(true); err != nil {
		t.Fatal(err)
	}

	if err := c.SetSources(map[string]string{"main.sol": "contract C {}"}); err != nil {
		t.Fatal(err)
	}

	if err := c.SetOptimizer(config.OptimizerSettings{Enabled: true, Runs: 0}); err == nil {
		t.Error("SetOptimizer() accepted zero runs")
	} else {
		var se *SettingsError
		if !errors.As(err, &se) {
			t.Errorf("SetOptimizer() = %T, want *SettingsError", err)
		}
	}

	if err := c.Parse(); err != nil {
		t.Fatal(err)
	}

	if err := c.SetViaIR(false); !errors.Is(err, ErrStatePrecondition) {
		t.Errorf("SetViaIR() after Parse = %v, want a state error", err)
	}

	if err := c.SetSources(nil); !errors.Is(err, ErrStatePrecondition) {
		t.Errorf("SetSources() after Parse = %v, want a state error", err)
	}

	if !c.Settings().ViaIR {
		t.Error("settings changed by a rejected call")
	}

	c.Reset(true)
	if !c.Settings().ViaIR {
		t.Error("Reset(true) dropped the settings")
	}

	c.Reset(false)
	if c.Settings().ViaIR {
		t.Error("Reset(false) kept the settings")
	}
}

func TestImportClosure(t *testing.T) {
	fs := &files{contents: map[string]string{
		"A.sol": "contract A {}",
	}}

	c := NewCompiler(WithReadCallback(fs.callback()))
	if err := c.SetSources(map[string]string{
		"B.sol": `import "A.sol"; contract B is A {}`,
	}); err != nil {
		t.Fatal(err)
	}

	if err := c.ParseAndAnalyze(StateAnalysisSuccessful); err != nil {
		t.Fatal(err)
	}

	names, _ := c.SourceNames()
	if diff := cmp.Diff([]string{"A.sol", "B.sol"}, names); diff != "" {
		t.Errorf("SourceNames() mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"A.sol"}, fs.requested); diff != "" {
		t.Errorf("requested files mismatch (-want +got):\n%s", diff)
	}

	indices, _ := c.SourceIndices()
	if diff := cmp.Diff(map[string]int{"A.sol": 0, "B.sol": 1}, indices); diff != "" {
		t.Errorf("SourceIndices() mismatch (-want +got):\n%s", diff)
	}

	last, _ := c.LastContractName("")
	if last != "B.sol:B" {
		t.Errorf("LastContractName() = %q", last)
	}
}

func TestMissingImportIsReadError(t *testing.T) {
	fs := &files{contents: map[string]string{}}

	c := NewCompiler(WithReadCallback(fs.callback()))
	if err := c.SetSources(map[string]string{
		"B.sol": `import "A.sol"; contract B {}`,
	}); err != nil {
		t.Fatal(err)
	}

	err := c.Parse()
	if err == nil {
		t.Fatal("Parse() succeeded with a missing import")
	}

	if c.State() != StateSourcesSet {
		t.Errorf("State() = %s, want %s", c.State(), StateSourcesSet)
	}

	reads := c.Errors().OfKind(report.KindRead)
	if len(reads) != 1 {
		t.Fatalf("got %d read errors, want 1: %v", len(reads), c.Errors())
	}

	if reads[0].Source != "B.sol" {
		t.Errorf("read error attached to %q, want B.sol", reads[0].Source)
	}

	var ds report.Diagnostics
	if !errors.As(err, &ds) || len(ds) != 1 {
		t.Errorf("Parse() = %v, want the read error", err)
	}
}

func TestReadCallbackPanicIsRecovered(t *testing.T) {
	c := NewCompiler(WithReadCallback(func(depm.ReadKind, string) ([]byte, error) {
		panic("boom")
	}))
	if err := c.SetSources(map[string]string{
		"B.sol": `import "A.sol"; contract B {}`,
	}); err != nil {
		t.Fatal(err)
	}

	if err := c.Parse(); err == nil {
		t.Fatal("Parse() succeeded")
	}

	if n := len(c.Errors().OfKind(report.KindRead)); n != 1 {
		t.Errorf("got %d read errors, want 1", n)
	}
}

func TestImportCyclesAreLegal(t *testing.T) {
	c := NewCompiler()
	if err := c.SetSources(map[string]string{
		"a.sol": `import "b.sol"; contract A {}`,
		"b.sol": `import "a.sol"; contract B {}`,
	}); err != nil {
		t.Fatal(err)
	}

	if err := c.ParseAndAnalyze(StateAnalysisSuccessful); err != nil {
		t.Fatal(err)
	}

	names, _ := c.ContractNames()
	if diff := cmp.Diff([]string{"a.sol:A", "b.sol:B"}, names); diff != "" {
		t.Errorf("ContractNames() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrorKeepsState(t *testing.T) {
	c := NewCompiler()
	if err := c.SetSources(map[string]string{"main.sol": "contract {"}); err != nil {
		t.Fatal(err)
	}

	if err := c.Compile(StateCompilationSuccessful); err == nil {
		t.Fatal("Compile() succeeded on malformed input")
	}

	if c.State() != StateSourcesSet {
		t.Errorf("State() = %s, want %s", c.State(), StateSourcesSet)
	}

	if len(c.Errors().OfKind(report.KindParse)) == 0 {
		t.Errorf("no parse errors recorded: %v", c.Errors())
	}
}

func TestContractLookup(t *testing.T) {
	c := NewCompiler()
	if err := c.SetSources(map[string]string{
		"A.sol": "contract Foo {} contract Only {}",
		"B.sol": "contract Foo {}",
	}); err != nil {
		t.Fatal(err)
	}

	if err := c.ParseAndAnalyze(StateAnalysisSuccessful); err != nil {
		t.Fatal(err)
	}

	if cd, err := c.ContractDefinition("Only"); err != nil || cd.Source != "A.sol" {
		t.Errorf("ContractDefinition(Only) = %v, %v", cd, err)
	}

	var nfe *NotFoundError
	if _, err := c.ContractDefinition("Foo"); !errors.As(err, &nfe) || !nfe.Ambiguous {
		t.Errorf("ContractDefinition(Foo) = %v, want an ambiguity error", err)
	}

	if _, err := c.ContractDefinition("C.sol:Foo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ContractDefinition(C.sol:Foo) = %v, want not found", err)
	}

	tests := []struct {
		name, want string
	}{
		{"Only", "Only"},
		{"A.sol:Foo", "A_sol_Foo"},
		{"B.sol:Foo", "B_sol_Foo"},
	}

	for _, test := range tests {
		got, err := c.FilesystemFriendlyName(test.name)
		if err != nil || got != test.want {
			t.Errorf("FilesystemFriendlyName(%q) = %q, %v, want %q", test.name, got, err, test.want)
		}
	}

	if _, err := c.AST("missing.sol"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AST(missing.sol) = %v, want not found", err)
	}
}

func TestStateNames(t *testing.T) {
	for s := StateEmpty; s <= StateCompilationSuccessful; s++ {
		got, ok := ParseState(s.String())
		if !ok || got != s {
			t.Errorf("ParseState(%q) = %s, %v", s.String(), got, ok)
		}
	}

	if _, ok := ParseState("linked"); ok {
		t.Error("ParseState accepted an unknown name")
	}
}

func TestEmptySourcesRejected(t *testing.T) {
	c := NewCompiler()

	var se *SettingsError
	if err := c.SetSources(map[string]string{}); !errors.As(err, &se) {
		t.Fatalf("SetSources() = %v, want *SettingsError", err)
	}

	if c.State() != StateEmpty {
		t.Errorf("State() = %s, want %s", c.State(), StateEmpty)
	}

	if err := c.Compile(StateCompilationSuccessful); !errors.Is(err, ErrStatePrecondition) {
		t.Errorf("Compile() = %v, want a state error", err)
	}
}

func TestStopAfterSourcesSet(t *testing.T) {
	fs := &files{contents: map[string]string{"lib.sol": "contract L {}"}}
	c := NewCompiler(WithReadCallback(fs.callback()))

	if err := c.Compile(StateSourcesSet); !errors.Is(err, ErrStatePrecondition) {
		t.Fatalf("Compile(%s) before SetSources = %v, want a state error", StateSourcesSet, err)
	}

	if err := c.SetSources(map[string]string{"main.sol": `import "lib.sol"; contract C {}`}); err != nil {
		t.Fatal(err)
	}

	if err := c.Compile(StateSourcesSet); err != nil {
		t.Fatalf("Compile(%s) = %v", StateSourcesSet, err)
	}

	if c.State() != StateSourcesSet {
		t.Errorf("State() = %s, want %s", c.State(), StateSourcesSet)
	}

	// nothing was parsed so no import was read
	if len(fs.requested) != 0 {
		t.Errorf("requested = %v, want none", fs.requested)
	}

	names, err := c.SourceNames()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"main.sol"}, names); diff != "" {
		t.Errorf("SourceNames() mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.ContractNames(); !errors.Is(err, ErrStatePrecondition) {
		t.Errorf("ContractNames() = %v, want a state error", err)
	}
}
