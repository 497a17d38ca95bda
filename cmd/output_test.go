package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/unparalleled-js/solidity/build"
	"github.com/unparalleled-js/solidity/common"
	"github.com/unparalleled-js/solidity/config"
)

const tokenSource = `// SPDX-License-Identifier: MIT
contract Token {
    uint total;

    function supply() public view returns (uint) { return total; }
}

contract Token2 {}
`

func compiled(t *testing.T) *build.Compiler {
	t.Helper()

	c := build.NewCompiler()
	if err := c.SetSources(map[string]string{"contracts/token.sol": tokenSource}); err != nil {
		t.Fatal(err)
	}

	if err := c.Compile(build.StateCompilationSuccessful); err != nil {
		t.Fatal(err)
	}

	return c
}

func TestWriteArtifacts(t *testing.T) {
	c := compiled(t)

	tests := []struct {
		format int
		ext    string
		decode func([]byte, interface{}) error
	}{
		{config.FormatJSON, ".json", json.Unmarshal},
		{config.FormatYAML, ".yaml", yaml.Unmarshal},
	}

	for _, test := range tests {
		dir := t.TempDir()
		if err := writeArtifacts(c, dir, test.format); err != nil {
			t.Fatal(err)
		}

		buff, err := os.ReadFile(filepath.Join(dir, "Token"+test.ext))
		if err != nil {
			t.Fatal(err)
		}

		var got struct {
			ContractName      string            `json:"contractName" yaml:"contractName"`
			SourceName        string            `json:"sourceName" yaml:"sourceName"`
			MethodIdentifiers map[string]string `json:"methodIdentifiers" yaml:"methodIdentifiers"`
		}

		if err := test.decode(buff, &got); err != nil {
			t.Fatal(err)
		}

		if got.ContractName != "Token" || got.SourceName != "contracts/token.sol" {
			t.Errorf("%s: artifact names %q %q", test.ext, got.ContractName, got.SourceName)
		}

		if diff := cmp.Diff(map[string]string{"supply()": common.SelectorHex("supply()")}, got.MethodIdentifiers); diff != "" {
			t.Errorf("%s: method identifiers mismatch (-want +got):\n%s", test.ext, diff)
		}

		if _, err := os.Stat(filepath.Join(dir, "Token2"+test.ext)); err != nil {
			t.Errorf("%s: second artifact missing: %v", test.ext, err)
		}
	}
}

func TestCollectSources(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "contracts", "nested")
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"contracts/a.sol":        "contract A {}",
		"contracts/nested/b.sol": "contract B {}",
		"contracts/notes.txt":    "not a source",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(name)), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	sources, err := collectSources(&config.Project{Name: "test", Root: root, SourceDirs: []string{"contracts"}})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"contracts/a.sol":        "contract A {}",
		"contracts/nested/b.sol": "contract B {}",
	}
	if diff := cmp.Diff(want, sources); diff != "" {
		t.Errorf("collectSources() mismatch (-want +got):\n%s", diff)
	}

	if _, err := collectSources(&config.Project{Name: "empty", Root: root}); err == nil {
		t.Error("collectSources() accepted a project without sources")
	}
}
