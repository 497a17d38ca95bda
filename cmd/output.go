package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/unparalleled-js/solidity/artifacts"
	"github.com/unparalleled-js/solidity/build"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/evm"
)

// artifact is the build output of a single contract.
type artifact struct {
	ContractName      string                   `json:"contractName"`
	SourceName        string                   `json:"sourceName"`
	ABI               artifacts.ABI            `json:"abi"`
	Bytecode          *objectOutput            `json:"bytecode,omitempty"`
	DeployedBytecode  *objectOutput            `json:"deployedBytecode,omitempty"`
	IR                string                   `json:"ir,omitempty"`
	IROptimized       string                   `json:"irOptimized,omitempty"`
	Metadata          string                   `json:"metadata"`
	StorageLayout     *artifacts.StorageLayout `json:"storageLayout"`
	UserDoc           *artifacts.UserDoc       `json:"userdoc"`
	DevDoc            *artifacts.DevDoc        `json:"devdoc"`
	MethodIdentifiers map[string]string        `json:"methodIdentifiers"`
	GeneratedSources  []evm.GeneratedSource    `json:"generatedSources,omitempty"`
}

type objectOutput struct {
	Object         string                                `json:"object"`
	SourceMap      string                                `json:"sourceMap"`
	LinkReferences map[string]map[string][]evm.LinkRange `json:"linkReferences"`
}

// collectArtifact gathers the outputs of a compiled contract.
func collectArtifact(c *build.Compiler, name string) (*artifact, error) {
	cd, err := c.ContractDefinition(name)
	if err != nil {
		return nil, err
	}

	a := &artifact{
		ContractName: cd.Name,
		SourceName:   cd.Source,
	}

	if a.ABI, err = c.ContractABI(name); err != nil {
		return nil, err
	}

	if a.Metadata, err = c.Metadata(name); err != nil {
		return nil, err
	}

	if a.StorageLayout, err = c.StorageLayout(name); err != nil {
		return nil, err
	}

	if a.UserDoc, err = c.NatspecUser(name); err != nil {
		return nil, err
	}

	if a.DevDoc, err = c.NatspecDev(name); err != nil {
		return nil, err
	}

	symbols, err := c.InterfaceSymbols(name)
	if err != nil {
		return nil, err
	}
	a.MethodIdentifiers = symbols.Methods

	if a.IR, err = c.IR(name); err != nil {
		return nil, err
	}

	if a.IROptimized, err = c.IROptimized(name); err != nil {
		return nil, err
	}

	if a.GeneratedSources, err = c.GeneratedSources(name); err != nil {
		return nil, err
	}

	creation, err := c.Object(name)
	if err != nil || creation == nil {
		return a, err
	}

	runtime, err := c.RuntimeObject(name)
	if err != nil {
		return nil, err
	}

	srcmap, err := c.SourceMapping(name)
	if err != nil {
		return nil, err
	}

	runtimeSrcmap, err := c.RuntimeSourceMapping(name)
	if err != nil {
		return nil, err
	}

	a.Bytecode = newObjectOutput(creation, srcmap)
	a.DeployedBytecode = newObjectOutput(runtime, runtimeSrcmap)
	return a, nil
}

func newObjectOutput(obj *evm.Object, srcmap string) *objectOutput {
	return &objectOutput{
		Object:         obj.ToHex(),
		SourceMap:      srcmap,
		LinkReferences: obj.LinkReferencesJSON(),
	}
}

// encodeArtifact renders an artifact in an output format.  YAML is produced
// from the JSON encoding so both formats share the same field names.
func encodeArtifact(a *artifact, format int) ([]byte, error) {
	buff, err := json.MarshalIndent(a, "", "  ")
	if err != nil || format != config.FormatYAML {
		return buff, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(buff, &node); err != nil {
		return nil, err
	}

	blockStyle(&node)
	return yaml.Marshal(&node)
}

// blockStyle drops the flow and quoting styles a node decoded from JSON
// carries so it is written as plain block YAML.
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}

// writeArtifacts writes one file per compiled contract into outDir.
func writeArtifacts(c *build.Compiler, outDir string, format int) error {
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return err
	}

	ext := ".json"
	if format == config.FormatYAML {
		ext = ".yaml"
	}

	names, err := c.ContractNames()
	if err != nil {
		return err
	}

	for _, name := range names {
		a, err := collectArtifact(c, name)
		if err != nil {
			return fmt.Errorf("contract `%s`: %w", name, err)
		}

		buff, err := encodeArtifact(a, format)
		if err != nil {
			return fmt.Errorf("contract `%s`: %w", name, err)
		}

		fileName, err := c.FilesystemFriendlyName(name)
		if err != nil {
			return err
		}

		if err := os.WriteFile(filepath.Join(outDir, fileName+ext), buff, 0644); err != nil {
			return err
		}
	}

	return nil
}
