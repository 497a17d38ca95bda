package build

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/unparalleled-js/solidity/artifacts"
	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/evm"
)

// Queries fail with a StateError until the state producing their answer has
// been reached.  Products that were not requested for a contract are returned
// as empty values.

// SourceNames returns the sorted names of every registered unit, including
// those loaded through the read callback once parsing has run.
func (c *Compiler) SourceNames() ([]string, error) {
	if err := c.requireState("SourceNames", StateSourcesSet); err != nil {
		return nil, err
	}

	return c.sources.Names(), nil
}

// SourceIndices returns the index of each unit used in source mappings.
func (c *Compiler) SourceIndices() (map[string]int, error) {
	if err := c.requireState("SourceIndices", StateParsedAndImported); err != nil {
		return nil, err
	}

	indices := make(map[string]int, len(c.sourceOrder))
	for _, src := range c.sourceOrder {
		indices[src.Name] = src.AST.ID
	}

	return indices, nil
}

// AST returns the parsed representation of a unit.
func (c *Compiler) AST(source string) (*ast.SourceUnit, error) {
	if err := c.requireState("AST", StateParsed); err != nil {
		return nil, err
	}

	src, ok := c.sources.Get(source)
	if !ok {
		return nil, &NotFoundError{Kind: "source", Name: source}
	}

	return src.AST, nil
}

// ContractNames returns the sorted fully qualified names of every contract.
func (c *Compiler) ContractNames() ([]string, error) {
	if err := c.requireState("ContractNames", StateParsedAndImported); err != nil {
		return nil, err
	}

	return append([]string(nil), c.contractNames...), nil
}

// LastContractName returns the last contract defined in a unit, or in the
// unit processed last if source is empty.
func (c *Compiler) LastContractName(source string) (string, error) {
	if err := c.requireState("LastContractName", StateParsedAndImported); err != nil {
		return "", err
	}

	last := ""
	for _, src := range c.sourceOrder {
		if source != "" && src.Name != source {
			continue
		}

		if n := len(src.AST.Contracts); n > 0 {
			last = src.AST.Contracts[n-1].FullyQualifiedName()
		}
	}

	if last == "" {
		return "", &NotFoundError{Kind: "contract", Name: source}
	}

	return last, nil
}

var unfriendlyChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// FilesystemFriendlyName returns a name for a contract that can be used as a
// file name.  It is the bare name unless that is ambiguous.
func (c *Compiler) FilesystemFriendlyName(name string) (string, error) {
	ct, err := c.lookup("FilesystemFriendlyName", StateParsedAndImported, name)
	if err != nil {
		return "", err
	}

	for _, other := range c.contracts {
		if other != ct && other.def.Name == ct.def.Name {
			return unfriendlyChars.ReplaceAllString(ct.fqn, "_"), nil
		}
	}

	return ct.def.Name, nil
}

// ContractDefinition returns the analyzed definition of a contract.
func (c *Compiler) ContractDefinition(name string) (*ast.ContractDefinition, error) {
	ct, err := c.lookup("ContractDefinition", StateAnalysisSuccessful, name)
	if err != nil {
		return nil, err
	}

	return ct.def, nil
}

// -----------------------------------------------------------------------------

// IR returns the unoptimized IR of a contract.
func (c *Compiler) IR(name string) (string, error) {
	ct, err := c.lookup("IR", StateCompilationSuccessful, name)
	if err != nil {
		return "", err
	}

	return ct.ir, nil
}

// IROptimized returns the optimized IR of a contract.
func (c *Compiler) IROptimized(name string) (string, error) {
	ct, err := c.lookup("IROptimized", StateCompilationSuccessful, name)
	if err != nil {
		return "", err
	}

	if ct.irOptimized != "" && ct.ir == "" {
		return "", fmt.Errorf("optimized IR of `%s` has no unoptimized IR", ct.fqn)
	}

	return ct.irOptimized, nil
}

// Object returns the linked deployment object of a contract.
func (c *Compiler) Object(name string) (*evm.Object, error) {
	ct, err := c.lookup("Object", StateCompilationSuccessful, name)
	if err != nil || !ct.hasBytecode() {
		return nil, err
	}

	return ct.linkedCreation.Clone(), nil
}

// RuntimeObject returns the linked runtime object of a contract.
func (c *Compiler) RuntimeObject(name string) (*evm.Object, error) {
	ct, err := c.lookup("RuntimeObject", StateCompilationSuccessful, name)
	if err != nil || !ct.hasBytecode() {
		return nil, err
	}

	return ct.linkedRuntime.Clone(), nil
}

// GeneratedSources returns the utility code generated for a contract.
func (c *Compiler) GeneratedSources(name string) ([]evm.GeneratedSource, error) {
	ct, err := c.lookup("GeneratedSources", StateCompilationSuccessful, name)
	if err != nil {
		return nil, err
	}

	return append([]evm.GeneratedSource(nil), ct.generated...), nil
}

// SourceMapping returns the compressed source map of the deployment object.
func (c *Compiler) SourceMapping(name string) (string, error) {
	ct, err := c.lookup("SourceMapping", StateCompilationSuccessful, name)
	if err != nil || !ct.hasBytecode() {
		return "", err
	}

	return ct.compiled.SourceMap, nil
}

// RuntimeSourceMapping returns the compressed source map of the runtime
// object.
func (c *Compiler) RuntimeSourceMapping(name string) (string, error) {
	ct, err := c.lookup("RuntimeSourceMapping", StateCompilationSuccessful, name)
	if err != nil || !ct.hasBytecode() {
		return "", err
	}

	return ct.compiled.RuntimeSourceMap, nil
}

// AssemblyString returns the assembly listing of a contract.
func (c *Compiler) AssemblyString(name string) (string, error) {
	ct, err := c.lookup("AssemblyString", StateCompilationSuccessful, name)
	if err != nil || !ct.hasBytecode() {
		return "", err
	}

	return ct.compiled.Assembly, nil
}

// DebugInfo returns the instructions of the deployment object along with
// their source locations as JSON.
func (c *Compiler) DebugInfo(name string) (string, error) {
	ct, err := c.lookup("DebugInfo", StateCompilationSuccessful, name)
	if err != nil || !ct.hasBytecode() {
		return "", err
	}

	return ct.debugInfo.Get()
}

// DebugInfoRuntime is DebugInfo for the runtime object.
func (c *Compiler) DebugInfoRuntime(name string) (string, error) {
	ct, err := c.lookup("DebugInfoRuntime", StateCompilationSuccessful, name)
	if err != nil || !ct.hasBytecode() {
		return "", err
	}

	return ct.debugInfoRuntime.Get()
}

// -----------------------------------------------------------------------------

// ContractABI returns the interface descriptor of a contract.
func (c *Compiler) ContractABI(name string) (artifacts.ABI, error) {
	ct, err := c.lookup("ContractABI", StateAnalysisSuccessful, name)
	if err != nil {
		return nil, err
	}

	return ct.abi.Get()
}

// StorageLayout returns the storage layout of a contract.
func (c *Compiler) StorageLayout(name string) (*artifacts.StorageLayout, error) {
	ct, err := c.lookup("StorageLayout", StateAnalysisSuccessful, name)
	if err != nil {
		return nil, err
	}

	return ct.storage.Get()
}

// TransientStorageLayout returns the layout of the transient state variables
// of a contract.
func (c *Compiler) TransientStorageLayout(name string) (*artifacts.StorageLayout, error) {
	ct, err := c.lookup("TransientStorageLayout", StateAnalysisSuccessful, name)
	if err != nil {
		return nil, err
	}

	return ct.transientStorage.Get()
}

// NatspecUser returns the user documentation of a contract.
func (c *Compiler) NatspecUser(name string) (*artifacts.UserDoc, error) {
	ct, err := c.lookup("NatspecUser", StateAnalysisSuccessful, name)
	if err != nil {
		return nil, err
	}

	return ct.userDoc.Get()
}

// NatspecDev returns the developer documentation of a contract.
func (c *Compiler) NatspecDev(name string) (*artifacts.DevDoc, error) {
	ct, err := c.lookup("NatspecDev", StateAnalysisSuccessful, name)
	if err != nil {
		return nil, err
	}

	return ct.devDoc.Get()
}

// InterfaceSymbols returns the selectors and topics of a contract.
func (c *Compiler) InterfaceSymbols(name string) (*artifacts.InterfaceSymbols, error) {
	ct, err := c.lookup("InterfaceSymbols", StateAnalysisSuccessful, name)
	if err != nil {
		return nil, err
	}

	return ct.symbols.Get()
}

// Metadata returns the metadata document of a contract for the configured
// code generation route.
func (c *Compiler) Metadata(name string) (string, error) {
	return c.MetadataForRoute(name, c.settings.ViaIR)
}

// MetadataForRoute returns the metadata document of a contract as it is when
// compiled through the IR iff viaIR is set.
func (c *Compiler) MetadataForRoute(name string, viaIR bool) (string, error) {
	ct, err := c.lookup("Metadata", StateAnalysisSuccessful, name)
	if err != nil {
		return "", err
	}

	return ct.metadata[viaIR].Get()
}

// CBORMetadata returns the encoded metadata appended to the runtime code of a
// contract.  It is empty if no metadata is appended.
func (c *Compiler) CBORMetadata(name string) ([]byte, error) {
	ct, err := c.lookup("CBORMetadata", StateAnalysisSuccessful, name)
	if err != nil {
		return nil, err
	}

	return ct.cbor[c.settings.ViaIR].Get()
}

// -----------------------------------------------------------------------------

// lookup finds a contract by its fully qualified name or by its bare name if
// that is unique.
func (c *Compiler) lookup(op string, required State, name string) (*contract, error) {
	if err := c.requireState(op, required); err != nil {
		return nil, err
	}

	if ct, ok := c.contracts[name]; ok {
		return ct, nil
	}

	if strings.Contains(name, ":") {
		return nil, &NotFoundError{Kind: "contract", Name: name}
	}

	var matches []string
	for _, fqn := range c.contractNames {
		if c.contracts[fqn].def.Name == name {
			matches = append(matches, fqn)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Kind: "contract", Name: name}
	case 1:
		return c.contracts[matches[0]], nil
	default:
		return nil, &NotFoundError{Kind: "contract", Name: name, Ambiguous: true}
	}
}
