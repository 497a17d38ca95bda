package build

import (
	"github.com/unparalleled-js/solidity/artifacts"
	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/evm"
	"github.com/unparalleled-js/solidity/pipeline"
	"github.com/unparalleled-js/solidity/report"
	"github.com/unparalleled-js/solidity/util"
)

// contract is everything known about a single contract during a run.  The
// products of the driver are written only by the goroutine compiling the
// contract; the artifacts are compute-once cells that any query may force.
type contract struct {
	fqn string
	def *ast.ContractDefinition

	// config is the effective pipeline configuration.  It is set by the
	// driver and includes any implied bytecode requirement.
	config pipeline.Config

	// cycle is the creation cycle the contract is part of, if any
	cycle *report.Diagnostic

	// done is set once the driver has handled the contract
	done   bool
	failed bool

	ir          string
	irOptimized string
	generated   []evm.GeneratedSource
	compiled    *evm.Compiled

	// linkedCreation and linkedRuntime are the compiled objects with every
	// known library address filled in
	linkedCreation *evm.Object
	linkedRuntime  *evm.Object

	abi              *util.Lazy[artifacts.ABI]
	userDoc          *util.Lazy[*artifacts.UserDoc]
	devDoc           *util.Lazy[*artifacts.DevDoc]
	storage          *util.Lazy[*artifacts.StorageLayout]
	transientStorage *util.Lazy[*artifacts.StorageLayout]
	symbols          *util.Lazy[*artifacts.InterfaceSymbols]

	// metadata and cbor are keyed by whether the IR route is described
	metadata map[bool]*util.Lazy[string]
	cbor     map[bool]*util.Lazy[[]byte]

	debugInfo        *util.Lazy[string]
	debugInfoRuntime *util.Lazy[string]
}

// newContract creates the record of a contract and its artifact cells.
func (c *Compiler) newContract(cd *ast.ContractDefinition) *contract {
	ct := &contract{
		fqn: cd.FullyQualifiedName(),
		def: cd,
	}

	ag := c.artifactGenerator
	ct.abi = util.NewLazy(func() (artifacts.ABI, error) {
		return ag.ABI(cd), nil
	})
	ct.userDoc = util.NewLazy(func() (*artifacts.UserDoc, error) {
		return ag.UserDoc(cd), nil
	})
	ct.devDoc = util.NewLazy(func() (*artifacts.DevDoc, error) {
		return ag.DevDoc(cd), nil
	})
	ct.storage = util.NewLazy(func() (*artifacts.StorageLayout, error) {
		return ag.StorageLayout(cd, false), nil
	})
	ct.transientStorage = util.NewLazy(func() (*artifacts.StorageLayout, error) {
		return ag.StorageLayout(cd, true), nil
	})
	ct.symbols = util.NewLazy(func() (*artifacts.InterfaceSymbols, error) {
		return ag.InterfaceSymbols(cd), nil
	})

	ct.metadata = make(map[bool]*util.Lazy[string], 2)
	ct.cbor = make(map[bool]*util.Lazy[[]byte], 2)
	for _, viaIR := range []bool{false, true} {
		viaIR := viaIR

		ct.metadata[viaIR] = util.NewLazy(func() (string, error) {
			return c.buildMetadata(ct, viaIR)
		})
		ct.cbor[viaIR] = util.NewLazy(func() ([]byte, error) {
			return c.buildCBORMetadata(ct, viaIR)
		})
	}

	ct.debugInfo = util.NewLazy(func() (string, error) {
		return buildDebugInfo(ct.compiled.Creation, ct.compiled.SourceMap)
	})
	ct.debugInfoRuntime = util.NewLazy(func() (string, error) {
		return buildDebugInfo(ct.compiled.Runtime, ct.compiled.RuntimeSourceMap)
	})

	return ct
}

// hasBytecode returns whether the contract was compiled to bytecode.
func (ct *contract) hasBytecode() bool {
	return ct.compiled != nil
}
