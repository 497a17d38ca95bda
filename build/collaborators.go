package build

import (
	"github.com/unparalleled-js/solidity/artifacts"
	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/codegen"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/depm"
	"github.com/unparalleled-js/solidity/evm"
	"github.com/unparalleled-js/solidity/irgen"
	"github.com/unparalleled-js/solidity/report"
	"github.com/unparalleled-js/solidity/sema"
)

// Analyzer parses source units and checks a closed set of them.
type Analyzer interface {
	// Parse returns a nil unit if the content could not be parsed.
	Parse(name, content string) (*ast.SourceUnit, report.Diagnostics)

	// Analyze receives the units in dependency order.  It fills in the
	// linearizations and the library and creation references of every
	// contract.
	Analyze(units []*ast.SourceUnit) report.Diagnostics
}

// IRGenerator generates the IR of a contract and any utility code that goes
// with it.
type IRGenerator interface {
	GenerateIR(cd *ast.ContractDefinition, settings *config.Settings) (string, []evm.GeneratedSource, error)
}

// Optimizer optimizes IR.  It must not modify its input.
type Optimizer interface {
	Optimize(name, ir string, settings *config.Settings) (string, error)
}

// Assembler produces bytecode from IR.
type Assembler interface {
	AssembleIR(name, ir string, in *evm.CodegenInput) (*evm.Compiled, error)
}

// CodeGenerator produces bytecode directly from an analyzed contract.
type CodeGenerator interface {
	Generate(cd *ast.ContractDefinition, in *evm.CodegenInput) (*evm.Compiled, error)
}

// ArtifactGenerator produces the derived artifacts of an analyzed contract.
type ArtifactGenerator interface {
	ABI(cd *ast.ContractDefinition) artifacts.ABI
	UserDoc(cd *ast.ContractDefinition) *artifacts.UserDoc
	DevDoc(cd *ast.ContractDefinition) *artifacts.DevDoc
	StorageLayout(cd *ast.ContractDefinition, transient bool) *artifacts.StorageLayout
	InterfaceSymbols(cd *ast.ContractDefinition) *artifacts.InterfaceSymbols
}

// Option configures a compiler on construction.
type Option func(c *Compiler)

// WithReadCallback sets the callback used to load imported units.
func WithReadCallback(cb depm.ReadCallback) Option {
	return func(c *Compiler) {
		c.readCallback = cb
	}
}

// WithReporter sets the reporter diagnostics are collected by.
func WithReporter(r *report.Reporter) Option {
	return func(c *Compiler) {
		c.reporter = r
	}
}

// WithAnalyzer replaces the front end.
func WithAnalyzer(a Analyzer) Option {
	return func(c *Compiler) {
		c.analyzer = a
	}
}

// WithIRGenerator replaces the IR generator.
func WithIRGenerator(g IRGenerator) Option {
	return func(c *Compiler) {
		c.irGenerator = g
	}
}

// WithOptimizer replaces the IR optimizer.
func WithOptimizer(o Optimizer) Option {
	return func(c *Compiler) {
		c.optimizer = o
	}
}

// WithAssembler replaces the IR assembler.
func WithAssembler(a Assembler) Option {
	return func(c *Compiler) {
		c.assembler = a
	}
}

// WithCodeGenerator replaces the direct code generator.
func WithCodeGenerator(g CodeGenerator) Option {
	return func(c *Compiler) {
		c.codeGenerator = g
	}
}

// WithArtifactGenerator replaces the artifact generator.
func WithArtifactGenerator(g ArtifactGenerator) Option {
	return func(c *Compiler) {
		c.artifactGenerator = g
	}
}

// defaultCollaborators installs the reference toolchain for every
// collaborator not set by an option.
func (c *Compiler) defaultCollaborators() {
	if c.reporter == nil {
		c.reporter = report.NewReporter(report.LogLevelSilent)
	}

	if c.analyzer == nil {
		c.analyzer = sema.NewAnalyzer()
	}

	if c.irGenerator == nil {
		c.irGenerator = irgen.NewGenerator()
	}

	if c.optimizer == nil {
		c.optimizer = irgen.NewOptimizer()
	}

	if c.assembler == nil {
		c.assembler = codegen.NewAssembler()
	}

	if c.codeGenerator == nil {
		c.codeGenerator = codegen.NewCodeGenerator()
	}

	if c.artifactGenerator == nil {
		c.artifactGenerator = artifacts.NewGenerator()
	}
}
