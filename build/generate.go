package build

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/depm"
	"github.com/unparalleled-js/solidity/evm"
	"github.com/unparalleled-js/solidity/report"
)

// Compile runs every stage up to stopAfter.  Past analysis, the IR and the
// bytecode requested for each contract are generated with embedded contracts
// compiled first, and everything is linked against the library table.  A
// contract that fails to compile does not stop the others, but the compiler
// only reaches StateCompilationSuccessful if none failed.
func (c *Compiler) Compile(stopAfter State) error {
	if err := c.ParseAndAnalyze(stopAfter); err != nil || stopAfter < StateCompilationSuccessful {
		return err
	}

	if c.state >= StateCompilationSuccessful {
		return nil
	}

	c.reporter.ReportCompileHeader(c.settings.EVMVersion.String(), c.settings.ViaIR)
	defer c.reporter.ReportCompilationFinished()

	order, levels := c.schedule()

	c.reporter.BeginPhase("Generating")
	for _, level := range levels {
		c.runLevel(level)
	}
	c.reporter.EndPhase()

	c.link(order)

	for _, fqn := range order {
		if c.contracts[fqn].failed {
			return c.failure()
		}
	}

	c.state = StateCompilationSuccessful
	return nil
}

// schedule decides the configuration of every contract and returns the
// contracts to be compiled in dependency order along with their levels.
func (c *Compiler) schedule() ([]string, [][]string) {
	var selected, pending []string
	for _, fqn := range c.contractNames {
		ct := c.contracts[fqn]
		if !ct.def.CanBeDeployed() {
			continue
		}

		ct.config = c.settings.Selection.Requested(ct.def.Source, ct.def.Name)
		if !ct.config.Empty() {
			selected = append(selected, fqn)
		}

		if ct.config.Bytecode {
			pending = append(pending, fqn)
		}
	}

	// contracts embedded by a contract compiled to bytecode have to be
	// compiled to bytecode regardless of their own selection
	for len(pending) > 0 {
		fqn := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		for _, dep := range c.creationDeps(fqn) {
			depCt := c.contracts[dep]
			if depCt.config.Bytecode {
				continue
			}

			if depCt.config.Empty() {
				selected = append(selected, dep)
			}

			depCt.config.Bytecode = true
			pending = append(pending, dep)
		}
	}

	next := func(fqn string) []string {
		if !c.contracts[fqn].config.Bytecode {
			return nil
		}

		return c.creationDeps(fqn)
	}

	order := depm.SearchGraph(selected, next).Order
	return order, depm.Levels(order, next)
}

// runLevel compiles the contracts of one dependency level.  They are
// independent of each other and compiled concurrently when jobs allow.
func (c *Compiler) runLevel(level []string) {
	eg := errgroup.Group{}
	eg.SetLimit(max(1, c.settings.Jobs))

	for _, fqn := range level {
		ct := c.contracts[fqn]
		if ct.done {
			continue
		}

		eg.Go(func() error {
			c.compileContract(ct)
			return nil
		})
	}

	eg.Wait()
}

// compileContract runs the generators for a single contract.  Any failure,
// including a panic inside a collaborator, is recorded as a diagnostic and
// marks the contract failed.
func (c *Compiler) compileContract(ct *contract) {
	succeeded := false
	defer func() {
		ct.done = true
		ct.failed = !succeeded
	}()
	defer c.reporter.CatchErrors(report.KindCodegen, ct.def.Source, ct.fqn)

	if ct.cycle != nil {
		return
	}

	if err := c.generate(ct); err != nil {
		c.reporter.Report(&report.Diagnostic{
			Kind:     report.KindCodegen,
			Severity: report.SeverityError,
			Source:   ct.def.Source,
			Contract: ct.fqn,
			Span:     ct.def.Span,
			Message:  err.Error(),
		})

		return
	}

	succeeded = true
}

// generate produces every requested product of a contract.
func (c *Compiler) generate(ct *contract) error {
	viaIR := c.settings.ViaIR

	if ct.config.NeedIR(viaIR) {
		ir, generated, err := c.irGenerator.GenerateIR(ct.def, &c.settings)
		if err != nil {
			return fmt.Errorf("IR generation failed: %w", err)
		}

		// optimized IR is always derived from the unoptimized IR
		if ir == "" {
			return errors.New("IR generation produced no IR")
		}

		ct.ir = ir
		ct.generated = generated

		if ct.config.NeedIROptimization(viaIR) {
			optimized, err := c.optimizer.Optimize(ct.def.Name, ir, &c.settings)
			if err != nil {
				return fmt.Errorf("IR optimization failed: %w", err)
			}

			if optimized == "" {
				return errors.New("IR optimization produced no IR")
			}

			ct.irOptimized = optimized
		}
	}

	if !ct.config.Bytecode {
		return nil
	}

	in, err := c.codegenInput(ct, viaIR)
	if err != nil {
		return err
	}

	var compiled *evm.Compiled
	if viaIR {
		compiled, err = c.assembler.AssembleIR(ct.def.Name, ct.irOptimized, in)
	} else {
		compiled, err = c.codeGenerator.Generate(ct.def, in)
	}

	if err != nil {
		return err
	}

	ct.compiled = compiled
	return nil
}

// codegenInput collects the compiled dependencies, source locators and
// metadata a code generator needs.
func (c *Compiler) codegenInput(ct *contract, viaIR bool) (*evm.CodegenInput, error) {
	in := &evm.CodegenInput{
		Settings:     &c.settings,
		Dependencies: make(map[string]*evm.Object),
		Sources:      make(map[string]*evm.SourceLocator, len(c.sourceOrder)),
	}

	for _, dep := range c.creationDeps(ct.fqn) {
		if depCt := c.contracts[dep]; depCt.hasBytecode() {
			in.Dependencies[dep] = depCt.compiled.Creation
		}
	}

	for _, src := range c.sourceOrder {
		in.Sources[src.Name] = evm.NewSourceLocator(src.AST.ID, src.Content)
	}

	if c.settings.MetadataFormat != config.NoMetadata {
		meta, err := ct.cbor[viaIR].Get()
		if err != nil {
			return nil, fmt.Errorf("metadata generation failed: %w", err)
		}

		in.Metadata = meta
	}

	return in, nil
}
