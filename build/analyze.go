package build

import (
	"strings"

	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/depm"
	"github.com/unparalleled-js/solidity/report"
	"github.com/unparalleled-js/solidity/util"
)

// Analyze runs semantic analysis over the closed set of units.  Contracts
// whose code would have to embed itself are reported and fail code
// generation, but they do not prevent the analysis from succeeding.
func (c *Compiler) Analyze() error {
	if err := c.requireState("Analyze", StateParsedAndImported); err != nil {
		return err
	}

	if c.state >= StateAnalysisSuccessful {
		return nil
	}

	c.reporter.BeginPhase("Analyzing")
	defer c.reporter.EndPhase()

	units := make([]*ast.SourceUnit, len(c.sourceOrder))
	for i, src := range c.sourceOrder {
		units[i] = src.AST
	}

	diags := c.analyzer.Analyze(units)
	c.reporter.ReportAll(diags)
	if diags.HasErrors() {
		return c.failure()
	}

	c.checkCreationCycles()

	c.state = StateAnalysisSuccessful
	return nil
}

// checkCreationCycles reports every group of contracts embedding each
// other's code, directly or transitively.  Such a contract would have to
// contain itself.  Each group is reported once with all of its members and
// every member fails code generation.
func (c *Compiler) checkCreationCycles() {
	for _, members := range depm.StronglyConnected(c.contractNames, c.creationDeps) {
		first := c.contracts[members[0]]

		names := util.Map(members, func(fqn string) string {
			return c.contracts[fqn].def.Name
		})

		d := &report.Diagnostic{
			Kind:     report.KindCycle,
			Severity: report.SeverityError,
			Source:   first.def.Source,
			Contract: members[0],
			Span:     first.def.Span,
			Message:  "circular reference for contract code access between " + strings.Join(names, ", "),
			Members:  members,
		}

		c.reporter.Report(d)
		for _, fqn := range members {
			c.contracts[fqn].cycle = d
		}
	}
}

// creationDeps returns the contracts whose code a contract embeds.
func (c *Compiler) creationDeps(fqn string) []string {
	ct, ok := c.contracts[fqn]
	if !ok {
		return nil
	}

	return util.Map(ct.def.CreationRefs, (*ast.ContractDefinition).FullyQualifiedName)
}
