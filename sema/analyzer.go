package sema

import (
	"fmt"

	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/report"
	"github.com/unparalleled-js/solidity/syntax"
)

// Analyzer is the reference front end: it parses source units with the
// syntax package and checks declarations, inheritance and the references
// between contracts.
type Analyzer struct {
	// scopes maps unit names to their global scope during analysis
	scopes map[string]*scope

	// linearized holds computed linearizations until all are done
	linearized map[*ast.ContractDefinition][]*ast.ContractDefinition

	diags report.Diagnostics
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Parse parses a single source unit.
func (a *Analyzer) Parse(name, content string) (*ast.SourceUnit, report.Diagnostics) {
	su, err := syntax.Parse(name, content)
	if err != nil {
		return nil, report.Diagnostics{report.FromError(report.KindParse, name, err)}
	}

	var diags report.Diagnostics
	if su.License == "" {
		diags = append(diags, &report.Diagnostic{
			Kind:     report.KindParse,
			Severity: report.SeverityWarning,
			Source:   name,
			Message:  "SPDX license identifier not provided in source file",
		})
	}

	return su, diags
}

// Analyze checks a complete, import-closed set of source units.  The units
// must be given in dependency order.  It fills in the linearization and the
// library and creation references of every contract.
func (a *Analyzer) Analyze(units []*ast.SourceUnit) report.Diagnostics {
	a.diags = nil
	a.scopes = buildScopes(units, a.errorf)

	for _, su := range units {
		a.checkDuplicates(su)
	}

	for _, su := range units {
		for _, cd := range su.Contracts {
			a.resolveBases(cd)
		}
	}

	for _, su := range units {
		for _, cd := range su.Contracts {
			a.linearize(cd)
		}
	}
	a.commitLinearizations()

	// references need complete linearizations of every contract
	if !a.diags.HasErrors() {
		for _, su := range units {
			for _, cd := range su.Contracts {
				a.checkImplemented(cd)
				a.resolveReferences(cd)
			}
		}
	}

	diags := a.diags
	a.diags = nil
	a.scopes = nil
	return diags
}

// errorf records a type error.
func (a *Analyzer) errorf(source string, span *report.TextSpan, msg string, args ...interface{}) {
	a.diags = append(a.diags, &report.Diagnostic{
		Kind:     report.KindType,
		Severity: report.SeverityError,
		Source:   source,
		Span:     span,
		Message:  fmt.Sprintf(msg, args...),
	})
}

// checkDuplicates reports contracts declared twice in the same unit.
func (a *Analyzer) checkDuplicates(su *ast.SourceUnit) {
	seen := make(map[string]*ast.ContractDefinition)
	for _, cd := range su.Contracts {
		if _, ok := seen[cd.Name]; ok {
			a.errorf(su.Name, cd.Span, "identifier `%s` already declared", cd.Name)
			continue
		}

		seen[cd.Name] = cd
	}
}

// checkImplemented reports non-abstract contracts with unimplemented
// functions.
func (a *Analyzer) checkImplemented(cd *ast.ContractDefinition) {
	if !cd.CanBeDeployed() {
		return
	}

	seen := make(map[string]bool)
	for _, base := range cd.Linearized {
		for _, fn := range base.Functions {
			if fn.Kind != ast.FuncFunction {
				continue
			}

			sig := fn.Signature()
			if seen[sig] {
				continue
			}
			seen[sig] = true

			if !fn.HasBody {
				a.errorf(
					cd.Source, cd.Span,
					"contract `%s` should be marked as abstract: `%s` is not implemented",
					cd.Name, sig,
				)
				return
			}
		}
	}
}
